// Package archiver turns the stream of blocks of the chain into archived
// segments: erasure coded, committed pieces linked by a chain of segment
// headers.
package archiver

import (
	"errors"
	"fmt"

	"github.com/vedhavyas/subspace/foundation/blockchain/commitment"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

// Set of errors returned by the archiver.
var (
	ErrNonSequentialBlock = errors.New("block is not the successor of the last archived block")
	ErrNotEnoughPieces    = errors.New("not enough pieces to reconstruct segment")
)

// EventHandler defines a function that is called when events occur in the
// processing of archived segments.
type EventHandler func(v string, args ...any)

// =============================================================================

// Geometry is the shape of a segment. Networks use the protocol geometry,
// smaller geometries exist for development networks and tests.
type Geometry struct {
	RecordsPerSegment int
}

// ProtocolGeometry returns the geometry pinned by the network.
func ProtocolGeometry() Geometry {
	return Geometry{RecordsPerSegment: segments.NumRawRecords}
}

// PiecesPerSegment returns the number of archived pieces of a segment.
func (g Geometry) PiecesPerSegment() int {
	return g.RecordsPerSegment * segments.ErasureCodingRate
}

// SegmentSize returns the number of bytes of a recorded segment.
func (g Geometry) SegmentSize() int {
	return g.RecordsPerSegment * pieces.RawRecordSize
}

// FirstPieceIndex returns the index of the first piece of the segment.
func (g Geometry) FirstPieceIndex(si segments.SegmentIndex) pieces.PieceIndex {
	return pieces.PieceIndex(uint64(si) * uint64(g.PiecesPerSegment()))
}

// PieceIndex returns the index of the piece at the position of the segment.
func (g Geometry) PieceIndex(si segments.SegmentIndex, position int) pieces.PieceIndex {
	return g.FirstPieceIndex(si) + pieces.PieceIndex(position)
}

// Locate returns the segment and position of a piece index.
func (g Geometry) Locate(pi pieces.PieceIndex) (segments.SegmentIndex, int) {
	n := uint64(g.PiecesPerSegment())
	return segments.SegmentIndex(uint64(pi) / n), int(uint64(pi) % n)
}

func (g Geometry) validate() error {
	if g.RecordsPerSegment <= 0 {
		return fmt.Errorf("records per segment must be positive: %d", g.RecordsPerSegment)
	}

	if g.PiecesPerSegment() > 256 {
		return fmt.Errorf("records per segment must not exceed %d: %d", segments.NumRawRecords, g.RecordsPerSegment)
	}

	return nil
}

// =============================================================================

// ArchivedSegment is the output of archiving one segment.
type ArchivedSegment struct {
	Header segments.SegmentHeader
	Pieces pieces.FlatPieces
}

// Config represents the configuration required to construct an archiver.
type Config struct {
	Geometry  Geometry
	Committer commitment.Committer
	EvHandler EventHandler
}

// Archiver accumulates blocks into recorded segments and archives every
// segment that fills up. An Archiver is owned by a single goroutine.
type Archiver struct {
	geometry  Geometry
	committer commitment.Committer
	erasure   *erasure
	evHandler EventHandler

	chain     *segments.Chain
	buffer    []byte
	lastBlock segments.LastArchivedBlock
	hasBlocks bool
}

// New constructs an archiver starting from the genesis segment.
func New(cfg Config) (*Archiver, error) {
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Geometry == (Geometry{}) {
		cfg.Geometry = ProtocolGeometry()
	}

	if err := cfg.Geometry.validate(); err != nil {
		return nil, err
	}

	if cfg.Committer == nil {
		return nil, errors.New("committer is required")
	}

	erasure, err := newErasure(cfg.Geometry.RecordsPerSegment)
	if err != nil {
		return nil, err
	}

	a := Archiver{
		geometry:  cfg.Geometry,
		committer: cfg.Committer,
		erasure:   erasure,
		evHandler: ev,
		chain:     segments.NewChain(),
		buffer:    make([]byte, 0, cfg.Geometry.SegmentSize()),
	}

	return &a, nil
}

// Geometry returns the geometry of the archived segments.
func (a *Archiver) Geometry() Geometry {
	return a.geometry
}

// Chain returns the chain of headers archived so far. The chain must not be
// modified by the caller.
func (a *Archiver) Chain() *segments.Chain {
	return a.chain
}

// LastArchivedBlock returns the last block added to the archiver and
// whether any block was added.
func (a *Archiver) LastArchivedBlock() (segments.LastArchivedBlock, bool) {
	return a.lastBlock, a.hasBlocks
}

// BufferedBytes returns the number of bytes waiting for the current segment
// to fill up.
func (a *Archiver) BufferedBytes() int {
	return len(a.buffer)
}

// AddBlock appends the block to the history and returns the segments it
// completed, if any. Blocks must be added in order without gaps.
func (a *Archiver) AddBlock(number uint32, data []byte) ([]ArchivedSegment, error) {
	if a.hasBlocks && number != a.lastBlock.Number+1 {
		return nil, fmt.Errorf("%w: got %d, last %d", ErrNonSequentialBlock, number, a.lastBlock.Number)
	}

	var out []ArchivedSegment
	segmentSize := a.geometry.SegmentSize()

	offset := 0
	for {
		avail := segmentSize - len(a.buffer) - blockItemOverhead
		remaining := len(data) - offset

		if avail < 0 || (avail == 0 && remaining > 0) {
			seg, err := a.archiveSegment()
			if err != nil {
				return nil, err
			}
			out = append(out, seg)
			continue
		}

		if remaining <= avail {
			kind := ItemBlock
			if offset > 0 {
				kind = ItemBlockEnd
			}
			a.buffer = appendBlockItem(a.buffer, kind, number, data[offset:])
			a.lastBlock = segments.LastArchivedBlock{Number: number}
			a.hasBlocks = true
			break
		}

		kind := ItemBlockStart
		if offset > 0 {
			kind = ItemBlockContinuation
		}
		a.buffer = appendBlockItem(a.buffer, kind, number, data[offset:offset+avail])
		offset += avail

		a.lastBlock = segments.LastArchivedBlock{Number: number}
		a.lastBlock.SetPartialArchived(uint32(offset))
		a.hasBlocks = true

		a.evHandler("archiver: add block: partial: block[%d] archived[%d] size[%d]", number, offset, len(data))

		seg, err := a.archiveSegment()
		if err != nil {
			return nil, err
		}
		out = append(out, seg)
	}

	// A segment with no room for another item is archived right away so its
	// header records the block as complete.
	if segmentSize-len(a.buffer) <= blockItemOverhead {
		seg, err := a.archiveSegment()
		if err != nil {
			return nil, err
		}
		out = append(out, seg)
	}

	return out, nil
}

// archiveSegment pads the buffered data into a recorded segment, archives
// it and starts the next segment with the new header.
func (a *Archiver) archiveSegment() (ArchivedSegment, error) {
	recorded := make(segments.RecordedHistorySegment, a.geometry.SegmentSize())
	copy(recorded, a.buffer)

	source, err := recorded.RawRecords()
	if err != nil {
		return ArchivedSegment{}, err
	}

	positions, err := a.erasure.extend(source)
	if err != nil {
		return ArchivedSegment{}, err
	}

	records := make([]pieces.Record, len(positions))
	for i, raw := range positions {
		if records[i], err = pieces.RecordFromRaw(raw); err != nil {
			return ArchivedSegment{}, err
		}
	}

	sc, err := a.committer.Commit(records)
	if err != nil {
		return ArchivedSegment{}, fmt.Errorf("committing to segment: %w", err)
	}

	flat := pieces.NewFlatPieces(len(records))
	for i, r := range records {
		p, err := pieces.AssemblePiece(r, sc.Records[i], sc.Witness[i])
		if err != nil {
			return ArchivedSegment{}, err
		}
		copy(flat.Piece(i), p)
	}

	header := segments.NewSegmentHeaderV0(segments.SegmentHeaderV0{
		SegmentIndex:          segments.SegmentIndex(a.chain.Len()),
		SegmentCommitment:     sc.Segment,
		PrevSegmentHeaderHash: a.chain.TipHash(),
		LastArchivedBlock:     a.lastBlock,
	})

	if err := a.chain.Append(header); err != nil {
		return ArchivedSegment{}, err
	}

	a.buffer = appendHeaderItem(a.buffer[:0], header)

	a.evHandler("archiver: segment archived: index[%d] last_block[%d] hash[%s]", header.SegmentIndex(), a.lastBlock.Number, header.Hash())

	return ArchivedSegment{Header: header, Pieces: flat}, nil
}

// =============================================================================

// VerifyPiece checks the piece at the position of a segment against the
// segment commitment.
func VerifyPiece(c commitment.Committer, segmentCommitment segments.SegmentCommitment, piece pieces.Piece, position uint32) bool {
	return c.VerifyRecord(segmentCommitment, piece.Record(), position, piece.Witness())
}

// Reconstruct recovers the recorded segment data from the pieces of an
// archived segment. The input holds one piece per position, nil when the
// piece is missing. Any half of the pieces is enough.
func Reconstruct(g Geometry, segmentPieces []pieces.Piece) (segments.RecordedHistorySegment, error) {
	if err := g.validate(); err != nil {
		return nil, err
	}

	if len(segmentPieces) != g.PiecesPerSegment() {
		return nil, fmt.Errorf("reconstruct: got %d positions, exp %d", len(segmentPieces), g.PiecesPerSegment())
	}

	var present int
	positions := make([]pieces.RawRecord, len(segmentPieces))
	for i, p := range segmentPieces {
		if p == nil {
			continue
		}

		raw, err := p.Record().ToRaw()
		if err != nil {
			return nil, fmt.Errorf("reconstruct: position %d: %w", i, err)
		}
		positions[i] = raw
		present++
	}

	if present < g.RecordsPerSegment {
		return nil, fmt.Errorf("%w: have %d, need %d", ErrNotEnoughPieces, present, g.RecordsPerSegment)
	}

	e, err := newErasure(g.RecordsPerSegment)
	if err != nil {
		return nil, err
	}

	source, err := e.recover(positions)
	if err != nil {
		return nil, err
	}

	out := make(segments.RecordedHistorySegment, 0, g.SegmentSize())
	for _, r := range source {
		out = append(out, r...)
	}

	return out, nil
}
