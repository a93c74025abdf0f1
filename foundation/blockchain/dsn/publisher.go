package dsn

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/vedhavyas/subspace/foundation/blockchain/archiver"
	"github.com/vedhavyas/subspace/foundation/blockchain/commitment"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

// EventHandler defines a function that is called when events occur in the
// publication of segments.
type EventHandler func(v string, args ...any)

// Publisher stores archived segments so their pieces can be served. A
// segment published twice in a row is skipped.
type Publisher struct {
	pieces    PieceStore
	headers   HeaderStore
	geometry  archiver.Geometry
	evHandler EventHandler

	mu            sync.Mutex
	lastPublished *segments.SegmentIndex
}

// NewPublisher constructs a publisher over the stores.
func NewPublisher(pieceStore PieceStore, headerStore HeaderStore, geometry archiver.Geometry, evHandler EventHandler) *Publisher {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	return &Publisher{
		pieces:    pieceStore,
		headers:   headerStore,
		geometry:  geometry,
		evHandler: ev,
	}
}

// Publish stores every piece of the segment followed by its header. It
// reports false when the segment was skipped as a repeat.
func (p *Publisher) Publish(ctx context.Context, seg archiver.ArchivedSegment) (bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	segmentIndex := seg.Header.SegmentIndex()
	p.evHandler("dsn: publish: processing segment[%d]", segmentIndex)

	if p.lastPublished != nil && *p.lastPublished == segmentIndex {
		segmentsSkipped.Inc()
		p.evHandler("dsn: publish: segment[%d] skipped", segmentIndex)
		return false, nil
	}

	if seg.Pieces.Count() != p.geometry.PiecesPerSegment() {
		return false, fmt.Errorf("segment %d: got %d pieces, exp %d", segmentIndex, seg.Pieces.Count(), p.geometry.PiecesPerSegment())
	}

	start := time.Now()
	first := p.geometry.FirstPieceIndex(segmentIndex)

	for i, piece := range seg.Pieces.Pieces() {
		idx := first + pieces.PieceIndex(i)
		if err := p.pieces.PutPiece(ctx, idx, piece); err != nil {
			return false, fmt.Errorf("storing piece %d: %w", idx, err)
		}
		piecesPublished.Inc()
	}

	if err := p.headers.PutHeader(ctx, seg.Header); err != nil {
		return false, fmt.Errorf("storing header %d: %w", segmentIndex, err)
	}

	publishDuration.Observe(time.Since(start).Seconds())
	segmentsPublished.Inc()

	p.lastPublished = &segmentIndex
	p.evHandler("dsn: publish: segment[%d] processed: pieces[%d] first[%d]", segmentIndex, seg.Pieces.Count(), first)

	return true, nil
}

// =============================================================================

// Getter retrieves pieces and checks them against the commitment of their
// segment before handing them out.
type Getter struct {
	pieces    PieceStore
	headers   HeaderStore
	geometry  archiver.Geometry
	committer commitment.Committer
}

// NewGetter constructs a piece getter.
func NewGetter(pieceStore PieceStore, headerStore HeaderStore, geometry archiver.Geometry, committer commitment.Committer) *Getter {
	return &Getter{
		pieces:    pieceStore,
		headers:   headerStore,
		geometry:  geometry,
		committer: committer,
	}
}

// GetPiece returns the verified piece at the index.
func (g *Getter) GetPiece(ctx context.Context, idx pieces.PieceIndex) (pieces.Piece, error) {
	piece, err := g.pieces.GetPiece(ctx, idx)
	if err != nil {
		return nil, err
	}

	segmentIndex, position := g.geometry.Locate(idx)

	header, err := g.headers.GetHeader(ctx, segmentIndex)
	if err != nil {
		return nil, fmt.Errorf("header of segment %d: %w", segmentIndex, err)
	}

	if !archiver.VerifyPiece(g.committer, header.SegmentCommitment(), piece, uint32(position)) {
		return nil, fmt.Errorf("piece %d: %w %d", idx, ErrInvalidPiece, segmentIndex)
	}

	return piece, nil
}

// GetSegment returns the pieces of a segment ready for archiver.Reconstruct.
// Pieces missing from the store or failing verification are left nil, any
// other failure is returned.
func (g *Getter) GetSegment(ctx context.Context, segmentIndex segments.SegmentIndex) ([]pieces.Piece, error) {
	out := make([]pieces.Piece, g.geometry.PiecesPerSegment())
	first := g.geometry.FirstPieceIndex(segmentIndex)

	for i := range out {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		piece, err := g.GetPiece(ctx, first+pieces.PieceIndex(i))
		switch {
		case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidPiece):
			continue
		case err != nil:
			return nil, fmt.Errorf("segment %d: %w", segmentIndex, err)
		}
		out[i] = piece
	}

	return out, nil
}
