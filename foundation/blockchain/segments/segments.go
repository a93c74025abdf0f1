// Package segments defines segments, fixed count batches of pieces that
// represent a contiguous slice of archived blocks, and the hash linked chain
// of segment headers that commits to them.
package segments

import (
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
)

// Segment geometry. A recorded segment holds NumRawRecords raw records, the
// erasure coding expands them into NumPieces archived pieces.
const (
	NumRawRecords     = 128
	ErasureCodingRate = 2
	NumPieces         = NumRawRecords * ErasureCodingRate
)

// RecordedHistorySegmentSize is the number of bytes of block data that
// must exist before a segment can be archived.
const RecordedHistorySegmentSize = pieces.RawRecordSize * NumRawRecords

// =============================================================================

// SegmentIndex is the position of a segment in the archived history.
type SegmentIndex uint64

// FirstPieceIndex returns the index of the first piece of the segment.
func (si SegmentIndex) FirstPieceIndex() pieces.PieceIndex {
	return pieces.PieceIndex(uint64(si) * NumPieces)
}

// LastPieceIndex returns the index of the last piece of the segment.
func (si SegmentIndex) LastPieceIndex() pieces.PieceIndex {
	return si.FirstPieceIndex() + NumPieces - 1
}

// PieceIndexes returns the indexes of every piece of the segment in order.
func (si SegmentIndex) PieceIndexes() []pieces.PieceIndex {
	out := make([]pieces.PieceIndex, NumPieces)
	first := si.FirstPieceIndex()
	for i := range out {
		out[i] = first + pieces.PieceIndex(i)
	}
	return out
}

// Encode implements scale.Encodeable.
func (si SegmentIndex) Encode(enc scale.Encoder) error {
	return codec.WriteUint64(enc, uint64(si))
}

// Decode implements scale.Decodeable.
func (si *SegmentIndex) Decode(dec scale.Decoder) error {
	v, err := codec.ReadUint64(dec)
	if err != nil {
		return err
	}
	*si = SegmentIndex(v)
	return nil
}

// SegmentIndexOf returns the segment a piece belongs to.
func SegmentIndexOf(pi pieces.PieceIndex) SegmentIndex {
	return SegmentIndex(uint64(pi) / NumPieces)
}

// PositionOf returns the position of a piece within its segment.
func PositionOf(pi pieces.PieceIndex) uint32 {
	return uint32(uint64(pi) % NumPieces)
}

// =============================================================================

// RecordedHistorySegment is the raw block data of one segment, read as a
// sequence of raw records.
type RecordedHistorySegment []byte

// NewRecordedHistorySegment allocates a zeroed recorded segment.
func NewRecordedHistorySegment() RecordedHistorySegment {
	return make(RecordedHistorySegment, RecordedHistorySegmentSize)
}

// RawRecords splits the segment into its raw records without copying.
func (rs RecordedHistorySegment) RawRecords() ([]pieces.RawRecord, error) {
	if len(rs)%pieces.RawRecordSize != 0 {
		return nil, fmt.Errorf("recorded segment: %w: %d is not a multiple of %d", pieces.ErrInvalidSize, len(rs), pieces.RawRecordSize)
	}

	out := make([]pieces.RawRecord, len(rs)/pieces.RawRecordSize)
	for i := range out {
		out[i] = pieces.RawRecord(rs[i*pieces.RawRecordSize : (i+1)*pieces.RawRecordSize])
	}
	return out, nil
}

// ArchivedHistorySegment is the erasure coded and committed form of a
// recorded segment. It is produced once and never modified.
type ArchivedHistorySegment struct {
	pieces.FlatPieces
}

// NewArchivedHistorySegment allocates the pieces of a segment.
func NewArchivedHistorySegment() ArchivedHistorySegment {
	return ArchivedHistorySegment{FlatPieces: pieces.NewFlatPieces(NumPieces)}
}
