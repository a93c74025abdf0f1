// Package pieces defines the piece, the fixed size atomic unit of archived
// history, together with the record it carries and the index used to
// address it.
package pieces

import (
	"errors"
	"fmt"

	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
)

// ErrInvalidSize is returned when a byte slice does not have the size of
// the value it is converted into.
var ErrInvalidSize = errors.New("invalid size")

// Record sizes. A raw record is split into RawRecordNumChunks chunks of
// crypto.ScalarSafeBytes, each expanded into a full scalar in the record.
const (
	RawRecordNumChunks   = 1 << 15
	RawRecordSize        = crypto.ScalarSafeBytes * RawRecordNumChunks
	RecordSize           = crypto.ScalarFullBytes * RawRecordNumChunks
	RecordCommitmentSize = crypto.CommitmentSize
	RecordWitnessSize    = crypto.WitnessSize
)

// PieceSize is the size of a piece, the record followed by its commitment
// and witness.
const PieceSize = RecordSize + RecordCommitmentSize + RecordWitnessSize

// RecordCommitment is the commitment to a record.
type RecordCommitment = crypto.Commitment

// RecordWitness is the witness of a record commitment against the
// commitment of the segment the record belongs to.
type RecordWitness = crypto.Witness

// =============================================================================

// RawRecord holds the source bytes of one record before expansion.
type RawRecord []byte

// NewRawRecord allocates a zeroed raw record.
func NewRawRecord() RawRecord {
	return make(RawRecord, RawRecordSize)
}

// Record holds the expanded record where every raw chunk occupies a full
// scalar, padded with a zero byte.
type Record []byte

// NewRecord allocates a zeroed record.
func NewRecord() Record {
	return make(Record, RecordSize)
}

// RecordFromRaw expands the raw record into a record.
func RecordFromRaw(raw RawRecord) (Record, error) {
	if len(raw) != RawRecordSize {
		return nil, fmt.Errorf("raw record: %w: got %d, exp %d", ErrInvalidSize, len(raw), RawRecordSize)
	}

	record := NewRecord()
	for i := 0; i < RawRecordNumChunks; i++ {
		copy(record[i*crypto.ScalarFullBytes:], raw[i*crypto.ScalarSafeBytes:(i+1)*crypto.ScalarSafeBytes])
	}

	return record, nil
}

// ToRaw drops the padding byte of every scalar, returning the raw record.
func (r Record) ToRaw() (RawRecord, error) {
	if len(r) != RecordSize {
		return nil, fmt.Errorf("record: %w: got %d, exp %d", ErrInvalidSize, len(r), RecordSize)
	}

	raw := NewRawRecord()
	for i := 0; i < RawRecordNumChunks; i++ {
		copy(raw[i*crypto.ScalarSafeBytes:], r[i*crypto.ScalarFullBytes:i*crypto.ScalarFullBytes+crypto.ScalarSafeBytes])
	}

	return raw, nil
}

// Chunk returns the scalar at the specified chunk offset.
func (r Record) Chunk(offset uint32) (crypto.Scalar, error) {
	if offset >= RawRecordNumChunks {
		return crypto.Scalar{}, fmt.Errorf("chunk offset %d out of range", offset)
	}

	var s crypto.Scalar
	copy(s[:], r[int(offset)*crypto.ScalarFullBytes:])
	return s, nil
}

// =============================================================================

// Piece is one record together with its commitment and witness. Once
// archived a piece is never modified.
type Piece []byte

// NewPiece allocates a zeroed piece.
func NewPiece() Piece {
	return make(Piece, PieceSize)
}

// PieceFromBytes copies the bytes into a new piece, validating the size.
func PieceFromBytes(b []byte) (Piece, error) {
	if len(b) != PieceSize {
		return nil, fmt.Errorf("piece: %w: got %d, exp %d", ErrInvalidSize, len(b), PieceSize)
	}

	p := NewPiece()
	copy(p, b)
	return p, nil
}

// AssemblePiece lays out the record, commitment and witness into a piece.
func AssemblePiece(record Record, commitment RecordCommitment, witness RecordWitness) (Piece, error) {
	if len(record) != RecordSize {
		return nil, fmt.Errorf("record: %w: got %d, exp %d", ErrInvalidSize, len(record), RecordSize)
	}

	p := NewPiece()
	copy(p, record)
	copy(p[RecordSize:], commitment[:])
	copy(p[RecordSize+RecordCommitmentSize:], witness[:])
	return p, nil
}

// Record returns the record part of the piece without copying.
func (p Piece) Record() Record {
	return Record(p[:RecordSize])
}

// Commitment returns the record commitment.
func (p Piece) Commitment() RecordCommitment {
	var c RecordCommitment
	copy(c[:], p[RecordSize:RecordSize+RecordCommitmentSize])
	return c
}

// Witness returns the record witness.
func (p Piece) Witness() RecordWitness {
	var w RecordWitness
	copy(w[:], p[RecordSize+RecordCommitmentSize:])
	return w
}

// =============================================================================

// FlatPieces stores a number of pieces in one contiguous buffer.
type FlatPieces []byte

// NewFlatPieces allocates a zeroed buffer for count pieces.
func NewFlatPieces(count int) FlatPieces {
	return make(FlatPieces, count*PieceSize)
}

// FlatPiecesFromBytes wraps a buffer whose size is a multiple of PieceSize.
func FlatPiecesFromBytes(b []byte) (FlatPieces, error) {
	if len(b)%PieceSize != 0 {
		return nil, fmt.Errorf("flat pieces: %w: %d is not a multiple of %d", ErrInvalidSize, len(b), PieceSize)
	}

	return FlatPieces(b), nil
}

// Count returns the number of pieces held.
func (fp FlatPieces) Count() int {
	return len(fp) / PieceSize
}

// Piece returns the piece at position i without copying.
func (fp FlatPieces) Piece(i int) Piece {
	return Piece(fp[i*PieceSize : (i+1)*PieceSize : (i+1)*PieceSize])
}

// Pieces returns every piece without copying.
func (fp FlatPieces) Pieces() []Piece {
	out := make([]Piece, fp.Count())
	for i := range out {
		out[i] = fp.Piece(i)
	}
	return out
}
