// Package commitment defines the polynomial commitment capability the
// archiver consumes and provides HashCommitter, a hash based stand-in for
// development networks and tests. HashCommitter is not a KZG scheme: its
// witnesses bind a record to a segment but are not succinct proofs.
package commitment

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/merkle"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
	"golang.org/x/crypto/blake2b"
)

// ErrNoRecords is returned when committing to an empty segment.
var ErrNoRecords = errors.New("no records to commit to")

// SegmentCommitments is the result of committing to the records of a
// segment.
type SegmentCommitments struct {
	Segment segments.SegmentCommitment
	Records []pieces.RecordCommitment
	Witness []pieces.RecordWitness
}

// Committer produces the commitments of an archived segment. Position i of
// every slice in the result corresponds to records[i].
type Committer interface {
	Commit(records []pieces.Record) (SegmentCommitments, error)
	VerifyRecord(segment segments.SegmentCommitment, record pieces.Record, position uint32, witness pieces.RecordWitness) bool
}

// RecordCommitmentHash reduces a record commitment to the scalar carried in
// solutions.
func RecordCommitmentHash(c pieces.RecordCommitment) crypto.Scalar {
	h := crypto.Blake2b256(c[:])

	var safe [crypto.ScalarSafeBytes]byte
	copy(safe[:], h[:crypto.ScalarSafeBytes])
	return crypto.FromSafeBytes(safe)
}

// =============================================================================

// HashCommitter commits to records with BLAKE2b-384 and aggregates the
// record commitments into a merkle root.
type HashCommitter struct{}

// NewHashCommitter constructs a hash committer.
func NewHashCommitter() HashCommitter {
	return HashCommitter{}
}

// Commit implements Committer.
func (HashCommitter) Commit(records []pieces.Record) (SegmentCommitments, error) {
	if len(records) == 0 {
		return SegmentCommitments{}, ErrNoRecords
	}

	out := SegmentCommitments{
		Records: make([]pieces.RecordCommitment, len(records)),
		Witness: make([]pieces.RecordWitness, len(records)),
	}

	leaves := make([]leaf, len(records))
	for i, r := range records {
		if len(r) != pieces.RecordSize {
			return SegmentCommitments{}, fmt.Errorf("record %d: %w: %d", i, pieces.ErrInvalidSize, len(r))
		}

		out.Records[i] = recordCommitment(r)
		leaves[i] = leaf{position: uint32(i), hash: RecordCommitmentHash(out.Records[i])}
	}

	tree, err := merkle.NewTree(leaves, merkle.WithHashStrategy[leaf](merkle.Blake2b384))
	if err != nil {
		return SegmentCommitments{}, fmt.Errorf("building commitment tree: %w", err)
	}
	copy(out.Segment[:], tree.MerkleRoot)

	for i := range leaves {
		out.Witness[i] = witness(out.Segment, leaves[i].hash, leaves[i].position)
	}

	return out, nil
}

// VerifyRecord implements Committer.
func (HashCommitter) VerifyRecord(segment segments.SegmentCommitment, record pieces.Record, position uint32, w pieces.RecordWitness) bool {
	if len(record) != pieces.RecordSize {
		return false
	}

	return witness(segment, RecordCommitmentHash(recordCommitment(record)), position) == w
}

// VerifyRecordInclusion checks the witness of a record commitment hash as
// carried in a solution.
func (HashCommitter) VerifyRecordInclusion(segment segments.SegmentCommitment, recordCommitmentHash crypto.Scalar, w crypto.Witness, position uint32) bool {
	return witness(segment, recordCommitmentHash, position) == w
}

// =============================================================================

type leaf struct {
	position uint32
	hash     crypto.Scalar
}

// Hash implements the merkle Hashable interface.
func (l leaf) Hash() ([]byte, error) {
	var pos [4]byte
	binary.LittleEndian.PutUint32(pos[:], l.position)

	h := crypto.Blake2b256(pos[:], l.hash[:])
	return h[:], nil
}

// Equals implements the merkle Hashable interface.
func (l leaf) Equals(other leaf) bool {
	return l == other
}

func recordCommitment(r pieces.Record) pieces.RecordCommitment {
	return pieces.RecordCommitment(blake2b.Sum384(r))
}

func witness(segment segments.SegmentCommitment, recordHash crypto.Scalar, position uint32) pieces.RecordWitness {
	var pos [4]byte
	binary.LittleEndian.PutUint32(pos[:], position)

	h, _ := blake2b.New384(segment[:])
	h.Write(pos[:])
	h.Write(recordHash[:])

	var w pieces.RecordWitness
	h.Sum(w[:0])
	return w
}
