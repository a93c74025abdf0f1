package solution

import (
	"errors"
	"fmt"

	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/sector"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

// Set of errors returned by Verify.
var (
	ErrInvalidPieceOffset   = errors.New("piece offset outside of sector")
	ErrInvalidChunkOffset   = errors.New("chunk offset outside of record")
	ErrUnknownSegment       = errors.New("segment commitment not known")
	ErrInvalidInclusion     = errors.New("record not included in segment")
	ErrInvalidChunk         = errors.New("chunk not consistent with record")
	ErrInvalidSignature     = errors.New("invalid chunk signature")
	ErrOutsideSolutionRange = errors.New("tag outside of solution range")
)

// ProofVerifier is the set of cryptographic checks the commitment and VRF
// schemes provide. They are implemented outside of this package.
type ProofVerifier interface {
	VerifyRecordInclusion(segmentCommitment segments.SegmentCommitment, recordCommitmentHash crypto.Scalar, witness crypto.Witness, position uint32) bool
	VerifyChunk(recordCommitmentHash crypto.Scalar, chunkOffset uint32, chunk crypto.ScalarLegacy) bool
	VerifyChunkSignature(publicKey crypto.PublicKey, chunk crypto.ScalarLegacy, signature ChunkSignature) bool
}

// SegmentCommitments looks up the commitment of an archived segment.
type SegmentCommitments interface {
	SegmentCommitment(idx segments.SegmentIndex) (segments.SegmentCommitment, bool)
}

// Locator maps a piece index to its segment and its position within it.
type Locator func(pi pieces.PieceIndex) (segments.SegmentIndex, uint32)

// ProtocolLocator locates pieces in segments of the protocol geometry.
func ProtocolLocator(pi pieces.PieceIndex) (segments.SegmentIndex, uint32) {
	return segments.SegmentIndexOf(pi), segments.PositionOf(pi)
}

// Params are the consensus values a solution is checked against. Locate
// must match the geometry the history was archived with, nil means the
// protocol geometry.
type Params struct {
	GlobalChallenge crypto.Blake2b256Hash
	SolutionRange   sector.SolutionRange
	Locate          Locator
}

// Verify checks the solution and returns the weight it contributes. The
// sector derivations and the range check are done here, the proofs are
// delegated to the verifier.
func Verify[RA any](s Solution[crypto.PublicKey, RA], params Params, commitments SegmentCommitments, verifier ProofVerifier) (BlockWeight, error) {
	if s.PieceOffset >= sector.PiecesInSector {
		return BlockWeight{}, fmt.Errorf("%w: %d", ErrInvalidPieceOffset, s.PieceOffset)
	}

	if s.ChunkOffset >= pieces.RawRecordNumChunks {
		return BlockWeight{}, fmt.Errorf("%w: %d", ErrInvalidChunkOffset, s.ChunkOffset)
	}

	sectorID := sector.NewLegacySectorID(s.PublicKey, s.SectorIndex)
	pieceIndex := sectorID.DerivePieceIndex(s.PieceOffset, s.TotalPieces)

	locate := params.Locate
	if locate == nil {
		locate = ProtocolLocator
	}
	segmentIndex, position := locate(pieceIndex)

	segmentCommitment, ok := commitments.SegmentCommitment(segmentIndex)
	if !ok {
		return BlockWeight{}, fmt.Errorf("%w: segment %d", ErrUnknownSegment, segmentIndex)
	}

	if !verifier.VerifyRecordInclusion(segmentCommitment, s.RecordCommitmentHash, s.PieceWitness, position) {
		return BlockWeight{}, fmt.Errorf("%w: piece %d", ErrInvalidInclusion, pieceIndex)
	}

	if !verifier.VerifyChunk(s.RecordCommitmentHash, s.ChunkOffset, s.Chunk) {
		return BlockWeight{}, fmt.Errorf("%w: chunk %d", ErrInvalidChunk, s.ChunkOffset)
	}

	if !verifier.VerifyChunkSignature(s.PublicKey, s.Chunk, s.ChunkSignature) {
		return BlockWeight{}, ErrInvalidSignature
	}

	tag := Tag(s.ChunkSignature)
	local := sectorID.DeriveLocalChallenge(params.GlobalChallenge)
	if !IsWithinSolutionRange(tag, local, params.SolutionRange) {
		return BlockWeight{}, fmt.Errorf("%w: tag %d, challenge %d", ErrOutsideSolutionRange, tag, local)
	}

	return Weight(tag, local), nil
}
