package state

import (
	"context"
	"fmt"

	"github.com/vedhavyas/subspace/foundation/blockchain/archiver"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/sector"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
	"github.com/vedhavyas/subspace/foundation/blockchain/solution"
)

// Status is a snapshot of the archiving progress of the node.
type Status struct {
	Geometry          archiver.Geometry
	Segments          int
	LastArchivedBlock *segments.LastArchivedBlock
	BufferedBytes     int
	PendingSegments   int
}

// QueryStatus returns the archiving progress of the node.
func (s *State) QueryStatus() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := Status{
		Geometry:        s.geometry,
		Segments:        s.archiver.Chain().Len(),
		BufferedBytes:   s.archiver.BufferedBytes(),
		PendingSegments: len(s.pending),
	}

	if lab, ok := s.archiver.LastArchivedBlock(); ok {
		st.LastArchivedBlock = &lab
	}

	return st
}

// QueryPiece returns the piece at the index, verified against the
// commitment of its segment.
func (s *State) QueryPiece(ctx context.Context, idx pieces.PieceIndex) (pieces.Piece, error) {
	return s.getter.GetPiece(ctx, idx)
}

// QuerySegmentHeader returns the header of the segment.
func (s *State) QuerySegmentHeader(ctx context.Context, idx segments.SegmentIndex) (segments.SegmentHeader, error) {
	return s.headers.GetHeader(ctx, idx)
}

// QueryLatestHeader returns the header of the last published segment.
func (s *State) QueryLatestHeader(ctx context.Context) (segments.SegmentHeader, error) {
	return s.headers.LatestHeader(ctx)
}

// QuerySegmentCommitment returns the commitment of a published segment,
// false when the segment is unknown. It lets the state serve as the
// segment commitment source of solution verification.
func (s *State) QuerySegmentCommitment(idx segments.SegmentIndex) (segments.SegmentCommitment, bool) {
	return s.headers.SegmentCommitment(idx)
}

// QueryRecordedSegment rebuilds the recorded data of a segment from the
// stored pieces, any half of them is enough.
func (s *State) QueryRecordedSegment(ctx context.Context, idx segments.SegmentIndex) (segments.RecordedHistorySegment, error) {
	segmentPieces, err := s.getter.GetSegment(ctx, idx)
	if err != nil {
		return nil, err
	}

	return archiver.Reconstruct(s.geometry, segmentPieces)
}

// QueryBlocks reassembles every block recovered from the published history,
// walking the segments from genesis up to the latest one.
func (s *State) QueryBlocks(ctx context.Context) ([]archiver.Block, error) {
	latest, err := s.headers.LatestHeader(ctx)
	if err != nil {
		return nil, err
	}

	var out []archiver.Block
	var r archiver.Reassembler

	for idx := segments.SegmentIndex(0); idx <= latest.SegmentIndex(); idx++ {
		recorded, err := s.QueryRecordedSegment(ctx, idx)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", idx, err)
		}

		blocks, err := r.AddSegment(recorded)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", idx, err)
		}
		out = append(out, blocks...)

		h, err := s.headers.GetHeader(ctx, idx)
		if err != nil {
			return nil, err
		}
		r.Follow(h)
	}

	return out, nil
}

// =============================================================================

// QuerySectorPieceIndex derives the history piece stored at the offset of
// a farmer's sector.
func (s *State) QuerySectorPieceIndex(publicKey crypto.PublicKey, sectorIndex sector.SectorIndex, pieceOffset pieces.PieceIndex, totalPieces pieces.NonZeroU64) pieces.PieceIndex {
	return sector.NewLegacySectorID(publicKey, sectorIndex).DerivePieceIndex(pieceOffset, totalPieces)
}

// QueryLocalChallenge derives the sector local challenge for the global
// challenge of a slot.
func (s *State) QueryLocalChallenge(publicKey crypto.PublicKey, sectorIndex sector.SectorIndex, globalChallenge crypto.Blake2b256Hash) sector.SolutionRange {
	return sector.NewLegacySectorID(publicKey, sectorIndex).DeriveLocalChallenge(globalChallenge)
}

// VerifySolution verifies the parts of a solution the archived history can
// vouch for and returns its weight. Pieces are located with the geometry
// the node archives with.
func (s *State) VerifySolution(sol solution.Solution[crypto.PublicKey, crypto.PublicKey], params solution.Params, verifier solution.ProofVerifier) (solution.BlockWeight, error) {
	g := s.Geometry()
	params.Locate = func(pi pieces.PieceIndex) (segments.SegmentIndex, uint32) {
		si, position := g.Locate(pi)
		return si, uint32(position)
	}

	return solution.Verify(sol, params, s.headers, verifier)
}
