package solution_test

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/sector"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
	"github.com/vedhavyas/subspace/foundation/blockchain/solution"
	"lukechampine.com/frand"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

func Test_GenesisSolution(t *testing.T) {
	t.Log("Given the need for a placeholder solution in the genesis block.")
	{
		var pk crypto.PublicKey
		frand.Read(pk[:])

		s := solution.GenesisSolution(pk, pk)

		if s.SectorIndex != 0 || s.TotalPieces.Get() != 1 || s.PieceOffset != 0 || s.ChunkOffset != 0 {
			t.Fatalf("\t%s\tShould point at sector 0 with one total piece.", failed)
		}
		t.Logf("\t%s\tShould point at sector 0 with one total piece.", success)

		if s.ChunkSignature != (solution.ChunkSignature{}) || s.Chunk != (crypto.ScalarLegacy{}) {
			t.Fatalf("\t%s\tShould carry an all zero chunk and signature.", failed)
		}
		t.Logf("\t%s\tShould carry an all zero chunk and signature.", success)

		data := codec.MustEncode(s)
		if len(data) != 300 {
			t.Fatalf("\t%s\tShould encode into 300 bytes: %d", failed, len(data))
		}
		t.Logf("\t%s\tShould encode into 300 bytes.", success)

		if !bytes.Equal(data[:32], pk[:]) || binary.LittleEndian.Uint64(data[72:80]) != 1 {
			t.Fatalf("\t%s\tShould lay out fields in declaration order.", failed)
		}
		t.Logf("\t%s\tShould lay out fields in declaration order.", success)
	}
}

func Test_SolutionEncoding(t *testing.T) {
	t.Log("Given the need to carry solutions on chain.")
	{
		s := randomSolution()

		data := codec.MustEncode(s)

		var back solution.Solution[crypto.PublicKey, crypto.PublicKey]
		if err := codec.Decode(data, &back); err != nil {
			t.Fatalf("\t%s\tShould decode the solution: %v", failed, err)
		}
		if back != s {
			t.Fatalf("\t%s\tShould get back the same solution.", failed)
		}
		t.Logf("\t%s\tShould get back the same solution.", success)

		zeroTotal := append([]byte(nil), data...)
		copy(zeroTotal[72:80], make([]byte, 8))
		if err := codec.Decode(zeroTotal, &back); !errors.Is(err, pieces.ErrZeroTotalPieces) {
			t.Fatalf("\t%s\tShould reject zero total pieces: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject zero total pieces.", success)

		if err := codec.Decode(data[:len(data)-1], &back); err == nil {
			t.Fatalf("\t%s\tShould reject a truncated solution.", failed)
		}
		t.Logf("\t%s\tShould reject a truncated solution.", success)

		js, err := json.Marshal(s)
		if err != nil {
			t.Fatalf("\t%s\tShould marshal to JSON: %v", failed, err)
		}

		var fromJSON solution.Solution[crypto.PublicKey, crypto.PublicKey]
		if err := json.Unmarshal(js, &fromJSON); err != nil || fromJSON != s {
			t.Fatalf("\t%s\tShould round trip through JSON: %v", failed, err)
		}
		t.Logf("\t%s\tShould round trip through JSON.", success)
	}
}

type legacyAddress [32]byte
type accountID string

func Test_IntoRewardAddressFormat(t *testing.T) {
	t.Log("Given the need to change the reward address format of a solution.")
	{
		s := randomSolution()

		toLegacy := func(pk crypto.PublicKey) legacyAddress { return legacyAddress(pk) }
		toAccount := func(la legacyAddress) accountID { return accountID(crypto.PublicKey(la).String()) }

		got := solution.IntoRewardAddressFormat(s, toLegacy, toAccount)

		if got.RewardAddress != accountID(s.RewardAddress.String()) {
			t.Fatalf("\t%s\tShould convert the reward address through both steps.", failed)
		}
		t.Logf("\t%s\tShould convert the reward address through both steps.", success)

		back := solution.IntoRewardAddressFormat(got,
			func(a accountID) string { return string(a) },
			func(h string) crypto.PublicKey {
				pk, _ := crypto.ParsePublicKey(h)
				return pk
			},
		)

		if back != s {
			t.Fatalf("\t%s\tShould preserve every other field.", failed)
		}
		t.Logf("\t%s\tShould preserve every other field.", success)

		if !bytes.Equal(codec.MustEncode(back), codec.MustEncode(s)) {
			t.Fatalf("\t%s\tShould preserve the encoding byte for byte.", failed)
		}
		t.Logf("\t%s\tShould preserve the encoding byte for byte.", success)

		legacy := solution.IntoRewardAddressFormat(s, toLegacy, func(la legacyAddress) legacyAddress { return la })

		var decoded solution.Solution[crypto.PublicKey, legacyAddress]
		if err := codec.Decode(codec.MustEncode(legacy), &decoded); err != nil || decoded != legacy {
			t.Fatalf("\t%s\tShould decode a reward address without a decode method: %v", failed, err)
		}
		t.Logf("\t%s\tShould decode a reward address without a decode method.", success)
	}
}

func Test_BlockWeight(t *testing.T) {
	t.Log("Given the need to weigh blocks for fork choice.")
	{
		if solution.Weight(5, 5).Cmp(solution.NewBlockWeight(math.MaxUint64)) != 0 {
			t.Fatalf("\t%s\tShould give the heaviest weight to an exact tag.", failed)
		}
		t.Logf("\t%s\tShould give the heaviest weight to an exact tag.", success)

		if solution.Weight(5, 10).Cmp(solution.Weight(5, 1000)) <= 0 {
			t.Fatalf("\t%s\tShould make closer tags heavier.", failed)
		}
		t.Logf("\t%s\tShould make closer tags heavier.", success)

		if solution.Weight(math.MaxUint64, 1).Cmp(solution.Weight(1, 1)) >= 0 || solution.Weight(math.MaxUint64, 1).Cmp(solution.Weight(4, 1)) <= 0 {
			t.Fatalf("\t%s\tShould measure distance around the ring.", failed)
		}
		t.Logf("\t%s\tShould measure distance around the ring.", success)

		total := solution.AccumulateWeight(solution.NewBlockWeight(2), solution.NewBlockWeight(3))
		if total.String() != "5" {
			t.Fatalf("\t%s\tShould sum weights: %s", failed, total)
		}
		t.Logf("\t%s\tShould sum weights.", success)

		sat := solution.MaxBlockWeight().Add(solution.NewBlockWeight(1))
		if sat.Cmp(solution.MaxBlockWeight()) != 0 {
			t.Fatalf("\t%s\tShould saturate at the u128 maximum: %s", failed, sat)
		}
		t.Logf("\t%s\tShould saturate at the u128 maximum.", success)

		data := codec.MustEncode(solution.MaxBlockWeight())
		if !bytes.Equal(data, bytes.Repeat([]byte{0xff}, 16)) {
			t.Fatalf("\t%s\tShould encode as a 16 byte u128: %x", failed, data)
		}

		var back solution.BlockWeight
		if err := codec.Decode(codec.MustEncode(solution.NewBlockWeight(77)), &back); err != nil || back.String() != "77" {
			t.Fatalf("\t%s\tShould decode the u128: %v", failed, err)
		}
		t.Logf("\t%s\tShould encode as a 16 byte u128.", success)
	}
}

func Test_SolutionRange(t *testing.T) {
	type table struct {
		name  string
		tag   uint64
		local uint64
		rng   uint64
		exp   bool
	}

	tt := []table{
		{name: "exact", tag: 10, local: 10, rng: 0, exp: true},
		{name: "inside", tag: 10, local: 14, rng: 8, exp: true},
		{name: "outside", tag: 10, local: 15, rng: 8, exp: false},
		{name: "wraps", tag: math.MaxUint64, local: 2, rng: 6, exp: true},
	}

	t.Log("Given the need to decide whether a tag is close enough to its challenge.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				got := solution.IsWithinSolutionRange(tst.tag, tst.local, tst.rng)
				if got != tst.exp {
					t.Fatalf("\t%s\tTest %d:\tShould get %v: got %v", failed, testID, tst.exp, got)
				}
				t.Logf("\t%s\tTest %d:\tShould get %v.", success, testID, tst.exp)
			}

			t.Run(tst.name, f)
		}
	}
}

// =============================================================================

type commitments map[segments.SegmentIndex]segments.SegmentCommitment

func (c commitments) SegmentCommitment(idx segments.SegmentIndex) (segments.SegmentCommitment, bool) {
	sc, ok := c[idx]
	return sc, ok
}

type fakeVerifier struct {
	inclusion bool
	chunk     bool
	signature bool
}

func (f fakeVerifier) VerifyRecordInclusion(segments.SegmentCommitment, crypto.Scalar, crypto.Witness, uint32) bool {
	return f.inclusion
}

func (f fakeVerifier) VerifyChunk(crypto.Scalar, uint32, crypto.ScalarLegacy) bool {
	return f.chunk
}

func (f fakeVerifier) VerifyChunkSignature(crypto.PublicKey, crypto.ScalarLegacy, solution.ChunkSignature) bool {
	return f.signature
}

func Test_Verify(t *testing.T) {
	t.Log("Given the need to verify a farmer's solution.")
	{
		s := randomSolution()
		s.PieceOffset = 3
		s.ChunkOffset = 9
		s.TotalPieces = pieces.MustNonZeroU64(512)

		global := crypto.Blake2b256([]byte("slot"))
		local := sector.NewLegacySectorID(s.PublicKey, s.SectorIndex).DeriveLocalChallenge(global)
		binary.BigEndian.PutUint64(s.ChunkSignature.Output[:8], local)

		known := commitments{0: {1}, 1: {2}}
		params := solution.Params{GlobalChallenge: global, SolutionRange: 1 << 20}
		ok := fakeVerifier{inclusion: true, chunk: true, signature: true}

		w, err := solution.Verify(s, params, known, ok)
		if err != nil {
			t.Fatalf("\t%s\tShould accept the solution: %v", failed, err)
		}
		if w.Cmp(solution.NewBlockWeight(math.MaxUint64)) != 0 {
			t.Fatalf("\t%s\tShould weigh an exact tag as the heaviest: %s", failed, w)
		}
		if w.Cmp(solution.WeightOf(s, global)) != 0 {
			t.Fatalf("\t%s\tShould agree with WeightOf.", failed)
		}
		t.Logf("\t%s\tShould accept the solution.", success)

		type table struct {
			name   string
			mutate func(*solution.Solution[crypto.PublicKey, crypto.PublicKey])
			known  commitments
			v      fakeVerifier
			exp    error
		}

		tt := []table{
			{name: "piece offset", mutate: func(s *solution.Solution[crypto.PublicKey, crypto.PublicKey]) { s.PieceOffset = sector.PiecesInSector }, known: known, v: ok, exp: solution.ErrInvalidPieceOffset},
			{name: "chunk offset", mutate: func(s *solution.Solution[crypto.PublicKey, crypto.PublicKey]) { s.ChunkOffset = pieces.RawRecordNumChunks }, known: known, v: ok, exp: solution.ErrInvalidChunkOffset},
			{name: "segment", known: commitments{}, v: ok, exp: solution.ErrUnknownSegment},
			{name: "inclusion", known: known, v: fakeVerifier{chunk: true, signature: true}, exp: solution.ErrInvalidInclusion},
			{name: "chunk", known: known, v: fakeVerifier{inclusion: true, signature: true}, exp: solution.ErrInvalidChunk},
			{name: "signature", known: known, v: fakeVerifier{inclusion: true, chunk: true}, exp: solution.ErrInvalidSignature},
			{name: "range", mutate: func(s *solution.Solution[crypto.PublicKey, crypto.PublicKey]) {
				binary.BigEndian.PutUint64(s.ChunkSignature.Output[:8], local+1<<40)
			}, known: known, v: ok, exp: solution.ErrOutsideSolutionRange},
		}

		for testID, tst := range tt {
			f := func(t *testing.T) {
				bad := s
				if tst.mutate != nil {
					tst.mutate(&bad)
				}

				_, err := solution.Verify(bad, params, tst.known, tst.v)
				if !errors.Is(err, tst.exp) {
					t.Fatalf("\t%s\tTest %d:\tShould fail with %v: got %v", failed, testID, tst.exp, err)
				}
				t.Logf("\t%s\tTest %d:\tShould fail with %v.", success, testID, tst.exp)
			}

			t.Run(tst.name, f)
		}
	}
}

// =============================================================================

func randomSolution() solution.Solution[crypto.PublicKey, crypto.PublicKey] {
	var s solution.Solution[crypto.PublicKey, crypto.PublicKey]

	frand.Read(s.PublicKey[:])
	frand.Read(s.RewardAddress[:])
	s.SectorIndex = sector.SectorIndex(frand.Uint64n(1000))
	s.TotalPieces = pieces.MustNonZeroU64(frand.Uint64n(1000) + 1)
	s.PieceOffset = pieces.PieceIndex(frand.Uint64n(sector.PiecesInSector))
	frand.Read(s.RecordCommitmentHash[:])
	frand.Read(s.PieceWitness[:])
	s.ChunkOffset = uint32(frand.Uint64n(pieces.RawRecordNumChunks))
	frand.Read(s.Chunk[:])
	frand.Read(s.ChunkSignature.Output[:])
	frand.Read(s.ChunkSignature.Proof[:])

	return s
}
