// Package solution defines the candidate proof a farmer submits for a
// consensus slot and the weight a valid one contributes to its chain.
package solution

import (
	"encoding/json"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/sector"
)

// VRF output and proof sizes.
const (
	VrfOutputLength = 32
	VrfProofLength  = 64
)

// ChunkSignature is the VRF signature over the expanded chunk of a
// solution.
type ChunkSignature struct {
	Output [VrfOutputLength]byte
	Proof  [VrfProofLength]byte
}

// Encode implements scale.Encodeable.
func (cs ChunkSignature) Encode(enc scale.Encoder) error {
	if err := enc.Write(cs.Output[:]); err != nil {
		return err
	}
	return enc.Write(cs.Proof[:])
}

// Decode implements scale.Decodeable.
func (cs *ChunkSignature) Decode(dec scale.Decoder) error {
	if err := dec.Read(cs.Output[:]); err != nil {
		return err
	}
	return dec.Read(cs.Proof[:])
}

type chunkSignatureJSON struct {
	Output hexutil.Bytes `json:"output"`
	Proof  hexutil.Bytes `json:"proof"`
}

// MarshalJSON renders both parts as 0x prefixed hex.
func (cs ChunkSignature) MarshalJSON() ([]byte, error) {
	return json.Marshal(chunkSignatureJSON{Output: cs.Output[:], Proof: cs.Proof[:]})
}

// UnmarshalJSON implements json.Unmarshaler.
func (cs *ChunkSignature) UnmarshalJSON(data []byte) error {
	var v struct {
		Output string `json:"output"`
		Proof  string `json:"proof"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}

	if err := hexutil.UnmarshalFixedText("ChunkSignature.Output", []byte(v.Output), cs.Output[:]); err != nil {
		return err
	}
	return hexutil.UnmarshalFixedText("ChunkSignature.Proof", []byte(v.Proof), cs.Proof[:])
}

// =============================================================================

// Solution is a farmer's candidate proof for a slot. It carries data only,
// checking it is the job of Verify and the external proof capabilities.
type Solution[PK any, RA any] struct {
	PublicKey            PK                  `json:"publicKey"`
	RewardAddress        RA                  `json:"rewardAddress"`
	SectorIndex          sector.SectorIndex  `json:"sectorIndex"`
	TotalPieces          pieces.NonZeroU64   `json:"totalPieces"`
	PieceOffset          pieces.PieceIndex   `json:"pieceOffset"`
	RecordCommitmentHash crypto.Scalar       `json:"recordCommitmentHash"`
	PieceWitness         crypto.Witness      `json:"pieceWitness"`
	ChunkOffset          uint32              `json:"chunkOffset"`
	Chunk                crypto.ScalarLegacy `json:"chunk"`
	ChunkSignature       ChunkSignature      `json:"chunkSignature"`
}

// GenesisSolution returns the placeholder solution of the genesis block. It
// is never subject to proof verification.
func GenesisSolution[PK any, RA any](publicKey PK, rewardAddress RA) Solution[PK, RA] {
	return Solution[PK, RA]{
		PublicKey:     publicKey,
		RewardAddress: rewardAddress,
		SectorIndex:   0,
		TotalPieces:   pieces.MustNonZeroU64(1),
	}
}

// IntoRewardAddressFormat converts the reward address of the solution into
// another format through an intermediate one. Every other field is copied
// unchanged.
func IntoRewardAddressFormat[T any, PK any, RA any, RB any](s Solution[PK, RA], toT func(RA) T, toB func(T) RB) Solution[PK, RB] {
	return Solution[PK, RB]{
		PublicKey:            s.PublicKey,
		RewardAddress:        toB(toT(s.RewardAddress)),
		SectorIndex:          s.SectorIndex,
		TotalPieces:          s.TotalPieces,
		PieceOffset:          s.PieceOffset,
		RecordCommitmentHash: s.RecordCommitmentHash,
		PieceWitness:         s.PieceWitness,
		ChunkOffset:          s.ChunkOffset,
		Chunk:                s.Chunk,
		ChunkSignature:       s.ChunkSignature,
	}
}

// Encode implements scale.Encodeable. The public key and reward address
// are encoded with their own encoding.
func (s Solution[PK, RA]) Encode(enc scale.Encoder) error {
	if err := enc.Encode(s.PublicKey); err != nil {
		return err
	}
	if err := enc.Encode(s.RewardAddress); err != nil {
		return err
	}
	if err := s.SectorIndex.Encode(enc); err != nil {
		return err
	}
	if err := s.TotalPieces.Encode(enc); err != nil {
		return err
	}
	if err := s.PieceOffset.Encode(enc); err != nil {
		return err
	}
	if err := s.RecordCommitmentHash.Encode(enc); err != nil {
		return err
	}
	if err := s.PieceWitness.Encode(enc); err != nil {
		return err
	}
	if err := codec.WriteUint32(enc, s.ChunkOffset); err != nil {
		return err
	}
	if err := s.Chunk.Encode(enc); err != nil {
		return err
	}
	return s.ChunkSignature.Encode(enc)
}

// Decode implements scale.Decodeable.
func (s *Solution[PK, RA]) Decode(dec scale.Decoder) error {
	var out Solution[PK, RA]

	if err := codec.DecodeFrom(dec, &out.PublicKey); err != nil {
		return err
	}
	if err := codec.DecodeFrom(dec, &out.RewardAddress); err != nil {
		return err
	}
	if err := out.SectorIndex.Decode(dec); err != nil {
		return err
	}
	if err := out.TotalPieces.Decode(dec); err != nil {
		return err
	}
	if err := out.PieceOffset.Decode(dec); err != nil {
		return err
	}
	if err := out.RecordCommitmentHash.Decode(dec); err != nil {
		return err
	}
	if err := out.PieceWitness.Decode(dec); err != nil {
		return err
	}

	chunkOffset, err := codec.ReadUint32(dec)
	if err != nil {
		return err
	}
	out.ChunkOffset = chunkOffset

	if err := out.Chunk.Decode(dec); err != nil {
		return err
	}
	if err := out.ChunkSignature.Decode(dec); err != nil {
		return err
	}

	*s = out
	return nil
}
