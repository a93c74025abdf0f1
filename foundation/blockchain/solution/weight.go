package solution

import (
	"encoding/binary"
	"math"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/sector"
	"github.com/vedhavyas/subspace/foundation/blockchain/u256"
)

// blockWeightSize is the size of the encoded u128 weight.
const blockWeightSize = 16

// maxBlockWeight is 2^128-1, the largest weight the chain can carry.
var maxBlockWeight = func() u256.U256 {
	var b [u256.Size]byte
	for i := u256.Size - blockWeightSize; i < u256.Size; i++ {
		b[i] = 0xff
	}
	return u256.FromBEBytes(b)
}()

// BlockWeight is the u128 weight used for fork choice. The closer a
// solution's tag is to its target the heavier the block.
type BlockWeight struct {
	v u256.U256
}

// NewBlockWeight constructs a weight from a u64.
func NewBlockWeight(n uint64) BlockWeight {
	return BlockWeight{v: u256.FromUint64(n)}
}

// MaxBlockWeight returns the heaviest representable weight.
func MaxBlockWeight() BlockWeight {
	return BlockWeight{v: maxBlockWeight}
}

// Add accumulates two weights, saturating at MaxBlockWeight.
func (w BlockWeight) Add(o BlockWeight) BlockWeight {
	sum := w.v.SaturatingAdd(o.v)
	if maxBlockWeight.Lt(sum) {
		return MaxBlockWeight()
	}
	return BlockWeight{v: sum}
}

// Cmp compares two weights.
func (w BlockWeight) Cmp(o BlockWeight) int {
	return w.v.Cmp(o.v)
}

// String returns the decimal form.
func (w BlockWeight) String() string {
	return w.v.String()
}

// MarshalText implements encoding.TextMarshaler.
func (w BlockWeight) MarshalText() ([]byte, error) {
	return w.v.MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *BlockWeight) UnmarshalText(text []byte) error {
	var v u256.U256
	if err := v.UnmarshalText(text); err != nil {
		return err
	}
	if maxBlockWeight.Lt(v) {
		return u256.ErrOverflow
	}
	w.v = v
	return nil
}

// Encode implements scale.Encodeable as a little endian u128.
func (w BlockWeight) Encode(enc scale.Encoder) error {
	le := w.v.LEBytes()
	return enc.Write(le[:blockWeightSize])
}

// Decode implements scale.Decodeable.
func (w *BlockWeight) Decode(dec scale.Decoder) error {
	var le [u256.Size]byte
	if err := dec.Read(le[:blockWeightSize]); err != nil {
		return err
	}
	w.v = u256.FromLEBytes(le)
	return nil
}

// AccumulateWeight sums the weights of a sequence of blocks.
func AccumulateWeight(weights ...BlockWeight) BlockWeight {
	var total BlockWeight
	for _, w := range weights {
		total = total.Add(w)
	}
	return total
}

// =============================================================================

// Tag interprets the VRF output of a chunk signature as a point on the ring
// of solution ranges.
func Tag(cs ChunkSignature) sector.SolutionRange {
	return binary.BigEndian.Uint64(cs.Output[:8])
}

// IsWithinSolutionRange reports whether the tag is close enough to the
// local challenge. The range is centered on the challenge.
func IsWithinSolutionRange(tag sector.SolutionRange, localChallenge sector.SolutionRange, solutionRange sector.SolutionRange) bool {
	return u256.BidirectionalDistanceUint(tag, localChallenge) <= solutionRange/2
}

// Weight returns the weight of a block whose solution tag sits at the
// distance from the local challenge.
func Weight(tag sector.SolutionRange, localChallenge sector.SolutionRange) BlockWeight {
	return NewBlockWeight(math.MaxUint64 - u256.BidirectionalDistanceUint(tag, localChallenge))
}

// WeightOf derives the weight of the solution for the global challenge.
func WeightOf[RA any](s Solution[crypto.PublicKey, RA], globalChallenge crypto.Blake2b256Hash) BlockWeight {
	local := sector.NewLegacySectorID(s.PublicKey, s.SectorIndex).DeriveLocalChallenge(globalChallenge)
	return Weight(Tag(s.ChunkSignature), local)
}
