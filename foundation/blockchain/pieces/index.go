package pieces

import (
	"encoding/binary"
	"errors"
	"strconv"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/multiformats/go-multihash"
	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/u256"
)

// ErrZeroTotalPieces is returned when constructing a piece count of zero.
var ErrZeroTotalPieces = errors.New("total pieces must not be zero")

// PieceIndexMultihashCode is the multihash code marking DHT keys derived
// from piece index hashes.
const PieceIndexMultihashCode = 0xb39910

// =============================================================================

// PieceIndex is the position of a piece in the whole archived history,
// counting from zero. Indexes are never reused.
type PieceIndex uint64

// Bytes returns the little endian bytes of the index.
func (pi PieceIndex) Bytes() [8]byte {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(pi))
	return b
}

// Hash derives the placement address of the piece.
func (pi PieceIndex) Hash() PieceIndexHash {
	b := pi.Bytes()
	return PieceIndexHash(crypto.Blake2b256(b[:]))
}

// Encode implements scale.Encodeable.
func (pi PieceIndex) Encode(enc scale.Encoder) error {
	return codec.WriteUint64(enc, uint64(pi))
}

// Decode implements scale.Decodeable.
func (pi *PieceIndex) Decode(dec scale.Decoder) error {
	v, err := codec.ReadUint64(dec)
	if err != nil {
		return err
	}
	*pi = PieceIndex(v)
	return nil
}

// =============================================================================

// PieceIndexHash is the hash of a piece index, used to place the piece in
// an external address space. It is always derived from the index and never
// stored on its own.
type PieceIndexHash crypto.Blake2b256Hash

// PieceIndexHashFromU256 converts a number into a hash using its big
// endian bytes.
func PieceIndexHashFromU256(n u256.U256) PieceIndexHash {
	return PieceIndexHash(n.BEBytes())
}

// U256 interprets the hash as a big endian number.
func (h PieceIndexHash) U256() u256.U256 {
	return u256.FromBEBytes(h)
}

// Multihash returns the key of the piece in a distributed hash table.
func (h PieceIndexHash) Multihash() multihash.Multihash {
	mh, err := multihash.Encode(h[:], PieceIndexMultihashCode)
	if err != nil {
		panic("multihash encoding of a 32 byte digest cannot fail: " + err.Error())
	}
	return multihash.Multihash(mh)
}

// String returns the lowercase hex form.
func (h PieceIndexHash) String() string {
	return crypto.Blake2b256Hash(h).String()
}

// =============================================================================

// NonZeroU64 is a u64 that is never zero, used for piece counts so the
// modulo reductions over them are always defined.
type NonZeroU64 struct {
	v uint64
}

// NewNonZeroU64 constructs the value, failing on zero.
func NewNonZeroU64(v uint64) (NonZeroU64, error) {
	if v == 0 {
		return NonZeroU64{}, ErrZeroTotalPieces
	}
	return NonZeroU64{v: v}, nil
}

// MustNonZeroU64 is NewNonZeroU64 for constants.
func MustNonZeroU64(v uint64) NonZeroU64 {
	n, err := NewNonZeroU64(v)
	if err != nil {
		panic(err)
	}
	return n
}

// Get returns the value. The zero value of the type reports 1 so that an
// uninitialized field cannot be used as a divisor of zero.
func (n NonZeroU64) Get() uint64 {
	if n.v == 0 {
		return 1
	}
	return n.v
}

// Encode implements scale.Encodeable.
func (n NonZeroU64) Encode(enc scale.Encoder) error {
	return codec.WriteUint64(enc, n.Get())
}

// Decode implements scale.Decodeable, rejecting zero.
func (n *NonZeroU64) Decode(dec scale.Decoder) error {
	v, err := codec.ReadUint64(dec)
	if err != nil {
		return err
	}

	nz, err := NewNonZeroU64(v)
	if err != nil {
		return err
	}
	*n = nz
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (n NonZeroU64) MarshalText() ([]byte, error) {
	return strconv.AppendUint(nil, n.Get(), 10), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (n *NonZeroU64) UnmarshalText(text []byte) error {
	v, err := strconv.ParseUint(string(text), 10, 64)
	if err != nil {
		return err
	}

	nz, err := NewNonZeroU64(v)
	if err != nil {
		return err
	}
	*n = nz
	return nil
}
