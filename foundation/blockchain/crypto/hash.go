// Package crypto provides the hashing functions and the opaque cryptographic
// values the archival core threads through its data structures. The
// commitment, proof of space and VRF schemes themselves live outside of
// this module.
package crypto

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/blake2b"
)

// Blake2b256HashSize is the size of a BLAKE2b-256 output in bytes.
const Blake2b256HashSize = 32

// Blake2b256Hash is a BLAKE2b-256 output.
type Blake2b256Hash [Blake2b256HashSize]byte

// Blake2b256 hashes the concatenation of the provided byte slices.
func Blake2b256(data ...[]byte) Blake2b256Hash {
	h, _ := blake2b.New256(nil)
	for _, d := range data {
		h.Write(d)
	}

	var out Blake2b256Hash
	h.Sum(out[:0])
	return out
}

// Blake2b256Keyed hashes data under the key using the keyed mode of
// BLAKE2b-256. The key is used as is and must be at most 64 bytes, every
// key in the protocol is a 32 byte public key or sector id.
func Blake2b256Keyed(data []byte, key []byte) Blake2b256Hash {
	h, err := blake2b.New256(key)
	if err != nil {
		panic("blake2b key must not exceed 64 bytes: " + err.Error())
	}
	h.Write(data)

	var out Blake2b256Hash
	h.Sum(out[:0])
	return out
}

// String returns the lowercase hex form without prefix.
func (h Blake2b256Hash) String() string {
	return common.Bytes2Hex(h[:])
}

// MarshalText implements encoding.TextMarshaler.
func (h Blake2b256Hash) MarshalText() ([]byte, error) {
	return hexutil.Bytes(h[:]).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Blake2b256Hash) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Blake2b256Hash", input, h[:])
}

// Encode implements scale.Encodeable.
func (h Blake2b256Hash) Encode(enc scale.Encoder) error {
	return enc.Write(h[:])
}

// Decode implements scale.Decodeable.
func (h *Blake2b256Hash) Decode(dec scale.Decoder) error {
	return dec.Read(h[:])
}
