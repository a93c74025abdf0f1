package crypto

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Scalar byte sizes. A scalar can safely carry SafeBytes of arbitrary data,
// its full representation is FullBytes long.
const (
	ScalarSafeBytes = 31
	ScalarFullBytes = 32
)

// Scalar is the canonical byte form of a field element of the commitment
// scheme.
type Scalar [ScalarFullBytes]byte

// FromSafeBytes places 31 bytes of data into a scalar, padding the top byte
// with zero so the value is always a valid field element.
func FromSafeBytes(b [ScalarSafeBytes]byte) Scalar {
	var s Scalar
	copy(s[:], b[:])
	return s
}

// SafeBytes returns the data bytes of the scalar.
func (s Scalar) SafeBytes() [ScalarSafeBytes]byte {
	var b [ScalarSafeBytes]byte
	copy(b[:], s[:ScalarSafeBytes])
	return b
}

// MarshalText implements encoding.TextMarshaler.
func (s Scalar) MarshalText() ([]byte, error) {
	return hexutil.Bytes(s[:]).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Scalar) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Scalar", input, s[:])
}

// Encode implements scale.Encodeable.
func (s Scalar) Encode(enc scale.Encoder) error {
	return enc.Write(s[:])
}

// Decode implements scale.Decodeable.
func (s *Scalar) Decode(dec scale.Decoder) error {
	return dec.Read(s[:])
}

// =============================================================================

// ScalarLegacy is the scalar representation used by the previous sector
// encoding, kept for the chunk carried in a solution.
type ScalarLegacy [ScalarFullBytes]byte

// MarshalText implements encoding.TextMarshaler.
func (s ScalarLegacy) MarshalText() ([]byte, error) {
	return hexutil.Bytes(s[:]).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *ScalarLegacy) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("ScalarLegacy", input, s[:])
}

// Encode implements scale.Encodeable.
func (s ScalarLegacy) Encode(enc scale.Encoder) error {
	return enc.Write(s[:])
}

// Decode implements scale.Decodeable.
func (s *ScalarLegacy) Decode(dec scale.Decoder) error {
	return dec.Read(s[:])
}
