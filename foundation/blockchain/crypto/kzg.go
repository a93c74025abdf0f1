package crypto

import (
	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Sizes of the compressed commitment scheme points.
const (
	CommitmentSize = 48
	WitnessSize    = 48
)

// Commitment is an opaque polynomial commitment.
type Commitment [CommitmentSize]byte

// String returns the lowercase hex form without prefix.
func (c Commitment) String() string {
	return common.Bytes2Hex(c[:])
}

// MarshalText implements encoding.TextMarshaler.
func (c Commitment) MarshalText() ([]byte, error) {
	return hexutil.Bytes(c[:]).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Commitment) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Commitment", input, c[:])
}

// Encode implements scale.Encodeable.
func (c Commitment) Encode(enc scale.Encoder) error {
	return enc.Write(c[:])
}

// Decode implements scale.Decodeable.
func (c *Commitment) Decode(dec scale.Decoder) error {
	return dec.Read(c[:])
}

// =============================================================================

// Witness is an opaque inclusion witness against a Commitment.
type Witness [WitnessSize]byte

// String returns the lowercase hex form without prefix.
func (w Witness) String() string {
	return common.Bytes2Hex(w[:])
}

// MarshalText implements encoding.TextMarshaler.
func (w Witness) MarshalText() ([]byte, error) {
	return hexutil.Bytes(w[:]).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (w *Witness) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("Witness", input, w[:])
}

// Encode implements scale.Encodeable.
func (w Witness) Encode(enc scale.Encoder) error {
	return enc.Write(w[:])
}

// Decode implements scale.Decodeable.
func (w *Witness) Decode(dec scale.Decoder) error {
	return dec.Read(w[:])
}
