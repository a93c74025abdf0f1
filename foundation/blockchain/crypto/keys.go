package crypto

import (
	"fmt"
	"strings"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Key and signature lengths in bytes.
const (
	PublicKeyLength       = 32
	RewardSignatureLength = 64
)

// RandomnessLength is the byte length of chain randomness.
const RandomnessLength = 32

// RandomnessContext is the signing context used when deriving randomness.
const RandomnessContext = "subspace_randomness"

// Randomness represents chain randomness.
type Randomness [RandomnessLength]byte

// =============================================================================

// PublicKey is a Ristretto Schnorr public key as bytes.
type PublicKey [PublicKeyLength]byte

// ParsePublicKey parses the hex form of a public key, with or without the
// 0x prefix.
func ParsePublicKey(s string) (PublicKey, error) {
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}

	b, err := hexutil.Decode(s)
	if err != nil {
		return PublicKey{}, fmt.Errorf("parse public key: %w", err)
	}

	if len(b) != PublicKeyLength {
		return PublicKey{}, fmt.Errorf("parse public key: got %d bytes, exp %d", len(b), PublicKeyLength)
	}

	var pk PublicKey
	copy(pk[:], b)
	return pk, nil
}

// Hash returns the hash of the public key.
func (pk PublicKey) Hash() Blake2b256Hash {
	return Blake2b256(pk[:])
}

// String returns the lowercase hex form without prefix.
func (pk PublicKey) String() string {
	return common.Bytes2Hex(pk[:])
}

// MarshalText implements encoding.TextMarshaler.
func (pk PublicKey) MarshalText() ([]byte, error) {
	return hexutil.Bytes(pk[:]).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (pk *PublicKey) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("PublicKey", input, pk[:])
}

// Encode implements scale.Encodeable.
func (pk PublicKey) Encode(enc scale.Encoder) error {
	return enc.Write(pk[:])
}

// Decode implements scale.Decodeable.
func (pk *PublicKey) Decode(dec scale.Decoder) error {
	return dec.Read(pk[:])
}

// =============================================================================

// RewardSignature is a Ristretto Schnorr signature as bytes.
type RewardSignature [RewardSignatureLength]byte

// String returns the lowercase hex form without prefix.
func (s RewardSignature) String() string {
	return common.Bytes2Hex(s[:])
}

// MarshalText implements encoding.TextMarshaler.
func (s RewardSignature) MarshalText() ([]byte, error) {
	return hexutil.Bytes(s[:]).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *RewardSignature) UnmarshalText(input []byte) error {
	return hexutil.UnmarshalFixedText("RewardSignature", input, s[:])
}

// Encode implements scale.Encodeable.
func (s RewardSignature) Encode(enc scale.Encoder) error {
	return enc.Write(s[:])
}

// Decode implements scale.Decodeable.
func (s *RewardSignature) Decode(dec scale.Decoder) error {
	return dec.Read(s[:])
}
