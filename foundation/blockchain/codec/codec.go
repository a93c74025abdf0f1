// Package codec provides the canonical binary encoding for every value the
// chain commits to. The format is SCALE: fixed width integers are little
// endian, fixed size byte arrays are written raw and enum variants are
// prefixed by a single byte tag that never changes once assigned.
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
)

// Set of error variables for decoding.
var (
	ErrTrailingBytes = errors.New("input has trailing bytes")
	ErrInvalidTag    = errors.New("invalid variant tag")
)

// Encode returns the canonical encoding of the value.
func Encode(value any) ([]byte, error) {
	var buf bytes.Buffer
	if err := scale.NewEncoder(&buf).Encode(value); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	return buf.Bytes(), nil
}

// MustEncode is Encode for values whose encoding cannot fail, such as the
// fixed layout consensus types of this module.
func MustEncode(value any) []byte {
	data, err := Encode(value)
	if err != nil {
		panic(err)
	}

	return data
}

// Decode decodes the data into the target. Decoding is all or nothing, a
// truncated input or an input with bytes left over is an error.
func Decode(data []byte, target any) error {
	r := bytes.NewReader(data)
	if err := DecodeFrom(*scale.NewDecoder(r), target); err != nil {
		return fmt.Errorf("decode: %w", err)
	}

	if r.Len() != 0 {
		return fmt.Errorf("decode: %w: %d bytes", ErrTrailingBytes, r.Len())
	}

	return nil
}

// DecodeFrom decodes the next value of the stream into the target. Types
// implementing scale.Decodeable are decoded through their own method, the
// reflection path of the scale decoder cannot build fixed size arrays.
func DecodeFrom(dec scale.Decoder, target any) error {
	if d, ok := target.(scale.Decodeable); ok {
		return d.Decode(dec)
	}

	return dec.Decode(target)
}

// InvalidTag constructs the error returned when a variant tag is unknown.
func InvalidTag(typeName string, tag byte) error {
	return fmt.Errorf("%s: %w: %d", typeName, ErrInvalidTag, tag)
}

// =============================================================================

// WriteUint32 writes a u32 in little endian order.
func WriteUint32(enc scale.Encoder, v uint32) error {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	return enc.Write(b[:])
}

// WriteUint64 writes a u64 in little endian order.
func WriteUint64(enc scale.Encoder, v uint64) error {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	return enc.Write(b[:])
}

// ReadUint32 reads a little endian u32.
func ReadUint32(dec scale.Decoder) (uint32, error) {
	var b [4]byte
	if err := dec.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b[:]), nil
}

// ReadUint64 reads a little endian u64.
func ReadUint64(dec scale.Decoder) (uint64, error) {
	var b [8]byte
	if err := dec.Read(b[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b[:]), nil
}
