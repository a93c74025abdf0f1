// Package u256 provides the 256-bit unsigned integer used for placing
// pieces and solutions on the cyclic address space of the chain.
package u256

import (
	"errors"

	"github.com/holiman/uint256"
)

// ErrOverflow is returned when a value does not fit the narrower type it
// is being converted into.
var ErrOverflow = errors.New("integer overflow when casting to u64")

// Size is the number of bytes in the big and little endian forms.
const Size = 32

// =============================================================================

// U256 represents a 256-bit unsigned integer. The zero value is 0. The limb
// layout of the backing integer is not part of the API.
type U256 struct {
	v uint256.Int
}

// Zero returns the additive identity.
func Zero() U256 {
	return U256{}
}

// One returns the multiplicative identity.
func One() U256 {
	var u U256
	u.v.SetOne()
	return u
}

// Max returns the largest representable value, 2^256-1.
func Max() U256 {
	var u U256
	u.v.SetAllOne()
	return u
}

// Middle returns the middle of the piece distance field, MAX/2, the
// analogue of 0b0111_1111 for u8. Every bidirectional distance is at most
// Middle except for the antipodal pair, which sits at Middle+1.
func Middle() U256 {
	var u U256
	u.v.SetAllOne()
	u.v.Rsh(&u.v, 1)
	return u
}

// FromUint64 widens a u64.
func FromUint64(n uint64) U256 {
	var u U256
	u.v.SetUint64(n)
	return u
}

// FromBEBytes interprets the bytes as a big endian number.
func FromBEBytes(b [Size]byte) U256 {
	var u U256
	u.v.SetBytes32(b[:])
	return u
}

// FromLEBytes interprets the bytes as a little endian number.
func FromLEBytes(b [Size]byte) U256 {
	return FromBEBytes(reverse(b))
}

// BEBytes returns the big endian form of the number.
func (u U256) BEBytes() [Size]byte {
	return u.v.Bytes32()
}

// LEBytes returns the little endian form of the number.
func (u U256) LEBytes() [Size]byte {
	return reverse(u.v.Bytes32())
}

// Uint64 narrows the value to a u64, failing with ErrOverflow when the
// value does not fit.
func (u U256) Uint64() (uint64, error) {
	if !u.v.IsUint64() {
		return 0, ErrOverflow
	}
	return u.v.Uint64(), nil
}

// =============================================================================

// WrappingAdd returns u + o modulo 2^256.
func (u U256) WrappingAdd(o U256) U256 {
	var z U256
	z.v.Add(&u.v, &o.v)
	return z
}

// WrappingSub returns u - o modulo 2^256.
func (u U256) WrappingSub(o U256) U256 {
	var z U256
	z.v.Sub(&u.v, &o.v)
	return z
}

// Add is the wrapping addition.
func (u U256) Add(o U256) U256 {
	return u.WrappingAdd(o)
}

// Sub is the wrapping subtraction.
func (u U256) Sub(o U256) U256 {
	return u.WrappingSub(o)
}

// Mul returns u * o modulo 2^256.
func (u U256) Mul(o U256) U256 {
	var z U256
	z.v.Mul(&u.v, &o.v)
	return z
}

// Div returns u / o. Division by zero returns zero, use CheckedDiv when the
// divisor is not known to be positive.
func (u U256) Div(o U256) U256 {
	var z U256
	z.v.Div(&u.v, &o.v)
	return z
}

// Rem returns u % o. A zero modulus returns zero.
func (u U256) Rem(o U256) U256 {
	var z U256
	z.v.Mod(&u.v, &o.v)
	return z
}

// CheckedAdd adds two numbers. The second return is false on overflow.
func (u U256) CheckedAdd(o U256) (U256, bool) {
	var z U256
	if _, overflow := z.v.AddOverflow(&u.v, &o.v); overflow {
		return U256{}, false
	}
	return z, true
}

// CheckedSub subtracts two numbers. The second return is false on underflow.
func (u U256) CheckedSub(o U256) (U256, bool) {
	var z U256
	if _, underflow := z.v.SubOverflow(&u.v, &o.v); underflow {
		return U256{}, false
	}
	return z, true
}

// CheckedMul multiplies two numbers. The second return is false on overflow.
func (u U256) CheckedMul(o U256) (U256, bool) {
	var z U256
	if _, overflow := z.v.MulOverflow(&u.v, &o.v); overflow {
		return U256{}, false
	}
	return z, true
}

// CheckedDiv divides two numbers. The second return is false when the
// divisor is zero.
func (u U256) CheckedDiv(o U256) (U256, bool) {
	if o.v.IsZero() {
		return U256{}, false
	}
	return u.Div(o), true
}

// SaturatingAdd computes u + o clamped to Max.
func (u U256) SaturatingAdd(o U256) U256 {
	z, ok := u.CheckedAdd(o)
	if !ok {
		return Max()
	}
	return z
}

// SaturatingSub computes u - o clamped to zero.
func (u U256) SaturatingSub(o U256) U256 {
	z, ok := u.CheckedSub(o)
	if !ok {
		return Zero()
	}
	return z
}

// SaturatingMul computes u * o clamped to Max.
func (u U256) SaturatingMul(o U256) U256 {
	z, ok := u.CheckedMul(o)
	if !ok {
		return Max()
	}
	return z
}

// =============================================================================

// Cmp returns -1, 0 or +1 depending on whether u is less than, equal to or
// greater than o.
func (u U256) Cmp(o U256) int {
	return u.v.Cmp(&o.v)
}

// Eq reports whether both values are equal.
func (u U256) Eq(o U256) bool {
	return u.v.Eq(&o.v)
}

// Lt reports whether u < o.
func (u U256) Lt(o U256) bool {
	return u.v.Lt(&o.v)
}

// IsZero reports whether the value is zero.
func (u U256) IsZero() bool {
	return u.v.IsZero()
}

// String returns the decimal representation.
func (u U256) String() string {
	return u.v.Dec()
}

// MarshalText implements encoding.TextMarshaler using the decimal form.
func (u U256) MarshalText() ([]byte, error) {
	return []byte(u.v.Dec()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler for the decimal form.
func (u *U256) UnmarshalText(text []byte) error {
	return u.v.SetFromDecimal(string(text))
}

// =============================================================================

func reverse(b [Size]byte) [Size]byte {
	for i, j := 0, Size-1; i < j; i, j = i+1, j-1 {
		b[i], b[j] = b[j], b[i]
	}
	return b
}
