package u256_test

import (
	"errors"
	"math"
	"testing"

	"github.com/vedhavyas/subspace/foundation/blockchain/u256"
	"pgregory.net/rapid"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

func genU256(t *rapid.T, label string) u256.U256 {
	var b [u256.Size]byte
	copy(b[:], rapid.SliceOfN(rapid.Byte(), u256.Size, u256.Size).Draw(t, label))
	return u256.FromBEBytes(b)
}

// =============================================================================

func Test_ByteRoundTrip(t *testing.T) {
	t.Log("Given the need to convert numbers to and from bytes.")
	{
		rapid.Check(t, func(rt *rapid.T) {
			x := genU256(rt, "x")

			if got := u256.FromBEBytes(x.BEBytes()); !got.Eq(x) {
				rt.Fatalf("\t%s\tShould round trip big endian bytes: got %s exp %s", failed, got, x)
			}

			if got := u256.FromLEBytes(x.LEBytes()); !got.Eq(x) {
				rt.Fatalf("\t%s\tShould round trip little endian bytes: got %s exp %s", failed, got, x)
			}
		})
		t.Logf("\t%s\tShould round trip big and little endian bytes.", success)
	}
}

func Test_Endianness(t *testing.T) {
	t.Log("Given the need to read bytes in both byte orders.")
	{
		var b [u256.Size]byte
		b[u256.Size-1] = 1

		if !u256.FromBEBytes(b).Eq(u256.One()) {
			t.Fatalf("\t%s\tShould read the last byte as least significant in big endian.", failed)
		}
		t.Logf("\t%s\tShould read the last byte as least significant in big endian.", success)

		if got := u256.FromLEBytes(b); got.Eq(u256.One()) {
			t.Fatalf("\t%s\tShould read the last byte as most significant in little endian: %s", failed, got)
		}
		t.Logf("\t%s\tShould read the last byte as most significant in little endian.", success)

		le := u256.FromUint64(0x0102).LEBytes()
		if le[0] != 0x02 || le[1] != 0x01 {
			t.Fatalf("\t%s\tShould put the least significant byte first: %x", failed, le[:2])
		}
		t.Logf("\t%s\tShould put the least significant byte first.", success)
	}
}

func Test_CheckedArithmetic(t *testing.T) {
	t.Log("Given the need to detect overflow and underflow.")
	{
		if _, ok := u256.Max().CheckedAdd(u256.One()); ok {
			t.Fatalf("\t%s\tShould not add one to MAX.", failed)
		}
		t.Logf("\t%s\tShould not add one to MAX.", success)

		if _, ok := u256.Zero().CheckedSub(u256.One()); ok {
			t.Fatalf("\t%s\tShould not subtract one from zero.", failed)
		}
		t.Logf("\t%s\tShould not subtract one from zero.", success)

		if _, ok := u256.Max().CheckedMul(u256.FromUint64(2)); ok {
			t.Fatalf("\t%s\tShould not double MAX.", failed)
		}
		t.Logf("\t%s\tShould not double MAX.", success)

		if _, ok := u256.One().CheckedDiv(u256.Zero()); ok {
			t.Fatalf("\t%s\tShould not divide by zero.", failed)
		}
		t.Logf("\t%s\tShould not divide by zero.", success)

		got, ok := u256.FromUint64(10).CheckedDiv(u256.FromUint64(3))
		if !ok || !got.Eq(u256.FromUint64(3)) {
			t.Fatalf("\t%s\tShould divide 10 by 3: got %s", failed, got)
		}
		t.Logf("\t%s\tShould divide 10 by 3.", success)
	}
}

func Test_SaturatingArithmetic(t *testing.T) {
	t.Log("Given the need to clamp arithmetic to the range of the type.")
	{
		if got := u256.Max().SaturatingAdd(u256.One()); !got.Eq(u256.Max()) {
			t.Fatalf("\t%s\tShould clamp MAX+1 to MAX: got %s", failed, got)
		}
		t.Logf("\t%s\tShould clamp MAX+1 to MAX.", success)

		if got := u256.Zero().SaturatingSub(u256.One()); !got.IsZero() {
			t.Fatalf("\t%s\tShould clamp 0-1 to zero: got %s", failed, got)
		}
		t.Logf("\t%s\tShould clamp 0-1 to zero.", success)

		if got := u256.Max().SaturatingMul(u256.Max()); !got.Eq(u256.Max()) {
			t.Fatalf("\t%s\tShould clamp MAX*MAX to MAX: got %s", failed, got)
		}
		t.Logf("\t%s\tShould clamp MAX*MAX to MAX.", success)
	}
}

func Test_WrappingArithmetic(t *testing.T) {
	t.Log("Given the need to treat the address space as a ring.")
	{
		if got := u256.Max().WrappingAdd(u256.One()); !got.IsZero() {
			t.Fatalf("\t%s\tShould wrap MAX+1 to zero: got %s", failed, got)
		}
		t.Logf("\t%s\tShould wrap MAX+1 to zero.", success)

		if got := u256.Zero().WrappingSub(u256.One()); !got.Eq(u256.Max()) {
			t.Fatalf("\t%s\tShould wrap 0-1 to MAX: got %s", failed, got)
		}
		t.Logf("\t%s\tShould wrap 0-1 to MAX.", success)

		if got := u256.Max().Div(u256.FromUint64(2)); !got.Eq(u256.Middle()) {
			t.Fatalf("\t%s\tShould have MIDDLE equal MAX/2: got %s", failed, got)
		}
		t.Logf("\t%s\tShould have MIDDLE equal MAX/2.", success)
	}
}

func Test_Uint64(t *testing.T) {
	t.Log("Given the need to narrow numbers to u64.")
	{
		n, err := u256.FromUint64(math.MaxUint64).Uint64()
		if err != nil || n != math.MaxUint64 {
			t.Fatalf("\t%s\tShould narrow u64::MAX: %d %v", failed, n, err)
		}
		t.Logf("\t%s\tShould narrow u64::MAX.", success)

		_, err = u256.FromUint64(math.MaxUint64).Add(u256.One()).Uint64()
		if !errors.Is(err, u256.ErrOverflow) {
			t.Fatalf("\t%s\tShould fail to narrow u64::MAX+1: %v", failed, err)
		}
		t.Logf("\t%s\tShould fail to narrow u64::MAX+1.", success)
	}
}

func Test_TextRoundTrip(t *testing.T) {
	t.Log("Given the need to print and parse numbers.")
	{
		data, err := u256.Max().MarshalText()
		if err != nil {
			t.Fatalf("\t%s\tShould marshal MAX: %v", failed, err)
		}

		var got u256.U256
		if err := got.UnmarshalText(data); err != nil {
			t.Fatalf("\t%s\tShould unmarshal MAX: %v", failed, err)
		}

		if !got.Eq(u256.Max()) {
			t.Logf("\t%s\tgot: %s", failed, got)
			t.Logf("\t%s\texp: %s", failed, u256.Max())
			t.Fatalf("\t%s\tShould get back MAX.", failed)
		}
		t.Logf("\t%s\tShould round trip MAX through text.", success)
	}
}
