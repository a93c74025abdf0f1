package codec_test

import (
	"errors"
	"testing"

	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"lukechampine.com/frand"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

func Test_DecodeFixedArrays(t *testing.T) {
	t.Log("Given the need to decode fixed size byte values at the top level.")
	{
		var pk crypto.PublicKey
		frand.Read(pk[:])

		data := codec.MustEncode(pk)
		if len(data) != crypto.PublicKeyLength {
			t.Fatalf("\t%s\tShould write the key raw: %d bytes", failed, len(data))
		}
		t.Logf("\t%s\tShould write the key raw.", success)

		var back crypto.PublicKey
		if err := codec.Decode(data, &back); err != nil || back != pk {
			t.Fatalf("\t%s\tShould decode a public key: %v", failed, err)
		}
		t.Logf("\t%s\tShould decode a public key.", success)

		h := crypto.Blake2b256(data)
		var hback crypto.Blake2b256Hash
		if err := codec.Decode(codec.MustEncode(h), &hback); err != nil || hback != h {
			t.Fatalf("\t%s\tShould decode a hash: %v", failed, err)
		}
		t.Logf("\t%s\tShould decode a hash.", success)

		if err := codec.Decode(data[:10], &back); err == nil {
			t.Fatalf("\t%s\tShould reject a truncated key.", failed)
		}
		t.Logf("\t%s\tShould reject a truncated key.", success)

		if err := codec.Decode(append(data, 0), &back); !errors.Is(err, codec.ErrTrailingBytes) {
			t.Fatalf("\t%s\tShould reject trailing bytes: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject trailing bytes.", success)
	}
}

func Test_DecodePlainValues(t *testing.T) {
	t.Log("Given the need to decode values without a decode method.")
	{
		var raw [4]byte
		if err := codec.Decode([]byte{1, 2, 3, 4}, &raw); err != nil || raw != [4]byte{1, 2, 3, 4} {
			t.Fatalf("\t%s\tShould decode a plain array: %v", failed, err)
		}
		t.Logf("\t%s\tShould decode a plain array.", success)

		var n uint32
		if err := codec.Decode([]byte{1, 0, 0, 0}, &n); err != nil || n != 1 {
			t.Fatalf("\t%s\tShould decode a little endian u32: %v", failed, err)
		}
		t.Logf("\t%s\tShould decode a little endian u32.", success)
	}
}
