package pieces_test

import (
	"bytes"
	"errors"
	"testing"

	"github.com/multiformats/go-multihash"
	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"lukechampine.com/frand"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

// =============================================================================

func Test_Sizes(t *testing.T) {
	t.Log("Given the need for sizes pinned by the network.")
	{
		if pieces.RawRecordSize != 1015808 {
			t.Fatalf("\t%s\tShould have a raw record of 1015808 bytes: %d", failed, pieces.RawRecordSize)
		}
		t.Logf("\t%s\tShould have a raw record of 1015808 bytes.", success)

		if pieces.RecordSize != 1048576 {
			t.Fatalf("\t%s\tShould have a record of 1048576 bytes: %d", failed, pieces.RecordSize)
		}
		t.Logf("\t%s\tShould have a record of 1048576 bytes.", success)

		if pieces.PieceSize != 1048672 {
			t.Fatalf("\t%s\tShould have a piece of 1048672 bytes: %d", failed, pieces.PieceSize)
		}
		t.Logf("\t%s\tShould have a piece of 1048672 bytes.", success)
	}
}

func Test_RecordExpansion(t *testing.T) {
	t.Log("Given the need to expand raw records into scalars.")
	{
		raw := pieces.RawRecord(frand.Bytes(pieces.RawRecordSize))

		record, err := pieces.RecordFromRaw(raw)
		if err != nil {
			t.Fatalf("\t%s\tShould expand the raw record: %v", failed, err)
		}
		t.Logf("\t%s\tShould expand the raw record.", success)

		for i := 0; i < pieces.RawRecordNumChunks; i++ {
			if record[i*crypto.ScalarFullBytes+crypto.ScalarSafeBytes] != 0 {
				t.Fatalf("\t%s\tShould pad chunk %d with a zero byte.", failed, i)
			}
		}
		t.Logf("\t%s\tShould pad every chunk with a zero byte.", success)

		chunk, err := record.Chunk(1)
		if err != nil {
			t.Fatalf("\t%s\tShould read a chunk: %v", failed, err)
		}
		safe := chunk.SafeBytes()
		if !bytes.Equal(safe[:], raw[crypto.ScalarSafeBytes:2*crypto.ScalarSafeBytes]) {
			t.Fatalf("\t%s\tShould read the second raw chunk back.", failed)
		}
		t.Logf("\t%s\tShould read the second raw chunk back.", success)

		back, err := record.ToRaw()
		if err != nil {
			t.Fatalf("\t%s\tShould compact the record: %v", failed, err)
		}
		if !bytes.Equal(back, raw) {
			t.Fatalf("\t%s\tShould get back the raw record.", failed)
		}
		t.Logf("\t%s\tShould get back the raw record.", success)

		if _, err := pieces.RecordFromRaw(raw[:10]); !errors.Is(err, pieces.ErrInvalidSize) {
			t.Fatalf("\t%s\tShould reject a short raw record: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a short raw record.", success)

		if _, err := record.Chunk(pieces.RawRecordNumChunks); err == nil {
			t.Fatalf("\t%s\tShould reject a chunk offset past the record.", failed)
		}
		t.Logf("\t%s\tShould reject a chunk offset past the record.", success)
	}
}

func Test_PieceLayout(t *testing.T) {
	t.Log("Given the need to lay out a record with its commitment and witness.")
	{
		record := pieces.Record(frand.Bytes(pieces.RecordSize))

		var commitment pieces.RecordCommitment
		var witness pieces.RecordWitness
		frand.Read(commitment[:])
		frand.Read(witness[:])

		piece, err := pieces.AssemblePiece(record, commitment, witness)
		if err != nil {
			t.Fatalf("\t%s\tShould assemble the piece: %v", failed, err)
		}
		t.Logf("\t%s\tShould assemble the piece.", success)

		if !bytes.Equal(piece.Record(), record) || piece.Commitment() != commitment || piece.Witness() != witness {
			t.Fatalf("\t%s\tShould read every part back.", failed)
		}
		t.Logf("\t%s\tShould read every part back.", success)

		flat := pieces.NewFlatPieces(2)
		copy(flat.Piece(1), piece)
		if flat.Count() != 2 || !bytes.Equal(flat.Pieces()[1], piece) {
			t.Fatalf("\t%s\tShould address pieces in a flat buffer.", failed)
		}
		t.Logf("\t%s\tShould address pieces in a flat buffer.", success)

		if _, err := pieces.PieceFromBytes(piece[1:]); !errors.Is(err, pieces.ErrInvalidSize) {
			t.Fatalf("\t%s\tShould reject a short piece: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a short piece.", success)
	}
}

func Test_PieceIndexHash(t *testing.T) {
	t.Log("Given the need to derive placement addresses for pieces.")
	{
		idx := pieces.PieceIndex(42)
		b := idx.Bytes()

		if idx.Hash() != pieces.PieceIndexHash(crypto.Blake2b256(b[:])) {
			t.Fatalf("\t%s\tShould hash the little endian index.", failed)
		}
		t.Logf("\t%s\tShould hash the little endian index.", success)

		h := idx.Hash()
		if pieces.PieceIndexHashFromU256(h.U256()) != h {
			t.Fatalf("\t%s\tShould round trip through U256.", failed)
		}
		t.Logf("\t%s\tShould round trip through U256.", success)

		decoded, err := multihash.Decode(h.Multihash())
		if err != nil {
			t.Fatalf("\t%s\tShould decode the multihash: %v", failed, err)
		}
		if decoded.Code != pieces.PieceIndexMultihashCode || !bytes.Equal(decoded.Digest, h[:]) {
			t.Fatalf("\t%s\tShould wrap the hash with the piece index code.", failed)
		}
		t.Logf("\t%s\tShould wrap the hash with the piece index code.", success)
	}
}

func Test_NonZeroU64(t *testing.T) {
	t.Log("Given the need for piece counts that are never zero.")
	{
		if _, err := pieces.NewNonZeroU64(0); !errors.Is(err, pieces.ErrZeroTotalPieces) {
			t.Fatalf("\t%s\tShould reject zero: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject zero.", success)

		var n pieces.NonZeroU64
		if err := codec.Decode(make([]byte, 8), &n); !errors.Is(err, pieces.ErrZeroTotalPieces) {
			t.Fatalf("\t%s\tShould reject an encoded zero: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject an encoded zero.", success)

		data := codec.MustEncode(pieces.MustNonZeroU64(7))
		if err := codec.Decode(data, &n); err != nil || n.Get() != 7 {
			t.Fatalf("\t%s\tShould round trip seven: %v", failed, err)
		}
		t.Logf("\t%s\tShould round trip seven.", success)
	}
}
