// Package sector derives the contents of a farmer's plotted sectors and the
// per sector challenges solutions are judged against. Every derivation is
// a keyed BLAKE2b-256 hash where the message is the little endian input and
// the key is the raw bytes of the parent identity.
package sector

import (
	"encoding/binary"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/u256"
)

// pieceScalars is the number of scalars a piece occupies once every 31 safe
// bytes are padded to a full 32 byte scalar.
const pieceScalars = pieces.PieceSize / crypto.ScalarSafeBytes

// PlotSectorSize is the size of a plotted sector in bytes. The sector is a
// square grid with one row and one column per scalar of a piece.
const PlotSectorSize = pieceScalars * pieceScalars * crypto.ScalarFullBytes

// PiecesInSector is the number of pieces a plotted sector holds.
const PiecesInSector = PlotSectorSize / (pieceScalars * crypto.ScalarFullBytes)

// SectorIndex is the index of a sector within a farmer's plot.
type SectorIndex uint64

// SolutionRange is a target window on the ring of u64 tags.
type SolutionRange = uint64

// =============================================================================

// LegacySectorID identifies one (public key, sector index) pair. It is
// always recomputed and never stored on its own.
type LegacySectorID crypto.Blake2b256Hash

// NewLegacySectorID derives the id of the farmer's sector.
func NewLegacySectorID(publicKey crypto.PublicKey, sectorIndex SectorIndex) LegacySectorID {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], uint64(sectorIndex))

	return LegacySectorID(crypto.Blake2b256Keyed(b[:], publicKey[:]))
}

// DerivePieceIndex returns the index of the archived piece stored at the
// offset of the sector, given the number of pieces in the history when the
// sector was plotted.
func (id LegacySectorID) DerivePieceIndex(pieceOffset pieces.PieceIndex, totalPieces pieces.NonZeroU64) pieces.PieceIndex {
	b := pieceOffset.Bytes()
	hash := crypto.Blake2b256Keyed(b[:], id[:])

	rem := u256.FromLEBytes(hash).Rem(u256.FromUint64(totalPieces.Get()))

	// The remainder is smaller than a u64 divisor, a failure here means the
	// remainder was computed against the wrong modulus.
	n, err := rem.Uint64()
	if err != nil {
		panic("remainder of division by total pieces must fit into a piece index: " + err.Error())
	}

	return pieces.PieceIndex(n)
}

// DeriveLocalChallenge returns the challenge of this sector for the global
// slot challenge.
func (id LegacySectorID) DeriveLocalChallenge(globalChallenge crypto.Blake2b256Hash) SolutionRange {
	hash := crypto.Blake2b256Keyed(globalChallenge[:], id[:])
	return binary.BigEndian.Uint64(hash[:8])
}

// PieceIndexes returns the piece index of every offset of the sector.
func (id LegacySectorID) PieceIndexes(totalPieces pieces.NonZeroU64) []pieces.PieceIndex {
	out := make([]pieces.PieceIndex, PiecesInSector)
	for offset := range out {
		out[offset] = id.DerivePieceIndex(pieces.PieceIndex(offset), totalPieces)
	}
	return out
}

// String returns the lowercase hex form without prefix.
func (id LegacySectorID) String() string {
	return crypto.Blake2b256Hash(id).String()
}

// MarshalText implements encoding.TextMarshaler.
func (id LegacySectorID) MarshalText() ([]byte, error) {
	return crypto.Blake2b256Hash(id).MarshalText()
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *LegacySectorID) UnmarshalText(input []byte) error {
	return (*crypto.Blake2b256Hash)(id).UnmarshalText(input)
}

// Encode implements scale.Encodeable.
func (id LegacySectorID) Encode(enc scale.Encoder) error {
	return enc.Write(id[:])
}

// Decode implements scale.Decodeable.
func (id *LegacySectorID) Decode(dec scale.Decoder) error {
	return dec.Read(id[:])
}

// Encode implements scale.Encodeable.
func (si SectorIndex) Encode(enc scale.Encoder) error {
	return codec.WriteUint64(enc, uint64(si))
}

// Decode implements scale.Decodeable.
func (si *SectorIndex) Decode(dec scale.Decoder) error {
	v, err := codec.ReadUint64(dec)
	if err != nil {
		return err
	}
	*si = SectorIndex(v)
	return nil
}
