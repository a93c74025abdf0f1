package crypto

// Proof of space sizes in bytes.
const (
	PosSeedSize    = 32
	PosQualitySize = 32
	PosProofSize   = 17 * 8
)

// PosSeed seeds the proof of space table of a sector.
type PosSeed [PosSeedSize]byte

// PosQualityBytes is the quality of a proof of space.
type PosQualityBytes [PosQualitySize]byte

// Hash returns the hash of the quality.
func (q PosQualityBytes) Hash() Blake2b256Hash {
	return Blake2b256(q[:])
}

// PosProof is a proof of space.
type PosProof [PosProofSize]byte
