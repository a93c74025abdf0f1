package segments

import (
	"encoding/json"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
)

// Version tags of SegmentHeader. A tag is never reused.
const (
	VersionV0 byte = 0
)

// SegmentCommitment is the aggregate commitment over every record of a
// segment.
type SegmentCommitment = crypto.Commitment

// SegmentHeaderHash is the hash that identifies a segment header.
type SegmentHeaderHash = crypto.Blake2b256Hash

// GenesisPrevHash is the previous header hash of the first segment.
var GenesisPrevHash SegmentHeaderHash

// =============================================================================

// SegmentHeaderV0 is the first version of the segment header format.
type SegmentHeaderV0 struct {
	SegmentIndex          SegmentIndex      `json:"segmentIndex"`
	SegmentCommitment     SegmentCommitment `json:"segmentCommitment"`
	PrevSegmentHeaderHash SegmentHeaderHash `json:"prevSegmentHeaderHash"`
	LastArchivedBlock     LastArchivedBlock `json:"lastArchivedBlock"`
}

// SegmentHeader is the hash linked summary of one segment. It is a tagged
// variant, the version decides the layout of the fields that follow the
// tag. Values are comparable with ==.
type SegmentHeader struct {
	version byte
	v0      SegmentHeaderV0
}

// NewSegmentHeaderV0 constructs a version 0 header.
func NewSegmentHeaderV0(v0 SegmentHeaderV0) SegmentHeader {
	return SegmentHeader{version: VersionV0, v0: v0}
}

// Version returns the version tag of the header.
func (h SegmentHeader) Version() byte {
	return h.version
}

// V0 returns the version 0 fields if that is the version of the header.
func (h SegmentHeader) V0() (SegmentHeaderV0, bool) {
	if h.version != VersionV0 {
		return SegmentHeaderV0{}, false
	}
	return h.v0, true
}

// SegmentIndex returns the index of the segment.
func (h SegmentHeader) SegmentIndex() SegmentIndex {
	switch h.version {
	case VersionV0:
		return h.v0.SegmentIndex
	}
	panic(unknownVersion(h.version))
}

// SegmentCommitment returns the aggregate commitment of the segment.
func (h SegmentHeader) SegmentCommitment() SegmentCommitment {
	switch h.version {
	case VersionV0:
		return h.v0.SegmentCommitment
	}
	panic(unknownVersion(h.version))
}

// PrevSegmentHeaderHash returns the hash of the previous header.
func (h SegmentHeader) PrevSegmentHeaderHash() SegmentHeaderHash {
	switch h.version {
	case VersionV0:
		return h.v0.PrevSegmentHeaderHash
	}
	panic(unknownVersion(h.version))
}

// LastArchivedBlock returns the last block that went into the segment.
func (h SegmentHeader) LastArchivedBlock() LastArchivedBlock {
	switch h.version {
	case VersionV0:
		return h.v0.LastArchivedBlock
	}
	panic(unknownVersion(h.version))
}

// Hash returns the BLAKE2b-256 hash of the canonical encoding.
func (h SegmentHeader) Hash() SegmentHeaderHash {
	return crypto.Blake2b256(codec.MustEncode(h))
}

// Encode implements scale.Encodeable.
func (h SegmentHeader) Encode(enc scale.Encoder) error {
	switch h.version {
	case VersionV0:
		if err := enc.PushByte(VersionV0); err != nil {
			return err
		}
		if err := h.v0.SegmentIndex.Encode(enc); err != nil {
			return err
		}
		if err := h.v0.SegmentCommitment.Encode(enc); err != nil {
			return err
		}
		if err := h.v0.PrevSegmentHeaderHash.Encode(enc); err != nil {
			return err
		}
		return h.v0.LastArchivedBlock.Encode(enc)
	}

	return codec.InvalidTag("SegmentHeader", h.version)
}

// Decode implements scale.Decodeable.
func (h *SegmentHeader) Decode(dec scale.Decoder) error {
	tag, err := dec.ReadOneByte()
	if err != nil {
		return err
	}

	switch tag {
	case VersionV0:
		var v0 SegmentHeaderV0
		if err := v0.SegmentIndex.Decode(dec); err != nil {
			return err
		}
		if err := v0.SegmentCommitment.Decode(dec); err != nil {
			return err
		}
		if err := v0.PrevSegmentHeaderHash.Decode(dec); err != nil {
			return err
		}
		if err := v0.LastArchivedBlock.Decode(dec); err != nil {
			return err
		}
		*h = NewSegmentHeaderV0(v0)
		return nil
	}

	return codec.InvalidTag("SegmentHeader", tag)
}

// MarshalJSON renders the header as {"v0": {...}}.
func (h SegmentHeader) MarshalJSON() ([]byte, error) {
	switch h.version {
	case VersionV0:
		return json.Marshal(struct {
			V0 SegmentHeaderV0 `json:"v0"`
		}{h.v0})
	}
	return nil, unknownVersion(h.version)
}

// UnmarshalJSON implements json.Unmarshaler.
func (h *SegmentHeader) UnmarshalJSON(data []byte) error {
	var v struct {
		V0 *SegmentHeaderV0 `json:"v0"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.V0 == nil {
		return fmt.Errorf("segment header: %w: no known version present", codec.ErrInvalidTag)
	}

	*h = NewSegmentHeaderV0(*v.V0)
	return nil
}

func unknownVersion(version byte) error {
	return codec.InvalidTag("SegmentHeader", version)
}
