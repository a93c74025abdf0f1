package segments

import (
	"encoding/json"
	"fmt"

	"github.com/centrifuge/go-substrate-rpc-client/v4/scale"
	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
)

// Variant tags of ArchivedBlockProgress.
const (
	progressComplete byte = 0
	progressPartial  byte = 1
)

// ArchivedBlockProgress tracks how much of a block has been archived. The
// zero value is Complete: a block is assumed to fit into the segment until
// the archiver finds that it overflows.
type ArchivedBlockProgress struct {
	partial bool
	bytes   uint32
}

// Complete returns the progress of a fully archived block.
func Complete() ArchivedBlockProgress {
	return ArchivedBlockProgress{}
}

// Partial returns the progress of a block with archived bytes so far.
func Partial(archived uint32) ArchivedBlockProgress {
	return ArchivedBlockProgress{partial: true, bytes: archived}
}

// Partial returns the number of archived bytes if the block is not
// complete.
func (p ArchivedBlockProgress) Partial() (uint32, bool) {
	if !p.partial {
		return 0, false
	}
	return p.bytes, true
}

// IsComplete reports whether the block is fully archived.
func (p ArchivedBlockProgress) IsComplete() bool {
	return !p.partial
}

// SetPartial sets the number of archived bytes.
func (p *ArchivedBlockProgress) SetPartial(archived uint32) {
	*p = Partial(archived)
}

// SetComplete marks the block as fully archived.
func (p *ArchivedBlockProgress) SetComplete() {
	*p = Complete()
}

// Encode implements scale.Encodeable.
func (p ArchivedBlockProgress) Encode(enc scale.Encoder) error {
	if !p.partial {
		return enc.PushByte(progressComplete)
	}

	if err := enc.PushByte(progressPartial); err != nil {
		return err
	}
	return codec.WriteUint32(enc, p.bytes)
}

// Decode implements scale.Decodeable.
func (p *ArchivedBlockProgress) Decode(dec scale.Decoder) error {
	tag, err := dec.ReadOneByte()
	if err != nil {
		return err
	}

	switch tag {
	case progressComplete:
		*p = Complete()

	case progressPartial:
		n, err := codec.ReadUint32(dec)
		if err != nil {
			return err
		}
		*p = Partial(n)

	default:
		return codec.InvalidTag("ArchivedBlockProgress", tag)
	}

	return nil
}

// MarshalJSON renders "complete" or {"partial": n}.
func (p ArchivedBlockProgress) MarshalJSON() ([]byte, error) {
	if !p.partial {
		return json.Marshal("complete")
	}
	return json.Marshal(map[string]uint32{"partial": p.bytes})
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *ArchivedBlockProgress) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s != "complete" {
			return fmt.Errorf("unknown archived block progress %q", s)
		}
		*p = Complete()
		return nil
	}

	var v struct {
		Partial *uint32 `json:"partial"`
	}
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Partial == nil {
		return fmt.Errorf("unknown archived block progress %s", data)
	}

	*p = Partial(*v.Partial)
	return nil
}

// =============================================================================

// LastArchivedBlock identifies the last block whose data, or part of it,
// went into a segment.
type LastArchivedBlock struct {
	Number           uint32                `json:"number"`
	ArchivedProgress ArchivedBlockProgress `json:"archivedProgress"`
}

// PartialArchived returns the number of archived bytes of the block if it
// is not complete.
func (lab LastArchivedBlock) PartialArchived() (uint32, bool) {
	return lab.ArchivedProgress.Partial()
}

// SetPartialArchived sets the number of archived bytes of the block.
func (lab *LastArchivedBlock) SetPartialArchived(archived uint32) {
	lab.ArchivedProgress.SetPartial(archived)
}

// SetComplete marks the block as fully archived.
func (lab *LastArchivedBlock) SetComplete() {
	lab.ArchivedProgress.SetComplete()
}

// Encode implements scale.Encodeable.
func (lab LastArchivedBlock) Encode(enc scale.Encoder) error {
	if err := codec.WriteUint32(enc, lab.Number); err != nil {
		return err
	}
	return lab.ArchivedProgress.Encode(enc)
}

// Decode implements scale.Decodeable.
func (lab *LastArchivedBlock) Decode(dec scale.Decoder) error {
	n, err := codec.ReadUint32(dec)
	if err != nil {
		return err
	}

	var progress ArchivedBlockProgress
	if err := progress.Decode(dec); err != nil {
		return err
	}

	*lab = LastArchivedBlock{Number: n, ArchivedProgress: progress}
	return nil
}
