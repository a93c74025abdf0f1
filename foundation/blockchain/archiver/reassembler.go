package archiver

import (
	"fmt"

	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

// Block is a block recovered from archived history.
type Block struct {
	Number uint32
	Data   []byte
}

// Reassembler rebuilds blocks from consecutive recorded segments. Blocks
// that started before the first segment it was given are dropped.
type Reassembler struct {
	prev    *segments.SegmentHeader
	partial []byte
	number  uint32
	active  bool
}

// AddSegment parses the next recorded segment and returns the blocks it
// completed.
func (r *Reassembler) AddSegment(data segments.RecordedHistorySegment) ([]Block, error) {
	items, err := ParseSegment(data)
	if err != nil {
		return nil, err
	}

	var out []Block
	for _, item := range items {
		switch item.Kind {
		case ItemParentSegmentHeader:
			if r.prev != nil && item.ParentHeader != *r.prev {
				return nil, fmt.Errorf("%w: segment follows %d, expected %d", segments.ErrBrokenChain, item.ParentHeader.SegmentIndex(), r.prev.SegmentIndex())
			}

		case ItemBlock:
			out = append(out, Block{Number: item.BlockNumber, Data: append([]byte(nil), item.Data...)})
			r.active = false

		case ItemBlockStart:
			r.partial = append(r.partial[:0], item.Data...)
			r.number = item.BlockNumber
			r.active = true

		case ItemBlockContinuation, ItemBlockEnd:
			if !r.active {
				continue
			}
			if item.BlockNumber != r.number {
				return nil, fmt.Errorf("%w: continuation of block %d while reassembling %d", ErrMalformedSegment, item.BlockNumber, r.number)
			}

			r.partial = append(r.partial, item.Data...)
			if item.Kind == ItemBlockEnd {
				out = append(out, Block{Number: r.number, Data: r.partial})
				r.partial = nil
				r.active = false
			}
		}
	}

	return out, nil
}

// Follow records the header of the segment just added so the parent header
// of the next segment can be checked against it.
func (r *Reassembler) Follow(h segments.SegmentHeader) {
	r.prev = &h
}
