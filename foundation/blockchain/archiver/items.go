package archiver

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

// ErrMalformedSegment is returned when recorded segment data cannot be
// parsed into items.
var ErrMalformedSegment = errors.New("malformed segment")

// ItemKind is the tag of an item in a recorded segment. Tag 0 marks the
// start of the zero padding that fills the rest of the segment.
type ItemKind byte

// Set of item kinds.
const (
	ItemPadding             ItemKind = 0
	ItemBlock               ItemKind = 1
	ItemBlockStart          ItemKind = 2
	ItemBlockContinuation   ItemKind = 3
	ItemBlockEnd            ItemKind = 4
	ItemParentSegmentHeader ItemKind = 5
)

// blockItemOverhead is the tag, the block number and the length.
const blockItemOverhead = 1 + 4 + 4

// headerItemOverhead is the tag and the length.
const headerItemOverhead = 1 + 4

// Item is one entry of a recorded segment.
type Item struct {
	Kind         ItemKind
	BlockNumber  uint32
	Data         []byte
	ParentHeader segments.SegmentHeader
}

func appendBlockItem(buf []byte, kind ItemKind, number uint32, data []byte) []byte {
	buf = append(buf, byte(kind))
	buf = binary.LittleEndian.AppendUint32(buf, number)
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

func appendHeaderItem(buf []byte, h segments.SegmentHeader) []byte {
	data := codec.MustEncode(h)

	buf = append(buf, byte(ItemParentSegmentHeader))
	buf = binary.LittleEndian.AppendUint32(buf, uint32(len(data)))
	return append(buf, data...)
}

// ParseSegment parses the items of recorded segment data. The returned
// item data aliases the input.
func ParseSegment(data []byte) ([]Item, error) {
	var items []Item

	for pos := 0; pos < len(data); {
		kind := ItemKind(data[pos])
		pos++

		switch kind {
		case ItemPadding:
			return items, nil

		case ItemBlock, ItemBlockStart, ItemBlockContinuation, ItemBlockEnd:
			if len(data)-pos < blockItemOverhead-1 {
				return nil, fmt.Errorf("%w: truncated block item at %d", ErrMalformedSegment, pos)
			}
			number := binary.LittleEndian.Uint32(data[pos:])
			size := int(binary.LittleEndian.Uint32(data[pos+4:]))
			pos += 8

			if len(data)-pos < size {
				return nil, fmt.Errorf("%w: block %d: item of %d bytes exceeds segment", ErrMalformedSegment, number, size)
			}
			items = append(items, Item{Kind: kind, BlockNumber: number, Data: data[pos : pos+size]})
			pos += size

		case ItemParentSegmentHeader:
			if len(data)-pos < headerItemOverhead-1 {
				return nil, fmt.Errorf("%w: truncated header item at %d", ErrMalformedSegment, pos)
			}
			size := int(binary.LittleEndian.Uint32(data[pos:]))
			pos += 4

			if len(data)-pos < size {
				return nil, fmt.Errorf("%w: header item of %d bytes exceeds segment", ErrMalformedSegment, size)
			}

			var h segments.SegmentHeader
			if err := codec.Decode(data[pos:pos+size], &h); err != nil {
				return nil, fmt.Errorf("%w: parent header: %w", ErrMalformedSegment, err)
			}
			items = append(items, Item{Kind: kind, ParentHeader: h})
			pos += size

		default:
			return nil, fmt.Errorf("%w: %w", ErrMalformedSegment, codec.InvalidTag("Item", byte(kind)))
		}
	}

	return items, nil
}
