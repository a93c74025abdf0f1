package segments

import (
	"errors"
	"fmt"
)

// ErrBrokenChain is returned when a header does not link to its
// predecessor.
var ErrBrokenChain = errors.New("broken segment header chain")

// VerifyNext checks that next may follow prev. A nil prev means next must
// be the first segment.
func VerifyNext(prev *SegmentHeader, next SegmentHeader) error {
	expIndex := SegmentIndex(0)
	expHash := GenesisPrevHash
	if prev != nil {
		expIndex = prev.SegmentIndex() + 1
		expHash = prev.Hash()
	}

	if next.SegmentIndex() != expIndex {
		return fmt.Errorf("%w: segment %d: expected index %d", ErrBrokenChain, next.SegmentIndex(), expIndex)
	}

	if next.PrevSegmentHeaderHash() != expHash {
		return fmt.Errorf("%w: segment %d: previous hash %s, expected %s", ErrBrokenChain, next.SegmentIndex(), next.PrevSegmentHeaderHash(), expHash)
	}

	return nil
}

// VerifyChain checks a full sequence of headers starting at the genesis
// segment.
func VerifyChain(headers []SegmentHeader) error {
	var prev *SegmentHeader
	for i := range headers {
		if err := VerifyNext(prev, headers[i]); err != nil {
			return err
		}
		prev = &headers[i]
	}

	return nil
}

// =============================================================================

// Chain is an append only sequence of linked segment headers. It is owned
// by a single writer, callers sharing it must provide their own locking.
type Chain struct {
	headers []SegmentHeader
	tipHash SegmentHeaderHash
}

// NewChain constructs an empty chain.
func NewChain() *Chain {
	return &Chain{tipHash: GenesisPrevHash}
}

// Append links the header to the tip of the chain.
func (c *Chain) Append(h SegmentHeader) error {
	var prev *SegmentHeader
	if n := len(c.headers); n > 0 {
		prev = &c.headers[n-1]
	}

	if err := VerifyNext(prev, h); err != nil {
		return err
	}

	c.headers = append(c.headers, h)
	c.tipHash = h.Hash()
	return nil
}

// Len returns the number of headers in the chain.
func (c *Chain) Len() int {
	return len(c.headers)
}

// Tip returns the most recent header.
func (c *Chain) Tip() (SegmentHeader, bool) {
	if len(c.headers) == 0 {
		return SegmentHeader{}, false
	}
	return c.headers[len(c.headers)-1], true
}

// TipHash returns the hash the next header must link to.
func (c *Chain) TipHash() SegmentHeaderHash {
	return c.tipHash
}

// Get returns the header of the segment.
func (c *Chain) Get(idx SegmentIndex) (SegmentHeader, bool) {
	if uint64(idx) >= uint64(len(c.headers)) {
		return SegmentHeader{}, false
	}
	return c.headers[idx], true
}

// Headers returns a copy of every header in order.
func (c *Chain) Headers() []SegmentHeader {
	out := make([]SegmentHeader, len(c.headers))
	copy(out, c.headers)
	return out
}
