package dsn

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

// DefaultHeaderCacheSize is the number of headers kept hot by default.
const DefaultHeaderCacheSize = 1024

// CachedHeaders wraps a header store with an LRU cache of headers by
// segment index. Headers never change once stored so entries are never
// invalidated.
type CachedHeaders struct {
	HeaderStore
	cache *lru.Cache[segments.SegmentIndex, segments.SegmentHeader]
}

// NewCachedHeaders constructs the cache in front of the store.
func NewCachedHeaders(store HeaderStore, size int) (*CachedHeaders, error) {
	if size <= 0 {
		size = DefaultHeaderCacheSize
	}

	cache, err := lru.New[segments.SegmentIndex, segments.SegmentHeader](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create header cache: %w", err)
	}

	return &CachedHeaders{HeaderStore: store, cache: cache}, nil
}

// PutHeader stores the header and keeps it hot.
func (c *CachedHeaders) PutHeader(ctx context.Context, h segments.SegmentHeader) error {
	if err := c.HeaderStore.PutHeader(ctx, h); err != nil {
		return err
	}

	c.cache.Add(h.SegmentIndex(), h)
	return nil
}

// GetHeader serves the header from the cache when possible.
func (c *CachedHeaders) GetHeader(ctx context.Context, idx segments.SegmentIndex) (segments.SegmentHeader, error) {
	if h, ok := c.cache.Get(idx); ok {
		cacheHitCounter.WithLabelValues("header").Inc()
		return h, nil
	}
	cacheMissCounter.WithLabelValues("header").Inc()

	h, err := c.HeaderStore.GetHeader(ctx, idx)
	if err != nil {
		return segments.SegmentHeader{}, err
	}

	c.cache.Add(idx, h)
	return h, nil
}

// Len returns the number of cached headers.
func (c *CachedHeaders) Len() int {
	return c.cache.Len()
}

// SegmentCommitment returns the commitment of a stored segment. A lookup
// failure reports the commitment as unknown.
func (c *CachedHeaders) SegmentCommitment(idx segments.SegmentIndex) (segments.SegmentCommitment, bool) {
	h, err := c.GetHeader(context.Background(), idx)
	if err != nil {
		return segments.SegmentCommitment{}, false
	}
	return h.SegmentCommitment(), true
}
