// Package memory implements the dsn stores in memory using maps.
package memory

import (
	"context"
	"sync"

	"github.com/multiformats/go-multihash"
	"github.com/vedhavyas/subspace/foundation/blockchain/dsn"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

// Memory represents the storage implementation for archived pieces and
// headers held in memory. This implements the dsn.Store interface.
type Memory struct {
	mu      sync.RWMutex
	pieces  map[pieces.PieceIndex]pieces.Piece
	keys    map[string]pieces.PieceIndex
	headers map[segments.SegmentIndex]segments.SegmentHeader
	latest  *segments.SegmentIndex
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{
		pieces:  make(map[pieces.PieceIndex]pieces.Piece),
		keys:    make(map[string]pieces.PieceIndex),
		headers: make(map[segments.SegmentIndex]segments.SegmentHeader),
	}
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// PutPiece stores a copy of the piece.
func (m *Memory) PutPiece(ctx context.Context, idx pieces.PieceIndex, piece pieces.Piece) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.pieces[idx] = append(pieces.Piece(nil), piece...)
	m.keys[string(dsn.PieceKey(idx))] = idx

	return nil
}

// GetPiece returns the piece at the index.
func (m *Memory) GetPiece(ctx context.Context, idx pieces.PieceIndex) (pieces.Piece, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	piece, exists := m.pieces[idx]
	if !exists {
		return nil, dsn.ErrNotFound
	}

	return append(pieces.Piece(nil), piece...), nil
}

// GetPieceByKey returns the piece published under the multihash key.
func (m *Memory) GetPieceByKey(ctx context.Context, key multihash.Multihash) (pieces.Piece, error) {
	m.mu.RLock()
	idx, exists := m.keys[string(key)]
	m.mu.RUnlock()

	if !exists {
		return nil, dsn.ErrNotFound
	}

	return m.GetPiece(ctx, idx)
}

// PutHeader stores the header.
func (m *Memory) PutHeader(ctx context.Context, h segments.SegmentHeader) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := h.SegmentIndex()
	m.headers[idx] = h

	if m.latest == nil || *m.latest < idx {
		m.latest = &idx
	}

	return nil
}

// GetHeader returns the header of the segment.
func (m *Memory) GetHeader(ctx context.Context, idx segments.SegmentIndex) (segments.SegmentHeader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	h, exists := m.headers[idx]
	if !exists {
		return segments.SegmentHeader{}, dsn.ErrNotFound
	}

	return h, nil
}

// LatestHeader returns the header with the highest segment index.
func (m *Memory) LatestHeader(ctx context.Context) (segments.SegmentHeader, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.latest == nil {
		return segments.SegmentHeader{}, dsn.ErrNotFound
	}

	return m.headers[*m.latest], nil
}
