// Package dsn distributes archived segments to the storage network. Every
// piece is published under its index and under the multihash of its piece
// index hash, the key the network routes by.
package dsn

import (
	"context"
	"errors"

	"github.com/multiformats/go-multihash"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

// Set of error variables for piece retrieval.
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidPiece = errors.New("piece does not match segment commitment")
)

// PieceStore represents the behavior required to be implemented by any
// package providing storage of archived pieces.
type PieceStore interface {
	PutPiece(ctx context.Context, idx pieces.PieceIndex, piece pieces.Piece) error
	GetPiece(ctx context.Context, idx pieces.PieceIndex) (pieces.Piece, error)
	GetPieceByKey(ctx context.Context, key multihash.Multihash) (pieces.Piece, error)
}

// HeaderStore represents the behavior required to be implemented by any
// package providing storage of segment headers.
type HeaderStore interface {
	PutHeader(ctx context.Context, h segments.SegmentHeader) error
	GetHeader(ctx context.Context, idx segments.SegmentIndex) (segments.SegmentHeader, error)
	LatestHeader(ctx context.Context) (segments.SegmentHeader, error)
}

// Store is the storage a node needs to serve archived history.
type Store interface {
	PieceStore
	HeaderStore
	Close() error
}

// PieceKey returns the key the storage network routes the piece by.
func PieceKey(idx pieces.PieceIndex) multihash.Multihash {
	return idx.Hash().Multihash()
}
