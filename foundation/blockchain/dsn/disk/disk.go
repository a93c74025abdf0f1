// Package disk implements the dsn stores on top of a badger database.
package disk

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/multiformats/go-multihash"
	"github.com/vedhavyas/subspace/foundation/blockchain/codec"
	"github.com/vedhavyas/subspace/foundation/blockchain/dsn"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

// Key prefixes of the records kept in the database.
var (
	piecePrefix  = []byte("p/")
	keyPrefix    = []byte("k/")
	headerPrefix = []byte("h/")
	latestKey    = []byte("latest")
)

// A piece is stored in parts since it is larger than the biggest value
// badger accepts in memory mode.
const (
	piecePartSize = pieces.RecordSize / 2
	pieceParts    = (pieces.PieceSize + piecePartSize - 1) / piecePartSize
)

// Config represents the configuration of the database.
type Config struct {
	Path     string
	InMemory bool
}

// Disk represents the storage implementation for archived pieces and
// headers held in badger. This implements the dsn.Store interface.
type Disk struct {
	db *badger.DB
}

// New opens the database at the configured path.
func New(cfg Config) (*Disk, error) {
	opts := badger.DefaultOptions(cfg.Path)
	opts.Logger = nil

	if cfg.InMemory {
		opts = opts.WithDir("").WithValueDir("").WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("opening badger: %w", err)
	}

	return &Disk{db: db}, nil
}

// Close closes the database.
func (d *Disk) Close() error {
	return d.db.Close()
}

// PutPiece stores the piece and the routing key that leads to it.
func (d *Disk) PutPiece(ctx context.Context, idx pieces.PieceIndex, piece pieces.Piece) error {
	if len(piece) != pieces.PieceSize {
		return fmt.Errorf("piece %d: %w: %d", idx, pieces.ErrInvalidSize, len(piece))
	}

	wb := d.db.NewWriteBatch()
	defer wb.Cancel()

	for part := 0; part < pieceParts; part++ {
		from := part * piecePartSize
		to := min(from+piecePartSize, pieces.PieceSize)
		if err := wb.Set(pieceKey(idx, part), piece[from:to]); err != nil {
			return err
		}
	}

	b := idx.Bytes()
	if err := wb.Set(routingKey(dsn.PieceKey(idx)), b[:]); err != nil {
		return err
	}

	return wb.Flush()
}

// GetPiece returns the piece at the index.
func (d *Disk) GetPiece(ctx context.Context, idx pieces.PieceIndex) (pieces.Piece, error) {
	piece := make([]byte, 0, pieces.PieceSize)
	err := d.db.View(func(txn *badger.Txn) error {
		for part := 0; part < pieceParts; part++ {
			item, err := txn.Get(pieceKey(idx, part))
			if err != nil {
				return err
			}

			value, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			piece = append(piece, value...)
		}
		return nil
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, dsn.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	return pieces.PieceFromBytes(piece)
}

// GetPieceByKey returns the piece published under the multihash key.
func (d *Disk) GetPieceByKey(ctx context.Context, key multihash.Multihash) (pieces.Piece, error) {
	value, err := d.get(routingKey(key))
	if err != nil {
		return nil, err
	}

	if len(value) != 8 {
		return nil, fmt.Errorf("routing key: %w: %d", pieces.ErrInvalidSize, len(value))
	}

	return d.GetPiece(ctx, pieces.PieceIndex(binary.LittleEndian.Uint64(value)))
}

// PutHeader stores the header and moves the latest pointer forward.
func (d *Disk) PutHeader(ctx context.Context, h segments.SegmentHeader) error {
	data, err := codec.Encode(h)
	if err != nil {
		return err
	}

	return d.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set(headerKey(h.SegmentIndex()), data); err != nil {
			return err
		}

		item, err := txn.Get(latestKey)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return err
		default:
			latest, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			if binary.BigEndian.Uint64(latest) >= uint64(h.SegmentIndex()) {
				return nil
			}
		}

		return txn.Set(latestKey, binary.BigEndian.AppendUint64(nil, uint64(h.SegmentIndex())))
	})
}

// GetHeader returns the header of the segment.
func (d *Disk) GetHeader(ctx context.Context, idx segments.SegmentIndex) (segments.SegmentHeader, error) {
	value, err := d.get(headerKey(idx))
	if err != nil {
		return segments.SegmentHeader{}, err
	}

	var h segments.SegmentHeader
	if err := codec.Decode(value, &h); err != nil {
		return segments.SegmentHeader{}, fmt.Errorf("header %d: %w", idx, err)
	}

	return h, nil
}

// LatestHeader returns the header with the highest segment index.
func (d *Disk) LatestHeader(ctx context.Context) (segments.SegmentHeader, error) {
	value, err := d.get(latestKey)
	if err != nil {
		return segments.SegmentHeader{}, err
	}

	return d.GetHeader(ctx, segments.SegmentIndex(binary.BigEndian.Uint64(value)))
}

// =============================================================================

func (d *Disk) get(key []byte) ([]byte, error) {
	var value []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}

		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, dsn.ErrNotFound
	}

	return value, err
}

func pieceKey(idx pieces.PieceIndex, part int) []byte {
	key := binary.BigEndian.AppendUint64(append([]byte(nil), piecePrefix...), uint64(idx))
	return append(key, byte(part))
}

func headerKey(idx segments.SegmentIndex) []byte {
	return binary.BigEndian.AppendUint64(append([]byte(nil), headerPrefix...), uint64(idx))
}

func routingKey(key multihash.Multihash) []byte {
	return append(append([]byte(nil), keyPrefix...), key...)
}
