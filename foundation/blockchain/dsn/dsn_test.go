package dsn_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vedhavyas/subspace/foundation/blockchain/archiver"
	"github.com/vedhavyas/subspace/foundation/blockchain/commitment"
	"github.com/vedhavyas/subspace/foundation/blockchain/dsn"
	"github.com/vedhavyas/subspace/foundation/blockchain/dsn/disk"
	"github.com/vedhavyas/subspace/foundation/blockchain/dsn/memory"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
	"lukechampine.com/frand"
)

var geometry = archiver.Geometry{RecordsPerSegment: 2}

func archive(t *testing.T, n int) []archiver.ArchivedSegment {
	t.Helper()

	a, err := archiver.New(archiver.Config{Geometry: geometry, Committer: commitment.NewHashCommitter()})
	require.NoError(t, err)

	var out []archiver.ArchivedSegment
	for number := uint32(0); len(out) < n; number++ {
		segs, err := a.AddBlock(number, frand.Bytes(800_000))
		require.NoError(t, err)
		out = append(out, segs...)
	}

	return out[:n]
}

func stores(t *testing.T) map[string]dsn.Store {
	t.Helper()

	inMemory, err := disk.New(disk.Config{InMemory: true})
	require.NoError(t, err)
	t.Cleanup(func() { inMemory.Close() })

	onDisk, err := disk.New(disk.Config{Path: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { onDisk.Close() })

	return map[string]dsn.Store{
		"memory":      memory.New(),
		"disk/memory": inMemory,
		"disk/dir":    onDisk,
	}
}

// =============================================================================

func TestPublish(t *testing.T) {
	segs := archive(t, 2)

	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			var events []string
			p := dsn.NewPublisher(store, store, geometry, func(v string, args ...any) { events = append(events, v) })

			published, err := p.Publish(ctx, segs[0])
			require.NoError(t, err)
			require.True(t, published)

			published, err = p.Publish(ctx, segs[0])
			require.NoError(t, err)
			require.False(t, published, "repeated segment must be skipped")

			published, err = p.Publish(ctx, segs[1])
			require.NoError(t, err)
			require.True(t, published)
			require.NotEmpty(t, events)

			for _, seg := range segs {
				first := geometry.FirstPieceIndex(seg.Header.SegmentIndex())
				for i, exp := range seg.Pieces.Pieces() {
					idx := first + pieces.PieceIndex(i)

					got, err := store.GetPiece(ctx, idx)
					require.NoError(t, err)
					require.Equal(t, exp, got)

					byKey, err := store.GetPieceByKey(ctx, dsn.PieceKey(idx))
					require.NoError(t, err)
					require.Equal(t, exp, byKey)
				}

				h, err := store.GetHeader(ctx, seg.Header.SegmentIndex())
				require.NoError(t, err)
				require.Equal(t, seg.Header, h)
			}

			latest, err := store.LatestHeader(ctx)
			require.NoError(t, err)
			require.Equal(t, segs[1].Header, latest)

			_, err = store.GetPiece(ctx, 1_000_000)
			require.ErrorIs(t, err, dsn.ErrNotFound)

			_, err = store.GetHeader(ctx, 99)
			require.ErrorIs(t, err, dsn.ErrNotFound)
		})
	}
}

func TestLatestHeaderEmpty(t *testing.T) {
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := store.LatestHeader(context.Background())
			require.ErrorIs(t, err, dsn.ErrNotFound)
		})
	}
}

func TestGetter(t *testing.T) {
	ctx := context.Background()
	segs := archive(t, 1)

	store := memory.New()
	p := dsn.NewPublisher(store, store, geometry, nil)
	_, err := p.Publish(ctx, segs[0])
	require.NoError(t, err)

	headers, err := dsn.NewCachedHeaders(store, 8)
	require.NoError(t, err)

	g := dsn.NewGetter(store, headers, geometry, commitment.NewHashCommitter())

	piece, err := g.GetPiece(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, segs[0].Pieces.Piece(1), piece)
	require.Equal(t, 1, headers.Len())

	// A piece stored at the wrong position fails verification.
	require.NoError(t, store.PutPiece(ctx, 2, segs[0].Pieces.Piece(3)))
	_, err = g.GetPiece(ctx, 2)
	require.ErrorIs(t, err, dsn.ErrInvalidPiece)

	all, err := g.GetSegment(ctx, 0)
	require.NoError(t, err)
	require.Nil(t, all[2])
	require.NotNil(t, all[0])

	recorded, err := archiver.Reconstruct(geometry, all)
	require.NoError(t, err)
	require.Len(t, recorded, geometry.SegmentSize())
}

// faultyStore fails reads of one piece with a store fault.
type faultyStore struct {
	*memory.Memory
	failAt pieces.PieceIndex
}

var errFault = errors.New("disk fault")

func (f faultyStore) GetPiece(ctx context.Context, idx pieces.PieceIndex) (pieces.Piece, error) {
	if idx == f.failAt {
		return nil, errFault
	}
	return f.Memory.GetPiece(ctx, idx)
}

func TestGetSegmentFaults(t *testing.T) {
	segs := archive(t, 1)

	store := faultyStore{Memory: memory.New(), failAt: 1}
	p := dsn.NewPublisher(store, store, geometry, nil)
	_, err := p.Publish(context.Background(), segs[0])
	require.NoError(t, err)

	g := dsn.NewGetter(store, store, geometry, commitment.NewHashCommitter())

	_, err = g.GetSegment(context.Background(), 0)
	require.ErrorIs(t, err, errFault, "store faults must not be read as missing pieces")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = g.GetSegment(ctx, 0)
	require.ErrorIs(t, err, context.Canceled)

	missing, err := g.GetSegment(context.Background(), 7)
	require.NoError(t, err)
	for _, piece := range missing {
		require.Nil(t, piece)
	}
}

func TestCachedHeaders(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	headers, err := dsn.NewCachedHeaders(store, 2)
	require.NoError(t, err)

	h := segments.NewSegmentHeaderV0(segments.SegmentHeaderV0{SegmentIndex: 0})
	require.NoError(t, headers.PutHeader(ctx, h))

	got, err := headers.GetHeader(ctx, 0)
	require.NoError(t, err)
	require.Equal(t, h, got)

	sc, ok := headers.SegmentCommitment(0)
	require.True(t, ok)
	require.Equal(t, h.SegmentCommitment(), sc)

	_, ok = headers.SegmentCommitment(5)
	require.False(t, ok)
}
