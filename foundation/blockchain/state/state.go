// Package state is the core API for the archival node and owns the archiver,
// the piece and header stores and everything needed to serve archived
// history.
package state

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vedhavyas/subspace/foundation/blockchain/archiver"
	"github.com/vedhavyas/subspace/foundation/blockchain/commitment"
	"github.com/vedhavyas/subspace/foundation/blockchain/dsn"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
)

// Set of errors returned by the state.
var (
	ErrQueueFull = errors.New("archive queue is full")
	ErrShutdown  = errors.New("node is shutting down")
)

// EventHandler defines a function that is called when events
// occur in the processing of archiving blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for archiving blocks in the background.
type Worker interface {
	Shutdown()
	SignalArchiveBlock(block archiver.Block) error
}

// =============================================================================

// Config represents the configuration required to start the archival node.
type Config struct {
	Geometry        archiver.Geometry
	Committer       commitment.Committer
	Store           dsn.Store
	HeaderCacheSize int
	EvHandler       EventHandler
}

// State manages the archived history of the node.
type State struct {
	mu sync.Mutex

	evHandler EventHandler
	geometry  archiver.Geometry
	committer commitment.Committer
	archiver  *archiver.Archiver
	store     dsn.Store
	headers   *dsn.CachedHeaders
	publisher *dsn.Publisher
	getter    *dsn.Getter

	// pending holds archived segments not published yet, in order.
	pending []archiver.ArchivedSegment

	Worker Worker
}

// New constructs the state of an archival node. Archiving always starts
// from the genesis segment, segments already held by the store are
// published again with identical content.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	if cfg.Store == nil {
		return nil, errors.New("store is required")
	}

	if cfg.Committer == nil {
		cfg.Committer = commitment.NewHashCommitter()
	}

	if cfg.HeaderCacheSize <= 0 {
		cfg.HeaderCacheSize = dsn.DefaultHeaderCacheSize
	}

	arc, err := archiver.New(archiver.Config{
		Geometry:  cfg.Geometry,
		Committer: cfg.Committer,
		EvHandler: archiver.EventHandler(ev),
	})
	if err != nil {
		return nil, fmt.Errorf("constructing archiver: %w", err)
	}

	headers, err := dsn.NewCachedHeaders(cfg.Store, cfg.HeaderCacheSize)
	if err != nil {
		return nil, fmt.Errorf("constructing header cache: %w", err)
	}

	geometry := arc.Geometry()

	state := State{
		evHandler: ev,
		geometry:  geometry,
		committer: cfg.Committer,
		archiver:  arc,
		store:     cfg.Store,
		headers:   headers,
		publisher: dsn.NewPublisher(cfg.Store, headers, geometry, dsn.EventHandler(ev)),
		getter:    dsn.NewGetter(cfg.Store, headers, geometry, cfg.Committer),
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all archiving activity before closing the store.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return s.store.Close()
}

// Geometry returns the geometry of the archived segments.
func (s *State) Geometry() archiver.Geometry {
	return s.geometry
}

// =============================================================================

// SubmitBlock queues the block for archiving by the worker.
func (s *State) SubmitBlock(block archiver.Block) error {
	if s.Worker == nil {
		return errors.New("no worker registered")
	}

	return s.Worker.SignalArchiveBlock(block)
}

// ArchiveBlock adds the block to the archiver and publishes every segment
// it completes. It is called by the worker. Segments that failed to publish
// earlier are published first, the block is not archived until they are.
func (s *State) ArchiveBlock(ctx context.Context, block archiver.Block) ([]segments.SegmentHeader, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.evHandler("state: ArchiveBlock: started: block[%d] size[%d]", block.Number, len(block.Data))
	defer s.evHandler("state: ArchiveBlock: completed: block[%d]", block.Number)

	out, err := s.publishPending(ctx)
	if err != nil {
		return out, err
	}

	segs, err := s.archiver.AddBlock(block.Number, block.Data)
	if err != nil {
		return out, err
	}
	s.pending = append(s.pending, segs...)

	published, err := s.publishPending(ctx)
	return append(out, published...), err
}

// publishPending publishes the pending segments in order, stopping at the
// first failure. The failed segment and the ones after it stay pending.
func (s *State) publishPending(ctx context.Context) ([]segments.SegmentHeader, error) {
	var out []segments.SegmentHeader

	for len(s.pending) > 0 {
		seg := s.pending[0]
		if _, err := s.publisher.Publish(ctx, seg); err != nil {
			s.evHandler("state: publish: segment[%d] pending: %s", seg.Header.SegmentIndex(), err)
			return out, fmt.Errorf("publishing segment %d: %w", seg.Header.SegmentIndex(), err)
		}

		out = append(out, seg.Header)
		s.pending = s.pending[1:]
	}

	s.pending = nil
	return out, nil
}

// Ping checks the store can be read.
func (s *State) Ping(ctx context.Context) error {
	if _, err := s.store.LatestHeader(ctx); err != nil && !errors.Is(err, dsn.ErrNotFound) {
		return err
	}
	return nil
}
