// Package worker implements the background archiving of submitted blocks
// for the archival node.
package worker

import (
	"context"
	"sync"

	"github.com/vedhavyas/subspace/foundation/blockchain/archiver"
	"github.com/vedhavyas/subspace/foundation/blockchain/state"
)

// DefaultQueueSize is the number of submitted blocks that can wait for the
// archiver before submissions are rejected.
const DefaultQueueSize = 64

// =============================================================================

// Worker manages the archiving workflow for the node.
type Worker struct {
	state     *state.State
	wg        sync.WaitGroup
	shut      chan struct{}
	blocks    chan archiver.Block
	evHandler state.EventHandler

	mu     sync.RWMutex
	closed bool
}

// Run creates a worker, registers the worker with the state package, and
// starts up the archiving goroutine.
func Run(st *state.State, queueSize int, evHandler state.EventHandler) *Worker {
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	if queueSize <= 0 {
		queueSize = DefaultQueueSize
	}

	w := Worker{
		state:     st,
		shut:      make(chan struct{}),
		blocks:    make(chan archiver.Block, queueSize),
		evHandler: ev,
	}

	// Register this worker with the state package.
	st.Worker = &w

	// We don't want to return until we know the G is up and running.
	hasStarted := make(chan bool)

	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		hasStarted <- true
		w.archiveOperations()
	}()

	<-hasStarted

	return &w
}

// =============================================================================
// These methods implement the state.Worker interface.

// Shutdown stops accepting blocks, waits for the queued ones to be archived
// and terminates the goroutine performing work.
func (w *Worker) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	w.mu.Unlock()

	w.evHandler("worker: shutdown: started")
	defer w.evHandler("worker: shutdown: completed")

	w.evHandler("worker: shutdown: terminate goroutines")
	close(w.shut)
	w.wg.Wait()
}

// SignalArchiveBlock queues the block for archiving. It never blocks, a
// full queue rejects the block.
func (w *Worker) SignalArchiveBlock(block archiver.Block) error {
	w.mu.RLock()
	defer w.mu.RUnlock()

	if w.closed {
		return state.ErrShutdown
	}

	select {
	case w.blocks <- block:
		w.evHandler("worker: SignalArchiveBlock: block[%d] queued", block.Number)
		return nil
	default:
		w.evHandler("worker: SignalArchiveBlock: queue full, block[%d] rejected", block.Number)
		return state.ErrQueueFull
	}
}

// =============================================================================

// archiveOperations archives queued blocks in submission order.
func (w *Worker) archiveOperations() {
	w.evHandler("worker: archiveOperations: G started")
	defer w.evHandler("worker: archiveOperations: G completed")

	for {
		select {
		case block := <-w.blocks:
			w.runArchiveOperation(block)

		case <-w.shut:
			w.evHandler("worker: archiveOperations: received shut signal")
			w.drain()
			return
		}
	}
}

// drain archives the blocks still queued when shutdown was signaled. No
// block can be queued once the worker is closed.
func (w *Worker) drain() {
	for {
		select {
		case block := <-w.blocks:
			w.runArchiveOperation(block)
		default:
			return
		}
	}
}

// runArchiveOperation archives a single block and publishes the segments it
// completes.
func (w *Worker) runArchiveOperation(block archiver.Block) {
	headers, err := w.state.ArchiveBlock(context.Background(), block)
	if err != nil {
		w.evHandler("worker: runArchiveOperation: block[%d]: ERROR: %s", block.Number, err)
		return
	}

	for _, h := range headers {
		w.evHandler("worker: runArchiveOperation: block[%d]: segment[%d] published: hash[%s]", block.Number, h.SegmentIndex(), h.Hash())
	}
}
