// Package private maintains the group of handlers for operator access.
package private

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/vedhavyas/subspace/business/web/errs"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
	"github.com/vedhavyas/subspace/foundation/blockchain/state"
	"github.com/vedhavyas/subspace/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of operator endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the archiving progress of the node.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	st := h.State.QueryStatus()

	resp := struct {
		RecordsPerSegment int                         `json:"recordsPerSegment"`
		PiecesPerSegment  int                         `json:"piecesPerSegment"`
		Segments          int                         `json:"segments"`
		LastArchivedBlock *segments.LastArchivedBlock `json:"lastArchivedBlock,omitempty"`
		BufferedBytes     int                         `json:"bufferedBytes"`
		PendingSegments   int                         `json:"pendingSegments"`
	}{
		RecordsPerSegment: st.Geometry.RecordsPerSegment,
		PiecesPerSegment:  st.Geometry.PiecesPerSegment(),
		Segments:          st.Segments,
		LastArchivedBlock: st.LastArchivedBlock,
		BufferedBytes:     st.BufferedBytes,
		PendingSegments:   st.PendingSegments,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RecordedSegment rebuilds the recorded data of a segment from its stored
// pieces and returns it as raw bytes.
func (h Handlers) RecordedSegment(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	idx, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid index: %w", err), http.StatusBadRequest)
	}

	recorded, err := h.State.QueryRecordedSegment(ctx, segments.SegmentIndex(idx))
	if err != nil {
		return errs.FromNode(err)
	}

	return web.RespondBytes(ctx, w, recorded, "application/octet-stream", http.StatusOK)
}

// Blocks lists the blocks recovered from the published history.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks, err := h.State.QueryBlocks(ctx)
	if err != nil {
		return errs.FromNode(err)
	}

	type block struct {
		Number uint32                `json:"number"`
		Size   int                   `json:"size"`
		Hash   crypto.Blake2b256Hash `json:"hash"`
	}

	out := make([]block, len(blocks))
	for i, b := range blocks {
		out[i] = block{
			Number: b.Number,
			Size:   len(b.Data),
			Hash:   crypto.Blake2b256(b.Data),
		}
	}

	return web.Respond(ctx, w, out, http.StatusOK)
}
