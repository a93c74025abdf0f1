// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vedhavyas/subspace/business/web/errs"
	"github.com/vedhavyas/subspace/foundation/blockchain/archiver"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/sector"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
	"github.com/vedhavyas/subspace/foundation/blockchain/state"
	"github.com/vedhavyas/subspace/foundation/events"
	"github.com/vedhavyas/subspace/foundation/nameservice"
	"github.com/vedhavyas/subspace/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of archival node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client. The component
// query parameter, repeatable, limits the stream to those components.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID, r.URL.Query()["component"]...)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case ev, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteJSON(ev); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// SubmitBlock queues a block of the chain for archiving.
func (h Handlers) SubmitBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var blk submitBlock
	if err := web.Decode(r, &blk); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("submit block", "traceid", v.TraceID, "number", blk.Number, "size", len(blk.Data))

	if err := h.State.SubmitBlock(archiver.Block{Number: blk.Number, Data: blk.Data}); err != nil {
		return errs.FromNode(err)
	}

	resp := submitted{
		Status: "block queued for archiving",
		Number: blk.Number,
	}

	return web.Respond(ctx, w, resp, http.StatusAccepted)
}

// Piece returns the verified piece at the index as raw bytes.
func (h Handlers) Piece(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	idx, err := parseUint(r, "index")
	if err != nil {
		return err
	}

	piece, err := h.State.QueryPiece(ctx, pieces.PieceIndex(idx))
	if err != nil {
		return errs.FromNode(err)
	}

	return web.RespondBytes(ctx, w, piece, "application/octet-stream", http.StatusOK)
}

// SegmentHeader returns the header of the segment.
func (h Handlers) SegmentHeader(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	idx, err := parseUint(r, "index")
	if err != nil {
		return err
	}

	header, err := h.State.QuerySegmentHeader(ctx, segments.SegmentIndex(idx))
	if err != nil {
		return errs.FromNode(err)
	}

	return web.Respond(ctx, w, header, http.StatusOK)
}

// LatestHeader returns the header of the last published segment.
func (h Handlers) LatestHeader(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	header, err := h.State.QueryLatestHeader(ctx)
	if err != nil {
		return errs.FromNode(err)
	}

	return web.Respond(ctx, w, header, http.StatusOK)
}

// SectorPieceIndex derives the history piece stored at an offset of a
// farmer's sector. The total query parameter is the number of pieces in
// history the farmer plotted against.
func (h Handlers) SectorPieceIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pk, sectorIndex, err := parseSector(r)
	if err != nil {
		return err
	}

	offset, err := parseUint(r, "offset")
	if err != nil {
		return err
	}

	total, err := strconv.ParseUint(r.URL.Query().Get("total"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid total pieces: %w", err), http.StatusBadRequest)
	}

	totalPieces, err := pieces.NewNonZeroU64(total)
	if err != nil {
		return errs.FromNode(err)
	}

	pieceIndex := h.State.QuerySectorPieceIndex(pk, sectorIndex, pieces.PieceIndex(offset), totalPieces)

	resp := sectorPiece{
		Farmer:         h.farmer(pk),
		SectorID:       sector.NewLegacySectorID(pk, sectorIndex),
		PieceOffset:    pieces.PieceIndex(offset),
		TotalPieces:    totalPieces,
		PieceIndex:     pieceIndex,
		PieceIndexHash: pieceIndex.Hash().String(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// LocalChallenge derives the local challenge of a sector for a global
// challenge given as 0x prefixed hex.
func (h Handlers) LocalChallenge(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pk, sectorIndex, err := parseSector(r)
	if err != nil {
		return err
	}

	var global crypto.Blake2b256Hash
	if err := global.UnmarshalText([]byte(web.Param(r, "global"))); err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid global challenge: %w", err), http.StatusBadRequest)
	}

	resp := localChallenge{
		Farmer:          h.farmer(pk),
		SectorID:        sector.NewLegacySectorID(pk, sectorIndex),
		GlobalChallenge: global,
		LocalChallenge:  h.State.QueryLocalChallenge(pk, sectorIndex, global),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// =============================================================================

func (h Handlers) farmer(pk crypto.PublicKey) string {
	if h.NS == nil {
		return pk.String()
	}
	return h.NS.Lookup(pk)
}

func parseUint(r *http.Request, key string) (uint64, error) {
	n, err := strconv.ParseUint(web.Param(r, key), 10, 64)
	if err != nil {
		return 0, errs.NewTrusted(fmt.Errorf("invalid %s: %w", key, err), http.StatusBadRequest)
	}
	return n, nil
}

func parseSector(r *http.Request) (crypto.PublicKey, sector.SectorIndex, error) {
	pk, err := crypto.ParsePublicKey(web.Param(r, "publickey"))
	if err != nil {
		return crypto.PublicKey{}, 0, errs.NewTrusted(fmt.Errorf("invalid public key: %w", err), http.StatusBadRequest)
	}

	idx, err := parseUint(r, "sector")
	if err != nil {
		return crypto.PublicKey{}, 0, err
	}

	return pk, sector.SectorIndex(idx), nil
}
