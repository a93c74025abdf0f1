package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/vedhavyas/subspace/app/services/node/handlers"
	"github.com/vedhavyas/subspace/foundation/blockchain/archiver"
	"github.com/vedhavyas/subspace/foundation/blockchain/crypto"
	"github.com/vedhavyas/subspace/foundation/blockchain/dsn/memory"
	"github.com/vedhavyas/subspace/foundation/blockchain/pieces"
	"github.com/vedhavyas/subspace/foundation/blockchain/sector"
	"github.com/vedhavyas/subspace/foundation/blockchain/segments"
	"github.com/vedhavyas/subspace/foundation/blockchain/state"
	"github.com/vedhavyas/subspace/foundation/blockchain/worker"
	"github.com/vedhavyas/subspace/foundation/events"
	"go.uber.org/zap"
	"lukechampine.com/frand"
)

// Success and failure markers.
const (
	success = "✓"
	failed  = "✗"
)

const pkHex = "d43593c715fdd31c61141abd04a99fd6822c8558854ccde39a5684e7a56da27d"

func newNode(t *testing.T) (*state.State, *worker.Worker, http.Handler, http.Handler) {
	t.Helper()

	st, err := state.New(state.Config{
		Geometry: archiver.Geometry{RecordsPerSegment: 2},
		Store:    memory.New(),
	})
	if err != nil {
		t.Fatalf("\t%s\tShould construct the state: %v", failed, err)
	}

	w := worker.Run(st, 8, nil)

	cfg := handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		Evts:     events.New(),
	}

	return st, w, handlers.PublicMux(cfg), handlers.PrivateMux(cfg)
}

func do(h http.Handler, method string, path string, body []byte) *httptest.ResponseRecorder {
	r := httptest.NewRequest(method, path, bytes.NewReader(body))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, r)
	return w
}

// =============================================================================

func Test_ArchiveRoutes(t *testing.T) {
	t.Log("Given the need to submit blocks and fetch archived history over http.")
	{
		_, w, public, private := newNode(t)

		resp := do(public, http.MethodGet, "/v1/segments/latest", nil)
		if resp.Code != http.StatusNotFound {
			t.Fatalf("\t%s\tShould report no segment yet: %d", failed, resp.Code)
		}
		t.Logf("\t%s\tShould report no segment yet.", success)

		body, _ := json.Marshal(map[string]any{"number": 0, "data": frand.Bytes(2_100_000)})
		resp = do(public, http.MethodPost, "/v1/blocks", body)
		if resp.Code != http.StatusAccepted {
			t.Fatalf("\t%s\tShould accept the block: %d %s", failed, resp.Code, resp.Body)
		}
		t.Logf("\t%s\tShould accept the block.", success)

		resp = do(public, http.MethodPost, "/v1/blocks", []byte(`{"number":1}`))
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject a block without data: %d", failed, resp.Code)
		}
		t.Logf("\t%s\tShould reject a block without data.", success)

		// Shutting the worker down waits for the queued block.
		w.Shutdown()

		resp = do(public, http.MethodGet, "/v1/segments/0/header", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould serve the segment header: %d %s", failed, resp.Code, resp.Body)
		}
		var h segments.SegmentHeader
		if err := json.Unmarshal(resp.Body.Bytes(), &h); err != nil || h.SegmentIndex() != 0 {
			t.Fatalf("\t%s\tShould decode the segment header: %v", failed, err)
		}
		t.Logf("\t%s\tShould serve the segment header.", success)

		resp = do(public, http.MethodGet, "/v1/pieces/3", nil)
		if resp.Code != http.StatusOK || resp.Body.Len() != pieces.PieceSize {
			t.Fatalf("\t%s\tShould serve the piece: %d", failed, resp.Code)
		}
		t.Logf("\t%s\tShould serve the piece.", success)

		resp = do(public, http.MethodGet, "/v1/pieces/abc", nil)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject an invalid piece index: %d", failed, resp.Code)
		}
		t.Logf("\t%s\tShould reject an invalid piece index.", success)

		resp = do(private, http.MethodGet, "/v1/node/status", nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould serve the node status: %d", failed, resp.Code)
		}
		t.Logf("\t%s\tShould serve the node status.", success)

		resp = do(public, http.MethodPost, "/v1/blocks", body)
		if resp.Code != http.StatusServiceUnavailable {
			t.Fatalf("\t%s\tShould refuse blocks once shut down: %d", failed, resp.Code)
		}
		t.Logf("\t%s\tShould refuse blocks once shut down.", success)
	}
}

func Test_SectorRoutes(t *testing.T) {
	t.Log("Given the need to answer sector derivations over http.")
	{
		_, w, public, _ := newNode(t)
		defer w.Shutdown()

		pk, err := crypto.ParsePublicKey(pkHex)
		if err != nil {
			t.Fatalf("\t%s\tShould parse the key: %v", failed, err)
		}
		id := sector.NewLegacySectorID(pk, 2)

		resp := do(public, http.MethodGet, fmt.Sprintf("/v1/sectors/%s/2/pieces/5?total=100", pkHex), nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould derive the piece index: %d %s", failed, resp.Code, resp.Body)
		}

		var got struct {
			PieceIndex pieces.PieceIndex `json:"pieceIndex"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
			t.Fatalf("\t%s\tShould decode the response: %v", failed, err)
		}
		if got.PieceIndex != id.DerivePieceIndex(5, pieces.MustNonZeroU64(100)) {
			t.Fatalf("\t%s\tShould derive the same piece index: %d", failed, got.PieceIndex)
		}
		t.Logf("\t%s\tShould derive the piece index.", success)

		resp = do(public, http.MethodGet, fmt.Sprintf("/v1/sectors/%s/2/pieces/5?total=0", pkHex), nil)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("\t%s\tShould reject zero total pieces: %d", failed, resp.Code)
		}
		t.Logf("\t%s\tShould reject zero total pieces.", success)

		global := crypto.Blake2b256([]byte("slot"))
		text, _ := global.MarshalText()
		resp = do(public, http.MethodGet, fmt.Sprintf("/v1/sectors/%s/2/challenge/%s", pkHex, text), nil)
		if resp.Code != http.StatusOK {
			t.Fatalf("\t%s\tShould derive the local challenge: %d %s", failed, resp.Code, resp.Body)
		}

		var lc struct {
			LocalChallenge uint64 `json:"localChallenge"`
		}
		if err := json.Unmarshal(resp.Body.Bytes(), &lc); err != nil || lc.LocalChallenge != id.DeriveLocalChallenge(global) {
			t.Fatalf("\t%s\tShould derive the same local challenge: %v", failed, err)
		}
		t.Logf("\t%s\tShould derive the local challenge.", success)
	}
}
