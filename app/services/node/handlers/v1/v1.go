// Package v1 contains the full set of handler functions and routes
// supported by the v1 web api.
package v1

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/vedhavyas/subspace/app/services/node/handlers/v1/private"
	"github.com/vedhavyas/subspace/app/services/node/handlers/v1/public"
	"github.com/vedhavyas/subspace/foundation/blockchain/state"
	"github.com/vedhavyas/subspace/foundation/events"
	"github.com/vedhavyas/subspace/foundation/nameservice"
	"github.com/vedhavyas/subspace/foundation/web"
	"go.uber.org/zap"
)

const version = "v1"

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	NS    *nameservice.NameService
	Evts  *events.Events
}

// PublicRoutes binds all the version 1 public routes.
func PublicRoutes(app *web.App, cfg Config) {
	pbl := public.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		NS:    cfg.NS,
		WS:    websocket.Upgrader{},
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, version, "/events", pbl.Events)
	app.Handle(http.MethodPost, version, "/blocks", pbl.SubmitBlock)
	app.Handle(http.MethodGet, version, "/pieces/:index", pbl.Piece)
	app.Handle(http.MethodGet, version, "/segments/latest", pbl.LatestHeader)
	app.Handle(http.MethodGet, version, "/segments/:index/header", pbl.SegmentHeader)
	app.Handle(http.MethodGet, version, "/sectors/:publickey/:sector/pieces/:offset", pbl.SectorPieceIndex)
	app.Handle(http.MethodGet, version, "/sectors/:publickey/:sector/challenge/:global", pbl.LocalChallenge)
}

// PrivateRoutes binds all the version 1 private routes.
func PrivateRoutes(app *web.App, cfg Config) {
	prv := private.Handlers{
		Log:   cfg.Log,
		State: cfg.State,
	}

	app.Handle(http.MethodGet, version, "/node/status", prv.Status)
	app.Handle(http.MethodGet, version, "/node/segments/:index/recorded", prv.RecordedSegment)
	app.Handle(http.MethodGet, version, "/node/blocks", prv.Blocks)
}
