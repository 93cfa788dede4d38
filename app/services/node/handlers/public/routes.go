package public

import (
	"net/http"

	"github.com/edublock/edublock/foundation/blockchain/state"
	"github.com/edublock/edublock/foundation/events"
	"github.com/edublock/edublock/foundation/web"
	"go.uber.org/zap"
)

// Config contains all the mandatory systems required by handlers.
type Config struct {
	Log   *zap.SugaredLogger
	State *state.State
	Evts  *events.Events
}

// Routes binds all the public routes. The paths are fixed by the network
// protocol: peers resolve conflicts by fetching each other's /chain and
// broadcast to /transactions/new and /blocks/new.
func Routes(app *web.App, cfg Config) {
	pbl := Handlers{
		Log:   cfg.Log,
		State: cfg.State,
		Evts:  cfg.Evts,
	}

	app.Handle(http.MethodGet, "", "/health", pbl.Health)
	app.Handle(http.MethodGet, "", "/chain", pbl.Chain)
	app.Handle(http.MethodGet, "", "/chain/valid", pbl.ChainValid)
	app.Handle(http.MethodGet, "", "/blocks/latest", pbl.LatestBlock)
	app.Handle(http.MethodGet, "", "/blocks/:index", pbl.BlockByIndex)
	app.Handle(http.MethodPost, "", "/blocks/new", pbl.AcceptPeerBlock)
	app.Handle(http.MethodPost, "", "/transactions/new", pbl.SubmitTransaction)
	app.Handle(http.MethodGet, "", "/transactions/pending", pbl.PendingTransactions)
	app.Handle(http.MethodPost, "", "/mine", pbl.Mine)
	app.Handle(http.MethodGet, "", "/balance/:address", pbl.Balance)
	app.Handle(http.MethodGet, "", "/nodes", pbl.Nodes)
	app.Handle(http.MethodPost, "", "/nodes/register", pbl.RegisterNodes)
	app.Handle(http.MethodPost, "", "/nodes/unregister", pbl.UnregisterNodes)
	app.Handle(http.MethodGet, "", "/nodes/resolve", pbl.Resolve)
	app.Handle(http.MethodGet, "", "/nodes/health", pbl.NodesHealth)
	app.Handle(http.MethodGet, "", "/events", pbl.Events)
}
