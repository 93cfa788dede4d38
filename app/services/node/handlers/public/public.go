// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/edublock/edublock/business/web/errs"
	"github.com/edublock/edublock/foundation/blockchain/ledger"
	"github.com/edublock/edublock/foundation/blockchain/peer"
	"github.com/edublock/edublock/foundation/blockchain/state"
	"github.com/edublock/edublock/foundation/events"
	"github.com/edublock/edublock/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Health reports node liveness, the chain id peers handshake against, and
// the current chain length.
func (h Handlers) Health(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := state.PeerHealth{
		Status:      "healthy",
		ChainID:     h.State.Genesis().ChainID,
		ChainLength: h.State.ChainLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Chain returns the full chain in the form peers consume for consensus.
func (h Handlers) Chain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blocks := h.State.Blocks()

	resp := state.PeerChain{
		Chain:  blocks,
		Length: len(blocks),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// ChainValid audits the local chain and reports the result.
func (h Handlers) ChainValid(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	resp := struct {
		Valid  bool `json:"valid"`
		Length int  `json:"length"`
	}{
		Valid:  h.State.IsChainValid(),
		Length: h.State.ChainLength(),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// LatestBlock returns the chain tip.
func (h Handlers) LatestBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.LatestBlock(), http.StatusOK)
}

// BlockByIndex returns the block at the specified index.
func (h Handlers) BlockByIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.Atoi(web.Param(r, "index"))
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block index: %w", err), http.StatusBadRequest)
	}

	block, ok := h.State.BlockByIndex(index)
	if !ok {
		return errs.NewTrusted(errors.New("block not found"), http.StatusNotFound)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// AcceptPeerBlock takes a block sealed by a peer and appends it to the
// local chain.
func (h Handlers) AcceptPeerBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var block ledger.Block
	if err := web.Decode(r, &block); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := h.State.ProcessPeerBlock(block); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string `json:"status"`
	}{
		Status: "block accepted",
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// SubmitTransaction admits a new transaction to the pending pool.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nt newTx
	if err := web.Decode(r, &nt); err != nil {
		return err
	}

	tx := nt.toLedgerTx()
	h.Log.Infow("add tran", "traceid", v.TraceID, "sender", tx.Sender, "recipient", tx.Recipient, "amount", tx.Amount)

	blockIndex, err := h.State.SubmitTransaction(tx)
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Message     string    `json:"message"`
		Transaction ledger.Tx `json:"transaction"`
		BlockIndex  int       `json:"block_index"`
	}{
		Message:     "transaction added",
		Transaction: tx,
		BlockIndex:  blockIndex,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// PendingTransactions returns the pool of transactions waiting to be mined.
func (h Handlers) PendingTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	pending := h.State.PendingTransactions()

	resp := struct {
		PendingTransactions []ledger.Tx `json:"pending_transactions"`
		Count               int         `json:"count"`
	}{
		PendingTransactions: pending,
		Count:               len(pending),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine seals the pending transactions into a new block and shares it with
// the known peers. The proof of work search can be preempted by an inbound
// peer block or a chain adoption.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {

	// The body is optional; an empty body mines to this node's address.
	var mr mineRequest
	if err := json.NewDecoder(r.Body).Decode(&mr); err != nil && !errors.Is(err, io.EOF) {
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	block, err := h.State.MineNewBlock(ctx, mr.MinerAddress)
	if err != nil {
		switch {
		case errors.Is(err, ledger.ErrNothingToMine):
			resp := struct {
				Message string `json:"message"`
			}{
				Message: "no transactions to mine",
			}
			return web.Respond(ctx, w, resp, http.StatusOK)

		case errors.Is(err, ledger.ErrWrongParent):
			return errs.NewTrusted(err, http.StatusConflict)

		default:
			return err
		}
	}

	h.State.NetSendBlockToPeers(ctx, block)

	resp := struct {
		Message string       `json:"message"`
		Block   ledger.Block `json:"block"`
		Reward  float64      `json:"reward"`
	}{
		Message: "new block mined",
		Block:   block,
		Reward:  h.State.Genesis().MiningReward,
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// Balance returns the mined balance for an address.
func (h Handlers) Balance(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	address := web.Param(r, "address")

	resp := struct {
		Address string  `json:"address"`
		Balance float64 `json:"balance"`
	}{
		Address: address,
		Balance: h.State.Balance(address),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Nodes returns the known peer list.
func (h Handlers) Nodes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	peers := h.State.KnownPeers()

	hosts := make([]string, len(peers))
	for i, pr := range peers {
		hosts[i] = pr.Host
	}

	resp := struct {
		Nodes []string `json:"nodes"`
		Count int      `json:"count"`
	}{
		Nodes: hosts,
		Count: len(hosts),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterNodes adds peers to the known peer list.
func (h Handlers) RegisterNodes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var rn registerNodes
	if err := web.Decode(r, &rn); err != nil {
		return err
	}

	var registered []string
	for _, addr := range rn.Nodes {
		pr, ok := peer.New(addr)
		if !ok {
			continue
		}
		if h.State.AddKnownPeer(pr) {
			registered = append(registered, pr.Host)
		}
	}

	resp := struct {
		Message    string   `json:"message"`
		Registered []string `json:"registered"`
		TotalNodes int      `json:"total_nodes"`
	}{
		Message:    "nodes registered",
		Registered: registered,
		TotalNodes: len(h.State.KnownPeers()),
	}

	return web.Respond(ctx, w, resp, http.StatusCreated)
}

// UnregisterNodes removes peers from the known peer list.
func (h Handlers) UnregisterNodes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var rn registerNodes
	if err := web.Decode(r, &rn); err != nil {
		return err
	}

	var removed []string
	for _, addr := range rn.Nodes {
		pr, ok := peer.New(addr)
		if !ok {
			continue
		}
		if h.State.RemoveKnownPeer(pr) {
			removed = append(removed, pr.Host)
		}
	}

	resp := struct {
		Message    string   `json:"message"`
		Removed    []string `json:"removed"`
		TotalNodes int      `json:"total_nodes"`
	}{
		Message:    "nodes removed",
		Removed:    removed,
		TotalNodes: len(h.State.KnownPeers()),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Resolve runs a longest-chain consensus pass against the known peers.
func (h Handlers) Resolve(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	replaced, err := h.State.ResolveConflicts(ctx)
	if err != nil {
		return err
	}

	var resp struct {
		Message  string `json:"message"`
		Replaced bool   `json:"replaced"`
		Length   int    `json:"length"`
	}

	resp.Replaced = replaced
	resp.Length = h.State.ChainLength()
	switch replaced {
	case true:
		resp.Message = "chain replaced"
	default:
		resp.Message = "local chain is authoritative"
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// NodesHealth probes every known peer and reports which responded.
func (h Handlers) NodesHealth(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	health := h.State.NetCheckPeerHealth(ctx)

	var healthy int
	for _, ok := range health {
		if ok {
			healthy++
		}
	}

	resp := struct {
		NodesHealth  map[string]bool `json:"nodes_health"`
		HealthyCount int             `json:"healthy_count"`
		TotalCount   int             `json:"total_count"`
	}{
		NodesHealth:  health,
		HealthyCount: healthy,
		TotalCount:   len(health),
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Events handles a web socket to provide events to a client.
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

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}
