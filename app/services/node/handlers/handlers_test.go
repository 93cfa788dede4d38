package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/edublock/edublock/app/services/node/handlers"
	"github.com/edublock/edublock/foundation/blockchain/genesis"
	"github.com/edublock/edublock/foundation/blockchain/ledger"
	"github.com/edublock/edublock/foundation/blockchain/peer"
	"github.com/edublock/edublock/foundation/blockchain/state"
	"github.com/edublock/edublock/foundation/blockchain/storage/memory"
	"github.com/edublock/edublock/foundation/blockchain/wallet"
	"github.com/edublock/edublock/foundation/events"
	"go.uber.org/zap"
)

// newTestServer stands up the public API over a fresh node state.
func newTestServer(t *testing.T) (*httptest.Server, *state.State) {
	t.Helper()

	gen := genesis.Default()
	gen.Difficulty = 1

	st, err := state.New(state.Config{
		MinerAddress: "miner",
		Genesis:      gen,
		KnownPeers:   peer.NewSet(),
		Storage:      memory.New(),
	})
	if err != nil {
		t.Fatalf("Should be able to construct the state: %s", err)
	}

	mux := handlers.PublicMux(handlers.MuxConfig{
		Shutdown: make(chan os.Signal, 1),
		Log:      zap.NewNop().Sugar(),
		State:    st,
		Evts:     events.New(),
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	return srv, st
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()

	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("Should be able to marshal the request body: %s", err)
	}

	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Should be able to make the request: %s", err)
	}

	return resp
}

func Test_Health(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("Should be able to probe health: %s", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Should get a 200: got %d", resp.StatusCode)
	}

	var health state.PeerHealth
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatalf("Should be able to decode the response: %s", err)
	}

	if health.Status != "healthy" {
		t.Logf("got: %s", health.Status)
		t.Logf("exp: healthy")
		t.Fatal("Should report healthy.")
	}
	if health.ChainID != genesis.Default().ChainID {
		t.Logf("got: %d", health.ChainID)
		t.Logf("exp: %d", genesis.Default().ChainID)
		t.Fatal("Should report the chain id for the peer handshake.")
	}
	if health.ChainLength != 1 {
		t.Fatal("Should report the genesis-only chain length.")
	}
}

func Test_TransactionLifecycle(t *testing.T) {
	srv, st := newTestServer(t)

	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	// Fund the wallet with a mined SYSTEM transaction.
	fund := ledger.NewTx(ledger.SystemAccount, w.Address(), 100)
	resp := postJSON(t, srv.URL+"/transactions/new", fund)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Should accept a SYSTEM transaction: got %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/mine", map[string]string{"miner_address": "miner"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Should mine a block: got %d", resp.StatusCode)
	}

	var mined struct {
		Block  ledger.Block `json:"block"`
		Reward float64      `json:"reward"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&mined); err != nil {
		t.Fatalf("Should be able to decode the mined block: %s", err)
	}
	if mined.Block.Index != 1 {
		t.Logf("got: %d", mined.Block.Index)
		t.Logf("exp: 1")
		t.Fatal("Should mine block 1.")
	}

	// A signed spend from the funded wallet.
	spend := ledger.NewTx(w.Address(), "recipient", 30)
	if err := spend.Sign(w); err != nil {
		t.Fatalf("Should be able to sign the transaction: %s", err)
	}
	resp = postJSON(t, srv.URL+"/transactions/new", spend)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Should accept a signed transaction: got %d", resp.StatusCode)
	}

	resp = postJSON(t, srv.URL+"/mine", map[string]string{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Should mine the spend: got %d", resp.StatusCode)
	}

	// Balance reflects mined transactions only.
	resp, err = http.Get(srv.URL + "/balance/" + w.Address())
	if err != nil {
		t.Fatalf("Should be able to query the balance: %s", err)
	}
	defer resp.Body.Close()

	var balance struct {
		Address string  `json:"address"`
		Balance float64 `json:"balance"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&balance); err != nil {
		t.Fatalf("Should be able to decode the balance: %s", err)
	}
	if balance.Balance != 70 {
		t.Logf("got: %v", balance.Balance)
		t.Logf("exp: 70")
		t.Fatal("Should fold the mined spend into the balance.")
	}

	if !st.IsChainValid() {
		t.Fatal("Should hold a valid chain.")
	}
}

func Test_RejectBadTransactions(t *testing.T) {
	srv, _ := newTestServer(t)

	// Non-positive amount fails request validation.
	bad := map[string]any{"sender": "a", "recipient": "b", "amount": -5}
	resp := postJSON(t, srv.URL+"/transactions/new", bad)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Should reject a non-positive amount: got %d", resp.StatusCode)
	}

	// A non-SYSTEM sender without a signature fails admission.
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}
	unsigned := ledger.NewTx(w.Address(), "recipient", 10)
	resp = postJSON(t, srv.URL+"/transactions/new", unsigned)
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("Should reject an unsigned transaction: got %d", resp.StatusCode)
	}
}

func Test_Blocks(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/blocks/0")
	if err != nil {
		t.Fatalf("Should be able to fetch the genesis block: %s", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Should find block 0: got %d", resp.StatusCode)
	}

	var block ledger.Block
	if err := json.NewDecoder(resp.Body).Decode(&block); err != nil {
		t.Fatalf("Should be able to decode the block: %s", err)
	}
	if block.PreviousHash != ledger.GenesisPrevHash {
		t.Fatal("Should serve the genesis block.")
	}

	resp, err = http.Get(srv.URL + "/blocks/99")
	if err != nil {
		t.Fatalf("Should be able to make the request: %s", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("Should 404 a missing block: got %d", resp.StatusCode)
	}
}

func Test_NodeRegistration(t *testing.T) {
	srv, st := newTestServer(t)

	body := map[string]any{"nodes": []string{"http://localhost:5001", "localhost:5002"}}
	resp := postJSON(t, srv.URL+"/nodes/register", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Should register nodes: got %d", resp.StatusCode)
	}

	if len(st.KnownPeers()) != 2 {
		t.Logf("got: %d", len(st.KnownPeers()))
		t.Logf("exp: 2")
		t.Fatal("Should know both registered peers.")
	}

	body = map[string]any{"nodes": []string{"localhost:5001"}}
	resp = postJSON(t, srv.URL+"/nodes/unregister", body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Should unregister a node: got %d", resp.StatusCode)
	}

	if len(st.KnownPeers()) != 1 {
		t.Fatal("Should have removed the peer.")
	}
}
