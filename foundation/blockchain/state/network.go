package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/edublock/edublock/foundation/blockchain/ledger"
	"github.com/edublock/edublock/foundation/blockchain/peer"
)

// peerTimeout bounds every request made to a single peer so one dead node
// cannot stall a broadcast or a consensus pass.
const peerTimeout = 5 * time.Second

// PeerChain is the document a node serves for its full chain.
type PeerChain struct {
	Chain  []ledger.Block `json:"chain"`
	Length int            `json:"length"`
}

// PeerHealth is the document a node serves for its health probe. The chain
// id acts as the handshake: peers answering for a different chain are as
// dead as peers not answering at all.
type PeerHealth struct {
	Status      string `json:"status"`
	ChainID     uint16 `json:"chain_id"`
	ChainLength int    `json:"chain_length"`
}

// NetFetchPeerChain asks the specified peer for its full chain.
func (s *State) NetFetchPeerChain(ctx context.Context, pr peer.Peer) (PeerChain, error) {
	s.evHandler("state: NetFetchPeerChain: started: %s", pr)
	defer s.evHandler("state: NetFetchPeerChain: completed: %s", pr)

	url := fmt.Sprintf("http://%s/chain", pr.Host)

	var pc PeerChain
	if err := send(ctx, http.MethodGet, url, nil, &pc); err != nil {
		return PeerChain{}, err
	}

	s.evHandler("state: NetFetchPeerChain: peer[%s]: length[%d]", pr, pc.Length)

	return pc, nil
}

// NetSendTxToPeers shares a new transaction with the known peers. Failures
// are logged per peer, never fatal.
func (s *State) NetSendTxToPeers(ctx context.Context, tx ledger.Tx) {
	s.evHandler("state: NetSendTxToPeers: started")
	defer s.evHandler("state: NetSendTxToPeers: completed")

	for _, pr := range s.KnownPeers() {
		url := fmt.Sprintf("http://%s/transactions/new", pr.Host)
		if err := send(ctx, http.MethodPost, url, tx, nil); err != nil {
			s.evHandler("state: NetSendTxToPeers: WARNING: %s: %s", pr, err)
			continue
		}
		s.evHandler("state: NetSendTxToPeers: sent to peer[%s]", pr)
	}
}

// NetSendBlockToPeers takes a newly mined block and sends it to all known
// peers. Failures are logged per peer, never fatal.
func (s *State) NetSendBlockToPeers(ctx context.Context, block ledger.Block) {
	s.evHandler("state: NetSendBlockToPeers: started")
	defer s.evHandler("state: NetSendBlockToPeers: completed")

	for _, pr := range s.KnownPeers() {
		url := fmt.Sprintf("http://%s/blocks/new", pr.Host)
		if err := send(ctx, http.MethodPost, url, block, nil); err != nil {
			s.evHandler("state: NetSendBlockToPeers: WARNING: %s: %s", pr, err)
			continue
		}
		s.evHandler("state: NetSendBlockToPeers: sent to peer[%s]", pr)
	}
}

// NetCheckPeerHealth probes every known peer and reports which responded.
func (s *State) NetCheckPeerHealth(ctx context.Context) map[string]bool {
	s.evHandler("state: NetCheckPeerHealth: started")
	defer s.evHandler("state: NetCheckPeerHealth: completed")

	health := make(map[string]bool)
	for _, pr := range s.KnownPeers() {
		url := fmt.Sprintf("http://%s/health", pr.Host)

		var ph PeerHealth
		err := send(ctx, http.MethodGet, url, nil, &ph)
		health[pr.Host] = err == nil && ph.Status == "healthy" && ph.ChainID == s.genesis.ChainID
	}

	return health
}

// =============================================================================

// send is a helper function to make an HTTP request to a peer node.
func send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	ctx, cancel := context.WithTimeout(ctx, peerTimeout)
	defer cancel()

	var req *http.Request

	switch {
	case dataSend != nil:
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		req, err = http.NewRequestWithContext(ctx, method, url, bytes.NewReader(data))
		if err != nil {
			return err
		}
		req.Header.Set("Content-Type", "application/json")

	default:
		var err error
		req, err = http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return err
		}
	}

	var client http.Client
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode > http.StatusIMUsed {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		return errors.New(string(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return err
		}
	}

	return nil
}
