// Package state is the core API for the node and implements all the
// business rules and processing.
package state

import (
	"fmt"
	"sync"

	"github.com/edublock/edublock/foundation/blockchain/genesis"
	"github.com/edublock/edublock/foundation/blockchain/ledger"
	"github.com/edublock/edublock/foundation/blockchain/peer"
	"github.com/edublock/edublock/foundation/blockchain/storage"
)

// EventHandler defines a function that is called when events
// occur in the processing of mining and consensus.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, chain resolution, and transaction
// sharing.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining() (done func())
	SignalShareTx(tx ledger.Tx)
	SignalResolve()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	MinerAddress string
	Host         string
	Genesis      genesis.Genesis
	KnownPeers   *peer.Set
	Storage      storage.Store
	EvHandler    EventHandler
}

// State manages the blockchain node.
type State struct {
	minerAddress string
	host         string
	evHandler    EventHandler

	genesis    genesis.Genesis
	knownPeers *peer.Set
	ledger     *ledger.Ledger
	storage    storage.Store

	miningMu     sync.Mutex
	miningCancel func()

	Worker Worker
}

// New constructs a new blockchain node state for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// Reload any blocks previously written to storage. A chain that fails
	// validation on reload is corrupt and refuses to start.
	blocks, err := loadBlocks(cfg.Storage)
	if err != nil {
		return nil, err
	}

	var lgr *ledger.Ledger
	switch {
	case len(blocks) > 0:
		ev("state: New: reloaded blocks[%d] from storage", len(blocks))
		lgr, err = ledger.FromChain(blocks, cfg.Genesis.Difficulty, cfg.Genesis.MiningReward)
		if err != nil {
			return nil, fmt.Errorf("reloading chain: %w", err)
		}

	default:
		lgr, err = ledger.New(cfg.Genesis.Date, cfg.Genesis.Difficulty, cfg.Genesis.MiningReward)
		if err != nil {
			return nil, err
		}
		if err := cfg.Storage.SaveBlock(lgr.LatestBlock()); err != nil {
			return nil, fmt.Errorf("persisting genesis block: %w", err)
		}
	}

	state := State{
		minerAddress: cfg.MinerAddress,
		host:         cfg.Host,
		evHandler:    ev,

		genesis:    cfg.Genesis,
		knownPeers: cfg.KnownPeers,
		ledger:     lgr,
		storage:    cfg.Storage,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {

	// Make sure the database is properly closed.
	defer func() {
		s.storage.Close()
	}()

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	return nil
}

// loadBlocks reads the full chain back out of storage in index order.
func loadBlocks(store storage.Store) ([]ledger.Block, error) {
	count, err := store.Count()
	if err != nil {
		return nil, fmt.Errorf("counting stored blocks: %w", err)
	}

	blocks := make([]ledger.Block, 0, count)
	for i := 0; i < count; i++ {
		block, err := store.GetBlock(i)
		if err != nil {
			return nil, fmt.Errorf("reading stored block %d: %w", i, err)
		}
		blocks = append(blocks, block)
	}

	return blocks, nil
}

// =============================================================================

// Genesis returns a copy of the genesis information.
func (s *State) Genesis() genesis.Genesis {
	return s.genesis
}

// MinerAddress returns the address this node mines rewards to.
func (s *State) MinerAddress() string {
	return s.minerAddress
}

// Host returns this node's own host so it can be excluded from peer copies.
func (s *State) Host() string {
	return s.host
}

// LatestBlock returns the current chain tip.
func (s *State) LatestBlock() ledger.Block {
	return s.ledger.LatestBlock()
}

// BlockByIndex returns the block at the specified index.
func (s *State) BlockByIndex(index int) (ledger.Block, bool) {
	return s.ledger.BlockByIndex(index)
}

// Blocks returns a copy of the chain.
func (s *State) Blocks() []ledger.Block {
	return s.ledger.Blocks()
}

// ChainLength returns the number of blocks in the chain.
func (s *State) ChainLength() int {
	return s.ledger.Len()
}

// PendingTransactions returns a copy of the pending pool.
func (s *State) PendingTransactions() []ledger.Tx {
	return s.ledger.PendingTransactions()
}

// Balance returns the mined balance for the specified address.
func (s *State) Balance(address string) float64 {
	return s.ledger.Balance(address)
}

// IsChainValid audits the local chain.
func (s *State) IsChainValid() bool {
	return s.ledger.IsChainValid()
}

// KnownPeers returns a copy of the known peer list without this node.
func (s *State) KnownPeers() []peer.Peer {
	return s.knownPeers.Copy(s.host)
}

// AddKnownPeer adds a peer to the known peer list.
func (s *State) AddKnownPeer(p peer.Peer) bool {
	return s.knownPeers.Add(p)
}

// RemoveKnownPeer removes a peer from the known peer list.
func (s *State) RemoveKnownPeer(p peer.Peer) bool {
	return s.knownPeers.Remove(p)
}
