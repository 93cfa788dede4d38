package state

import (
	"context"
	"fmt"

	"github.com/edublock/edublock/foundation/blockchain/ledger"
)

// MineNewBlock seals the pending transactions into the next block with a
// proof of work search that honors ctx cancellation, appends it, and writes
// it through to storage. The reward goes to miner, or to this node's own
// address when miner is empty. The search registers itself so CancelMining
// can preempt it when a peer block or a longer chain arrives.
func (s *State) MineNewBlock(ctx context.Context, miner string) (ledger.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: started")
	defer s.evHandler("state: MineNewBlock: MINING: completed")

	if miner == "" {
		miner = s.minerAddress
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	s.miningMu.Lock()
	s.miningCancel = cancel
	s.miningMu.Unlock()

	defer func() {
		s.miningMu.Lock()
		s.miningCancel = nil
		s.miningMu.Unlock()
	}()

	block, err := s.ledger.MinePendingTransactions(ctx, miner)
	if err != nil {
		return ledger.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: sealed block[%d] hash[%s] nonce[%d]", block.Index, block.Hash, block.Nonce)

	if err := s.storage.SaveBlock(block); err != nil {
		s.evHandler("state: MineNewBlock: WARNING: persisting block: %s", err)
	}

	return block, nil
}

// CancelMining preempts any in-flight proof of work search. A search that
// was already past the tip check keeps its block; a search still looping
// discards its work. Safe to call when no mining is running.
func (s *State) CancelMining() {
	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	if s.miningCancel != nil {
		s.miningCancel()
	}
}

// ProcessPeerBlock takes a block sealed by a peer, stops any in-flight
// local mining, validates the block against the local tip, appends it, and
// writes it through to storage.
func (s *State) ProcessPeerBlock(block ledger.Block) error {
	s.evHandler("state: ProcessPeerBlock: started: block[%d]", block.Index)
	defer s.evHandler("state: ProcessPeerBlock: completed")

	// A mining G holding a stale tip must terminate before the append so it
	// cannot seal against the displaced parent. The done call releases it.
	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		defer done()
	}

	if err := s.ledger.AppendPeerBlock(block); err != nil {
		return fmt.Errorf("appending peer block: %w", err)
	}

	if err := s.storage.SaveBlock(block); err != nil {
		s.evHandler("state: ProcessPeerBlock: WARNING: persisting block: %s", err)
	}

	return nil
}
