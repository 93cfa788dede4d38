package state

import (
	"context"

	"github.com/edublock/edublock/foundation/blockchain/ledger"
)

// FindLongestChain queries every known peer for its chain and returns the
// longest one that is strictly longer than the local chain. Length is the
// only comparison made here; the caller validates before adopting.
// Per-peer failures are logged and skipped.
func (s *State) FindLongestChain(ctx context.Context) []ledger.Block {
	s.evHandler("state: FindLongestChain: started")
	defer s.evHandler("state: FindLongestChain: completed")

	maxLength := s.ledger.Len()
	var longest []ledger.Block

	for _, pr := range s.KnownPeers() {
		pc, err := s.NetFetchPeerChain(ctx, pr)
		if err != nil {
			s.evHandler("state: FindLongestChain: WARNING: %s: %s", pr, err)
			continue
		}

		if pc.Length > maxLength && len(pc.Chain) == pc.Length {
			maxLength = pc.Length
			longest = pc.Chain
		}
	}

	return longest
}

// ResolveConflicts runs the longest-chain consensus pass. If a known peer
// holds a strictly longer chain that survives a full validation, the local
// chain is replaced wholesale, any in-flight mining is cancelled, and the
// adopted blocks are written through to storage. It reports whether a
// replacement happened.
func (s *State) ResolveConflicts(ctx context.Context) (bool, error) {
	s.evHandler("state: ResolveConflicts: started")
	defer s.evHandler("state: ResolveConflicts: completed")

	longest := s.FindLongestChain(ctx)
	if longest == nil {
		s.evHandler("state: ResolveConflicts: local chain is authoritative")
		return false, nil
	}

	// A longer chain is only adopted after a full integrity audit. A peer
	// serving a tampered chain is ignored, not an error.
	if !ledger.Validate(longest, s.genesis.Difficulty) {
		s.evHandler("state: ResolveConflicts: WARNING: longest chain failed validation")
		return false, nil
	}

	// A mining G sealing against the displaced tip must terminate before
	// the swap.
	if s.Worker != nil {
		done := s.Worker.SignalCancelMining()
		defer done()
	}

	if err := s.ledger.ReplaceChain(longest); err != nil {
		return false, err
	}

	s.evHandler("state: ResolveConflicts: adopted chain of length[%d]", len(longest))

	// Re-persist the adopted chain so storage matches memory.
	if err := s.storage.Reset(); err != nil {
		s.evHandler("state: ResolveConflicts: WARNING: resetting storage: %s", err)
		return true, nil
	}
	for _, block := range longest {
		if err := s.storage.SaveBlock(block); err != nil {
			s.evHandler("state: ResolveConflicts: WARNING: persisting block[%d]: %s", block.Index, err)
		}
	}

	return true, nil
}
