package state

import (
	"errors"

	"github.com/edublock/edublock/foundation/blockchain/ledger"
)

// ErrDuplicateTx is returned when a submitted transaction is already
// sitting in the pending pool.
var ErrDuplicateTx = errors.New("transaction already pending")

// SubmitTransaction accepts a transaction from a wallet or a peer, admits
// it to the pending pool, and signals the worker to share it with the known
// peers. Duplicates are dropped without resharing so a broadcast between
// two nodes cannot echo forever.
func (s *State) SubmitTransaction(tx ledger.Tx) (int, error) {
	s.evHandler("state: SubmitTransaction: started: tx[%s]", tx)
	defer s.evHandler("state: SubmitTransaction: completed")

	hash := tx.Hash()
	for _, pending := range s.ledger.PendingTransactions() {
		if pending.Hash() == hash {
			return 0, ErrDuplicateTx
		}
	}

	blockIndex, err := s.ledger.AddTransaction(tx)
	if err != nil {
		return 0, err
	}

	s.evHandler("state: SubmitTransaction: admitted for block[%d]", blockIndex)

	if s.Worker != nil {
		s.Worker.SignalShareTx(tx)
	}

	return blockIndex, nil
}
