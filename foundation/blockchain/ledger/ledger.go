// Package ledger implements the append-only hash-linked chain, the pending
// transaction pool, the balance projection, and chain validation.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// The admission and mining error kinds. Structural and authentication
// failures surface synchronously at the admission call; an invalid chain is
// an observable state queried through IsChainValid, not an error.
var (
	ErrStructuralInvalid = errors.New("transaction failed structural validation")
	ErrAuthInvalid       = errors.New("transaction failed signature verification")
	ErrNothingToMine     = errors.New("no pending transactions to mine")
	ErrWrongParent       = errors.New("chain tip moved while mining")
)

// Ledger manages the chain of blocks and the pool of pending transactions.
// One mutex serializes admission to the pool and appending mined blocks;
// the proof of work search itself runs outside the lock so mining never
// blocks admission.
type Ledger struct {
	mu           sync.Mutex
	difficulty   int
	miningReward float64
	chain        []Block
	pending      []Tx
}

// New constructs a ledger and seals its genesis block at the configured
// difficulty. The genesis block is stamped with genesisDate so every node
// sharing a genesis file seals the identical block.
func New(genesisDate time.Time, difficulty int, miningReward float64) (*Ledger, error) {
	if difficulty < 0 {
		return nil, fmt.Errorf("difficulty must be >= 0, got %d", difficulty)
	}

	genesis := NewBlock(0, nil, GenesisPrevHash)
	genesis.Timestamp = genesisDate.UTC().Format(time.RFC3339Nano)
	genesis.Hash = genesis.CalculateHash()
	if err := genesis.Mine(context.Background(), difficulty); err != nil {
		return nil, fmt.Errorf("mining genesis block: %w", err)
	}

	l := Ledger{
		difficulty:   difficulty,
		miningReward: miningReward,
		chain:        []Block{genesis},
	}

	return &l, nil
}

// FromChain constructs a ledger around an existing chain, typically one
// reloaded from storage. The chain must have survived Validate.
func FromChain(chain []Block, difficulty int, miningReward float64) (*Ledger, error) {
	if !Validate(chain, difficulty) {
		return nil, errors.New("chain failed validation")
	}

	l := Ledger{
		difficulty:   difficulty,
		miningReward: miningReward,
		chain:        make([]Block, len(chain)),
	}
	copy(l.chain, chain)

	return &l, nil
}

// =============================================================================

// AddTransaction admits a transaction to the pending pool. Admission
// requires both the stateless structural checks and, unless the sender is
// SYSTEM, a verifying signature. It returns the index of the block the
// transaction would be mined into.
func (l *Ledger) AddTransaction(tx Tx) (int, error) {
	if !tx.IsValid() {
		return 0, ErrStructuralInvalid
	}
	if !tx.VerifySignature() {
		return 0, ErrAuthInvalid
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pending = append(l.pending, tx)

	return len(l.chain), nil
}

// MinePendingTransactions snapshots the pool into a new block, seals it
// with proof of work, appends it, removes the mined transactions from the
// pool, and then enqueues exactly one SYSTEM reward transaction for the
// miner. The reward stays pending and affects no balance until a later
// block mines it.
//
// The search runs without the lock. If the tip moved while mining (the
// chain was replaced by consensus), the sealed block is discarded with
// ErrWrongParent.
func (l *Ledger) MinePendingTransactions(ctx context.Context, miner string) (Block, error) {
	l.mu.Lock()
	if len(l.pending) == 0 {
		l.mu.Unlock()
		return Block{}, ErrNothingToMine
	}

	data := make([]Tx, len(l.pending))
	copy(data, l.pending)
	tip := l.chain[len(l.chain)-1]
	difficulty := l.difficulty
	l.mu.Unlock()

	block := NewBlock(tip.Index+1, data, tip.Hash)
	if err := block.Mine(ctx, difficulty); err != nil {
		return Block{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// The tip must not have moved between the snapshot and the append.
	current := l.chain[len(l.chain)-1]
	if current.Hash != block.PreviousHash {
		return Block{}, ErrWrongParent
	}

	l.chain = append(l.chain, block)
	l.removeMinedLocked(block.Data)
	l.pending = append(l.pending, NewRewardTx(miner, l.miningReward))

	return block, nil
}

// AppendPeerBlock validates a block sealed by a peer against the local tip
// and appends it. The mined transactions leave the pending pool; no reward
// is enqueued locally since the reward belongs to the remote miner.
func (l *Ledger) AppendPeerBlock(block Block) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	tip := l.chain[len(l.chain)-1]

	if block.Index != tip.Index+1 {
		return fmt.Errorf("%w: got index %d, exp %d", ErrWrongParent, block.Index, tip.Index+1)
	}
	if block.PreviousHash != tip.Hash {
		return fmt.Errorf("%w: previous hash does not match tip", ErrWrongParent)
	}
	if block.Hash != block.CalculateHash() {
		return errors.New("block hash does not match its contents")
	}
	if !block.HashSatisfies(l.difficulty) {
		return fmt.Errorf("block hash does not satisfy difficulty %d", l.difficulty)
	}

	l.chain = append(l.chain, block)
	l.removeMinedLocked(block.Data)

	return nil
}

// removeMinedLocked drops the specified transactions from the pending pool.
// Transactions admitted while mining was in flight survive.
func (l *Ledger) removeMinedLocked(mined []Tx) {
	minedSet := make(map[string]struct{}, len(mined))
	for _, tx := range mined {
		minedSet[tx.Hash()] = struct{}{}
	}

	remaining := l.pending[:0]
	for _, tx := range l.pending {
		if _, ok := minedSet[tx.Hash()]; !ok {
			remaining = append(remaining, tx)
		}
	}
	l.pending = remaining
}

// =============================================================================

// Balance folds every mined transaction into a balance for the address:
// each appearance as sender debits, each as recipient credits. Pending
// transactions never count, so there is no speculative credit.
func (l *Ledger) Balance(address string) float64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	var balance float64
	for _, block := range l.chain {
		for _, tx := range block.Data {
			if tx.Sender == address {
				balance -= tx.Amount
			}
			if tx.Recipient == address {
				balance += tx.Amount
			}
		}
	}

	return balance
}

// IsChainValid re-checks the whole chain: every stored hash against a
// recompute, every link against the previous block's hash, and every hash
// against the difficulty target. A single mismatch anywhere invalidates the
// chain; there is no partial trust.
func (l *Ledger) IsChainValid() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	return Validate(l.chain, l.difficulty)
}

// Validate runs the chain integrity checks over an arbitrary block
// sequence. It is shared by IsChainValid and by the consensus path that
// audits a peer's chain before adoption.
func Validate(chain []Block, difficulty int) bool {
	if len(chain) == 0 {
		return false
	}

	for i := 1; i < len(chain); i++ {
		current := chain[i]
		previous := chain[i-1]

		if current.Hash != current.CalculateHash() {
			return false
		}
		if current.PreviousHash != previous.Hash {
			return false
		}
		if !current.HashSatisfies(difficulty) {
			return false
		}
	}

	return true
}

// ReplaceChain swaps the local chain wholesale for one adopted through
// consensus. The caller has already validated it. Pending transactions are
// discarded: the displaced chain may have included them, and replaying is a
// caller policy, not a ledger one.
func (l *Ledger) ReplaceChain(chain []Block) error {
	if !Validate(chain, l.difficulty) {
		return errors.New("replacement chain failed validation")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if len(chain) <= len(l.chain) {
		return fmt.Errorf("replacement chain is not longer: got %d, have %d", len(chain), len(l.chain))
	}

	l.chain = make([]Block, len(chain))
	copy(l.chain, chain)
	l.pending = nil

	return nil
}

// =============================================================================

// Len returns the number of blocks in the chain.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.chain)
}

// LatestBlock returns the chain tip.
func (l *Ledger) LatestBlock() Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.chain[len(l.chain)-1]
}

// BlockByIndex returns the block at the specified index.
func (l *Ledger) BlockByIndex(index int) (Block, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if index < 0 || index >= len(l.chain) {
		return Block{}, false
	}
	return l.chain[index], true
}

// Blocks returns a copy of the chain.
func (l *Ledger) Blocks() []Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	chain := make([]Block, len(l.chain))
	copy(chain, l.chain)
	return chain
}

// PendingTransactions returns a copy of the pending pool.
func (l *Ledger) PendingTransactions() []Tx {
	l.mu.Lock()
	defer l.mu.Unlock()

	pending := make([]Tx, len(l.pending))
	copy(pending, l.pending)
	return pending
}

// Difficulty returns the proof of work difficulty.
func (l *Ledger) Difficulty() int {
	return l.difficulty
}

// MiningReward returns the reward minted per mined block.
func (l *Ledger) MiningReward() float64 {
	return l.miningReward
}
