// Package memory implements an in-memory block store. It is the default
// backend and the one the tests use.
package memory

import (
	"sync"

	"github.com/edublock/edublock/foundation/blockchain/ledger"
	"github.com/edublock/edublock/foundation/blockchain/storage"
)

// Memory keeps sealed blocks in a map keyed by chain index.
type Memory struct {
	mu     sync.RWMutex
	blocks map[int]ledger.Block
}

// New constructs an empty in-memory store.
func New() *Memory {
	return &Memory{
		blocks: make(map[int]ledger.Block),
	}
}

// SaveBlock stores the block under its chain index. Saving the same index
// again overwrites, which is what chain replacement needs.
func (m *Memory) SaveBlock(block ledger.Block) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks[block.Index] = block
	return nil
}

// GetBlock returns the block at the specified index.
func (m *Memory) GetBlock(index int) (ledger.Block, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	block, exists := m.blocks[index]
	if !exists {
		return ledger.Block{}, storage.ErrNotFound
	}
	return block, nil
}

// Count returns the number of stored blocks.
func (m *Memory) Count() (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.blocks), nil
}

// Reset drops every stored block.
func (m *Memory) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.blocks = make(map[int]ledger.Block)
	return nil
}

// Close implements the Store interface. There is nothing to release.
func (m *Memory) Close() error {
	return nil
}
