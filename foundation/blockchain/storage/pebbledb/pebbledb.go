// Package pebbledb implements a block store on cockroachdb/pebble for
// nodes that want their chain to survive a restart.
package pebbledb

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/cockroachdb/pebble"

	"github.com/edublock/edublock/foundation/blockchain/ledger"
	"github.com/edublock/edublock/foundation/blockchain/storage"
)

// blockPrefix namespaces block keys so the store can grow other record
// kinds without a format change.
const blockPrefix = "blk:"

// PebbleDB persists blocks as JSON values keyed by big-endian chain index,
// so iteration order matches chain order.
type PebbleDB struct {
	db *pebble.DB
}

// New opens or creates the database at the specified path.
func New(path string) (*PebbleDB, error) {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := pebble.Open(path, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &PebbleDB{db: db}, nil
}

// SaveBlock writes the block under its chain index with a durable sync.
func (p *PebbleDB) SaveBlock(block ledger.Block) error {
	data, err := json.Marshal(block)
	if err != nil {
		return fmt.Errorf("encoding block %d: %w", block.Index, err)
	}

	if err := p.db.Set(blockKey(block.Index), data, pebble.Sync); err != nil {
		return fmt.Errorf("writing block %d: %w", block.Index, err)
	}

	return nil
}

// GetBlock reads the block at the specified index.
func (p *PebbleDB) GetBlock(index int) (ledger.Block, error) {
	value, closer, err := p.db.Get(blockKey(index))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return ledger.Block{}, storage.ErrNotFound
		}
		return ledger.Block{}, fmt.Errorf("reading block %d: %w", index, err)
	}
	defer closer.Close()

	var block ledger.Block
	if err := json.Unmarshal(value, &block); err != nil {
		return ledger.Block{}, fmt.Errorf("decoding block %d: %w", index, err)
	}

	return block, nil
}

// Count returns the number of stored blocks.
func (p *PebbleDB) Count() (int, error) {
	iter, err := p.db.NewIter(prefixBounds())
	if err != nil {
		return 0, fmt.Errorf("creating iterator: %w", err)
	}
	defer iter.Close()

	var count int
	for iter.First(); iter.Valid(); iter.Next() {
		count++
	}

	return count, iter.Error()
}

// Reset removes every stored block.
func (p *PebbleDB) Reset() error {
	iter, err := p.db.NewIter(prefixBounds())
	if err != nil {
		return fmt.Errorf("creating iterator: %w", err)
	}

	var keys [][]byte
	for iter.First(); iter.Valid(); iter.Next() {
		key := make([]byte, len(iter.Key()))
		copy(key, iter.Key())
		keys = append(keys, key)
	}
	if err := iter.Close(); err != nil {
		return err
	}

	for _, key := range keys {
		if err := p.db.Delete(key, pebble.Sync); err != nil {
			return fmt.Errorf("deleting key: %w", err)
		}
	}

	return nil
}

// Close releases the database.
func (p *PebbleDB) Close() error {
	return p.db.Close()
}

// =============================================================================

// blockKey builds the key for a chain index: prefix plus 8 bytes
// big-endian.
func blockKey(index int) []byte {
	key := make([]byte, len(blockPrefix)+8)
	copy(key, blockPrefix)
	binary.BigEndian.PutUint64(key[len(blockPrefix):], uint64(index))
	return key
}

// prefixBounds limits iteration to the block keyspace.
func prefixBounds() *pebble.IterOptions {
	upper := []byte(blockPrefix)
	upper = append(upper, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff, 0xff)

	return &pebble.IterOptions{
		LowerBound: []byte(blockPrefix),
		UpperBound: upper,
	}
}
