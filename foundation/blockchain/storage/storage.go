// Package storage defines the persistence sink for sealed blocks. The core
// functions purely in memory; a Store is an optional write-through so a
// node can reload its chain after a restart.
package storage

import (
	"errors"

	"github.com/edublock/edublock/foundation/blockchain/ledger"
)

// ErrNotFound is returned when the requested block is not in the store.
var ErrNotFound = errors.New("block not found")

// Store is the behavior required of any backend persisting the chain.
type Store interface {
	SaveBlock(block ledger.Block) error
	GetBlock(index int) (ledger.Block, error)
	Count() (int, error)
	Reset() error
	Close() error
}
