package pebbledb_test

import (
	"errors"
	"testing"

	"github.com/edublock/edublock/foundation/blockchain/ledger"
	"github.com/edublock/edublock/foundation/blockchain/storage"
	"github.com/edublock/edublock/foundation/blockchain/storage/pebbledb"
)

func Test_RoundTrip(t *testing.T) {
	store, err := pebbledb.New(t.TempDir())
	if err != nil {
		t.Fatalf("Should be able to open the database: %s", err)
	}
	defer store.Close()

	b0 := ledger.NewBlock(0, nil, ledger.GenesisPrevHash)
	b1 := ledger.NewBlock(1, []ledger.Tx{ledger.NewTx("alice", "bob", 10)}, b0.Hash)

	for _, b := range []ledger.Block{b0, b1} {
		if err := store.SaveBlock(b); err != nil {
			t.Fatalf("Should be able to save block %d: %s", b.Index, err)
		}
	}

	got, err := store.GetBlock(1)
	if err != nil {
		t.Fatalf("Should be able to read a saved block: %s", err)
	}
	if got.Hash != b1.Hash || len(got.Data) != 1 {
		t.Fatal("Should read back the block that was saved.")
	}

	if _, err := store.GetBlock(42); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Should report a missing block as not found: %v", err)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Should be able to count blocks: %s", err)
	}
	if count != 2 {
		t.Logf("got: %d", count)
		t.Logf("exp: 2")
		t.Fatal("Should count the saved blocks.")
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("Should be able to reset the store: %s", err)
	}
	count, _ = store.Count()
	if count != 0 {
		t.Fatal("Should be empty after a reset.")
	}
}
