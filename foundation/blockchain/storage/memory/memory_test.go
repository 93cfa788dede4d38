package memory_test

import (
	"errors"
	"testing"

	"github.com/edublock/edublock/foundation/blockchain/ledger"
	"github.com/edublock/edublock/foundation/blockchain/storage"
	"github.com/edublock/edublock/foundation/blockchain/storage/memory"
)

func Test_SaveGet(t *testing.T) {
	store := memory.New()
	defer store.Close()

	b0 := ledger.NewBlock(0, nil, ledger.GenesisPrevHash)
	b1 := ledger.NewBlock(1, []ledger.Tx{ledger.NewTx("alice", "bob", 10)}, b0.Hash)

	if err := store.SaveBlock(b0); err != nil {
		t.Fatalf("Should be able to save the genesis block: %s", err)
	}
	if err := store.SaveBlock(b1); err != nil {
		t.Fatalf("Should be able to save the next block: %s", err)
	}

	got, err := store.GetBlock(1)
	if err != nil {
		t.Fatalf("Should be able to read a saved block: %s", err)
	}
	if got.Hash != b1.Hash {
		t.Logf("got: %s", got.Hash)
		t.Logf("exp: %s", b1.Hash)
		t.Fatal("Should read back the block that was saved.")
	}

	if _, err := store.GetBlock(7); !errors.Is(err, storage.ErrNotFound) {
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
}

func Test_Reset(t *testing.T) {
	store := memory.New()
	defer store.Close()

	if err := store.SaveBlock(ledger.NewBlock(0, nil, ledger.GenesisPrevHash)); err != nil {
		t.Fatalf("Should be able to save a block: %s", err)
	}

	if err := store.Reset(); err != nil {
		t.Fatalf("Should be able to reset the store: %s", err)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Should be able to count blocks: %s", err)
	}
	if count != 0 {
		t.Fatal("Should be empty after a reset.")
	}
}
