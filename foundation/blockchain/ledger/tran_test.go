package ledger_test

import (
	"testing"

	"github.com/edublock/edublock/foundation/blockchain/ledger"
	"github.com/edublock/edublock/foundation/blockchain/wallet"
)

func Test_TxStructuralValidity(t *testing.T) {
	type table struct {
		name  string
		tx    ledger.Tx
		valid bool
	}

	tt := []table{
		{name: "basic", tx: ledger.NewTx("alice", "bob", 10), valid: true},
		{name: "empty sender", tx: ledger.NewTx("", "bob", 10), valid: false},
		{name: "empty recipient", tx: ledger.NewTx("alice", "", 10), valid: false},
		{name: "zero amount", tx: ledger.NewTx("alice", "bob", 0), valid: false},
		{name: "negative amount", tx: ledger.NewTx("alice", "bob", -5), valid: false},
		{name: "self transfer", tx: ledger.NewTx("alice", "alice", 10), valid: false},
		{name: "system self", tx: ledger.NewTx(ledger.SystemAccount, ledger.SystemAccount, 10), valid: true},
		{name: "system mint", tx: ledger.NewRewardTx("miner", 100), valid: true},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			if got := tst.tx.IsValid(); got != tst.valid {
				t.Logf("Test %s:\tgot: %v", tst.name, got)
				t.Logf("Test %s:\texp: %v", tst.name, tst.valid)
				t.Fatalf("Test %s:\tShould get the right structural validity.", tst.name)
			}
		}
		t.Run(tst.name, f)
	}
}

func Test_TxSigning(t *testing.T) {
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	tx := ledger.NewTx(w.Address(), "bob", 30)

	if tx.VerifySignature() {
		t.Fatal("Should not verify an unsigned transaction.")
	}

	if err := tx.Sign(w); err != nil {
		t.Fatalf("Should be able to sign with the sender's wallet: %s", err)
	}
	if !tx.VerifySignature() {
		t.Fatal("Should verify a transaction signed by its sender.")
	}
}

func Test_TxSignWrongWallet(t *testing.T) {
	w1, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}
	w2, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a second wallet: %s", err)
	}

	tx := ledger.NewTx(w1.Address(), "bob", 30)

	if err := tx.Sign(w2); err == nil {
		t.Fatal("Should refuse to sign for a sender the wallet does not own.")
	}
}

func Test_TxTamperAfterSigning(t *testing.T) {
	w, err := wallet.New()
	if err != nil {
		t.Fatalf("Should be able to create a wallet: %s", err)
	}

	base := ledger.NewTx(w.Address(), "bob", 30)
	if err := base.Sign(w); err != nil {
		t.Fatalf("Should be able to sign the transaction: %s", err)
	}

	type table struct {
		name   string
		mutate func(tx *ledger.Tx)
	}

	tt := []table{
		{name: "amount", mutate: func(tx *ledger.Tx) { tx.Amount = 3000 }},
		{name: "sender", mutate: func(tx *ledger.Tx) { tx.Sender = "mallory" }},
		{name: "recipient", mutate: func(tx *ledger.Tx) { tx.Recipient = "mallory" }},
		{name: "timestamp", mutate: func(tx *ledger.Tx) { tx.Timestamp = "2001-01-01T00:00:00Z" }},
	}

	for _, tst := range tt {
		f := func(t *testing.T) {
			tx := base
			tst.mutate(&tx)

			if tx.VerifySignature() {
				t.Fatalf("Test %s:\tShould fail verification after mutating a signed field.", tst.name)
			}
		}
		t.Run(tst.name, f)
	}
}

func Test_SystemNeedsNoSignature(t *testing.T) {
	tx := ledger.NewRewardTx("miner", 100)

	if !tx.VerifySignature() {
		t.Fatal("Should treat SYSTEM transactions as valid without a signature.")
	}
}

func Test_CanonicalHashStability(t *testing.T) {
	tx := ledger.NewTx("alice", "bob", 10)

	if tx.Hash() != tx.Hash() {
		t.Fatal("Should hash a transaction to the same digest every time.")
	}

	other := tx
	other.Amount = 11
	if tx.Hash() == other.Hash() {
		t.Fatal("Should hash different transactions to different digests.")
	}

	// Attaching a signature must not change the canonical hash, since the
	// signature is computed over it.
	signed := tx
	signed.Signature = "aa"
	signed.SenderPublicKey = "bb"
	if tx.Hash() != signed.Hash() {
		t.Fatal("Should exclude signature fields from the canonical hash.")
	}
}
