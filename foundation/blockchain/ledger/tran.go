package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edublock/edublock/foundation/blockchain/wallet"
)

// SystemAccount is the protocol-level sender used to mint value, such as
// mining rewards. SYSTEM never holds a key pair, so its transactions carry
// no signature.
const SystemAccount = "SYSTEM"

// Tx represents a value transfer between two addresses. A transaction is
// created, signed once, and immutable after that. The json field names are
// part of the wire contract.
type Tx struct {
	Sender          string  `json:"sender"`
	Recipient       string  `json:"recipient"`
	Amount          float64 `json:"amount"`
	Timestamp       string  `json:"timestamp"`
	Signature       string  `json:"signature,omitempty"`
	SenderPublicKey string  `json:"sender_public_key,omitempty"`
}

// NewTx constructs an unsigned transaction stamped with the current time.
func NewTx(sender string, recipient string, amount float64) Tx {
	return Tx{
		Sender:    sender,
		Recipient: recipient,
		Amount:    amount,
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// NewRewardTx constructs the SYSTEM transaction minting the mining reward
// to the miner. The reward affects no balance until it is itself mined into
// a later block.
func NewRewardTx(miner string, amount float64) Tx {
	return NewTx(SystemAccount, miner, amount)
}

// Hash returns the canonical hash of the transaction: a SHA-256 over the
// signable fields serialized in a fixed order. Sign and VerifySignature
// hash identical bytes regardless of how the value was constructed.
func (tx Tx) Hash() string {
	canonical := struct {
		Amount    float64 `json:"amount"`
		Recipient string  `json:"recipient"`
		Sender    string  `json:"sender"`
		Timestamp string  `json:"timestamp"`
	}{
		Amount:    tx.Amount,
		Recipient: tx.Recipient,
		Sender:    tx.Sender,
		Timestamp: tx.Timestamp,
	}

	data, err := json.Marshal(canonical)
	if err != nil {

		// Only unsupported types can fail canonical marshaling and the
		// struct above has none.
		panic(fmt.Sprintf("ledger: canonical tx marshal: %s", err))
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Sign attaches the wallet's signature and public key to the transaction.
// The wallet must own the sender address; signing as someone else fails.
func (tx *Tx) Sign(w *wallet.Wallet) error {
	if w.Address() != tx.Sender {
		return fmt.Errorf("wallet %s cannot sign for sender %s", w.Address(), tx.Sender)
	}

	sig, err := w.SignHex(tx.Hash())
	if err != nil {
		return fmt.Errorf("signing transaction: %w", err)
	}

	tx.Signature = sig
	tx.SenderPublicKey = w.PublicKeyHex()

	return nil
}

// VerifySignature reports whether the transaction carries a valid signature
// over its canonical hash. SYSTEM transactions are always valid without a
// signature. A missing signature or public key is a verification failure,
// not an error.
func (tx Tx) VerifySignature() bool {
	if tx.Sender == SystemAccount {
		return true
	}

	if tx.Signature == "" || tx.SenderPublicKey == "" {
		return false
	}

	return wallet.VerifyHex(tx.SenderPublicKey, tx.Hash(), tx.Signature)
}

// IsValid performs the stateless structural checks: non-empty addresses, a
// positive amount, and no self-transfer except for SYSTEM. Admission to the
// pool requires both IsValid and VerifySignature; neither implies the other.
func (tx Tx) IsValid() bool {
	if tx.Sender == "" || tx.Recipient == "" {
		return false
	}
	if tx.Amount <= 0 {
		return false
	}
	if tx.Sender != SystemAccount && tx.Sender == tx.Recipient {
		return false
	}
	return true
}

// String implements fmt.Stringer for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s->%s:%g", shorten(tx.Sender), shorten(tx.Recipient), tx.Amount)
}

// shorten trims an address for log lines.
func shorten(addr string) string {
	if len(addr) <= 8 {
		return addr
	}
	return addr[:8]
}
