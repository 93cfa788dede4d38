package public

import "github.com/edublock/edublock/foundation/blockchain/ledger"

// newTx is what a wallet or a peer posts to /transactions/new. Signature
// and sender_public_key travel together; the timestamp must round-trip for
// a forwarded transaction since the canonical hash covers it.
type newTx struct {
	Sender          string  `json:"sender" validate:"required"`
	Recipient       string  `json:"recipient" validate:"required"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
	Timestamp       string  `json:"timestamp"`
	Signature       string  `json:"signature"`
	SenderPublicKey string  `json:"sender_public_key"`
}

// toLedgerTx converts the request model, stamping a fresh timestamp only
// for transactions that do not carry one.
func (n newTx) toLedgerTx() ledger.Tx {
	tx := ledger.NewTx(n.Sender, n.Recipient, n.Amount)
	if n.Timestamp != "" {
		tx.Timestamp = n.Timestamp
	}
	tx.Signature = n.Signature
	tx.SenderPublicKey = n.SenderPublicKey

	return tx
}

// mineRequest is the optional body for /mine.
type mineRequest struct {
	MinerAddress string `json:"miner_address"`
}

// registerNodes is the body for /nodes/register and /nodes/unregister.
type registerNodes struct {
	Nodes []string `json:"nodes" validate:"required,min=1"`
}
