package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// GenesisPrevHash is the sentinel previous hash carried by the genesis
// block.
const GenesisPrevHash = "0"

// cancelCheckInterval is how many nonce attempts happen between checks of
// the cancellation context during mining.
const cancelCheckInterval = 1024

// Block is an immutable container of transactions sealed by proof of work.
// The json field names are part of the wire contract.
type Block struct {
	Index        int    `json:"index"`
	Timestamp    string `json:"timestamp"`
	Data         []Tx   `json:"data"`
	PreviousHash string `json:"previous_hash"`
	Nonce        uint64 `json:"nonce"`
	Hash         string `json:"hash"`
}

// NewBlock constructs an unsealed block over the specified transactions.
// The stored hash is consistent immediately; Mine re-searches it against a
// difficulty target.
func NewBlock(index int, data []Tx, previousHash string) Block {
	b := Block{
		Index:        index,
		Timestamp:    time.Now().UTC().Format(time.RFC3339Nano),
		Data:         data,
		PreviousHash: previousHash,
	}
	b.Hash = b.CalculateHash()

	return b
}

// CalculateHash returns the SHA-256 over the block fields serialized in a
// fixed order. Any single-field change cascades to an unrelated digest,
// which is what makes in-place tampering detectable.
func (b Block) CalculateHash() string {
	canonical := struct {
		Data         []Tx   `json:"data"`
		Index        int    `json:"index"`
		Nonce        uint64 `json:"nonce"`
		PreviousHash string `json:"previous_hash"`
		Timestamp    string `json:"timestamp"`
	}{
		Data:         b.Data,
		Index:        b.Index,
		Nonce:        b.Nonce,
		PreviousHash: b.PreviousHash,
		Timestamp:    b.Timestamp,
	}

	data, err := json.Marshal(canonical)
	if err != nil {
		panic(fmt.Sprintf("ledger: canonical block marshal: %s", err))
	}

	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// Mine performs the proof of work search: increment the nonce and recompute
// the hash until it carries the required number of leading zero hex
// characters. Expected work scales by sixteen per unit of difficulty and
// difficulty zero accepts immediately. The search checks the context
// periodically so a newly adopted chain can preempt it.
func (b *Block) Mine(ctx context.Context, difficulty int) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	target := strings.Repeat("0", difficulty)

	var attempts uint64
	for !strings.HasPrefix(b.Hash, target) {
		attempts++
		if attempts%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}

		b.Nonce++
		b.Hash = b.CalculateHash()
	}

	return nil
}

// HashSatisfies reports whether the stored hash meets the difficulty
// target.
func (b Block) HashSatisfies(difficulty int) bool {
	return strings.HasPrefix(b.Hash, strings.Repeat("0", difficulty))
}

// String implements fmt.Stringer for logging.
func (b Block) String() string {
	return fmt.Sprintf("blk[%d] nonce[%d] hash[%s]", b.Index, b.Nonce, shorten(b.Hash))
}
