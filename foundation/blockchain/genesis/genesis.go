// Package genesis maintains access to the genesis file.
package genesis

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Genesis represents the chain parameters fixed at creation.
type Genesis struct {
	Date         time.Time `json:"date"`
	ChainID      uint16    `json:"chain_id"`      // Unique id for this running instance.
	Difficulty   int       `json:"difficulty"`    // Leading zero hex characters required of a sealed hash.
	MiningReward float64   `json:"mining_reward"` // Reward minted per mined block.
}

// Default returns the parameters used when no genesis file exists.
func Default() Genesis {
	return Genesis{
		Date:         time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC),
		ChainID:      1,
		Difficulty:   4,
		MiningReward: 100,
	}
}

// Load opens and consumes the genesis file. A missing file falls back to
// the defaults so a fresh node can start without ceremony.
func Load(path string) (Genesis, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Genesis{}, fmt.Errorf("reading genesis file: %w", err)
	}

	var genesis Genesis
	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("parsing genesis file: %w", err)
	}

	return genesis, nil
}
