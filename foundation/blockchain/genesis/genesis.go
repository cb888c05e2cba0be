// Package genesis maintains access to the genesis settings.
package genesis

import (
	"encoding/json"
	"os"
	"time"
)

// Genesis represents the settings every node of the network agrees on.
type Genesis struct {
	Date         time.Time `json:"date"`
	ChainID      uint16    `json:"chain_id"`      // The chain id represents an unique id for this running instance.
	MiningReward float64   `json:"mining_reward"` // Reward for mining a block.
	RewardFrom   string    `json:"reward_from"`   // Address the mining reward is paid from.
}

// Default returns the settings used when no genesis file is provided.
func Default() Genesis {
	return Genesis{
		Date:         time.Date(2023, time.June, 29, 0, 0, 0, 0, time.UTC),
		ChainID:      1,
		MiningReward: 12.5,
		RewardFrom:   "00",
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Values missing from the file
// keep their default.
func Load(path string) (Genesis, error) {
	genesis := Default()
	if path == "" {
		return genesis, nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, err
	}

	if err := json.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, err
	}

	return genesis, nil
}
