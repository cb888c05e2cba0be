package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
)

func Test_Load(t *testing.T) {
	gen, err := genesis.Load("")
	if err != nil {
		t.Fatalf("Should be able to load the default genesis: %v", err)
	}
	if gen.MiningReward != 12.5 || gen.RewardFrom != "00" {
		t.Fatalf("Should get back the default genesis: %+v", gen)
	}

	path := filepath.Join(t.TempDir(), "genesis.json")
	if err := os.WriteFile(path, []byte(`{"mining_reward": 50}`), 0600); err != nil {
		t.Fatalf("Should be able to write the genesis file: %v", err)
	}

	gen, err = genesis.Load(path)
	if err != nil {
		t.Fatalf("Should be able to load the genesis file: %v", err)
	}
	if gen.MiningReward != 50 || gen.RewardFrom != "00" {
		t.Fatalf("Should override only the values in the file: %+v", gen)
	}

	if _, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Fatalf("Should fail on a missing genesis file.")
	}
}
