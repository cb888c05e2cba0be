package consensus_test

import (
	"context"
	"testing"

	"github.com/ardanlabs/ledger/foundation/blockchain/consensus"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Resolve(t *testing.T) {
	long := mineChain(t, 3, "long")
	other := mineChain(t, 2, "other")

	tampered := append([]database.Block{}, long...)
	tampered = append(tampered, database.NewBlock(5, nil, 1, "not-linked", "not-a-hash"))

	pending := []database.Tx{database.NewTx(1, "a", "b")}
	genesis := long[:1]

	type table struct {
		name     string
		local    []database.Block
		reports  []consensus.Report
		replaced bool
		source   string
		length   int
	}

	tt := []table{
		{
			name:   "noreports",
			local:  genesis,
			length: 1,
		},
		{
			name:    "shorter",
			local:   long,
			reports: []consensus.Report{{Host: "a", Chain: long[:2]}},
			length:  4,
		},
		{
			name:    "equal",
			local:   long[:3],
			reports: []consensus.Report{{Host: "a", Chain: other}},
			length:  3,
		},
		{
			name:     "longer",
			local:    genesis,
			reports:  []consensus.Report{{Host: "a", Chain: long[:2]}, {Host: "b", Chain: long, PendingTransactions: pending}},
			replaced: true,
			source:   "b",
			length:   4,
		},
		{
			name:     "tie",
			local:    genesis,
			reports:  []consensus.Report{{Host: "a", Chain: other}, {Host: "b", Chain: long[:3]}},
			replaced: true,
			source:   "a",
			length:   3,
		},
		{
			name:    "longestinvalid",
			local:   genesis,
			reports: []consensus.Report{{Host: "a", Chain: tampered}, {Host: "b", Chain: long[:3]}},
			length:  1,
		},
	}

	t.Log("Given the need to resolve chains using the longest valid chain rule.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling the %s case.", testID, tst.name)
			{
				f := func(t *testing.T) {
					result := consensus.Resolve(tst.local, tst.reports, nil)

					if result.Replaced != tst.replaced {
						t.Fatalf("\t%s\tTest %d:\tShould get back the right replaced flag: got %v", failed, testID, result.Replaced)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right replaced flag.", success, testID)

					if len(result.Chain) != tst.length {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, len(result.Chain))
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, tst.length)
						t.Fatalf("\t%s\tTest %d:\tShould get back the right chain.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right chain.", success, testID)

					if len(result.Chain) < len(tst.local) {
						t.Fatalf("\t%s\tTest %d:\tShould never shorten the local chain.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould never shorten the local chain.", success, testID)

					if result.Replaced {
						if result.Source != tst.source {
							t.Fatalf("\t%s\tTest %d:\tShould adopt the chain from %s, got %s.", failed, testID, tst.source, result.Source)
						}
						if !database.IsValidChain(result.Chain) {
							t.Fatalf("\t%s\tTest %d:\tShould only adopt a valid chain.", failed, testID)
						}
						if result.PendingTransactions == nil {
							t.Fatalf("\t%s\tTest %d:\tShould adopt the peer's pending transactions.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould adopt the right peer's state.", success, testID)
					}
				}

				t.Run(tst.name, f)
			}
		}
	}
}

// =============================================================================

// mineChain constructs a valid chain with the specified number of blocks
// after genesis.
func mineChain(t *testing.T, blocks int, from string) []database.Block {
	chain := database.New().Copy()

	for i := 0; i < blocks; i++ {
		prev := chain[len(chain)-1]
		data := database.BlockData{
			Index:        prev.Index + 1,
			Transactions: []database.Tx{database.NewTx(float64(i+1), from, "receiver")},
		}

		nonce, hash, err := database.POW(context.Background(), prev.Hash, data, database.POWConfig{Workers: 2}, nil)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine block %d: %v", failed, data.Index, err)
		}

		chain = append(chain, database.NewBlock(data.Index, data.Transactions, nonce, prev.Hash, hash))
	}

	return chain
}
