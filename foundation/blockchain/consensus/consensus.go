// Package consensus implements the longest valid chain rule used to
// reconcile this node's chain with the chains reported by peers.
package consensus

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Report represents the chain and pending transactions a peer reported.
type Report struct {
	Host                string
	Chain               []database.Block
	PendingTransactions []database.Tx
}

// Result represents the outcome of resolving the chains.
type Result struct {
	Replaced            bool
	Source              string
	Chain               []database.Block
	PendingTransactions []database.Tx
}

// Resolve picks the longest chain among the reports that is longer than the
// local chain. Ties are won by the first report seen. The selected chain is
// only adopted if it passes validation, otherwise the local chain is kept.
// Pending transactions are never merged, they are taken from the winner.
func Resolve(local []database.Block, reports []Report, ev func(v string, args ...any)) Result {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	maxLength := len(local)
	selected := -1

	for i, report := range reports {
		ev("consensus: Resolve: peer[%s]: length[%d]: max[%d]", report.Host, len(report.Chain), maxLength)

		if len(report.Chain) > maxLength {
			maxLength = len(report.Chain)
			selected = i
		}
	}

	keep := Result{
		Chain: local,
	}

	if selected == -1 {
		ev("consensus: Resolve: no longer chain reported: keeping local chain")
		return keep
	}

	winner := reports[selected]
	if err := database.ValidateChain(winner.Chain, ev); err != nil {
		ev("consensus: Resolve: peer[%s]: longest chain rejected: %s", winner.Host, err)
		return keep
	}

	ev("consensus: Resolve: peer[%s]: replacing local chain: length[%d]", winner.Host, len(winner.Chain))

	result := Result{
		Replaced:            true,
		Source:              winner.Host,
		Chain:               winner.Chain,
		PendingTransactions: winner.PendingTransactions,
	}

	if result.PendingTransactions == nil {
		result.PendingTransactions = []database.Tx{}
	}

	return result
}
