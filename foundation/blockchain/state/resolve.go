package state

import (
	"context"

	"github.com/ardanlabs/ledger/foundation/blockchain/consensus"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Consensus runs a full consensus round. The status of every known peer is
// requested and the longest valid chain rule is applied to the reports.
func (s *State) Consensus(ctx context.Context) consensus.Result {
	reports := s.NetRequestPeerReports(ctx)
	return s.Resolve(reports)
}

// Resolve applies the longest valid chain rule to the reports received from
// peers. When a longer valid chain exists, the local chain and mempool are
// replaced with the peer's values. No mining is allowed to complete while
// this process is running.
func (s *State) Resolve(reports []consensus.Report) consensus.Result {
	s.evHandler("state: Resolve: started: reports[%d]", len(reports))
	defer s.evHandler("state: Resolve: completed")

	done := s.Worker.SignalCancelMining()
	defer done()

	s.mu.Lock()
	defer s.mu.Unlock()

	result := consensus.Resolve(s.db.Copy(), reports, s.evHandler)
	if !result.Replaced {
		return result
	}

	s.db.Replace(result.Chain)
	s.mempool.Replace(result.PendingTransactions)

	s.evHandler("state: Resolve: chain replaced: peer[%s]: length[%d]", result.Source, len(result.Chain))

	return result
}

// ReplaceChain swaps the local chain for the specified chain. The caller is
// responsible for validating the chain first.
func (s *State) ReplaceChain(chain []database.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.db.Replace(chain)
}

// ReplaceMempool swaps the local mempool for the specified transactions.
func (s *State) ReplaceMempool(trans []database.Tx) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mempool.Replace(trans)
}
