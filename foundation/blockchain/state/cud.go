package state

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// CreateTransaction constructs a new transaction with a unique id. The
// transaction is not added to the mempool.
func (s *State) CreateTransaction(amount float64, from string, to string) database.Tx {
	return database.NewTx(amount, from, to)
}

// UpsertMempool adds a transaction to the end of the mempool and returns the
// index of the block the transaction is expected to be mined into.
func (s *State) UpsertMempool(tx database.Tx) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.mempool.Add(tx)
	next := s.db.LatestBlock().Index + 1

	s.evHandler("state: UpsertMempool: tx[%s]: pool[%d]: blk[%d]", tx, n, next)

	return next
}

// AppendBlock adds the block to the end of the chain without validation.
// The caller is responsible for validating the block first.
func (s *State) AppendBlock(block database.Block) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.db.Write(block)
}

// AddKnownPeer provides the ability to add a new peer. This node and peers
// that are already known are not added.
func (s *State) AddKnownPeer(pr peer.Peer) error {
	if pr.Match(s.host) {
		return ErrPeerIsSelf
	}

	if s.knownPeers.Contains(pr) {
		return ErrPeerExists
	}

	s.knownPeers.Add(pr)
	s.evHandler("state: AddKnownPeer: adding peer-node %s", pr)

	return nil
}

// RemoveKnownPeer provides the ability to remove a peer.
func (s *State) RemoveKnownPeer(pr peer.Peer) {
	s.knownPeers.Remove(pr)
}
