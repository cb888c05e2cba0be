package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// QueryBlockByIndex returns the block with the specified index.
func (s *State) QueryBlockByIndex(index uint64) (database.Block, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	block, err := s.db.GetBlock(index)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.Block{}, fmt.Errorf("block %d: %w", index, ErrNotFound)
		}
		return database.Block{}, err
	}

	return block, nil
}

// QueryKnownPeer reports whether the peer is already known to this node.
func (s *State) QueryKnownPeer(pr peer.Peer) bool {
	return s.knownPeers.Contains(pr)
}

// QueryChainLength returns the number of blocks in the chain.
func (s *State) QueryChainLength() int {
	return s.db.Length()
}
