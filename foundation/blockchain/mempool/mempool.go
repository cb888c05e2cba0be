// Package mempool maintains the mempool for the blockchain.
package mempool

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Mempool represents a cache of transactions waiting to be mined into a
// block. Transactions are kept in the order they were added and duplicate
// transactions are retained.
type Mempool struct {
	mu   sync.RWMutex
	pool []database.Tx
}

// New constructs a new empty mempool.
func New() *Mempool {
	return &Mempool{
		pool: []database.Tx{},
	}
}

// Count returns the current number of transaction in the pool.
func (mp *Mempool) Count() int {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return len(mp.pool)
}

// Add appends a transaction to the end of the mempool.
func (mp *Mempool) Add(tx database.Tx) int {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append(mp.pool, tx)

	return len(mp.pool)
}

// Drain returns all the transactions in the pool and leaves it empty.
func (mp *Mempool) Drain() []database.Tx {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	trans := mp.pool
	mp.pool = []database.Tx{}

	return trans
}

// DrainPrefix removes the specified transactions from the front of the pool
// if the pool still starts with them. Transactions added after the snapshot
// was taken stay in the pool.
func (mp *Mempool) DrainPrefix(snapshot []database.Tx) bool {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	if len(snapshot) > len(mp.pool) {
		return false
	}

	for i, tx := range snapshot {
		if mp.pool[i] != tx {
			return false
		}
	}

	mp.pool = append([]database.Tx{}, mp.pool[len(snapshot):]...)

	return true
}

// Copy returns a copy of the transactions in the pool.
func (mp *Mempool) Copy() []database.Tx {
	mp.mu.RLock()
	defer mp.mu.RUnlock()

	return append([]database.Tx{}, mp.pool...)
}

// Replace swaps the contents of the pool for the specified transactions.
func (mp *Mempool) Replace(trans []database.Tx) {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = append([]database.Tx{}, trans...)
}

// Truncate clears all the transactions from the pool.
func (mp *Mempool) Truncate() {
	mp.mu.Lock()
	defer mp.mu.Unlock()

	mp.pool = []database.Tx{}
}
