// Package database handles the lower level support for maintaining the
// blockchain in memory, hashing blocks, solving the proof of work puzzle
// and validating chains.
package database

import (
	"errors"
	"sync"
)

// ErrNotFound is returned when a block can't be located by its index.
var ErrNotFound = errors.New("block not found")

// Database manages the chain of blocks for the node. The chain always
// starts with the genesis block.
type Database struct {
	mu    sync.RWMutex
	chain []Block
}

// New constructs a new database with the genesis block written.
func New() *Database {
	db := Database{
		chain: []Block{NewBlock(GenesisIndex, nil, GenesisNonce, GenesisPrevHash, GenesisHash)},
	}

	return &db
}

// Write appends the block to the end of the chain.
func (db *Database) Write(block Block) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.chain = append(db.chain, block)
}

// Replace swaps the entire chain for the specified chain. An empty chain
// is ignored since the chain must always hold the genesis block.
func (db *Database) Replace(chain []Block) {
	if len(chain) == 0 {
		return
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	db.chain = append([]Block(nil), chain...)
}

// LatestBlock returns the last block in the chain.
func (db *Database) LatestBlock() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.chain[len(db.chain)-1]
}

// Length returns the number of blocks in the chain.
func (db *Database) Length() int {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return len(db.chain)
}

// GetBlock searches the chain for the block with the specified index.
func (db *Database) GetBlock(index uint64) (Block, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	for _, block := range db.chain {
		if block.Index == index {
			return block, nil
		}
	}

	return Block{}, ErrNotFound
}

// Copy returns a copy of the chain.
func (db *Database) Copy() []Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return append([]Block(nil), db.chain...)
}
