package database

import (
	"errors"
	"fmt"
	"time"
)

// Set of values that anchor every chain. The genesis block is not mined, it
// is created with these fixed values.
const (
	GenesisNonce    uint64 = 100
	GenesisPrevHash        = "0"
	GenesisHash            = "0"
	GenesisIndex    uint64 = 1
)

// ErrBlockRejected is returned when a block received from a peer doesn't
// link to the latest block of this node.
var ErrBlockRejected = errors.New("block rejected")

// =============================================================================

// BlockData represents the part of a block committed to by the hash.
type BlockData struct {
	Index        uint64 `json:"index"`
	Transactions []Tx   `json:"transactions"`
}

// Block represents a group of transactions batched together.
type Block struct {
	Index        uint64 `json:"index"`     // Position of the block in the chain starting at 1.
	TimeStamp    int64  `json:"timestamp"` // Time the block was created in unix milliseconds.
	Transactions []Tx   `json:"transactions"`
	Nonce        uint64 `json:"nonce"`     // Value identified to solve the hash solution.
	PrevHash     string `json:"prev_hash"` // Hash of the previous block in the chain.
	Hash         string `json:"hash"`      // Hash of this block.
}

// NewBlock constructs a block that can be appended after a block at the
// specified index. A nil set of transactions is stored as an empty set.
func NewBlock(index uint64, trans []Tx, nonce uint64, prevHash string, hash string) Block {
	if trans == nil {
		trans = []Tx{}
	}

	return Block{
		Index:        index,
		TimeStamp:    time.Now().UnixMilli(),
		Transactions: trans,
		Nonce:        nonce,
		PrevHash:     prevHash,
		Hash:         hash,
	}
}

// Data returns the portion of the block that is hashed.
func (b Block) Data() BlockData {
	return BlockData{
		Index:        b.Index,
		Transactions: b.Transactions,
	}
}

// IsGenesis reports whether the block carries the fixed genesis values.
func (b Block) IsGenesis() bool {
	return b.Nonce == GenesisNonce &&
		b.PrevHash == GenesisPrevHash &&
		b.Hash == GenesisHash &&
		len(b.Transactions) == 0
}

// ValidateNextBlock checks a block received from a peer can be appended
// after the specified latest block. Only the linkage to the latest block is
// checked, the proof of work is not recomputed.
func ValidateNextBlock(latest Block, block Block) error {
	if block.PrevHash != latest.Hash {
		return fmt.Errorf("%w: prev hash doesn't match our latest block, got %s, exp %s", ErrBlockRejected, block.PrevHash, latest.Hash)
	}

	if block.Index != latest.Index+1 {
		return fmt.Errorf("%w: this block is not the next index, got %d, exp %d", ErrBlockRejected, block.Index, latest.Index+1)
	}

	return nil
}
