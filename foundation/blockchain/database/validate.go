package database

import (
	"errors"
	"fmt"
)

// ErrInvalidChain is returned when a chain fails the genesis, linkage or
// proof of work checks.
var ErrInvalidChain = errors.New("invalid chain")

// ValidateChain verifies the integrity of an entire chain. The genesis block
// must carry the fixed genesis values and every block after it must link to
// its predecessor and solve the proof of work puzzle.
//
// The stored hash of a block is trusted for linkage, the proof of work is
// always recomputed. The block index is read from the block and not compared
// to its position, and transaction ids are not checked for uniqueness.
func ValidateChain(chain []Block, ev func(v string, args ...any)) error {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	if len(chain) == 0 {
		return nil
	}

	ev("database: ValidateChain: validate: blk[%d]: check: genesis", chain[0].Index)

	if !chain[0].IsGenesis() {
		return fmt.Errorf("%w: genesis block doesn't match, nonce[%d] prev[%s] hash[%s] trans[%d]", ErrInvalidChain, chain[0].Nonce, chain[0].PrevHash, chain[0].Hash, len(chain[0].Transactions))
	}

	for i := 1; i < len(chain); i++ {
		prev := chain[i-1]
		block := chain[i]

		ev("database: ValidateChain: validate: blk[%d]: check: block hash has been solved", block.Index)

		hash := Hash(prev.Hash, block.Data(), block.Nonce)
		if !IsHashSolved(hash) {
			return fmt.Errorf("%w: blk[%d]: %s invalid block hash", ErrInvalidChain, block.Index, hash)
		}

		ev("database: ValidateChain: validate: blk[%d]: check: prev hash does match prev block", block.Index)

		if block.PrevHash != prev.Hash {
			return fmt.Errorf("%w: blk[%d]: prev hash doesn't match, got %s, exp %s", ErrInvalidChain, block.Index, block.PrevHash, prev.Hash)
		}
	}

	return nil
}

// IsValidChain reports whether the chain passes ValidateChain.
func IsValidChain(chain []Block) bool {
	return ValidateChain(chain, nil) == nil
}
