package state

import (
	"context"
	"errors"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Mine constructs a new block from the transactions in the mempool using the
// specified nonce and hashes, then appends it to the chain. The mempool is
// left empty. The caller is responsible for having solved the proof of work
// against the current mempool and latest block.
func (s *State) Mine(nonce uint64, prevHash string, hash string) database.Block {
	s.mu.Lock()
	defer s.mu.Unlock()

	index := s.db.LatestBlock().Index + 1
	block := database.NewBlock(index, s.mempool.Drain(), nonce, prevHash, hash)
	s.db.Write(block)

	s.evHandler("state: Mine: blk[%d]: trans[%d]: hash[%s]", block.Index, len(block.Transactions), block.Hash)

	return block
}

// MineNewBlock solves the proof of work puzzle for the current mempool and
// writes the new block to the chain. The puzzle is solved against a snapshot
// without holding the state lock. If the chain changed while solving, the
// work is done again against a fresh snapshot. The mining reward is added
// to the mempool for the next block. The search can be cancelled.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.miningMu.Lock()
	defer s.miningMu.Unlock()

	for {
		s.mu.RLock()
		latest := s.db.LatestBlock()
		trans := s.mempool.Copy()
		s.mu.RUnlock()

		data := database.BlockData{
			Index:        latest.Index + 1,
			Transactions: trans,
		}

		s.evHandler("state: MineNewBlock: MINING: perform POW: blk[%d]: trans[%d]", data.Index, len(trans))

		nonce, hash, err := database.POW(ctx, latest.Hash, data, s.powConfig, s.evHandler)
		if err != nil {
			return database.Block{}, err
		}

		// Just check one more time we were not cancelled.
		if ctx.Err() != nil {
			return database.Block{}, ctx.Err()
		}

		block, err := s.writeMinedBlock(latest, data, nonce, hash)
		if err != nil {
			if errors.Is(err, ErrChainChanged) {
				s.evHandler("state: MineNewBlock: MINING: %s: starting over", err)
				continue
			}
			return database.Block{}, err
		}

		return block, nil
	}
}

// AcceptBlock takes a block received from a peer and, if it links to our
// latest block, appends it to the chain and clears the mempool. The proof
// of work of the block is not recomputed.
func (s *State) AcceptBlock(block database.Block) error {
	s.evHandler("state: AcceptBlock: started : blk[%d]: hash[%s]", block.Index, block.Hash)
	defer s.evHandler("state: AcceptBlock: completed")

	// If a mining operation is running it needs to stop immediately. That
	// operation will not finish until done is called, which allows this
	// function to complete its state changes first.
	done := s.Worker.SignalCancelMining()
	defer func() {
		s.evHandler("state: AcceptBlock: signal runMiningOperation to terminate")
		done()
	}()

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := database.ValidateNextBlock(s.db.LatestBlock(), block); err != nil {
		s.evHandler("state: AcceptBlock: REJECTED: %s", err)
		return err
	}

	if block.Transactions == nil {
		block.Transactions = []database.Tx{}
	}

	s.db.Write(block)
	s.mempool.Truncate()

	return nil
}

// =============================================================================

// writeMinedBlock appends the mined block if the chain still ends with the
// block the work was performed against and the mempool still starts with the
// mined transactions.
func (s *State) writeMinedBlock(latest database.Block, data database.BlockData, nonce uint64, hash string) (database.Block, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.db.LatestBlock()
	if current.Index != latest.Index || current.Hash != latest.Hash {
		return database.Block{}, ErrChainChanged
	}

	if !s.mempool.DrainPrefix(data.Transactions) {
		return database.Block{}, ErrChainChanged
	}

	block := database.NewBlock(data.Index, data.Transactions, nonce, latest.Hash, hash)
	s.db.Write(block)

	s.evHandler("state: writeMinedBlock: blk[%d]: trans[%d]: hash[%s]", block.Index, len(block.Transactions), block.Hash)

	// The reward is paid in the next block.
	reward := database.NewTx(s.genesis.MiningReward, s.genesis.RewardFrom, s.minerAddress)
	s.mempool.Add(reward)

	s.evHandler("state: writeMinedBlock: reward tx[%s]", reward)

	return block, nil
}
