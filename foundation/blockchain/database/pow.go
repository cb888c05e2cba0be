package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"
)

// Difficulty represents the number of leading zeros a hash needs to be a
// solution to the proof of work puzzle.
const Difficulty = 4

// ErrPOWTimeout is returned when the configured number of attempts is used
// up before a solution is found.
var ErrPOWTimeout = errors.New("proof of work attempts exhausted")

// POWConfig represents the knobs for a proof of work search.
type POWConfig struct {
	Workers     int    // Number of goroutines sharing the nonce space. Zero means 1.
	MaxAttempts uint64 // Number of hashes allowed across all workers. Zero means unbounded.
}

// POW performs the work to find a nonce that solves the proof of work puzzle
// for the block data. The search starts at nonce 0 and each worker walks its
// own stride of the nonce space. The search can be cancelled with the context.
func POW(ctx context.Context, prevHash string, data BlockData, cfg POWConfig, ev func(v string, args ...any)) (uint64, string, error) {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	// Data that can't be serialized would never produce a solution.
	if _, err := encode(data); err != nil {
		return 0, "", fmt.Errorf("encode block data: %w", err)
	}

	ev("database: POW: MINING: started: index[%d]: trans[%d]", data.Index, len(data.Transactions))
	defer ev("database: POW: MINING: completed")

	workers := cfg.Workers
	if workers < 1 {
		workers = 1
	}

	// Each worker gets an equal share of the attempts.
	var perWorker uint64
	if cfg.MaxAttempts > 0 {
		perWorker = cfg.MaxAttempts / uint64(workers)
		if perWorker == 0 {
			perWorker = 1
		}
	}

	type solution struct {
		nonce uint64
		hash  string
	}
	found := make(chan solution, workers)

	// Once one worker finds a solution the others are told to stop.
	searchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(searchCtx)
	for w := range workers {
		g.Go(func() error {
			var attempts uint64
			for nonce := uint64(w); ; nonce += uint64(workers) {
				if gctx.Err() != nil {
					return nil
				}

				attempts++
				if perWorker > 0 && attempts > perWorker {
					return nil
				}
				if attempts%1_000_000 == 0 {
					ev("database: POW: MINING: worker[%d]: attempts[%d]", w, attempts)
				}

				hash := Hash(prevHash, data, nonce)
				if IsHashSolved(hash) {
					found <- solution{nonce: nonce, hash: hash}
					cancel()
					return nil
				}
			}
		})
	}
	g.Wait()
	close(found)

	for s := range found {

		// Verify the solution again before accepting it.
		if IsHashSolved(Hash(prevHash, data, s.nonce)) {
			ev("database: POW: MINING: SOLVED: prevBlk[%s]: nonce[%d]: newBlk[%s]", prevHash, s.nonce, s.hash)
			return s.nonce, s.hash, nil
		}
	}

	if err := ctx.Err(); err != nil {
		ev("database: POW: MINING: CANCELLED")
		return 0, "", err
	}

	return 0, "", fmt.Errorf("%w: max attempts[%d]", ErrPOWTimeout, cfg.MaxAttempts)
}

// IsHashSolved checks the hash to make sure it complies with the proof of
// work rules.
func IsHashSolved(hash string) bool {
	return strings.HasPrefix(hash, strings.Repeat("0", Difficulty))
}
