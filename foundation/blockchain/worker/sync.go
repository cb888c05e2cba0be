package worker

// syncOperations runs a consensus round on every tick.
func (w *Worker) syncOperations() {
	w.evHandler("worker: syncOperations: G started")
	defer w.evHandler("worker: syncOperations: G completed")

	for {
		select {
		case <-w.ticker.C:
			if !w.isShutdown() {
				w.Sync()
			}
		case <-w.shut:
			w.evHandler("worker: syncOperations: received shut signal")
			return
		}
	}
}

// Sync asks every known peer for its chain and replaces the local chain and
// mempool when a peer has a longer valid chain.
func (w *Worker) Sync() {
	w.evHandler("worker: sync: started")
	defer w.evHandler("worker: sync: completed")

	result := w.state.Consensus(w.ctx)

	switch result.Replaced {
	case true:
		w.evHandler("worker: sync: chain replaced: peer[%s]: length[%d]", result.Source, len(result.Chain))
	default:
		w.evHandler("worker: sync: chain kept: length[%d]", len(result.Chain))
	}
}
