// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ardanlabs/ledger/business/sys/metrics"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/events"
	"github.com/ardanlabs/ledger/foundation/validate"
	"github.com/ardanlabs/ledger/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of ledger endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
	WS    websocket.Upgrader
	Evts  *events.Events
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return nil
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Blockchain returns the chain, the pending transactions and the node
// identity.
func (h Handlers) Blockchain(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	status := h.State.RetrieveStatus()

	knownPeers := h.State.RetrieveKnownPeers()
	peers := make([]string, len(knownPeers))
	for i, pr := range knownPeers {
		peers[i] = pr.Host
	}

	info := chainInfo{
		Chain:               status.Chain,
		PendingTransactions: status.PendingTransactions,
		NodeAddress:         h.State.RetrieveMinerAddress(),
		NodeHost:            h.State.RetrieveHost(),
		Peers:               peers,
	}

	return web.Respond(ctx, w, info, http.StatusOK)
}

// Genesis returns the genesis information.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveGenesis(), http.StatusOK)
}

// BlockByIndex returns the block at the specified index.
func (h Handlers) BlockByIndex(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	index, err := strconv.ParseUint(web.Param(r, "index"), 10, 64)
	if err != nil {
		return errs.NewTrusted(fmt.Errorf("invalid block index: %w", err), http.StatusBadRequest)
	}

	block, err := h.State.QueryBlockByIndex(index)
	if err != nil {
		if errors.Is(err, state.ErrNotFound) {
			return errs.NewTrusted(err, http.StatusNotFound)
		}
		return fmt.Errorf("query: index[%d]: %w", index, err)
	}

	return web.Respond(ctx, w, block, http.StatusOK)
}

// SubmitTransaction creates a new transaction, adds it to the mempool and
// shares it with the known peers.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nt newTx
	if err := web.Decode(r, &nt); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(nt); err != nil {
		return err
	}

	tx := h.State.CreateTransaction(nt.Amount, nt.From, nt.To)
	index := h.State.UpsertMempool(tx)

	h.Log.Infow("add tran", "traceid", v.TraceID, "tx", tx, "blk", index)

	h.State.Worker.SignalShareTx(tx)

	resp := txResponse{
		Note:        fmt.Sprintf("Transaction will be added in block %d.", index),
		Transaction: tx,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// Mine performs the proof of work for the pending transactions, adds the
// new block to the chain and shares it with the known peers.
func (h Handlers) Mine(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	block, err := h.State.MineNewBlock(ctx)
	if err != nil {
		if errors.Is(err, database.ErrPOWTimeout) {
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return fmt.Errorf("mine: %w", err)
	}

	metrics.AddBlock(metrics.OriginMined)
	h.Log.Infow("mined block", "traceid", v.TraceID, "blk", block.Index, "hash", block.Hash)

	h.State.Worker.SignalShareBlock(block)

	resp := blockResponse{
		Note:  "New block mined successfully",
		Block: block,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// SignalMining signals the background worker to mine the pending
// transactions.
func (h Handlers) SignalMining(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	h.State.Worker.SignalStartMining()

	return web.Respond(ctx, w, note{Note: "Mining signaled."}, http.StatusOK)
}

// BroadcastNode registers a new node with this node and with every known
// peer, then registers the whole network with the new node.
func (h Handlers) BroadcastNode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nn newNode
	if err := web.Decode(r, &nn); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(nn); err != nil {
		return err
	}

	if err := h.State.NetBroadcastPeer(ctx, peer.New(nn.Node)); err != nil {
		if errors.Is(err, state.ErrPeerIsSelf) {
			return errs.NewTrusted(err, http.StatusBadRequest)
		}

		// Unreachable peers don't stop the registration.
		h.Log.Infow("broadcast node", "traceid", v.TraceID, "node", nn.Node, "WARNING", err)
	}

	return web.Respond(ctx, w, note{Note: "New node registered with network successfully."}, http.StatusOK)
}

// Consensus runs a consensus round with the known peers.
func (h Handlers) Consensus(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	result := h.State.Consensus(ctx)

	resp := consensusResponse{
		Note:     "Current chain has not been replaced.",
		Replaced: result.Replaced,
		Source:   result.Source,
		Chain:    result.Chain,
	}

	if result.Replaced {
		metrics.AddChainReplaced()
		resp.Note = "This chain has been replaced."
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}
