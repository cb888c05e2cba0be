// Package private maintains the group of handlers for node to node access.
package private

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ardanlabs/ledger/business/sys/metrics"
	"github.com/ardanlabs/ledger/business/web/errs"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
	"github.com/ardanlabs/ledger/foundation/validate"
	"github.com/ardanlabs/ledger/foundation/web"
	"go.uber.org/zap"
)

// Handlers manages the set of node to node endpoints.
type Handlers struct {
	Log   *zap.SugaredLogger
	State *state.State
}

// Status returns the chain and mempool so peers can run consensus.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, h.State.RetrieveStatus(), http.StatusOK)
}

// SubmitNodeTransaction adds a transaction shared by a peer to the mempool
// as it was received.
func (h Handlers) SubmitNodeTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nt nodeTx
	if err := web.Decode(r, &nt); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(nt); err != nil {
		return err
	}

	tx := nt.toTx()

	index := h.State.UpsertMempool(tx)

	h.Log.Infow("add node tran", "traceid", v.TraceID, "tx", tx, "blk", index)

	return web.Respond(ctx, w, note{Note: fmt.Sprintf("Transaction will be added in block %d.", index)}, http.StatusOK)
}

// ReceiveBlock takes a block mined by a peer and, if it links to the
// latest block, adds it to the chain.
func (h Handlers) ReceiveBlock(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var nb newBlock
	if err := web.Decode(r, &nb); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(nb); err != nil {
		return err
	}

	block := nb.toBlock()
	if err := h.State.AcceptBlock(block); err != nil {
		if errors.Is(err, database.ErrBlockRejected) {
			metrics.AddRejectedBlock()
			return errs.NewTrusted(errors.New("new block rejected"), http.StatusNotAcceptable)
		}
		return fmt.Errorf("accept block: %w", err)
	}

	metrics.AddBlock(metrics.OriginPeer)

	resp := struct {
		Note  string         `json:"note"`
		Block database.Block `json:"block"`
	}{
		Note:  "New block received and accepted.",
		Block: block,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// RegisterNode adds the node to the set of known peers. This node and nodes
// already known are skipped.
func (h Handlers) RegisterNode(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var reg register
	if err := web.Decode(r, &reg); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(reg); err != nil {
		return err
	}

	h.addPeer(ctx, reg.Node)

	return web.Respond(ctx, w, note{Note: "New node registered successfully."}, http.StatusOK)
}

// RegisterNodes adds a set of nodes to the set of known peers.
func (h Handlers) RegisterNodes(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var reg registerBulk
	if err := web.Decode(r, &reg); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	if err := validate.Check(reg); err != nil {
		return err
	}

	for _, node := range reg.Nodes {
		h.addPeer(ctx, node)
	}

	return web.Respond(ctx, w, note{Note: "Bulk registration successful."}, http.StatusOK)
}

func (h Handlers) addPeer(ctx context.Context, host string) {
	if err := h.State.AddKnownPeer(peer.New(host)); err != nil {
		h.Log.Infow("register node", "traceid", web.GetTraceID(ctx), "node", host, "status", err)
	}
}
