package state_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/consensus"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"github.com/ardanlabs/ledger/foundation/blockchain/state"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	minerAddress = "6c0e1f4cb8ba4e0a9d3e2cf0d5b7e1aa"
	host         = "localhost:9080"
)

func newState(t *testing.T) *state.State {
	st, err := state.New(state.Config{
		MinerAddress: minerAddress,
		Host:         host,
		POW:          database.POWConfig{Workers: 2},
		PeerTimeout:  2 * time.Second,
		EvHandler:    func(v string, args ...any) { t.Logf("\t\t"+v, args...) },
	})
	if err != nil {
		t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
	}

	return st
}

// =============================================================================

func Test_Genesis(t *testing.T) {
	t.Log("Given the need to start a new ledger.")
	{
		st := newState(t)

		chain := st.RetrieveChain()
		if len(chain) != 1 {
			t.Fatalf("\t%s\tShould have a single block: %d", failed, len(chain))
		}
		t.Logf("\t%s\tShould have a single block.", success)

		gen := chain[0]
		if gen.Index != 1 || gen.Nonce != 100 || gen.PrevHash != "0" || gen.Hash != "0" || gen.Transactions == nil || len(gen.Transactions) != 0 {
			t.Fatalf("\t%s\tShould have the fixed genesis block: %+v", failed, gen)
		}
		t.Logf("\t%s\tShould have the fixed genesis block.", success)

		if !database.IsValidChain(chain) {
			t.Fatalf("\t%s\tShould have a valid chain.", failed)
		}
		t.Logf("\t%s\tShould have a valid chain.", success)

		if st.RetrieveMinerAddress() != minerAddress || st.RetrieveHost() != host {
			t.Fatalf("\t%s\tShould keep the node identity.", failed)
		}
		t.Logf("\t%s\tShould keep the node identity.", success)

		if st.RetrieveGenesis().MiningReward != 12.5 {
			t.Fatalf("\t%s\tShould use the default mining reward: %v", failed, st.RetrieveGenesis().MiningReward)
		}
		t.Logf("\t%s\tShould use the default mining reward.", success)
	}
}

func Test_Mine(t *testing.T) {
	t.Log("Given the need to append a block using the mempool.")
	{
		st := newState(t)

		tx1 := st.CreateTransaction(100, "alice", "bob")
		tx2 := st.CreateTransaction(50, "bob", "carol")

		if st.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould not enqueue created transactions.", failed)
		}
		t.Logf("\t%s\tShould not enqueue created transactions.", success)

		if tx1.ID == "" || tx1.ID == tx2.ID {
			t.Fatalf("\t%s\tShould create unique ids: %q %q", failed, tx1.ID, tx2.ID)
		}
		t.Logf("\t%s\tShould create unique ids.", success)

		for _, tx := range []database.Tx{tx1, tx2} {
			if idx := st.UpsertMempool(tx); idx != 2 {
				t.Fatalf("\t%s\tShould expect the transaction in block 2: %d", failed, idx)
			}
		}
		t.Logf("\t%s\tShould expect the transactions in block 2.", success)

		block := st.Mine(100, "0", "h2")
		if block.Index != 2 || len(block.Transactions) != 2 || block.Transactions[0] != tx1 || block.Transactions[1] != tx2 {
			t.Fatalf("\t%s\tShould mine the pool in order: %+v", failed, block)
		}
		t.Logf("\t%s\tShould mine the pool in order.", success)

		if st.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould drain the mempool.", failed)
		}
		t.Logf("\t%s\tShould drain the mempool.", success)

		if block.TimeStamp == 0 {
			t.Fatalf("\t%s\tShould stamp the block.", failed)
		}
		t.Logf("\t%s\tShould stamp the block.", success)

		next := st.Mine(200, "h2", "h3")
		if next.Index != 3 || len(next.Transactions) != 0 || st.RetrieveLatestBlock().Hash != "h3" {
			t.Fatalf("\t%s\tShould keep indexes increasing: %+v", failed, next)
		}
		t.Logf("\t%s\tShould keep indexes increasing.", success)
	}
}

func Test_MineNewBlock(t *testing.T) {
	t.Log("Given the need to mine blocks with proof of work.")
	{
		st := newState(t)
		tx := st.CreateTransaction(100, "alice", "bob")
		st.UpsertMempool(tx)

		block, err := st.MineNewBlock(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine a block.", success)

		if block.Index != 2 || len(block.Transactions) != 1 || block.Transactions[0] != tx || !database.IsHashSolved(block.Hash) {
			t.Fatalf("\t%s\tShould mine the pending transaction: %+v", failed, block)
		}
		t.Logf("\t%s\tShould mine the pending transaction.", success)

		pool := st.RetrieveMempool()
		if len(pool) != 1 || pool[0].Amount != 12.5 || pool[0].From != "00" || pool[0].To != minerAddress {
			t.Fatalf("\t%s\tShould queue the mining reward: %+v", failed, pool)
		}
		t.Logf("\t%s\tShould queue the mining reward.", success)

		next, err := st.MineNewBlock(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a second block: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to mine a second block.", success)

		if len(next.Transactions) != 1 || next.Transactions[0] != pool[0] {
			t.Fatalf("\t%s\tShould pay the reward in the next block: %+v", failed, next.Transactions)
		}
		t.Logf("\t%s\tShould pay the reward in the next block.", success)

		if err := database.ValidateChain(st.RetrieveChain(), nil); err != nil {
			t.Fatalf("\t%s\tShould have a valid chain: %v", failed, err)
		}
		t.Logf("\t%s\tShould have a valid chain.", success)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := st.MineNewBlock(ctx); !errors.Is(err, context.Canceled) {
			t.Fatalf("\t%s\tShould stop mining when cancelled: %v", failed, err)
		}
		t.Logf("\t%s\tShould stop mining when cancelled.", success)

		if len(st.RetrieveChain()) != 3 {
			t.Fatalf("\t%s\tShould not change the chain when cancelled.", failed)
		}
		t.Logf("\t%s\tShould not change the chain when cancelled.", success)
	}
}

func Test_AcceptBlock(t *testing.T) {
	t.Log("Given the need to accept blocks mined by peers.")
	{
		miner := newState(t)
		node := newState(t)

		block, err := miner.MineNewBlock(context.Background())
		if err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}

		node.UpsertMempool(node.CreateTransaction(1, "a", "b"))

		if err := node.AcceptBlock(block); err != nil {
			t.Fatalf("\t%s\tShould accept a linked block: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a linked block.", success)

		if node.RetrieveLatestBlock().Hash != block.Hash || node.QueryMempoolLength() != 0 {
			t.Fatalf("\t%s\tShould append the block and clear the mempool.", failed)
		}
		t.Logf("\t%s\tShould append the block and clear the mempool.", success)

		if err := node.AcceptBlock(block); !errors.Is(err, database.ErrBlockRejected) {
			t.Fatalf("\t%s\tShould reject a block that doesn't link: %v", failed, err)
		}
		t.Logf("\t%s\tShould reject a block that doesn't link.", success)

		if len(node.RetrieveChain()) != 2 {
			t.Fatalf("\t%s\tShould not change the chain on reject.", failed)
		}
		t.Logf("\t%s\tShould not change the chain on reject.", success)
	}
}

func Test_Resolve(t *testing.T) {
	t.Log("Given the need to reconcile chains with peers.")
	{
		peerNode := newState(t)
		for range 2 {
			if _, err := peerNode.MineNewBlock(context.Background()); err != nil {
				t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
			}
		}

		st := newState(t)
		st.UpsertMempool(st.CreateTransaction(1, "a", "b"))

		report := consensus.Report{
			Host:                "peer",
			Chain:               peerNode.RetrieveChain(),
			PendingTransactions: peerNode.RetrieveMempool(),
		}

		result := st.Resolve([]consensus.Report{report})
		if !result.Replaced || result.Source != "peer" {
			t.Fatalf("\t%s\tShould replace with the longer chain: %+v", failed, result)
		}
		t.Logf("\t%s\tShould replace with the longer chain.", success)

		if len(st.RetrieveChain()) != 3 || st.RetrieveLatestBlock().Hash != peerNode.RetrieveLatestBlock().Hash {
			t.Fatalf("\t%s\tShould adopt the peer chain.", failed)
		}
		t.Logf("\t%s\tShould adopt the peer chain.", success)

		pool := st.RetrieveMempool()
		if len(pool) != 1 || pool[0] != report.PendingTransactions[0] {
			t.Fatalf("\t%s\tShould adopt the peer mempool: %+v", failed, pool)
		}
		t.Logf("\t%s\tShould adopt the peer mempool.", success)

		result = st.Resolve([]consensus.Report{{Host: "short", Chain: peerNode.RetrieveChain()[:2]}})
		if result.Replaced || len(st.RetrieveChain()) != 3 {
			t.Fatalf("\t%s\tShould never shorten the chain: %+v", failed, result)
		}
		t.Logf("\t%s\tShould never shorten the chain.", success)
	}
}

func Test_QueryBlockByIndex(t *testing.T) {
	t.Log("Given the need to lookup blocks by index.")
	{
		st := newState(t)

		block, err := st.QueryBlockByIndex(1)
		if err != nil || block.Hash != "0" {
			t.Fatalf("\t%s\tShould find the genesis block: %v", failed, err)
		}
		t.Logf("\t%s\tShould find the genesis block.", success)

		if _, err := st.QueryBlockByIndex(99); !errors.Is(err, state.ErrNotFound) {
			t.Fatalf("\t%s\tShould get a not found error: %v", failed, err)
		}
		t.Logf("\t%s\tShould get a not found error.", success)
	}
}

func Test_KnownPeers(t *testing.T) {
	t.Log("Given the need to register peers.")
	{
		st := newState(t)

		if err := st.AddKnownPeer(peer.New(host)); !errors.Is(err, state.ErrPeerIsSelf) {
			t.Fatalf("\t%s\tShould not register itself: %v", failed, err)
		}
		t.Logf("\t%s\tShould not register itself.", success)

		if err := st.AddKnownPeer(peer.New("foo")); err != nil {
			t.Fatalf("\t%s\tShould register a new peer: %v", failed, err)
		}
		t.Logf("\t%s\tShould register a new peer.", success)

		if err := st.AddKnownPeer(peer.New("foo")); !errors.Is(err, state.ErrPeerExists) {
			t.Fatalf("\t%s\tShould not register a peer twice: %v", failed, err)
		}
		t.Logf("\t%s\tShould not register a peer twice.", success)

		peers := st.RetrieveKnownPeers()
		if len(peers) != 1 || peers[0].Host != "foo" || !st.QueryKnownPeer(peer.New("foo")) {
			t.Fatalf("\t%s\tShould list the registered peer: %v", failed, peers)
		}
		t.Logf("\t%s\tShould list the registered peer.", success)

		st.RemoveKnownPeer(peer.New("foo"))
		if len(st.RetrieveKnownPeers()) != 0 {
			t.Fatalf("\t%s\tShould remove the peer.", failed)
		}
		t.Logf("\t%s\tShould remove the peer.", success)
	}
}

func Test_Network(t *testing.T) {
	t.Log("Given the need to talk to peers.")
	{
		remote := newState(t)
		if _, err := remote.MineNewBlock(context.Background()); err != nil {
			t.Fatalf("\t%s\tShould be able to mine a block: %v", failed, err)
		}

		registered := make(chan []string, 1)
		mux := http.NewServeMux()
		mux.HandleFunc("GET /v1/node/status", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(remote.RetrieveStatus())
		})
		mux.HandleFunc("POST /v1/node/block/receive", func(w http.ResponseWriter, r *http.Request) {
			var block database.Block
			json.NewDecoder(r.Body).Decode(&block)
			if err := remote.AcceptBlock(block); err != nil {
				w.WriteHeader(http.StatusNotAcceptable)
				w.Write([]byte(`{"error":"block rejected"}`))
				return
			}
			w.Write([]byte(`{"note":"accepted"}`))
		})
		mux.HandleFunc("POST /v1/node/register/bulk", func(w http.ResponseWriter, r *http.Request) {
			var req state.BulkRegisterRequest
			json.NewDecoder(r.Body).Decode(&req)
			select {
			case registered <- req.Nodes:
			default:
			}
			w.WriteHeader(http.StatusNoContent)
		})

		srv := httptest.NewServer(mux)
		defer srv.Close()

		dead := httptest.NewServer(http.NotFoundHandler())
		dead.Close()

		st := newState(t)
		st.AddKnownPeer(peer.New(dead.URL))
		st.AddKnownPeer(peer.New(srv.URL))

		t.Logf("\tTest 0:\tWhen collecting peer reports.")
		{
			reports := st.NetRequestPeerReports(context.Background())
			if len(reports) != 1 || reports[0].Host != srv.URL || len(reports[0].Chain) != 2 {
				t.Fatalf("\t%s\tTest 0:\tShould skip the unreachable peer: %+v", failed, reports)
			}
			t.Logf("\t%s\tTest 0:\tShould skip the unreachable peer.", success)

			if _, err := st.NetRequestPeerStatus(context.Background(), peer.New(dead.URL)); !errors.Is(err, state.ErrPeerUnreachable) {
				t.Fatalf("\t%s\tTest 0:\tShould get an unreachable error: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould get an unreachable error.", success)
		}

		t.Logf("\tTest 1:\tWhen broadcasting a block the peer can't link.")
		{
			block, err := st.MineNewBlock(context.Background())
			if err != nil {
				t.Fatalf("\t%s\tTest 1:\tShould be able to mine a block: %v", failed, err)
			}

			err = st.NetSendBlockToPeers(context.Background(), block)
			if !errors.Is(err, database.ErrBlockRejected) {
				t.Fatalf("\t%s\tTest 1:\tShould get the peer rejection: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get the peer rejection.", success)

			if !errors.Is(err, state.ErrPeerUnreachable) {
				t.Fatalf("\t%s\tTest 1:\tShould get the unreachable peer: %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould get the unreachable peer.", success)
		}

		t.Logf("\tTest 2:\tWhen registering a new node.")
		{
			st.RemoveKnownPeer(peer.New(dead.URL))
			st.RemoveKnownPeer(peer.New(srv.URL))

			if err := st.NetBroadcastPeer(context.Background(), peer.New(srv.URL)); err != nil {
				t.Fatalf("\t%s\tTest 2:\tShould be able to broadcast the node: %v", failed, err)
			}
			t.Logf("\t%s\tTest 2:\tShould be able to broadcast the node.", success)

			var nodes []string
			select {
			case nodes = <-registered:
			case <-time.After(time.Second):
			}

			if len(nodes) != 2 || nodes[0] != host || nodes[1] != srv.URL {
				t.Fatalf("\t%s\tTest 2:\tShould send the node list: %v", failed, nodes)
			}
			t.Logf("\t%s\tTest 2:\tShould send the node list.", success)
		}
	}
}
