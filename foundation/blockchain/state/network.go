package state

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/consensus"
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
	"golang.org/x/sync/errgroup"
)

const baseURL = "%s/v1/node"

// RegisterRequest is the body used to register a single node with a peer.
type RegisterRequest struct {
	Node string `json:"node"`
}

// BulkRegisterRequest is the body used to register a set of nodes with a peer.
type BulkRegisterRequest struct {
	Nodes []string `json:"nodes"`
}

// NetSendBlockToPeers takes the new mined block and sends it to all known
// peers in parallel. Every peer failure is returned joined together.
func (s *State) NetSendBlockToPeers(ctx context.Context, block database.Block) error {
	s.evHandler("state: NetSendBlockToPeers: started: blk[%d]", block.Index)
	defer s.evHandler("state: NetSendBlockToPeers: completed")

	errs := s.fanOut(ctx, func(ctx context.Context, pr peer.Peer) error {
		url := fmt.Sprintf("%s/block/receive", nodeURL(pr))
		if err := s.send(ctx, http.MethodPost, url, block, nil); err != nil {
			return err
		}

		s.evHandler("state: NetSendBlockToPeers: sent to peer[%s]", pr)
		return nil
	})

	return errors.Join(errs...)
}

// NetSendTxToPeers shares a new transaction with the known peers. Failures
// are reported through the event handler only.
func (s *State) NetSendTxToPeers(ctx context.Context, tx database.Tx) {
	s.evHandler("state: NetSendTxToPeers: started: tx[%s]", tx)
	defer s.evHandler("state: NetSendTxToPeers: completed")

	s.fanOut(ctx, func(ctx context.Context, pr peer.Peer) error {
		url := fmt.Sprintf("%s/tx/submit", nodeURL(pr))
		if err := s.send(ctx, http.MethodPost, url, tx, nil); err != nil {
			s.evHandler("state: NetSendTxToPeers: WARNING: %s", err)
			return err
		}
		return nil
	})
}

// NetRequestPeerStatus asks the peer for its chain and pending transactions.
func (s *State) NetRequestPeerStatus(ctx context.Context, pr peer.Peer) (peer.PeerStatus, error) {
	s.evHandler("state: NetRequestPeerStatus: started: %s", pr)
	defer s.evHandler("state: NetRequestPeerStatus: completed: %s", pr)

	url := fmt.Sprintf("%s/status", nodeURL(pr))

	var ps peer.PeerStatus
	if err := s.send(ctx, http.MethodGet, url, nil, &ps); err != nil {
		return peer.PeerStatus{}, err
	}

	s.evHandler("state: NetRequestPeerStatus: peer-node[%s]: chain[%d]: trans[%d]", pr, len(ps.Chain), len(ps.PendingTransactions))

	return ps, nil
}

// NetRequestPeerReports collects the status of every known peer in parallel.
// Unreachable peers contribute nothing. The reports are returned in the order
// the peers are known.
func (s *State) NetRequestPeerReports(ctx context.Context) []consensus.Report {
	s.evHandler("state: NetRequestPeerReports: started")
	defer s.evHandler("state: NetRequestPeerReports: completed")

	peers := s.RetrieveKnownPeers()
	reports := make([]*consensus.Report, len(peers))

	var g errgroup.Group
	for i, pr := range peers {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
			defer cancel()

			ps, err := s.NetRequestPeerStatus(ctx, pr)
			if err != nil {
				s.evHandler("state: NetRequestPeerReports: WARNING: %s", err)
				return nil
			}

			reports[i] = &consensus.Report{
				Host:                pr.Host,
				Chain:               ps.Chain,
				PendingTransactions: ps.PendingTransactions,
			}
			return nil
		})
	}
	g.Wait()

	var out []consensus.Report
	for _, r := range reports {
		if r != nil {
			out = append(out, *r)
		}
	}

	return out
}

// NetRegisterPeer asks the peer to register the specified node.
func (s *State) NetRegisterPeer(ctx context.Context, pr peer.Peer, node peer.Peer) error {
	url := fmt.Sprintf("%s/register", nodeURL(pr))
	return s.send(ctx, http.MethodPost, url, RegisterRequest{Node: node.Host}, nil)
}

// NetBulkRegister asks the peer to register all the specified nodes.
func (s *State) NetBulkRegister(ctx context.Context, pr peer.Peer, nodes []peer.Peer) error {
	hosts := make([]string, len(nodes))
	for i, node := range nodes {
		hosts[i] = node.Host
	}

	url := fmt.Sprintf("%s/register/bulk", nodeURL(pr))
	return s.send(ctx, http.MethodPost, url, BulkRegisterRequest{Nodes: hosts}, nil)
}

// NetBroadcastPeer registers the new node locally, asks every known peer to
// register it, then registers this node and all of its peers with the new
// node. Peer failures are returned joined together.
func (s *State) NetBroadcastPeer(ctx context.Context, node peer.Peer) error {
	s.evHandler("state: NetBroadcastPeer: started: %s", node)
	defer s.evHandler("state: NetBroadcastPeer: completed: %s", node)

	if err := s.AddKnownPeer(node); err != nil && !errors.Is(err, ErrPeerExists) {
		return err
	}

	errs := s.fanOut(ctx, func(ctx context.Context, pr peer.Peer) error {
		if pr.Match(node.Host) {
			return nil
		}
		return s.NetRegisterPeer(ctx, pr, node)
	})

	nodes := append([]peer.Peer{peer.New(s.host)}, s.RetrieveKnownPeers()...)

	ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
	defer cancel()

	if err := s.NetBulkRegister(ctx, node, nodes); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// =============================================================================

// fanOut executes the function against every known peer in parallel, each
// call bounded by the peer timeout. The errors returned are in no particular
// order.
func (s *State) fanOut(ctx context.Context, fn func(ctx context.Context, pr peer.Peer) error) []error {
	var (
		mu   sync.Mutex
		errs []error
	)

	var g errgroup.Group
	for _, pr := range s.RetrieveKnownPeers() {
		g.Go(func() error {
			ctx, cancel := context.WithTimeout(ctx, s.peerTimeout)
			defer cancel()

			if err := fn(ctx, pr); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	g.Wait()

	return errs
}

// send is a helper function to send an HTTP request to a node. Transport
// failures are wrapped with ErrPeerUnreachable.
func (s *State) send(ctx context.Context, method string, url string, dataSend any, dataRecv any) error {
	var body io.Reader
	if dataSend != nil {
		data, err := json.Marshal(dataSend)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}

	if dataSend != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	client := http.Client{Timeout: s.peerTimeout}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w: %s", url, ErrPeerUnreachable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	if resp.StatusCode != http.StatusOK {
		msg, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("%s: %w: %s", url, ErrPeerUnreachable, err)
		}

		if resp.StatusCode == http.StatusNotAcceptable {
			return fmt.Errorf("%s: %w: %s", url, database.ErrBlockRejected, bytes.TrimSpace(msg))
		}

		return fmt.Errorf("%s: status[%d]: %s", url, resp.StatusCode, bytes.TrimSpace(msg))
	}

	if dataRecv != nil {
		if err := json.NewDecoder(resp.Body).Decode(dataRecv); err != nil {
			return fmt.Errorf("%s: decode: %w", url, err)
		}
	}

	return nil
}

// nodeURL returns the private api root for the peer. Hosts without a scheme
// are reached over http.
func nodeURL(pr peer.Peer) string {
	host := strings.TrimSuffix(pr.Host, "/")
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}

	return fmt.Sprintf(baseURL, host)
}
