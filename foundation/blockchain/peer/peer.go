// Package peer maintains the peer related information such as the set
// of know peers and their status.
package peer

import (
	"sync"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// Peer represents information about a Node in the network.
type Peer struct {
	Host string
}

// New contructs a new info value.
func New(host string) Peer {
	return Peer{
		Host: host,
	}
}

// Match validates if the specified host matches this node.
func (p Peer) Match(host string) bool {
	return p.Host == host
}

// String implements the fmt.Stringer interface for logging.
func (p Peer) String() string {
	return p.Host
}

// =============================================================================

// PeerStatus represents what a peer reports about its ledger so the
// consensus process can compare chains.
type PeerStatus struct {
	Chain               []database.Block `json:"chain"`
	PendingTransactions []database.Tx    `json:"pending_transactions"`
}

// =============================================================================

// PeerSet represents the data representation to maintain a set of known
// peers. The set keeps the order peers were added and doesn't check for
// duplicates, callers check with Contains first.
type PeerSet struct {
	mu    sync.RWMutex
	peers []Peer
}

// NewPeerSet constructs a new info set to manage node peer information.
func NewPeerSet() *PeerSet {
	return &PeerSet{}
}

// Add adds a new node to the set.
func (ps *PeerSet) Add(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	ps.peers = append(ps.peers, peer)
}

// Contains reports whether the peer is already in the set.
func (ps *PeerSet) Contains(peer Peer) bool {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	for _, p := range ps.peers {
		if p == peer {
			return true
		}
	}

	return false
}

// Remove removes a node from the set.
func (ps *PeerSet) Remove(peer Peer) {
	ps.mu.Lock()
	defer ps.mu.Unlock()

	peers := ps.peers[:0]
	for _, p := range ps.peers {
		if p != peer {
			peers = append(peers, p)
		}
	}
	ps.peers = peers
}

// Copy returns a list of the known peers, leaving out the specified host.
func (ps *PeerSet) Copy(host string) []Peer {
	ps.mu.RLock()
	defer ps.mu.RUnlock()

	var peers []Peer
	for _, peer := range ps.peers {
		if !peer.Match(host) {
			peers = append(peers, peer)
		}
	}

	return peers
}
