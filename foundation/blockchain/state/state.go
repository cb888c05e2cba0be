// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"errors"
	"sync"
	"time"

	"github.com/ardanlabs/ledger/foundation/blockchain/database"
	"github.com/ardanlabs/ledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/ledger/foundation/blockchain/mempool"
	"github.com/ardanlabs/ledger/foundation/blockchain/peer"
)

// Set of errors returned by the state api.
var (
	ErrNotFound        = errors.New("not found")
	ErrChainChanged    = errors.New("chain changed while mining")
	ErrPeerIsSelf      = errors.New("current node cannot be registered")
	ErrPeerExists      = errors.New("node already registered")
	ErrPeerUnreachable = errors.New("peer unreachable")
)

// =============================================================================

// EventHandler defines a function that is called when events
// occur in the processing of the blockchain.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining, peer updates, and transaction sharing.
type Worker interface {
	Shutdown()
	Sync()
	SignalStartMining()
	SignalCancelMining() (done func())
	SignalShareTx(tx database.Tx)
	SignalShareBlock(block database.Block)
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	MinerAddress string
	Host         string
	Genesis      genesis.Genesis
	KnownPeers   *peer.PeerSet
	POW          database.POWConfig
	PeerTimeout  time.Duration
	EvHandler    EventHandler
}

// State manages the blockchain database. All changes to the chain and the
// mempool are serialized through the state mutex.
type State struct {
	mu       sync.RWMutex
	miningMu sync.Mutex

	minerAddress string
	host         string
	powConfig    database.POWConfig
	peerTimeout  time.Duration
	evHandler    EventHandler

	genesis    genesis.Genesis
	knownPeers *peer.PeerSet
	mempool    *mempool.Mempool
	db         *database.Database

	Worker Worker
}

// New constructs a new blockchain for data management. The chain starts
// with the genesis block already in place.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	knownPeers := cfg.KnownPeers
	if knownPeers == nil {
		knownPeers = peer.NewPeerSet()
	}

	minerAddress := cfg.MinerAddress
	if minerAddress == "" {
		minerAddress = database.NewID()
	}

	gen := cfg.Genesis
	if gen == (genesis.Genesis{}) {
		gen = genesis.Default()
	}

	peerTimeout := cfg.PeerTimeout
	if peerTimeout == 0 {
		peerTimeout = 5 * time.Second
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		minerAddress: minerAddress,
		host:         cfg.Host,
		powConfig:    cfg.POW,
		peerTimeout:  peerTimeout,
		evHandler:    ev,

		genesis:    gen,
		knownPeers: knownPeers,
		mempool:    mempool.New(),
		db:         database.New(),

		Worker: nopWorker{},
	}

	ev("state: New: genesis block: hash[%s]", state.db.LatestBlock().Hash)

	// The Worker is replaced when worker.Run is called, which starts
	// everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	s.Worker.Shutdown()

	return nil
}

// =============================================================================

// nopWorker is used until a real worker registers itself with the state.
type nopWorker struct{}

func (nopWorker) Shutdown()                       {}
func (nopWorker) Sync()                           {}
func (nopWorker) SignalStartMining()              {}
func (nopWorker) SignalCancelMining() func()      { return func() {} }
func (nopWorker) SignalShareTx(database.Tx)       {}
func (nopWorker) SignalShareBlock(database.Block) {}
