package public

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// chainInfo is the full view of the node's ledger.
type chainInfo struct {
	Chain               []database.Block `json:"chain"`
	PendingTransactions []database.Tx    `json:"pending_transactions"`
	NodeAddress         string           `json:"node_address"`
	NodeHost            string           `json:"node_host"`
	Peers               []string         `json:"peers"`
}

// newTx is what a client provides to create a transaction.
type newTx struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	From   string  `json:"from" validate:"required"`
	To     string  `json:"to" validate:"required"`
}

type txResponse struct {
	Note        string      `json:"note"`
	Transaction database.Tx `json:"transaction"`
}

type blockResponse struct {
	Note  string         `json:"note"`
	Block database.Block `json:"block"`
}

// newNode is what a client provides to add a node to the network.
type newNode struct {
	Node string `json:"node" validate:"required"`
}

type consensusResponse struct {
	Note     string           `json:"note"`
	Replaced bool             `json:"replaced"`
	Source   string           `json:"source,omitempty"`
	Chain    []database.Block `json:"chain"`
}

type note struct {
	Note string `json:"note"`
}
