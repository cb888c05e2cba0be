package private

import (
	"github.com/ardanlabs/ledger/foundation/blockchain/database"
)

// nodeTx is a transaction shared by a peer.
type nodeTx struct {
	Amount float64 `json:"amount" validate:"gt=0"`
	From   string  `json:"from" validate:"required"`
	To     string  `json:"to" validate:"required"`
	ID     string  `json:"id" validate:"required"`
}

func (nt nodeTx) toTx() database.Tx {
	return database.Tx{
		Amount: nt.Amount,
		From:   nt.From,
		To:     nt.To,
		ID:     nt.ID,
	}
}

// newBlock is a block mined by a peer. The nonce is a pointer so a missing
// nonce can be told apart from a nonce of 0.
type newBlock struct {
	Index        uint64   `json:"index" validate:"gt=1"`
	TimeStamp    int64    `json:"timestamp"`
	Transactions []nodeTx `json:"transactions" validate:"dive"`
	Nonce        *uint64  `json:"nonce" validate:"required"`
	PrevHash     string   `json:"prev_hash" validate:"required"`
	Hash         string   `json:"hash" validate:"required"`
}

func (nb newBlock) toBlock() database.Block {
	trans := make([]database.Tx, len(nb.Transactions))
	for i, nt := range nb.Transactions {
		trans[i] = nt.toTx()
	}

	return database.Block{
		Index:        nb.Index,
		TimeStamp:    nb.TimeStamp,
		Transactions: trans,
		Nonce:        *nb.Nonce,
		PrevHash:     nb.PrevHash,
		Hash:         nb.Hash,
	}
}

type register struct {
	Node string `json:"node" validate:"required"`
}

type registerBulk struct {
	Nodes []string `json:"nodes" validate:"dive,required"`
}

type note struct {
	Note string `json:"note"`
}
