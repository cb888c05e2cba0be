package database

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Tx is the transactional information between two parties. The field order
// is part of the hashing contract, since blocks are hashed over the JSON
// form of their transactions.
type Tx struct {
	Amount float64 `json:"amount"`       // Value moving from one address to another.
	From   string  `json:"from"`         // Address giving up the value.
	To     string  `json:"to"`           // Address receiving the value.
	ID     string  `json:"id,omitempty"` // Unique id assigned when the transaction is created.
}

// NewTx constructs a new transaction with a unique id. The transaction is not
// placed in any mempool, which allows the same transaction to be shared with
// peers before each node enqueues it.
func NewTx(amount float64, from string, to string) Tx {
	return Tx{
		Amount: amount,
		From:   from,
		To:     to,
		ID:     NewID(),
	}
}

// NewID generates a unique identifier without the uuid dashes.
func NewID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s->%s:%v", tx.ID, tx.From, tx.To, tx.Amount)
}
