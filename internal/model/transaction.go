package model

import "time"

// Transaction is a dated transfer of a positive amount between two
// distinct accounts. Transactions are immutable: once recorded, the
// amount and endpoints never change, and the only amendment the engine
// supports is deletion with balance reversal.
type Transaction struct {
	ID            string    `json:"id"`
	FromAccountID string    `json:"fromAccountId"`
	ToAccountID   string    `json:"toAccountId"`
	Amount        int64     `json:"amount"`
	Description   string    `json:"description"`
	Date          Date      `json:"date"`
	Category      string    `json:"category,omitempty"`
	Tags          []string  `json:"tags,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// Touches reports whether the transaction has accountID on either side.
func (t Transaction) Touches(accountID string) bool {
	return t.FromAccountID == accountID || t.ToAccountID == accountID
}
