package t212sync

import (
	"github.com/etnz/t212sync/date"
)

// Transaction is a transaction in the ledger's import schema.
//
// Empty ImportedPayee, Category and Notes mean "not set", they are left out of the
// JSON encoding.
type Transaction struct {
	Account       string    `json:"account"`
	Date          date.Date `json:"date"`
	Amount        Amount    `json:"amount"`
	ImportedPayee string    `json:"imported_payee,omitempty"`
	Category      string    `json:"category,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	ImportedID    string    `json:"imported_id"`
	Cleared       bool      `json:"cleared"`
}

// MarshalJSON writes the transaction with a stable field order, the same as the
// struct declaration.
func (tx Transaction) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Append("account", tx.Account)
	w.Append("date", tx.Date)
	w.Append("amount", tx.Amount)
	w.Optional("imported_payee", tx.ImportedPayee)
	w.Optional("category", tx.Category)
	w.Optional("notes", tx.Notes)
	w.Append("imported_id", tx.ImportedID)
	w.Append("cleared", tx.Cleared)
	return w.MarshalJSON()
}

// Net returns the sum of all transaction amounts.
func Net(txs []Transaction) Amount {
	var sum Amount
	for _, tx := range txs {
		sum += tx.Amount
	}
	return sum
}
