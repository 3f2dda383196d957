// Package ledger imports normalized transactions into a personal-finance ledger.
//
// A Sink mirrors the life cycle of a ledger client: initialize a session on a data
// directory, open a budget, import, close. Imports are idempotent on the transaction
// imported id, so the same export can be imported twice without duplicates.
package ledger

import (
	"context"
	"fmt"

	"github.com/etnz/t212sync"
)

// Sink is a ledger the transactions are imported into.
type Sink interface {
	// Init opens a session on the ledger data stored in dataDir.
	Init(ctx context.Context, dataDir, serverURL, password string) error
	// DownloadBudget selects the budget the transactions are imported into.
	DownloadBudget(ctx context.Context, budgetID string) error
	// ImportTransactions adds txs to the account, skipping those already imported.
	ImportTransactions(ctx context.Context, accountID string, txs []t212sync.Transaction) (ImportResult, error)
	// Close ends the session.
	Close() error
}

// ImportResult counts the outcome of an import.
type ImportResult struct {
	Added   int
	Skipped int // already present in the ledger.
}

// sinkError wraps err with t212sync.ErrLedgerSink.
func sinkError(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", t212sync.ErrLedgerSink, op, err)
}
