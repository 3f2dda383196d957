package ledger

import (
	"context"
	"io"

	"github.com/etnz/t212sync"
)

// JSONL is a dry-run sink: it writes the transactions it is given as JSONL instead of
// importing them, and reports all of them as added.
type JSONL struct {
	W io.Writer
}

func (JSONL) Init(context.Context, string, string, string) error { return nil }
func (JSONL) DownloadBudget(context.Context, string) error       { return nil }
func (JSONL) Close() error                                       { return nil }

// ImportTransactions writes txs to W.
func (j JSONL) ImportTransactions(_ context.Context, _ string, txs []t212sync.Transaction) (ImportResult, error) {
	if err := t212sync.EncodeTransactions(j.W, txs); err != nil {
		return ImportResult{}, sinkError("write", err)
	}
	return ImportResult{Added: len(txs)}, nil
}
