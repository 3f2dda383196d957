package ledger

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/etnz/t212sync"
	"github.com/etnz/t212sync/date"
	"github.com/google/go-cmp/cmp"
)

func sampleTransactions() []t212sync.Transaction {
	return []t212sync.Transaction{
		{Account: "acc", Date: date.New(2024, 1, 2), Amount: 10000, Notes: "Deposit (Bank)", ImportedID: "d1", Cleared: true},
		{Account: "acc", Date: date.New(2024, 1, 3), Amount: -2500, ImportedPayee: "Apple (AAPL)", Notes: "Market buy (AAPL)", ImportedID: "b1", Cleared: true},
		{Account: "acc", Date: date.New(2024, 1, 3), Amount: -450, ImportedPayee: "Cafe", Category: "Food", Notes: "Cafe", ImportedID: "c1", Cleared: true},
	}
}

// openSQLite returns a ledger on a fresh data directory with budget "b" selected.
func openSQLite(t *testing.T, dataDir string) *SQLite {
	t.Helper()
	ctx := context.Background()
	s := NewSQLite()
	if err := s.Init(ctx, dataDir, "http://localhost:5006", "pw"); err != nil {
		t.Fatalf("Init() unexpected error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.DownloadBudget(ctx, "b"); err != nil {
		t.Fatalf("DownloadBudget() unexpected error: %v", err)
	}
	return s
}

func TestSQLite_Import(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t, t.TempDir())
	want := sampleTransactions()

	res, err := s.ImportTransactions(ctx, "acc", want)
	if err != nil {
		t.Fatalf("ImportTransactions() unexpected error: %v", err)
	}
	if res != (ImportResult{Added: 3}) {
		t.Errorf("ImportTransactions() = %+v, want 3 added", res)
	}

	got, err := s.Transactions(ctx, "acc")
	if err != nil {
		t.Fatalf("Transactions() unexpected error: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Transactions() mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLite_ImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s := openSQLite(t, dir)
	txs := sampleTransactions()

	if _, err := s.ImportTransactions(ctx, "acc", txs[:2]); err != nil {
		t.Fatalf("ImportTransactions() unexpected error: %v", err)
	}
	s.Close()

	// a new session on the same directory sees the previous import.
	s = openSQLite(t, dir)
	res, err := s.ImportTransactions(ctx, "acc", txs)
	if err != nil {
		t.Fatalf("ImportTransactions() unexpected error: %v", err)
	}
	if res != (ImportResult{Added: 1, Skipped: 2}) {
		t.Errorf("ImportTransactions() = %+v, want 1 added and 2 skipped", res)
	}

	// the same imported ids in another account are different transactions.
	res, err = s.ImportTransactions(ctx, "other", txs)
	if err != nil {
		t.Fatalf("ImportTransactions() unexpected error: %v", err)
	}
	if res.Added != 3 {
		t.Errorf("ImportTransactions() in another account added %d, want 3", res.Added)
	}

	got, err := s.Transactions(ctx, "acc")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Errorf("account holds %d transactions, want 3", len(got))
	}
}

func TestSQLite_Errors(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	testCases := []struct {
		name string
		run  func(s *SQLite) error
	}{
		{"init without password", func(s *SQLite) error {
			return s.Init(ctx, dir, "http://localhost", "")
		}},
		{"budget before init", func(s *SQLite) error {
			return s.DownloadBudget(ctx, "b")
		}},
		{"import before budget", func(s *SQLite) error {
			if err := s.Init(ctx, filepath.Join(dir, "nobudget"), "http://localhost", "pw"); err != nil {
				return nil
			}
			_, err := s.ImportTransactions(ctx, "acc", sampleTransactions())
			return err
		}},
		{"import without account", func(s *SQLite) error {
			if err := s.Init(ctx, filepath.Join(dir, "noaccount"), "http://localhost", "pw"); err != nil {
				return nil
			}
			if err := s.DownloadBudget(ctx, "b"); err != nil {
				return nil
			}
			_, err := s.ImportTransactions(ctx, "", sampleTransactions())
			return err
		}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			s := NewSQLite()
			defer s.Close()
			if err := tc.run(s); !errors.Is(err, t212sync.ErrLedgerSink) {
				t.Errorf("error = %v, want %v", err, t212sync.ErrLedgerSink)
			}
		})
	}
}

func TestJSONL(t *testing.T) {
	var buf bytes.Buffer
	var sink Sink = JSONL{W: &buf}
	txs := sampleTransactions()

	res, err := sink.ImportTransactions(context.Background(), "acc", txs)
	if err != nil {
		t.Fatalf("ImportTransactions() unexpected error: %v", err)
	}
	if res.Added != len(txs) {
		t.Errorf("Added = %d, want %d", res.Added, len(txs))
	}
	got, err := t212sync.DecodeTransactions(&buf)
	if err != nil {
		t.Fatalf("DecodeTransactions() unexpected error: %v", err)
	}
	if diff := cmp.Diff(txs, got); diff != "" {
		t.Errorf("written transactions mismatch (-want +got):\n%s", diff)
	}
}
