package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/etnz/t212sync"
	"github.com/etnz/t212sync/date"
	"github.com/rs/zerolog"

	_ "modernc.org/sqlite"
)

// DBName is the file name of the ledger database inside the data directory.
const DBName = "ledger.db"

// SQLite is a ledger stored in a SQLite database in the data directory.
type SQLite struct {
	db     *sql.DB
	server string
	budget string
	now    func() time.Time
}

// NewSQLite returns a closed SQLite ledger, Init opens it.
func NewSQLite() *SQLite { return &SQLite{now: time.Now} }

// Init opens, or creates, the database in dataDir and migrates its schema.
//
// The server URL is recorded with the budgets downloaded during the session. The
// password is only checked for presence: the local database is not encrypted.
func (s *SQLite) Init(ctx context.Context, dataDir, serverURL, password string) error {
	if s.db != nil {
		return sinkError("init", errors.New("session already initialized"))
	}
	if dataDir == "" || password == "" {
		return sinkError("init", errors.New("data directory and password are required"))
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return sinkError("init", fmt.Errorf("create data directory: %w", err))
	}

	path := filepath.Join(dataDir, DBName)
	dsn := path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	if err := runMigrations(dsn); err != nil {
		return sinkError("init", err)
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return sinkError("init", fmt.Errorf("open sqlite database: %w", err))
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return sinkError("init", fmt.Errorf("ping database: %w", err))
	}
	s.db, s.server = db, serverURL
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("ledger opened")
	return nil
}

// DownloadBudget selects budgetID, creating it on first use.
func (s *SQLite) DownloadBudget(ctx context.Context, budgetID string) error {
	if s.db == nil {
		return sinkError("download budget", errors.New("session not initialized"))
	}
	if budgetID == "" {
		return sinkError("download budget", errors.New("empty budget id"))
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO budgets (id, server_url, downloaded) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET server_url = excluded.server_url, downloaded = excluded.downloaded`,
		budgetID, s.server, s.now().UTC().Format(time.RFC3339))
	if err != nil {
		return sinkError("download budget", err)
	}
	s.budget = budgetID
	return nil
}

// ImportTransactions inserts txs in a single SQL transaction. Transactions whose
// imported id is already in the account are skipped, the others are added.
func (s *SQLite) ImportTransactions(ctx context.Context, accountID string, txs []t212sync.Transaction) (ImportResult, error) {
	if s.db == nil || s.budget == "" {
		return ImportResult{}, sinkError("import", errors.New("no budget downloaded"))
	}
	if accountID == "" {
		return ImportResult{}, sinkError("import", t212sync.ErrMissingAccountID)
	}

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return ImportResult{}, sinkError("import", err)
	}
	defer sqlTx.Rollback() // no-op after commit.

	stmt, err := sqlTx.PrepareContext(ctx,
		`INSERT INTO transactions
		 (budget_id, account_id, imported_id, date, amount, imported_payee, category, notes, cleared, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(budget_id, account_id, imported_id) DO NOTHING`)
	if err != nil {
		return ImportResult{}, sinkError("import", err)
	}
	defer stmt.Close()

	created := s.now().UTC().Format(time.RFC3339)
	var res ImportResult
	for _, tx := range txs {
		r, err := stmt.ExecContext(ctx,
			s.budget, accountID, tx.ImportedID, tx.Date.String(), int64(tx.Amount),
			nullable(tx.ImportedPayee), nullable(tx.Category), nullable(tx.Notes), tx.Cleared, created)
		if err != nil {
			return ImportResult{}, sinkError("import", fmt.Errorf("transaction %q: %w", tx.ImportedID, err))
		}
		if n, _ := r.RowsAffected(); n > 0 {
			res.Added++
		} else {
			res.Skipped++
		}
	}
	if err := sqlTx.Commit(); err != nil {
		return ImportResult{}, sinkError("import", err)
	}
	zerolog.Ctx(ctx).Debug().Str("budget", s.budget).Str("account", accountID).
		Int("added", res.Added).Int("skipped", res.Skipped).Msg("transactions imported")
	return res, nil
}

// Transactions returns the transactions of the account in the current budget, by date.
func (s *SQLite) Transactions(ctx context.Context, accountID string) ([]t212sync.Transaction, error) {
	if s.db == nil || s.budget == "" {
		return nil, sinkError("list", errors.New("no budget downloaded"))
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT imported_id, date, amount, imported_payee, category, notes, cleared
		 FROM transactions WHERE budget_id = ? AND account_id = ?
		 ORDER BY date, rowid`, s.budget, accountID)
	if err != nil {
		return nil, sinkError("list", err)
	}
	defer rows.Close()

	txs := make([]t212sync.Transaction, 0)
	for rows.Next() {
		var (
			tx                     t212sync.Transaction
			day                    string
			amount                 int64
			payee, category, notes sql.NullString
		)
		if err := rows.Scan(&tx.ImportedID, &day, &amount, &payee, &category, &notes, &tx.Cleared); err != nil {
			return nil, sinkError("list", err)
		}
		if tx.Date, err = date.Parse(day); err != nil {
			return nil, sinkError("list", err)
		}
		tx.Account = accountID
		tx.Amount = t212sync.Amount(amount)
		tx.ImportedPayee, tx.Category, tx.Notes = payee.String, category.String, notes.String
		txs = append(txs, tx)
	}
	if err := rows.Err(); err != nil {
		return nil, sinkError("list", err)
	}
	return txs, nil
}

// Close closes the database. It can be called on a ledger never initialized.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db, s.budget = nil, ""
	if err != nil {
		return sinkError("close", err)
	}
	return nil
}

// nullable maps the empty string to SQL NULL.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
