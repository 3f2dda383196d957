// Package importer runs a synchronization: it fetches the broker history not yet
// imported, normalizes it and imports it into the ledger, then moves the watermark.
package importer

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/etnz/t212sync"
	"github.com/etnz/t212sync/config"
	"github.com/etnz/t212sync/date"
	"github.com/etnz/t212sync/history"
	"github.com/etnz/t212sync/ledger"
	"github.com/etnz/t212sync/logger"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultBudget is the budget imported into when none is configured.
const DefaultBudget = "default"

// Fetcher retrieves the broker history. *history.Fetcher implements it.
type Fetcher interface {
	Backfill(ctx context.Context, now time.Time) (history.Result, error)
	Since(ctx context.Context, from, now time.Time) (history.Result, error)
}

// Mode tells how the range of a run was chosen.
type Mode string

const (
	// Backfill fetches the whole history, on the first run.
	Backfill Mode = "backfill"
	// Incremental fetches what happened since the previous run.
	Incremental Mode = "incremental"
)

// Report describes a synchronization run.
type Report struct {
	RunID   uuid.UUID
	Mode    Mode
	DryRun  bool
	Start   time.Time // start of the fetched range, zero for a backfill.
	End     time.Time
	Windows []date.Window

	Rows     int // rows fetched from the broker.
	Added    int
	Skipped  int
	Net      t212sync.Amount // sum of the imported transaction amounts.
	Currency string
}

// Sync imports into sink what happened since the watermark of cfg, or the whole history
// if there is none, up to now.
//
// On success it returns cfg with its watermark moved to now. On failure it returns cfg
// unchanged, so that the next run fetches the same range again.
func Sync(ctx context.Context, cfg config.Config, fetcher Fetcher, sink ledger.Sink, now time.Time) (out config.Config, rep Report, err error) {
	if cfg.AccountID == "" {
		return cfg, Report{}, t212sync.ErrMissingAccountID
	}
	rep = Report{RunID: uuid.New(), End: now, Currency: cfg.Currency}
	ctx = logger.WithFields(ctx, map[string]any{"run_id": rep.RunID.String()})
	log := zerolog.Ctx(ctx)

	if err := sink.Init(ctx, cfg.DataDir, cfg.ServerURL, cfg.Password); err != nil {
		return cfg, rep, err
	}
	defer func() {
		if cerr := sink.Close(); cerr != nil {
			out, err = cfg, errors.Join(err, cerr)
		}
	}()
	budget := cfg.BudgetID
	if budget == "" {
		budget = DefaultBudget
	}
	if err := sink.DownloadBudget(ctx, budget); err != nil {
		return cfg, rep, err
	}

	var res history.Result
	if from, ok := cfg.Watermark(); ok {
		rep.Mode, rep.Start = Incremental, from
		log.Info().Time("since", from).Msg("incremental sync")
		res, err = fetcher.Since(ctx, from, now)
	} else {
		rep.Mode = Backfill
		log.Info().Msg("no previous sync, fetching the whole history")
		res, err = fetcher.Backfill(ctx, now)
	}
	if err != nil {
		return cfg, rep, fmt.Errorf("cannot fetch history: %w", err)
	}
	rep.Windows, rep.Rows = res.Windows, len(res.Rows)

	txs, err := t212sync.Normalize(res.Rows, cfg.AccountID)
	if err != nil {
		return cfg, rep, err
	}
	slices.SortStableFunc(txs, func(a, b t212sync.Transaction) int { return a.Date.Compare(b.Date) })

	imported, err := sink.ImportTransactions(ctx, cfg.AccountID, txs)
	if err != nil {
		return cfg, rep, err
	}
	rep.Added, rep.Skipped, rep.Net = imported.Added, imported.Skipped, t212sync.Net(txs)
	log.Info().Int("rows", rep.Rows).Int("added", rep.Added).Int("skipped", rep.Skipped).Msg("sync done")

	return cfg.WithWatermark(now), rep, nil
}

// Run loads the configuration from store, syncs, and saves the moved watermark.
// Only the watermark is written back: environment overrides stay out of the file.
func Run(ctx context.Context, store config.Store, fetcher Fetcher, sink ledger.Sink, now time.Time) (Report, error) {
	cfg, err := store.Load()
	if err != nil {
		return Report{}, err
	}
	updated, rep, err := Sync(ctx, cfg, fetcher, sink, now)
	if err != nil {
		return rep, err
	}
	wm, _ := updated.Watermark()
	if err := store.SaveWatermark(wm); err != nil {
		return rep, err
	}
	return rep, nil
}
