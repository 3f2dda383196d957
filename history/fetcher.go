// Package history retrieves the account history as CSV rows, through the broker's
// asynchronous export reports.
package history

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/etnz/t212sync"
	"github.com/etnz/t212sync/date"
	"github.com/etnz/t212sync/t212"
	"github.com/rs/zerolog"
)

// Exporter is the part of the broker API a Fetcher needs. *t212.Client implements it.
type Exporter interface {
	SubmitExport(ctx context.Context, r t212.ExportRequest) (t212.ExportJob, error)
	ListExports(ctx context.Context) ([]t212.ExportJob, error)
	Download(ctx context.Context, link string) (io.ReadCloser, error)
}

const (
	// DefaultInitialDelay is the wait between a submission and the first poll, about
	// the shortest time the broker takes to generate a report.
	DefaultInitialDelay = 10 * time.Second
	// DefaultPollInterval is the wait between two polls of a report not ready yet.
	DefaultPollInterval = 60 * time.Second
	// DefaultMaxWait is how long a report may stay without download link.
	DefaultMaxWait = 30 * time.Minute
	// DefaultWindowSize is the range covered by a single report during a backfill.
	DefaultWindowSize = 360 * date.Day
)

// Fetcher retrieves the rows of a time range, one export report at a time.
type Fetcher struct {
	Client  Exporter
	Include t212.Include

	InitialDelay time.Duration
	PollInterval time.Duration
	// MaxWait bounds the wait for a single report, counted from its submission.
	// Zero waits forever.
	MaxWait    time.Duration
	WindowSize time.Duration

	// Sleep and Now default to t212.Sleep and time.Now.
	Sleep func(context.Context, time.Duration) error
	Now   func() time.Time
}

// New returns a Fetcher with the default timings, including all kinds of activity.
func New(client Exporter) *Fetcher {
	return &Fetcher{
		Client:       client,
		Include:      t212.IncludeAll(),
		InitialDelay: DefaultInitialDelay,
		PollInterval: DefaultPollInterval,
		MaxWait:      DefaultMaxWait,
		WindowSize:   DefaultWindowSize,
	}
}

// Result is the outcome of a fetch.
type Result struct {
	Rows    []t212sync.Row // sorted by ascending time.
	Windows []date.Window  // requested windows, in request order.
}

// Backfill retrieves the whole history up to now. It walks back in time one window
// at a time, until a window has no row at all: that is the start of the history.
func (f *Fetcher) Backfill(ctx context.Context, now time.Time) (Result, error) {
	if f.WindowSize <= 0 {
		return Result{}, fmt.Errorf("invalid window size %v", f.WindowSize)
	}
	var res Result
	for w := range date.Backward(now, f.WindowSize) {
		rows, err := f.Window(ctx, w)
		if err != nil {
			return Result{}, err
		}
		res.Windows = append(res.Windows, w)
		if len(rows) == 0 {
			break
		}
		res.Rows = append(res.Rows, rows...)
	}
	zerolog.Ctx(ctx).Info().Int("windows", len(res.Windows)).Int("rows", len(res.Rows)).Msg("history backfilled")
	t212sync.SortRows(res.Rows)
	return res, nil
}

// Since retrieves the rows of [from, now) with a single report.
func (f *Fetcher) Since(ctx context.Context, from, now time.Time) (Result, error) {
	w := date.Since(from, now)
	if w.IsEmpty() {
		zerolog.Ctx(ctx).Info().Stringer("window", w).Msg("nothing to fetch")
		return Result{}, nil
	}
	rows, err := f.Window(ctx, w)
	if err != nil {
		return Result{}, err
	}
	t212sync.SortRows(rows)
	return Result{Rows: rows, Windows: []date.Window{w}}, nil
}

// Window retrieves the rows of a single window: it submits the export, waits for its
// download link, then downloads and parses it.
func (f *Fetcher) Window(ctx context.Context, w date.Window) ([]t212sync.Row, error) {
	log := zerolog.Ctx(ctx).With().Time("window_from", w.From).Time("window_to", w.To).Logger()

	job, err := f.Client.SubmitExport(ctx, t212.ExportRequest{From: w.From, To: w.To, Include: f.Include})
	if err != nil {
		return nil, fmt.Errorf("cannot request export for %v: %w", w, err)
	}
	log = log.With().Int64("report_id", job.ReportID).Logger()
	log.Info().Msg("export requested")

	job, err = f.await(log.WithContext(ctx), job.ReportID)
	if err != nil {
		return nil, fmt.Errorf("export %d for %v: %w", job.ReportID, w, err)
	}

	body, err := f.Client.Download(ctx, job.DownloadLink)
	if err != nil {
		return nil, fmt.Errorf("export %d for %v: %w", job.ReportID, w, err)
	}
	defer body.Close()

	rows, err := ParseCSV(body)
	if err != nil {
		return nil, fmt.Errorf("export %d for %v: %w", job.ReportID, w, err)
	}
	log.Info().Int("rows", len(rows)).Msg("export downloaded")
	return rows, nil
}

// await polls the export list until the report has a download link.
func (f *Fetcher) await(ctx context.Context, reportID int64) (t212.ExportJob, error) {
	log := zerolog.Ctx(ctx)
	deadline := f.now().Add(f.MaxWait)
	delay := f.InitialDelay
	for {
		if err := f.sleep(ctx, delay); err != nil {
			return t212.ExportJob{ReportID: reportID}, err
		}
		delay = f.PollInterval

		jobs, err := f.Client.ListExports(ctx)
		if err != nil {
			return t212.ExportJob{ReportID: reportID}, err
		}
		job, found := t212.Find(jobs, reportID)
		switch {
		case !found:
			// the list can lag behind the submission.
			log.Debug().Msg("export not listed yet")
		case job.State() == t212.Ready:
			return job, nil
		case job.State() == t212.Failed:
			return job, fmt.Errorf("%w: report status %q", t212sync.ErrExportAPI, job.Status)
		default:
			log.Debug().Str("status", job.Status).Msg("export not ready")
		}

		if f.MaxWait > 0 && !f.now().Before(deadline) {
			return t212.ExportJob{ReportID: reportID}, fmt.Errorf("%w: no download link after %v", t212sync.ErrExportTimeout, f.MaxWait)
		}
	}
}

func (f *Fetcher) sleep(ctx context.Context, d time.Duration) error {
	if f.Sleep != nil {
		return f.Sleep(ctx, d)
	}
	return t212.Sleep(ctx, d)
}

func (f *Fetcher) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}
