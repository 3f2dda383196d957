package history

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/etnz/t212sync"
	"github.com/etnz/t212sync/date"
	"github.com/etnz/t212sync/t212"
	"github.com/google/go-cmp/cmp"
)

const header = "Action,Time,ISIN,Ticker,Name,Notes,ID,Total,Currency (Total),Merchant name,Merchant category\n"

// fakeExporter is an in-memory broker. Each submitted report becomes ready after
// pendingPolls list calls, and its CSV is produced by csvFor.
type fakeExporter struct {
	pendingPolls int
	status       string // status of not ready reports, "Processing" by default.
	csvFor       func(r t212.ExportRequest) string

	submitted []t212.ExportRequest
	polls     map[int64]int
	lists     int
}

func (f *fakeExporter) SubmitExport(_ context.Context, r t212.ExportRequest) (t212.ExportJob, error) {
	f.submitted = append(f.submitted, r)
	return t212.ExportJob{ReportID: int64(len(f.submitted))}, nil
}

func (f *fakeExporter) ListExports(_ context.Context) ([]t212.ExportJob, error) {
	f.lists++
	if f.polls == nil {
		f.polls = make(map[int64]int)
	}
	jobs := make([]t212.ExportJob, 0, len(f.submitted))
	for i := range f.submitted {
		id := int64(i + 1)
		f.polls[id]++
		job := t212.ExportJob{ReportID: id, Status: f.status}
		if job.Status == "" {
			job.Status = "Processing"
		}
		if f.polls[id] > f.pendingPolls {
			job.Status = "Finished"
			job.DownloadLink = fmt.Sprintf("https://example.com/%d.csv", id)
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (f *fakeExporter) Download(_ context.Context, link string) (io.ReadCloser, error) {
	var id int
	if _, err := fmt.Sscanf(link, "https://example.com/%d.csv", &id); err != nil {
		return nil, err
	}
	return io.NopCloser(strings.NewReader(f.csvFor(f.submitted[id-1]))), nil
}

// fakeClock is a clock that only moves when slept on.
type fakeClock struct {
	now    time.Time
	sleeps []time.Duration
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.sleeps = append(c.sleeps, d)
	c.now = c.now.Add(d)
	return nil
}

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestFetcher(exp *fakeExporter) (*Fetcher, *fakeClock) {
	clock := &fakeClock{now: now}
	f := New(exp)
	f.Sleep = clock.Sleep
	f.Now = clock.Now
	return f, clock
}

func TestWindow_PollsUntilReady(t *testing.T) {
	exp := &fakeExporter{
		pendingPolls: 2,
		csvFor: func(t212.ExportRequest) string {
			return header + "Deposit,2025-05-02 10:00:00,,,,Bank,d1,100.00,EUR,,\n"
		},
	}
	f, clock := newTestFetcher(exp)

	w := date.Since(now.Add(-date.Day), now)
	rows, err := f.Window(context.Background(), w)
	if err != nil {
		t.Fatalf("Window() unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0][t212sync.ColID] != "d1" {
		t.Errorf("Window() = %v, want the single d1 row", rows)
	}
	want := []time.Duration{DefaultInitialDelay, DefaultPollInterval, DefaultPollInterval}
	if diff := cmp.Diff(want, clock.sleeps); diff != "" {
		t.Errorf("sleeps mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]t212.ExportRequest{{From: w.From, To: w.To, Include: t212.IncludeAll()}}, exp.submitted); diff != "" {
		t.Errorf("submissions mismatch (-want +got):\n%s", diff)
	}
}

func TestWindow_FailedReport(t *testing.T) {
	exp := &fakeExporter{pendingPolls: 1000, status: "Failed"}
	f, _ := newTestFetcher(exp)

	_, err := f.Window(context.Background(), date.Since(now.Add(-date.Day), now))
	if !errors.Is(err, t212sync.ErrExportAPI) {
		t.Errorf("Window() error = %v, want %v", err, t212sync.ErrExportAPI)
	}
	if exp.lists != 1 {
		t.Errorf("a failed report was polled %d times, want 1", exp.lists)
	}
}

func TestWindow_Timeout(t *testing.T) {
	exp := &fakeExporter{pendingPolls: 1000}
	f, clock := newTestFetcher(exp)
	f.MaxWait = 5 * time.Minute

	_, err := f.Window(context.Background(), date.Since(now.Add(-date.Day), now))
	if !errors.Is(err, t212sync.ErrExportTimeout) {
		t.Fatalf("Window() error = %v, want %v", err, t212sync.ErrExportTimeout)
	}
	// 10s, then 60s steps until 5 minutes have elapsed.
	if elapsed := clock.now.Sub(now); elapsed < f.MaxWait || elapsed > f.MaxWait+f.PollInterval {
		t.Errorf("gave up after %v, want about %v", elapsed, f.MaxWait)
	}
	if exp.lists != 6 {
		t.Errorf("polled %d times, want 6", exp.lists)
	}
}

func TestWindow_Cancelled(t *testing.T) {
	exp := &fakeExporter{pendingPolls: 1000}
	f := New(exp) // real sleep: the cancelled context must interrupt it.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.Window(ctx, date.Since(now.Add(-date.Day), now))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Window() error = %v, want %v", err, context.Canceled)
	}
	if exp.lists != 0 {
		t.Errorf("polled %d times after cancellation, want 0", exp.lists)
	}
}

func TestWindow_MalformedPayload(t *testing.T) {
	exp := &fakeExporter{csvFor: func(t212.ExportRequest) string { return "" }}
	f, _ := newTestFetcher(exp)

	_, err := f.Window(context.Background(), date.Since(now.Add(-date.Day), now))
	if !errors.Is(err, t212sync.ErrMalformedExport) {
		t.Errorf("Window() error = %v, want %v", err, t212sync.ErrMalformedExport)
	}
	if len(exp.submitted) != 1 {
		t.Errorf("submitted %d exports, a malformed payload must not be retried", len(exp.submitted))
	}
}

// historyCSV serves rows for the three most recent windows of a backfill from now,
// and an empty export for anything older.
func historyCSV(r t212.ExportRequest) string {
	var rows []string
	// two rows per window, written newest first to check the final sort.
	for _, at := range []time.Time{r.To.Add(-time.Hour), r.From.Add(time.Hour)} {
		if at.Before(now.Add(-3 * DefaultWindowSize)) {
			continue
		}
		rows = append(rows, fmt.Sprintf("Deposit,%s,,,,Bank,%s,1.00,EUR,,", at.Format("2006-01-02 15:04:05"), at.Format("20060102")))
	}
	if len(rows) == 0 {
		return header
	}
	return header + strings.Join(rows, "\n") + "\n"
}

func TestBackfill(t *testing.T) {
	exp := &fakeExporter{csvFor: historyCSV}
	f, _ := newTestFetcher(exp)

	res, err := f.Backfill(context.Background(), now)
	if err != nil {
		t.Fatalf("Backfill() unexpected error: %v", err)
	}

	if len(exp.submitted) != 4 {
		t.Fatalf("Backfill() submitted %d exports, want 4", len(exp.submitted))
	}
	if len(res.Windows) != 4 {
		t.Errorf("Backfill() reported %d windows, want 4", len(res.Windows))
	}
	for i, r := range exp.submitted {
		wantTo := now.Add(-time.Duration(i) * DefaultWindowSize)
		if !r.To.Equal(wantTo) || r.To.Sub(r.From) != DefaultWindowSize {
			t.Errorf("submission %d covers [%v, %v), want a %v window ending %v", i, r.From, r.To, DefaultWindowSize, wantTo)
		}
	}

	if len(res.Rows) != 6 {
		t.Fatalf("Backfill() returned %d rows, want 6", len(res.Rows))
	}
	for i := 1; i < len(res.Rows); i++ {
		prev, _ := res.Rows[i-1].Time()
		cur, _ := res.Rows[i].Time()
		if cur.Before(prev) {
			t.Errorf("rows %d and %d are not in ascending time order: %v > %v", i-1, i, prev, cur)
		}
	}
}

func TestBackfill_EmptyHistory(t *testing.T) {
	exp := &fakeExporter{csvFor: func(t212.ExportRequest) string { return header }}
	f, _ := newTestFetcher(exp)

	res, err := f.Backfill(context.Background(), now)
	if err != nil {
		t.Fatalf("Backfill() unexpected error: %v", err)
	}
	if len(exp.submitted) != 1 || len(res.Rows) != 0 {
		t.Errorf("Backfill() submitted %d exports and returned %d rows, want 1 and 0", len(exp.submitted), len(res.Rows))
	}
}

func TestSince(t *testing.T) {
	exp := &fakeExporter{csvFor: historyCSV}
	f, _ := newTestFetcher(exp)
	from := now.Add(-48 * time.Hour)

	res, err := f.Since(context.Background(), from, now)
	if err != nil {
		t.Fatalf("Since() unexpected error: %v", err)
	}
	want := []t212.ExportRequest{{From: from, To: now, Include: t212.IncludeAll()}}
	if diff := cmp.Diff(want, exp.submitted); diff != "" {
		t.Errorf("submissions mismatch (-want +got):\n%s", diff)
	}
	if len(res.Rows) != 2 {
		t.Errorf("Since() returned %d rows, want 2", len(res.Rows))
	}
}

func TestSince_EmptyWindow(t *testing.T) {
	exp := &fakeExporter{csvFor: historyCSV}
	f, _ := newTestFetcher(exp)

	res, err := f.Since(context.Background(), now, now)
	if err != nil {
		t.Fatalf("Since() unexpected error: %v", err)
	}
	if len(exp.submitted) != 0 || len(res.Windows) != 0 {
		t.Errorf("Since() with an empty window submitted %d exports", len(exp.submitted))
	}
}
