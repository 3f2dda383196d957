package date

import (
	"fmt"
	"iter"
	"time"
)

// Window is a half-open time range [From, To).
//
// The broker truncates exports to whole transactions, so a transaction stamped exactly
// on a boundary belongs to the later window.
type Window struct{ From, To time.Time }

// Since returns the window [from, to).
func Since(from, to time.Time) Window { return Window{From: from, To: to} }

// IsEmpty reports whether the window contains no instant at all.
func (w Window) IsEmpty() bool { return !w.From.Before(w.To) }

// String returns the window in RFC 3339, for logs.
func (w Window) String() string {
	return fmt.Sprintf("[%s, %s)", w.From.Format(time.RFC3339), w.To.Format(time.RFC3339))
}

// Backward returns an iterator over consecutive windows of the given size, walking
// back in time from end: [end-size, end), [end-2*size, end-size), ...
//
// The sequence is unbounded; the caller decides when history has been exhausted.
func Backward(end time.Time, size time.Duration) iter.Seq[Window] {
	return func(yield func(Window) bool) {
		if size <= 0 {
			return
		}
		for to := end; ; to = to.Add(-size) {
			if !yield(Window{From: to.Add(-size), To: to}) {
				return
			}
		}
	}
}
