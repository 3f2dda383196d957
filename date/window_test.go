package date

import (
	"testing"
	"time"
)

func TestBackward(t *testing.T) {
	end := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	size := 360 * Day

	var got []Window
	for w := range Backward(end, size) {
		got = append(got, w)
		if len(got) == 3 {
			break
		}
	}

	if len(got) != 3 {
		t.Fatalf("Backward() yielded %d windows, want 3", len(got))
	}
	if !got[0].To.Equal(end) {
		t.Errorf("first window ends at %v, want %v", got[0].To, end)
	}
	for i, w := range got {
		if d := w.To.Sub(w.From); d != size {
			t.Errorf("window %d lasts %v, want %v", i, d, size)
		}
		if i > 0 && !w.To.Equal(got[i-1].From) {
			t.Errorf("window %d ends at %v, want contiguous with %v", i, w.To, got[i-1].From)
		}
	}
}

func TestBackward_InvalidSize(t *testing.T) {
	for range Backward(time.Now(), 0) {
		t.Fatal("Backward() with a zero size must not yield")
	}
}

func TestWindowIsEmpty(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := from.Add(Day)
	w := Since(from, to)

	if w.IsEmpty() {
		t.Errorf("IsEmpty() = true for %v", w)
	}
	if !Since(to, from).IsEmpty() {
		t.Errorf("IsEmpty() = false for a reversed window")
	}
	if !Since(from, from).IsEmpty() {
		t.Errorf("IsEmpty() = false for a window without instants")
	}
}
