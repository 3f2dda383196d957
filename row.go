package t212sync

import (
	"fmt"
	"slices"
	"time"
)

// Column names of the broker CSV export used by this package.
const (
	ColAction           = "Action"
	ColTime             = "Time"
	ColTicker           = "Ticker"
	ColName             = "Name"
	ColNotes            = "Notes"
	ColID               = "ID"
	ColTotal            = "Total"
	ColCurrencyTotal    = "Currency (Total)"
	ColMerchantName     = "Merchant name"
	ColMerchantCategory = "Merchant category"
)

// Row is a single record of a broker CSV export, keyed by column name.
//
// The schema belongs to the broker, missing columns read as empty strings.
type Row map[string]string

// Get returns the value of the column, or "" if the row does not have it.
func (r Row) Get(column string) string { return r[column] }

// timeLayouts are the timestamp formats seen in the "Time" column.
// time.Parse accepts an optional fractional second after the seconds field.
var timeLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// Time parses the "Time" column.
func (r Row) Time() (time.Time, error) {
	v := r.Get(ColTime)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid %s %q in row %q", ColTime, v, r.Get(ColID))
}

// SortRows sorts rows in ascending "Time" order. The sort is stable, rows with an
// unreadable time are kept first in their original order.
func SortRows(rows []Row) {
	slices.SortStableFunc(rows, func(a, b Row) int {
		ta, _ := a.Time()
		tb, _ := b.Time()
		return ta.Compare(tb)
	})
}
