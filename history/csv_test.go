package history

import (
	"errors"
	"strings"
	"testing"

	"github.com/etnz/t212sync"
	"github.com/google/go-cmp/cmp"
)

func TestParseCSV(t *testing.T) {
	input := "\ufeffAction,Time,Notes,ID,Total\n" +
		"Deposit,2024-01-02 10:00:00,\"Bank, transfer\",d1,100.00\n" +
		"Card debit,2024-01-03 11:00:00,,c1,-4.50\n"

	got, err := ParseCSV(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ParseCSV() unexpected error: %v", err)
	}
	want := []t212sync.Row{
		{"Action": "Deposit", "Time": "2024-01-02 10:00:00", "Notes": "Bank, transfer", "ID": "d1", "Total": "100.00"},
		{"Action": "Card debit", "Time": "2024-01-03 11:00:00", "Notes": "", "ID": "c1", "Total": "-4.50"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseCSV() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSV_HeaderOnly(t *testing.T) {
	got, err := ParseCSV(strings.NewReader("Action,Time,ID,Total\n"))
	if err != nil {
		t.Fatalf("ParseCSV() unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("ParseCSV() = %#v, want an empty non nil slice", got)
	}
}

func TestParseCSV_Malformed(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{name: "empty payload", input: ""},
		{name: "not a report", input: "<html><body>Access denied</body></html>\n"},
		{name: "field count", input: "Action,ID,Total\nDeposit,d1\n"},
		{name: "bare quote", input: "Action,ID,Total\nDeposit,\"d1,1.00\n"},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseCSV(strings.NewReader(tc.input))
			if !errors.Is(err, t212sync.ErrMalformedExport) {
				t.Errorf("ParseCSV() error = %v, want %v", err, t212sync.ErrMalformedExport)
			}
		})
	}
}
