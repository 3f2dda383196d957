package history

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/etnz/t212sync"
)

// ParseCSV reads a broker export. The first record is the header and names the
// columns of every following record.
//
// A payload without header or with a syntax error is reported as
// t212sync.ErrMalformedExport. A header alone is a valid, empty export.
func ParseCSV(r io.Reader) ([]t212sync.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1 // checked below, to report the faulty line with context.

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: empty payload, no header row", t212sync.ErrMalformedExport)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: cannot read header: %v", t212sync.ErrMalformedExport, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff") // UTF-8 BOM
	}
	if !slices.Contains(header, t212sync.ColAction) || !slices.Contains(header, t212sync.ColID) {
		return nil, fmt.Errorf("%w: header %q lacks %q or %q", t212sync.ErrMalformedExport, header, t212sync.ColAction, t212sync.ColID)
	}

	rows := make([]t212sync.Row, 0)
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return rows, nil
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", t212sync.ErrMalformedExport, err)
		}
		if len(record) != len(header) {
			line, _ := reader.FieldPos(0)
			return nil, fmt.Errorf("%w: line %d has %d fields, header has %d", t212sync.ErrMalformedExport, line, len(record), len(header))
		}
		row := make(t212sync.Row, len(header))
		for i, col := range header {
			row[col] = record[i]
		}
		rows = append(rows, row)
	}
}
