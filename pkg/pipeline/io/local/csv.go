package local

import (
	"encoding/csv"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/shpitdev/site-email-crawler/pkg/business"
)

// readCSV maps each row onto a record keyed by the header. Every cell is a string.
func readCSV(r io.Reader) ([]business.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i, col := range header {
		header[i] = strings.TrimSpace(col)
	}

	var records []business.Record
	for {
		row, err := cr.Read()
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(row) > len(header) {
			return nil, fmt.Errorf("row has %d columns, header has %d", len(row), len(header))
		}

		var rec business.Record
		for i, col := range header {
			if col == "" {
				continue
			}
			val := ""
			if i < len(row) {
				val = row[i]
			}
			rec.SetString(col, val)
		}
		records = append(records, rec)
	}
}

// writeCSV writes the union of all record fields as the header, in first-seen order.
func writeCSV(w io.Writer, records []business.Record) error {
	var header []string
	for _, rec := range records {
		for _, k := range rec.Keys() {
			if !slices.Contains(header, k) {
				header = append(header, k)
			}
		}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	row := make([]string, len(header))
	for _, rec := range records {
		for i, col := range header {
			row[i] = rec.StringValue(col)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
