package local

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/shpitdev/site-email-crawler/pkg/business"
)

func readJSON(r io.Reader) ([]business.Record, error) {
	var records []business.Record
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("parse json businesses: %w", err)
	}
	return records, nil
}

func writeJSON(w io.Writer, records []business.Record) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}
