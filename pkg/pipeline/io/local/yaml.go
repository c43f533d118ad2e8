package local

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/shpitdev/site-email-crawler/pkg/business"
)

func readYAML(r io.Reader) ([]business.Record, error) {
	var entries []*business.Record
	if err := yaml.NewDecoder(r).Decode(&entries); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("parse yaml businesses: %w", err)
	}
	records := make([]business.Record, len(entries))
	for i, e := range entries {
		if e == nil {
			records[i] = business.Null()
			continue
		}
		records[i] = *e
	}
	return records, nil
}

func writeYAML(w io.Writer, records []business.Record) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return err
	}
	return enc.Close()
}
