// Package local reads and writes business documents on the local filesystem.
package local

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/shpitdev/site-email-crawler/pkg/business"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/schema"
)

// ReadBusinesses decodes a business document in the given format.
func ReadBusinesses(r io.Reader, format schema.Format) ([]business.Record, error) {
	switch format {
	case schema.FormatJSON, "":
		return readJSON(r)
	case schema.FormatYAML:
		return readYAML(r)
	case schema.FormatCSV:
		return readCSV(r)
	default:
		return nil, fmt.Errorf("unsupported input format %q", format)
	}
}

// WriteBusinesses encodes records in the given format, preserving their order.
func WriteBusinesses(w io.Writer, format schema.Format, records []business.Record) error {
	if records == nil {
		records = []business.Record{}
	}
	switch format {
	case schema.FormatJSON, "":
		return writeJSON(w, records)
	case schema.FormatYAML:
		return writeYAML(w, records)
	case schema.FormatCSV:
		return writeCSV(w, records)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}

// FileInput loads a business document from Path.
type FileInput struct {
	Path   string
	Format schema.Format
}

func (in FileInput) Load(_ context.Context) ([]business.Record, error) {
	f, err := os.Open(in.Path)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()

	records, err := ReadBusinesses(f, in.Format)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", in.Path, err)
	}
	return records, nil
}

// FileOutput stores a business document at Path, replacing any existing file.
type FileOutput struct {
	Path   string
	Format schema.Format
}

func (out FileOutput) Store(_ context.Context, records []business.Record) error {
	f, err := os.Create(out.Path)
	if err != nil {
		return err
	}
	defer func() {
		_ = f.Close()
	}()

	if err := WriteBusinesses(f, out.Format, records); err != nil {
		return fmt.Errorf("write %s: %w", out.Path, err)
	}
	return f.Close()
}
