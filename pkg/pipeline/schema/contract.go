package schema

import (
	"path/filepath"
	"strings"
)

// Format is the on-disk encoding of a business document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatCSV  Format = "csv"
)

// Field names every business document understands. Any other field is carried through untouched.
const (
	FieldBusinessName = "businessName"
	FieldWebsiteLink  = "websiteLink"
	FieldEmail        = "email"
)

// EmailSeparator joins the addresses stored in the email field.
const EmailSeparator = ", "

// NormalizeFormat maps user-supplied format names onto a Format. Unknown or empty values
// return "" so callers can fall back to FormatFromPath.
func NormalizeFormat(raw string) Format {
	s := strings.TrimSpace(strings.ToLower(raw))
	switch s {
	case "json":
		return FormatJSON
	case "yaml", "yml":
		return FormatYAML
	case "csv":
		return FormatCSV
	default:
		return ""
	}
}

// FormatFromPath infers the document format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	if f := NormalizeFormat(strings.TrimPrefix(filepath.Ext(path), ".")); f != "" {
		return f
	}
	return FormatJSON
}

// Resolve prefers an explicit format and falls back to the path's extension.
func Resolve(explicit, path string) Format {
	if f := NormalizeFormat(explicit); f != "" {
		return f
	}
	return FormatFromPath(path)
}
