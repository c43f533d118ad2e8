// Package business defines the record a crawl run enriches.
package business

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/shpitdev/site-email-crawler/pkg/pipeline/schema"
)

// Record is one business from the input document.
//
// BusinessName, WebsiteLink and Email are the fields the pipeline reads or writes. Every other
// field, and any known field whose value is not a string, is kept verbatim so the document
// round-trips with its original key order.
type Record struct {
	BusinessName string
	WebsiteLink  string
	Email        string

	// null marks a `null` list entry. It is written back as null until a field is set.
	null  bool
	keys  []string
	extra map[string]json.RawMessage
}

// Null returns the record standing in for a `null` entry of the business list.
func Null() Record {
	return Record{null: true}
}

// IsNull reports whether r stands in for a `null` entry.
func (r Record) IsNull() bool {
	return r.null
}

// Name returns the business name for diagnostics.
func (r Record) Name() string {
	if strings.TrimSpace(r.BusinessName) == "" {
		return "Unknown"
	}
	return r.BusinessName
}

// Keys returns the field names in document order, including known fields that were set
// directly on the struct.
func (r Record) Keys() []string {
	keys := slices.Clone(r.keys)
	for _, k := range []string{schema.FieldBusinessName, schema.FieldWebsiteLink, schema.FieldEmail} {
		if !slices.Contains(keys, k) && r.knownValue(k) != "" {
			keys = append(keys, k)
		}
	}
	return keys
}

// Extra returns the raw JSON value of a field the record does not model.
func (r Record) Extra(key string) (json.RawMessage, bool) {
	v, ok := r.extra[key]
	return v, ok
}

// SetExtra stores a raw JSON value under key, appending key to the field order if new.
// Known keys holding a JSON string are routed to their typed field instead.
func (r *Record) SetExtra(key string, raw json.RawMessage) {
	r.null = false
	if isKnownKey(key) {
		var s string
		if isJSONString(raw) && json.Unmarshal(raw, &s) == nil {
			r.setKnown(key, s)
			r.touch(key)
			if _, ok := r.extra[key]; ok {
				r.extra = without(r.extra, key)
			}
			return
		}
	}
	if r.extra == nil {
		r.extra = make(map[string]json.RawMessage)
	}
	r.extra[key] = slices.Clone(raw)
	r.touch(key)
}

// SetString stores a string value under key.
func (r *Record) SetString(key, value string) {
	raw, _ := json.Marshal(value)
	r.SetExtra(key, raw)
}

// StringValue returns the value of key rendered as a plain string: known fields and JSON
// strings unquoted, other JSON values in their compact encoding.
func (r Record) StringValue(key string) string {
	if raw, ok := r.extra[key]; ok {
		var s string
		if isJSONString(raw) && json.Unmarshal(raw, &s) == nil {
			return s
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return string(raw)
		}
		return buf.String()
	}
	return r.knownValue(key)
}

// SetEmail overwrites the email field, dropping any non-string value it previously held.
// It never mutates state shared with copies of r, so a worker may call it on its own copy.
func (r *Record) SetEmail(joined string) {
	r.Email = joined
	r.null = false
	if _, ok := r.extra[schema.FieldEmail]; ok {
		r.extra = without(r.extra, schema.FieldEmail)
	}
	r.touch(schema.FieldEmail)
}

// MarshalJSON writes the fields in document order.
func (r Record) MarshalJSON() ([]byte, error) {
	if r.null {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := marshalString(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')

		if raw, ok := r.extra[key]; ok {
			buf.Write(raw)
			continue
		}
		v, err := marshalString(r.knownValue(key))
		if err != nil {
			return nil, err
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads a JSON object, remembering key order. A JSON null yields Null().
func (r *Record) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*r = Null()
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("business record: expected JSON object, got %v", tok)
	}

	*r = Record{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("business record: expected field name, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("business record: field %q: %w", key, err)
		}
		r.SetExtra(key, raw)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	return nil
}

func (r *Record) touch(key string) {
	if slices.Contains(r.keys, key) {
		return
	}
	// Clip so appends never write into a backing array shared with a copied Record.
	r.keys = append(slices.Clip(r.keys), key)
}

func (r *Record) setKnown(key, value string) {
	switch key {
	case schema.FieldBusinessName:
		r.BusinessName = value
	case schema.FieldWebsiteLink:
		r.WebsiteLink = value
	case schema.FieldEmail:
		r.Email = value
	}
}

func (r Record) knownValue(key string) string {
	switch key {
	case schema.FieldBusinessName:
		return r.BusinessName
	case schema.FieldWebsiteLink:
		return r.WebsiteLink
	case schema.FieldEmail:
		return r.Email
	}
	return ""
}

func isKnownKey(key string) bool {
	switch key {
	case schema.FieldBusinessName, schema.FieldWebsiteLink, schema.FieldEmail:
		return true
	}
	return false
}

func isJSONString(raw json.RawMessage) bool {
	t := bytes.TrimSpace(raw)
	return len(t) > 0 && t[0] == '"'
}

func without(m map[string]json.RawMessage, key string) map[string]json.RawMessage {
	out := maps.Clone(m)
	delete(out, key)
	return out
}

func marshalString(s string) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
