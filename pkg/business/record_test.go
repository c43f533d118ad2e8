package business_test

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/shpitdev/site-email-crawler/pkg/business"
)

func TestRecord_JSONRoundTripPreservesOrderAndUnknownFields(t *testing.T) {
	t.Parallel()

	in := `{"rating":4.5,"businessName":"Acme","tags":["a","b"],"websiteLink":"acme.com","phone":null}`

	var rec business.Record
	require.NoError(t, json.Unmarshal([]byte(in), &rec))
	assert.Equal(t, "Acme", rec.BusinessName)
	assert.Equal(t, "acme.com", rec.WebsiteLink)
	assert.Equal(t, []string{"rating", "businessName", "tags", "websiteLink", "phone"}, rec.Keys())

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, in, string(out))
}

func TestRecord_SetEmailAppendsField(t *testing.T) {
	t.Parallel()

	var rec business.Record
	require.NoError(t, json.Unmarshal([]byte(`{"businessName":"Acme","websiteLink":"acme.com"}`), &rec))

	rec.SetEmail("info@acme.com, sales@acme.com")

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"businessName":"Acme","websiteLink":"acme.com","email":"info@acme.com, sales@acme.com"}`, string(out))
}

func TestRecord_SetEmailOverwritesInPlace(t *testing.T) {
	t.Parallel()

	var rec business.Record
	require.NoError(t, json.Unmarshal([]byte(`{"email":null,"businessName":"Acme"}`), &rec))
	rec.SetEmail("info@acme.com")

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"email":"info@acme.com","businessName":"Acme"}`, string(out))
}

func TestRecord_SetEmailOnCopyLeavesOriginal(t *testing.T) {
	t.Parallel()

	var orig business.Record
	require.NoError(t, json.Unmarshal([]byte(`{"businessName":"Acme","email":false}`), &orig))

	cp := orig
	cp.SetEmail("info@acme.com")

	raw, ok := orig.Extra("email")
	require.True(t, ok)
	assert.JSONEq(t, `false`, string(raw))
	assert.Empty(t, orig.Email)

	out, err := json.Marshal(orig)
	require.NoError(t, err)
	assert.Equal(t, `{"businessName":"Acme","email":false}`, string(out))
}

func TestRecord_NonStringKnownFieldKeptVerbatim(t *testing.T) {
	t.Parallel()

	var rec business.Record
	require.NoError(t, json.Unmarshal([]byte(`{"businessName":"Acme","websiteLink":null}`), &rec))
	assert.Empty(t, rec.WebsiteLink)

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"businessName":"Acme","websiteLink":null}`, string(out))
}

func TestRecord_StructLiteralMarshal(t *testing.T) {
	t.Parallel()

	rec := business.Record{BusinessName: "Acme & Sons", WebsiteLink: "acme.com"}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	require.NoError(t, enc.Encode(rec))
	assert.Equal(t, `{"businessName":"Acme & Sons","websiteLink":"acme.com"}`+"\n", buf.String())

	// json.Marshal re-escapes HTML in Marshaler output.
	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"businessName":"Acme \u0026 Sons","websiteLink":"acme.com"}`, string(out))
}

func TestRecord_StringValue(t *testing.T) {
	t.Parallel()

	var rec business.Record
	require.NoError(t, json.Unmarshal([]byte(`{"businessName":"Acme","rating":4.5,"tags":["a", "b"],"city":"Oslo"}`), &rec))
	assert.Equal(t, "Acme", rec.StringValue("businessName"))
	assert.Equal(t, "4.5", rec.StringValue("rating"))
	assert.Equal(t, `["a","b"]`, rec.StringValue("tags"))
	assert.Equal(t, "Oslo", rec.StringValue("city"))
	assert.Equal(t, "", rec.StringValue("missing"))
}

func TestRecord_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Unknown", business.Record{}.Name())
	assert.Equal(t, "Acme", business.Record{BusinessName: "Acme"}.Name())
}

func TestRecord_YAMLRoundTrip(t *testing.T) {
	t.Parallel()

	in := "businessName: Acme\nrating: 4.5\nwebsiteLink: acme.com\n"

	var rec business.Record
	require.NoError(t, yaml.Unmarshal([]byte(in), &rec))
	assert.Equal(t, "Acme", rec.BusinessName)
	assert.Equal(t, "acme.com", rec.WebsiteLink)

	rec.SetEmail("info@acme.com")
	out, err := yaml.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, "businessName: Acme\nrating: 4.5\nwebsiteLink: acme.com\nemail: info@acme.com\n", string(out))
}

func TestRecord_UnmarshalRejectsNonObject(t *testing.T) {
	t.Parallel()

	var rec business.Record
	assert.Error(t, json.Unmarshal([]byte(`["acme"]`), &rec))
	assert.Error(t, yaml.Unmarshal([]byte("- acme\n"), &rec))
}

func TestRecord_NullEntryRoundTrips(t *testing.T) {
	t.Parallel()

	var recs []business.Record
	require.NoError(t, json.Unmarshal([]byte(`[{"businessName":"Acme"},null]`), &recs))
	require.Len(t, recs, 2)
	assert.False(t, recs[0].IsNull())
	assert.True(t, recs[1].IsNull())
	assert.Equal(t, "Unknown", recs[1].Name())
	assert.Empty(t, recs[1].WebsiteLink)

	out, err := json.Marshal(recs)
	require.NoError(t, err)
	assert.Equal(t, `[{"businessName":"Acme"},null]`, string(out))

	y, err := yaml.Marshal(recs)
	require.NoError(t, err)
	assert.Equal(t, "- businessName: Acme\n- null\n", string(y))
}

func TestRecord_NullClearedBySet(t *testing.T) {
	t.Parallel()

	rec := business.Null()
	rec.SetEmail("info@acme.com")
	assert.False(t, rec.IsNull())

	out, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.Equal(t, `{"email":"info@acme.com"}`, string(out))
}
