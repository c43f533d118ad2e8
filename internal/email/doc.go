// Package email finds contact addresses in page text.
//
// Candidates are pulled out of text by a fixed set of surface patterns, then filtered by IsValid
// before they can enter a Set. A Set is scoped to one business and joins into the value of the
// record's email field.
package email
