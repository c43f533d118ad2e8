package email

import (
	"slices"
	"strings"

	"github.com/shpitdev/site-email-crawler/pkg/pipeline/schema"
)

// Separator joins set values into a single field value.
const Separator = schema.EmailSeparator

// Set is an insertion-ordered set of validated, lower-cased addresses.
// The zero value is not usable; call NewSet.
type Set struct {
	index  map[string]struct{}
	values []string
}

func NewSet() *Set {
	return &Set{index: make(map[string]struct{})}
}

// Add normalizes candidate and stores it if it is valid and not yet present.
// It reports whether the set changed.
func (s *Set) Add(candidate string) bool {
	c := strings.ToLower(strings.TrimSpace(candidate))
	if !IsValid(c) {
		return false
	}
	if _, ok := s.index[c]; ok {
		return false
	}
	s.index[c] = struct{}{}
	s.values = append(s.values, c)
	return true
}

// Merge adds every value of other and returns the ones that were new, in other's order.
func (s *Set) Merge(other *Set) []string {
	if other == nil {
		return nil
	}
	var added []string
	for _, v := range other.values {
		if s.Add(v) {
			added = append(added, v)
		}
	}
	return added
}

func (s *Set) Contains(addr string) bool {
	_, ok := s.index[strings.ToLower(strings.TrimSpace(addr))]
	return ok
}

func (s *Set) Len() int { return len(s.values) }

// Values returns a copy of the addresses in first-seen order.
func (s *Set) Values() []string {
	return slices.Clone(s.values)
}

// Join renders the set as the email field value, e.g. "info@acme.com, sales@acme.com".
func (s *Set) Join() string {
	return strings.Join(s.values, Separator)
}
