package email

import (
	"regexp"
	"strings"
)

const addressPattern = `[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`

type surfacePattern struct {
	re *regexp.Regexp
	// group is the submatch holding the address; 0 keeps the whole match.
	group int
}

// RE2 guarantees linear-time matching for every pattern.
var surfacePatterns = []surfacePattern{
	{re: regexp.MustCompile(`(?i)` + addressPattern), group: 0},
	{re: regexp.MustCompile(`(?i)mailto:(` + addressPattern + `)`), group: 1},
	{re: regexp.MustCompile(`(?i)email:\s*(` + addressPattern + `)`), group: 1},
	{re: regexp.MustCompile(`(?i)contact:\s*(` + addressPattern + `)`), group: 1},
}

// Candidates returns every lower-cased, trimmed address matched by any surface pattern,
// de-duplicated in first-seen order. Nothing is validated here.
func Candidates(text string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range surfacePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			if len(m) <= p.group {
				continue
			}
			c := strings.ToLower(strings.TrimSpace(m[p.group]))
			if c == "" {
				continue
			}
			if _, ok := seen[c]; ok {
				continue
			}
			seen[c] = struct{}{}
			out = append(out, c)
		}
	}
	return out
}

// Extract returns the valid candidates found in text.
func Extract(text string) *Set {
	s := NewSet()
	for _, c := range Candidates(text) {
		s.Add(c)
	}
	return s
}
