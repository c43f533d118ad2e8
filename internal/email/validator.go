package email

import (
	"regexp"
	"strings"
)

// MaxLength is the longest address accepted.
const MaxLength = 254

var structure = regexp.MustCompile(`^` + addressPattern + `$`)

var denylist = compileAll(
	`\.png$`,
	`\.jpg$`,
	`\.gif$`,
	`\.jpeg$`,
	`\.webp$`,
	`example\.com`,
	`domain\.com`,
	`yourname`,
	`youremail`,
	`@2x`,
	`@\dx`,
	`@test`,
	`@sample`,
	`noreply`,
	`no-reply`,
	`donotreply`,
)

func compileAll(patterns ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(patterns))
	for _, p := range patterns {
		out = append(out, regexp.MustCompile(p))
	}
	return out
}

// IsValid reports whether candidate looks like a real contact address.
// Rules run in order and the first failure rejects: shape, denylist, length, domain labels.
func IsValid(candidate string) bool {
	if !structure.MatchString(candidate) {
		return false
	}

	lower := strings.ToLower(candidate)
	for _, re := range denylist {
		if re.MatchString(lower) {
			return false
		}
	}

	if len(candidate) > MaxLength {
		return false
	}

	at := strings.LastIndexByte(candidate, '@')
	domain := candidate[at+1:]
	return len(strings.Split(domain, ".")) >= 2
}
