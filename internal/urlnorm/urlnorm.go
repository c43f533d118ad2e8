// Package urlnorm turns user-entered website strings into fetchable absolute URLs.
package urlnorm

import (
	"strings"

	"go.uber.org/zap"

	"github.com/shpitdev/site-email-crawler/internal/logger"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/redact"
)

const defaultScheme = "https://"

// Normalize trims and lower-cases raw and prepends https:// when no http(s) scheme is present.
// Empty input yields "". It never fails and does not check reachability.
func Normalize(raw string, log logger.Logger) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	if u == "" {
		return ""
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		u = defaultScheme + u
	}
	logger.OrNop(log).Debug("normalized url", zap.String("url", redact.Secrets(u)))
	return u
}
