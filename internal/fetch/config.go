package fetch

import "time"

// Browser-identifying request headers. Some sites block obvious bots.
const (
	DefaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) Chrome/91.0.4472.124 Safari/537.36"
	defaultAccept         = "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"
	defaultAcceptLanguage = "en-US,en;q=0.5"
)

const (
	DefaultMaxBodyBytes   = 10 * 1024 * 1024
	defaultMaxRedirects   = 10
	defaultRobotsCacheTTL = 24 * time.Hour
)

// Config controls how pages are requested.
type Config struct {
	UserAgent    string
	MaxBodyBytes int64
	MaxRedirects int
	// RespectRobots makes Get refuse URLs disallowed by the host's robots.txt.
	RespectRobots  bool
	RobotsCacheTTL time.Duration
}

// WithDefaults returns a copy of the config with default values applied for zero-value fields.
func (c Config) WithDefaults() Config {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = DefaultMaxBodyBytes
	}
	if c.MaxRedirects <= 0 {
		c.MaxRedirects = defaultMaxRedirects
	}
	if c.RobotsCacheTTL <= 0 {
		c.RobotsCacheTTL = defaultRobotsCacheTTL
	}
	return c
}
