package crawl

import (
	"context"
	"time"
)

// SetSleep replaces the politeness sleep of c.
func SetSleep(c *Crawler, fn func(ctx context.Context, d time.Duration)) {
	c.sleep = fn
}
