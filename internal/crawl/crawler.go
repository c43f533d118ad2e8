// Package crawl collects contact addresses from one business website: the home page plus
// the contact-like pages it links to.
package crawl

import (
	"bytes"
	"context"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/shpitdev/site-email-crawler/internal/email"
	"github.com/shpitdev/site-email-crawler/internal/fetch"
	"github.com/shpitdev/site-email-crawler/internal/links"
	"github.com/shpitdev/site-email-crawler/internal/logger"
	"github.com/shpitdev/site-email-crawler/internal/urlnorm"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/redact"
)

const (
	DefaultPrimaryTimeout  = 20 * time.Second
	DefaultLinkTimeout     = 15 * time.Second
	DefaultPolitenessDelay = time.Second
)

// PageFetcher is the network capability the crawler needs. *fetch.Fetcher implements it.
type PageFetcher interface {
	Get(ctx context.Context, rawURL string, timeout time.Duration) (*fetch.Page, error)
}

// crawlDelayer is implemented by fetchers that know a host's robots.txt crawl-delay.
type crawlDelayer interface {
	CrawlDelay(host string) time.Duration
}

type Options struct {
	PrimaryTimeout time.Duration
	LinkTimeout    time.Duration
	// PolitenessDelay is the pause after each secondary link response. Negative disables it.
	PolitenessDelay time.Duration
}

func (o Options) withDefaults() Options {
	if o.PrimaryTimeout <= 0 {
		o.PrimaryTimeout = DefaultPrimaryTimeout
	}
	if o.LinkTimeout <= 0 {
		o.LinkTimeout = DefaultLinkTimeout
	}
	if o.PolitenessDelay == 0 {
		o.PolitenessDelay = DefaultPolitenessDelay
	}
	if o.PolitenessDelay < 0 {
		o.PolitenessDelay = 0
	}
	return o
}

// Crawler is safe for concurrent use; each Crawl call owns its own visited set and email set.
type Crawler struct {
	fetcher PageFetcher
	log     logger.Logger
	opts    Options
	sleep   func(ctx context.Context, d time.Duration)
}

func New(f PageFetcher, log logger.Logger, opts Options) *Crawler {
	return &Crawler{
		fetcher: f,
		log:     logger.OrNop(log),
		opts:    opts.withDefaults(),
		sleep:   sleepCtx,
	}
}

// Crawl fetches website's home page and every relevant link on it, one at a time, and returns
// the addresses found. Per-site failures are reported in the Report, never returned or panicked.
func (c *Crawler) Crawl(ctx context.Context, business, website string) Report {
	log := c.log.With(zap.String("business", business))
	rep := Report{Business: business, URL: urlnorm.Normalize(website, log)}
	if rep.URL == "" {
		log.Debug("no website, skipping crawl")
		return rep
	}

	page, err := c.fetcher.Get(ctx, rep.URL, c.opts.PrimaryTimeout)
	if err == nil {
		err = fetch.RaiseForStatus(page)
	}
	if err != nil {
		rep.Err = err
		log.Warn("home page fetch failed", zap.String("url", redact.Secrets(rep.URL)), errField(err))
		return rep
	}

	found := email.Extract(page.Text())
	rep.Pages = 1

	visited := map[string]struct{}{rep.URL: {}, page.URL: {}}
	base, err := url.Parse(page.URL)
	if err != nil {
		base, _ = url.Parse(rep.URL)
	}
	discovered, err := links.DiscoverHTML(bytes.NewReader(page.Body), base)
	if err != nil {
		log.Warn("link discovery failed", zap.String("url", redact.Secrets(page.URL)), errField(err))
	}
	log.Debug("links discovered", zap.String("url", redact.Secrets(page.URL)), zap.Int("links", len(discovered)))

	for _, link := range discovered {
		if ctx.Err() != nil {
			break
		}
		if _, seen := visited[link]; seen {
			continue
		}
		visited[link] = struct{}{}

		res := c.visit(ctx, log, link, found)
		rep.Links = append(rep.Links, res)
		if res.Status == LinkScanned {
			rep.Pages++
		}
		if res.Status != LinkFailed {
			c.pause(ctx, link)
		}
	}

	rep.Emails = found.Values()
	log.Info("crawl complete",
		zap.String("url", redact.Secrets(rep.URL)),
		zap.Int("pages", rep.Pages),
		zap.Int("links", len(rep.Links)),
		zap.Strings("emails", rep.Emails),
	)
	return rep
}

func (c *Crawler) visit(ctx context.Context, log logger.Logger, link string, found *email.Set) LinkResult {
	log = log.With(zap.String("url", redact.Secrets(link)))
	log.Info("visiting link")

	res := LinkResult{URL: link}
	page, err := c.fetcher.Get(ctx, link, c.opts.LinkTimeout)
	if err != nil {
		res.Status = LinkFailed
		res.Err = err
		log.Warn("link fetch failed", errField(err))
		return res
	}

	res.StatusCode = page.StatusCode
	if page.StatusCode != 200 {
		res.Status = LinkSkipped
		log.Debug("link skipped", zap.Int("status", page.StatusCode))
		return res
	}

	res.Status = LinkScanned
	added := found.Merge(email.Extract(page.Text()))
	res.NewEmails = len(added)
	if res.NewEmails > 0 {
		log.Info("emails found on page", zap.Int("new_emails", res.NewEmails), zap.Strings("emails", added))
	}
	return res
}

// pause sleeps the politeness delay, stretched to the host's robots.txt crawl-delay when known.
func (c *Crawler) pause(ctx context.Context, link string) {
	d := c.opts.PolitenessDelay
	if cd, ok := c.fetcher.(crawlDelayer); ok {
		if u, err := url.Parse(link); err == nil {
			d = max(d, cd.CrawlDelay(u.Host))
		}
	}
	if d <= 0 {
		return
	}
	c.sleep(ctx, d)
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

func errField(err error) zap.Field {
	return zap.String("error", redact.Secrets(err.Error()))
}
