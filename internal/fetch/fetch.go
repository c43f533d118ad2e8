// Package fetch retrieves web pages the way a desktop browser would ask for them.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/net/html/charset"
)

// Page is a fetched response with its body decoded to UTF-8.
type Page struct {
	// URL is the final URL after redirects.
	URL        string
	StatusCode int
	Status     string
	Header     http.Header
	Body       []byte
}

// Text returns the decoded body.
func (p *Page) Text() string {
	if p == nil {
		return ""
	}
	return string(p.Body)
}

// Fetcher issues GET requests with a fixed browser header set.
// It is safe for concurrent use.
type Fetcher struct {
	client *http.Client
	cfg    Config
	robots *RobotsChecker
}

// New creates a Fetcher. A nil client gets a fresh http.Client; timeouts are applied per request.
func New(client *http.Client, cfg Config) *Fetcher {
	cfg = cfg.WithDefaults()
	if client == nil {
		client = &http.Client{}
	}
	c := *client
	if c.CheckRedirect == nil {
		c.CheckRedirect = RedirectPolicy(cfg.MaxRedirects)
	}

	f := &Fetcher{client: &c, cfg: cfg}
	if cfg.RespectRobots {
		f.robots = NewRobotsChecker(&c, cfg.UserAgent, cfg.RobotsCacheTTL)
	}
	return f
}

// RedirectPolicy returns a CheckRedirect function that stops after maxHops redirects.
func RedirectPolicy(maxHops int) func(*http.Request, []*http.Request) error {
	return func(_ *http.Request, via []*http.Request) error {
		if maxHops > 0 && len(via) >= maxHops {
			return ErrTooManyRedirects
		}
		return nil
	}
}

// Headers returns the request headers sent with every page fetch.
func (f *Fetcher) Headers() http.Header {
	h := make(http.Header)
	h.Set("User-Agent", f.cfg.UserAgent)
	h.Set("Accept", defaultAccept)
	h.Set("Accept-Language", defaultAcceptLanguage)
	h.Set("Connection", "keep-alive")
	h.Set("Upgrade-Insecure-Requests", "1")
	return h
}

// Get fetches rawURL. timeout bounds the whole exchange including the body read; 0 means none.
// Any received response is returned as a Page whatever its status; use RaiseForStatus to reject
// non-2xx pages. Bodies beyond MaxBodyBytes are truncated.
func (f *Fetcher) Get(ctx context.Context, rawURL string, timeout time.Duration) (*Page, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	if f.robots != nil {
		allowed, err := f.robots.IsAllowed(ctx, rawURL)
		if err != nil {
			return nil, err
		}
		if !allowed {
			return nil, fmt.Errorf("fetch %s: %w", rawURL, ErrDisallowed)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = f.Headers()

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Header:     resp.Header,
		Body:       decode(raw, resp.Header.Get("Content-Type")),
	}, nil
}

// decode converts body to UTF-8 using the declared or sniffed charset.
// Undecodable bodies are returned unchanged.
func decode(body []byte, contentType string) []byte {
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	out, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return out
}

// CrawlDelay returns the robots.txt crawl-delay for host when robots are respected and known.
func (f *Fetcher) CrawlDelay(host string) time.Duration {
	if f.robots == nil {
		return 0
	}
	return f.robots.CrawlDelay(host)
}
