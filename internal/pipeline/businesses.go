// Package pipeline runs the site crawler over a list of businesses and merges the addresses
// it finds back into the records.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shpitdev/site-email-crawler/internal/crawl"
	"github.com/shpitdev/site-email-crawler/internal/email"
	"github.com/shpitdev/site-email-crawler/internal/fetch"
	"github.com/shpitdev/site-email-crawler/internal/logger"
	"github.com/shpitdev/site-email-crawler/pkg/business"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/core"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/redact"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/worker"
)

// SiteCrawler produces the report for one business website. *crawl.Crawler implements it.
type SiteCrawler interface {
	Crawl(ctx context.Context, business, website string) crawl.Report
}

type Options struct {
	// Workers caps concurrent site crawls. Defaults to worker.DefaultWorkers.
	Workers int
	// MaxRetries re-crawls a site whose home page failed transiently and yielded nothing.
	MaxRetries   int
	RateLimitRPS float64
	// BackoffInitial is the first retry sleep; 0 uses the pool default.
	BackoffInitial time.Duration
	// BusinessTimeout bounds the whole crawl of one business, links included. Zero means no
	// bound beyond the per-request timeouts.
	BusinessTimeout time.Duration
}

// rateLimitedRetries caps re-crawls of a site that answered 429 Too Many Requests.
const rateLimitedRetries = 1

// Summary counts the outcome of one batch.
type Summary struct {
	Businesses int
	// Enriched records got an email field from this run.
	Enriched int
	// Failed records kept their original content because the crawl or the task failed.
	Failed int
}

type outcome struct {
	record business.Record
	report crawl.Report
}

// EnrichBusinesses crawls every record's website and returns the records in input order,
// with email set where at least one address was found. A business whose crawl fails, or whose
// task panics, comes back unchanged. Only cancellation of ctx fails the batch.
func EnrichBusinesses(
	ctx context.Context,
	records []business.Record,
	crawler SiteCrawler,
	log logger.Logger,
	opts Options,
) ([]business.Record, Summary, error) {
	log = logger.OrNop(log)
	sum := Summary{Businesses: len(records)}

	process := func(ctx context.Context, rec business.Record) (outcome, error) {
		rep := crawler.Crawl(ctx, rec.Name(), rec.WebsiteLink)
		if err := retryable(rep, opts.MaxRetries); err != nil {
			return outcome{record: rec, report: rep}, err
		}
		if rep.Found() {
			rec.SetEmail(strings.Join(rep.Emails, email.Separator))
		}
		return outcome{record: rec, report: rep}, nil
	}

	completed := 0
	onResult := func(res worker.Result[business.Record, outcome]) error {
		completed++
		fields := []zap.Field{
			zap.String("business", res.Input.Name()),
			zap.String("progress", fmt.Sprintf("%d/%d", completed, len(records))),
		}
		switch {
		case res.Err != nil:
			sum.Failed++
			log.Error("business task failed, keeping original record",
				append(fields, zap.String("error", redact.Secrets(res.Err.Error())))...)
		case res.Output.report.Err != nil:
			sum.Failed++
			log.Info("business processed", append(fields, zap.Bool("reachable", false))...)
		default:
			if res.Output.report.Found() {
				sum.Enriched++
			}
			log.Info("business processed", append(fields, zap.Int("emails", len(res.Output.report.Emails)))...)
		}
		return nil
	}

	results, err := worker.ProcessAllWithCallback(ctx, records, process, onResult, worker.Options{
		Workers:           opts.Workers,
		MaxRetries:        opts.MaxRetries,
		RateLimitRPS:      opts.RateLimitRPS,
		TaskTimeout:       opts.BusinessTimeout,
		BackoffInitial:    opts.BackoffInitial,
		BackoffJitterFrac: 0.2,
	})
	if err != nil {
		return nil, sum, err
	}

	out := make([]business.Record, len(results))
	for i, res := range results {
		if res.Err != nil {
			out[i] = records[i]
			continue
		}
		out[i] = res.Output.record
	}
	return out, sum, nil
}

// retryable turns a transient home page failure that yielded nothing into an error the worker
// pool retries. It returns nil when the report should be kept as is.
func retryable(rep crawl.Report, maxRetries int) error {
	if rep.Err == nil || rep.Found() || maxRetries <= 0 || !fetch.IsTransient(rep.Err) {
		return nil
	}
	err := fmt.Errorf("crawl %s: %w", redact.Secrets(rep.URL), rep.Err)

	var httpErr *fetch.HTTPError
	if errors.As(rep.Err, &httpErr) && httpErr.StatusCode == http.StatusTooManyRequests {
		return &core.LimitedTransientError{Err: err, ExtraRetries: rateLimitedRetries}
	}
	return &core.TransientError{Err: err}
}
