// Package app wires configuration, storage and the crawl pipeline into one batch run.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shpitdev/site-email-crawler/internal/config"
	"github.com/shpitdev/site-email-crawler/internal/crawl"
	"github.com/shpitdev/site-email-crawler/internal/fetch"
	"github.com/shpitdev/site-email-crawler/internal/logger"
	"github.com/shpitdev/site-email-crawler/internal/pipeline"
	"github.com/shpitdev/site-email-crawler/pkg/business"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/core"
	localio "github.com/shpitdev/site-email-crawler/pkg/pipeline/io/local"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/redact"
)

// Run reads cfg.Input, crawls every business website and writes the enriched document to
// cfg.Output. Only storage failures and cancellation fail the run.
func Run(ctx context.Context, cfg *config.Config, log logger.Logger) (pipeline.Summary, error) {
	f := fetch.New(&http.Client{}, fetch.Config{
		UserAgent:     cfg.UserAgent,
		MaxBodyBytes:  cfg.MaxBodyBytes,
		RespectRobots: cfg.RespectRobots,
	})
	delay := cfg.PolitenessDelay
	if delay == 0 {
		delay = -1
	}
	c := crawl.New(f, log, crawl.Options{
		PrimaryTimeout:  cfg.PrimaryTimeout,
		LinkTimeout:     cfg.LinkTimeout,
		PolitenessDelay: delay,
	})

	return RunWith(ctx,
		localio.FileInput{Path: cfg.Input, Format: cfg.InputFormat()},
		localio.FileOutput{Path: cfg.Output, Format: cfg.OutputFormat()},
		c,
		log,
		pipeline.Options{
			Workers:         cfg.Workers,
			MaxRetries:      cfg.MaxRetries,
			RateLimitRPS:    cfg.RateLimitRPS,
			BusinessTimeout: cfg.BusinessTimeout,
		},
	)
}

// RunWith is Run over arbitrary storage adapters and crawler.
func RunWith(
	ctx context.Context,
	in core.InputAdapter[business.Record],
	out core.OutputAdapter[business.Record],
	crawler pipeline.SiteCrawler,
	log logger.Logger,
	opts pipeline.Options,
) (pipeline.Summary, error) {
	log = logger.OrNop(log).With(zap.String("run_id", uuid.NewString()))
	start := time.Now()

	records, err := in.Load(ctx)
	if err != nil {
		return pipeline.Summary{}, fmt.Errorf("read input: %w", err)
	}
	log.Info("run start",
		zap.Int("businesses", len(records)),
		zap.Int("workers", opts.Workers),
		zap.Int("max_retries", opts.MaxRetries),
		zap.Float64("rate_limit_rps", opts.RateLimitRPS),
	)

	enriched, sum, err := pipeline.EnrichBusinesses(ctx, records, crawler, log, opts)
	if err != nil {
		return sum, fmt.Errorf("enrich businesses: %w", err)
	}

	if err := out.Store(ctx, enriched); err != nil {
		return sum, fmt.Errorf("write output: %w", err)
	}

	log.Info("run complete",
		zap.Int("businesses", sum.Businesses),
		zap.Int("enriched", sum.Enriched),
		zap.Int("failed", sum.Failed),
		zap.Duration("duration", time.Since(start).Round(time.Millisecond)),
	)
	return sum, nil
}

// ErrorString renders err for the terminal with secrets removed.
func ErrorString(err error) string {
	if err == nil {
		return ""
	}
	return redact.Secrets(err.Error())
}
