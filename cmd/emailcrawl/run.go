package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/shpitdev/site-email-crawler/internal/app"
	"github.com/shpitdev/site-email-crawler/internal/config"
	"github.com/shpitdev/site-email-crawler/internal/crawl"
	"github.com/shpitdev/site-email-crawler/internal/fetch"
	"github.com/shpitdev/site-email-crawler/internal/logger"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/worker"
)

func newRunCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Crawl every business website and write the enriched list",
		Example: `  emailcrawl run
  emailcrawl run --input businesses.json --output output.json
  EMAILCRAWL_WORKERS=3 emailcrawl run --input shops.csv --output shops.csv --respect-robots`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(config.LoadOptions{
				ConfigFile: g.configFile,
				EnvFile:    g.envFile,
				Flags:      cmd.Flags(),
			})
			if err != nil {
				return usageErr(err)
			}
			if err := cfg.Validate(); err != nil {
				return usageErr(err)
			}

			log, err := logger.New(cfg.Log)
			if err != nil {
				return usageErr(err)
			}
			defer func() {
				_ = log.Sync()
			}()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if _, err := app.Run(ctx, cfg, log); err != nil {
				return runErr(err)
			}
			return nil
		},
	}

	f := cmd.Flags()
	f.StringP("input", "i", config.DefaultInput, "input document of businesses (.json, .yaml, .csv)")
	f.StringP("output", "o", config.DefaultOutput, "output document path")
	f.String("format", "", "document format for input and output: json, yaml or csv (default from file extension)")
	f.Int("workers", worker.DefaultWorkers, "concurrent site crawls")
	f.Int("max-retries", 0, "re-crawl a site whose home page failed transiently, up to this many times")
	f.Float64("rate-limit-rps", 0, "global limit on site crawls started per second, 0 disables")
	f.Duration("primary-timeout", crawl.DefaultPrimaryTimeout, "home page request timeout")
	f.Duration("link-timeout", crawl.DefaultLinkTimeout, "contact page request timeout")
	f.Duration("politeness-delay", crawl.DefaultPolitenessDelay, "pause between page requests to the same site")
	f.Int64("max-body-bytes", fetch.DefaultMaxBodyBytes, "maximum bytes read from one page")
	f.String("user-agent", fetch.DefaultUserAgent, "User-Agent header sent with every request")
	f.Bool("respect-robots", false, "skip pages disallowed by robots.txt")
	f.Duration("business-timeout", 0, "bound on the whole crawl of one business, 0 disables")
	f.String("log-level", logger.DefaultLevel, "log level: debug, info, warn, error")
	f.String("log-format", logger.DefaultFormat, "log encoding: console or json")
	return cmd
}
