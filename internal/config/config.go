// Package config loads run settings from defaults, an optional YAML file, a .env file,
// EMAILCRAWL_* environment variables and command-line flags, lowest precedence first.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/shpitdev/site-email-crawler/internal/crawl"
	"github.com/shpitdev/site-email-crawler/internal/fetch"
	"github.com/shpitdev/site-email-crawler/internal/logger"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/schema"
	"github.com/shpitdev/site-email-crawler/pkg/pipeline/worker"
)

// EnvPrefix namespaces environment variables, e.g. EMAILCRAWL_WORKERS.
const EnvPrefix = "EMAILCRAWL"

const defaultConfigName = "emailcrawl"

// Default documents, read and written in the working directory.
const (
	DefaultInput  = "businesses.json"
	DefaultOutput = "output.json"
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid configuration")

// Config holds the settings of one crawl run.
type Config struct {
	Input  string `mapstructure:"input"  yaml:"input"`
	Output string `mapstructure:"output" yaml:"output"`
	// Format overrides the document format inferred from file extensions.
	Format string `mapstructure:"format" yaml:"format"`

	Workers      int     `mapstructure:"workers"        yaml:"workers"`
	MaxRetries   int     `mapstructure:"max_retries"    yaml:"max_retries"`
	RateLimitRPS float64 `mapstructure:"rate_limit_rps" yaml:"rate_limit_rps"`

	PrimaryTimeout  time.Duration `mapstructure:"primary_timeout"  yaml:"primary_timeout"`
	LinkTimeout     time.Duration `mapstructure:"link_timeout"     yaml:"link_timeout"`
	PolitenessDelay time.Duration `mapstructure:"politeness_delay" yaml:"politeness_delay"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"   yaml:"max_body_bytes"`
	UserAgent       string        `mapstructure:"user_agent"       yaml:"user_agent"`
	RespectRobots   bool          `mapstructure:"respect_robots"   yaml:"respect_robots"`
	// BusinessTimeout bounds the crawl of one business including its links. Zero disables it.
	BusinessTimeout time.Duration `mapstructure:"business_timeout" yaml:"business_timeout"`

	Log logger.Config `mapstructure:"log" yaml:"log"`
}

// LoadOptions says where Load looks for settings. Zero values use ./emailcrawl.yaml and ./.env
// when they exist.
type LoadOptions struct {
	ConfigFile string
	EnvFile    string
	// Flags are bound by name with dashes mapped to underscores, e.g. --max-retries.
	Flags *pflag.FlagSet
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input", DefaultInput)
	v.SetDefault("output", DefaultOutput)
	v.SetDefault("format", "")
	v.SetDefault("workers", worker.DefaultWorkers)
	v.SetDefault("max_retries", 0)
	v.SetDefault("rate_limit_rps", 0.0)
	v.SetDefault("primary_timeout", crawl.DefaultPrimaryTimeout)
	v.SetDefault("link_timeout", crawl.DefaultLinkTimeout)
	v.SetDefault("politeness_delay", crawl.DefaultPolitenessDelay)
	v.SetDefault("max_body_bytes", fetch.DefaultMaxBodyBytes)
	v.SetDefault("user_agent", fetch.DefaultUserAgent)
	v.SetDefault("respect_robots", false)
	v.SetDefault("business_timeout", time.Duration(0))
	v.SetDefault("log.level", logger.DefaultLevel)
	v.SetDefault("log.format", logger.DefaultFormat)
}

// Load resolves the configuration. It does not validate it.
func Load(opts LoadOptions) (*Config, error) {
	if err := loadEnvFile(opts.EnvFile); err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := readConfigFile(v, opts.ConfigFile); err != nil {
		return nil, err
	}

	if err := bindFlags(v, opts.Flags); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode configuration: %w", err)
	}
	cfg.Log.SetDefaults()
	return &cfg, nil
}

// flagKeys maps command-line flag names onto configuration keys.
var flagKeys = map[string]string{
	"input":            "input",
	"output":           "output",
	"format":           "format",
	"workers":          "workers",
	"max-retries":      "max_retries",
	"rate-limit-rps":   "rate_limit_rps",
	"primary-timeout":  "primary_timeout",
	"link-timeout":     "link_timeout",
	"politeness-delay": "politeness_delay",
	"max-body-bytes":   "max_body_bytes",
	"user-agent":       "user_agent",
	"respect-robots":   "respect_robots",
	"business-timeout": "business_timeout",
	"log-level":        "log.level",
	"log-format":       "log.format",
}

// bindFlags binds the known flags present in flags. Only flags the user set override other sources.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range flagKeys {
		f := flags.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

func loadEnvFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func readConfigFile(v *viper.Viper, path string) error {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("read config file %s: %w", path, err)
		}
		return nil
	}

	v.SetConfigName(defaultConfigName)
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}
	return nil
}

// Validate rejects settings a run cannot start with.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Input) == "" {
		problems = append(problems, "input is required")
	}
	if strings.TrimSpace(c.Output) == "" {
		problems = append(problems, "output is required")
	}
	if c.Format != "" && schema.NormalizeFormat(c.Format) == "" {
		problems = append(problems, fmt.Sprintf("unknown format %q", c.Format))
	}
	if c.Workers <= 0 {
		problems = append(problems, "workers must be positive")
	}
	if c.MaxRetries < 0 {
		problems = append(problems, "max_retries must not be negative")
	}
	if c.RateLimitRPS < 0 {
		problems = append(problems, "rate_limit_rps must not be negative")
	}
	if c.PrimaryTimeout <= 0 || c.LinkTimeout <= 0 {
		problems = append(problems, "timeouts must be positive")
	}
	if c.BusinessTimeout < 0 {
		problems = append(problems, "business_timeout must not be negative")
	}
	if c.PolitenessDelay < 0 {
		problems = append(problems, "politeness_delay must not be negative")
	}
	if c.MaxBodyBytes <= 0 {
		problems = append(problems, "max_body_bytes must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

// InputFormat is the format used to read Input.
func (c *Config) InputFormat() schema.Format {
	return schema.Resolve(c.Format, c.Input)
}

// OutputFormat is the format used to write Output.
func (c *Config) OutputFormat() schema.Format {
	return schema.Resolve(c.Format, c.Output)
}
