// Package config provides configuration management for pdfjp.
//
// Values come from three layers, later layers winning: built-in defaults,
// an optional config file, and PDFJP_* environment variables.
package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"pdfjp/internal/types"
)

const (
	// DefaultServiceURL is the document-translation page the workflow drives.
	DefaultServiceURL = "https://translate.google.co.jp/?hl=ja&sl=auto&tl=ja&op=docs"
	// DefaultClickTimeout bounds generic UI-interaction waits.
	DefaultClickTimeout = 10 * time.Second
	// DefaultTranslationTimeout bounds the translation-complete wait. It is
	// deliberately larger than the click timeout: translation latency is
	// service-dependent and routinely exceeds ordinary UI responsiveness.
	DefaultTranslationTimeout = 20 * time.Second
	// DefaultDownloadAttempts is the polling budget for the staged file.
	DefaultDownloadAttempts = 10
	// DefaultPollInterval is the interval between staged-file polls.
	DefaultPollInterval = time.Second
	// DefaultFetchTimeout bounds a single remote-PDF request.
	DefaultFetchTimeout = 30 * time.Second
	// DefaultFetchRetries is the total attempt count for the remote fetch.
	DefaultFetchRetries = 3

	envPrefix = "PDFJP"
)

// Config holds all runtime knobs for one translation run.
type Config struct {
	ServiceURL         string        `mapstructure:"service_url"`
	ClickTimeout       time.Duration `mapstructure:"click_timeout"`
	TranslationTimeout time.Duration `mapstructure:"translation_timeout"`
	DownloadAttempts   int           `mapstructure:"download_attempts"`
	PollInterval       time.Duration `mapstructure:"poll_interval"`
	FetchTimeout       time.Duration `mapstructure:"fetch_timeout"`
	FetchRetries       int           `mapstructure:"fetch_retries"`
	Headless           bool          `mapstructure:"headless"`
	LogLevel           string        `mapstructure:"log_level"`
	LogFile            string        `mapstructure:"log_file"`
}

// Default returns a Config with built-in defaults.
func Default() *Config {
	return &Config{
		ServiceURL:         DefaultServiceURL,
		ClickTimeout:       DefaultClickTimeout,
		TranslationTimeout: DefaultTranslationTimeout,
		DownloadAttempts:   DefaultDownloadAttempts,
		PollInterval:       DefaultPollInterval,
		FetchTimeout:       DefaultFetchTimeout,
		FetchRetries:       DefaultFetchRetries,
		Headless:           true,
		LogLevel:           "info",
	}
}

// Load builds a Config from defaults, the config file at path (optional,
// skipped when path is empty), and PDFJP_* environment variables.
func Load(path string) (*Config, error) {
	v := viper.New()

	def := Default()
	v.SetDefault("service_url", def.ServiceURL)
	v.SetDefault("click_timeout", def.ClickTimeout)
	v.SetDefault("translation_timeout", def.TranslationTimeout)
	v.SetDefault("download_attempts", def.DownloadAttempts)
	v.SetDefault("poll_interval", def.PollInterval)
	v.SetDefault("fetch_timeout", def.FetchTimeout)
	v.SetDefault("fetch_retries", def.FetchRetries)
	v.SetDefault("headless", def.Headless)
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_file", def.LogFile)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, types.NewAppError(types.ErrConfig, "failed to read config file", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, types.NewAppError(types.ErrConfig, "failed to parse configuration", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants the workflow relies on.
func (c *Config) Validate() error {
	if c.ServiceURL == "" {
		return types.NewAppError(types.ErrConfig, "service_url must not be empty", nil)
	}
	if c.ClickTimeout <= 0 {
		return types.NewAppError(types.ErrConfig, "click_timeout must be positive", nil)
	}
	// The completion wait must never be shorter than the generic click wait.
	if c.TranslationTimeout < c.ClickTimeout {
		return types.NewAppErrorWithDetails(types.ErrConfig,
			"translation_timeout must be at least click_timeout",
			c.TranslationTimeout.String()+" < "+c.ClickTimeout.String(), nil)
	}
	if c.DownloadAttempts <= 0 {
		return types.NewAppError(types.ErrConfig, "download_attempts must be positive", nil)
	}
	if c.PollInterval <= 0 {
		return types.NewAppError(types.ErrConfig, "poll_interval must be positive", nil)
	}
	if c.FetchTimeout <= 0 {
		return types.NewAppError(types.ErrConfig, "fetch_timeout must be positive", nil)
	}
	if c.FetchRetries <= 0 {
		return types.NewAppError(types.ErrConfig, "fetch_retries must be positive", nil)
	}
	return nil
}

// DownloadBudget is the total time the staged-file poll may take.
func (c *Config) DownloadBudget() time.Duration {
	return time.Duration(c.DownloadAttempts) * c.PollInterval
}
