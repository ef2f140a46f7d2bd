package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"earnings-move/internal/research/impliedmove"
)

type Config struct {
	DataSource    string `yaml:"data_source"`
	LookaheadDays int    `yaml:"lookahead_days"`
	PauseMillis   int    `yaml:"pause_ms"`
	Output        struct {
		JSONPath string `yaml:"json_path"`
		CSVPath  string `yaml:"csv_path"`
		Summary  *bool  `yaml:"summary"`
	} `yaml:"output"`
	Finnhub struct {
		BaseURL        string `yaml:"base_url"`
		TokenEnv       string `yaml:"token_env"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
	} `yaml:"finnhub"`
	Yahoo struct {
		QuoteURL          string `yaml:"quote_url"`
		OptionsURL        string `yaml:"options_url"`
		PageURL           string `yaml:"page_url"`
		TimeoutSeconds    int    `yaml:"timeout_seconds"`
		RequestsPerSecond int    `yaml:"requests_per_second"`
	} `yaml:"yahoo"`
	NameCache struct {
		Enabled  *bool  `yaml:"enabled"`
		Dir      string `yaml:"dir"`
		TTLHours int    `yaml:"ttl_hours"`
	} `yaml:"name_cache"`
	History struct {
		Dir           string `yaml:"dir"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"history"`
	ImpliedMove impliedmove.Config `yaml:"implied_move"`
}

// Default returns the configuration used when no config file is present.
func Default() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

func (c *Config) applyDefaults() {
	if c.DataSource == "" {
		c.DataSource = "LIVE"
	}
	if c.LookaheadDays == 0 {
		c.LookaheadDays = 14
	}
	if c.PauseMillis == 0 {
		c.PauseMillis = 300
	}
	if c.Output.JSONPath == "" {
		c.Output.JSONPath = "earnings.json"
	}
	if c.Output.Summary == nil {
		on := true
		c.Output.Summary = &on
	}
	if c.Finnhub.BaseURL == "" {
		c.Finnhub.BaseURL = "https://finnhub.io/api/v1"
	}
	if c.Finnhub.TokenEnv == "" {
		c.Finnhub.TokenEnv = "FINNHUB_TOKEN"
	}
	if c.Finnhub.TimeoutSeconds == 0 {
		c.Finnhub.TimeoutSeconds = 30
	}
	if c.Yahoo.QuoteURL == "" {
		c.Yahoo.QuoteURL = "https://query1.finance.yahoo.com"
	}
	if c.Yahoo.OptionsURL == "" {
		c.Yahoo.OptionsURL = "https://query2.finance.yahoo.com"
	}
	if c.Yahoo.PageURL == "" {
		c.Yahoo.PageURL = "https://finance.yahoo.com"
	}
	if c.Yahoo.TimeoutSeconds == 0 {
		c.Yahoo.TimeoutSeconds = 30
	}
	if c.Yahoo.RequestsPerSecond == 0 {
		c.Yahoo.RequestsPerSecond = 5
	}
	if c.NameCache.Enabled == nil {
		on := true
		c.NameCache.Enabled = &on
	}
	if c.NameCache.Dir == "" {
		c.NameCache.Dir = "cache/names"
	}
	if c.NameCache.TTLHours == 0 {
		c.NameCache.TTLHours = 168
	}
	if c.History.Dir == "" {
		c.History.Dir = "logs/runs"
	}
	if c.History.RetentionDays == 0 {
		c.History.RetentionDays = 30
	}
	def := impliedmove.DefaultConfig()
	if c.ImpliedMove.StrikeStep == 0 {
		c.ImpliedMove.StrikeStep = def.StrikeStep
	}
	if c.ImpliedMove.StrikeBand == 0 {
		c.ImpliedMove.StrikeBand = def.StrikeBand
	}
}

func (c *Config) Validate() error {
	if c.DataSource != "LIVE" && c.DataSource != "MOCK" {
		return fmt.Errorf("invalid data_source '%s': must be 'LIVE' or 'MOCK'", c.DataSource)
	}
	if c.LookaheadDays < 0 || c.LookaheadDays > 90 {
		return fmt.Errorf("lookahead_days must be between 0-90, got %d", c.LookaheadDays)
	}
	if c.PauseMillis < 0 {
		return fmt.Errorf("pause_ms cannot be negative, got %d", c.PauseMillis)
	}
	if c.Output.JSONPath == "" {
		return errors.New("output.json_path cannot be empty")
	}
	if c.ImpliedMove.StrikeStep < 0 || c.ImpliedMove.StrikeBand < 0 {
		return fmt.Errorf("implied_move strike_step/strike_band must be positive, got %.2f/%.2f",
			c.ImpliedMove.StrikeStep, c.ImpliedMove.StrikeBand)
	}
	if c.Finnhub.TimeoutSeconds < 0 || c.Yahoo.TimeoutSeconds < 0 {
		return errors.New("timeout_seconds cannot be negative")
	}
	if c.Yahoo.RequestsPerSecond < 0 {
		return fmt.Errorf("yahoo.requests_per_second cannot be negative, got %d", c.Yahoo.RequestsPerSecond)
	}
	if c.NameCache.TTLHours < 0 {
		return fmt.Errorf("name_cache.ttl_hours cannot be negative, got %d", c.NameCache.TTLHours)
	}
	return nil
}

// Pause is the delay inserted after each processed event.
func (c *Config) Pause() time.Duration {
	return time.Duration(c.PauseMillis) * time.Millisecond
}

// SummaryEnabled reports whether the console summary table is printed.
func (c *Config) SummaryEnabled() bool {
	return c.Output.Summary == nil || *c.Output.Summary
}

// NameCacheEnabled reports whether resolved company names are cached on disk.
func (c *Config) NameCacheEnabled() bool {
	return c.NameCache.Enabled == nil || *c.NameCache.Enabled
}

// NameCacheTTL is how long a cached company name stays valid.
func (c *Config) NameCacheTTL() time.Duration {
	return time.Duration(c.NameCache.TTLHours) * time.Hour
}

// LoadConfig reads a yaml config file. A missing file yields the defaults.
func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, err
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	c.applyDefaults()

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &c, nil
}
