// Package config loads and validates pipeline configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures all pipeline configuration knobs loaded via Viper.
type Config struct {
	Paths   PathsConfig   `mapstructure:"paths"`
	HTTP    HTTPConfig    `mapstructure:"http"`
	Runner  RunnerConfig  `mapstructure:"runner"`
	Sources SourcesConfig `mapstructure:"sources"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// PathsConfig sets the directory layout the pipeline reads and writes.
type PathsConfig struct {
	ModelDir    string `mapstructure:"model_dir"`
	DataDir     string `mapstructure:"data_dir"`
	OutputDir   string `mapstructure:"output_dir"`
	SnapshotDir string `mapstructure:"snapshot_dir"`
	// ExpandedPath points at the optional expanded-tier gene list JSON.
	// Empty or missing file degrades to zero expanded nodes.
	ExpandedPath string `mapstructure:"expanded_path"`
	// DerivedDir holds the optional sibling expanded-pipeline output
	// consumed by the digest generator.
	DerivedDir string `mapstructure:"derived_dir"`
	// CueBinary names the external model tool executable.
	CueBinary string `mapstructure:"cue_binary"`
}

// HTTPConfig configures fetch client retry behavior.
type HTTPConfig struct {
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxRetries     int     `mapstructure:"max_retries"`
	BackoffBase    float64 `mapstructure:"backoff_base"`
	// RequestDelayMs is the fixed inter-request delay normalizers apply
	// between calls to the same external service.
	RequestDelayMs int `mapstructure:"request_delay_ms"`
}

// RunnerConfig governs the parallel run coordinator.
type RunnerConfig struct {
	Concurrency int `mapstructure:"concurrency"`
	StaleDays   int `mapstructure:"stale_days"`
}

// SourcesConfig holds per-source credentials and thresholds.
type SourcesConfig struct {
	OMIMAPIKey string `mapstructure:"omim_api_key"`
	// StringMinScore is the minimum STRING combined score (0-1000) for an
	// interaction partner to be kept.
	StringMinScore int    `mapstructure:"string_min_score"`
	NCBIAPIKey     string `mapstructure:"ncbi_api_key"`
}

// ServerConfig controls the preview HTTP server.
type ServerConfig struct {
	Port int `mapstructure:"port"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("LACUENE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("paths.model_dir", "model")
	v.SetDefault("paths.data_dir", "data")
	v.SetDefault("paths.output_dir", "output")
	v.SetDefault("paths.snapshot_dir", "output/snapshots")
	v.SetDefault("paths.expanded_path", "../lacuene-exp/expanded/hgnc_craniofacial.json")
	v.SetDefault("paths.derived_dir", "../lacuene-exp/derived")
	v.SetDefault("paths.cue_binary", "cue")
	v.SetDefault("http.timeout_seconds", 30)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_base", 2.0)
	v.SetDefault("http.request_delay_ms", 500)
	v.SetDefault("runner.concurrency", 4)
	v.SetDefault("runner.stale_days", 30)
	v.SetDefault("sources.string_min_score", 700)
	v.SetDefault("server.port", 8080)
	v.SetDefault("logging.development", false)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Paths.ModelDir == "" {
		return fmt.Errorf("paths.model_dir must be set")
	}
	if c.Paths.CueBinary == "" {
		return fmt.Errorf("paths.cue_binary must be set")
	}
	if c.HTTP.TimeoutSeconds <= 0 {
		return fmt.Errorf("http.timeout_seconds must be > 0")
	}
	if c.HTTP.MaxRetries < 0 {
		return fmt.Errorf("http.max_retries must be >= 0")
	}
	if c.HTTP.BackoffBase <= 1 {
		return fmt.Errorf("http.backoff_base must be > 1")
	}
	if c.Runner.Concurrency <= 0 {
		return fmt.Errorf("runner.concurrency must be > 0")
	}
	if c.Runner.StaleDays <= 0 {
		return fmt.Errorf("runner.stale_days must be > 0")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port must be > 0")
	}
	return nil
}

// HTTPTimeout converts the configured timeout into a duration.
func (c Config) HTTPTimeout() time.Duration {
	return time.Duration(c.HTTP.TimeoutSeconds) * time.Second
}

// RequestDelay converts the configured inter-request delay into a duration.
func (c Config) RequestDelay() time.Duration {
	return time.Duration(c.HTTP.RequestDelayMs) * time.Millisecond
}

// StaleAge converts the staleness threshold into a duration.
func (c Config) StaleAge() time.Duration {
	return time.Duration(c.Runner.StaleDays) * 24 * time.Hour
}
