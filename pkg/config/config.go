// Package config loads the aggregator configuration from an optional YAML
// file and environment variables. Command-line flags are applied on top by
// the caller before Validate.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	"github.com/Sternrassler/swapi-aggregator/pkg/logging"
	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
)

// Duration is a time.Duration written as "15m", "2s" in YAML.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(s))
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// UpstreamConfig configures the upstream catalog client.
type UpstreamConfig struct {
	BaseURL        string   `yaml:"base_url"`
	UserAgent      string   `yaml:"user_agent"`
	RequestTimeout Duration `yaml:"request_timeout"`
	// MaxConcurrency is the number of admission slots shared by all calls.
	MaxConcurrency int      `yaml:"max_concurrency"`
	RetryAttempts  int      `yaml:"retry_attempts"`
	RetryBaseDelay Duration `yaml:"retry_base_delay"`
}

// ServerConfig configures the HTTP endpoint.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	PageSize        int      `yaml:"page_size"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// SnapshotConfig configures the entity snapshot.
type SnapshotConfig struct {
	// TTL of zero loads once and never refreshes.
	TTL Duration `yaml:"ttl"`
	// Warmup loads the snapshot at startup instead of on the first request.
	Warmup bool `yaml:"warmup"`
}

// RedisConfig configures the optional shared reference cache.
type RedisConfig struct {
	// URL is either redis://... or host:port. Empty keeps caches in memory.
	URL string `yaml:"url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Config is the complete aggregator configuration.
type Config struct {
	Upstream UpstreamConfig `yaml:"upstream"`
	Server   ServerConfig   `yaml:"server"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Redis    RedisConfig    `yaml:"redis"`
	Log      LogConfig      `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Upstream: UpstreamConfig{
			BaseURL:        swapi.DefaultBaseURL,
			UserAgent:      "swapi-aggregator/0.1.0",
			RequestTimeout: Duration(30 * time.Second),
			MaxConcurrency: 2,
			RetryAttempts:  5,
			RetryBaseDelay: Duration(2 * time.Second),
		},
		Server: ServerConfig{
			Port:            5000,
			PageSize:        10,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Snapshot: SnapshotConfig{
			TTL: Duration(15 * time.Minute),
		},
		Log: LogConfig{
			Level: string(logging.LevelInfo),
		},
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped
// when path is empty) and then with environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables read through lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}

	if v, ok := get("SWAPI_BASE_URL"); ok {
		c.Upstream.BaseURL = v
	}
	if v, ok := get("USER_AGENT"); ok {
		c.Upstream.UserAgent = v
	}
	if v, ok := get("REDIS_URL"); ok {
		c.Redis.URL = v
	}
	if v, ok := get("LOG_LEVEL"); ok {
		c.Log.Level = v
	}
	if v, ok := get("LOG_PRETTY"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_PRETTY: %w", err)
		}
		c.Log.Pretty = b
	}
	if v, ok := get("PORT"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = n
	}
	if v, ok := get("MAX_CONCURRENCY"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("MAX_CONCURRENCY: %w", err)
		}
		c.Upstream.MaxConcurrency = n
	}
	if v, ok := get("SNAPSHOT_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("SNAPSHOT_TTL: %w", err)
		}
		c.Snapshot.TTL = Duration(d)
	}
	return nil
}

// Validate reports every invalid field at once.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.Upstream.BaseURL) == "" {
		errs = append(errs, errors.New("upstream.base_url is required"))
	}
	if strings.TrimSpace(c.Upstream.UserAgent) == "" {
		errs = append(errs, errors.New("upstream.user_agent is required"))
	}
	if c.Upstream.MaxConcurrency < 1 {
		errs = append(errs, fmt.Errorf("upstream.max_concurrency must be >= 1 (got %d)", c.Upstream.MaxConcurrency))
	}
	if c.Upstream.RetryAttempts < 1 {
		errs = append(errs, fmt.Errorf("upstream.retry_attempts must be >= 1 (got %d)", c.Upstream.RetryAttempts))
	}
	if c.Upstream.RetryBaseDelay < 0 {
		errs = append(errs, errors.New("upstream.retry_base_delay must not be negative"))
	}
	if c.Upstream.RequestTimeout < 0 {
		errs = append(errs, errors.New("upstream.request_timeout must not be negative"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be in 1..65535 (got %d)", c.Server.Port))
	}
	if c.Server.PageSize < 1 {
		errs = append(errs, fmt.Errorf("server.page_size must be >= 1 (got %d)", c.Server.PageSize))
	}
	if c.Snapshot.TTL < 0 {
		errs = append(errs, errors.New("snapshot.ttl must not be negative"))
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := c.RedisOptions(); err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// RedisOptions returns connection options for the shared reference cache,
// or nil when Redis is not configured.
func (c Config) RedisOptions() (*redis.Options, error) {
	raw := strings.TrimSpace(c.Redis.URL)
	if raw == "" {
		return nil, nil
	}
	if strings.Contains(raw, "://") {
		opts, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("redis.url: %w", err)
		}
		return opts, nil
	}
	return &redis.Options{Addr: raw}, nil
}
