// Package logging provides structured logging configuration using zerolog.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// LogLevel represents the logging level.
type LogLevel string

const (
	// LevelDebug logs debug messages and above.
	LevelDebug LogLevel = "debug"

	// LevelInfo logs info messages and above.
	LevelInfo LogLevel = "info"

	// LevelWarn logs warning messages and above.
	LevelWarn LogLevel = "warn"

	// LevelError logs error messages only.
	LevelError LogLevel = "error"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum log level to output.
	Level LogLevel

	// Pretty enables human-readable console output (default: false for JSON).
	Pretty bool

	// Output is the writer to output logs to (default: os.Stderr).
	Output io.Writer
}

// DefaultConfig returns a default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:  LevelInfo,
		Pretty: false,
		Output: os.Stderr,
	}
}

// Setup configures the global zerolog logger.
func Setup(cfg Config) zerolog.Logger {
	// Set global log level
	level := parseLevel(cfg.Level)
	zerolog.SetGlobalLevel(level)

	// Configure output
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	var output io.Writer = cfg.Output
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: cfg.Output}
	}

	// Create logger with timestamp
	logger := zerolog.New(output).With().Timestamp().Logger()

	// Set as global logger
	log.Logger = logger

	return logger
}

// ParseLevel converts a level name to a LogLevel. Unknown names are an error.
func ParseLevel(name string) (LogLevel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return "", fmt.Errorf("unknown log level %q", name)
	}
}

// parseLevel converts LogLevel to zerolog.Level.
func parseLevel(level LogLevel) zerolog.Level {
	switch strings.ToLower(string(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// Component names used with NewLogger.
const (
	ComponentServer     = "server"
	ComponentClient     = "swapi-client"
	ComponentAdmission  = "admission"
	ComponentSnapshot   = "snapshot"
	ComponentCache      = "reference-cache"
	ComponentResolver   = "resolver"
	ComponentEnrich     = "enrich"
	ComponentAggregator = "aggregator"
)

// NewLogger creates a new logger with the given component name.
func NewLogger(component string) zerolog.Logger {
	return log.With().Str("component", component).Logger()
}

// Log Level Guidelines:
//
// Debug: Detailed information for debugging
//   - Reference cache hits
//   - Upstream request flow (url, attempt)
//   - Listing pages fetched, species member search hits
//   - Absent references (no homeworld, no species listed)
//
// Info: Normal operation events
//   - Snapshot refresh started/published
//   - Film titles preloaded
//   - Server startup/shutdown
//
// Warn: Warning conditions that don't prevent operation
//   - Rate limited responses and retry attempts
//   - Degraded fields and degraded entities
//   - Previous snapshot served after a failed refresh
//   - Reference cache store errors (read as a miss)
//
// Error: Error conditions requiring attention
//   - Snapshot refresh failed
//   - Upstream network failures
//   - Requests answered with 503
//   - Configuration errors
//
// Context Fields:
//   - url: upstream URL
//   - endpoint: upstream resource kind (people, planets, species, films)
//   - status: HTTP status code
//   - attempt: 1-based attempt number
//   - backoff: retry delay
//   - error_class: client, server, rate_limit, network
//   - entity_id: person id being enriched
//   - field: enriched field (detail, homeworld, species, films)
//   - kind: degradation kind (missing, not_found, malformed, rate_limited, upstream)
//   - entities: entity count
//   - duration: operation duration
//   - request_id: inbound request id
