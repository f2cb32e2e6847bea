// Command swapi-proxy serves enriched Star Wars characters aggregated from
// the public SWAPI.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Sternrassler/swapi-aggregator/pkg/config"
	"github.com/Sternrassler/swapi-aggregator/pkg/logging"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// flagValues holds command-line overrides.
type flagValues struct {
	configPath     string
	port           int
	baseURL        string
	redisURL       string
	logLevel       string
	logPretty      bool
	maxConcurrency int
	snapshotTTL    time.Duration
	warmup         bool
}

func newRootCommand() *cobra.Command {
	var flags flagValues

	cmd := &cobra.Command{
		Use:           "swapi-proxy",
		Short:         "Serve enriched SWAPI characters",
		Long:          "swapi-proxy keeps a snapshot of the SWAPI people listing and serves\npages of characters with their homeworld, species and films resolved.",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, flags)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.configPath, "config", "c", "", "path to a YAML config file")
	f.IntVarP(&flags.port, "port", "p", 0, "listen port (env PORT)")
	f.StringVar(&flags.baseURL, "base-url", "", "upstream API root (env SWAPI_BASE_URL)")
	f.StringVar(&flags.redisURL, "redis-url", "", "redis address for the shared reference cache (env REDIS_URL)")
	f.StringVar(&flags.logLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
	f.BoolVar(&flags.logPretty, "log-pretty", false, "human readable logs (env LOG_PRETTY)")
	f.IntVar(&flags.maxConcurrency, "max-concurrency", 0, "concurrent upstream calls (env MAX_CONCURRENCY)")
	f.DurationVar(&flags.snapshotTTL, "snapshot-ttl", 0, "snapshot freshness window, 0 loads once (env SNAPSHOT_TTL)")
	f.BoolVar(&flags.warmup, "warmup", false, "load the snapshot at startup")

	return cmd
}

// loadConfig layers file, environment and explicitly set flags, then validates.
func loadConfig(cmd *cobra.Command, flags flagValues) (config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return config.Config{}, err
	}

	changed := cmd.Flags().Changed
	if changed("port") {
		cfg.Server.Port = flags.port
	}
	if changed("base-url") {
		cfg.Upstream.BaseURL = flags.baseURL
	}
	if changed("redis-url") {
		cfg.Redis.URL = flags.redisURL
	}
	if changed("log-level") {
		cfg.Log.Level = flags.logLevel
	}
	if changed("log-pretty") {
		cfg.Log.Pretty = flags.logPretty
	}
	if changed("max-concurrency") {
		cfg.Upstream.MaxConcurrency = flags.maxConcurrency
	}
	if changed("snapshot-ttl") {
		cfg.Snapshot.TTL = config.Duration(flags.snapshotTTL)
	}
	if changed("warmup") {
		cfg.Snapshot.Warmup = flags.warmup
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// serve runs the HTTP server until ctx is cancelled.
func serve(ctx context.Context, cfg config.Config) error {
	level, _ := logging.ParseLevel(cfg.Log.Level)
	logging.Setup(logging.Config{Level: level, Pretty: cfg.Log.Pretty, Output: os.Stderr})
	logger := logging.NewLogger(logging.ComponentServer)

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	if cfg.Snapshot.Warmup {
		go a.warmup(ctx)
	}

	addr := net.JoinHostPort("", strconv.Itoa(cfg.Server.Port))
	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(a),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("addr", addr).
			Str("upstream", cfg.Upstream.BaseURL).
			Str("user_agent", cfg.Upstream.UserAgent).
			Int("admission_slots", a.admission.Size()).
			Dur("snapshot_ttl", cfg.Snapshot.TTL.Std()).
			Bool("redis", cfg.Redis.URL != "").
			Msg("Starting SWAPI aggregator")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.Server.ShutdownTimeout.Std())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Graceful shutdown failed")
		return err
	}
	return nil
}
