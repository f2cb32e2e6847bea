package main

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Sternrassler/swapi-aggregator/pkg/aggregator"
	"github.com/Sternrassler/swapi-aggregator/pkg/cache"
	"github.com/Sternrassler/swapi-aggregator/pkg/client"
	"github.com/Sternrassler/swapi-aggregator/pkg/config"
	"github.com/Sternrassler/swapi-aggregator/pkg/enrich"
	"github.com/Sternrassler/swapi-aggregator/pkg/logging"
	"github.com/Sternrassler/swapi-aggregator/pkg/ratelimit"
	"github.com/Sternrassler/swapi-aggregator/pkg/resolver"
	"github.com/Sternrassler/swapi-aggregator/pkg/snapshot"
	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
)

// pinger is a dependency checked by the readiness probe.
type pinger interface {
	Ping(ctx context.Context) error
}

// app wires the aggregator components for one process.
type app struct {
	service   *aggregator.Service
	snapshots *snapshot.Store
	admission *ratelimit.Admission
	redis     *redis.Client
	// refStore is pinged by /ready when it is shared.
	refStore pinger
}

// newApp builds every component from cfg. With a Redis URL the reference
// caches live in Redis and are shared between replicas.
func newApp(ctx context.Context, cfg config.Config) (*app, error) {
	a := &app{}

	var store cache.Store = cache.NewMemoryStore()
	opts, err := cfg.RedisOptions()
	if err != nil {
		return nil, err
	}
	if opts != nil {
		a.redis = redis.NewClient(opts)
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := a.redis.Ping(pingCtx).Err(); err != nil {
			a.redis.Close()
			return nil, fmt.Errorf("failed to connect to Redis at %s: %w", opts.Addr, err)
		}
		redisStore := cache.NewRedisStore(a.redis)
		store = redisStore
		a.refStore = redisStore
	}

	clientCfg := client.DefaultConfig(cfg.Upstream.UserAgent)
	clientCfg.RequestTimeout = cfg.Upstream.RequestTimeout.Std()
	clientCfg.Retry = client.RetryConfig{
		MaxAttempts: cfg.Upstream.RetryAttempts,
		BaseDelay:   cfg.Upstream.RetryBaseDelay.Std(),
	}
	a.admission = ratelimit.NewAdmission(cfg.Upstream.MaxConcurrency, logging.NewLogger(logging.ComponentAdmission))
	clientCfg.Admission = a.admission

	upstream, err := client.New(clientCfg)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create upstream client: %w", err)
	}

	endpoints := swapi.NewEndpoints(cfg.Upstream.BaseURL)
	cacheLogger := logging.NewLogger(logging.ComponentCache)
	resolverLogger := logging.NewLogger(logging.ComponentResolver)

	orchestrator := enrich.NewOrchestrator(
		upstream,
		endpoints,
		resolver.NewHomeworldResolver(upstream, resolverLogger),
		resolver.NewSpeciesResolver(upstream, endpoints, cache.NewReferenceCache(cache.KindSpecies, store, cacheLogger), resolverLogger),
		resolver.NewFilmResolver(upstream, endpoints, cache.NewReferenceCache(cache.KindFilm, store, cacheLogger), resolverLogger),
		logging.NewLogger(logging.ComponentEnrich),
	)

	a.snapshots = snapshot.New(upstream, endpoints.People(), cfg.Snapshot.TTL.Std(), logging.NewLogger(logging.ComponentSnapshot))
	a.service = aggregator.NewService(a.snapshots, orchestrator, aggregator.Options{
		PageSize:     cfg.Server.PageSize,
		PreloadFilms: true,
		Logger:       logging.NewLogger(logging.ComponentAggregator),
	})

	return a, nil
}

// warmup loads the snapshot ahead of the first request.
func (a *app) warmup(ctx context.Context) {
	logger := logging.NewLogger(logging.ComponentServer)
	if _, err := a.snapshots.EnsureFresh(ctx, time.Now()); err != nil {
		logger.Warn().Err(err).Msg("Snapshot warmup failed, retrying on first request")
		return
	}
	logger.Info().Msg("Snapshot warmup complete")
}

// Close releases the Redis connection, if any.
func (a *app) Close() {
	if a.redis != nil {
		a.redis.Close()
	}
}
