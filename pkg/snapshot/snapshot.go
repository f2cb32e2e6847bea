package snapshot

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/Sternrassler/swapi-aggregator/pkg/pagination"
	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
)

// DefaultTTL is the default freshness window.
const DefaultTTL = 15 * time.Minute

// ErrNoSnapshot indicates that no snapshot has ever been loaded.
var ErrNoSnapshot = errors.New("no snapshot available")

var (
	refreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "swapi_snapshot_refreshes_total",
			Help: "Total number of snapshot refresh attempts",
		},
		[]string{"result"},
	)

	refreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "swapi_snapshot_refresh_duration_seconds",
			Help:    "Duration of full listing walks",
			Buckets: prometheus.ExponentialBuckets(0.1, 2, 10),
		},
	)

	entitiesGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "swapi_snapshot_entities",
			Help: "Number of entities in the published snapshot",
		},
	)

	staleServed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "swapi_snapshot_stale_served_total",
			Help: "Total number of times a snapshot was served after its refresh failed",
		},
	)
)

// Snapshot is a complete listing. It is never modified after publication.
type Snapshot struct {
	Entities  []swapi.BaseEntity
	FetchedAt time.Time
}

// Len returns the number of entities, 0 for a nil snapshot.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Entities)
}

// LoadError reports a failed load with no earlier snapshot to fall back on.
// It matches both ErrNoSnapshot and the underlying page error.
type LoadError struct {
	Err error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load snapshot: %v", e.Err)
}

func (e *LoadError) Unwrap() []error {
	return []error{ErrNoSnapshot, e.Err}
}

// Store owns the published snapshot.
type Store struct {
	fetcher    pagination.JSONFetcher
	listingURL string
	ttl        time.Duration
	logger     zerolog.Logger

	current atomic.Pointer[Snapshot]
	group   singleflight.Group
}

// New creates an empty store that loads listingURL through fetcher.
// A negative ttl is treated as zero.
func New(fetcher pagination.JSONFetcher, listingURL string, ttl time.Duration, logger zerolog.Logger) *Store {
	if ttl < 0 {
		ttl = 0
	}
	return &Store{
		fetcher:    fetcher,
		listingURL: listingURL,
		ttl:        ttl,
		logger:     logger,
	}
}

// Get returns the published snapshot, if any.
func (s *Store) Get() (*Snapshot, bool) {
	snap := s.current.Load()
	return snap, snap != nil
}

// IsStale reports whether a refresh is due at now.
func (s *Store) IsStale(now time.Time) bool {
	snap := s.current.Load()
	if snap == nil {
		return true
	}
	if s.ttl == 0 {
		return false
	}
	return now.Sub(snap.FetchedAt) > s.ttl
}

// EnsureFresh returns a snapshot usable at now, refreshing first when stale.
// If the refresh fails the previous snapshot is returned; a *LoadError is
// returned only when there is none.
func (s *Store) EnsureFresh(ctx context.Context, now time.Time) (*Snapshot, error) {
	if !s.IsStale(now) {
		snap, _ := s.Get()
		return snap, nil
	}

	snap, err := s.Refresh(ctx)
	if err == nil {
		return snap, nil
	}

	if prev, ok := s.Get(); ok {
		staleServed.Inc()
		s.logger.Warn().
			Err(err).
			Time("fetched_at", prev.FetchedAt).
			Int("entities", prev.Len()).
			Msg("Snapshot refresh failed, serving previous snapshot")
		return prev, nil
	}

	return nil, &LoadError{Err: err}
}

// Refresh walks the listing and publishes a new snapshot. Concurrent calls
// share one walk. The walk is detached from ctx cancellation so that one
// departing caller does not fail the others; ctx only bounds the wait.
func (s *Store) Refresh(ctx context.Context) (*Snapshot, error) {
	ch := s.group.DoChan("refresh", func() (any, error) {
		return s.load(context.WithoutCancel(ctx))
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*Snapshot), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *Store) load(ctx context.Context) (*Snapshot, error) {
	start := time.Now()
	s.logger.Info().Str("url", s.listingURL).Msg("Refreshing snapshot")

	entities, err := pagination.Collect[swapi.BaseEntity](ctx, s.fetcher, s.listingURL)
	duration := time.Since(start)
	refreshDuration.Observe(duration.Seconds())
	if err != nil {
		refreshesTotal.WithLabelValues("error").Inc()
		s.logger.Error().Err(err).Dur("duration", duration).Msg("Snapshot refresh failed")
		return nil, err
	}

	for i := range entities {
		if id, ok := swapi.PersonID(entities[i].URL); ok {
			entities[i].ID = id
		}
	}

	snap := &Snapshot{Entities: entities, FetchedAt: time.Now()}
	s.current.Store(snap)

	refreshesTotal.WithLabelValues("success").Inc()
	entitiesGauge.Set(float64(len(entities)))
	s.logger.Info().
		Int("entities", len(entities)).
		Dur("duration", duration).
		Msg("Snapshot published")

	return snap, nil
}
