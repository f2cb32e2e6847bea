// Package ratelimit gates upstream calls through a single process-wide pool
// of admission slots. The pool size is the knob that keeps the proxy under
// the upstream rate limit: every outbound HTTP attempt holds one slot for
// the duration of the call and releases it before any retry backoff.
package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"golang.org/x/sync/semaphore"
)

// DefaultSlots is the default number of concurrent upstream calls.
const DefaultSlots = 2

// Prometheus metrics for admission control.
var (
	admissionInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapi_admission_in_flight",
		Help: "Number of upstream calls currently holding an admission slot",
	})

	admissionWaitSeconds = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "swapi_admission_wait_seconds",
		Help:    "Time spent waiting for an admission slot",
		Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 2, 5, 10},
	})

	admissionSlots = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "swapi_admission_slots",
		Help: "Configured size of the admission pool",
	})
)

// Admission is a fixed-size pool of slots shared by every upstream call.
// A nil *Admission admits everything.
type Admission struct {
	sem    *semaphore.Weighted
	size   int
	logger zerolog.Logger
}

// NewAdmission creates a pool with the given number of slots.
// Sizes below 1 fall back to DefaultSlots.
func NewAdmission(size int, logger zerolog.Logger) *Admission {
	if size < 1 {
		size = DefaultSlots
	}
	admissionSlots.Set(float64(size))
	return &Admission{
		sem:    semaphore.NewWeighted(int64(size)),
		size:   size,
		logger: logger,
	}
}

// Size returns the number of slots.
func (a *Admission) Size() int {
	if a == nil {
		return 0
	}
	return a.size
}

// Acquire blocks until a slot is free or ctx is done.
func (a *Admission) Acquire(ctx context.Context) error {
	if a == nil {
		return nil
	}

	start := time.Now()
	if err := a.sem.Acquire(ctx, 1); err != nil {
		return fmt.Errorf("acquire admission slot: %w", err)
	}

	waited := time.Since(start)
	admissionWaitSeconds.Observe(waited.Seconds())
	admissionInFlight.Inc()

	if waited > time.Second {
		a.logger.Debug().
			Dur("waited", waited).
			Int("slots", a.size).
			Msg("Admission slot acquired after wait")
	}
	return nil
}

// Release returns a slot acquired with Acquire.
func (a *Admission) Release() {
	if a == nil {
		return
	}
	admissionInFlight.Dec()
	a.sem.Release(1)
}
