package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/Sternrassler/swapi-aggregator/pkg/aggregator"
	"github.com/Sternrassler/swapi-aggregator/pkg/logging"
	"github.com/Sternrassler/swapi-aggregator/pkg/metrics"
	"github.com/Sternrassler/swapi-aggregator/pkg/snapshot"
)

const requestIDHeader = "X-Request-ID"

// newRouter builds the HTTP routes of the proxy.
func newRouter(a *app) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(accessLog)
	r.Use(middleware.Recoverer)
	r.Use(cors)

	r.Get("/health", healthHandler)
	r.Get("/ready", readyHandler(a.service, a.refStore))
	r.Method(http.MethodGet, "/metrics", metrics.Handler())
	r.Get("/api/characters", charactersHandler(a.service))

	return r
}

// requestID tags each request with an id (taken from X-Request-ID when
// present) and stores a logger carrying it in the request context.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		logger := logging.NewLogger(logging.ComponentServer).With().Str("request_id", id).Logger()
		next.ServeHTTP(w, r.WithContext(logger.WithContext(r.Context())))
	})
}

func accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		zerolog.Ctx(r.Context()).Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Int("bytes", ww.BytesWritten()).
			Dur("duration", time.Since(start)).
			Msg("Request served")
	})
}

// cors allows browser clients from any origin.
func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, HEAD, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+requestIDHeader)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "OK")
}

// readiness is satisfied once a snapshot is available.
type readiness interface {
	Ready() bool
}

// readyHandler reports 200 when a snapshot is loaded and the shared cache
// (if any) answers.
func readyHandler(svc readiness, store pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !svc.Ready() {
			http.Error(w, "snapshot not loaded", http.StatusServiceUnavailable)
			return
		}
		if store != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := store.Ping(ctx); err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Reference cache not reachable")
				http.Error(w, "reference cache unavailable", http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK")
	}
}

type errorBody struct {
	Error string `json:"error"`
}

// charactersService is the part of aggregator.Service the handler uses.
type charactersService interface {
	Characters(ctx context.Context, q aggregator.Query) (*aggregator.Response, error)
}

func charactersHandler(svc charactersService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := zerolog.Ctx(r.Context())
		q := aggregator.ParseQuery(r.URL.Query())

		resp, err := svc.Characters(r.Context(), q)
		switch {
		case err == nil:
			writeJSON(w, http.StatusOK, resp)
		case errors.Is(err, context.Canceled):
			logger.Debug().Err(err).Msg("Client went away")
		case errors.Is(err, snapshot.ErrNoSnapshot):
			logger.Error().Err(err).Msg("Characters unavailable")
			writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "Failed to load characters."})
		default:
			logger.Error().Err(err).Msg("Characters request failed")
			writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
		}
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to write response")
	}
}
