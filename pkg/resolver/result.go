package resolver

import (
	"errors"
	"strings"

	"github.com/Sternrassler/swapi-aggregator/pkg/client"
	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
)

// Sentinel replaces any value that could not be resolved.
const Sentinel = "Unknown"

var (
	// ErrNoReference means the person record carries no reference to follow.
	ErrNoReference = errors.New("no reference")

	// ErrNoMatch means a fallback search finished without a hit.
	ErrNoMatch = errors.New("no matching record")

	// ErrEmptyField means a fetched record lacks the expected display field.
	ErrEmptyField = errors.New("empty display field")
)

// Kind classifies a resolution failure.
type Kind string

const (
	KindNone      Kind = ""
	KindMissing   Kind = "missing"
	KindNotFound  Kind = "not_found"
	KindMalformed Kind = "malformed"
	// KindRateLimited means the upstream kept answering 429 until the
	// retries ran out.
	KindRateLimited Kind = "rate_limited"
	KindUpstream    Kind = "upstream"
)

// KindOf classifies err. A nil error has KindNone.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, ErrNoReference):
		return KindMissing
	case errors.Is(err, ErrNoMatch), errors.Is(err, client.ErrNotFound):
		return KindNotFound
	case errors.Is(err, ErrEmptyField), errors.Is(err, client.ErrMalformed):
		return KindMalformed
	case client.IsRateLimited(err):
		return KindRateLimited
	default:
		return KindUpstream
	}
}

// Result is the outcome of one resolution. Value is always set; when Err is
// non-nil it holds Sentinel (or, for lists, Sentinel in the failed slots).
type Result[T any] struct {
	Value T
	Err   error
}

// Degraded reports whether any part of the value is a substitute.
func (r Result[T]) Degraded() bool {
	return r.Err != nil
}

// Kind classifies r.Err.
func (r Result[T]) Kind() Kind {
	return KindOf(r.Err)
}

func resolved(v string) Result[string] {
	return Result[string]{Value: v}
}

func degraded(err error) Result[string] {
	return Result[string]{Value: Sentinel, Err: err}
}

// displayValue returns v, or ErrEmptyField when v is blank.
func displayValue(v string) (string, error) {
	if strings.TrimSpace(v) == "" {
		return "", ErrEmptyField
	}
	return v, nil
}

// refKey is the cache key of a reference: the resource path after the base
// URL ("films/1"), so that different upstream hosts share entries.
func refKey(ref string) string {
	ref = strings.TrimRight(strings.TrimSpace(ref), "/")
	if label := swapi.EndpointLabel(ref); label != "other" {
		if i := strings.LastIndex(ref, "/"+label+"/"); i >= 0 {
			return ref[i+1:]
		}
	}
	return ref
}
