package resolver

import (
	"errors"
	"fmt"
	"testing"

	"github.com/Sternrassler/swapi-aggregator/pkg/client"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, KindNone},
		{"no reference", ErrNoReference, KindMissing},
		{"no match wrapped", fmt.Errorf("search: %w", ErrNoMatch), KindNotFound},
		{"upstream 404", &client.UpstreamError{StatusCode: 404, ErrorClass: client.ErrorClassClient, Err: client.ErrNotFound}, KindNotFound},
		{"empty field", ErrEmptyField, KindMalformed},
		{"decode failure", fmt.Errorf("%w: bad json", client.ErrMalformed), KindMalformed},
		{"server error", &client.UpstreamError{StatusCode: 500, ErrorClass: client.ErrorClassServer}, KindUpstream},
		{"retry exhausted", &client.UpstreamError{StatusCode: 429, ErrorClass: client.ErrorClassRateLimit, Err: client.ErrRetryExhausted}, KindRateLimited},
		{"retry exhausted wrapped", fmt.Errorf("planet: %w", &client.UpstreamError{StatusCode: 429, ErrorClass: client.ErrorClassRateLimit, Err: client.ErrRetryExhausted}), KindRateLimited},
		{"other", errors.New("boom"), KindUpstream},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := KindOf(tt.err); got != tt.want {
				t.Errorf("KindOf() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestResult_Degraded(t *testing.T) {
	if resolved("Tatooine").Degraded() {
		t.Error("resolved result should not be degraded")
	}

	r := degraded(ErrNoReference)
	if !r.Degraded() {
		t.Error("degraded result should be degraded")
	}
	if r.Value != Sentinel {
		t.Errorf("Value = %q, want %q", r.Value, Sentinel)
	}
	if r.Kind() != KindMissing {
		t.Errorf("Kind() = %q, want missing", r.Kind())
	}
}

func TestRefKey(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"https://www.swapi.tech/api/films/1", "films/1"},
		{"https://swapi.tech/api/films/1/", "films/1"},
		{"  https://www.swapi.tech/api/species/3 ", "species/3"},
		{"https://example.test/other/9", "https://example.test/other/9"},
	}

	for _, tt := range tests {
		if got := refKey(tt.ref); got != tt.want {
			t.Errorf("refKey(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}
