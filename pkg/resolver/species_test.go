package resolver

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/Sternrassler/swapi-aggregator/internal/testutil"
	"github.com/Sternrassler/swapi-aggregator/pkg/cache"
	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
)

func newSpeciesResolver(t *testing.T, mock *testutil.MockSWAPI) *SpeciesResolver {
	t.Helper()
	return NewSpeciesResolver(newTestClient(t), mock.Endpoints(), nil, zerolog.Nop())
}

func TestSpeciesResolver_Direct(t *testing.T) {
	mock := newMock(t)
	mock.SetSpecies("2", "Droid")

	r := newSpeciesResolver(t, mock)
	person := swapi.PersonProperties{Species: []string{mock.BaseURL() + "/species/2", mock.BaseURL() + "/species/9"}}

	for i := 0; i < 3; i++ {
		res := r.Resolve(context.Background(), "2", person)
		if res.Value != "Droid" || res.Degraded() {
			t.Fatalf("Resolve = %+v, want Droid", res)
		}
	}

	// Only the first reference is used and later lookups hit the cache.
	if n := mock.PathCount("/api/species/2"); n != 1 {
		t.Errorf("species/2 requests = %d, want 1", n)
	}
	if n := mock.PathCount("/api/species/9"); n != 0 {
		t.Errorf("species/9 requests = %d, want 0", n)
	}
}

func TestSpeciesResolver_DirectFailure(t *testing.T) {
	mock := newMock(t)
	mock.SetResponse("/api/species/2", testutil.NewServerErrorResponse())

	r := newSpeciesResolver(t, mock)
	res := r.Resolve(context.Background(), "2", swapi.PersonProperties{Species: []string{mock.BaseURL() + "/species/2"}})

	if res.Value != Sentinel {
		t.Errorf("Value = %q, want %q", res.Value, Sentinel)
	}
	if res.Kind() != KindUpstream {
		t.Errorf("Kind() = %q, want upstream", res.Kind())
	}

	// Failures are not cached.
	if _, ok := r.names.Get(context.Background(), "species/2"); ok {
		t.Error("failed lookup must not be cached")
	}
}

func TestSpeciesResolver_MemberSearch(t *testing.T) {
	mock := newMock(t)
	mock.ServeListing("/api/species", 2, []swapi.ResourceRef{
		mock.Ref("species", "1", "Human"),
		mock.Ref("species", "2", "Droid"),
		mock.Ref("species", "3", "Wookiee"),
		mock.Ref("species", "4", "Rodian"),
	})
	mock.SetSpecies("1", "Human", mock.PersonURL("1"), mock.PersonURL("10"))
	mock.SetSpecies("2", "Droid", mock.PersonURL("2"), mock.PersonURL("3"))
	mock.SetSpecies("3", "Wookiee", mock.PersonURL("13"))
	mock.SetSpecies("4", "Rodian", mock.PersonURL("15"))

	r := newSpeciesResolver(t, mock)
	res := r.Resolve(context.Background(), "13", swapi.PersonProperties{})

	if res.Value != "Wookiee" || res.Degraded() {
		t.Fatalf("Resolve = %+v, want Wookiee", res)
	}

	// Sequential scan stops at the first hit.
	if n := mock.PathCount("/api/species/4"); n != 0 {
		t.Errorf("species/4 requests = %d, want 0", n)
	}
	for _, p := range []string{"/api/species/1", "/api/species/2", "/api/species/3"} {
		if n := mock.PathCount(p); n != 1 {
			t.Errorf("%s requests = %d, want 1", p, n)
		}
	}

	// The hit is remembered by reference.
	if name, ok := r.names.Get(context.Background(), "species/3"); !ok || name != "Wookiee" {
		t.Errorf("cached species/3 = %q, %v", name, ok)
	}
}

func TestSpeciesResolver_MemberSearchSkipsFailingSpecies(t *testing.T) {
	mock := newMock(t)
	mock.ServeListing("/api/species", 10, []swapi.ResourceRef{
		mock.Ref("species", "1", "Human"),
		mock.Ref("species", "2", "Droid"),
	})
	mock.SetResponse("/api/species/1", testutil.NewServerErrorResponse())
	mock.SetSpecies("2", "Droid", mock.PersonURL("2"))

	r := newSpeciesResolver(t, mock)
	res := r.Resolve(context.Background(), "2", swapi.PersonProperties{})

	if res.Value != "Droid" {
		t.Errorf("Value = %q, want Droid", res.Value)
	}
}

func TestSpeciesResolver_MemberSearchNoMatch(t *testing.T) {
	mock := newMock(t)
	mock.ServeListing("/api/species", 10, []swapi.ResourceRef{mock.Ref("species", "1", "Human")})
	mock.SetSpecies("1", "Human", mock.PersonURL("1"))

	r := newSpeciesResolver(t, mock)
	res := r.Resolve(context.Background(), "42", swapi.PersonProperties{})

	if res.Value != Sentinel {
		t.Errorf("Value = %q, want %q", res.Value, Sentinel)
	}
	if res.Kind() != KindNotFound {
		t.Errorf("Kind() = %q, want not_found", res.Kind())
	}
}

func TestSpeciesResolver_MemberSearchListingFailure(t *testing.T) {
	mock := newMock(t)
	mock.SetResponse("/api/species", testutil.NewServerErrorResponse())

	r := newSpeciesResolver(t, mock)
	res := r.Resolve(context.Background(), "1", swapi.PersonProperties{})

	if res.Value != Sentinel || res.Kind() != KindUpstream {
		t.Errorf("Resolve = %+v (kind %q), want Sentinel/upstream", res, res.Kind())
	}
}

func TestSpeciesResolver_MemberSearchNeedsID(t *testing.T) {
	mock := newMock(t)
	r := newSpeciesResolver(t, mock)

	res := r.Resolve(context.Background(), "", swapi.PersonProperties{})
	if res.Kind() != KindMissing {
		t.Errorf("Kind() = %q, want missing", res.Kind())
	}
	if mock.RequestCount() != 0 {
		t.Errorf("requests = %d, want 0", mock.RequestCount())
	}
}

func TestSpeciesResolver_SharedCache(t *testing.T) {
	mock := newMock(t)
	mock.SetSpecies("1", "Human")

	names := cache.NewReferenceCache(cache.KindSpecies, cache.NewMemoryStore(), zerolog.Nop())
	names.Set(context.Background(), "species/1", "Cached Human")

	r := NewSpeciesResolver(newTestClient(t), mock.Endpoints(), names, zerolog.Nop())
	res := r.Resolve(context.Background(), "1", swapi.PersonProperties{Species: []string{mock.BaseURL() + "/species/1"}})

	if res.Value != "Cached Human" {
		t.Errorf("Value = %q, want Cached Human", res.Value)
	}
	if mock.RequestCount() != 0 {
		t.Errorf("requests = %d, want 0", mock.RequestCount())
	}
}
