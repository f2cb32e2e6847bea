// Package testutil provides a configurable mock of the upstream catalog API.
package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"time"

	"github.com/Sternrassler/swapi-aggregator/pkg/swapi"
)

// MockResponse defines the behavior for a mock endpoint response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockSWAPI is a configurable mock upstream server for testing.
// Handlers are keyed by URL path; query strings are left to the handler.
type MockSWAPI struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]http.HandlerFunc
	counts   map[string]int
	total    int
}

// NewMockSWAPI creates and starts a new mock server.
func NewMockSWAPI() *MockSWAPI {
	mock := &MockSWAPI{
		handlers: make(map[string]http.HandlerFunc),
		counts:   make(map[string]int),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.total++
		mock.counts[r.URL.Path]++
		handler, exists := mock.handlers[r.URL.Path]
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}
		WriteJSON(w, http.StatusNotFound, map[string]string{"message": "not found"})
	}))

	return mock
}

// URL returns the mock server root URL.
func (m *MockSWAPI) URL() string {
	return m.server.URL
}

// BaseURL returns the API root, i.e. URL() + "/api".
func (m *MockSWAPI) BaseURL() string {
	return m.server.URL + "/api"
}

// Endpoints returns URL builders rooted at BaseURL.
func (m *MockSWAPI) Endpoints() swapi.Endpoints {
	return swapi.NewEndpoints(m.BaseURL())
}

// Close shuts down the mock server.
func (m *MockSWAPI) Close() {
	m.server.Close()
}

// SetHandler sets a custom handler for a specific path.
func (m *MockSWAPI) SetHandler(path string, handler http.HandlerFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[path] = handler
}

// SetResponse configures a fixed response for a path.
func (m *MockSWAPI) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, responseHandler(resp))
}

// SetJSON serves v as a 200 JSON body at path.
func (m *MockSWAPI) SetJSON(path string, v any) {
	m.SetResponse(path, NewJSONResponse(v))
}

// SetSequence serves the responses in order and repeats the last one.
func (m *MockSWAPI) SetSequence(path string, responses ...MockResponse) {
	var mu sync.Mutex
	next := 0
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		resp := responses[min(next, len(responses)-1)]
		next++
		mu.Unlock()
		responseHandler(resp)(w, r)
	})
}

// RequestCount returns the number of requests made to the server.
func (m *MockSWAPI) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.total
}

// PathCount returns the number of requests made to path.
func (m *MockSWAPI) PathCount(path string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.counts[path]
}

// ServeListing registers a paginated listing at path. Pages are selected
// with the page query parameter and link to each other through next.
func (m *MockSWAPI) ServeListing(path string, pageSize int, items []swapi.ResourceRef) {
	m.SetHandler(path, func(w http.ResponseWriter, r *http.Request) {
		page, err := strconv.Atoi(r.URL.Query().Get("page"))
		if err != nil || page < 1 {
			page = 1
		}

		start := min((page-1)*pageSize, len(items))
		end := min(start+pageSize, len(items))

		out := swapi.ListPage[swapi.ResourceRef]{Results: items[start:end]}
		if end < len(items) {
			next := fmt.Sprintf("%s%s?page=%d&limit=%d", m.server.URL, path, page+1, pageSize)
			out.Next = &next
		}
		WriteJSON(w, http.StatusOK, out)
	})
}

// SetPerson serves a person detail record at /api/people/<id>.
func (m *MockSWAPI) SetPerson(id string, props swapi.PersonProperties) {
	m.SetJSON("/api/people/"+id, swapi.Detail[swapi.PersonProperties]{
		Result: &swapi.Resource[swapi.PersonProperties]{UID: id, Properties: props},
	})
}

// SetPlanet serves a planet detail record at /api/planets/<id>.
func (m *MockSWAPI) SetPlanet(id, name string) {
	m.SetJSON("/api/planets/"+id, swapi.Detail[swapi.PlanetProperties]{
		Result: &swapi.Resource[swapi.PlanetProperties]{UID: id, Properties: swapi.PlanetProperties{Name: name}},
	})
}

// SetSpecies serves a species detail record at /api/species/<id>.
func (m *MockSWAPI) SetSpecies(id, name string, people ...string) {
	m.SetJSON("/api/species/"+id, swapi.Detail[swapi.SpeciesProperties]{
		Result: &swapi.Resource[swapi.SpeciesProperties]{
			UID:        id,
			Properties: swapi.SpeciesProperties{Name: name, People: people, URL: m.BaseURL() + "/species/" + id},
		},
	})
}

// SetFilm serves a film detail record at /api/films/<id>.
func (m *MockSWAPI) SetFilm(id, title string, characters ...string) {
	m.SetJSON("/api/films/"+id, swapi.Detail[swapi.FilmProperties]{
		Result: &swapi.Resource[swapi.FilmProperties]{UID: id, Properties: filmProps(m.BaseURL(), id, title, characters)},
	})
}

// SetFilmListing serves the film listing at /api/films.
func (m *MockSWAPI) SetFilmListing(films ...swapi.Resource[swapi.FilmProperties]) {
	m.SetJSON("/api/films", swapi.FilmListing{Result: films})
}

// Film builds a film listing entry rooted at the mock base URL.
func (m *MockSWAPI) Film(id, title string, characters ...string) swapi.Resource[swapi.FilmProperties] {
	return swapi.Resource[swapi.FilmProperties]{UID: id, Properties: filmProps(m.BaseURL(), id, title, characters)}
}

// Ref builds a listing entry for kind/id rooted at the mock base URL.
func (m *MockSWAPI) Ref(kind, id, name string) swapi.ResourceRef {
	return swapi.ResourceRef{UID: id, Name: name, URL: fmt.Sprintf("%s/%s/%s", m.BaseURL(), kind, id)}
}

// PersonURL returns the mock URL of person id.
func (m *MockSWAPI) PersonURL(id string) string {
	return m.BaseURL() + "/people/" + id
}

func filmProps(base, id, title string, characters []string) swapi.FilmProperties {
	return swapi.FilmProperties{Title: title, Characters: characters, URL: base + "/films/" + id}
}

// NewJSONResponse creates a 200 OK response with v encoded as JSON.
func NewJSONResponse(v any) MockResponse {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("testutil: marshal response: %v", err))
	}
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       string(data),
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewRateLimitResponse creates a 429 Too Many Requests response.
func NewRateLimitResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusTooManyRequests,
		Body:       `{"message": "Too many requests, please try again later."}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusInternalServerError,
		Body:       `{"message": "Internal server error"}`,
		Headers:    map[string]string{"Content-Type": "application/json; charset=utf-8"},
	}
}

// NewNotFoundResponse creates a 404 Not Found response.
func NewNotFoundResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusNotFound,
		Body:       `{"message": "not found"}`,
	}
}

func responseHandler(resp MockResponse) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			time.Sleep(resp.Delay)
		}
		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}
		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	}
}

// WriteJSON writes v as a JSON response with status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
