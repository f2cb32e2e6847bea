package client

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Sternrassler/swapi-aggregator/internal/testutil"
	"github.com/Sternrassler/swapi-aggregator/pkg/ratelimit"
	"github.com/rs/zerolog"
)

func testConfig() Config {
	cfg := DefaultConfig("TestApp/1.0.0")
	cfg.Retry.BaseDelay = time.Millisecond
	cfg.RequestTimeout = 5 * time.Second
	return cfg
}

func newTestClient(t *testing.T, cfg Config) *Client {
	t.Helper()
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}
	return c
}

func TestNew_Validation(t *testing.T) {
	tests := []struct {
		name        string
		config      Config
		expectError bool
		errorMsg    string
	}{
		{
			name:   "valid config",
			config: DefaultConfig("TestApp/1.0.0"),
		},
		{
			name:        "empty user agent",
			config:      DefaultConfig(""),
			expectError: true,
			errorMsg:    "user-agent is required",
		},
		{
			name: "zero attempts",
			config: Config{
				UserAgent: "TestApp/1.0.0",
				Retry:     RetryConfig{MaxAttempts: 0, BaseDelay: time.Second},
			},
			expectError: true,
			errorMsg:    "retry max attempts must be >= 1 (got 0)",
		},
		{
			name: "negative delay",
			config: Config{
				UserAgent: "TestApp/1.0.0",
				Retry:     RetryConfig{MaxAttempts: 3, BaseDelay: -time.Second},
			},
			expectError: true,
			errorMsg:    "retry base delay must not be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.config)
			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if err.Error() != tt.errorMsg {
					t.Errorf("Error = %q, want %q", err.Error(), tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if c == nil {
				t.Fatal("Expected client, got nil")
			}
		})
	}
}

func TestClient_GetJSON_Success(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()
	mock.SetPlanet("1", "Tatooine")

	c := newTestClient(t, testConfig())

	var planet struct {
		Result struct {
			Properties struct {
				Name string `json:"name"`
			} `json:"properties"`
		} `json:"result"`
	}
	if err := c.GetJSON(context.Background(), mock.BaseURL()+"/planets/1", &planet); err != nil {
		t.Fatalf("GetJSON failed: %v", err)
	}
	if planet.Result.Properties.Name != "Tatooine" {
		t.Errorf("name = %q, want Tatooine", planet.Result.Properties.Name)
	}
}

func TestClient_SetsHeaders(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	var userAgent, accept string
	mock.SetHandler("/api/films/1", func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		accept = r.Header.Get("Accept")
		w.Write([]byte(`{}`))
	})

	c := newTestClient(t, testConfig())
	if _, err := c.Fetch(context.Background(), mock.BaseURL()+"/films/1"); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	if userAgent != "TestApp/1.0.0" {
		t.Errorf("User-Agent = %q, want TestApp/1.0.0", userAgent)
	}
	if accept != "application/json" {
		t.Errorf("Accept = %q, want application/json", accept)
	}
}

func TestClient_RetriesRateLimitThenSucceeds(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	mock.SetSequence("/api/people/1",
		testutil.NewRateLimitResponse(),
		testutil.NewRateLimitResponse(),
		testutil.NewJSONResponse(map[string]string{"ok": "yes"}),
	)

	c := newTestClient(t, testConfig())
	resp, err := c.Fetch(context.Background(), mock.BaseURL()+"/people/1")
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
	if got := mock.PathCount("/api/people/1"); got != 3 {
		t.Errorf("upstream calls = %d, want 3", got)
	}
}

func TestClient_RateLimitBoundedAttempts(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()
	mock.SetResponse("/api/people/1", testutil.NewRateLimitResponse())

	cfg := testConfig()
	cfg.Retry.MaxAttempts = 4
	c := newTestClient(t, cfg)

	_, err := c.Fetch(context.Background(), mock.BaseURL()+"/people/1")
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, ErrRetryExhausted) {
		t.Errorf("Expected ErrRetryExhausted, got %v", err)
	}

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("Expected *UpstreamError, got %T", err)
	}
	if ue.StatusCode != http.StatusTooManyRequests {
		t.Errorf("StatusCode = %d, want 429", ue.StatusCode)
	}
	if got := mock.PathCount("/api/people/1"); got != 4 {
		t.Errorf("upstream calls = %d, want 4", got)
	}
}

func TestClient_ErrorsPropagateImmediately(t *testing.T) {
	tests := []struct {
		name      string
		resp      testutil.MockResponse
		wantClass ErrorClass
		wantIs    error
	}{
		{
			name:      "server error",
			resp:      testutil.NewServerErrorResponse(),
			wantClass: ErrorClassServer,
		},
		{
			name:      "not found",
			resp:      testutil.NewNotFoundResponse(),
			wantClass: ErrorClassClient,
			wantIs:    ErrNotFound,
		},
		{
			name:      "bad request",
			resp:      testutil.MockResponse{StatusCode: http.StatusBadRequest},
			wantClass: ErrorClassClient,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := testutil.NewMockSWAPI()
			defer mock.Close()
			mock.SetResponse("/api/species/1", tt.resp)

			c := newTestClient(t, testConfig())
			_, err := c.Fetch(context.Background(), mock.BaseURL()+"/species/1")

			var ue *UpstreamError
			if !errors.As(err, &ue) {
				t.Fatalf("Expected *UpstreamError, got %v", err)
			}
			if ue.ErrorClass != tt.wantClass {
				t.Errorf("ErrorClass = %q, want %q", ue.ErrorClass, tt.wantClass)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("Expected errors.Is(%v), got %v", tt.wantIs, err)
			}
			if got := mock.PathCount("/api/species/1"); got != 1 {
				t.Errorf("upstream calls = %d, want 1", got)
			}
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	url := mock.BaseURL() + "/people/1"
	mock.Close()

	c := newTestClient(t, testConfig())
	_, err := c.Fetch(context.Background(), url)

	var ue *UpstreamError
	if !errors.As(err, &ue) {
		t.Fatalf("Expected *UpstreamError, got %v", err)
	}
	if ue.ErrorClass != ErrorClassNetwork {
		t.Errorf("ErrorClass = %q, want network", ue.ErrorClass)
	}
}

func TestClient_GetJSON_Malformed(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()
	mock.SetResponse("/api/films/2", testutil.MockResponse{StatusCode: http.StatusOK, Body: "<html>"})

	c := newTestClient(t, testConfig())
	var v map[string]any
	err := c.GetJSON(context.Background(), mock.BaseURL()+"/films/2", &v)
	if !errors.Is(err, ErrMalformed) {
		t.Errorf("Expected ErrMalformed, got %v", err)
	}
}

func TestClient_AdmissionBoundsConcurrentCalls(t *testing.T) {
	mock := testutil.NewMockSWAPI()
	defer mock.Close()

	var current, peak int32
	mock.SetHandler("/api/films/1", func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&current, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(10 * time.Millisecond)
		atomic.AddInt32(&current, -1)
		w.Write([]byte(`{}`))
	})

	cfg := testConfig()
	cfg.Admission = ratelimit.NewAdmission(2, zerolog.Nop())
	c := newTestClient(t, cfg)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Fetch(context.Background(), mock.BaseURL()+"/films/1"); err != nil {
				t.Errorf("Fetch failed: %v", err)
			}
		}()
	}
	wg.Wait()

	if peak > 2 {
		t.Errorf("peak concurrent upstream calls = %d, want <= 2", peak)
	}
}

func TestClassifyStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorClass
	}{
		{429, ErrorClassRateLimit},
		{404, ErrorClassClient},
		{400, ErrorClassClient},
		{500, ErrorClassServer},
		{503, ErrorClassServer},
	}

	for _, tt := range tests {
		if got := classifyStatus(tt.status); got != tt.want {
			t.Errorf("classifyStatus(%d) = %q, want %q", tt.status, got, tt.want)
		}
	}
}
