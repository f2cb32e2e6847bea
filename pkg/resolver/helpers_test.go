package resolver

import (
	"testing"
	"time"

	"github.com/Sternrassler/swapi-aggregator/internal/testutil"
	"github.com/Sternrassler/swapi-aggregator/pkg/client"
)

func newTestClient(t *testing.T) *client.Client {
	t.Helper()
	cfg := client.DefaultConfig("resolver-test/1.0")
	cfg.Retry.BaseDelay = time.Millisecond
	c, err := client.New(cfg)
	if err != nil {
		t.Fatalf("client.New failed: %v", err)
	}
	return c
}

func newMock(t *testing.T) *testutil.MockSWAPI {
	t.Helper()
	mock := testutil.NewMockSWAPI()
	t.Cleanup(mock.Close)
	return mock
}
