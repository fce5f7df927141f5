package sina

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"sinacrawler/pkg/config"
	errs "sinacrawler/pkg/errors"
	"sinacrawler/pkg/logger"
	"sinacrawler/pkg/retry"
)

// mockRoundTripper allows us to intercept HTTP requests
type mockRoundTripper struct {
	handler func(req *http.Request) (*http.Response, error)
}

func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	return m.handler(req)
}

func fastRetry(attempts int) *retry.Config {
	return &retry.Config{
		MaxAttempts: attempts,
		Backoff:     func(error) retry.BackoffStrategy { return &retry.ConstantBackoff{Delay: time.Millisecond} },
		RetryIf:     retry.DefaultRetryIf,
		Logger:      logger.NewNopLogger(),
	}
}

func testSinaConfig(agents ...string) config.SinaConfig {
	return config.SinaConfig{BaseURL: BaseURL, Timeout: 5 * time.Second, UserAgents: agents}
}

func TestFetchReturnsBody(t *testing.T) {
	var gotUA, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotAccept = r.Header.Get("Accept")
		_, _ = w.Write([]byte(`{"ok":1}`))
	}))
	defer srv.Close()

	client := NewClient(testSinaConfig("agent-a"), nil, logger.NewNopLogger())
	body, err := client.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, `{"ok":1}`, string(body))
	assert.Equal(t, "agent-a", gotUA)
	assert.Contains(t, gotAccept, "application/json")
}

func TestFetchRotatesUserAgents(t *testing.T) {
	var mu sync.Mutex
	seen := map[string]bool{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		seen[r.Header.Get("User-Agent")] = true
		mu.Unlock()
	}))
	defer srv.Close()

	client := NewClient(testSinaConfig("a", "b", "c"), nil, logger.NewNopLogger())
	for i := 0; i < 60; i++ {
		_, err := client.Fetch(context.Background(), srv.URL)
		require.NoError(t, err)
	}

	mu.Lock()
	defer mu.Unlock()
	assert.Greater(t, len(seen), 1)
	for ua := range seen {
		assert.Contains(t, []string{"a", "b", "c"}, ua)
	}
}

func TestFetchStatusMapping(t *testing.T) {
	tests := []struct {
		status   int
		wantType errs.ErrorType
	}{
		{http.StatusNotFound, errs.ErrorTypeNotFound},
		{http.StatusTooManyRequests, errs.ErrorTypeRateLimit},
		{http.StatusBadGateway, errs.ErrorTypeServerError},
		{http.StatusForbidden, errs.ErrorTypeUnknown},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			client := NewClient(testSinaConfig("ua"), nil, logger.NewNopLogger())
			_, err := client.Fetch(context.Background(), srv.URL)

			require.Error(t, err)
			assert.True(t, errs.IsType(err, tt.wantType), "got %v", err)

			var apiErr *errs.Error
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.status, apiErr.Code)
		})
	}
}

func TestFetchRetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(`{"data":{}}`))
	}))
	defer srv.Close()

	client := NewClient(testSinaConfig("ua"), fastRetry(3), logger.NewNopLogger())
	body, err := client.Fetch(context.Background(), srv.URL)

	require.NoError(t, err)
	assert.Equal(t, `{"data":{}}`, string(body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestFetchDoesNotRetryNotFound(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(testSinaConfig("ua"), fastRetry(5), logger.NewNopLogger())
	_, err := client.Fetch(context.Background(), srv.URL)

	assert.True(t, errs.IsType(err, errs.ErrorTypeNotFound))
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestFetchNetworkError(t *testing.T) {
	tl := logger.NewTestLogger()
	client := NewClient(testSinaConfig("ua"), nil, tl)
	client.httpClient = &http.Client{Transport: &mockRoundTripper{
		handler: func(req *http.Request) (*http.Response, error) {
			return nil, errors.New("connection refused")
		},
	}}

	_, err := client.Fetch(context.Background(), "https://m.weibo.cn/api/container/getIndex")

	assert.True(t, errs.IsType(err, errs.ErrorTypeNetwork))
	assert.True(t, tl.HasMessage("HTTP request failed"))
}

func TestFetchCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(testSinaConfig("ua"), fastRetry(3), logger.NewNopLogger())
	_, err := client.Fetch(ctx, srv.URL)

	assert.ErrorIs(t, err, context.Canceled)
}
