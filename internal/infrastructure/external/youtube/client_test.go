package youtube

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gradehub/gradehub-bot/internal/domain/shared"
	"github.com/gradehub/gradehub-bot/pkg/retry"
)

func testClientConfig(baseURL string) ClientConfig {
	cfg := DefaultClientConfig("test-key")
	cfg.BaseURL = baseURL
	cfg.Timeout = 2 * time.Second
	cfg.RateLimiterConfig = RateLimiterConfig{
		RequestsPerSecond: 100,
		BurstSize:         100,
		MinInterval:       0,
		WaitTimeout:       time.Second,
	}
	cfg.RetryConfig = retry.Config{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		Multiplier:   2.0,
	}
	return cfg
}

func TestSearch_ReturnsVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "snippet", r.URL.Query().Get("part"))
		assert.Equal(t, "binary search trees", r.URL.Query().Get("q"))
		assert.Equal(t, "video", r.URL.Query().Get("type"))
		assert.Equal(t, "3", r.URL.Query().Get("maxResults"))
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"items": [
				{"id": {"videoId": "abc123"}, "snippet": {"title": "BST Basics"}},
				{"id": {"videoId": "def456"}, "snippet": {"title": "BST Deletion"}},
				{"id": {}, "snippet": {"title": "channel result, no video id"}}
			]
		}`))
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL))

	results, err := client.Search(context.Background(), "binary search trees", 3)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "BST Basics", results[0].Title)
	assert.Equal(t, "https://www.youtube.com/watch?v=abc123", results[0].URL)
	assert.Equal(t, "BST Deletion", results[1].Title)
}

func TestSearch_EmptyTopicIsValidationError(t *testing.T) {
	client := NewClient(testClientConfig("http://unused"))

	_, err := client.Search(context.Background(), "   ", 5)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrValidation)
}

func TestSearch_EmptyResultsIsNotAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL))

	results, err := client.Search(context.Background(), "vanishingly obscure topic", 5)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearch_RetriesServerErrors(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": [{"id": {"videoId": "xyz"}, "snippet": {"title": "Recovered"}}]}`))
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL))

	results, err := client.Search(context.Background(), "flaky backend", 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 3, calls)
}

func TestSearch_BadRequestIsNotRetried(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error": {"code": 400, "message": "invalid parameter"}}`))
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL))

	_, err := client.Search(context.Background(), "whatever", 1)
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrExternalService)
	assert.Contains(t, err.Error(), "invalid parameter")
	assert.Equal(t, 1, calls)
}

func TestSearch_QuotaExhaustionEmptiesBucket(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error": {"code": 403, "message": "quotaExceeded"}}`))
	}))
	defer server.Close()

	cfg := testClientConfig(server.URL)
	client := NewClient(cfg)

	_, err := client.Search(context.Background(), "anything", 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quotaExceeded")

	// Bucket was drained on the quota hit.
	_, ok := client.rateLimiter.tryAcquire()
	assert.False(t, ok)
}

func TestSearch_ClampsMaxResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "50", r.URL.Query().Get("maxResults"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"items": []}`))
	}))
	defer server.Close()

	client := NewClient(testClientConfig(server.URL))

	_, err := client.Search(context.Background(), "huge request", 500)
	require.NoError(t, err)
}
