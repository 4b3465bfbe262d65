package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gradehub/gradehub-bot/internal/domain/shared"
	"github.com/gradehub/gradehub-bot/internal/domain/video"
	"github.com/gradehub/gradehub-bot/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

const (
	// defaultBaseURL is the YouTube Data API v3 root.
	defaultBaseURL = "https://www.googleapis.com/youtube/v3"

	// watchURLPrefix builds a playable link from a video ID.
	watchURLPrefix = "https://www.youtube.com/watch?v="

	// maxResultsCeiling is the API-side limit for a single search page.
	maxResultsCeiling = 50
)

// ClientConfig contains configuration for the YouTube API client.
type ClientConfig struct {
	// BaseURL is the API base URL. Defaults to the public endpoint;
	// overridable for tests.
	BaseURL string

	// APIKey is the YouTube Data API key. Required.
	APIKey string

	// Timeout is the HTTP request timeout
	Timeout time.Duration

	// RateLimiterConfig for API rate limiting
	RateLimiterConfig RateLimiterConfig

	// RetryConfig for retry behavior
	RetryConfig retry.Config

	// Logger for structured logging
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(apiKey string) ClientConfig {
	return ClientConfig{
		BaseURL:           defaultBaseURL,
		APIKey:            apiKey,
		Timeout:           10 * time.Second,
		RateLimiterConfig: DefaultRateLimiterConfig(),
		RetryConfig:       retry.DefaultConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the YouTube Data API search client. It implements video.Searcher.
type Client struct {
	config      ClientConfig
	httpClient  *http.Client
	logger      *slog.Logger
	rateLimiter *RateLimiter
	retrier     *retry.Retrier
}

// compile-time interface check
var _ video.Searcher = (*Client)(nil)

// NewClient creates a new YouTube API client.
func NewClient(config ClientConfig) *Client {
	if config.BaseURL == "" {
		config.BaseURL = defaultBaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = 10 * time.Second
	}
	if config.Logger == nil {
		config.Logger = slog.Default()
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:      config.Logger,
		rateLimiter: NewRateLimiter(config.RateLimiterConfig),
		retrier:     retry.New(config.RetryConfig),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SEARCH
// ══════════════════════════════════════════════════════════════════════════════

// searchResponse mirrors the subset of the search.list response we consume.
type searchResponse struct {
	Items []struct {
		ID struct {
			VideoID string `json:"videoId"`
		} `json:"id"`
		Snippet struct {
			Title string `json:"title"`
		} `json:"snippet"`
	} `json:"items"`
}

// apiErrorResponse mirrors the Google API error envelope.
type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Search returns up to maxResults videos for the topic, most relevant first.
// An empty topic is a validation error; an empty result list is not.
func (c *Client) Search(ctx context.Context, topic string, maxResults int) ([]video.Video, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, shared.NewDomainError("video", "Search", shared.ErrValidation,
			"search topic cannot be empty")
	}
	if maxResults <= 0 {
		maxResults = 5
	}
	if maxResults > maxResultsCeiling {
		maxResults = maxResultsCeiling
	}

	if err := c.rateLimiter.Allow(ctx); err != nil {
		return nil, shared.WrapError("video", "Search", shared.ErrRateLimited,
			"rate limiter rejected search request", err)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", topic)
	params.Set("type", "video")
	params.Set("maxResults", strconv.Itoa(maxResults))
	params.Set("key", c.config.APIKey)

	fullURL := c.config.BaseURL + "/search?" + params.Encode()

	var resp searchResponse
	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		return c.doSearch(ctx, fullURL, &resp)
	})
	if err != nil {
		return nil, shared.WrapError("video", "Search", shared.ErrExternalService,
			"youtube search failed", err)
	}

	results := make([]video.Video, 0, len(resp.Items))
	for _, item := range resp.Items {
		if item.ID.VideoID == "" {
			continue
		}
		results = append(results, video.Video{
			Title: item.Snippet.Title,
			URL:   watchURLPrefix + item.ID.VideoID,
		})
	}

	c.logger.Debug("youtube search completed",
		"topic", topic,
		"results", len(results),
	)

	return results, nil
}

// doSearch performs a single search request. Server-side and quota errors
// come back retryable; client errors are permanent.
func (c *Client) doSearch(ctx context.Context, fullURL string, result *searchResponse) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return retry.Retryable(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return retry.Retryable(fmt.Errorf("read response: %w", err))
	}

	switch {
	case resp.StatusCode == http.StatusOK:
		if err := json.Unmarshal(respBody, result); err != nil {
			return retry.Permanent(fmt.Errorf("unmarshal response: %w", err))
		}
		return nil

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusForbidden:
		// 403 from this API usually means quota exhaustion, not auth.
		c.rateLimiter.RecordRateLimitHit()
		return retry.Retryable(apiError(resp.StatusCode, respBody))

	case resp.StatusCode >= 500:
		return retry.Retryable(apiError(resp.StatusCode, respBody))

	default:
		return retry.Permanent(apiError(resp.StatusCode, respBody))
	}
}

// apiError extracts the API error message if the body carries one.
func apiError(status int, body []byte) error {
	var envelope apiErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return fmt.Errorf("youtube api: status %d: %s", status, envelope.Error.Message)
	}
	return fmt.Errorf("youtube api: status %d", status)
}

// IsHealthy checks if the API is reachable with the configured key.
func (c *Client) IsHealthy(ctx context.Context) bool {
	results, err := c.Search(ctx, "test", 1)
	return err == nil && results != nil
}
