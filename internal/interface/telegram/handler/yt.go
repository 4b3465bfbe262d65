package handler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/gradehub/gradehub-bot/internal/domain/video"
)

const (
	ytUsage     = "Usage: /yt <topic>. Example: /yt Data Structures linked lists"
	ytNoResults = "No results or API error. Make sure YOUTUBE_API_KEY is set and valid."

	// maxTitleLen keeps result messages compact; longer titles are cut
	// to 77 runes plus an ellipsis.
	maxTitleLen = 80

	ytMaxResults = 5
)

// SearchResultCache caches search results per topic. A nil cache disables
// caching entirely.
type SearchResultCache interface {
	Get(ctx context.Context, topic string) ([]video.Video, error)
	Set(ctx context.Context, topic string, results []video.Video) error
}

// SearchHandler answers /yt <topic> with top video links.
type SearchHandler struct {
	searcher video.Searcher
	cache    SearchResultCache
	logger   *slog.Logger
}

// NewSearchHandler creates a SearchHandler. cache may be nil.
func NewSearchHandler(searcher video.Searcher, cache SearchResultCache, logger *slog.Logger) *SearchHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &SearchHandler{searcher: searcher, cache: cache, logger: logger}
}

// Handle searches for the topic and formats the results. Search failures are
// reported to the user as "no results" rather than surfaced as errors; the
// bot should stay conversational when the API is down.
func (h *SearchHandler) Handle(ctx context.Context, req Request) (Response, error) {
	topic := strings.TrimSpace(req.Args)
	if topic == "" {
		return reply(ytUsage), nil
	}

	messages := []string{fmt.Sprintf("Searching YouTube for: %s ...", topic)}

	results := h.search(ctx, topic)
	if len(results) == 0 {
		messages = append(messages, ytNoResults)
		return Response{Messages: messages}, nil
	}

	var sb strings.Builder
	sb.WriteString("Top YouTube results:\n\n")
	for _, v := range results {
		sb.WriteString(fmt.Sprintf("• %s\n%s\n\n", truncateTitle(v.Title), v.URL))
	}

	messages = append(messages, sb.String())
	return Response{Messages: messages}, nil
}

// search consults the cache first and falls back to the live API. Cache
// failures only log; Redis being down must not break /yt.
func (h *SearchHandler) search(ctx context.Context, topic string) []video.Video {
	if h.cache != nil {
		if cached, err := h.cache.Get(ctx, topic); err == nil {
			return cached
		}
	}

	results, err := h.searcher.Search(ctx, topic, ytMaxResults)
	if err != nil {
		h.logger.Error("youtube search failed", "topic", topic, "error", err)
		return nil
	}

	if h.cache != nil && len(results) > 0 {
		if err := h.cache.Set(ctx, topic, results); err != nil {
			h.logger.Warn("failed to cache search results", "topic", topic, "error", err)
		}
	}

	return results
}

// truncateTitle shortens overly long video titles.
func truncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= maxTitleLen {
		return title
	}
	runes := []rune(title)
	return string(runes[:maxTitleLen-3]) + "..."
}
