// Package video defines the study-video search contract. The actual
// lookup is an external collaborator (YouTube Data API); the core only
// sees (title, link) pairs.
package video

import "context"

// Video is a single search result.
type Video struct {
	Title string
	URL   string
}

// Searcher finds study videos for a topic.
type Searcher interface {
	// Search returns up to maxResults videos for the topic, most relevant
	// first. Implementations must apply their own bounded timeout.
	Search(ctx context.Context, topic string, maxResults int) ([]Video, error)
}
