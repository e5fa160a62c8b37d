package queries

import (
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/TomerAberbach/website/domain/core/aggregates"
	"github.com/TomerAberbach/website/domain/core/valueobjects"
)

// GetGraphQuery represents a query for the laid out post graph
type GetGraphQuery struct{}

// Validate validates the query
func (q GetGraphQuery) Validate() error {
	return nil
}

// ListPostsQuery represents a query for post summaries, optionally
// restricted to posts carrying a tag
type ListPostsQuery struct {
	Tag string `json:"tag,omitempty"`
}

// Validate validates the query
func (q ListPostsQuery) Validate() error {
	if q.Tag != "" && strings.TrimSpace(q.Tag) == "" {
		return errors.New("tag cannot be blank")
	}
	return nil
}

// GetPostQuery represents a query for a single post
type GetPostQuery struct {
	PostID string `json:"post_id"`
}

// Validate validates the query
func (q GetPostQuery) Validate() error {
	if q.PostID == "" {
		return errors.New("postID is required")
	}
	if _, err := valueobjects.NewPostID(q.PostID); err != nil {
		return err
	}
	return nil
}

// ListTagsQuery represents a query for every tag and how many posts carry it
type ListTagsQuery struct{}

// Validate validates the query
func (q ListTagsQuery) Validate() error {
	return nil
}

// Versioned records the graph build a result was computed from
type Versioned struct {
	BuildID string `json:"-"`
}

// Build returns the ID of the build the result was computed from
func (v Versioned) Build() string {
	return v.BuildID
}

// GraphResult is the laid out graph of one build. It encodes as the graph.
type GraphResult struct {
	Versioned
	Graph *aggregates.Graph
}

// MarshalJSON implements json.Marshaler
func (r *GraphResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Graph)
}

// PostSummary is a post without its content
type PostSummary struct {
	ID          string                  `json:"id"`
	Title       string                  `json:"title"`
	Description string                  `json:"description,omitempty"`
	Date        time.Time               `json:"date"`
	Href        string                  `json:"href"`
	Tags        []valueobjects.TagGroup `json:"tags"`
}

// ListPostsResult lists posts newest first
type ListPostsResult struct {
	Versioned
	Posts []PostSummary `json:"posts"`
	Total int           `json:"total"`
}

// PostDetail is a post with its rendered content and references
type PostDetail struct {
	Versioned
	PostSummary
	HTML       string                            `json:"html"`
	References map[string]valueobjects.StringSet `json:"references"`
	Backlinks  []string                          `json:"backlinks"`
}

// TagCount is a tag with the number of posts carrying it
type TagCount struct {
	Name     string `json:"name"`
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// ListTagsResult lists tags by descending count, then name
type ListTagsResult struct {
	Versioned
	Tags []TagCount `json:"tags"`
}
