package entities

import (
	"strings"
	"time"

	"github.com/TomerAberbach/website/domain/core/valueobjects"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"
)

// Post is a published article. It carries its metadata, its tags, and the
// canonical references found in its rendered content.
type Post struct {
	// Private fields ensure encapsulation
	id          valueobjects.PostID
	title       string
	description string
	date        time.Time
	tags        valueobjects.StringSet
	references  map[string]valueobjects.StringSet
	html        string
	draft       bool
}

// PostContent holds the fields of a post that come from its source file
type PostContent struct {
	Title       string
	Description string
	Date        time.Time
	Tags        []string
	HTML        string
	Draft       bool
}

// NewPost creates a new post with business rule validation.
// references maps each canonical reference key to the hrefs that produced it.
func NewPost(id valueobjects.PostID, content PostContent, references map[string]valueobjects.StringSet) (*Post, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("post ID cannot be empty")
	}

	title := strings.TrimSpace(content.Title)
	if title == "" {
		return nil, pkgerrors.NewValidationError("title cannot be empty").
			WithDetail("postID", id.String())
	}

	if content.Date.IsZero() {
		return nil, pkgerrors.NewValidationError("date is required").
			WithDetail("postID", id.String())
	}

	tags := make([]string, 0, len(content.Tags))
	for _, tag := range content.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			return nil, pkgerrors.NewValidationError("tags cannot be blank").
				WithDetail("postID", id.String())
		}
		tags = append(tags, tag)
	}

	refs := make(map[string]valueobjects.StringSet, len(references))
	for key, hrefs := range references {
		refs[key] = hrefs
	}

	return &Post{
		id:          id,
		title:       title,
		description: strings.TrimSpace(content.Description),
		date:        content.Date.UTC(),
		tags:        valueobjects.NewStringSet(tags...),
		references:  refs,
		html:        content.HTML,
		draft:       content.Draft,
	}, nil
}

// ID returns the post's unique identifier
func (p *Post) ID() valueobjects.PostID {
	return p.id
}

// Title returns the post's title
func (p *Post) Title() string {
	return p.title
}

// Description returns the post's summary
func (p *Post) Description() string {
	return p.description
}

// Date returns the publication date
func (p *Post) Date() time.Time {
	return p.date
}

// Tags returns the post's tags
func (p *Post) Tags() valueobjects.StringSet {
	return p.tags
}

// HasTag checks if the post carries a tag
func (p *Post) HasTag(tag string) bool {
	return p.tags.Contains(strings.ToLower(tag))
}

// CategorizedTags groups the post's tags by category
func (p *Post) CategorizedTags(categoryOf func(string) string) []valueobjects.TagGroup {
	return valueobjects.GroupTags(p.tags, categoryOf)
}

// References returns a copy of the canonical reference key to hrefs mapping
func (p *Post) References() map[string]valueobjects.StringSet {
	refs := make(map[string]valueobjects.StringSet, len(p.references))
	for key, hrefs := range p.references {
		refs[key] = hrefs
	}
	return refs
}

// HTML returns the rendered content
func (p *Post) HTML() string {
	return p.html
}

// IsDraft checks if the post is unpublished
func (p *Post) IsDraft() bool {
	return p.draft
}

// Href returns the site-relative URL of the post
func (p *Post) Href() string {
	return p.id.Href()
}

// Precedes reports whether p is listed before other: newest first, ties broken by ID
func (p *Post) Precedes(other *Post) bool {
	if !p.date.Equal(other.date) {
		return p.date.After(other.date)
	}
	return p.id.String() < other.id.String()
}
