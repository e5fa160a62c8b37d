package entities

import (
	"testing"
	"time"

	"github.com/TomerAberbach/website/domain/core/valueobjects"
	pkgerrors "github.com/TomerAberbach/website/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPostID(t *testing.T, id string) valueobjects.PostID {
	t.Helper()
	postID, err := valueobjects.NewPostID(id)
	require.NoError(t, err)
	return postID
}

func TestNewPost(t *testing.T) {
	date := time.Date(2023, 5, 1, 12, 0, 0, 0, time.FixedZone("PDT", -7*60*60))

	tests := []struct {
		name    string
		id      string
		content PostContent
		wantErr string
	}{
		{
			name: "valid post",
			id:   "hello",
			content: PostContent{
				Title:       "  Hello  ",
				Description: " Greeting ",
				Date:        date,
				Tags:        []string{"Go", " code "},
			},
		},
		{
			name:    "blank title",
			id:      "hello",
			content: PostContent{Title: "   ", Date: date, Tags: []string{"go"}},
			wantErr: "title cannot be empty",
		},
		{
			name:    "missing date",
			id:      "hello",
			content: PostContent{Title: "Hello", Tags: []string{"go"}},
			wantErr: "date is required",
		},
		{
			name:    "blank tag",
			id:      "hello",
			content: PostContent{Title: "Hello", Date: date, Tags: []string{"go", " "}},
			wantErr: "tags cannot be blank",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			post, err := NewPost(mustPostID(t, tt.id), tt.content, nil)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, pkgerrors.IsValidation(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				assert.Nil(t, post)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "hello", post.ID().String())
			assert.Equal(t, "Hello", post.Title())
			assert.Equal(t, "Greeting", post.Description())
			assert.Equal(t, time.UTC, post.Date().Location())
			assert.True(t, post.Date().Equal(date))
			assert.Equal(t, []string{"code", "go"}, post.Tags().Values())
			assert.True(t, post.HasTag("GO"))
			assert.Equal(t, "/hello", post.Href())
			assert.Empty(t, post.References())
		})
	}
}

func TestNewPost_ZeroID(t *testing.T) {
	_, err := NewPost(valueobjects.PostID{}, PostContent{Title: "x", Date: time.Now(), Tags: []string{"go"}}, nil)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestPost_ReferencesAreCopied(t *testing.T) {
	refs := map[string]valueobjects.StringSet{
		"other": valueobjects.NewStringSet("/other"),
	}
	post, err := NewPost(mustPostID(t, "hello"), PostContent{
		Title: "Hello",
		Date:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Tags:  []string{"go"},
	}, refs)
	require.NoError(t, err)

	refs["injected"] = valueobjects.NewStringSet("/x")
	got := post.References()
	delete(got, "other")

	assert.Len(t, post.References(), 1)
	assert.Equal(t, []string{"/other"}, post.References()["other"].Values())
}

func TestPost_Precedes(t *testing.T) {
	newPost := func(id string, day int) *Post {
		post, err := NewPost(mustPostID(t, id), PostContent{
			Title: id,
			Date:  time.Date(2023, 1, day, 0, 0, 0, 0, time.UTC),
			Tags:  []string{"go"},
		}, nil)
		require.NoError(t, err)
		return post
	}

	older := newPost("older", 1)
	newer := newPost("newer", 2)
	sameDay := newPost("alpha", 2)

	assert.True(t, newer.Precedes(older))
	assert.False(t, older.Precedes(newer))
	assert.True(t, sameDay.Precedes(newer))
	assert.False(t, newer.Precedes(sameDay))
}

func TestPost_CategorizedTags(t *testing.T) {
	post, err := NewPost(mustPostID(t, "hello"), PostContent{
		Title: "Hello",
		Date:  time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC),
		Tags:  []string{"go", "poetry"},
	}, nil)
	require.NoError(t, err)

	groups := post.CategorizedTags(func(tag string) string {
		if tag == "go" {
			return "technology"
		}
		return "other"
	})
	assert.Equal(t, []valueobjects.TagGroup{
		{Category: "other", Tags: []string{"poetry"}},
		{Category: "technology", Tags: []string{"go"}},
	}, groups)
}
