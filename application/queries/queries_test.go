package queries

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		query   interface{ Validate() error }
		wantErr bool
	}{
		{name: "graph", query: GetGraphQuery{}},
		{name: "tags", query: ListTagsQuery{}},
		{name: "all posts", query: ListPostsQuery{}},
		{name: "posts by tag", query: ListPostsQuery{Tag: "go"}},
		{name: "posts by blank tag", query: ListPostsQuery{Tag: "  "}, wantErr: true},
		{name: "post", query: GetPostQuery{PostID: "hello-world"}},
		{name: "post without ID", query: GetPostQuery{}, wantErr: true},
		{name: "post with invalid ID", query: GetPostQuery{PostID: "Hello World"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.query.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
