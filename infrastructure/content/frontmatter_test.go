package content

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitFrontMatter(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		wantMeta string
		wantBody string
		wantErr  error
	}{
		{
			name:     "basic",
			source:   "---\ntitle: Hi\n---\n# Body\n",
			wantMeta: "title: Hi\n",
			wantBody: "# Body\n",
		},
		{
			name:     "crlf line endings",
			source:   "---\r\ntitle: Hi\r\n---\r\nBody",
			wantMeta: "title: Hi\r\n",
			wantBody: "Body",
		},
		{
			name:     "byte order mark",
			source:   "\uFEFF---\ntitle: Hi\n---\nBody",
			wantMeta: "title: Hi\n",
			wantBody: "Body",
		},
		{
			name:     "closing delimiter at end of file",
			source:   "---\ntitle: Hi\n---",
			wantMeta: "title: Hi\n",
			wantBody: "",
		},
		{
			name:     "empty block",
			source:   "---\n---\nBody",
			wantMeta: "",
			wantBody: "Body",
		},
		{
			name:    "missing",
			source:  "# Just markdown\n",
			wantErr: errNoFrontMatter,
		},
		{
			name:    "unclosed",
			source:  "---\ntitle: Hi\n# Body\n",
			wantErr: errUnclosedFrontMatter,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			meta, body, err := splitFrontMatter([]byte(tt.source))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantMeta, string(meta))
			assert.Equal(t, tt.wantBody, string(body))
		})
	}
}

func TestDecodeFrontMatter(t *testing.T) {
	schema, err := NewSchema()
	require.NoError(t, err)

	tests := []struct {
		name    string
		meta    string
		want    *frontMatter
		wantErr bool
	}{
		{
			name: "complete",
			meta: "title: Hello\ndescription: A post\ndate: 2023-05-01\ntags: [code, go]\ndraft: true\n",
			want: &frontMatter{
				Title:       "Hello",
				Description: "A post",
				Date:        "2023-05-01",
				Tags:        []string{"code", "go"},
				Draft:       true,
			},
		},
		{
			name: "quoted timestamp",
			meta: "title: Hello\ndate: \"2023-05-01T10:00:00Z\"\ntags:\n  - code\n",
			want: &frontMatter{
				Title: "Hello",
				Date:  "2023-05-01T10:00:00Z",
				Tags:  []string{"code"},
			},
		},
		{
			name:    "missing title",
			meta:    "date: 2023-05-01\ntags: [code]\n",
			wantErr: true,
		},
		{
			name:    "no tags",
			meta:    "title: Hello\ndate: 2023-05-01\ntags: []\n",
			wantErr: true,
		},
		{
			name:    "duplicate tags",
			meta:    "title: Hello\ndate: 2023-05-01\ntags: [go, go]\n",
			wantErr: true,
		},
		{
			name:    "bad date",
			meta:    "title: Hello\ndate: yesterday\ntags: [go]\n",
			wantErr: true,
		},
		{
			name:    "draft not boolean",
			meta:    "title: Hello\ndate: 2023-05-01\ntags: [go]\ndraft: maybe\n",
			wantErr: true,
		},
		{
			name:    "invalid yaml",
			meta:    "title: [unclosed\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decodeFrontMatter([]byte(tt.meta), schema)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2023-05-01")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 5, 1, 0, 0, 0, 0, time.UTC), got)

	got, err = parseDate("2023-05-01T10:30:00+02:00")
	require.NoError(t, err)
	assert.True(t, got.Equal(time.Date(2023, 5, 1, 8, 30, 0, 0, time.UTC)))

	_, err = parseDate("05/01/2023")
	assert.Error(t, err)
}
