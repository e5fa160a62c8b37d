package valueobjects

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringSet(t *testing.T) {
	set := NewStringSet("b", "a", "b")

	assert.Equal(t, 2, set.Len())
	assert.False(t, set.IsEmpty())
	assert.True(t, set.Contains("a"))
	assert.False(t, set.Contains("c"))
	assert.Equal(t, []string{"a", "b"}, set.Values())

	smallest, ok := set.Min()
	assert.True(t, ok)
	assert.Equal(t, "a", smallest)

	_, ok = NewStringSet().Min()
	assert.False(t, ok)
	assert.True(t, StringSet{}.IsEmpty())
}

func TestStringSet_IsImmutable(t *testing.T) {
	original := NewStringSet("a")

	extended := original.With("b")
	union := original.Union(NewStringSet("c"))

	assert.Equal(t, []string{"a"}, original.Values())
	assert.Equal(t, []string{"a", "b"}, extended.Values())
	assert.Equal(t, []string{"a", "c"}, union.Values())

	values := original.Values()
	values[0] = "z"
	assert.True(t, original.Contains("a"))
}

func TestStringSet_Equals(t *testing.T) {
	assert.True(t, NewStringSet("a", "b").Equals(NewStringSet("b", "a")))
	assert.False(t, NewStringSet("a").Equals(NewStringSet("a", "b")))
	assert.False(t, NewStringSet("a").Equals(NewStringSet("b")))
	assert.True(t, StringSet{}.Equals(NewStringSet()))
}

func TestStringSet_JSON(t *testing.T) {
	data, err := json.Marshal(NewStringSet("go", "code"))
	require.NoError(t, err)
	assert.Equal(t, `["code","go"]`, string(data))

	data, err = json.Marshal(NewStringSet())
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(data))

	var decoded StringSet
	require.NoError(t, json.Unmarshal([]byte(`["x","y","x"]`), &decoded))
	assert.Equal(t, []string{"x", "y"}, decoded.Values())
}

func TestGroupTags(t *testing.T) {
	categories := map[string]string{"go": "technology", "code": "technology", "math": "science"}
	categoryOf := func(tag string) string {
		if c, ok := categories[tag]; ok {
			return c
		}
		return "other"
	}

	groups := GroupTags(NewStringSet("math", "go", "poetry", "code"), categoryOf)

	assert.Equal(t, []TagGroup{
		{Category: "other", Tags: []string{"poetry"}},
		{Category: "science", Tags: []string{"math"}},
		{Category: "technology", Tags: []string{"code", "go"}},
	}, groups)
	assert.Empty(t, GroupTags(NewStringSet(), categoryOf))
}
