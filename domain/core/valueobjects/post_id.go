package valueobjects

import (
	"encoding/json"
	"errors"
	"regexp"
)

var postIDPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// PostID is a value object representing a post's slug.
// Value objects are immutable and have no identity beyond their value
type PostID struct {
	value string
}

// NewPostID creates a PostID from a slug such as "my-first-post"
func NewPostID(id string) (PostID, error) {
	if id == "" {
		return PostID{}, errors.New("post ID cannot be empty")
	}
	if !postIDPattern.MatchString(id) {
		return PostID{}, errors.New("post ID must be lowercase words separated by dashes")
	}
	return PostID{value: id}, nil
}

// String returns the string representation of the PostID
func (id PostID) String() string {
	return id.value
}

// Equals checks if two PostIDs are equal
func (id PostID) Equals(other PostID) bool {
	return id.value == other.value
}

// IsZero checks if the PostID is the zero value
func (id PostID) IsZero() bool {
	return id.value == ""
}

// Href returns the site-relative path of the post
func (id PostID) Href() string {
	return "/" + id.value
}

// MarshalJSON implements json.Marshaler
func (id PostID) MarshalJSON() ([]byte, error) {
	return json.Marshal(id.value)
}

// UnmarshalJSON implements json.Unmarshaler
func (id *PostID) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var value string
	if err := json.Unmarshal(data, &value); err != nil {
		return errors.New("PostID must be a string")
	}
	parsed, err := NewPostID(value)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
