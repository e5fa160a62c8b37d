package valueobjects

import (
	"encoding/json"
	"sort"
)

// StringSet is an immutable set of strings. Tags and hrefs are both carried as
// StringSets so a set handed to one vertex or edge can never be changed through another.
type StringSet struct {
	items map[string]struct{}
}

// NewStringSet creates a set holding the given values
func NewStringSet(values ...string) StringSet {
	items := make(map[string]struct{}, len(values))
	for _, v := range values {
		items[v] = struct{}{}
	}
	return StringSet{items: items}
}

// Len returns the number of values in the set
func (s StringSet) Len() int {
	return len(s.items)
}

// IsEmpty checks if the set has no values
func (s StringSet) IsEmpty() bool {
	return len(s.items) == 0
}

// Contains checks if the set holds a value
func (s StringSet) Contains(value string) bool {
	_, ok := s.items[value]
	return ok
}

// Values returns the values in ascending order
func (s StringSet) Values() []string {
	values := make([]string, 0, len(s.items))
	for v := range s.items {
		values = append(values, v)
	}
	sort.Strings(values)
	return values
}

// Min returns the lexicographically smallest value, or false for an empty set
func (s StringSet) Min() (string, bool) {
	if len(s.items) == 0 {
		return "", false
	}
	values := s.Values()
	return values[0], true
}

// With returns a new set holding the values of s plus the given values
func (s StringSet) With(values ...string) StringSet {
	items := make(map[string]struct{}, len(s.items)+len(values))
	for v := range s.items {
		items[v] = struct{}{}
	}
	for _, v := range values {
		items[v] = struct{}{}
	}
	return StringSet{items: items}
}

// Union returns a new set holding the values of both sets
func (s StringSet) Union(other StringSet) StringSet {
	return s.With(other.Values()...)
}

// Equals checks if two sets hold the same values
func (s StringSet) Equals(other StringSet) bool {
	if len(s.items) != len(other.items) {
		return false
	}
	for v := range s.items {
		if !other.Contains(v) {
			return false
		}
	}
	return true
}

// MarshalJSON encodes the set as a sorted array
func (s StringSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Values())
}

// UnmarshalJSON decodes the set from an array
func (s *StringSet) UnmarshalJSON(data []byte) error {
	var values []string
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	*s = NewStringSet(values...)
	return nil
}
