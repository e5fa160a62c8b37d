package valueobjects

import "sort"

// TagGroup is the tags of one category
type TagGroup struct {
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

// GroupTags groups tags by category using categoryOf. Groups are ordered by
// category name and tags within a group are sorted.
func GroupTags(tags StringSet, categoryOf func(string) string) []TagGroup {
	byCategory := make(map[string][]string)
	for _, tag := range tags.Values() {
		category := categoryOf(tag)
		byCategory[category] = append(byCategory[category], tag)
	}

	groups := make([]TagGroup, 0, len(byCategory))
	for category, names := range byCategory {
		groups = append(groups, TagGroup{Category: category, Tags: names})
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].Category < groups[j].Category
	})
	return groups
}
