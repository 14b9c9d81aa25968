package domain

import "strings"

// DefaultTagColor is the color index given to newly created tags.
const DefaultTagColor = 1

type Tag struct {
	ID    int64
	Name  string
	Color int
}

// CleanTagName strips commas and surrounding whitespace. Case is preserved:
// "Backend" and "backend" are distinct tags.
func CleanTagName(name string) string {
	return strings.TrimSpace(strings.ReplaceAll(name, ",", ""))
}

// SplitTagList splits a comma-separated tag field into cleaned, unique names.
func SplitTagList(s string) []string {
	parts := strings.Split(s, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := CleanTagName(p); c != "" {
			names = append(names, c)
		}
	}
	return UniqueStrings(names)
}
