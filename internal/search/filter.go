package search

import (
	"strings"

	"github.com/nikbrunner/boomarks/internal/model"
)

// TagPrefix marks a term that filters by tag.
const TagPrefix = "#"

// Target is the searchable text of one rendered item. Grid cards leave
// URL empty because only their visible title is searched.
type Target struct {
	Title string
	URL   string
	Tags  []string
}

// Matches reports whether target stays visible for term. Matching is a
// case-insensitive substring test; a "#" prefix matches against tags.
func Matches(target Target, term string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}

	if tag, ok := strings.CutPrefix(term, TagPrefix); ok {
		for _, t := range target.Tags {
			if strings.Contains(strings.ToLower(strings.TrimSpace(t)), tag) {
				return true
			}
		}
		return false
	}

	return strings.Contains(strings.ToLower(target.Title), term) ||
		strings.Contains(strings.ToLower(target.URL), term)
}

// TagTerm returns the search term that filters by tag.
func TagTerm(tag string) string {
	return TagPrefix + tag
}

// Filter returns the bookmarks whose title or subject matches term.
// The input slice is not modified.
func Filter(bookmarks []model.Bookmark, term string) []model.Bookmark {
	out := make([]model.Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		target := Target{Title: b.ResolvedTitle(), URL: b.Subject, Tags: b.Tags}
		if Matches(target, term) {
			out = append(out, b)
		}
	}
	return out
}
