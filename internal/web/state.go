package web

import (
	"net/url"
	"strings"

	"github.com/nikbrunner/boomarks/internal/render"
)

// State is the view state carried in the page URL, so a view can be
// shared by copying the address.
type State struct {
	Search       string
	User         string
	Layout       render.Layout
	SortReversed bool // oldest first
	Title        string
	URL          string
}

// ParseState reads the query parameters of a page URL. Unknown values
// fall back to the defaults.
func ParseState(q url.Values) State {
	layout, err := render.ParseLayout(q.Get("view"))
	if err != nil {
		layout = render.LayoutList
	}
	return State{
		Search:       strings.TrimSpace(q.Get("search")),
		User:         strings.TrimSpace(q.Get("user")),
		Layout:       layout,
		SortReversed: strings.EqualFold(q.Get("sort"), "asc"),
		Title:        q.Get("title"),
		URL:          q.Get("url"),
	}
}

// Query encodes s, leaving out defaults and the one-shot add-form values.
func (s State) Query() url.Values {
	q := url.Values{}
	if s.Search != "" {
		q.Set("search", s.Search)
	}
	if s.User != "" {
		q.Set("user", s.User)
	}
	if s.Layout == render.LayoutGrid {
		q.Set("view", "grid")
	}
	if s.SortReversed {
		q.Set("sort", "asc")
	}
	return q
}

// Link returns the page URL for s.
func (s State) Link() string {
	if q := s.Query().Encode(); q != "" {
		return "/?" + q
	}
	return "/"
}

// WithLayout returns a copy of s using layout.
func (s State) WithLayout(layout render.Layout) State {
	s.Layout = layout
	return s
}

// WithSortReversed returns a copy of s with the given order.
func (s State) WithSortReversed(reversed bool) State {
	s.SortReversed = reversed
	return s
}

// WithSearch returns a copy of s searching for term.
func (s State) WithSearch(term string) State {
	s.Search = term
	return s
}
