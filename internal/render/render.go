// Package render turns a bookmark collection into a toolkit-neutral view
// model. Everything here is a pure function of its inputs.
package render

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nikbrunner/boomarks/internal/model"
	"github.com/nikbrunner/boomarks/internal/search"
	"github.com/nikbrunner/boomarks/internal/style"
)

// Layout selects the render strategy.
type Layout int

const (
	LayoutList Layout = iota
	LayoutGrid
)

func (l Layout) String() string {
	if l == LayoutGrid {
		return "grid"
	}
	return "list"
}

// Toggle returns the other layout.
func (l Layout) Toggle() Layout {
	if l == LayoutGrid {
		return LayoutList
	}
	return LayoutGrid
}

// ParseLayout reads "list" or "grid".
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "list":
		return LayoutList, nil
	case "grid":
		return LayoutGrid, nil
	}
	return LayoutList, fmt.Errorf("unknown layout %q", s)
}

// Params are the non-collection inputs of Render.
type Params struct {
	Layout       Layout
	SortReversed bool
	IsSelf       bool
	Term         string
	Now          time.Time
}

// View is the rendered collection. Exactly one of Rows or Cards is set.
type View struct {
	Layout  Layout
	Rows    []Row
	Cards   []Card
	Total   int
	Visible int
}

// Row is one entry of the list layout.
type Row struct {
	RecordURI string
	Title     string
	URL       string
	Tags      []string
	Date      string
	Deletable bool
	Hidden    bool
}

// Card is one entry of the grid layout.
type Card struct {
	RecordURI     string
	URL           string
	Primary       string
	Secondary     string
	PrimarySize   float64
	SecondarySize float64
	Style         style.Style
	Tags          []string
	Deletable     bool
	Hidden        bool
}

var schemePrefix = regexp.MustCompile(`(?i)^https?://(www\.)?`)

// DisplayTitle strips a leading http(s):// and www. from title.
func DisplayTitle(title string) string {
	return schemePrefix.ReplaceAllString(title, "")
}

// DisplayOrder returns the presentation order: newest first unless
// sortReversed, in which case the collection order is kept.
func DisplayOrder(bookmarks []model.Bookmark, sortReversed bool) []model.Bookmark {
	out := make([]model.Bookmark, len(bookmarks))
	if sortReversed {
		copy(out, bookmarks)
		return out
	}
	for i, b := range bookmarks {
		out[len(bookmarks)-1-i] = b
	}
	return out
}

// TagLabels formats tags for display.
func TagLabels(tags []string) []string {
	labels := make([]string, len(tags))
	for i, t := range tags {
		labels[i] = search.TagTerm(t)
	}
	return labels
}

// Render builds the view of bookmarks. Items that do not match p.Term
// are kept but marked hidden.
func Render(bookmarks []model.Bookmark, p Params) View {
	v := View{Layout: p.Layout}

	for _, b := range DisplayOrder(bookmarks, p.SortReversed) {
		url := b.Subject
		if url == "" {
			continue
		}
		title := b.ResolvedTitle()
		display := DisplayTitle(title)

		switch p.Layout {
		case LayoutGrid:
			c := renderCard(b, title, display, url, p.IsSelf)
			c.Hidden = !search.Matches(search.Target{Title: display, Tags: b.Tags}, p.Term)
			if !c.Hidden {
				v.Visible++
			}
			v.Cards = append(v.Cards, c)
		default:
			r := Row{
				RecordURI: b.RecordURI,
				Title:     display,
				URL:       url,
				Tags:      TagLabels(b.Tags),
				Date:      FormatRelative(b.CreatedAt, p.Now),
				Deletable: p.IsSelf,
			}
			r.Hidden = !search.Matches(search.Target{Title: display, URL: url, Tags: b.Tags}, p.Term)
			if !r.Hidden {
				v.Visible++
			}
			v.Rows = append(v.Rows, r)
		}
		v.Total++
	}

	return v
}

func renderCard(b model.Bookmark, title, display, url string, isSelf bool) Card {
	primary, secondary := SplitTitle(display)
	size := FontSize(display)
	return Card{
		RecordURI:     b.RecordURI,
		URL:           url,
		Primary:       primary,
		Secondary:     secondary,
		PrimarySize:   size,
		SecondarySize: SecondarySize(size),
		Style:         style.For(title),
		Tags:          TagLabels(b.Tags),
		Deletable:     isSelf,
	}
}
