package tui

import (
	"strings"

	"github.com/nikbrunner/boomarks/internal/render"
)

// Item is one visible bookmark, independent of the layout it is drawn in.
type Item struct {
	RecordURI string
	URL       string
	Title     string
	Tags      []string // "#tag" labels
	Date      string   // empty for grid cards
	Deletable bool
}

// FirstTag returns the first tag without its "#" prefix.
func (i Item) FirstTag() (string, bool) {
	if len(i.Tags) == 0 {
		return "", false
	}
	return strings.TrimPrefix(i.Tags[0], "#"), true
}

// visibleItems lists the entries of v that survive the search term, in
// display order.
func visibleItems(v render.View) []Item {
	var items []Item
	switch v.Layout {
	case render.LayoutGrid:
		for _, c := range v.Cards {
			if c.Hidden {
				continue
			}
			title := c.Primary
			if c.Secondary != "" {
				title += " " + c.Secondary
			}
			items = append(items, Item{
				RecordURI: c.RecordURI,
				URL:       c.URL,
				Title:     title,
				Tags:      c.Tags,
				Deletable: c.Deletable,
			})
		}
	default:
		for _, r := range v.Rows {
			if r.Hidden {
				continue
			}
			items = append(items, Item{
				RecordURI: r.RecordURI,
				URL:       r.URL,
				Title:     r.Title,
				Tags:      r.Tags,
				Date:      r.Date,
				Deletable: r.Deletable,
			})
		}
	}
	return items
}
