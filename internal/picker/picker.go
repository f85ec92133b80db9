// Package picker lets the user choose one of several quick-open matches
// and opens bookmarks in the system browser.
package picker

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/boomarks/internal/model"
	"github.com/nikbrunner/boomarks/internal/search"
	"github.com/nikbrunner/boomarks/internal/tui/layout"
)

var (
	accent = lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	subtle = lipgloss.AdaptiveColor{Light: "#888888", Dark: "#606060"}

	selectedStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#505050", Dark: "#A0A0A0"})

	matchStyle = lipgloss.NewStyle().
			Underline(true)

	urlStyle = lipgloss.NewStyle().
			Foreground(subtle).
			Italic(true)

	headerStyle = lipgloss.NewStyle().
			Foreground(accent).
			Bold(true).
			MarginBottom(1)
)

// Picker is a small TUI for selecting from search results.
type Picker struct {
	results   []search.SearchResult
	query     string
	cursor    int
	selected  bool
	cancelled bool
	width     int
	height    int
	text      layout.TextConfig
}

// New creates a new Picker with the given search results.
func New(results []search.SearchResult, query string) Picker {
	return Picker{
		results: results,
		query:   query,
		width:   80,
		height:  24,
		text:    layout.DefaultConfig().Text,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		p.width = msg.Width
		p.height = msg.Height
		return p, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "esc", "ctrl+c", "q":
			p.cancelled = true
			return p, tea.Quit
		case "enter":
			p.selected = true
			return p, tea.Quit
		case "down", "j", "ctrl+n":
			if p.cursor < len(p.results)-1 {
				p.cursor++
			}
		case "up", "k", "ctrl+p":
			if p.cursor > 0 {
				p.cursor--
			}
		}
	}

	return p, nil
}

// visibleResults is how many two-line entries fit below the header.
func (p Picker) visibleResults() int {
	n := (p.height - 5) / 2
	if n < 1 {
		return 1
	}
	return n
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render(fmt.Sprintf("open: %s (%d matches)", p.query, len(p.results))))
	b.WriteString("\n\n")

	start, end := layout.CalculateVisibleListItems(p.visibleResults(), p.cursor, len(p.results))
	maxWidth := p.width - 4
	for i := start; i < end; i++ {
		result := p.results[i]
		cursor := "  "
		style := normalStyle
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		title := layout.TruncateANSIAware(highlight(result, style), maxWidth, p.text)
		url, _ := layout.TruncateText(result.Bookmark.Subject, maxWidth-1, p.text)

		b.WriteString(cursor + title + "\n")
		b.WriteString("   " + urlStyle.Render(url) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(urlStyle.Render("j/k: move  Enter: open  q/Esc: cancel"))

	return b.String()
}

// highlight underlines the characters the fuzzy match hit.
func highlight(result search.SearchResult, style lipgloss.Style) string {
	title := result.Bookmark.ResolvedTitle()
	if len(result.MatchedIndexes) == 0 {
		return style.Render(title)
	}

	matched := make(map[int]bool, len(result.MatchedIndexes))
	for _, i := range result.MatchedIndexes {
		matched[i] = true
	}

	var b strings.Builder
	for i, r := range title {
		if matched[i] {
			b.WriteString(style.Inherit(matchStyle).Render(string(r)))
		} else {
			b.WriteString(style.Render(string(r)))
		}
	}
	return b.String()
}

// SelectedBookmark returns the selected bookmark, or nil if cancelled.
func (p Picker) SelectedBookmark() *model.Bookmark {
	if p.cancelled || !p.selected {
		return nil
	}
	if p.cursor < len(p.results) {
		return p.results[p.cursor].Bookmark
	}
	return nil
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}
