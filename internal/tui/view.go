package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/boomarks/internal/render"
	"github.com/nikbrunner/boomarks/internal/tui/layout"
)

// renderView creates the complete bookmark view.
func (a App) renderView() string {
	switch a.mode {
	case ModeHelp:
		return a.renderHelpOverlay()
	case ModeAdd, ModeViewUser, ModeConfirmDelete:
		return a.renderModal()
	}

	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	paneWidth := layout.CalculatePaneWidth(a.width, a.layoutConfig.Pane)

	var body string
	if a.view.Layout == render.LayoutGrid {
		body = a.renderGrid(paneWidth, paneHeight)
	} else {
		body = a.renderList(paneWidth, paneHeight)
	}

	pane := a.styles.Pane.
		Width(paneWidth).
		Height(paneHeight).
		Render(body)

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), pane, a.renderStatusBar()),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderHeader names whose bookmarks are shown.
func (a App) renderHeader() string {
	viewed := a.sess.View().Viewed

	var who string
	switch {
	case viewed.DID == "":
		who = "not signed in"
	case viewed.Self:
		who = "@" + viewed.Handle
	case viewed.Profile != nil && viewed.Profile.DisplayName != "":
		who = fmt.Sprintf("viewing %s (@%s)", viewed.Profile.DisplayName, viewed.Handle)
	default:
		who = "viewing @" + viewed.Handle
	}

	header := a.styles.Title.Render("boomarks") + " " + a.styles.Header.Render(who)
	if a.loading {
		header += " " + a.styles.Help.Render("loading...")
	}
	return header
}

// renderSearchLine shows the search input while typing, or the applied term.
func (a App) renderSearchLine() (string, bool) {
	if a.mode == ModeSearch {
		return "/" + a.filter.Input.View(), true
	}
	if a.filter.Term != "" {
		return a.styles.Tag.Render("/" + a.filter.Term), true
	}
	return "", false
}

// renderEmpty explains why no bookmark is visible.
func (a App) renderEmpty() string {
	switch {
	case a.loading:
		return a.styles.Empty.Render("(loading)")
	case a.view.Total > 0:
		return a.styles.Empty.Render("(no matches)")
	case a.sess.View().Viewed.DID == "":
		return a.styles.Empty.Render("(press u to browse someone's bookmarks)")
	default:
		return a.styles.Empty.Render("(no bookmarks)")
	}
}

func (a App) renderList(width, height int) string {
	var content strings.Builder

	headerLines := 0
	if line, ok := a.renderSearchLine(); ok {
		content.WriteString(line + "\n")
		headerLines = 1
	}

	if len(a.items) == 0 {
		content.WriteString(a.renderEmpty())
		return content.String()
	}

	// Each bookmark takes a title line and a detail line.
	visible := layout.CalculateVisibleHeight(height, headerLines) / 2
	if visible < 1 {
		visible = 1
	}
	itemWidth := layout.CalculateItemWidth(width, a.layoutConfig.Pane)
	offset := layout.CalculateViewportOffset(a.cursor, len(a.items), visible)

	for i := offset; i < len(a.items) && i < offset+visible; i++ {
		content.WriteString(a.renderRow(a.items[i], i == a.cursor, itemWidth) + "\n")
	}

	return strings.TrimRight(content.String(), "\n")
}

func (a App) renderRow(item Item, isCursor bool, maxWidth int) string {
	prefix := "  "
	if isCursor {
		prefix = "> "
	}
	line, _ := layout.TruncateWithPrefixSuffix(item.Title, maxWidth, prefix, "", a.layoutConfig.Text)

	var title string
	if isCursor {
		title = a.styles.ItemSelected.Render(layout.PadRight(line, maxWidth))
	} else {
		title = a.styles.Item.Render(line)
	}

	const indent = "   "
	tags := strings.Join(item.Tags, " ")
	urlWidth := maxWidth - len(indent) - layout.VisibleLength(tags) - len(item.Date) - 4
	showTail := urlWidth >= 12
	if !showTail {
		// Too narrow for both; the URL wins.
		urlWidth = maxWidth - len(indent)
	}
	url, _ := layout.TruncateText(item.URL, urlWidth, a.layoutConfig.Text)

	detail := indent + a.styles.URL.Render(url)
	if showTail {
		if tags != "" {
			detail += "  " + a.styles.Tag.Render(tags)
		}
		if item.Date != "" {
			detail += "  " + a.styles.Date.Render(item.Date)
		}
	}

	return title + "\n" + detail
}

func (a App) renderGrid(width, height int) string {
	var content strings.Builder

	headerLines := 0
	if line, ok := a.renderSearchLine(); ok {
		content.WriteString(line + "\n")
		headerLines = 1
	}

	var cards []render.Card
	for _, c := range a.view.Cards {
		if !c.Hidden {
			cards = append(cards, c)
		}
	}
	if len(cards) == 0 {
		content.WriteString(a.renderEmpty())
		return content.String()
	}

	g := layout.CalculateGrid(width, height-headerLines, a.layoutConfig.Grid)
	offset := layout.CalculateGridOffset(a.cursor, len(cards), g)
	gap := strings.Repeat(" ", a.layoutConfig.Grid.Gap)

	var rows []string
	for row := offset; row < offset+g.Rows; row++ {
		start := row * g.Columns
		if start >= len(cards) {
			break
		}
		var line []string
		for i := start; i < start+g.Columns && i < len(cards); i++ {
			if i > start {
				line = append(line, gap)
			}
			line = append(line, a.renderCard(cards[i], i == a.cursor, g.CardWidth))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, line...))
	}

	content.WriteString(lipgloss.JoinVertical(lipgloss.Left, rows...))
	return content.String()
}

// renderCard draws one grid card in the colors derived from its title.
func (a App) renderCard(c render.Card, selected bool, width int) string {
	base := a.styles.Card
	if selected {
		base = a.styles.CardSelected
	}
	st := cardStyle(base, c.Style)

	// Border (2) and horizontal padding (2).
	inner := width - 4
	if inner < 1 {
		inner = 1
	}

	primary, _ := layout.TruncateText(c.Primary, inner, a.layoutConfig.Text)
	secondary, _ := layout.TruncateText(c.Secondary, inner, a.layoutConfig.Text)
	tags, _ := layout.TruncateText(strings.Join(c.Tags, " "), inner, a.layoutConfig.Text)

	// Short titles get the large type in the browser; mirror that with bold.
	if c.PrimarySize >= 5 {
		primary = lipgloss.NewStyle().Bold(true).Render(primary)
	}

	return st.
		Width(width - 2).
		Height(3).
		Render(strings.Join([]string{primary, secondary, tags}, "\n"))
}

// renderStatusBar renders the message line, the collection status and
// the contextual hints.
func (a App) renderStatusBar() string {
	lines := []string{a.renderMessageLine(), a.renderStatus()}
	if hints := a.renderHints(a.getContextualHints()); hints != "" {
		lines = append(lines, hints)
	}
	return strings.Join(lines, "\n")
}

// renderMessageLine renders the styled message with prefix icon based on type.
// Session notices show when no message of our own is pending.
func (a App) renderMessageLine() string {
	text, kind := a.messageText, a.messageType
	if text == "" {
		text, kind = a.sess.Notice(), MessageError
	}
	if text == "" {
		return ""
	}

	var msgStyle lipgloss.Style
	var prefix string

	switch kind {
	case MessageError:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}).
			Bold(true)
		prefix = "✗ "
	case MessageSuccess:
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}).
			Bold(true)
		prefix = "✓ "
	default: // MessageInfo
		msgStyle = lipgloss.NewStyle().
			Foreground(lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}).
			Bold(true)
	}

	return msgStyle.Render(prefix + text)
}

// renderStatus renders the bookmark count and the [view:X] [ord:X] indicators.
func (a App) renderStatus() string {
	var status strings.Builder

	count := a.sess.Count()
	noun := "bookmarks"
	if count == 1 {
		noun = "bookmark"
	}
	status.WriteString(a.styles.HintLabel.Render(fmt.Sprintf("%d %s in PDS", count, noun)))
	if a.filter.Term != "" {
		status.WriteString(a.styles.Help.Render(fmt.Sprintf(" (%d shown)", a.view.Visible)))
	}

	vc := a.sess.View()
	status.WriteString("  [view:" + vc.Layout.String() + "]")
	if vc.SortReversed {
		status.WriteString(" [ord:old]")
	} else {
		status.WriteString(" [ord:new]")
	}

	return status.String()
}

func (a App) renderModal() string {
	var title, content strings.Builder

	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal.DefaultWidthPercent, a.layoutConfig.Modal)
	modalStyle := a.styles.Modal.Width(modalWidth)

	switch a.mode {
	case ModeAdd:
		title.WriteString("Add Bookmark\n\n")
		content.WriteString("URL:\n")
		content.WriteString(a.form.URLInput.View())
		content.WriteString("\n\n")
		content.WriteString("Title:\n")
		content.WriteString(a.form.TitleInput.View())
		content.WriteString("\n\n")
		content.WriteString("Tags (comma-separated):\n")
		content.WriteString(a.form.TagsInput.View())
		content.WriteString("\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "Tab", Desc: "next"},
			{Key: "Enter", Desc: "save"},
			{Key: "Esc", Desc: "cancel"},
		}))

	case ModeViewUser:
		title.WriteString("View User\n\n")
		content.WriteString("Handle:\n")
		content.WriteString(a.user.Input.View())
		content.WriteString("\n\n")
		content.WriteString(a.styles.Help.Render("Leave empty to return to your own bookmarks.") + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "Enter", Desc: "view"},
			{Key: "Esc", Desc: "cancel"},
		}))

	case ModeConfirmDelete:
		title.WriteString("Delete Bookmark?\n\n")
		name, _ := layout.TruncateText(a.pending.Title, modalWidth-6, a.layoutConfig.Text)
		url, _ := layout.TruncateText(a.pending.URL, modalWidth-6, a.layoutConfig.Text)
		content.WriteString(name + "\n")
		content.WriteString(a.styles.URL.Render(url) + "\n\n")
		content.WriteString(a.styles.Help.Render("This action cannot be undone.") + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "Enter", Desc: "confirm"},
			{Key: "Esc", Desc: "cancel"},
		}))
	}

	modal := modalStyle.Render(a.styles.Title.Render(title.String()) + content.String())
	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, modal)
}

func (a App) renderHelpOverlay() string {
	// Brutalist style: no border, just raw columns
	modalStyle := lipgloss.NewStyle().
		Padding(1, 2)

	var left strings.Builder
	left.WriteString(a.styles.Title.Render("nav") + "\n")
	left.WriteString("j/k    move\n")
	left.WriteString("h/l    card (grid)\n")
	left.WriteString("gg     top\n")
	left.WriteString("G      bottom\n")
	left.WriteString("\n")
	left.WriteString(a.styles.Title.Render("view") + "\n")
	left.WriteString("v      list/grid\n")
	left.WriteString("o      order\n")
	left.WriteString("/      search\n")
	left.WriteString("#tag   search tags\n")
	left.WriteString("t      first tag\n")
	left.WriteString("u      other user\n")
	left.WriteString("r      reload\n")

	var right strings.Builder
	right.WriteString(a.styles.Title.Render("act") + "\n")
	right.WriteString("Enter  open in browser\n")
	right.WriteString("Y      yank URL\n")
	right.WriteString("\n")
	right.WriteString(a.styles.Title.Render("edit") + "\n")
	right.WriteString("a      add bookmark\n")
	right.WriteString("d      delete\n")
	right.WriteString("\n")
	right.WriteString(a.styles.Help.Render("[?/q/esc] close"))

	leftCol := lipgloss.NewStyle().Width(a.layoutConfig.Modal.HelpLeftColumnWidth).Render(left.String())
	rightCol := lipgloss.NewStyle().Width(a.layoutConfig.Modal.HelpRightColumnWidth).Render(right.String())
	cols := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, "  ", rightCol)

	return lipgloss.Place(
		a.width,
		a.height,
		lipgloss.Left,
		lipgloss.Top,
		modalStyle.Render(cols),
	)
}
