package web

import (
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/nikbrunner/boomarks/internal/render"
	"github.com/nikbrunner/boomarks/internal/session"
	"github.com/nikbrunner/boomarks/internal/style"
)

// page is the data handed to the index template.
type page struct {
	State    State
	View     render.View
	Cards    []card
	Who      string
	Avatar   string
	Count    int
	Writable bool
	Signed   bool
	Notice   string
	Flash    string

	ViewLink   string
	ViewLabel  string
	SortLink   string
	SortLabel  string
	FontsLink  string
	OpenAddDlg bool
}

// card is a grid card with its inline CSS precomputed.
type card struct {
	render.Card
	CSS          template.CSS
	PrimaryCSS   template.CSS
	SecondaryCSS template.CSS
}

func (s *Server) buildPage(state State, flash string) page {
	vc := s.sess.View()
	view := s.sess.Render(s.now(), state.Search)

	p := page{
		State:      state,
		View:       view,
		Count:      s.sess.Count(),
		Writable:   s.sess.Writable(),
		Signed:     s.sess.AuthState() == session.Authenticated,
		Notice:     s.sess.Notice(),
		Flash:      flash,
		FontsLink:  fontsLink(),
		OpenAddDlg: state.Title != "" && state.URL != "",
	}

	switch {
	case vc.Viewed.DID == "":
		p.Who = "not signed in"
	case vc.Viewed.Self:
		p.Who = "@" + vc.Viewed.Handle
	case vc.Viewed.Profile != nil && vc.Viewed.Profile.DisplayName != "":
		p.Who = fmt.Sprintf("%s (@%s)", vc.Viewed.Profile.DisplayName, vc.Viewed.Handle)
	default:
		p.Who = "@" + vc.Viewed.Handle
	}
	if vc.Viewed.Profile != nil {
		p.Avatar = vc.Viewed.Profile.Avatar
	}

	if state.Layout == render.LayoutGrid {
		p.ViewLink, p.ViewLabel = state.WithLayout(render.LayoutList).Link(), "List ☰"
	} else {
		p.ViewLink, p.ViewLabel = state.WithLayout(render.LayoutGrid).Link(), "Grid ⊞"
	}
	if state.SortReversed {
		p.SortLink, p.SortLabel = state.WithSortReversed(false).Link(), "Date ▼"
	} else {
		p.SortLink, p.SortLabel = state.WithSortReversed(true).Link(), "Date ▲"
	}

	for _, c := range view.Cards {
		p.Cards = append(p.Cards, card{
			Card:         c,
			CSS:          cardCSS(c.Style),
			PrimaryCSS:   template.CSS(fmt.Sprintf("font-size: %grem", c.PrimarySize)),
			SecondaryCSS: template.CSS(fmt.Sprintf("font-size: %grem", c.SecondarySize)),
		})
	}
	return p
}

// cardCSS colors a card. The values come from the fixed palette and font
// list, so they are safe to inline.
func cardCSS(s style.Style) template.CSS {
	return template.CSS(fmt.Sprintf(
		"background-color: %s; color: %s; font-family: '%s', sans-serif",
		s.Background, s.Foreground, s.FontFamily,
	))
}

// fontsLink loads every card font that is not a system font.
func fontsLink() string {
	var families []string
	for _, f := range style.Fonts {
		if f == "Courier" {
			continue
		}
		families = append(families, "family="+url.QueryEscape(f))
	}
	return "https://fonts.googleapis.com/css2?" + strings.Join(families, "&") + "&display=swap"
}

var templateFuncs = template.FuncMap{
	"tagLink": func(s State, label string) string {
		return s.WithSearch(label).Link()
	},
}
