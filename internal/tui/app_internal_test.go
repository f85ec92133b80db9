package tui

import (
	"context"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/boomarks/internal/auth"
	"github.com/nikbrunner/boomarks/internal/session"
)

func TestApp_DebouncedSearchSettles(t *testing.T) {
	sess := session.New(session.Deps{}, &auth.Session{DID: "did:plc:self", Handle: "alice.test"}, session.Options{})
	app := NewApp(AppParams{Session: sess, Debounce: 20 * time.Millisecond, Context: context.Background()})

	m, _ := app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	app = m.(App)
	for _, r := range "go" {
		m, _ = app.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		app = m.(App)
	}

	msg := app.waitForSearch()()
	settled, ok := msg.(searchSettledMsg)
	if !ok || settled.term != "go" {
		t.Fatalf("expected settled term go, got %#v", msg)
	}

	m, cmd := app.Update(settled)
	app = m.(App)
	if app.filter.Term != "go" {
		t.Errorf("settled term should apply, got %q", app.filter.Term)
	}
	if cmd == nil {
		t.Error("the search listener should be re-armed")
	}
	if app.mode != ModeSearch {
		t.Error("settling should not leave search mode")
	}
}

func TestApp_StaleSearchIgnored(t *testing.T) {
	sess := session.New(session.Deps{}, nil, session.Options{})
	app := NewApp(AppParams{Session: sess})

	// The input was cleared after the term was pushed.
	m, _ := app.Update(searchSettledMsg{term: "old"})
	app = m.(App)

	if app.filter.Term != "" {
		t.Errorf("a superseded term must not apply, got %q", app.filter.Term)
	}
}

func TestApp_StaleLoadKeepsLoading(t *testing.T) {
	sess := session.New(session.Deps{}, &auth.Session{DID: "did:plc:self"}, session.Options{})
	app := NewApp(AppParams{Session: sess})

	m, _ := app.Update(loadedMsg{err: session.ErrStale})
	app = m.(App)

	if !app.loading {
		t.Error("a stale result must not end the newer load")
	}
	if app.messageText != "" {
		t.Errorf("stale results are silent, got %q", app.messageText)
	}
}
