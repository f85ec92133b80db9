package tui

import (
	"context"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nikbrunner/boomarks/internal/model"
)

type loadedMsg struct{ err error }

type createdMsg struct {
	bookmark model.Bookmark
	err      error
}

type deletedMsg struct {
	title string
	err   error
}

type searchSettledMsg struct{ term string }

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return context.WithCancel(ctx)
}

func (a App) loadSelfCmd() tea.Cmd {
	sess, parent, timeout := a.sess, a.ctx, a.timeout
	return func() tea.Msg {
		ctx, cancel := withTimeout(parent, timeout)
		defer cancel()
		return loadedMsg{err: sess.LoadSelf(ctx)}
	}
}

// viewUserCmd shows handle's bookmarks; an empty handle returns to self.
func (a App) viewUserCmd(handle string) tea.Cmd {
	sess, parent, timeout := a.sess, a.ctx, a.timeout
	return func() tea.Msg {
		ctx, cancel := withTimeout(parent, timeout)
		defer cancel()
		return loadedMsg{err: sess.ViewGuest(ctx, handle)}
	}
}

func (a App) createCmd(subject, title, tags string) tea.Cmd {
	sess, parent, timeout := a.sess, a.ctx, a.timeout
	return func() tea.Msg {
		ctx, cancel := withTimeout(parent, timeout)
		defer cancel()
		b, err := sess.Create(ctx, subject, title, tags)
		return createdMsg{bookmark: b, err: err}
	}
}

func (a App) deleteCmd(item Item) tea.Cmd {
	sess, parent, timeout := a.sess, a.ctx, a.timeout
	return func() tea.Msg {
		ctx, cancel := withTimeout(parent, timeout)
		defer cancel()
		return deletedMsg{title: item.Title, err: sess.Delete(ctx, item.RecordURI)}
	}
}

// waitForSearch blocks until the debouncer settles on a term.
func (a App) waitForSearch() tea.Cmd {
	ch := a.debouncer.C()
	return func() tea.Msg {
		term, ok := <-ch
		if !ok {
			return nil
		}
		return searchSettledMsg{term: term}
	}
}

func writeClipboard(s string) error {
	return clipboard.WriteAll(s)
}
