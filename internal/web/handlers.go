package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"

	"github.com/nikbrunner/boomarks/internal/logger"
	"github.com/nikbrunner/boomarks/internal/session"
)

// handleIndex reloads the collection named by the URL and renders it.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	state := ParseState(r.URL.Query())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sess.SetPresentation(state.Layout, state.SortReversed)
	if err := s.sync(r.Context(), state.User); err != nil && !errors.Is(err, session.ErrStale) {
		s.log.Debug("load for page failed", logger.Error(err))
	}

	p := s.buildPage(state, r.URL.Query().Get("msg"))
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, "index.html", p); err != nil {
		s.log.Error("render page", logger.Error(err))
	}
}

// sync points the session at user, or at the signed-in user when empty.
func (s *Server) sync(ctx context.Context, user string) error {
	if user != "" {
		return s.sess.ViewGuest(ctx, user)
	}
	if s.sess.AuthState() == session.Authenticated {
		return s.sess.LoadSelf(ctx)
	}
	return s.sess.ReturnToSelf(ctx)
}

// ownView points the session back at the signed-in user when another
// tab left it on a guest. Callers hold s.mu.
func (s *Server) ownView(ctx context.Context) {
	if s.sess.AuthState() != session.Authenticated || s.sess.Writable() {
		return
	}
	if err := s.sess.LoadSelf(ctx); err != nil {
		s.log.Debug("reload own collection failed", logger.Error(err))
	}
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	state := ParseState(r.PostForm)

	s.mu.Lock()
	s.ownView(r.Context())
	b, err := s.sess.Create(r.Context(), r.PostForm.Get("subject"), r.PostForm.Get("title"), r.PostForm.Get("tags"))
	s.mu.Unlock()
	s.metrics.recordWrite("create", err)
	if err != nil {
		s.redirect(w, r, state, session.Notice(err))
		return
	}
	s.redirect(w, r, state, "Saved "+b.ResolvedTitle())
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	state := ParseState(r.PostForm)

	uri := r.PostForm.Get("uri")
	if uri == "" {
		http.Error(w, "missing uri", http.StatusBadRequest)
		return
	}
	s.mu.Lock()
	s.ownView(r.Context())
	err := s.sess.Delete(r.Context(), uri)
	s.mu.Unlock()
	s.metrics.recordWrite("delete", err)
	if err != nil {
		s.redirect(w, r, state, session.Notice(err))
		return
	}
	s.redirect(w, r, state, "")
}

// redirect sends the browser back to the page for state after a POST,
// carrying msg as a one-shot flash.
func (s *Server) redirect(w http.ResponseWriter, r *http.Request, state State, msg string) {
	q := state.Query()
	if msg != "" {
		q.Set("msg", msg)
	}
	target := url.URL{Path: "/", RawQuery: q.Encode()}
	http.Redirect(w, r, target.String(), http.StatusSeeOther)
}

type health struct {
	Status    string `json:"status"`
	Auth      string `json:"auth"`
	Bookmarks int    `json:"bookmarks"`
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(health{
		Status:    "ok",
		Auth:      s.sess.AuthState().String(),
		Bookmarks: s.sess.Count(),
	})
}
