package session

import "errors"

var (
	ErrAuthFailure       = errors.New("sign-in failed")
	ErrNotFound          = errors.New("user has no bookmarks or bookmarks are not accessible")
	ErrLexiconAbsent     = errors.New("user has no bookmarks with this lexicon")
	ErrRejected          = errors.New("request rejected by the PDS")
	ErrResolutionFailure = errors.New("user not found")
	ErrReadOnly          = errors.New("bookmarks can only be changed on your own account while signed in")
	ErrStale             = errors.New("superseded by a newer load")
	ErrEmptySubject      = errors.New("a bookmark needs a URL")
)

// Notice returns the user-facing message for err, or "" for nil and
// stale results, which are silently dropped.
func Notice(err error) string {
	switch {
	case err == nil, errors.Is(err, ErrStale):
		return ""
	case errors.Is(err, ErrNotFound):
		return ErrNotFound.Error()
	case errors.Is(err, ErrLexiconAbsent):
		return ErrLexiconAbsent.Error()
	case errors.Is(err, ErrResolutionFailure):
		return ErrResolutionFailure.Error()
	case errors.Is(err, ErrReadOnly):
		return ErrReadOnly.Error()
	case errors.Is(err, ErrEmptySubject):
		return ErrEmptySubject.Error()
	}
	return err.Error()
}
