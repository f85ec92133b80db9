package model

// Store holds the bookmarks of exactly one viewed identity, in the order
// the remote listing returned them.
type Store struct {
	Bookmarks []Bookmark `json:"bookmarks"`
}

// NewStore creates an empty Store with an initialized slice.
func NewStore() *Store {
	return &Store{
		Bookmarks: []Bookmark{},
	}
}

// Replace swaps the whole collection for bookmarks.
func (s *Store) Replace(bookmarks []Bookmark) {
	s.Bookmarks = make([]Bookmark, len(bookmarks))
	copy(s.Bookmarks, bookmarks)
}

// Append adds a bookmark at the end of the collection.
func (s *Store) Append(b Bookmark) {
	s.Bookmarks = append(s.Bookmarks, b)
}

// Remove deletes the bookmark with the given record URI.
// Returns false when no bookmark matched.
func (s *Store) Remove(recordURI string) bool {
	kept := s.Bookmarks[:0]
	removed := false
	for _, b := range s.Bookmarks {
		if b.RecordURI == recordURI {
			removed = true
			continue
		}
		kept = append(kept, b)
	}
	s.Bookmarks = kept
	return removed
}

// Clear empties the collection.
func (s *Store) Clear() {
	s.Bookmarks = []Bookmark{}
}

// Len returns the number of bookmarks held.
func (s *Store) Len() int {
	return len(s.Bookmarks)
}

// Snapshot returns a copy of the bookmarks safe to hand to renderers.
func (s *Store) Snapshot() []Bookmark {
	out := make([]Bookmark, len(s.Bookmarks))
	copy(out, s.Bookmarks)
	return out
}

// GetBookmarkByURI finds a bookmark by record URI, returns nil if not found.
func (s *Store) GetBookmarkByURI(recordURI string) *Bookmark {
	for i := range s.Bookmarks {
		if s.Bookmarks[i].RecordURI == recordURI {
			return &s.Bookmarks[i]
		}
	}
	return nil
}

// HasSubject reports whether any bookmark points at subject.
func (s *Store) HasSubject(subject string) bool {
	for _, b := range s.Bookmarks {
		if b.Subject == subject {
			return true
		}
	}
	return false
}
