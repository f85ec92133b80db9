// Package record maps bookmark records of the community bookmark lexicon
// to and from the local Bookmark entity.
package record

import (
	"encoding/json"
	"time"

	"github.com/nikbrunner/boomarks/internal/atproto"
	"github.com/nikbrunner/boomarks/internal/model"
)

// LexiconID names the bookmark collection in every repository.
const LexiconID = "community.lexicon.bookmarks.bookmark"

// isoMillis matches the millisecond ISO 8601 form other clients write.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Value is the lexicon body of a bookmark record.
type Value struct {
	Type      string   `json:"$type"`
	Subject   string   `json:"subject,omitempty"`
	URI       string   `json:"uri,omitempty"` // legacy display target
	Title     string   `json:"title,omitempty"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"createdAt,omitempty"`
}

// Payload is the record body sent on create.
type Payload struct {
	Type      string   `json:"$type"`
	Subject   string   `json:"subject"`
	Title     string   `json:"title,omitempty"`
	Tags      []string `json:"tags"`
	CreatedAt string   `json:"createdAt"`
}

// ToLocal converts a listed record into a Bookmark.
// Returns false for records that carry neither subject nor legacy uri.
func ToLocal(r atproto.Record) (model.Bookmark, bool) {
	var v Value
	if err := json.Unmarshal(r.Value, &v); err != nil {
		return model.Bookmark{}, false
	}

	subject := v.Subject
	if subject == "" {
		subject = v.URI
	}
	if subject == "" {
		return model.Bookmark{}, false
	}

	tags := v.Tags
	if tags == nil {
		tags = []string{}
	}

	return model.Bookmark{
		RecordURI: r.URI,
		CID:       r.CID,
		Subject:   subject,
		Title:     v.Title,
		Tags:      tags,
		CreatedAt: parseCreatedAt(v.CreatedAt),
	}, true
}

// ToLocalAll converts records in listing order, dropping unusable ones.
func ToLocalAll(records []atproto.Record) []model.Bookmark {
	bookmarks := make([]model.Bookmark, 0, len(records))
	for _, r := range records {
		if b, ok := ToLocal(r); ok {
			bookmarks = append(bookmarks, b)
		}
	}
	return bookmarks
}

// ToRemote builds the create payload for b, stamped with now.
// An empty title is omitted from the payload.
func ToRemote(b model.Bookmark, now time.Time) Payload {
	tags := b.Tags
	if tags == nil {
		tags = []string{}
	}

	return Payload{
		Type:      LexiconID,
		Subject:   b.Subject,
		Title:     b.Title,
		Tags:      tags,
		CreatedAt: now.UTC().Format(isoMillis),
	}
}

// FromCreated merges the identity returned by createRecord into the
// bookmark that was sent, producing the entry appended to the store.
func FromCreated(ref atproto.RecordRef, p Payload) model.Bookmark {
	return model.Bookmark{
		RecordURI: ref.URI,
		CID:       ref.CID,
		Subject:   p.Subject,
		Title:     p.Title,
		Tags:      p.Tags,
		CreatedAt: parseCreatedAt(p.CreatedAt),
	}
}

func parseCreatedAt(s string) *time.Time {
	if s == "" {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil
	}
	return &t
}
