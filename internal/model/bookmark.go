package model

import (
	"strings"
	"time"
)

// Bookmark represents one record of the bookmark collection.
type Bookmark struct {
	RecordURI string     `json:"uri"`
	CID       string     `json:"cid"`
	Subject   string     `json:"subject"`
	Title     string     `json:"title,omitempty"`
	Tags      []string   `json:"tags"`
	CreatedAt *time.Time `json:"createdAt,omitempty"` // nil = legacy record
}

// NewBookmarkParams holds parameters for drafting a new Bookmark.
type NewBookmarkParams struct {
	Subject string
	Title   string
	Tags    []string
}

// NewBookmark creates a draft Bookmark stamped with createdAt.
// RecordURI and CID stay empty until the record is stored remotely.
func NewBookmark(params NewBookmarkParams, createdAt time.Time) Bookmark {
	tags := params.Tags
	if tags == nil {
		tags = []string{}
	}

	created := createdAt.UTC()
	return Bookmark{
		Subject:   params.Subject,
		Title:     params.Title,
		Tags:      tags,
		CreatedAt: &created,
	}
}

// ResolvedTitle returns the title, falling back to the subject.
func (b Bookmark) ResolvedTitle() string {
	if b.Title != "" {
		return b.Title
	}
	return b.Subject
}

// RecordKey returns the final path segment of the record URI.
func (b Bookmark) RecordKey() string {
	return RecordKey(b.RecordURI)
}

// RecordKey returns the final path segment of an at:// record URI.
func RecordKey(uri string) string {
	if i := strings.LastIndex(uri, "/"); i >= 0 {
		return uri[i+1:]
	}
	return uri
}

// ParseTags splits a comma-separated tag list, trimming blanks.
// Duplicates are kept in input order.
func ParseTags(raw string) []string {
	tags := []string{}
	for _, part := range strings.Split(raw, ",") {
		if tag := strings.TrimSpace(part); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}
