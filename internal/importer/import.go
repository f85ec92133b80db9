package importer

import (
	"context"
	"errors"
	"strings"

	"github.com/nikbrunner/boomarks/internal/logger"
	"github.com/nikbrunner/boomarks/internal/model"
	"github.com/nikbrunner/boomarks/internal/session"
)

// Destination receives imported bookmarks. *session.AppSession
// satisfies it.
type Destination interface {
	Bookmarks() []model.Bookmark
	Create(ctx context.Context, subject, title, rawTags string) (model.Bookmark, error)
}

// Summary counts the outcome of an import.
type Summary struct {
	Created int
	Skipped int // subject already present
	Failed  int
}

// Import creates one record per entry, tagged with its folder names.
// Entries whose URL is already bookmarked, or appeared earlier in the
// file, are skipped. A read-only destination or a cancelled context
// aborts the import; other failures are counted and logged.
func Import(ctx context.Context, dst Destination, entries []Entry, log logger.Logger) (Summary, error) {
	if log == nil {
		log = logger.Nop()
	}

	existing := model.NewStore()
	existing.Replace(dst.Bookmarks())
	seen := make(map[string]bool)

	var sum Summary
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return sum, err
		}
		if seen[e.URL] || existing.HasSubject(e.URL) {
			sum.Skipped++
			continue
		}
		seen[e.URL] = true

		if _, err := dst.Create(ctx, e.URL, e.Title, FolderTags(e.Folders)); err != nil {
			if errors.Is(err, session.ErrReadOnly) || errors.Is(err, context.Canceled) {
				return sum, err
			}
			log.Warn("import entry failed", logger.String("url", e.URL), logger.Error(err))
			sum.Failed++
			continue
		}
		sum.Created++
	}

	log.Info("import finished",
		logger.Int("created", sum.Created),
		logger.Int("skipped", sum.Skipped),
		logger.Int("failed", sum.Failed),
	)
	return sum, nil
}

// FolderTags joins folder names into the comma-separated tag input.
// Commas inside a name would split it, so they become spaces.
func FolderTags(folders []string) string {
	tags := make([]string, 0, len(folders))
	for _, f := range folders {
		f = strings.Join(strings.Fields(strings.ReplaceAll(f, ",", " ")), " ")
		if f != "" {
			tags = append(tags, f)
		}
	}
	return strings.Join(tags, ", ")
}
