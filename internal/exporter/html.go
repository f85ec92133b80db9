package exporter

import (
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/nikbrunner/boomarks/internal/model"
)

// DefaultExportPath returns the default export file path.
// Format: ~/Downloads/bookmarks-export-YYYY-MM-DD.html
func DefaultExportPath(now time.Time) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	filename := fmt.Sprintf("bookmarks-export-%s.html", now.Format("2006-01-02"))
	return filepath.Join(home, "Downloads", filename), nil
}

// ExportHTML writes bookmarks as a flat Netscape bookmark file in the
// given order. Tags go into the TAGS attribute; legacy records without a
// creation time carry no ADD_DATE.
func ExportHTML(bookmarks []model.Bookmark) string {
	var b strings.Builder

	b.WriteString("<!DOCTYPE NETSCAPE-Bookmark-file-1>\n")
	b.WriteString("<META HTTP-EQUIV=\"Content-Type\" CONTENT=\"text/html; charset=UTF-8\">\n")
	b.WriteString("<TITLE>Bookmarks</TITLE>\n")
	b.WriteString("<H1>Bookmarks</H1>\n")
	b.WriteString("<DL><p>\n")

	for _, bm := range bookmarks {
		b.WriteString("    <DT><A HREF=\"")
		b.WriteString(html.EscapeString(bm.Subject))
		b.WriteString("\"")
		if bm.CreatedAt != nil {
			fmt.Fprintf(&b, " ADD_DATE=\"%d\"", bm.CreatedAt.Unix())
		}
		if len(bm.Tags) > 0 {
			fmt.Fprintf(&b, " TAGS=\"%s\"", html.EscapeString(strings.Join(bm.Tags, ",")))
		}
		fmt.Fprintf(&b, ">%s</A>\n", html.EscapeString(bm.ResolvedTitle()))
	}

	b.WriteString("</DL><p>\n")
	return b.String()
}

// WriteFile exports bookmarks to path, creating parent directories.
func WriteFile(path string, bookmarks []model.Bookmark) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, []byte(ExportHTML(bookmarks)), 0644)
}
