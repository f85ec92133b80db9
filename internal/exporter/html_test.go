package exporter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gotest.tools/v3/assert"
	is "gotest.tools/v3/assert/cmp"

	"github.com/nikbrunner/boomarks/internal/importer"
	"github.com/nikbrunner/boomarks/internal/model"
)

func at(sec int64) *time.Time {
	t := time.Unix(sec, 0).UTC()
	return &t
}

func TestExportHTML_Empty(t *testing.T) {
	html := ExportHTML(nil)

	assert.Check(t, is.Contains(html, "<!DOCTYPE NETSCAPE-Bookmark-file-1>"))
	assert.Check(t, is.Contains(html, "<TITLE>Bookmarks</TITLE>"))
	assert.Check(t, is.Contains(html, "<H1>Bookmarks</H1>"))
	assert.Check(t, !strings.Contains(html, "<A "))
}

func TestExportHTML_SingleBookmark(t *testing.T) {
	html := ExportHTML([]model.Bookmark{{
		Subject:   "https://github.com",
		Title:     "GitHub",
		Tags:      []string{"code", "git"},
		CreatedAt: at(1700000000),
	}})

	assert.Check(t, is.Contains(html, `<A HREF="https://github.com" ADD_DATE="1700000000" TAGS="code,git">GitHub</A>`))
}

func TestExportHTML_UntitledLegacyRecord(t *testing.T) {
	html := ExportHTML([]model.Bookmark{{Subject: "https://legacy.test", Tags: []string{}}})

	assert.Check(t, is.Contains(html, `<A HREF="https://legacy.test">https://legacy.test</A>`))
}

func TestExportHTML_Escaping(t *testing.T) {
	html := ExportHTML([]model.Bookmark{{
		Subject: "https://example.com/?a=1&b=2",
		Title:   `<script>"x"</script>`,
	}})

	assert.Check(t, is.Contains(html, `HREF="https://example.com/?a=1&amp;b=2"`))
	assert.Check(t, is.Contains(html, "&lt;script&gt;&#34;x&#34;&lt;/script&gt;"))
}

func TestExportHTML_ReadsBackThroughImporter(t *testing.T) {
	bookmarks := []model.Bookmark{
		{Subject: "https://a.test", Title: "A", Tags: []string{"x"}, CreatedAt: at(1600000000)},
		{Subject: "https://b.test", Title: "B & more"},
	}

	entries, err := importer.ParseHTMLBookmarks(strings.NewReader(ExportHTML(bookmarks)))
	assert.NilError(t, err)
	assert.Equal(t, len(entries), 2)
	assert.Equal(t, entries[0].URL, "https://a.test")
	assert.Check(t, entries[0].AddedAt != nil && entries[0].AddedAt.Equal(*bookmarks[0].CreatedAt))
	assert.Equal(t, entries[1].Title, "B & more")
}

func TestWriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.html")

	err := WriteFile(path, []model.Bookmark{{Subject: "https://a.test", Title: "A"}})
	assert.NilError(t, err)

	data, err := os.ReadFile(path)
	assert.NilError(t, err)
	assert.Check(t, is.Contains(string(data), `HREF="https://a.test"`))
}

func TestDefaultExportPath(t *testing.T) {
	path, err := DefaultExportPath(time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC))
	assert.NilError(t, err)
	assert.Equal(t, filepath.Base(path), "bookmarks-export-2025-03-09.html")
}
