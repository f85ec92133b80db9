package render_test

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/nikbrunner/boomarks/internal/model"
	"github.com/nikbrunner/boomarks/internal/render"
	"github.com/nikbrunner/boomarks/internal/style"
)

var now = time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

func ago(d time.Duration) *time.Time {
	t := now.Add(-d)
	return &t
}

func fixture() []model.Bookmark {
	return []model.Bookmark{
		{RecordURI: "at://a/c/1", Subject: "https://first.example", Title: "First", CreatedAt: ago(72 * time.Hour)},
		{RecordURI: "at://a/c/2", Subject: "https://second.example", Tags: []string{"go"}},
		{RecordURI: "at://a/c/3", Subject: "", Title: "no url"},
		{RecordURI: "at://a/c/4", Subject: "https://www.fourth.example/path", Title: "Fourth | Docs", CreatedAt: ago(time.Hour)},
	}
}

func uris(v render.View) []string {
	var out []string
	for _, r := range v.Rows {
		out = append(out, r.RecordURI)
	}
	for _, c := range v.Cards {
		out = append(out, c.RecordURI)
	}
	return out
}

func TestDisplayOrder_ReversalLaw(t *testing.T) {
	bs := fixture()
	newest := render.DisplayOrder(bs, false)
	oldest := render.DisplayOrder(bs, true)

	reversed := make([]model.Bookmark, len(oldest))
	for i, b := range oldest {
		reversed[len(oldest)-1-i] = b
	}
	if diff := cmp.Diff(reversed, newest); diff != "" {
		t.Errorf("reversal law violated (-want +got):\n%s", diff)
	}
	if newest[0].RecordURI != "at://a/c/4" {
		t.Errorf("expected newest first, got %s", newest[0].RecordURI)
	}
}

func TestRender_ListScenario(t *testing.T) {
	bs := []model.Bookmark{{RecordURI: "at://a/c/1", Subject: "https://x.com", Tags: []string{"a", "b"}}}

	v := render.Render(bs, render.Params{Layout: render.LayoutList, IsSelf: true, Now: now})

	want := []render.Row{{
		RecordURI: "at://a/c/1",
		Title:     "x.com",
		URL:       "https://x.com",
		Tags:      []string{"#a", "#b"},
		Deletable: true,
	}}
	if diff := cmp.Diff(want, v.Rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
	if v.Total != 1 || v.Visible != 1 {
		t.Errorf("expected 1/1, got %d/%d", v.Visible, v.Total)
	}
}

func TestRender_SkipsEmptyURL(t *testing.T) {
	for _, layout := range []render.Layout{render.LayoutList, render.LayoutGrid} {
		v := render.Render(fixture(), render.Params{Layout: layout, Now: now})
		if diff := cmp.Diff([]string{"at://a/c/4", "at://a/c/2", "at://a/c/1"}, uris(v)); diff != "" {
			t.Errorf("%s: order mismatch (-want +got):\n%s", layout, diff)
		}
	}
}

func TestRender_Idempotent(t *testing.T) {
	p := render.Params{Layout: render.LayoutGrid, SortReversed: true, IsSelf: true, Term: "doc", Now: now}
	first := render.Render(fixture(), p)
	second := render.Render(fixture(), p)

	if diff := cmp.Diff(first, second); diff != "" {
		t.Errorf("render not idempotent:\n%s", diff)
	}
}

func TestRender_GuestHasNoDeleteAffordance(t *testing.T) {
	v := render.Render(fixture(), render.Params{Layout: render.LayoutList, IsSelf: false, Now: now})
	for _, r := range v.Rows {
		if r.Deletable {
			t.Errorf("expected %s not deletable for guest", r.RecordURI)
		}
	}
}

func TestRender_SearchHidesWithoutDropping(t *testing.T) {
	v := render.Render(fixture(), render.Params{Layout: render.LayoutList, Term: "#GO", Now: now})

	if v.Total != 3 || v.Visible != 1 {
		t.Fatalf("expected 1 of 3 visible, got %d of %d", v.Visible, v.Total)
	}
	for _, r := range v.Rows {
		if r.Hidden == (r.RecordURI == "at://a/c/2") {
			t.Errorf("unexpected visibility for %s: hidden=%v", r.RecordURI, r.Hidden)
		}
	}
}

func TestRender_GridSearchesTitleOnly(t *testing.T) {
	v := render.Render(fixture(), render.Params{Layout: render.LayoutGrid, Term: "path", Now: now})
	if v.Visible != 0 {
		t.Errorf("expected url text not to match cards, got %d visible", v.Visible)
	}

	v = render.Render(fixture(), render.Params{Layout: render.LayoutList, Term: "path", Now: now})
	if v.Visible != 1 {
		t.Errorf("expected url text to match rows, got %d visible", v.Visible)
	}
}

func TestRender_GridCard(t *testing.T) {
	v := render.Render(fixture(), render.Params{Layout: render.LayoutGrid, IsSelf: true, Now: now})

	card := v.Cards[0]
	if card.Primary != "Fourth" || card.Secondary != "Docs" {
		t.Errorf("unexpected split %q / %q", card.Primary, card.Secondary)
	}
	if card.PrimarySize != 5 || card.SecondarySize != 5.0*2/3 {
		t.Errorf("unexpected sizes %v / %v", card.PrimarySize, card.SecondarySize)
	}
	if card.Style != style.For("Fourth | Docs") {
		t.Errorf("expected style derived from the title, got %+v", card.Style)
	}

	untitled := v.Cards[1]
	if untitled.Primary != "second.example" {
		t.Errorf("expected stripped subject, got %q", untitled.Primary)
	}
	if untitled.Style != style.For("https://second.example") {
		t.Error("expected style derived from the unstripped subject")
	}
}

func TestDisplayTitle(t *testing.T) {
	tests := map[string]string{
		"https://www.example.com": "example.com",
		"HTTP://Example.com":      "Example.com",
		"ftp://example.com":       "ftp://example.com",
		"Plain title":             "Plain title",
	}
	for in, want := range tests {
		if got := render.DisplayTitle(in); got != want {
			t.Errorf("DisplayTitle(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestParseLayout(t *testing.T) {
	if l, err := render.ParseLayout("GRID"); err != nil || l != render.LayoutGrid {
		t.Errorf("expected grid, got %v %v", l, err)
	}
	if l, err := render.ParseLayout(""); err != nil || l != render.LayoutList {
		t.Errorf("expected list default, got %v %v", l, err)
	}
	if _, err := render.ParseLayout("table"); err == nil {
		t.Error("expected error for unknown layout")
	}
	if render.LayoutList.Toggle() != render.LayoutGrid || render.LayoutGrid.Toggle() != render.LayoutList {
		t.Error("expected Toggle to flip layouts")
	}
}
