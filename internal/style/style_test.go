package style_test

import (
	"testing"

	"github.com/nikbrunner/boomarks/internal/style"
)

func TestHash(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"", 0},
		{"a", 97},
		{"ab", 97*31 + 98},
		// "hello" is 99162322 under the 31-multiplier hash.
		{"hello", 99162322},
		// Astral code points hash as two UTF-16 units.
		{"😀", 0xD83D*31 + 0xDE00},
	}

	for _, tt := range tests {
		if got := style.Hash(tt.in); got != tt.want {
			t.Errorf("Hash(%q): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestHash_WrapsTo32Bits(t *testing.T) {
	// The running hash overflows int32 and lands on -609428141, the same
	// value a browser's (h*31+c)|0 loop produces.
	title := "The quick brown fox jumps over the lazy dog"
	if got := style.Hash(title); got != 609428141 {
		t.Fatalf("expected 609428141, got %d", got)
	}

	// 609428141%29=14, 609428141%10=1, odd so unswapped.
	s := style.For(title)
	if s.PairIndex != 14 || s.FontIndex != 1 || s.Swapped {
		t.Errorf("expected pair 14 font 1 unswapped, got %+v", s)
	}
	if s.Background != "#F2A413" || s.Foreground != "#131E40" {
		t.Errorf("unexpected colors bg=%s fg=%s", s.Background, s.Foreground)
	}
	if s.FontFamily != "Permanent Marker" {
		t.Errorf("expected Permanent Marker, got %s", s.FontFamily)
	}
}

func TestFor_EmptyTitle(t *testing.T) {
	s := style.For("")

	if s.PairIndex != 0 {
		t.Errorf("expected pair 0, got %d", s.PairIndex)
	}
	if !s.Swapped {
		t.Error("expected even hash to swap the pair")
	}
	if s.Background != style.Pairs[0].Foreground || s.Foreground != style.Pairs[0].Background {
		t.Errorf("expected swapped colors, got bg=%s fg=%s", s.Background, s.Foreground)
	}
	if s.FontFamily != "Caveat" {
		t.Errorf("expected Caveat, got %s", s.FontFamily)
	}
}

func TestFor_OddHashKeepsOrientation(t *testing.T) {
	// "a" hashes to 97: pair 97%29=10, font 97%10=7.
	s := style.For("a")

	if s.Swapped {
		t.Error("expected odd hash not to swap")
	}
	if s.PairIndex != 10 || s.FontIndex != 7 {
		t.Errorf("expected pair 10 font 7, got pair %d font %d", s.PairIndex, s.FontIndex)
	}
	if s.Background != "#F2D338" || s.Foreground != "#455919" {
		t.Errorf("unexpected colors bg=%s fg=%s", s.Background, s.Foreground)
	}
	if s.FontFamily != "Sedan SC" {
		t.Errorf("expected Sedan SC, got %s", s.FontFamily)
	}
}

func TestFor_Deterministic(t *testing.T) {
	titles := []string{"", "Go", "TanStack Router | Docs", "ünïcødé", "https://example.com"}
	for _, title := range titles {
		first := style.For(title)
		for i := 0; i < 5; i++ {
			if got := style.For(title); got != first {
				t.Fatalf("For(%q) not deterministic: %+v vs %+v", title, first, got)
			}
		}
	}
}
