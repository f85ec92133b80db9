package render

import (
	"regexp"
	"strings"
	"unicode/utf16"
)

var titleSeparator = regexp.MustCompile(`\s\|\s|\s-\s|\s–\s|/,`)

// SplitTitle splits a card title at its first separator (" | ", " - ",
// " – " or "/,"). The remainder keeps any later separators verbatim.
func SplitTitle(title string) (primary, secondary string) {
	text := strings.TrimSpace(title)
	loc := titleSeparator.FindStringIndex(text)
	if loc == nil {
		return text, ""
	}
	return text[:loc[0]], text[loc[1]:]
}

// FontSize returns the primary line size in viewport-width units, banded
// by title length in UTF-16 code units.
func FontSize(title string) float64 {
	n := len(utf16.Encode([]rune(strings.TrimSpace(title))))
	switch {
	case n < 9:
		return 6
	case n < 20:
		return 5
	case n < 35:
		return 4
	case n < 100:
		return 3
	default:
		return 2.5
	}
}

// SecondarySize is two thirds of the primary size.
func SecondarySize(primary float64) float64 {
	return primary * 2 / 3
}
