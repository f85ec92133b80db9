// Package style derives a reproducible card style from a bookmark title.
package style

import "unicode/utf16"

// Pair is a color pair in its unswapped orientation.
type Pair struct {
	Foreground string
	Background string
}

// Pairs is the fixed palette cards are painted from. Order is part of the
// derivation and must not change.
var Pairs = []Pair{
	{"#D1F257", "#0D0D0D"}, {"#F2BBDF", "#D94E41"}, {"#010D00", "#33A63B"},
	{"#F2E4E4", "#0D0C00"}, {"#2561D9", "#F2FDFE"}, {"#734c48", "#F2F2EB"},
	{"#8FBFAE", "#127357"}, {"#3A8C5D", "#F2BFAC"}, {"#8AA3A6", "#F2F0E4"},
	{"#F2C438", "#F23E2E"}, {"#455919", "#F2D338"}, {"#F2D8A7", "#F26363"},
	{"#260101", "#D93223"}, {"#456EBF", "#F2F1E9"}, {"#131E40", "#F2A413"},
	{"#F2F2F2", "#131E40"}, {"#262626", "#F2EDDC"}, {"#40593C", "#F2E6D0"},
	{"#F2F1DF", "#262416"}, {"#F2CB05", "#0D0D0D"}, {"#F2F2F2", "#F2CB05"},
	{"#F2E6D0", "#261C10"}, {"#F2D7D0", "#262523"}, {"#F2F0D8", "#F24535"},
	{"#191726", "#D9D9D9"}, {"#F2E8D5", "#0C06BF"}, {"#F2EFE9", "#45BFB3"},
	{"#F2C2C2", "#D93644"}, {"#734C48", "#F2C2C2"},
}

// Fonts is the ordered font list cards pick from.
var Fonts = []string{
	"Caveat", "Permanent Marker", "Courier", "Doto", "Bree Serif",
	"Ultra", "Alfa Slab One", "Sedan SC", "EB Garamond", "Bebas Neue",
}

// Style is the derived presentation of one card.
type Style struct {
	Background string
	Foreground string
	FontFamily string
	PairIndex  int
	FontIndex  int
	Swapped    bool
}

// Hash returns the absolute value of the 32-bit wrapping hash*31+unit
// hash over the UTF-16 code units of s.
func Hash(s string) int64 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = h*31 + int32(unit)
	}
	abs := int64(h)
	if abs < 0 {
		abs = -abs
	}
	return abs
}

// For derives the style for title. Even hashes swap the pair.
func For(title string) Style {
	h := Hash(title)
	pairIndex := int(h % int64(len(Pairs)))
	fontIndex := int(h % int64(len(Fonts)))
	pair := Pairs[pairIndex]

	s := Style{
		Background: pair.Background,
		Foreground: pair.Foreground,
		FontFamily: Fonts[fontIndex],
		PairIndex:  pairIndex,
		FontIndex:  fontIndex,
	}
	if h%2 == 0 {
		s.Background, s.Foreground = pair.Foreground, pair.Background
		s.Swapped = true
	}
	return s
}
