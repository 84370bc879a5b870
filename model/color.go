package model

import "fmt"

// MaxColors is the number of frequency channels a satellite can form beams on.
const MaxColors = 4

// Color is a frequency channel label. Colors are ordered; assignment tries
// them lowest first.
type Color byte

// Palette is the fixed, ordered set of color labels.
var Palette = [MaxColors]Color{'A', 'B', 'C', 'D'}

// ColorAt returns the color at index i of the palette.
func ColorAt(i int) Color {
	return Palette[i]
}

// Index returns the palette position of c, or -1 if c is not a palette color.
func (c Color) Index() int {
	for i, p := range Palette {
		if p == c {
			return i
		}
	}
	return -1
}

// String renders the color as its single-letter label.
func (c Color) String() string {
	return string(rune(c))
}

// ParseColor parses a single-letter color label within the first n colors of
// the palette.
func ParseColor(s string, n int) (Color, error) {
	if len(s) != 1 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	c := Color(s[0])
	idx := c.Index()
	if idx < 0 || idx >= n {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	return c, nil
}
