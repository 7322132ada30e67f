package hostsim

import (
	"strings"

	"cellignore/internal/remap"
)

// Dot bits of an 8-dot braille cell.
const (
	dot1 remap.Cell = 1 << iota
	dot2
	dot3
	dot4
	dot5
	dot6
	dot7
	dot8
)

// letters a-j; the rest of the alphabet is derived from them.
var firstDecade = [10]remap.Cell{
	dot1,
	dot1 | dot2,
	dot1 | dot4,
	dot1 | dot4 | dot5,
	dot1 | dot5,
	dot1 | dot2 | dot4,
	dot1 | dot2 | dot4 | dot5,
	dot1 | dot2 | dot5,
	dot2 | dot4,
	dot2 | dot4 | dot5,
}

// Encode renders text as uncontracted braille cells. Capital letters get
// dot 7; characters without a pattern are shown as all eight dots.
func Encode(text string) []remap.Cell {
	cells := make([]remap.Cell, 0, len(text))
	for _, r := range text {
		cells = append(cells, encodeRune(r))
	}
	return cells
}

func encodeRune(r rune) remap.Cell {
	var extra remap.Cell
	if r >= 'A' && r <= 'Z' {
		r = r - 'A' + 'a'
		extra = dot7
	}
	switch {
	case r == ' ':
		return remap.Blank
	case r == 'w':
		return firstDecade['j'-'a'] | dot6 | extra
	case r >= 'a' && r <= 'j':
		return firstDecade[r-'a'] | extra
	case r >= 'k' && r <= 't':
		return firstDecade[r-'k'] | dot3 | extra
	case r >= 'u' && r <= 'z':
		i := r - 'u'
		if r > 'w' {
			i--
		}
		return firstDecade[i] | dot3 | dot6 | extra
	}
	return 0xFF
}

// Render draws cells as Unicode braille patterns.
func Render(cells []remap.Cell) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteRune(rune(0x2800 + int(c)))
	}
	return b.String()
}
