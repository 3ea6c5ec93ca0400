// Package banner draws the two-row block lettering shown on the home page.
package banner

import (
	"strings"
)

// glyphs holds the top and bottom row of every supported character. Both
// rows of a glyph have the same rune width.
var glyphs = map[rune][2]string{
	'A': {"▄▀█", "█▀█"},
	'B': {"█▄▄", "█▄█"},
	'C': {"█▀▀", "█▄▄"},
	'D': {"█▀▄", "█▄▀"},
	'E': {"█▀▀", "██▄"},
	'F': {"█▀▀", "█▀ "},
	'G': {"█▀▀", "█▄█"},
	'H': {"█ █", "█▀█"},
	'I': {"█", "█"},
	'J': {"  █", "█▄█"},
	'K': {"█▄▀", "█ █"},
	'L': {"█  ", "█▄▄"},
	'M': {"█▀▄▀█", "█ ▀ █"},
	'N': {"█▄ █", "█ ▀█"},
	'O': {"█▀█", "█▄█"},
	'P': {"█▀█", "█▀▀"},
	'Q': {"█▀█", "▀▀█"},
	'R': {"█▀█", "█▀▄"},
	'S': {"█▀", "▄█"},
	'T': {"▀█▀", " █ "},
	'U': {"█ █", "█▄█"},
	'V': {"█ █", "▀▄▀"},
	'W': {"█ █ █", "▀▄▀▄▀"},
	'X': {"▀▄▀", "█ █"},
	'Y': {"█▄█", " █ "},
	'Z': {"▀█", "█▄"},
	'0': {"█▀█", "█▄█"},
	'1': {"▄█", " █"},
	'2': {"▀█", "█▄"},
	'3': {"▀▀█", "▄██"},
	'4': {"█ █", "▀▀█"},
	'5': {"█▀", "▄█"},
	'6': {"█▄▄", "█▄█"},
	'7': {"▀▀█", "  █"},
	'8': {"███", "█▄█"},
	'9': {"█▀█", "▀▀█"},
	' ': {"  ", "  "},
	'-': {"▄▄", "  "},
	'.': {" ", "▄"},
}

var unknownGlyph = [2]string{"▀█", " ▄"}

// Generate renders text in block letters. Letters are case-insensitive and
// unsupported characters become a question mark.
func Generate(text string) string {
	text = strings.ToUpper(strings.TrimSpace(text))
	if text == "" {
		return ""
	}

	var top, bottom strings.Builder
	for i, r := range []rune(text) {
		g, ok := glyphs[r]
		if !ok {
			g = unknownGlyph
		}
		if i > 0 {
			top.WriteByte(' ')
			bottom.WriteByte(' ')
		}
		top.WriteString(g[0])
		bottom.WriteString(g[1])
	}
	return top.String() + "\n" + bottom.String()
}
