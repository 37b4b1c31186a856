package escpos

import "strings"

// Wrap breaks text into lines no wider than width printer columns.
//
// Breaks happen at whitespace; a single token is hard-broken only when it
// alone exceeds the width. Paragraphs separated by a blank line are
// preserved, as are explicit single newlines.
func Wrap(text string, width int) []string {
	if width < 1 {
		width = 1
	}

	var lines []string
	paragraphs := strings.Split(text, "\n\n")
	for i, paragraph := range paragraphs {
		for _, sub := range strings.Split(paragraph, "\n") {
			sub = strings.TrimSpace(sub)
			if sub == "" {
				lines = append(lines, "")
				continue
			}
			lines = append(lines, wrapLine(sub, width)...)
		}
		if i < len(paragraphs)-1 {
			lines = append(lines, "")
		}
	}
	return lines
}

func wrapLine(s string, width int) []string {
	var lines []string
	var cur []rune

	flush := func() {
		if len(cur) > 0 {
			lines = append(lines, string(cur))
			cur = cur[:0]
		}
	}

	for _, word := range strings.Fields(s) {
		runes := []rune(word)

		// Overlong token: flush the current line and emit width-sized
		// chunks until the remainder fits.
		if len(runes) > width {
			flush()
			for len(runes) > width {
				lines = append(lines, string(runes[:width]))
				runes = runes[width:]
			}
			cur = append(cur, runes...)
			continue
		}

		switch {
		case len(cur) == 0:
			cur = append(cur, runes...)
		case len(cur)+1+len(runes) <= width:
			cur = append(cur, ' ')
			cur = append(cur, runes...)
		default:
			flush()
			cur = append(cur, runes...)
		}
	}
	flush()

	if len(lines) == 0 {
		return []string{""}
	}
	return lines
}
