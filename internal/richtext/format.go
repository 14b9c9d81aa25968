// Package richtext converts the lightweight markup used in project and task
// descriptions into the backend's rich-text (HTML) description format.
package richtext

import (
	"regexp"
	"strings"
)

// Markup emitted by Format.
const (
	LineBreak    = "<br>"
	boldOpen     = "<b>"
	boldClose    = "</b>"
	headingOpen  = "<h4>"
	headingClose = "</h4>"
)

// MarkerGlyphs are the section glyphs that promote a line to a heading.
const MarkerGlyphs = "📋🔧✅🎯🏅"

var (
	boldSpan = regexp.MustCompile(`\*\*(.+?)\*\*`)

	// glyph followed by a bold span produced by the first pass
	boldHeading = regexp.MustCompile(`^(\s*)([` + MarkerGlyphs + `])\x{FE0F}?\s*<b>([^<]+)</b>(.*)$`)

	// glyph followed by an all-caps run that was never wrapped in bold
	capsHeading = regexp.MustCompile(`^(\s*)([` + MarkerGlyphs + `])\x{FE0F}?\s*([A-Z][A-Z ]*)(.*)$`)
)

// Format renders text as rich text:
//
//   - **x** becomes <b>x</b> (non-greedy, several spans per line)
//   - a line starting with a marker glyph and a bold label becomes <h4>glyph label</h4>
//   - a line starting with a marker glyph and an upper-case label becomes a heading too
//   - every line break becomes <br>
//
// Unmatched ** is left as typed. Format is pure.
func Format(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = boldSpan.ReplaceAllString(text, boldOpen+"$1"+boldClose)

	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = promoteHeading(line)
	}
	return strings.Join(lines, LineBreak)
}

func promoteHeading(line string) string {
	if m := boldHeading.FindStringSubmatch(line); m != nil {
		return m[1] + heading(m[2], m[3]) + m[4]
	}
	if m := capsHeading.FindStringSubmatch(line); m != nil {
		label := strings.TrimRight(m[3], " ")
		rest := m[3][len(label):] + m[4]
		return m[1] + heading(m[2], label) + rest
	}
	return line
}

func heading(glyph, label string) string {
	return headingOpen + glyph + " " + strings.TrimSpace(label) + headingClose
}
