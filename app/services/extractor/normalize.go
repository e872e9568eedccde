package extractor

import (
	"regexp"
	"strings"
)

var (
	lineEndRe    = regexp.MustCompile(`\r+\n`)
	blankLinesRe = regexp.MustCompile(`\n{3,}`)
	spacesRe     = regexp.MustCompile(` {2,}`)
)

// Normalize cleans extracted text: CRLF (or any run of CR before LF) becomes
// LF, three or more newlines collapse to two, tabs become spaces, runs of
// spaces collapse to one and the result is trimmed.
// Normalize(Normalize(s)) == Normalize(s).
func Normalize(text string) string {
	text = lineEndRe.ReplaceAllString(text, "\n")
	text = blankLinesRe.ReplaceAllString(text, "\n\n")
	text = strings.ReplaceAll(text, "\t", " ")
	text = spacesRe.ReplaceAllString(text, " ")
	return strings.TrimSpace(text)
}
