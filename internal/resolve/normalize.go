package resolve

import (
	"regexp"
	"strings"
)

// annotation matches a parenthesised or bracketed aside such as
// "(feat. X)" or "[Deluxe Edition]" with its surrounding whitespace.
var annotation = regexp.MustCompile(`\s*[\(\[][^\)\]]*[\)\]]\s*`)

// Normalize strips annotations from a title or artist name and collapses
// whitespace. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	s = annotation.ReplaceAllString(s, " ")
	return strings.Join(strings.Fields(s), " ")
}
