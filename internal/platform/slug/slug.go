package slug

import (
	"regexp"
	"strings"
)

var nonAlphaNum = regexp.MustCompile(`[^a-z0-9]+`)

// Make lowercases input and collapses everything else into single dashes.
func Make(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = nonAlphaNum.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if s == "" {
		return "untitled"
	}
	return s
}

// WikiLink renders [[slug|label]], or [[slug]] when the label adds nothing.
func WikiLink(label string) string {
	s := Make(label)
	if s == label {
		return "[[" + s + "]]"
	}
	return "[[" + s + "|" + label + "]]"
}
