package stringutil

import (
	"regexp"
	"strings"
)

var nonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)

// Slugify lowercases name and joins its letter and digit runs with hyphens.
// Letters outside ASCII are kept, so Hangul site names stay readable.
func Slugify(name string) string {
	s := strings.ToLower(name)
	s = nonWord.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
