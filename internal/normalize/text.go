// Package normalize converts raw extracted filing text into canonical field
// values. Every function here is pure and never fails: input that cannot be
// parsed is reported as malformed rather than returned as an error.
package normalize

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var multiSpace = regexp.MustCompile(`\s+`)

// CleanText folds OCR output into a comparable form: NFKC normalization
// (ligatures, full-width digits, non-breaking spaces), control characters
// dropped, whitespace collapsed, and stray label punctuation trimmed.
func CleanText(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFKC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && !unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	s = multiSpace.ReplaceAllString(s, " ")
	return strings.Trim(s, " :;")
}

// cleanLines splits a block on line breaks and cleans each non-empty line.
func cleanLines(s string) []string {
	var out []string
	for _, line := range strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n") {
		if c := CleanText(line); c != "" {
			out = append(out, c)
		}
	}
	return out
}

func hasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}
