// Package classify decides whether a lien debtor is a business or an
// individual and splits the name accordingly.
package classify

import (
	"strings"

	"github.com/rotisserie/eris"
)

// MatchMode controls how business keywords are located in a name.
type MatchMode string

const (
	// MatchSubstring matches a keyword anywhere in the name.
	MatchSubstring MatchMode = "substring"
	// MatchWord matches a keyword only between non-alphanumeric boundaries,
	// so INC does not fire on VINCENT.
	MatchWord MatchMode = "word"
)

// ParseMatchMode validates a configured match mode. Empty means substring.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", MatchSubstring:
		return MatchSubstring, nil
	case MatchWord:
		return MatchWord, nil
	default:
		return "", eris.Errorf("classify: unknown match mode %q", s)
	}
}

// DefaultKeywords is the stock business keyword list.
var DefaultKeywords = []string{
	"INC", "LLC", "CORP", "CORPORATION", "LTD", "COMPANY",
	"ENTERPRISES", "SERVICES", "HOLDINGS", "PARTNERSHIP",
}

// KeywordSet is an immutable rule table: a set of upper-case keywords plus
// the mode used to match them.
type KeywordSet struct {
	words []string
	mode  MatchMode
}

// NewKeywordSet builds a set from words. A nil or empty list falls back to
// DefaultKeywords. Blank and repeated entries are dropped.
func NewKeywordSet(words []string, mode MatchMode) KeywordSet {
	if len(words) == 0 {
		words = DefaultKeywords
	}
	if mode == "" {
		mode = MatchSubstring
	}
	seen := make(map[string]bool, len(words))
	ks := KeywordSet{mode: mode}
	for _, w := range words {
		w = strings.ToUpper(strings.TrimSpace(w))
		if w == "" || seen[w] {
			continue
		}
		seen[w] = true
		ks.words = append(ks.words, w)
	}
	return ks
}

// Words returns the keywords in definition order.
func (k KeywordSet) Words() []string {
	return append([]string(nil), k.words...)
}

// Mode returns the match mode.
func (k KeywordSet) Mode() MatchMode { return k.mode }

// Match reports the first keyword found in name, case-insensitively.
func (k KeywordSet) Match(name string) (string, bool) {
	upper := strings.ToUpper(name)
	if upper == "" {
		return "", false
	}
	for _, w := range k.words {
		if k.mode == MatchWord {
			if containsWord(upper, w) {
				return w, true
			}
			continue
		}
		if strings.Contains(upper, w) {
			return w, true
		}
	}
	return "", false
}

// containsWord checks if text contains needle bounded by non-alphanumeric
// characters or string boundaries. Both must already share a case.
func containsWord(text, needle string) bool {
	start := 0
	for {
		idx := strings.Index(text[start:], needle)
		if idx < 0 {
			return false
		}
		absIdx := start + idx
		endIdx := absIdx + len(needle)

		leftOK := absIdx == 0 || !isAlphaNum(text[absIdx-1])
		rightOK := endIdx == len(text) || !isAlphaNum(text[endIdx])
		if leftOK && rightOK {
			return true
		}
		start = absIdx + 1
	}
}

func isAlphaNum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
