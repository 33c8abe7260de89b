package normalize

import (
	"regexp"
	"strings"

	"github.com/sells-group/lien-cli/internal/model"
)

var (
	zipPattern = regexp.MustCompile(`^\d{5}(-\d{4})?$`)
	zipNine    = regexp.MustCompile(`^(\d{5})(\d{4})$`)
	zipTail    = regexp.MustCompile(`(?:^|[\s,])(\d{5}(?:-\d{4})?)$`)
)

// Address holds the components recovered from a raw address block.
type Address struct {
	Street string
	City   string
	State  string
	Zip    string
}

// SplitAddress breaks a single address block ("123 Main St, Dallas, TX 75201"
// or a street line followed by a "City, ST ZIP" line) into components. It
// reports false when the block carries neither a recognizable state nor a ZIP,
// in which case the caller keeps the block as the street. A single line with
// no comma is only split when it ends in a ZIP, and a ZIP without a known
// state needs a comma or line break ("PO Box 12345" stays a street).
func SplitAddress(block string) (Address, bool) {
	lines := cleanLines(block)
	if len(lines) == 0 {
		return Address{}, false
	}
	s := strings.Join(lines, ", ")
	separated := len(lines) > 1 || strings.Contains(lines[0], ",")

	var a Address
	if m := zipTail.FindStringSubmatchIndex(s); m != nil {
		a.Zip = s[m[2]:m[3]]
		s = s[:m[2]]
	}
	if a.Zip == "" && !separated {
		return Address{}, false
	}
	s = strings.TrimRight(s, " ,.")

	rest, state, found := splitState(s)
	if found {
		a.State = state
		s = rest
	} else if a.Zip != "" && separated {
		// A ZIP with an unrecognized state token: keep the token verbatim.
		if i := strings.LastIndexAny(s, " ,"); i >= 0 {
			a.State = strings.TrimSpace(s[i+1:])
			s = s[:i]
		} else {
			a.State, s = s, ""
		}
	}
	if !found && (a.Zip == "" || !separated) {
		return Address{}, false
	}

	s = strings.Trim(s, " ,")
	if i := strings.LastIndex(s, ","); i >= 0 {
		a.City = strings.TrimSpace(s[i+1:])
		a.Street = strings.Trim(s[:i], " ,")
	} else {
		a.Street = s
	}
	return a, true
}

// splitState removes a trailing state (code or full name, up to three words)
// from s.
func splitState(s string) (rest, code string, ok bool) {
	if i := strings.LastIndex(s, ","); i >= 0 {
		if c, found := StateCode(s[i+1:]); found {
			return s[:i], c, true
		}
	}
	words := strings.Fields(s)
	for n := 3; n >= 1; n-- {
		if len(words) < n {
			continue
		}
		candidate := strings.Join(words[len(words)-n:], " ")
		if c, found := StateCode(strings.TrimLeft(candidate, ",")); found {
			return strings.Join(words[:len(words)-n], " "), c, true
		}
	}
	return s, "", false
}

// Zip validates a 5-digit or ZIP+4 code. A bare nine-digit run is hyphenated.
func Zip(raw string) (string, model.FieldStatus) {
	s := strings.ReplaceAll(CleanText(raw), " ", "")
	if s == "" {
		return "", model.StatusAbsent
	}
	if m := zipNine.FindStringSubmatch(s); m != nil {
		s = m[1] + "-" + m[2]
	}
	if !zipPattern.MatchString(s) {
		return "", model.StatusMalformed
	}
	return s, model.StatusParsed
}

// Street cleans a street line.
func Street(raw string) (string, model.FieldStatus) {
	s := CleanText(raw)
	if s == "" {
		return "", model.StatusAbsent
	}
	return s, model.StatusParsed
}

// City cleans a city name. A value without letters is malformed.
func City(raw string) (string, model.FieldStatus) {
	s := strings.Trim(CleanText(raw), " ,")
	if s == "" {
		return "", model.StatusAbsent
	}
	if !hasLetter(s) {
		return "", model.StatusMalformed
	}
	return s, model.StatusParsed
}
