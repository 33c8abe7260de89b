package normalize

import (
	"strings"

	"github.com/sells-group/lien-cli/internal/model"
)

// abbrToState maps lowercase USPS codes to lowercase full names.
var abbrToState = map[string]string{
	"al": "alabama", "ak": "alaska", "az": "arizona", "ar": "arkansas",
	"ca": "california", "co": "colorado", "ct": "connecticut", "de": "delaware",
	"fl": "florida", "ga": "georgia", "hi": "hawaii", "id": "idaho",
	"il": "illinois", "in": "indiana", "ia": "iowa", "ks": "kansas",
	"ky": "kentucky", "la": "louisiana", "me": "maine", "md": "maryland",
	"ma": "massachusetts", "mi": "michigan", "mn": "minnesota", "ms": "mississippi",
	"mo": "missouri", "mt": "montana", "ne": "nebraska", "nv": "nevada",
	"nh": "new hampshire", "nj": "new jersey", "nm": "new mexico", "ny": "new york",
	"nc": "north carolina", "nd": "north dakota", "oh": "ohio", "ok": "oklahoma",
	"or": "oregon", "pa": "pennsylvania", "ri": "rhode island", "sc": "south carolina",
	"sd": "south dakota", "tn": "tennessee", "tx": "texas", "ut": "utah",
	"vt": "vermont", "va": "virginia", "wa": "washington", "wv": "west virginia",
	"wi": "wisconsin", "wy": "wyoming", "dc": "district of columbia",
	"pr": "puerto rico", "gu": "guam", "vi": "virgin islands",
}

// stateToAbbr maps lowercase full names to lowercase codes.
var stateToAbbr = func() map[string]string {
	m := make(map[string]string, len(abbrToState))
	for abbr, full := range abbrToState {
		m[full] = abbr
	}
	return m
}()

// StateCode resolves a code ("tx", "T.X.") or full name ("Texas") to an
// upper-case USPS code.
func StateCode(s string) (string, bool) {
	lower := strings.ToLower(strings.ReplaceAll(CleanText(s), ".", ""))
	lower = strings.TrimSpace(lower)
	if lower == "" {
		return "", false
	}
	if _, ok := abbrToState[lower]; ok {
		return strings.ToUpper(lower), true
	}
	if abbr, ok := stateToAbbr[lower]; ok {
		return strings.ToUpper(abbr), true
	}
	return "", false
}

// State normalizes a state to its 2-letter code. An unknown value is passed
// through verbatim and flagged malformed.
func State(raw string) (string, model.FieldStatus) {
	s := CleanText(raw)
	if s == "" {
		return "", model.StatusAbsent
	}
	if code, ok := StateCode(s); ok {
		return code, model.StatusParsed
	}
	return s, model.StatusMalformed
}
