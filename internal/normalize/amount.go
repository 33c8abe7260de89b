package normalize

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/lien-cli/internal/model"
)

var (
	amountStrip   = strings.NewReplacer("$", "", ",", "", " ", "")
	amountNumeric = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// Amount strips currency symbols, thousands separators, and a whole-number
// ".00" suffix, returning the integer dollar amount as ASCII digits. Nonzero
// cents, and anything else left over after stripping, make the value
// malformed.
func Amount(raw string) (string, model.FieldStatus) {
	s := CleanText(raw)
	if s == "" {
		return "", model.StatusAbsent
	}

	s = amountStrip.Replace(s)
	if !amountNumeric.MatchString(s) {
		return "", model.StatusMalformed
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return "", model.StatusMalformed
	}
	if !d.Equal(d.Truncate(0)) {
		return "", model.StatusMalformed
	}
	return d.String(), model.StatusParsed
}

// AmountResidue returns raw with only whitespace, currency symbols, and
// thousands separators removed. Records whose amount is malformed are keyed
// on it so distinct unparsable filings do not collapse onto one key.
func AmountResidue(raw string) string {
	return amountStrip.Replace(CleanText(raw))
}
