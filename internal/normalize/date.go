package normalize

import (
	"regexp"
	"strconv"
	"time"

	"github.com/araddon/dateparse"

	"github.com/sells-group/lien-cli/internal/model"
)

// DateLayout is the canonical output format.
const DateLayout = "01/02/2006"

// twoDigitYearPivot splits two-digit years: >= pivot is 19xx, below is 20xx.
const twoDigitYearPivot = 50

var (
	numericDate = regexp.MustCompile(`^(\d{1,2})[/-](\d{1,2})[/-](\d{2}|\d{4})$`)
	isoDate     = regexp.MustCompile(`^\d{4}-\d{1,2}-\d{1,2}`)
	hasLetterRe = regexp.MustCompile(`[A-Za-z]`)
)

// Date normalizes a filing date to MM/DD/YYYY. Numeric month-first dates are
// handled directly so two-digit years follow the filing pivot; textual month
// and ISO forms go through dateparse. Other all-numeric strings, such as
// instrument numbers or bare years, are malformed.
func Date(raw string) (string, model.FieldStatus) {
	s := CleanText(raw)
	if s == "" {
		return "", model.StatusAbsent
	}

	if m := numericDate.FindStringSubmatch(s); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		year, _ := strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			if year >= twoDigitYearPivot {
				year += 1900
			} else {
				year += 2000
			}
		}
		t, ok := validDate(year, month, day)
		if !ok {
			return "", model.StatusMalformed
		}
		return t.Format(DateLayout), model.StatusParsed
	}

	if !hasLetterRe.MatchString(s) && !isoDate.MatchString(s) {
		return "", model.StatusMalformed
	}

	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return "", model.StatusMalformed
	}
	if t.Year() < 1900 || t.Year() > 2100 {
		return "", model.StatusMalformed
	}
	return t.Format(DateLayout), model.StatusParsed
}

// validDate rejects overflowed dates like 02/30 that time.Date would roll over.
func validDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Day() != day || int(t.Month()) != month {
		return time.Time{}, false
	}
	return t, true
}
