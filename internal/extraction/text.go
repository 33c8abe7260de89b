package extraction

import (
	"regexp"
	"strings"

	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/normalize"
)

// Label values end at a run of two or more blanks, which is how
// pdftotext -layout separates columns on one line.
const labelValue = `[ \t]*[:\-]?[ \t]*(\S.*?)(?:[ \t]{2,}|$)`

var (
	amountPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bLIEN[ \t]+AMOUNT[ \t]*[:\-]?[ \t]*\$?[ \t]*(\d[\d,]*(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?i)\bTOTAL\b[ \t]*[:\-]?[ \t]*\$?[ \t]*(\d[\d,]*(?:\.\d{1,2})?)`),
		regexp.MustCompile(`(?i)\bAMOUNT\b[ \t]*[:\-]?[ \t]*\$?[ \t]*(\d[\d,]*(?:\.\d{1,2})?)`),
		regexp.MustCompile(`\$?(\d[\d,]*\.\d{2})\b`),
	}
	namePatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)^NAME[ \t]+OF[ \t]+TAXPAYER` + labelValue),
		regexp.MustCompile(`(?i)^(?:TAXPAYER|DEBTOR)(?:[ \t]+NAME)?[ \t]*[:\-][ \t]*(\S.*?)(?:[ \t]{2,}|$)`),
	}
	addressLabel  = regexp.MustCompile(`(?i)^(?:RESIDENCE|ADDRESS)` + labelValue)
	streetPattern = regexp.MustCompile(`(?i)\b(\d+[ \t]+[\w \t]+?\b(?:Street|St|Avenue|Ave|Road|Rd|Boulevard|Blvd|Drive|Dr|Lane|Ln|Way|Court|Ct|Plaza|Plz|Suite|Ste|Floor|Fl)\b\.?(?:[ \t]+(?:Suite|Ste|Floor|Fl|Unit|Apt|#)[ \t]*\w+)?)`)
	cityStateZip  = regexp.MustCompile(`^([A-Za-z][A-Za-z .'\-]*?),?[ \t]+([A-Z]{2})[ \t]+(\d{5}(?:-\d{4})?)$`)
	datePatterns  = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bDATE[ \t]+OF[ \t]+LIEN[ \t]*[:\-]?[ \t]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)\bLIEN[ \t]+DATE[ \t]*[:\-]?[ \t]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?i)\b(?:FILED|RECORDED)(?:[ \t]+ON)?[ \t]*[:\-]?[ \t]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
		regexp.MustCompile(`(?im)^[ \t]*DATE[ \t]*:[ \t]*(\d{1,2}[/-]\d{1,2}[/-]\d{2,4})`),
	}
	form941 = regexp.MustCompile(`(?i)\bFORM[ \t]+941\b|(?:^|[ \t])941(?:[ \t]|$)`)
)

// FromText derives raw slots from the text of one filing document. Slots
// that no pattern finds are left absent. A Form 941 reference adds the
// business tax form hint.
func FromText(siteID, sourceRef, text string) model.RawExtraction {
	raw := model.RawExtraction{
		SiteID:    siteID,
		SourceRef: sourceRef,
		RawFields: make(map[model.Slot]string),
	}

	var lines []string
	for _, l := range strings.Split(strings.ReplaceAll(text, "\r", ""), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}

	if v := firstLineMatch(lines, namePatterns...); v != "" {
		raw.RawFields[model.SlotDebtorName] = v
	}
	if v := firstMatch(text, amountPatterns...); v != "" {
		raw.RawFields[model.SlotAmount] = v
	}
	if v := firstMatch(text, datePatterns...); v != "" {
		raw.RawFields[model.SlotDate] = v
	}

	addrLine := -1
	for i, l := range lines {
		if m := addressLabel.FindStringSubmatch(l); m != nil {
			raw.RawFields[model.SlotStreet] = strings.TrimSpace(m[1])
			addrLine = i
			break
		}
	}
	if addrLine < 0 {
		for i, l := range lines {
			if m := streetPattern.FindStringSubmatch(l); m != nil {
				raw.RawFields[model.SlotStreet] = strings.TrimSpace(m[1])
				addrLine = i
				break
			}
		}
	}

	// A locality on the address line itself is left for the normalizer to
	// split out of the street block.
	for i, l := range lines {
		if i == addrLine {
			continue
		}
		m := cityStateZip.FindStringSubmatch(l)
		if m == nil {
			continue
		}
		if _, ok := normalize.StateCode(m[2]); !ok {
			continue
		}
		raw.RawFields[model.SlotCity] = strings.TrimSpace(m[1])
		raw.RawFields[model.SlotState] = m[2]
		raw.RawFields[model.SlotZip] = m[3]
		break
	}

	for _, l := range lines {
		if form941.MatchString(l) {
			raw.Hints = append(raw.Hints, model.HintBusinessTaxForm)
			break
		}
	}
	return raw
}

func firstMatch(text string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			return strings.TrimSpace(m[1])
		}
	}
	return ""
}

func firstLineMatch(lines []string, patterns ...*regexp.Regexp) string {
	for _, re := range patterns {
		for _, l := range lines {
			if m := re.FindStringSubmatch(l); m != nil {
				return strings.TrimSpace(m[1])
			}
		}
	}
	return ""
}
