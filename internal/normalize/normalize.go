package normalize

import (
	"strings"

	"github.com/sells-group/lien-cli/internal/model"
)

// Extraction normalizes every slot of raw. It never fails: each slot ends up
// parsed, absent, or malformed in the returned status map.
func Extraction(raw model.RawExtraction) model.NormalizedFields {
	out := model.NormalizedFields{Status: make(map[model.Slot]model.FieldStatus, len(model.AllSlots()))}

	set := func(slot model.Slot, dst *string, value string, status model.FieldStatus) {
		*dst = value
		out.Status[slot] = status
	}

	v, _ := raw.Field(model.SlotDate)
	val, st := Date(v)
	set(model.SlotDate, &out.Date, val, st)

	v, _ = raw.Field(model.SlotAmount)
	val, st = Amount(v)
	set(model.SlotAmount, &out.Amount, val, st)

	v, _ = raw.Field(model.SlotDebtorName)
	val, st = DebtorName(v)
	set(model.SlotDebtorName, &out.Debtor, val, st)

	street, _ := raw.Field(model.SlotStreet)
	city, _ := raw.Field(model.SlotCity)
	state, _ := raw.Field(model.SlotState)
	zip, _ := raw.Field(model.SlotZip)

	// Only split the street block when nothing else was extracted for the
	// locality; independently extracted components always win.
	if CleanText(city) == "" && CleanText(state) == "" && CleanText(zip) == "" {
		if a, ok := SplitAddress(street); ok {
			street, city, state, zip = a.Street, a.City, a.State, a.Zip
		}
	}

	val, st = Street(street)
	set(model.SlotStreet, &out.Street, val, st)
	val, st = City(city)
	set(model.SlotCity, &out.City, val, st)
	val, st = State(state)
	set(model.SlotState, &out.State, val, st)
	val, st = Zip(zip)
	set(model.SlotZip, &out.Zip, val, st)

	return out
}

// DebtorName cleans a debtor name. A name without any letters (OCR noise,
// a stray number) is malformed.
func DebtorName(raw string) (string, model.FieldStatus) {
	s := strings.Trim(CleanText(raw), " ,")
	if s == "" {
		return "", model.StatusAbsent
	}
	if !hasLetter(s) {
		return "", model.StatusMalformed
	}
	return s, model.StatusParsed
}
