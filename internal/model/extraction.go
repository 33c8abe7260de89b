// Package model defines the records that flow through the lien pipeline.
package model

// Slot names a logical raw field on a filing.
type Slot string

// Raw field slots supplied by the extraction collaborator.
const (
	SlotDate       Slot = "date"
	SlotAmount     Slot = "amount"
	SlotDebtorName Slot = "debtor_name"
	SlotStreet     Slot = "street"
	SlotCity       Slot = "city"
	SlotState      Slot = "state"
	SlotZip        Slot = "zip"
)

// AllSlots returns every raw field slot in canonical order.
func AllSlots() []Slot {
	return []Slot{
		SlotDate,
		SlotAmount,
		SlotDebtorName,
		SlotStreet,
		SlotCity,
		SlotState,
		SlotZip,
	}
}

// ParseSlot maps a column or JSON key to a Slot. Common aliases used by the
// text extractor (taxpayer_name, lien_date, zip_code) are accepted.
func ParseSlot(name string) (Slot, bool) {
	switch name {
	case "date", "lien_date", "filing_date":
		return SlotDate, true
	case "amount":
		return SlotAmount, true
	case "debtor_name", "taxpayer_name", "debtor":
		return SlotDebtorName, true
	case "street", "address":
		return SlotStreet, true
	case "city":
		return SlotCity, true
	case "state":
		return SlotState, true
	case "zip", "zip_code":
		return SlotZip, true
	default:
		return "", false
	}
}

// Hint is an explicit document signal supplied alongside the raw fields.
type Hint string

// HintBusinessTaxForm marks a filing that references a business tax form
// (for example Form 941, the employer's quarterly return).
const HintBusinessTaxForm Hint = "business_tax_form"

// RawExtraction is one raw filing observation from the extraction
// collaborator. It is consumed once and never modified.
type RawExtraction struct {
	SiteID    string          `json:"site_id"`
	RawFields map[Slot]string `json:"raw_fields"`
	SourceRef string          `json:"source_ref,omitempty"`
	Hints     []Hint          `json:"hints,omitempty"`
}

// Field returns the raw text for slot and whether the slot was supplied at all.
func (r RawExtraction) Field(slot Slot) (string, bool) {
	v, ok := r.RawFields[slot]
	return v, ok
}

// HasHint reports whether the extraction carries hint h.
func (r RawExtraction) HasHint(h Hint) bool {
	for _, x := range r.Hints {
		if x == h {
			return true
		}
	}
	return false
}
