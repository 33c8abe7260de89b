package model

// FieldStatus reports the outcome of normalizing one slot.
type FieldStatus string

// Field status values.
const (
	StatusParsed    FieldStatus = "parsed"
	StatusAbsent    FieldStatus = "absent"
	StatusMalformed FieldStatus = "malformed"
)

// NormalizedFields holds typed, canonical values derived from a RawExtraction.
// Empty strings mean absent or malformed; Status tells which.
type NormalizedFields struct {
	Date   string               `json:"date,omitempty"`
	Amount string               `json:"amount,omitempty"`
	Debtor string               `json:"debtor,omitempty"`
	Street string               `json:"street,omitempty"`
	City   string               `json:"city,omitempty"`
	State  string               `json:"state,omitempty"`
	Zip    string               `json:"zip,omitempty"`
	Status map[Slot]FieldStatus `json:"field_status"`
}

// StatusOf returns the status recorded for slot, defaulting to absent.
func (n NormalizedFields) StatusOf(slot Slot) FieldStatus {
	if s, ok := n.Status[slot]; ok {
		return s
	}
	return StatusAbsent
}

// EntityKind distinguishes business debtors from individuals.
type EntityKind string

// Entity kinds.
const (
	KindBusiness EntityKind = "Business"
	KindPersonal EntityKind = "Personal"
)

// ClassificationResult is the resolved debtor identity. Company is set only
// for businesses; FirstName and LastName only for individuals.
type ClassificationResult struct {
	Kind      EntityKind `json:"kind"`
	Company   string     `json:"company,omitempty"`
	FirstName string     `json:"first_name,omitempty"`
	LastName  string     `json:"last_name,omitempty"`
	// MatchedKeyword is the business keyword or hint that decided Business.
	MatchedKeyword string `json:"matched_keyword,omitempty"`
}

// NameKey returns the company for businesses and the last name otherwise.
func (c ClassificationResult) NameKey() string {
	if c.Kind == KindBusiness {
		return c.Company
	}
	return c.LastName
}

// Tier is a coarse confidence bucket used to route records to review.
type Tier string

// Confidence tiers.
const (
	TierHigh   Tier = "High"
	TierMedium Tier = "Medium"
	TierLow    Tier = "Low"
)

// Confidence is the scored reliability of a record.
type Confidence struct {
	Fields    map[string]float64 `json:"fields"`
	Aggregate float64            `json:"aggregate"`
	Tier      Tier               `json:"tier"`
	Flags     []string           `json:"flags,omitempty"`
}

// Canonical column constants.
const (
	LeadTypeLien      = "Lien"
	LeadSourceDefault = "777"
)

// LienRecord is the terminal output row. It is built once by the assembler
// and never modified afterwards.
type LienRecord struct {
	SiteID            string     `json:"site_id"`
	LienOrReceiveDate string     `json:"lien_or_receive_date"`
	Amount            string     `json:"amount"`
	LeadType          string     `json:"lead_type"`
	LeadSource        string     `json:"lead_source"`
	LiabilityType     string     `json:"liability_type"`
	BusinessPersonal  EntityKind `json:"business_personal"`
	Company           string     `json:"company"`
	FirstName         string     `json:"first_name"`
	LastName          string     `json:"last_name"`
	Street            string     `json:"street"`
	City              string     `json:"city"`
	State             string     `json:"state"`
	Zip               string     `json:"zip"`

	Confidence Confidence `json:"confidence"`
	DedupeKey  string     `json:"dedupe_key"`
	SourceRef  string     `json:"source_ref,omitempty"`
}

// Columns is the canonical 14-column output header.
var Columns = []string{
	"SiteId", "LienOrReceiveDate", "Amount", "LeadType", "LeadSource",
	"LiabilityType", "BusinessPersonal", "Company", "FirstName", "LastName",
	"Street", "City", "State", "Zip",
}

// Row renders the record in Columns order.
func (r LienRecord) Row() []string {
	return []string{
		r.SiteID,
		r.LienOrReceiveDate,
		r.Amount,
		r.LeadType,
		r.LeadSource,
		r.LiabilityType,
		string(r.BusinessPersonal),
		r.Company,
		r.FirstName,
		r.LastName,
		r.Street,
		r.City,
		r.State,
		r.Zip,
	}
}
