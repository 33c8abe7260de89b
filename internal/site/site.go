// Package site resolves per-jurisdiction policy for the lien pipeline.
package site

import (
	"fmt"
	"slices"

	"github.com/sells-group/lien-cli/internal/model"
)

// DateSource says where a site's filing date comes from.
type DateSource string

const (
	// DateFromDocument means the date is printed on the filing itself, so a
	// missing date is a missing mandatory field.
	DateFromDocument DateSource = "document"
	// DateFromSearchResult means the date is taken from the search result
	// listing; the document text often lacks it, so the date slot is optional.
	DateFromSearchResult DateSource = "search_result"
)

// Valid reports whether d is a known date source.
func (d DateSource) Valid() bool {
	return d == DateFromDocument || d == DateFromSearchResult
}

// Policy is the shared behavior every site variant exposes to the pipeline.
type Policy interface {
	LiabilityType() string
	DateSource() DateSource
	IsOptional(slot model.Slot) bool
	Keywords() []string
}

// defaultOptional lists slots that sources are known not to always report.
var defaultOptional = []model.Slot{model.SlotStreet, model.SlotCity, model.SlotZip}

// Config is the static configuration of one source jurisdiction.
type Config struct {
	ID               string       `yaml:"id" json:"id"`
	Key              string       `yaml:"key" json:"key"`
	Name             string       `yaml:"name" json:"name"`
	Liability        string       `yaml:"liability_type" json:"liability_type"`
	DateFrom         DateSource   `yaml:"date_source" json:"date_source"`
	BusinessKeywords []string     `yaml:"business_keywords,omitempty" json:"business_keywords,omitempty"`
	OptionalFields   []model.Slot `yaml:"optional_fields,omitempty" json:"optional_fields,omitempty"`
	Disabled         bool         `yaml:"disabled,omitempty" json:"disabled,omitempty"`
}

// LiabilityType implements Policy.
func (c Config) LiabilityType() string { return c.Liability }

// DateSource implements Policy.
func (c Config) DateSource() DateSource { return c.DateFrom }

// Keywords implements Policy. Nil means the classifier default set.
func (c Config) Keywords() []string { return c.BusinessKeywords }

// IsOptional reports whether an absent slot should be scored leniently.
// Amount and debtor identity are always mandatory.
func (c Config) IsOptional(slot model.Slot) bool {
	switch slot {
	case model.SlotAmount, model.SlotDebtorName:
		return false
	case model.SlotDate:
		if c.DateFrom == DateFromSearchResult {
			return true
		}
	}
	optional := c.OptionalFields
	if optional == nil {
		optional = defaultOptional
	}
	return slices.Contains(optional, slot)
}

func (c Config) validate() error {
	if c.ID == "" {
		return &ConfigError{Reason: "site id is empty"}
	}
	if c.Liability == "" {
		return &ConfigError{SiteID: c.ID, Reason: "liability_type is required"}
	}
	if !c.DateFrom.Valid() {
		return &ConfigError{SiteID: c.ID, Reason: fmt.Sprintf("unknown date_source %q", c.DateFrom)}
	}
	for _, s := range c.OptionalFields {
		if _, ok := model.ParseSlot(string(s)); !ok {
			return &ConfigError{SiteID: c.ID, Reason: fmt.Sprintf("unknown optional field %q", s)}
		}
		if s == model.SlotAmount || s == model.SlotDebtorName {
			return &ConfigError{SiteID: c.ID, Reason: fmt.Sprintf("%s cannot be optional", s)}
		}
	}
	return nil
}

// ConfigError is a fatal configuration problem surfaced before any
// extraction is processed.
type ConfigError struct {
	SiteID string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.SiteID == "" {
		return "site config: " + e.Reason
	}
	return fmt.Sprintf("site config %q: %s", e.SiteID, e.Reason)
}

// Defaults returns the built-in site table.
func Defaults() []Config {
	return []Config{
		{ID: "12", Key: "nyc_acris", Name: "NYC ACRIS", Liability: "IRS", DateFrom: DateFromSearchResult},
		{ID: "10", Key: "cook_county", Name: "Cook County Recorder", Liability: "IRS", DateFrom: DateFromDocument},
		{ID: "20", Key: "ca_sos", Name: "California SOS UCC", Liability: "IRS", DateFrom: DateFromSearchResult},
	}
}
