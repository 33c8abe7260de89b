package assemble

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/site"
)

func TestRecord_Personal(t *testing.T) {
	raw := model.RawExtraction{SiteID: "12", SourceRef: "doc-1"}
	nf := model.NormalizedFields{
		Date: "02/15/2024", Amount: "18313668",
		Street: "123 Main St", City: "Dallas", State: "TX", Zip: "75201",
	}
	c := model.ClassificationResult{Kind: model.KindPersonal, FirstName: "Emmanuel", LastName: "Pacquiao"}
	conf := model.Confidence{Aggregate: 1, Tier: model.TierHigh}
	p := site.Config{ID: "12", Liability: "IRS", DateFrom: site.DateFromSearchResult}

	r := Record(raw, nf, c, conf, p)

	assert.Equal(t, []string{
		"12", "02/15/2024", "18313668", "Lien", "777", "IRS", "Personal",
		"", "Emmanuel", "Pacquiao", "123 Main St", "Dallas", "TX", "75201",
	}, r.Row())
	assert.Equal(t, "12_18313668_PACQUIAO", r.DedupeKey)
	assert.Equal(t, "doc-1", r.SourceRef)
	assert.Equal(t, model.TierHigh, r.Confidence.Tier)
	assert.Len(t, r.Row(), len(model.Columns))
}

func TestRecord_Business(t *testing.T) {
	raw := model.RawExtraction{SiteID: "10"}
	nf := model.NormalizedFields{Amount: "5000"}
	// Stray person fields on a business result must not leak into the row.
	c := model.ClassificationResult{Kind: model.KindBusiness, Company: "ACME Corp", LastName: "ignored"}
	p := site.Config{ID: "10", Liability: "State", DateFrom: site.DateFromDocument}

	r := Record(raw, nf, c, model.Confidence{}, p)

	assert.Equal(t, model.KindBusiness, r.BusinessPersonal)
	assert.Equal(t, "ACME Corp", r.Company)
	assert.Empty(t, r.FirstName)
	assert.Empty(t, r.LastName)
	assert.Equal(t, "State", r.LiabilityType)
	assert.Equal(t, "10_5000_ACME CORP", r.DedupeKey)
}

func TestRecord_MalformedAmountKeysOnRawText(t *testing.T) {
	raw := model.RawExtraction{SiteID: "12", RawFields: map[model.Slot]string{model.SlotAmount: "$1,234.10"}}
	nf := model.NormalizedFields{Status: map[model.Slot]model.FieldStatus{model.SlotAmount: model.StatusMalformed}}
	c := model.ClassificationResult{Kind: model.KindPersonal, FirstName: "Jane", LastName: "Roe"}
	p := site.Config{ID: "12", Liability: "IRS", DateFrom: site.DateFromSearchResult}

	r := Record(raw, nf, c, model.Confidence{}, p)

	assert.Empty(t, r.Amount)
	assert.Equal(t, "12_1234.10_ROE", r.DedupeKey)
}
