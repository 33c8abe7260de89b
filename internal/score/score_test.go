package score

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/site"
)

var (
	documentSite = site.Config{ID: "10", Liability: "IRS", DateFrom: site.DateFromDocument}
	listingSite  = site.Config{ID: "12", Liability: "IRS", DateFrom: site.DateFromSearchResult}
	person       = model.ClassificationResult{Kind: model.KindPersonal, FirstName: "Emmanuel", LastName: "Pacquiao"}
)

func fieldsWith(status map[model.Slot]model.FieldStatus, amount string) model.NormalizedFields {
	return model.NormalizedFields{Amount: amount, Status: status}
}

func allParsed() map[model.Slot]model.FieldStatus {
	m := make(map[model.Slot]model.FieldStatus)
	for _, s := range model.AllSlots() {
		m[s] = model.StatusParsed
	}
	return m
}

func TestFieldScore(t *testing.T) {
	assert.Equal(t, 1.0, FieldScore(model.StatusParsed, false))
	assert.Equal(t, 0.3, FieldScore(model.StatusMalformed, false))
	assert.Equal(t, 0.3, FieldScore(model.StatusMalformed, true))
	assert.Equal(t, 0.0, FieldScore(model.StatusAbsent, false))
	assert.Equal(t, 0.5, FieldScore(model.StatusAbsent, true))
}

func TestWeightsV1_SumToOne(t *testing.T) {
	assert.InDelta(t, 1.0, WeightsV1.Total(), 1e-9)
	assert.Equal(t, "v1", WeightsV1.Version)
	assert.Greater(t, WeightsV1.Weights[RoleAmount], WeightsV1.Weights[RoleStreet])
	assert.Greater(t, WeightsV1.Weights[RoleIdentity], WeightsV1.Weights[RoleCity])
}

func TestTierFor_Boundaries(t *testing.T) {
	tests := []struct {
		agg  float64
		want model.Tier
	}{
		{1.0, model.TierHigh},
		{0.85, model.TierHigh},
		{0.849999, model.TierMedium},
		{0.70, model.TierMedium},
		{0.699999, model.TierLow},
		{0.0, model.TierLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TierFor(tt.agg), "aggregate %v", tt.agg)
	}
}

func TestScore_AllParsed(t *testing.T) {
	got := Score(fieldsWith(allParsed(), "18313668"), person, documentSite)
	assert.Equal(t, 1.0, got.Aggregate)
	assert.Equal(t, model.TierHigh, got.Tier)
	assert.Empty(t, got.Flags)
	for _, r := range Roles {
		assert.Equal(t, 1.0, got.Fields[string(r)], "role %s", r)
	}
}

func TestScore_MissingDateBySitePolicy(t *testing.T) {
	status := allParsed()
	status[model.SlotDate] = model.StatusAbsent
	nf := fieldsWith(status, "18313668")

	// Listing sites report the date outside the document.
	listing := Score(nf, person, listingSite)
	assert.Equal(t, 0.925, listing.Aggregate)
	assert.Equal(t, model.TierHigh, listing.Tier)
	assert.Equal(t, 0.5, listing.Fields[string(RoleDate)])

	// Document sites treat it as mandatory; the rest sums to exactly 0.85.
	doc := Score(nf, person, documentSite)
	assert.Equal(t, 0.85, doc.Aggregate)
	assert.Equal(t, model.TierHigh, doc.Tier)
	assert.Contains(t, doc.Flags, FlagMissingDate)
}

func TestScore_MissingMandatoryForcesLow(t *testing.T) {
	status := allParsed()
	status[model.SlotAmount] = model.StatusAbsent
	status[model.SlotDebtorName] = model.StatusAbsent
	got := Score(fieldsWith(status, ""), model.ClassificationResult{Kind: model.KindPersonal}, documentSite)
	assert.Equal(t, 0.5, got.Aggregate)
	assert.Equal(t, model.TierLow, got.Tier)
	assert.Contains(t, got.Flags, FlagMissingAmount)
	assert.Contains(t, got.Flags, FlagMissingDebtor)
}

func TestScore_AllAbsentIsZero(t *testing.T) {
	got := Score(model.NormalizedFields{}, model.ClassificationResult{Kind: model.KindPersonal}, listingSite)
	assert.Equal(t, 0.0, got.Aggregate)
	assert.Equal(t, model.TierLow, got.Tier)
}

func TestScore_Bounded(t *testing.T) {
	statuses := []model.FieldStatus{model.StatusParsed, model.StatusAbsent, model.StatusMalformed}
	slots := model.AllSlots()
	classifications := []model.ClassificationResult{
		person,
		{Kind: model.KindPersonal, LastName: "Cher"},
		{Kind: model.KindBusiness, Company: "ACME Corp"},
		{Kind: model.KindPersonal},
	}

	combos := 1
	for range slots {
		combos *= len(statuses)
	}
	for i := range combos {
		status := make(map[model.Slot]model.FieldStatus, len(slots))
		n := i
		for _, s := range slots {
			status[s] = statuses[n%len(statuses)]
			n /= len(statuses)
		}
		for _, c := range classifications {
			for _, p := range []site.Config{documentSite, listingSite} {
				got := Score(fieldsWith(status, "5000"), c, p)
				assert.GreaterOrEqual(t, got.Aggregate, 0.0)
				assert.LessOrEqual(t, got.Aggregate, 1.0)
				assert.Equal(t, TierFor(got.Aggregate), got.Tier)
			}
		}
	}
}

func TestIdentityStatus(t *testing.T) {
	parsed := fieldsWith(allParsed(), "")
	assert.Equal(t, model.StatusParsed, IdentityStatus(parsed, person))
	assert.Equal(t, model.StatusParsed, IdentityStatus(parsed, model.ClassificationResult{Kind: model.KindBusiness, Company: "ACME"}))
	assert.Equal(t, model.StatusMalformed, IdentityStatus(parsed, model.ClassificationResult{Kind: model.KindPersonal, LastName: "Cher"}))

	status := allParsed()
	status[model.SlotDebtorName] = model.StatusMalformed
	assert.Equal(t, model.StatusMalformed, IdentityStatus(fieldsWith(status, ""), person))

	status[model.SlotDebtorName] = model.StatusAbsent
	assert.Equal(t, model.StatusAbsent, IdentityStatus(fieldsWith(status, ""), model.ClassificationResult{Kind: model.KindPersonal}))
}

func TestFlags(t *testing.T) {
	status := allParsed()
	status[model.SlotState] = model.StatusMalformed

	low := Flags(fieldsWith(status, "999"), person)
	assert.Equal(t, []string{FlagAmountLow, "malformed_state"}, low)

	high := Flags(fieldsWith(allParsed(), "100000001"), model.ClassificationResult{Kind: model.KindPersonal, LastName: "Cher"})
	assert.Equal(t, []string{FlagAmountHigh, FlagSingleNameOnly}, high)

	assert.Empty(t, Flags(fieldsWith(allParsed(), "1000"), person))
	assert.Empty(t, Flags(fieldsWith(allParsed(), "100000000"), person))
}

func TestNeedsReview(t *testing.T) {
	assert.False(t, NeedsReview(model.TierHigh))
	assert.True(t, NeedsReview(model.TierMedium))
	assert.True(t, NeedsReview(model.TierLow))
}
