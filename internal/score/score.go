package score

import (
	"math"

	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/site"
)

// Per-field scores by status.
const (
	ParsedScore          = 1.0
	MalformedScore       = 0.3
	AbsentMandatoryScore = 0.0
	AbsentOptionalScore  = 0.5
)

// Tier thresholds. High is closed at 0.85, Medium is [0.70, 0.85).
const (
	HighThreshold   = 0.85
	MediumThreshold = 0.70
)

// aggregatePrecision rounds away float noise from the weighted sum so a
// record landing exactly on a threshold is tiered as written.
const aggregatePrecision = 1e6

// FieldScore scores a single field status.
func FieldScore(status model.FieldStatus, optional bool) float64 {
	switch status {
	case model.StatusParsed:
		return ParsedScore
	case model.StatusMalformed:
		return MalformedScore
	default:
		if optional {
			return AbsentOptionalScore
		}
		return AbsentMandatoryScore
	}
}

// IdentityStatus derives the debtor identity status from the normalized name
// and its classification. A business or a first/last split is parsed; a lone
// surname is malformed.
func IdentityStatus(nf model.NormalizedFields, c model.ClassificationResult) model.FieldStatus {
	switch nf.StatusOf(model.SlotDebtorName) {
	case model.StatusAbsent:
		return model.StatusAbsent
	case model.StatusMalformed:
		return model.StatusMalformed
	}
	switch {
	case c.Kind == model.KindBusiness && c.Company != "":
		return model.StatusParsed
	case c.FirstName != "" && c.LastName != "":
		return model.StatusParsed
	case c.LastName != "":
		return model.StatusMalformed
	default:
		return model.StatusAbsent
	}
}

// Score computes per-field and aggregate confidence with WeightsV1.
func Score(nf model.NormalizedFields, c model.ClassificationResult, p site.Policy) model.Confidence {
	return WeightsV1.Score(nf, c, p)
}

// Score computes per-field and aggregate confidence. It is total: any
// combination of statuses produces an aggregate in [0, 1]. A record with
// every slot absent scores 0 regardless of optional-field leniency.
func (w WeightTable) Score(nf model.NormalizedFields, c model.ClassificationResult, p site.Policy) model.Confidence {
	fields := make(map[string]float64, len(Roles))
	if allAbsent(nf) {
		for _, r := range Roles {
			fields[string(r)] = 0
		}
		return model.Confidence{Fields: fields, Tier: model.TierLow, Flags: Flags(nf, c)}
	}
	var sum float64
	for _, r := range Roles {
		var status model.FieldStatus
		if r == RoleIdentity {
			status = IdentityStatus(nf, c)
		} else {
			status = nf.StatusOf(slotFor[r])
		}
		s := FieldScore(status, p.IsOptional(slotFor[r]))
		fields[string(r)] = s
		sum += w.Weights[r] * s
	}

	var agg float64
	if total := w.Total(); total > 0 {
		agg = sum / total
	}
	agg = clamp(math.Round(agg*aggregatePrecision) / aggregatePrecision)

	return model.Confidence{
		Fields:    fields,
		Aggregate: agg,
		Tier:      TierFor(agg),
		Flags:     Flags(nf, c),
	}
}

// TierFor maps an aggregate score to a tier.
func TierFor(aggregate float64) model.Tier {
	switch {
	case aggregate >= HighThreshold:
		return model.TierHigh
	case aggregate >= MediumThreshold:
		return model.TierMedium
	default:
		return model.TierLow
	}
}

func allAbsent(nf model.NormalizedFields) bool {
	for _, slot := range model.AllSlots() {
		if nf.StatusOf(slot) != model.StatusAbsent {
			return false
		}
	}
	return true
}

func clamp(v float64) float64 {
	if v < 0 || math.IsNaN(v) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
