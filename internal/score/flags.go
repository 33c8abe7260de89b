package score

import (
	"github.com/shopspring/decimal"

	"github.com/sells-group/lien-cli/internal/model"
)

// Review flags attached to a record for a human reviewer. They never change
// the aggregate score.
const (
	FlagAmountLow      = "amount_below_1000"
	FlagAmountHigh     = "amount_above_100m"
	FlagMissingDate    = "missing_date"
	FlagMissingAmount  = "missing_amount"
	FlagMissingDebtor  = "missing_debtor"
	FlagSingleNameOnly = "single_name_only"
	flagMalformedPfx   = "malformed_"
)

var (
	amountLow  = decimal.NewFromInt(1_000)
	amountHigh = decimal.NewFromInt(100_000_000)
)

// Flags lists the review flags for a record in a stable order.
func Flags(nf model.NormalizedFields, c model.ClassificationResult) []string {
	var flags []string

	if nf.StatusOf(model.SlotAmount) == model.StatusAbsent {
		flags = append(flags, FlagMissingAmount)
	} else if nf.Amount != "" {
		if d, err := decimal.NewFromString(nf.Amount); err == nil {
			if d.LessThan(amountLow) {
				flags = append(flags, FlagAmountLow)
			}
			if d.GreaterThan(amountHigh) {
				flags = append(flags, FlagAmountHigh)
			}
		}
	}
	if nf.StatusOf(model.SlotDate) == model.StatusAbsent {
		flags = append(flags, FlagMissingDate)
	}
	if nf.StatusOf(model.SlotDebtorName) == model.StatusAbsent {
		flags = append(flags, FlagMissingDebtor)
	} else if c.Kind == model.KindPersonal && c.FirstName == "" && c.LastName != "" {
		flags = append(flags, FlagSingleNameOnly)
	}

	for _, slot := range model.AllSlots() {
		if nf.StatusOf(slot) == model.StatusMalformed {
			flags = append(flags, flagMalformedPfx+string(slot))
		}
	}
	return flags
}

// NeedsReview reports whether a tier is routed to manual review.
func NeedsReview(t model.Tier) bool {
	return t != model.TierHigh
}
