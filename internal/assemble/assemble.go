// Package assemble builds the terminal 14-column lien record.
package assemble

import (
	"github.com/sells-group/lien-cli/internal/dedupe"
	"github.com/sells-group/lien-cli/internal/model"
	"github.com/sells-group/lien-cli/internal/normalize"
	"github.com/sells-group/lien-cli/internal/site"
)

// Record combines normalized fields, the debtor classification, and the
// confidence score into a LienRecord, applying the site's liability type and
// the fixed lead constants.
func Record(raw model.RawExtraction, nf model.NormalizedFields, c model.ClassificationResult, conf model.Confidence, p site.Policy) model.LienRecord {
	r := model.LienRecord{
		SiteID:            raw.SiteID,
		LienOrReceiveDate: nf.Date,
		Amount:            nf.Amount,
		LeadType:          model.LeadTypeLien,
		LeadSource:        model.LeadSourceDefault,
		LiabilityType:     p.LiabilityType(),
		BusinessPersonal:  c.Kind,
		Street:            nf.Street,
		City:              nf.City,
		State:             nf.State,
		Zip:               nf.Zip,
		Confidence:        conf,
		DedupeKey:         dedupe.RecordKey(raw.SiteID, keyAmount(raw, nf), c),
		SourceRef:         raw.SourceRef,
	}
	if c.Kind == model.KindBusiness {
		r.Company = c.Company
	} else {
		r.FirstName = c.FirstName
		r.LastName = c.LastName
	}
	return r
}

// keyAmount is the amount part of the dedupe key: the normalized amount, or
// the stripped raw text when the amount is malformed.
func keyAmount(raw model.RawExtraction, nf model.NormalizedFields) string {
	if nf.StatusOf(model.SlotAmount) != model.StatusMalformed {
		return nf.Amount
	}
	v, _ := raw.Field(model.SlotAmount)
	return normalize.AmountResidue(v)
}
