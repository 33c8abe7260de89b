// Package score computes per-field and aggregate confidence for a
// normalized lien record and maps the aggregate to a review tier.
package score

import "github.com/sells-group/lien-cli/internal/model"

// Role is a scored field role. Identity stands for the resolved debtor
// rather than the raw name slot.
type Role string

// Scored roles.
const (
	RoleAmount   Role = "amount"
	RoleIdentity Role = "identity"
	RoleDate     Role = "date"
	RoleStreet   Role = "street"
	RoleZip      Role = "zip"
	RoleCity     Role = "city"
	RoleState    Role = "state"
)

// Roles lists every scored role in table order.
var Roles = []Role{RoleAmount, RoleIdentity, RoleDate, RoleStreet, RoleZip, RoleCity, RoleState}

// slotFor maps a role to the normalized slot whose status drives it.
var slotFor = map[Role]model.Slot{
	RoleAmount:   model.SlotAmount,
	RoleIdentity: model.SlotDebtorName,
	RoleDate:     model.SlotDate,
	RoleStreet:   model.SlotStreet,
	RoleZip:      model.SlotZip,
	RoleCity:     model.SlotCity,
	RoleState:    model.SlotState,
}

// WeightTable is a versioned, fixed set of role weights. Weights sum to 1.
type WeightTable struct {
	Version string
	Weights map[Role]float64
}

// WeightsV1 weights amount and identity highest and the address lowest.
var WeightsV1 = WeightTable{
	Version: "v1",
	Weights: map[Role]float64{
		RoleAmount:   0.25,
		RoleIdentity: 0.25,
		RoleDate:     0.15,
		RoleStreet:   0.10,
		RoleZip:      0.10,
		RoleCity:     0.08,
		RoleState:    0.07,
	},
}

// Total returns the sum of all weights.
func (w WeightTable) Total() float64 {
	var total float64
	for _, r := range Roles {
		total += w.Weights[r]
	}
	return total
}
