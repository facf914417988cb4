package plan

import (
	"github.com/kopikita/roastery/internal/types"
	"github.com/shopspring/decimal"
)

// Plan is the immutable reference data for a subscription tier. Prices are in
// whole IDR units; IDR carries no fractional subunit in practice, so the
// decimal type is used for arithmetic precision rather than cents handling.
type Plan struct {
	ID          string `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	LookupKey   string `db:"lookup_key" json:"lookup_key"`
	Description string `db:"description" json:"description"`

	// Price is the fixed price for one billing interval
	Price decimal.Decimal `db:"price" json:"price"`

	// Currency is the 3 letter ISO code, uppercase
	Currency string `db:"currency" json:"currency"`

	// Interval is the nominal length of one billing period
	Interval types.BillingInterval `db:"interval" json:"interval"`

	types.BaseModel
}

// Validate checks the plan invariants before persistence
func (p *Plan) Validate() error {
	if err := p.Interval.Validate(); err != nil {
		return err
	}
	return nil
}
