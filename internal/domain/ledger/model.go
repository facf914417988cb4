package ledger

import (
	"github.com/kopikita/roastery/internal/types"
	"github.com/shopspring/decimal"
)

// Transaction is one append-only entry in the billing audit trail. A positive
// amount is a charge to the tenant, a negative amount a credit owed to them.
// Entries are never updated or deleted; corrections append new entries.
type Transaction struct {
	ID             string `db:"id" json:"id"`
	SubscriptionID string `db:"subscription_id" json:"subscription_id"`

	// ReferenceID is the short human-facing reference printed on receipts
	ReferenceID string `db:"reference_id" json:"reference_id"`

	Amount   decimal.Decimal         `db:"amount" json:"amount"`
	Currency string                  `db:"currency" json:"currency"`
	Reason   types.TransactionReason `db:"reason" json:"reason"`

	// Metadata carries the calculation breakdown for audit purposes
	Metadata types.Metadata `db:"metadata" json:"metadata"`

	types.BaseModel
}
