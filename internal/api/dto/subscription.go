package dto

import (
	"time"

	"github.com/kopikita/roastery/internal/domain/ledger"
	"github.com/kopikita/roastery/internal/domain/proration"
	"github.com/kopikita/roastery/internal/domain/subscription"
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
	"github.com/kopikita/roastery/internal/validator"
	"github.com/shopspring/decimal"
)

type CreateSubscriptionRequest struct {
	PlanID string `json:"plan_id" validate:"required"`

	// StartDate defaults to now when omitted
	StartDate *time.Time `json:"start_date,omitempty"`

	// TrialDays starts the subscription in trialing status when positive
	TrialDays int `json:"trial_days" validate:"gte=0"`
}

func (r *CreateSubscriptionRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.validateStartDate()
}

type SubscriptionResponse struct {
	*subscription.Subscription
}

type ListSubscriptionsResponse struct {
	Items  []*SubscriptionResponse `json:"items"`
	Limit  int                     `json:"limit"`
	Offset int                     `json:"offset"`
}

type PlanChangeRequest struct {
	TargetPlanID string              `json:"target_plan_id" validate:"required"`
	Mode         types.ProrationMode `json:"mode" validate:"required"`
}

func (r *PlanChangeRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	return r.Mode.Validate()
}

// ProrationBreakdown is the wire shape of a plan-change resolution
type ProrationBreakdown struct {
	UnusedValue        decimal.Decimal     `json:"unused_value"`
	TargetProratedCost decimal.Decimal     `json:"target_prorated_cost"`
	NetAmountDue       decimal.Decimal     `json:"net_amount_due"`
	Currency           string              `json:"currency"`
	EffectiveAt        time.Time           `json:"effective_at"`
	NewPeriodStart     time.Time           `json:"new_period_start"`
	NewPeriodEnd       time.Time           `json:"new_period_end"`
	RemainingDays      int                 `json:"remaining_days"`
	TotalDays          int                 `json:"total_days"`
	Mode               types.ProrationMode `json:"mode"`
}

// NewProrationBreakdown maps a calculator result onto the wire shape
func NewProrationBreakdown(result *proration.ProrationResult, currency string) *ProrationBreakdown {
	if result == nil {
		return nil
	}
	return &ProrationBreakdown{
		UnusedValue:        result.UnusedValue,
		TargetProratedCost: result.TargetProratedCost,
		NetAmountDue:       result.NetAmountDue,
		Currency:           currency,
		EffectiveAt:        result.EffectiveAt,
		NewPeriodStart:     result.NewPeriodStart,
		NewPeriodEnd:       result.NewPeriodEnd,
		RemainingDays:      result.RemainingDays,
		TotalDays:          result.TotalDays,
		Mode:               result.Mode,
	}
}

// PlanChangePreviewResponse is a dry-run resolution; nothing was persisted
type PlanChangePreviewResponse struct {
	SubscriptionID string              `json:"subscription_id"`
	TargetPlanID   string              `json:"target_plan_id"`
	Breakdown      *ProrationBreakdown `json:"breakdown"`
}

// PlanChangeResponse is the result of an applied plan change. Transaction is
// nil for end-of-period changes: the charge is recorded at activation.
type PlanChangeResponse struct {
	Subscription *SubscriptionResponse `json:"subscription"`
	Transaction  *TransactionResponse  `json:"transaction,omitempty"`
	Breakdown    *ProrationBreakdown   `json:"breakdown"`
}

type RenewSubscriptionResponse struct {
	Subscription *SubscriptionResponse `json:"subscription"`
	Transaction  *TransactionResponse  `json:"transaction"`
}

type TransactionResponse struct {
	*ledger.Transaction
}

type ListTransactionsResponse struct {
	Items  []*TransactionResponse `json:"items"`
	Limit  int                    `json:"limit"`
	Offset int                    `json:"offset"`
}

// ActivationRunResponse summarizes one sweep over due scheduled plan changes.
// Skipped counts subscriptions another writer activated between the list and
// the conditional update.
type ActivationRunResponse struct {
	Processed int `json:"processed"`
	Activated int `json:"activated"`
	Skipped   int `json:"skipped"`
	Failed    int `json:"failed"`
}

func (r *CreateSubscriptionRequest) validateStartDate() error {
	if r.StartDate != nil && r.StartDate.IsZero() {
		return ierr.NewError("start date cannot be the zero time").
			WithHint("Omit start_date to start the subscription now").
			Mark(ierr.ErrValidation)
	}
	return nil
}
