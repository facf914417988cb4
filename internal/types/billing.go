package types

import (
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/samber/lo"
)

// BillingInterval defines the nominal length of one billing period for a plan
type BillingInterval string

const (
	BILLING_INTERVAL_MONTHLY BillingInterval = "monthly"
	BILLING_INTERVAL_ANNUAL  BillingInterval = "annual"
)

func (i BillingInterval) String() string {
	return string(i)
}

func (i BillingInterval) Validate() error {
	allowed := []BillingInterval{
		BILLING_INTERVAL_MONTHLY,
		BILLING_INTERVAL_ANNUAL,
	}
	if !lo.Contains(allowed, i) {
		return ierr.NewError("invalid billing interval").
			WithHint("Invalid billing interval").
			WithReportableDetails(map[string]any{
				"allowed_values": allowed,
				"provided_value": i,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// SubscriptionStatus is the status of a subscription
type SubscriptionStatus string

const (
	SubscriptionStatusActive          SubscriptionStatus = "active"
	SubscriptionStatusTrialing        SubscriptionStatus = "trialing"
	SubscriptionStatusPendingCheckout SubscriptionStatus = "pending_checkout"
	SubscriptionStatusCancelled       SubscriptionStatus = "cancelled"
	SubscriptionStatusExpired         SubscriptionStatus = "expired"
)

func (s SubscriptionStatus) String() string {
	return string(s)
}

func (s SubscriptionStatus) Validate() error {
	allowed := []SubscriptionStatus{
		SubscriptionStatusActive,
		SubscriptionStatusTrialing,
		SubscriptionStatusPendingCheckout,
		SubscriptionStatusCancelled,
		SubscriptionStatusExpired,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid subscription status").
			WithHint("Invalid subscription status").
			WithReportableDetails(map[string]any{
				"allowed_values": allowed,
				"provided_value": s,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// IsProrationEligible reports whether a subscription in this status may have
// plan changes prorated. Cancelled or expired subscriptions must renew first.
func (s SubscriptionStatus) IsProrationEligible() bool {
	return s == SubscriptionStatusActive || s == SubscriptionStatusTrialing
}

// ProrationMode determines when a plan change takes effect
type ProrationMode string

const (
	// ProrationModeImmediate applies the change now with a prorated
	// credit/charge for the remainder of the current period
	ProrationModeImmediate ProrationMode = "immediate"
	// ProrationModeEndOfPeriod queues the change to take effect at the next
	// period boundary at full price
	ProrationModeEndOfPeriod ProrationMode = "end_of_period"
)

func (m ProrationMode) String() string {
	return string(m)
}

func (m ProrationMode) Validate() error {
	allowed := []ProrationMode{
		ProrationModeImmediate,
		ProrationModeEndOfPeriod,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid proration mode").
			WithHint("Invalid proration mode").
			WithReportableDetails(map[string]any{
				"allowed_values": allowed,
				"provided_value": m,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// TransactionReason identifies why a billing transaction was recorded
type TransactionReason string

const (
	TransactionReasonInitialSubscription TransactionReason = "initial_subscription"
	TransactionReasonPlanChange          TransactionReason = "plan_change"
	TransactionReasonScheduledChange     TransactionReason = "scheduled_change"
	TransactionReasonRenewal             TransactionReason = "renewal"
)

func (r TransactionReason) String() string {
	return string(r)
}
