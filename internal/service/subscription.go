package service

import (
	"context"
	"strconv"
	"time"

	"github.com/kopikita/roastery/internal/api/dto"
	"github.com/kopikita/roastery/internal/domain/ledger"
	"github.com/kopikita/roastery/internal/domain/plan"
	"github.com/kopikita/roastery/internal/domain/proration"
	"github.com/kopikita/roastery/internal/domain/subscription"
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
)

// activationBatchSize caps how many due plan changes one sweep picks up
const activationBatchSize = 100

type SubscriptionService interface {
	CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error)
	GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error)
	GetSubscriptions(ctx context.Context, filter types.Filter) (*dto.ListSubscriptionsResponse, error)

	// PreviewPlanChange resolves the proration arithmetic for a plan change
	// without persisting anything
	PreviewPlanChange(ctx context.Context, id string, req dto.PlanChangeRequest) (*dto.PlanChangePreviewResponse, error)

	// ChangePlan applies a plan change. Immediate changes swap the plan now
	// and record the prorated net amount; end-of-period changes queue the
	// target plan for activation at the period boundary.
	ChangePlan(ctx context.Context, id string, req dto.PlanChangeRequest) (*dto.PlanChangeResponse, error)

	// RenewSubscription advances the billing period by one interval and
	// records the renewal charge
	RenewSubscription(ctx context.Context, id string) (*dto.RenewSubscriptionResponse, error)

	// GetTransactions lists the billing audit trail for a subscription
	GetTransactions(ctx context.Context, id string, filter types.Filter) (*dto.ListTransactionsResponse, error)

	// ActivateDueUpgrades sweeps scheduled plan changes whose period boundary
	// has passed and activates them. Safe to run concurrently with
	// user-triggered activations.
	ActivateDueUpgrades(ctx context.Context) (*dto.ActivationRunResponse, error)
}

type subscriptionService struct {
	ServiceParams
}

func NewSubscriptionService(params ServiceParams) SubscriptionService {
	return &subscriptionService{ServiceParams: params}
}

func (s *subscriptionService) CreateSubscription(ctx context.Context, req dto.CreateSubscriptionRequest) (*dto.SubscriptionResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	p, err := s.PlanRepo.Get(ctx, req.PlanID)
	if err != nil {
		return nil, err
	}

	start := time.Now().UTC()
	if req.StartDate != nil {
		start = req.StartDate.UTC()
	}

	end, err := proration.NextPeriodEnd(start, p.Interval)
	if err != nil {
		return nil, err
	}

	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		PlanID:             p.ID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		CurrentPeriodStart: start,
		CurrentPeriodEnd:   end,
		Version:            1,
		BaseModel:          types.GetDefaultBaseModel(ctx),
	}
	if req.TrialDays > 0 {
		trialEnd := start.AddDate(0, 0, req.TrialDays)
		sub.SubscriptionStatus = types.SubscriptionStatusTrialing
		sub.TrialEnd = &trialEnd
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubRepo.Create(ctx, sub); err != nil {
			return err
		}
		txn := s.newTransaction(ctx, sub.ID, p.Price, p.Currency,
			types.TransactionReasonInitialSubscription, types.Metadata{
				"plan_id": p.ID,
			})
		return s.LedgerRepo.Create(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("created subscription",
		"subscription_id", sub.ID,
		"plan_id", p.ID,
		"status", sub.SubscriptionStatus,
	)

	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) GetSubscription(ctx context.Context, id string) (*dto.SubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return &dto.SubscriptionResponse{Subscription: sub}, nil
}

func (s *subscriptionService) GetSubscriptions(ctx context.Context, filter types.Filter) (*dto.ListSubscriptionsResponse, error) {
	subs, err := s.SubRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListSubscriptionsResponse{
		Items: lo.Map(subs, func(sub *subscription.Subscription, _ int) *dto.SubscriptionResponse {
			return &dto.SubscriptionResponse{Subscription: sub}
		}),
		Limit:  filter.GetLimit(),
		Offset: filter.GetOffset(),
	}, nil
}

func (s *subscriptionService) PreviewPlanChange(ctx context.Context, id string, req dto.PlanChangeRequest) (*dto.PlanChangePreviewResponse, error) {
	sub, target, result, err := s.resolvePlanChange(ctx, id, req)
	if err != nil {
		return nil, err
	}

	return &dto.PlanChangePreviewResponse{
		SubscriptionID: sub.ID,
		TargetPlanID:   target.ID,
		Breakdown:      dto.NewProrationBreakdown(result, target.Currency),
	}, nil
}

func (s *subscriptionService) ChangePlan(ctx context.Context, id string, req dto.PlanChangeRequest) (*dto.PlanChangeResponse, error) {
	sub, target, result, err := s.resolvePlanChange(ctx, id, req)
	if err != nil {
		return nil, err
	}

	var txn *ledger.Transaction
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		switch result.Mode {
		case types.ProrationModeImmediate:
			sub.PlanID = target.ID
			sub.CurrentPeriodStart = result.NewPeriodStart
			sub.CurrentPeriodEnd = result.NewPeriodEnd
			sub.IntendedPlanID = nil
			sub.UpdatedAt = time.Now().UTC()
			sub.UpdatedBy = types.GetUserID(ctx)
			if err := s.SubRepo.Update(ctx, sub); err != nil {
				return err
			}

			metadata := types.Metadata{
				"target_plan_id":       target.ID,
				"unused_value":         result.UnusedValue.String(),
				"target_prorated_cost": result.TargetProratedCost.String(),
				"remaining_days":       strconv.Itoa(result.RemainingDays),
				"total_days":           strconv.Itoa(result.TotalDays),
				"mode":                 result.Mode.String(),
			}
			if result.NetAmountDue.IsNegative() {
				// a downgrade can owe the tenant more than the new plan
				// costs; the ledger keeps the signed amount as a credit
				metadata["negative_amount_policy"] = "recorded_as_credit"
			}
			txn = s.newTransaction(ctx, sub.ID, result.NetAmountDue,
				target.Currency, types.TransactionReasonPlanChange, metadata)
			return s.LedgerRepo.Create(ctx, txn)

		case types.ProrationModeEndOfPeriod:
			sub.IntendedPlanID = lo.ToPtr(target.ID)
			sub.UpdatedAt = time.Now().UTC()
			sub.UpdatedBy = types.GetUserID(ctx)
			// no ledger entry yet: the charge is recorded when the change
			// activates at the period boundary
			return s.SubRepo.Update(ctx, sub)

		default:
			return req.Mode.Validate()
		}
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("applied plan change",
		"subscription_id", sub.ID,
		"target_plan_id", target.ID,
		"mode", result.Mode,
		"net_amount_due", result.NetAmountDue,
	)

	resp := &dto.PlanChangeResponse{
		Subscription: &dto.SubscriptionResponse{Subscription: sub},
		Breakdown:    dto.NewProrationBreakdown(result, target.Currency),
	}
	if txn != nil {
		resp.Transaction = &dto.TransactionResponse{Transaction: txn}
	}
	return resp, nil
}

func (s *subscriptionService) RenewSubscription(ctx context.Context, id string) (*dto.RenewSubscriptionResponse, error) {
	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if sub.HasPendingPlanChange() {
		return nil, ierr.NewError("subscription has a scheduled plan change").
			WithHint("The scheduled plan change activates at the period boundary instead of a plain renewal").
			Mark(ierr.ErrInvalidOperation)
	}
	if !sub.SubscriptionStatus.IsProrationEligible() {
		return nil, ierr.NewError("subscription cannot be renewed").
			WithHintf("subscription is %s", sub.SubscriptionStatus).
			Mark(ierr.ErrInvalidOperation)
	}

	p, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, err
	}

	newEnd, err := proration.NextPeriodEnd(sub.CurrentPeriodEnd, p.Interval)
	if err != nil {
		return nil, err
	}

	sub.CurrentPeriodStart = sub.CurrentPeriodEnd
	sub.CurrentPeriodEnd = newEnd
	sub.SubscriptionStatus = types.SubscriptionStatusActive
	sub.TrialEnd = nil
	sub.UpdatedAt = time.Now().UTC()
	sub.UpdatedBy = types.GetUserID(ctx)

	var txn *ledger.Transaction
	err = s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubRepo.Update(ctx, sub); err != nil {
			return err
		}
		txn = s.newTransaction(ctx, sub.ID, p.Price, p.Currency,
			types.TransactionReasonRenewal, types.Metadata{
				"plan_id": p.ID,
			})
		return s.LedgerRepo.Create(ctx, txn)
	})
	if err != nil {
		return nil, err
	}

	s.Logger.Infow("renewed subscription",
		"subscription_id", sub.ID,
		"period_start", sub.CurrentPeriodStart,
		"period_end", sub.CurrentPeriodEnd,
	)

	return &dto.RenewSubscriptionResponse{
		Subscription: &dto.SubscriptionResponse{Subscription: sub},
		Transaction:  &dto.TransactionResponse{Transaction: txn},
	}, nil
}

func (s *subscriptionService) GetTransactions(ctx context.Context, id string, filter types.Filter) (*dto.ListTransactionsResponse, error) {
	if _, err := s.SubRepo.Get(ctx, id); err != nil {
		return nil, err
	}

	txns, err := s.LedgerRepo.ListBySubscription(ctx, id, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Items: lo.Map(txns, func(txn *ledger.Transaction, _ int) *dto.TransactionResponse {
			return &dto.TransactionResponse{Transaction: txn}
		}),
		Limit:  filter.GetLimit(),
		Offset: filter.GetOffset(),
	}, nil
}

func (s *subscriptionService) ActivateDueUpgrades(ctx context.Context) (*dto.ActivationRunResponse, error) {
	now := time.Now().UTC()
	due, err := s.SubRepo.ListDueForActivation(ctx, now, activationBatchSize)
	if err != nil {
		return nil, err
	}

	resp := &dto.ActivationRunResponse{Processed: len(due)}
	for _, sub := range due {
		// the sweep runs installation-wide; scope each activation to the
		// owning tenant so plan lookups and ledger writes land correctly
		tenantCtx := types.SetTenantID(ctx, sub.TenantID)

		if err := s.activateOne(tenantCtx, sub, now); err != nil {
			if ierr.IsVersionConflict(err) {
				// another writer won the race; nothing left to do
				resp.Skipped++
				continue
			}
			s.Logger.Errorw("failed to activate scheduled plan change",
				"error", err,
				"subscription_id", sub.ID,
			)
			resp.Failed++
			continue
		}
		resp.Activated++
	}

	s.Logger.Infow("activation sweep finished",
		"processed", resp.Processed,
		"activated", resp.Activated,
		"skipped", resp.Skipped,
		"failed", resp.Failed,
	)

	return resp, nil
}

func (s *subscriptionService) activateOne(ctx context.Context, sub *subscription.Subscription, now time.Time) error {
	target, err := s.PlanRepo.Get(ctx, *sub.IntendedPlanID)
	if err != nil {
		return err
	}

	updated, err := proration.ActivatePendingUpgrade(sub, target, now)
	if err != nil {
		return err
	}
	updated.UpdatedBy = types.GetUserID(ctx)

	return s.DB.WithTx(ctx, func(ctx context.Context) error {
		if err := s.SubRepo.ActivatePending(ctx, updated, now); err != nil {
			return err
		}
		txn := s.newTransaction(ctx, updated.ID, target.Price, target.Currency,
			types.TransactionReasonScheduledChange, types.Metadata{
				"plan_id":      target.ID,
				"period_start": updated.CurrentPeriodStart.Format(time.RFC3339),
				"period_end":   updated.CurrentPeriodEnd.Format(time.RFC3339),
			})
		return s.LedgerRepo.Create(ctx, txn)
	})
}

// resolvePlanChange loads the subscription and both plans, then runs the
// calculator. Shared by preview and apply so both see identical arithmetic.
func (s *subscriptionService) resolvePlanChange(ctx context.Context, id string, req dto.PlanChangeRequest) (*subscription.Subscription, *plan.Plan, *proration.ProrationResult, error) {
	if err := req.Validate(); err != nil {
		return nil, nil, nil, err
	}

	sub, err := s.SubRepo.Get(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	current, err := s.PlanRepo.Get(ctx, sub.PlanID)
	if err != nil {
		return nil, nil, nil, err
	}

	target, err := s.PlanRepo.Get(ctx, req.TargetPlanID)
	if err != nil {
		return nil, nil, nil, err
	}

	if target.ID == current.ID {
		return nil, nil, nil, ierr.NewError("target plan matches the current plan").
			WithHint("Pick a different plan to change to").
			Mark(ierr.ErrValidation)
	}
	if target.Currency != current.Currency {
		return nil, nil, nil, ierr.NewError("plans have different currencies").
			WithHintf("cannot prorate between %s and %s", current.Currency, target.Currency).
			Mark(ierr.ErrValidation)
	}

	result, err := s.Calculator.Calculate(ctx, proration.ProrationParams{
		Subscription:  sub,
		CurrentPlan:   current,
		TargetPlan:    target,
		Mode:          req.Mode,
		ProrationDate: time.Now().UTC(),
	})
	if err != nil {
		return nil, nil, nil, err
	}

	return sub, target, result, nil
}

func (s *subscriptionService) newTransaction(ctx context.Context, subscriptionID string, amount decimal.Decimal, currency string, reason types.TransactionReason, metadata types.Metadata) *ledger.Transaction {
	return &ledger.Transaction{
		ID:             types.GenerateUUIDWithPrefix(types.UUID_PREFIX_BILLING_TRANSACTION),
		SubscriptionID: subscriptionID,
		ReferenceID:    types.GenerateShortIDWithPrefix(types.SHORT_ID_PREFIX_TRANSACTION),
		Amount:         amount,
		Currency:       currency,
		Reason:         reason,
		Metadata:       metadata,
		BaseModel:      types.GetDefaultBaseModel(ctx),
	}
}
