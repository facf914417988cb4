package dto

import (
	"context"

	"github.com/kopikita/roastery/internal/domain/plan"
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
	"github.com/kopikita/roastery/internal/validator"
	"github.com/shopspring/decimal"
)

type CreatePlanRequest struct {
	Name        string                `json:"name" validate:"required"`
	LookupKey   string                `json:"lookup_key"`
	Description string                `json:"description"`
	Price       decimal.Decimal       `json:"price"`
	Currency    string                `json:"currency"`
	Interval    types.BillingInterval `json:"interval" validate:"required"`
}

func (r *CreatePlanRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}

	if err := r.Interval.Validate(); err != nil {
		return err
	}

	if r.Price.IsNegative() {
		return ierr.NewError("price cannot be negative").
			WithHint("Please provide a non-negative plan price").
			WithReportableDetails(map[string]any{
				"price": r.Price,
			}).
			Mark(ierr.ErrValidation)
	}

	return nil
}

func (r *CreatePlanRequest) ToPlan(ctx context.Context) *plan.Plan {
	return &plan.Plan{
		ID:          types.GenerateUUIDWithPrefix(types.UUID_PREFIX_PLAN),
		Name:        r.Name,
		LookupKey:   r.LookupKey,
		Description: r.Description,
		Price:       r.Price,
		Currency:    r.Currency,
		Interval:    r.Interval,
		BaseModel:   types.GetDefaultBaseModel(ctx),
	}
}

type UpdatePlanRequest struct {
	Name        *string `json:"name,omitempty"`
	LookupKey   *string `json:"lookup_key,omitempty"`
	Description *string `json:"description,omitempty"`
}

type PlanResponse struct {
	*plan.Plan
}

type ListPlansResponse struct {
	Items  []*PlanResponse `json:"items"`
	Limit  int             `json:"limit"`
	Offset int             `json:"offset"`
}
