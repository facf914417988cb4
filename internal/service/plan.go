package service

import (
	"context"
	"time"

	"github.com/kopikita/roastery/internal/api/dto"
	"github.com/kopikita/roastery/internal/cache"
	"github.com/kopikita/roastery/internal/domain/plan"
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/types"
	"github.com/samber/lo"
)

type PlanService interface {
	CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error)
	GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error)
	GetPlanByLookupKey(ctx context.Context, lookupKey string) (*dto.PlanResponse, error)
	GetPlans(ctx context.Context, filter types.Filter) (*dto.ListPlansResponse, error)
	UpdatePlan(ctx context.Context, id string, req dto.UpdatePlanRequest) (*dto.PlanResponse, error)
	DeletePlan(ctx context.Context, id string) error
}

type planService struct {
	ServiceParams
}

func NewPlanService(params ServiceParams) PlanService {
	return &planService{ServiceParams: params}
}

func (s *planService) CreatePlan(ctx context.Context, req dto.CreatePlanRequest) (*dto.PlanResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if req.Currency == "" {
		req.Currency = s.Config.Billing.Currency
	}

	if req.LookupKey != "" {
		if existing, err := s.PlanRepo.GetByLookupKey(ctx, req.LookupKey); err == nil && existing != nil {
			return nil, ierr.NewError("plan with this lookup key already exists").
				WithHintf("lookup key %s is already in use by plan %s", req.LookupKey, existing.ID).
				Mark(ierr.ErrAlreadyExists)
		}
	}

	p := req.ToPlan(ctx)
	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.PlanRepo.Create(ctx, p); err != nil {
		return nil, err
	}

	s.Logger.Infow("created plan",
		"plan_id", p.ID,
		"interval", p.Interval,
		"price", p.Price,
	)

	return &dto.PlanResponse{Plan: p}, nil
}

func (s *planService) GetPlan(ctx context.Context, id string) (*dto.PlanResponse, error) {
	if id == "" {
		return nil, ierr.NewError("plan ID is required").
			WithHint("Please provide a plan ID").
			Mark(ierr.ErrValidation)
	}

	cacheKey := cache.GenerateKey(cache.PrefixPlan, types.GetTenantID(ctx), id)
	if cached, found := s.Cache.Get(ctx, cacheKey); found {
		if p, ok := cached.(*plan.Plan); ok {
			return &dto.PlanResponse{Plan: p}, nil
		}
	}

	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.Cache.Set(ctx, cacheKey, p, cache.DefaultExpiration)
	return &dto.PlanResponse{Plan: p}, nil
}

func (s *planService) GetPlanByLookupKey(ctx context.Context, lookupKey string) (*dto.PlanResponse, error) {
	if lookupKey == "" {
		return nil, ierr.NewError("lookup key is required").
			WithHint("Please provide a lookup key").
			Mark(ierr.ErrValidation)
	}

	p, err := s.PlanRepo.GetByLookupKey(ctx, lookupKey)
	if err != nil {
		return nil, err
	}

	return &dto.PlanResponse{Plan: p}, nil
}

func (s *planService) GetPlans(ctx context.Context, filter types.Filter) (*dto.ListPlansResponse, error) {
	plans, err := s.PlanRepo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	return &dto.ListPlansResponse{
		Items: lo.Map(plans, func(p *plan.Plan, _ int) *dto.PlanResponse {
			return &dto.PlanResponse{Plan: p}
		}),
		Limit:  filter.GetLimit(),
		Offset: filter.GetOffset(),
	}, nil
}

func (s *planService) UpdatePlan(ctx context.Context, id string, req dto.UpdatePlanRequest) (*dto.PlanResponse, error) {
	p, err := s.PlanRepo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.LookupKey != nil {
		p.LookupKey = *req.LookupKey
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = types.GetUserID(ctx)

	if err := p.Validate(); err != nil {
		return nil, err
	}

	if err := s.PlanRepo.Update(ctx, p); err != nil {
		return nil, err
	}

	s.invalidateCache(ctx, id)
	return &dto.PlanResponse{Plan: p}, nil
}

// DeletePlan refuses to remove a plan any live subscription still points at,
// including subscriptions with the plan queued as a scheduled change
func (s *planService) DeletePlan(ctx context.Context, id string) error {
	if _, err := s.PlanRepo.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.PlanRepo.CountSubscriptionsReferencing(ctx, id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ierr.NewError("plan is in use").
			WithHintf("%d subscriptions still reference this plan", count).
			WithReportableDetails(map[string]any{
				"plan_id":            id,
				"subscription_count": count,
			}).
			Mark(ierr.ErrInvalidOperation)
	}

	if err := s.PlanRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateCache(ctx, id)
	s.Logger.Infow("deleted plan", "plan_id", id)
	return nil
}

func (s *planService) invalidateCache(ctx context.Context, id string) {
	s.Cache.Delete(ctx, cache.GenerateKey(cache.PrefixPlan, types.GetTenantID(ctx), id))
}
