package service

import (
	"testing"

	"github.com/kopikita/roastery/internal/api/dto"
	"github.com/kopikita/roastery/internal/domain/subscription"
	ierr "github.com/kopikita/roastery/internal/errors"
	"github.com/kopikita/roastery/internal/testutil"
	"github.com/kopikita/roastery/internal/types"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type PlanServiceSuite struct {
	testutil.BaseServiceTestSuite
	service PlanService
}

func TestPlanService(t *testing.T) {
	suite.Run(t, new(PlanServiceSuite))
}

func (s *PlanServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewPlanService(ServiceParams{
		Logger:     s.GetLogger(),
		Config:     s.GetConfig(),
		DB:         s.GetDB(),
		Cache:      s.GetCache(),
		PlanRepo:   s.GetStores().PlanRepo,
		SubRepo:    s.GetStores().SubscriptionRepo,
		LedgerRepo: s.GetStores().LedgerRepo,
	})
}

func (s *PlanServiceSuite) TestCreatePlan() {
	resp, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:      "House Blend",
		LookupKey: "house-blend-monthly",
		Price:     decimal.NewFromInt(160000),
		Interval:  types.BILLING_INTERVAL_MONTHLY,
	})
	s.NoError(err)
	s.NotEmpty(resp.ID)
	s.Equal("IDR", resp.Currency, "currency defaults from configuration")
	s.True(resp.Price.Equal(decimal.NewFromInt(160000)))
}

func (s *PlanServiceSuite) TestCreatePlanDuplicateLookupKey() {
	req := dto.CreatePlanRequest{
		Name:      "House Blend",
		LookupKey: "house-blend-monthly",
		Price:     decimal.NewFromInt(160000),
		Interval:  types.BILLING_INTERVAL_MONTHLY,
	}
	_, err := s.service.CreatePlan(s.GetContext(), req)
	s.NoError(err)

	_, err = s.service.CreatePlan(s.GetContext(), req)
	s.Error(err)
	s.True(ierr.IsAlreadyExists(err))
}

func (s *PlanServiceSuite) TestCreatePlanInvalid() {
	_, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:     "Broken",
		Price:    decimal.NewFromInt(1000),
		Interval: types.BillingInterval("weekly"),
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))

	_, err = s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:     "Negative",
		Price:    decimal.NewFromInt(-1),
		Interval: types.BILLING_INTERVAL_MONTHLY,
	})
	s.Error(err)
	s.True(ierr.IsValidation(err))
}

func (s *PlanServiceSuite) TestGetPlan() {
	created, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:     "Single Origin",
		Price:    decimal.NewFromInt(235000),
		Interval: types.BILLING_INTERVAL_MONTHLY,
	})
	s.NoError(err)

	got, err := s.service.GetPlan(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(created.ID, got.ID)

	// second read comes from the cache and must match
	cached, err := s.service.GetPlan(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(created.ID, cached.ID)

	_, err = s.service.GetPlan(s.GetContext(), "plan_missing")
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PlanServiceSuite) TestUpdatePlan() {
	created, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:     "Single Origin",
		Price:    decimal.NewFromInt(235000),
		Interval: types.BILLING_INTERVAL_MONTHLY,
	})
	s.NoError(err)

	updated, err := s.service.UpdatePlan(s.GetContext(), created.ID, dto.UpdatePlanRequest{
		Name:        lo.ToPtr("Single Origin Reserve"),
		Description: lo.ToPtr("Rotating single-origin roast"),
	})
	s.NoError(err)
	s.Equal("Single Origin Reserve", updated.Name)
	s.Equal("Rotating single-origin roast", updated.Description)
	s.True(updated.Price.Equal(created.Price), "price is immutable through update")
}

func (s *PlanServiceSuite) TestDeletePlan() {
	created, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:     "Decaf",
		Price:    decimal.NewFromInt(120000),
		Interval: types.BILLING_INTERVAL_MONTHLY,
	})
	s.NoError(err)

	s.NoError(s.service.DeletePlan(s.GetContext(), created.ID))

	_, err = s.service.GetPlan(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsNotFound(err))
}

func (s *PlanServiceSuite) TestDeletePlanInUse() {
	created, err := s.service.CreatePlan(s.GetContext(), dto.CreatePlanRequest{
		Name:     "Decaf",
		Price:    decimal.NewFromInt(120000),
		Interval: types.BILLING_INTERVAL_MONTHLY,
	})
	s.NoError(err)

	now := s.GetNow()
	sub := &subscription.Subscription{
		ID:                 types.GenerateUUIDWithPrefix(types.UUID_PREFIX_SUBSCRIPTION),
		PlanID:             created.ID,
		SubscriptionStatus: types.SubscriptionStatusActive,
		CurrentPeriodStart: now,
		CurrentPeriodEnd:   now.AddDate(0, 1, 0),
		Version:            1,
		BaseModel:          types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().SubscriptionRepo.Create(s.GetContext(), sub))

	err = s.service.DeletePlan(s.GetContext(), created.ID)
	s.Error(err)
	s.True(ierr.IsInvalidOperation(err))
}
