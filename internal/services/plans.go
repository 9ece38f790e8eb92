package services

import (
	"context"

	"github.com/baechuer/otp-dashboard/internal/domain"
)

type PlanService struct {
	backend Backend
}

func NewPlanService(b Backend) *PlanService {
	return &PlanService{backend: b}
}

func (s *PlanService) List(ctx context.Context) ([]domain.Plan, error) {
	out := []domain.Plan{}
	if err := s.backend.Get(ctx, "/plans", &out); err != nil {
		return nil, toFailure(err)
	}
	return out, nil
}

func (s *PlanService) Current(ctx context.Context) (*domain.Plan, error) {
	var out domain.Plan
	if err := s.backend.Get(ctx, "/plans/current", &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

func (s *PlanService) Usage(ctx context.Context) (*domain.Usage, error) {
	var out domain.Usage
	if err := s.backend.Get(ctx, "/usage/current", &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

type UpgradeRequest struct {
	PlanID string `json:"planId" validate:"required"`
}

// Upgrade opens a checkout session for planID.
func (s *PlanService) Upgrade(ctx context.Context, planID string) (*domain.CheckoutSession, error) {
	var out domain.CheckoutSession
	if err := s.backend.Post(ctx, "/payments/create-session", UpgradeRequest{PlanID: planID}, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}
