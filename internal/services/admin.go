package services

import (
	"context"

	"github.com/baechuer/otp-dashboard/internal/domain"
)

const adminPlansPath = "/admin/plans"

type AdminService struct {
	backend Backend
}

func NewAdminService(b Backend) *AdminService {
	return &AdminService{backend: b}
}

func (s *AdminService) Stats(ctx context.Context) (*domain.AdminStats, error) {
	var out domain.AdminStats
	if err := s.backend.Get(ctx, "/admin/stats", &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

func (s *AdminService) ListPlans(ctx context.Context) ([]domain.Plan, error) {
	out := []domain.Plan{}
	if err := s.backend.Get(ctx, adminPlansPath, &out); err != nil {
		return nil, toFailure(err)
	}
	return out, nil
}

func (s *AdminService) CreatePlan(ctx context.Context, in domain.PlanInput) (*domain.Plan, error) {
	var out domain.Plan
	if err := s.backend.Post(ctx, adminPlansPath, in, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

func (s *AdminService) UpdatePlan(ctx context.Context, id string, in domain.PlanInput) (*domain.Plan, error) {
	var out domain.Plan
	if err := s.backend.Patch(ctx, itemPath(adminPlansPath, id), in, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

func (s *AdminService) DeletePlan(ctx context.Context, id string) error {
	return toFailure(s.backend.Delete(ctx, itemPath(adminPlansPath, id)))
}

func (s *AdminService) AssignDefaultPlans(ctx context.Context) (*domain.MessageResponse, error) {
	var out domain.MessageResponse
	if err := s.backend.Post(ctx, "/admin/assign-default-plans", nil, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}
