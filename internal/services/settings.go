package services

import (
	"context"

	"github.com/baechuer/otp-dashboard/internal/domain"
)

type SettingsService struct {
	backend Backend
}

func NewSettingsService(b Backend) *SettingsService {
	return &SettingsService{backend: b}
}

func (s *SettingsService) Me(ctx context.Context) (*domain.User, error) {
	var out domain.User
	if err := s.backend.Get(ctx, "/users/me", &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

func (s *SettingsService) UpdateProfile(ctx context.Context, in domain.ProfileUpdate) (*domain.User, error) {
	return s.update(ctx, "/users/profile", in)
}

func (s *SettingsService) UpdateSecurity(ctx context.Context, in domain.SecurityUpdate) (*domain.User, error) {
	return s.update(ctx, "/users/security", in)
}

// update puts body and returns the user as the backend now sees it. When
// the response does not carry a user the profile is re-read.
func (s *SettingsService) update(ctx context.Context, path string, body any) (*domain.User, error) {
	var out domain.User
	if err := s.backend.Put(ctx, path, body, &out); err != nil {
		return nil, toFailure(err)
	}
	if out.ID != "" {
		return &out, nil
	}
	return s.Me(ctx)
}

func (s *SettingsService) ChangePassword(ctx context.Context, in domain.PasswordChange) (*domain.MessageResponse, error) {
	var out domain.MessageResponse
	if err := s.backend.Post(ctx, "/users/change-password", in, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}
