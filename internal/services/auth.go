package services

import (
	"context"

	"github.com/baechuer/otp-dashboard/internal/domain"
)

type AuthService struct {
	backend Backend
}

func NewAuthService(b Backend) *AuthService {
	return &AuthService{backend: b}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.AuthResponse, error) {
	var out domain.AuthResponse
	if err := s.backend.Post(ctx, "/auth/login", loginRequest{Email: email, Password: password}, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

func (s *AuthService) Register(ctx context.Context, req domain.RegisterRequest) (*domain.RegisterResponse, error) {
	var out domain.RegisterResponse
	if err := s.backend.Post(ctx, "/auth/register", req, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type ResetPasswordRequest struct {
	OTP         string `json:"otp" validate:"required,max=12"`
	NewPassword string `json:"newPassword" validate:"required,min=8,max=128"`
}

func (s *AuthService) ForgotPassword(ctx context.Context, req ForgotPasswordRequest) (*domain.MessageResponse, error) {
	var out domain.MessageResponse
	if err := s.backend.Post(ctx, "/auth/forgot-password", req, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, req ResetPasswordRequest) (*domain.MessageResponse, error) {
	var out domain.MessageResponse
	if err := s.backend.Post(ctx, "/auth/reset-password", req, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

// CurrentPlan reads the caller's plan. Used right after login, before the
// session is persisted.
func (s *AuthService) CurrentPlan(ctx context.Context) (*domain.Plan, error) {
	var out domain.Plan
	if err := s.backend.Get(ctx, "/plans/current", &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}
