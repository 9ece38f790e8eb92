package services

import (
	"context"

	"github.com/baechuer/otp-dashboard/internal/domain"
)

type OTPService struct {
	backend Backend
}

func NewOTPService(b Backend) *OTPService {
	return &OTPService{backend: b}
}

func (s *OTPService) Send(ctx context.Context, req domain.SendOTPRequest) (*domain.SendOTPResponse, error) {
	var out domain.SendOTPResponse
	if err := s.backend.Post(ctx, "/otp/send", req, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

func (s *OTPService) Verify(ctx context.Context, req domain.VerifyOTPRequest) (*domain.VerifyOTPResponse, error) {
	var out domain.VerifyOTPResponse
	if err := s.backend.Post(ctx, "/otp/verify", req, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}
