package services

import (
	"context"

	"github.com/baechuer/otp-dashboard/internal/domain"
)

const smtpPath = "/smtp"

type SMTPService struct {
	backend Backend
}

func NewSMTPService(b Backend) *SMTPService {
	return &SMTPService{backend: b}
}

func (s *SMTPService) List(ctx context.Context) ([]domain.SMTPConfig, error) {
	out := []domain.SMTPConfig{}
	if err := s.backend.Get(ctx, smtpPath, &out); err != nil {
		return nil, toFailure(err)
	}
	return out, nil
}

func (s *SMTPService) Create(ctx context.Context, in domain.SMTPInput) (*domain.SMTPConfig, error) {
	var out domain.SMTPConfig
	if err := s.backend.Post(ctx, smtpPath, in, &out); err != nil {
		return nil, NormalizeLimit(ResourceSMTP, toFailure(err))
	}
	return &out, nil
}

func (s *SMTPService) Update(ctx context.Context, id string, in domain.SMTPUpdate) (*domain.SMTPConfig, error) {
	var out domain.SMTPConfig
	if err := s.backend.Put(ctx, itemPath(smtpPath, id), in, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

func (s *SMTPService) Delete(ctx context.Context, id string) error {
	return toFailure(s.backend.Delete(ctx, itemPath(smtpPath, id)))
}
