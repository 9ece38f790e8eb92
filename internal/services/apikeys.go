package services

import (
	"context"

	"github.com/baechuer/otp-dashboard/internal/domain"
)

const apiKeysPath = "/apikeys"

type APIKeyService struct {
	backend Backend
}

func NewAPIKeyService(b Backend) *APIKeyService {
	return &APIKeyService{backend: b}
}

func (s *APIKeyService) List(ctx context.Context) ([]domain.APIKey, error) {
	out := []domain.APIKey{}
	if err := s.backend.Get(ctx, apiKeysPath, &out); err != nil {
		return nil, toFailure(err)
	}
	return out, nil
}

// Create returns the secret. The backend never returns it again.
func (s *APIKeyService) Create(ctx context.Context, in domain.APIKeyInput) (*domain.CreatedAPIKey, error) {
	var out domain.CreatedAPIKey
	if err := s.backend.Post(ctx, apiKeysPath, in, &out); err != nil {
		return nil, NormalizeLimit(ResourceAPIKeys, toFailure(err))
	}
	return &out, nil
}

func (s *APIKeyService) Delete(ctx context.Context, id string) error {
	return toFailure(s.backend.Delete(ctx, itemPath(apiKeysPath, id)))
}
