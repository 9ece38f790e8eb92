package services

import (
	"context"
	"net/http"

	"github.com/baechuer/otp-dashboard/internal/domain"
)

const templatesPath = "/templates"

type TemplateService struct {
	backend Backend
}

func NewTemplateService(b Backend) *TemplateService {
	return &TemplateService{backend: b}
}

func (s *TemplateService) List(ctx context.Context) ([]domain.Template, error) {
	out := []domain.Template{}
	if err := s.backend.Get(ctx, templatesPath, &out); err != nil {
		return nil, toFailure(err)
	}
	return out, nil
}

// Get finds a template in the list; the backend has no item read.
func (s *TemplateService) Get(ctx context.Context, id string) (*domain.Template, error) {
	list, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			return &list[i], nil
		}
	}
	return nil, &domain.Failure{Kind: domain.KindNotFound, Status: http.StatusNotFound, Message: "Template not found"}
}

func (s *TemplateService) Create(ctx context.Context, in domain.TemplateInput) (*domain.Template, error) {
	var out domain.Template
	if err := s.backend.Post(ctx, templatesPath, in, &out); err != nil {
		return nil, NormalizeLimit(ResourceTemplates, toFailure(err))
	}
	return &out, nil
}

func (s *TemplateService) Update(ctx context.Context, id string, in domain.TemplateInput) (*domain.Template, error) {
	var out domain.Template
	if err := s.backend.Put(ctx, itemPath(templatesPath, id), in, &out); err != nil {
		return nil, toFailure(err)
	}
	return &out, nil
}

func (s *TemplateService) Delete(ctx context.Context, id string) error {
	return toFailure(s.backend.Delete(ctx, itemPath(templatesPath, id)))
}
