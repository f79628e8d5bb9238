package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"order-timeline/internal/domain"
	"order-timeline/internal/repository"
)

type TemplateService struct {
	repo repository.TemplateRepository
	log  *zap.Logger
}

func NewTemplateService(repo repository.TemplateRepository, log *zap.Logger) *TemplateService {
	return &TemplateService{repo: repo, log: log}
}

// Active returns nil, nil when no template has been saved yet.
func (s *TemplateService) Active(ctx context.Context) (*domain.EmailTemplate, error) {
	return s.repo.Active(ctx)
}

// Save replaces the active template. Fields are stored as given, empty
// values included.
func (s *TemplateService) Save(ctx context.Context, from, subject, body string) (*domain.EmailTemplate, error) {
	tpl := &domain.EmailTemplate{
		ID:          domain.ActiveTemplateID,
		FromAddress: from,
		Subject:     subject,
		Body:        body,
	}
	if err := s.repo.Save(ctx, tpl); err != nil {
		return nil, fmt.Errorf("save email template: %w", err)
	}
	s.log.Info("email template saved", zap.String("from", from))
	return tpl, nil
}
