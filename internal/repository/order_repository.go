package repository

import (
	"context"

	"order-timeline/internal/domain"
)

// OrderRepository holds the local order mirror.
type OrderRepository interface {
	// Insert creates the mirror row. An existing id yields gorm.ErrDuplicatedKey.
	Insert(ctx context.Context, order *domain.Order) error
	// FindByID returns nil, nil when the order is not mirrored.
	FindByID(ctx context.Context, id string) (*domain.Order, error)
}

// CommentRepository is the durable, append-only comment ledger. Every
// failure is returned to the caller.
type CommentRepository interface {
	Append(ctx context.Context, comment *domain.Comment) error
	ListByOrder(ctx context.Context, orderID string) ([]domain.Comment, error)
}

// TemplateRepository holds the single active email template.
type TemplateRepository interface {
	// Active returns nil, nil when no template was ever saved.
	Active(ctx context.Context) (*domain.EmailTemplate, error)
	// Save replaces the active template.
	Save(ctx context.Context, tpl *domain.EmailTemplate) error
}
