package mysql

import (
	"context"

	"order-timeline/internal/domain"
	mmysql "order-timeline/internal/infra/mysql"
	"order-timeline/internal/repository"
)

type commentRepo struct {
	handle *mmysql.Handle
}

func NewCommentRepository(h *mmysql.Handle) repository.CommentRepository {
	return &commentRepo{handle: h}
}

func (r *commentRepo) Append(ctx context.Context, comment *domain.Comment) error {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return err
	}
	return db.Create(comment).Error
}

// ListByOrder returns the comments of an order oldest first.
func (r *commentRepo) ListByOrder(ctx context.Context, orderID string) ([]domain.Comment, error) {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return nil, err
	}

	out := []domain.Comment{}
	if err := db.Where("order_id = ?", orderID).Order("created_at ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
