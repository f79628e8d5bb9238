package mysql

import (
	"context"
	"errors"

	"order-timeline/internal/domain"
	mmysql "order-timeline/internal/infra/mysql"
	"order-timeline/internal/repository"

	"gorm.io/gorm"
)

type orderRepo struct {
	handle *mmysql.Handle
}

func NewOrderRepository(h *mmysql.Handle) repository.OrderRepository {
	return &orderRepo{handle: h}
}

func (r *orderRepo) Insert(ctx context.Context, order *domain.Order) error {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return err
	}
	return db.Create(order).Error
}

func (r *orderRepo) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	db, err := r.handle.DB(ctx)
	if err != nil {
		return nil, err
	}

	var o domain.Order
	if err := db.Where("id = ?", id).First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &o, nil
}
