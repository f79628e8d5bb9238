package services

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"order-timeline/internal/domain"
	"order-timeline/internal/metrics"
	"order-timeline/internal/repository"
)

// OrderCache maintains the local order mirror. It is best-effort: a failed
// write is logged and otherwise ignored, so the order screen still renders
// when the database is unhappy. Existing rows are never updated.
type OrderCache struct {
	repo repository.OrderRepository
	log  *zap.Logger
}

func NewOrderCache(repo repository.OrderRepository, log *zap.Logger) *OrderCache {
	return &OrderCache{repo: repo, log: log}
}

func (c *OrderCache) EnsureStored(ctx context.Context, order *domain.OrderDetail) {
	if order == nil || order.ID == "" {
		return
	}

	err := c.repo.Insert(ctx, order.Mirror())
	switch {
	case err == nil:
		metrics.OrderMirrorWritesTotal.WithLabelValues("inserted").Inc()
	case errors.Is(err, gorm.ErrDuplicatedKey):
		metrics.OrderMirrorWritesTotal.WithLabelValues("exists").Inc()
		c.log.Debug("order already mirrored", zap.String("order_id", order.ID))
	default:
		metrics.OrderMirrorWritesTotal.WithLabelValues("failed").Inc()
		c.log.Warn("failed to mirror order", zap.String("order_id", order.ID), zap.Error(err))
	}
}

// CustomerName returns the mirrored customer name, or "" when the order is
// not mirrored or the lookup fails.
func (c *OrderCache) CustomerName(ctx context.Context, orderID string) string {
	o, err := c.repo.FindByID(ctx, orderID)
	if err != nil {
		c.log.Warn("failed to read order mirror", zap.String("order_id", orderID), zap.Error(err))
		return ""
	}
	if o == nil {
		return ""
	}
	return o.CustomerName
}
