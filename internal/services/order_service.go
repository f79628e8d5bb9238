package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"order-timeline/internal/domain"
	"order-timeline/internal/infra"
	"order-timeline/internal/repository"
)

// OrderListLimit is how many orders and line items per order the list
// screen shows.
const OrderListLimit = 10

var (
	ErrOrderNotFound = infra.ErrOrderNotFound
	ErrUpstream      = errors.New("order platform unavailable")
)

type OrderService struct {
	gateway  infra.OrderGatewayInterface
	cache    *OrderCache
	comments repository.CommentRepository
	log      *zap.Logger
}

func NewOrderService(g infra.OrderGatewayInterface, cache *OrderCache, comments repository.CommentRepository, log *zap.Logger) *OrderService {
	return &OrderService{
		gateway:  g,
		cache:    cache,
		comments: comments,
		log:      log,
	}
}

func (s *OrderService) ListOrders(ctx context.Context, session *domain.AdminSession) ([]domain.OrderSummary, error) {
	orders, err := s.gateway.ListOrders(ctx, session, OrderListLimit)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	return orders, nil
}

// GetOrder fetches the live order, makes sure it is mirrored locally and
// returns it with its comment timeline, oldest first.
func (s *OrderService) GetOrder(ctx context.Context, session *domain.AdminSession, id string) (*domain.OrderDetail, []domain.Comment, error) {
	order, err := s.gateway.GetOrder(ctx, session, id)
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			s.log.Debug("order not found upstream", zap.String("order_id", id))
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	s.cache.EnsureStored(ctx, order)

	comments, err := s.comments.ListByOrder(ctx, order.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("list comments for order %s: %w", order.ID, err)
	}
	if comments == nil {
		comments = []domain.Comment{}
	}

	return order, comments, nil
}
