package infra

import (
	"context"

	"order-timeline/internal/domain"
)

type OrderGatewayInterface interface {
	ListOrders(ctx context.Context, session *domain.AdminSession, limit int) ([]domain.OrderSummary, error)
	GetOrder(ctx context.Context, session *domain.AdminSession, id string) (*domain.OrderDetail, error)
}

type SessionStoreInterface interface {
	Get(ctx context.Context, shop string) (*domain.AdminSession, error)
	Save(ctx context.Context, session *domain.AdminSession) error
}

type AuthenticatorInterface interface {
	Authenticate(ctx context.Context, token string) (*domain.AdminSession, error)
}

var (
	_ OrderGatewayInterface  = (*ShopifyClient)(nil)
	_ AuthenticatorInterface = (*Authenticator)(nil)
)
