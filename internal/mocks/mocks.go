package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"order-timeline/internal/domain"
	"order-timeline/internal/infra/mailer"
)

type MockOrderRepository struct {
	mock.Mock
}

type MockCommentRepository struct {
	mock.Mock
}

type MockTemplateRepository struct {
	mock.Mock
}

type MockOrderGateway struct {
	mock.Mock
}

type MockMailer struct {
	mock.Mock
}

type MockPublisher struct {
	mock.Mock
}

type MockAuthenticator struct {
	mock.Mock
}

type MockAttachmentStore struct {
	mock.Mock
}

func (m *MockOrderRepository) Insert(ctx context.Context, order *domain.Order) error {
	args := m.Called(ctx, order)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *MockCommentRepository) Append(ctx context.Context, comment *domain.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) ListByOrder(ctx context.Context, orderID string) ([]domain.Comment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Comment), args.Error(1)
}

func (m *MockTemplateRepository) Active(ctx context.Context) (*domain.EmailTemplate, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EmailTemplate), args.Error(1)
}

func (m *MockTemplateRepository) Save(ctx context.Context, tpl *domain.EmailTemplate) error {
	args := m.Called(ctx, tpl)
	return args.Error(0)
}

func (m *MockOrderGateway) ListOrders(ctx context.Context, session *domain.AdminSession, limit int) ([]domain.OrderSummary, error) {
	args := m.Called(ctx, session, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.OrderSummary), args.Error(1)
}

func (m *MockOrderGateway) GetOrder(ctx context.Context, session *domain.AdminSession, id string) (*domain.OrderDetail, error) {
	args := m.Called(ctx, session, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.OrderDetail), args.Error(1)
}

func (m *MockMailer) Send(ctx context.Context, email mailer.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

func (m *MockPublisher) Publish(ctx context.Context, topic string, message any) error {
	args := m.Called(ctx, topic, message)
	return args.Error(0)
}

func (m *MockAuthenticator) Authenticate(ctx context.Context, token string) (*domain.AdminSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AdminSession), args.Error(1)
}

func (m *MockAttachmentStore) Store(name string, r io.Reader) (*domain.Attachment, error) {
	args := m.Called(name, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Attachment), args.Error(1)
}
