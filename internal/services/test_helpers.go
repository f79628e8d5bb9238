package services

import (
	"order-timeline/internal/domain"
)

func CreateMockOrderDetail(id, customer string) *domain.OrderDetail {
	return &domain.OrderDetail{
		ID:           id,
		TotalPrice:   TestTotalPrice,
		CustomerName: customer,
		LineItems:    []domain.LineItem{{ID: "gid://shopify/LineItem/1", Name: TestLineItemName}},
	}
}

func CreateMockTemplate(body string) *domain.EmailTemplate {
	return &domain.EmailTemplate{
		ID:          domain.ActiveTemplateID,
		FromAddress: TestFromAddress,
		Subject:     TestSubject,
		Body:        body,
	}
}

const (
	TestOrderID      = "1001"
	TestTotalPrice   = "42.00"
	TestLineItemName = "Test Widget"
	TestFromAddress  = "shop@example.com"
	TestRecipient    = "ops@example.com"
	TestSubject      = "Order update"
	TestFallbackName = "Customer"
)
