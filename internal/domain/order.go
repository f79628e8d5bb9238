package domain

import (
	"strings"
	"time"
)

// OrderGIDPrefix is the prefix Shopify puts on order identifiers.
const OrderGIDPrefix = "gid://shopify/Order/"

type LineItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Order is the local mirror of an upstream order. It is written once, on the
// first detail view, and never updated afterwards.
type Order struct {
	ID           string     `json:"id" gorm:"primaryKey;size:64"`
	TotalPrice   string     `json:"totalPrice" gorm:"size:32"`
	CustomerName string     `json:"customerName" gorm:"size:255"`
	LineItems    []LineItem `json:"lineItems" gorm:"serializer:json;type:json"`
	CreatedAt    time.Time  `json:"createdAt" gorm:"autoCreateTime"`
}

type OrderSummary struct {
	ID         string     `json:"id"`
	TotalPrice string     `json:"totalPrice"`
	LineItems  []LineItem `json:"lineItems"`
}

type OrderDetail struct {
	ID           string     `json:"id"`
	TotalPrice   string     `json:"totalPrice"`
	CustomerName string     `json:"customerName,omitempty"`
	LineItems    []LineItem `json:"lineItems"`
}

func (d *OrderDetail) Mirror() *Order {
	return &Order{
		ID:           d.ID,
		TotalPrice:   d.TotalPrice,
		CustomerName: d.CustomerName,
		LineItems:    d.LineItems,
	}
}

// NormalizeOrderID strips the upstream URI prefix from an order id.
func NormalizeOrderID(id string) string {
	return strings.TrimPrefix(id, OrderGIDPrefix)
}

// OrderGID turns a bare order id into the upstream global id. Ids that
// already carry the prefix are returned unchanged.
func OrderGID(id string) string {
	if strings.HasPrefix(id, OrderGIDPrefix) {
		return id
	}
	return OrderGIDPrefix + id
}
