package infra

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"order-timeline/internal/domain"
	"order-timeline/internal/metrics"
)

var ErrOrderNotFound = errors.New("order not found")

const listOrdersQuery = `query ListOrders($first: Int!) {
  orders(first: $first) {
    edges {
      node {
        id
        totalPriceSet { shopMoney { amount } }
        lineItems(first: $first) {
          edges { node { id name } }
        }
      }
    }
  }
}`

const getOrderQuery = `query GetOrder($id: ID!, $first: Int!) {
  order(id: $id) {
    id
    totalPriceSet { shopMoney { amount } }
    customer { displayName }
    lineItems(first: $first) {
      edges { node { id name } }
    }
  }
}`

// LineItemLimit is how many line items are fetched per order.
const LineItemLimit = 10

type gqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

type gqlError struct {
	Message string `json:"message"`
}

type gqlOrderNode struct {
	ID            string `json:"id"`
	TotalPriceSet struct {
		ShopMoney struct {
			Amount string `json:"amount"`
		} `json:"shopMoney"`
	} `json:"totalPriceSet"`
	Customer *struct {
		DisplayName string `json:"displayName"`
	} `json:"customer"`
	LineItems struct {
		Edges []struct {
			Node domain.LineItem `json:"node"`
		} `json:"edges"`
	} `json:"lineItems"`
}

func (n gqlOrderNode) lineItems() []domain.LineItem {
	items := make([]domain.LineItem, 0, len(n.LineItems.Edges))
	for _, e := range n.LineItems.Edges {
		items = append(items, e.Node)
	}
	return items
}

type listOrdersData struct {
	Orders struct {
		Edges []struct {
			Node gqlOrderNode `json:"node"`
		} `json:"edges"`
	} `json:"orders"`
}

type getOrderData struct {
	Order *gqlOrderNode `json:"order"`
}

// ShopifyClient talks to the Shopify Admin GraphQL API on behalf of the shop
// in the request's session. It never retries and never caches.
type ShopifyClient struct {
	baseURL    string
	apiVersion string
	httpClient *http.Client
}

// NewShopifyClient builds a client. An empty baseURL means
// https://<session shop>.
func NewShopifyClient(baseURL, apiVersion string, timeout time.Duration) *ShopifyClient {
	return &ShopifyClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiVersion: apiVersion,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *ShopifyClient) ListOrders(ctx context.Context, session *domain.AdminSession, limit int) ([]domain.OrderSummary, error) {
	var data listOrdersData
	if err := c.do(ctx, "list_orders", session, listOrdersQuery, map[string]any{"first": limit}, &data); err != nil {
		return nil, err
	}

	out := make([]domain.OrderSummary, 0, len(data.Orders.Edges))
	for _, e := range data.Orders.Edges {
		out = append(out, domain.OrderSummary{
			ID:         domain.NormalizeOrderID(e.Node.ID),
			TotalPrice: e.Node.TotalPriceSet.ShopMoney.Amount,
			LineItems:  e.Node.lineItems(),
		})
	}
	return out, nil
}

func (c *ShopifyClient) GetOrder(ctx context.Context, session *domain.AdminSession, id string) (*domain.OrderDetail, error) {
	vars := map[string]any{"id": domain.OrderGID(id), "first": LineItemLimit}

	var data getOrderData
	if err := c.do(ctx, "get_order", session, getOrderQuery, vars, &data); err != nil {
		return nil, err
	}
	if data.Order == nil {
		return nil, ErrOrderNotFound
	}

	detail := &domain.OrderDetail{
		ID:         domain.NormalizeOrderID(data.Order.ID),
		TotalPrice: data.Order.TotalPriceSet.ShopMoney.Amount,
		LineItems:  data.Order.lineItems(),
	}
	if data.Order.Customer != nil {
		detail.CustomerName = data.Order.Customer.DisplayName
	}
	return detail, nil
}

func (c *ShopifyClient) endpoint(shop string) string {
	base := c.baseURL
	if base == "" {
		base = "https://" + shop
	}
	return fmt.Sprintf("%s/admin/api/%s/graphql.json", base, c.apiVersion)
}

func (c *ShopifyClient) do(ctx context.Context, op string, session *domain.AdminSession, query string, vars map[string]any, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.ShopifyGraphQLDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
		if err != nil && !errors.Is(err, ErrOrderNotFound) {
			metrics.ShopifyGraphQLFailuresTotal.WithLabelValues(op).Inc()
		}
	}()

	if session == nil {
		return errors.New("shopify: missing admin session")
	}

	body, err := json.Marshal(gqlRequest{Query: query, Variables: vars})
	if err != nil {
		return fmt.Errorf("encode graphql request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(session.Shop), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", session.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("shopify %s: unexpected status %d: %s", op, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var envelope struct {
		Data   json.RawMessage `json:"data"`
		Errors []gqlError      `json:"errors"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return fmt.Errorf("shopify %s: decode response: %w", op, err)
	}
	if len(envelope.Errors) > 0 {
		msgs := make([]string, 0, len(envelope.Errors))
		for _, e := range envelope.Errors {
			msgs = append(msgs, e.Message)
		}
		return fmt.Errorf("shopify %s: %s", op, strings.Join(msgs, "; "))
	}
	if len(envelope.Data) == 0 || string(envelope.Data) == "null" {
		return fmt.Errorf("shopify %s: empty data", op)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("shopify %s: decode data: %w", op, err)
	}
	return nil
}
