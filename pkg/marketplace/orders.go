package marketplace

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"
)

// LogisticTypeFulfillment marks orders shipped from the platform's own
// warehouses; every other logistic type is seller-managed.
const LogisticTypeFulfillment = "fulfillment"

// OrderItem is one line item of a paid order.
type OrderItem struct {
	Item struct {
		ID          string `json:"id"`
		Title       string `json:"title"`
		VariationID string `json:"variation_id"`
	} `json:"item"`
	Quantity  int64   `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}

// Order is one paid transaction returned by the order search.
type Order struct {
	ID           int64       `json:"id"`
	DateCreated  time.Time   `json:"date_created"`
	LogisticType string      `json:"logistic_type"`
	OrderItems   []OrderItem `json:"order_items"`
}

// Fulfillment reports whether the order shipped via platform logistics.
func (o Order) Fulfillment() bool {
	return o.LogisticType == LogisticTypeFulfillment
}

// Paging mirrors the upstream offset/limit envelope.
type Paging struct {
	Total  int `json:"total"`
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

// OrderSearchPage is one page of the paid-order search.
type OrderSearchPage struct {
	Paging  Paging  `json:"paging"`
	Results []Order `json:"results"`
}

// OrderQuery scopes one page of the paid-order search.
type OrderQuery struct {
	SellerID string
	From     time.Time
	To       time.Time
	Offset   int
	Limit    int
	Trace    *Trace
}

// SearchOrders fetches one page of the seller's paid orders in the window.
func (c *Client) SearchOrders(ctx context.Context, token string, q OrderQuery) (*OrderSearchPage, error) {
	query := url.Values{}
	query.Set("seller", q.SellerID)
	query.Set("order.status", "paid")
	query.Set("order.date_created.from", q.From.Format(time.RFC3339))
	query.Set("order.date_created.to", q.To.Format(time.RFC3339))
	query.Set("offset", strconv.Itoa(q.Offset))
	query.Set("limit", strconv.Itoa(q.Limit))

	var page OrderSearchPage
	if err := c.get(ctx, token, "orders_search", "/orders/search", query, nil, &page, q.Trace); err != nil {
		return nil, fmt.Errorf("search orders (offset %d): %w", q.Offset, err)
	}
	return &page, nil
}
