package abc

import (
	"context"

	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
)

// OrderSource is the slice of the marketplace client the core path needs.
type OrderSource interface {
	SearchOrders(ctx context.Context, token string, q marketplace.OrderQuery) (*marketplace.OrderSearchPage, error)
}

// Enricher annotates the rows of one result page. Implementations degrade to
// neutral defaults per item, never fail the request, and return a debug block
// only when the request asks for one.
type Enricher interface {
	Apply(ctx context.Context, req types.ItemsRequest, rows []*types.Row) *types.DebugBlock
}
