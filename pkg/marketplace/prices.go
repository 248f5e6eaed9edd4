package marketplace

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

// PriceConditions is the validity window of a price entry. Either bound may
// be absent, meaning open-ended.
type PriceConditions struct {
	StartTime *time.Time `json:"start_time"`
	EndTime   *time.Time `json:"end_time"`
}

// PriceMetadata names the mechanism that produced a promotional entry.
type PriceMetadata struct {
	CampaignID    string `json:"campaign_id"`
	PromotionType string `json:"promotion_type"`
}

// PriceEntry is one entry of an item's price-structure document. Shapes vary
// across API versions; RegularAmount is absent for plain standard prices.
type PriceEntry struct {
	Type          string          `json:"type"`
	Amount        float64         `json:"amount"`
	RegularAmount *float64        `json:"regular_amount"`
	Conditions    PriceConditions `json:"conditions"`
	Metadata      PriceMetadata   `json:"metadata"`
}

// PriceDocument is the current price structure of an item.
type PriceDocument struct {
	ItemID string       `json:"id"`
	Prices []PriceEntry `json:"prices"`
}

// ItemPrices fetches the item's current price-structure document.
func (c *Client) ItemPrices(ctx context.Context, token, itemID string, trace *Trace) (*PriceDocument, error) {
	path := fmt.Sprintf("/items/%s/prices", url.PathEscape(itemID))

	var doc PriceDocument
	if err := c.get(ctx, token, "item_prices", path, nil, nil, &doc, trace); err != nil {
		return nil, fmt.Errorf("item prices %s: %w", itemID, err)
	}
	return &doc, nil
}
