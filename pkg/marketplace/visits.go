package marketplace

import (
	"context"
	"fmt"
	"net/url"
	"time"
)

const dateOnly = "2006-01-02"

// DailyVisits is one day of page views for an item.
type DailyVisits struct {
	Date  string `json:"date"`
	Total int64  `json:"total"`
}

// VisitsResponse is the per-item page-view report for a window.
type VisitsResponse struct {
	ItemID      string        `json:"item_id"`
	TotalVisits int64         `json:"total_visits"`
	Results     []DailyVisits `json:"results"`
}

// ItemVisits fetches page-view counts for one item in the window. The
// upstream endpoint has no batch form for this metric.
func (c *Client) ItemVisits(ctx context.Context, token, itemID string, from, to time.Time, trace *Trace) (*VisitsResponse, error) {
	path := fmt.Sprintf("/items/%s/visits", url.PathEscape(itemID))
	query := url.Values{}
	query.Set("date_from", from.Format(dateOnly))
	query.Set("date_to", to.Format(dateOnly))

	var resp VisitsResponse
	if err := c.get(ctx, token, "item_visits", path, query, nil, &resp, trace); err != nil {
		return nil, fmt.Errorf("item visits %s: %w", itemID, err)
	}
	return &resp, nil
}
