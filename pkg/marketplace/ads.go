package marketplace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	adsAPIVersionHeader = "Api-Version"
	adsAPIVersionV2     = "2"
	adsAPIVersionV1     = "1"

	adsProductID = "PADS"
)

// Advertiser is one advertising account reachable with the seller's token.
type Advertiser struct {
	AdvertiserID string `json:"advertiser_id"`
	SiteID       string `json:"site_id"`
	Name         string `json:"name"`
}

// AdMetrics is the normalized per-item advertising performance shape. Both
// endpoint generations map into it.
type AdMetrics struct {
	Clicks         int64   `json:"clicks"`
	Prints         int64   `json:"prints"`
	Cost           float64 `json:"cost"`
	Amount         float64 `json:"amount"`
	CampaignStatus string  `json:"campaign_status"`
}

// AdItemStatus is the v2 single-item campaign membership lookup.
type AdItemStatus struct {
	ItemID     string `json:"item_id"`
	Status     string `json:"status"`
	CampaignID string `json:"campaign_id"`
}

// Advertisers discovers the advertising accounts for the product-ads product.
func (c *Client) Advertisers(ctx context.Context, token string, trace *Trace) ([]Advertiser, error) {
	query := url.Values{}
	query.Set("product_id", adsProductID)

	var resp struct {
		Advertisers []Advertiser `json:"advertisers"`
	}
	if err := c.get(ctx, token, "advertisers", "/advertising/advertisers", query, nil, &resp, trace); err != nil {
		return nil, fmt.Errorf("advertisers: %w", err)
	}
	return resp.Advertisers, nil
}

// AdsMetricsBatch runs the advertiser-scoped batch metrics query (v2) over up
// to ~100 item ids at once. Items missing from the result simply have no key
// in the returned map.
func (c *Client) AdsMetricsBatch(ctx context.Context, token, advertiserID string, itemIDs, channels []string, from, to time.Time, trace *Trace) (map[string]AdMetrics, error) {
	path := fmt.Sprintf("/advertising/advertisers/%s/product_ads/metrics", url.PathEscape(advertiserID))
	query := url.Values{}
	query.Set("ids", strings.Join(itemIDs, ","))
	query.Set("channels", strings.Join(channels, ","))
	query.Set("date_from", from.Format(dateOnly))
	query.Set("date_to", to.Format(dateOnly))

	header := http.Header{}
	header.Set(adsAPIVersionHeader, adsAPIVersionV2)

	var resp struct {
		Results []struct {
			ID       string  `json:"id"`
			Clicks   int64   `json:"clicks"`
			Prints   int64   `json:"prints"`
			Cost     float64 `json:"cost"`
			Amount   float64 `json:"amount"`
			Campaign struct {
				Status string `json:"status"`
			} `json:"campaign"`
		} `json:"results"`
	}
	if err := c.get(ctx, token, "ads_metrics_batch", path, query, header, &resp, trace); err != nil {
		return nil, fmt.Errorf("ads batch metrics: %w", err)
	}

	metrics := make(map[string]AdMetrics, len(resp.Results))
	for _, row := range resp.Results {
		metrics[row.ID] = AdMetrics{
			Clicks:         row.Clicks,
			Prints:         row.Prints,
			Cost:           row.Cost,
			Amount:         row.Amount,
			CampaignStatus: row.Campaign.Status,
		}
	}
	return metrics, nil
}

// AdsItemStatus looks up a single item's campaign membership (v2).
func (c *Client) AdsItemStatus(ctx context.Context, token, itemID string, trace *Trace) (*AdItemStatus, error) {
	path := fmt.Sprintf("/advertising/product_ads/items/%s", url.PathEscape(itemID))
	header := http.Header{}
	header.Set(adsAPIVersionHeader, adsAPIVersionV2)

	var status AdItemStatus
	if err := c.get(ctx, token, "ads_item_status", path, nil, header, &status, trace); err != nil {
		return nil, fmt.Errorf("ads item status %s: %w", itemID, err)
	}
	return &status, nil
}

// AdsItemMetrics fetches a single item's metrics on the current endpoint (v2).
func (c *Client) AdsItemMetrics(ctx context.Context, token, itemID string, from, to time.Time, trace *Trace) (*AdMetrics, error) {
	path := fmt.Sprintf("/advertising/product_ads/items/%s/metrics", url.PathEscape(itemID))
	query := url.Values{}
	query.Set("date_from", from.Format(dateOnly))
	query.Set("date_to", to.Format(dateOnly))

	header := http.Header{}
	header.Set(adsAPIVersionHeader, adsAPIVersionV2)

	var metrics AdMetrics
	if err := c.get(ctx, token, "ads_item_metrics", path, query, header, &metrics, trace); err != nil {
		return nil, fmt.Errorf("ads item metrics %s: %w", itemID, err)
	}
	return &metrics, nil
}

// AdsItemLegacy fetches a single item's metrics on the first-generation
// endpoint, whose flat response shape predates the campaign envelope.
func (c *Client) AdsItemLegacy(ctx context.Context, token, itemID string, from, to time.Time, trace *Trace) (*AdMetrics, error) {
	path := fmt.Sprintf("/advertising/items/%s", url.PathEscape(itemID))
	query := url.Values{}
	query.Set("date_from", from.Format(dateOnly))
	query.Set("date_to", to.Format(dateOnly))

	header := http.Header{}
	header.Set(adsAPIVersionHeader, adsAPIVersionV1)

	var resp struct {
		Clicks      int64   `json:"clicks"`
		Impressions int64   `json:"impressions"`
		TotalCost   float64 `json:"total_cost"`
		TotalAmount float64 `json:"total_amount"`
		Status      string  `json:"status"`
	}
	if err := c.get(ctx, token, "ads_item_legacy", path, query, header, &resp, trace); err != nil {
		return nil, fmt.Errorf("ads item legacy %s: %w", itemID, err)
	}
	return &AdMetrics{
		Clicks:         resp.Clicks,
		Prints:         resp.Impressions,
		Cost:           resp.TotalCost,
		Amount:         resp.TotalAmount,
		CampaignStatus: resp.Status,
	}, nil
}
