package types

// Tier is the Pareto classification bucket of a row.
type Tier string

const (
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
)

func (t Tier) IsValid() bool {
	switch t {
	case TierA, TierB, TierC:
		return true
	}
	return false
}

// RollingWindows holds trailing units-sold counters anchored at the report's
// end date. Each window is a superset of the narrower ones, so D90 >= D60 >=
// D40 >= D30 >= D15 >= D7 always holds.
type RollingWindows struct {
	D7  int64 `json:"units_7d"`
	D15 int64 `json:"units_15d"`
	D30 int64 `json:"units_30d"`
	D40 int64 `json:"units_40d"`
	D60 int64 `json:"units_60d"`
	D90 int64 `json:"units_90d"`
}

// AdsAttachment is the best-effort advertising annotation for one row.
type AdsAttachment struct {
	Clicks          int64   `json:"clicks"`
	Prints          int64   `json:"prints"`
	CostCents       int64   `json:"cost_cents"`
	AdRevenueCents  int64   `json:"ad_revenue_cents"`
	InCampaign      bool    `json:"in_campaign"`
	HasActivity     bool    `json:"has_activity"`
	ResolvedThrough string  `json:"resolved_through"`
	CampaignStatus  string  `json:"campaign_status,omitempty"`
	ACOS            float64 `json:"acos"`
}

// DiscountAttachment is the active-discount snapshot for one row.
type DiscountAttachment struct {
	Active  bool     `json:"active"`
	Percent *float64 `json:"percent"`
	Source  *string  `json:"source"`
}

// Row is the per-grouping-key accumulator plus its classification and any
// page-scoped enrichment attachments.
type Row struct {
	ProductID   string `json:"product_id"`
	VariationID string `json:"variation_id,omitempty"`
	Title       string `json:"title"`
	Fulfillment bool   `json:"fulfillment"`

	Units        int64          `json:"units"`
	RevenueCents int64          `json:"revenue_cents"`
	Windows      RollingWindows `json:"rolling_units"`

	CumulativeShare float64 `json:"cumulative_share"`
	Tier            Tier    `json:"tier"`
	UnitShare       float64 `json:"unit_share"`
	RevenueShare    float64 `json:"revenue_share"`

	Ads      *AdsAttachment      `json:"ads,omitempty"`
	Discount *DiscountAttachment `json:"discount,omitempty"`
	Visits   *int64              `json:"visits,omitempty"`
}

// Key returns the grouping identity of the row.
func (r *Row) Key() string {
	if r.VariationID == "" {
		return r.ProductID
	}
	return r.ProductID + "|" + r.VariationID
}

// MetricValue returns the row's value for the chosen classification metric.
func (r *Row) MetricValue(metric Metric) int64 {
	if metric == MetricRevenue {
		return r.RevenueCents
	}
	return r.Units
}
