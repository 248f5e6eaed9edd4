package types

import (
	"time"

	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
)

// Metric selects which value drives classification and sorting.
type Metric string

const (
	MetricUnits   Metric = "units"
	MetricRevenue Metric = "revenue"
)

func (m Metric) IsValid() bool {
	return m == MetricUnits || m == MetricRevenue
}

// GroupBy selects the grouping-key granularity.
type GroupBy string

const (
	GroupByProduct   GroupBy = "product"
	GroupByVariation GroupBy = "variation"
)

func (g GroupBy) IsValid() bool {
	return g == GroupByProduct || g == GroupByVariation
}

// LogisticsFilter restricts which transactions enter the aggregation.
type LogisticsFilter string

const (
	LogisticsAll         LogisticsFilter = "all"
	LogisticsFulfillment LogisticsFilter = "fulfillment"
	LogisticsSelfService LogisticsFilter = "self_service"
)

func (f LogisticsFilter) IsValid() bool {
	switch f {
	case LogisticsAll, LogisticsFulfillment, LogisticsSelfService:
		return true
	}
	return false
}

// SortKey orders the items listing. All keys sort descending.
type SortKey string

const (
	SortUnits           SortKey = "units"
	SortRevenue         SortKey = "revenue"
	SortCumulativeShare SortKey = "cumulative_share"
)

func (s SortKey) IsValid() bool {
	switch s {
	case SortUnits, SortRevenue, SortCumulativeShare:
		return true
	}
	return false
}

// Cut point bounds. CutB additionally must exceed CutA.
const (
	DefaultCutA = 0.75
	DefaultCutB = 0.92
	MinCutA     = 0.50
	MaxCutA     = 0.98
	MaxCutB     = 0.99
)

// ReportRequest scopes one classification computation.
type ReportRequest struct {
	Token    string
	SellerID string

	DateFrom time.Time
	DateTo   time.Time

	Metric    Metric
	GroupBy   GroupBy
	CutA      float64
	CutB      float64
	MinUnits  int64
	Logistics LogisticsFilter
}

// Normalize fills defaults and clamps the cut points to sane bounds.
func (r *ReportRequest) Normalize() {
	if r.Metric == "" {
		r.Metric = MetricUnits
	}
	if r.GroupBy == "" {
		r.GroupBy = GroupByProduct
	}
	if r.Logistics == "" {
		r.Logistics = LogisticsAll
	}
	if r.CutA == 0 {
		r.CutA = DefaultCutA
	}
	if r.CutB == 0 {
		r.CutB = DefaultCutB
	}
	if r.CutA < MinCutA {
		r.CutA = MinCutA
	}
	if r.CutA > MaxCutA {
		r.CutA = MaxCutA
	}
	if r.CutB <= r.CutA {
		r.CutB = r.CutA + 0.01
	}
	if r.CutB > MaxCutB {
		r.CutB = MaxCutB
	}
	if r.MinUnits < 0 {
		r.MinUnits = 0
	}
}

// EnrichmentOptions toggles the page-scoped enrichment sources.
type EnrichmentOptions struct {
	WithAds       bool
	WithDiscounts bool
	WithVisits    bool
	Debug         bool
}

// Any reports whether at least one source is requested.
func (o EnrichmentOptions) Any() bool {
	return o.WithAds || o.WithDiscounts || o.WithVisits
}

// ItemsRequest scopes the paginated items listing.
type ItemsRequest struct {
	ReportRequest

	Tier  Tier
	Query string
	Sort  SortKey
	Page  int
	Limit int

	Enrichment EnrichmentOptions
}

// TierCard is one per-tier aggregate block of the summary response.
type TierCard struct {
	Tier           Tier    `json:"tier"`
	Items          int     `json:"items"`
	Units          int64   `json:"units"`
	RevenueCents   int64   `json:"revenue_cents"`
	AvgTicketCents int64   `json:"avg_ticket_cents"`
	RevenueShare   float64 `json:"revenue_share"`
}

// Totals are the grand totals over the classified population.
type Totals struct {
	Items        int   `json:"items"`
	Units        int64 `json:"units"`
	RevenueCents int64 `json:"revenue_cents"`
}

// SummaryResponse is the per-tier dashboard payload.
type SummaryResponse struct {
	Tiers   []TierCard     `json:"tiers"`
	Totals  Totals         `json:"totals"`
	Preview map[Tier][]Row `json:"preview"`
}

// SourceDebug is the per-source diagnostic block, present only when debug
// output is requested.
type SourceDebug struct {
	Degraded []string                 `json:"degraded,omitempty"`
	Errors   []string                 `json:"errors,omitempty"`
	Trace    []marketplace.TraceEntry `json:"trace,omitempty"`
}

// DebugBlock groups the per-source diagnostics.
type DebugBlock struct {
	Ads       *SourceDebug `json:"ads,omitempty"`
	Discounts *SourceDebug `json:"discounts,omitempty"`
	Visits    *SourceDebug `json:"visits,omitempty"`
}

// ItemsResponse is the paginated, classified, enriched listing.
type ItemsResponse struct {
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
	Total int         `json:"total"`
	Data  []Row       `json:"data"`
	Debug *DebugBlock `json:"debug,omitempty"`
}
