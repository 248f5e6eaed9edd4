package enrich

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
	"github.com/sellerpulse/sellerpulse-backend/pkg/config"
	"github.com/sellerpulse/sellerpulse-backend/pkg/logger"
	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
)

// stubAPI lets each test script the upstream surface. Unset hooks report no
// data, which is the upstream's way of saying "this item is unknown here".
type stubAPI struct {
	mu    sync.Mutex
	calls map[string]int

	itemPrices      func(itemID string) (*marketplace.PriceDocument, error)
	itemVisits      func(itemID string) (*marketplace.VisitsResponse, error)
	advertisers     func() ([]marketplace.Advertiser, error)
	adsMetricsBatch func(advertiserID string, itemIDs []string) (map[string]marketplace.AdMetrics, error)
	adsItemStatus   func(itemID string) (*marketplace.AdItemStatus, error)
	adsItemMetrics  func(itemID string) (*marketplace.AdMetrics, error)
	adsItemLegacy   func(itemID string) (*marketplace.AdMetrics, error)
}

func (s *stubAPI) record(name string) {
	s.mu.Lock()
	if s.calls == nil {
		s.calls = map[string]int{}
	}
	s.calls[name]++
	s.mu.Unlock()
}

func (s *stubAPI) callCount(name string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[name]
}

func (s *stubAPI) ItemPrices(_ context.Context, _, itemID string, _ *marketplace.Trace) (*marketplace.PriceDocument, error) {
	s.record("item_prices")
	if s.itemPrices == nil {
		return nil, marketplace.ErrNoData
	}
	return s.itemPrices(itemID)
}

func (s *stubAPI) ItemVisits(_ context.Context, _, itemID string, _, _ time.Time, _ *marketplace.Trace) (*marketplace.VisitsResponse, error) {
	s.record("item_visits")
	if s.itemVisits == nil {
		return nil, marketplace.ErrNoData
	}
	return s.itemVisits(itemID)
}

func (s *stubAPI) Advertisers(_ context.Context, _ string, _ *marketplace.Trace) ([]marketplace.Advertiser, error) {
	s.record("advertisers")
	if s.advertisers == nil {
		return nil, errors.New("advertisers unavailable")
	}
	return s.advertisers()
}

func (s *stubAPI) AdsMetricsBatch(_ context.Context, _, advertiserID string, itemIDs, _ []string, _, _ time.Time, _ *marketplace.Trace) (map[string]marketplace.AdMetrics, error) {
	s.record("ads_metrics_batch")
	if s.adsMetricsBatch == nil {
		return nil, errors.New("batch unavailable")
	}
	return s.adsMetricsBatch(advertiserID, itemIDs)
}

func (s *stubAPI) AdsItemStatus(_ context.Context, _, itemID string, _ *marketplace.Trace) (*marketplace.AdItemStatus, error) {
	s.record("ads_item_status")
	if s.adsItemStatus == nil {
		return nil, marketplace.ErrNoData
	}
	return s.adsItemStatus(itemID)
}

func (s *stubAPI) AdsItemMetrics(_ context.Context, _, itemID string, _, _ time.Time, _ *marketplace.Trace) (*marketplace.AdMetrics, error) {
	s.record("ads_item_metrics")
	if s.adsItemMetrics == nil {
		return nil, marketplace.ErrNoData
	}
	return s.adsItemMetrics(itemID)
}

func (s *stubAPI) AdsItemLegacy(_ context.Context, _, itemID string, _, _ time.Time, _ *marketplace.Trace) (*marketplace.AdMetrics, error) {
	s.record("ads_item_legacy")
	if s.adsItemLegacy == nil {
		return nil, marketplace.ErrNoData
	}
	return s.adsItemLegacy(itemID)
}

func testEnricher(api MarketplaceAPI, ads config.AdsConfig) *Enricher {
	logg := logger.New(logger.Options{
		ServiceName: "enrich-test",
		Level:       zerolog.Disabled,
		Output:      io.Discard,
	})
	enricher, err := New(Params{
		API:    api,
		Cache:  NewMemoryAdvertiserCache(time.Hour),
		Ads:    ads,
		Tuning: config.EnrichmentConfig{Workers: 2, AdsBatchMax: 100},
		Logger: logg,
	})
	if err != nil {
		panic(err)
	}
	return enricher
}

func pageRequest(debug bool, opts types.EnrichmentOptions) types.ItemsRequest {
	opts.Debug = debug
	return types.ItemsRequest{
		ReportRequest: types.ReportRequest{
			Token:    "token",
			SellerID: "MLA123",
			DateFrom: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
			DateTo:   time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		},
		Enrichment: opts,
	}
}

func pageRows(ids ...string) []*types.Row {
	rows := make([]*types.Row, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, &types.Row{ProductID: id, Units: 1, RevenueCents: 100})
	}
	return rows
}
