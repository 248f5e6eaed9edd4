package enrich

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
	"github.com/sellerpulse/sellerpulse-backend/pkg/config"
	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
)

func TestAdsBatchCoversRows(t *testing.T) {
	api := &stubAPI{
		adsMetricsBatch: func(advertiserID string, itemIDs []string) (map[string]marketplace.AdMetrics, error) {
			require.Equal(t, "ADV-1", advertiserID)
			return map[string]marketplace.AdMetrics{
				"MLA1": {Clicks: 10, Prints: 500, Cost: 12.345, Amount: 100, CampaignStatus: "active"},
				"MLA2": {},
			}, nil
		},
	}
	enricher := testEnricher(api, config.AdsConfig{AdvertiserID: "ADV-1"})

	rows := pageRows("MLA1", "MLA2")
	enricher.Apply(context.Background(), pageRequest(false, types.EnrichmentOptions{WithAds: true}), rows)

	require.NotNil(t, rows[0].Ads)
	require.Equal(t, int64(1235), rows[0].Ads.CostCents)
	require.Equal(t, int64(10000), rows[0].Ads.AdRevenueCents)
	require.True(t, rows[0].Ads.InCampaign)
	require.True(t, rows[0].Ads.HasActivity)
	require.Equal(t, adsSourceBatch, rows[0].Ads.ResolvedThrough)
	require.InDelta(t, 0.12345, rows[0].Ads.ACOS, 1e-9)

	require.NotNil(t, rows[1].Ads)
	require.False(t, rows[1].Ads.HasActivity)
	require.False(t, rows[1].Ads.InCampaign)
	require.Zero(t, rows[1].Ads.ACOS)

	require.Equal(t, 0, api.callCount("ads_item_status"), "batch hit must not trigger per-item lookups")
}

func TestAdsFallsThroughSingleToLegacy(t *testing.T) {
	api := &stubAPI{
		adsMetricsBatch: func(string, []string) (map[string]marketplace.AdMetrics, error) {
			return map[string]marketplace.AdMetrics{}, nil
		},
		adsItemStatus: func(itemID string) (*marketplace.AdItemStatus, error) {
			if itemID == "MLA1" {
				return &marketplace.AdItemStatus{ItemID: itemID, Status: "active"}, nil
			}
			return nil, errors.New("v2 down")
		},
		adsItemMetrics: func(itemID string) (*marketplace.AdMetrics, error) {
			return &marketplace.AdMetrics{Clicks: 3, Cost: 1, Amount: 10}, nil
		},
		adsItemLegacy: func(itemID string) (*marketplace.AdMetrics, error) {
			return &marketplace.AdMetrics{Clicks: 7, CampaignStatus: "paused"}, nil
		},
	}
	enricher := testEnricher(api, config.AdsConfig{AdvertiserID: "ADV-1"})

	rows := pageRows("MLA1", "MLA2")
	enricher.Apply(context.Background(), pageRequest(false, types.EnrichmentOptions{WithAds: true}), rows)

	require.Equal(t, adsSourceSingle, rows[0].Ads.ResolvedThrough)
	require.Equal(t, "active", rows[0].Ads.CampaignStatus)
	require.Equal(t, int64(3), rows[0].Ads.Clicks)

	require.Equal(t, adsSourceLegacy, rows[1].Ads.ResolvedThrough)
	require.Equal(t, int64(7), rows[1].Ads.Clicks)
	require.Equal(t, "paused", rows[1].Ads.CampaignStatus)
}

func TestAdsAllSourcesFailAttachesNeutral(t *testing.T) {
	api := &stubAPI{
		adsMetricsBatch: func(string, []string) (map[string]marketplace.AdMetrics, error) {
			return nil, errors.New("batch down")
		},
		adsItemStatus: func(string) (*marketplace.AdItemStatus, error) {
			return nil, errors.New("v2 down")
		},
		adsItemLegacy: func(string) (*marketplace.AdMetrics, error) {
			return nil, errors.New("legacy down")
		},
	}
	enricher := testEnricher(api, config.AdsConfig{AdvertiserID: "ADV-1"})

	rows := pageRows("MLA1")
	debug := enricher.Apply(context.Background(), pageRequest(true, types.EnrichmentOptions{WithAds: true}), rows)

	require.NotNil(t, rows[0].Ads)
	require.Equal(t, adsSourceNone, rows[0].Ads.ResolvedThrough)
	require.Equal(t, int64(1), rows[0].Units, "core fields stay untouched")

	require.NotNil(t, debug)
	require.NotNil(t, debug.Ads)
	require.Equal(t, []string{"MLA1"}, debug.Ads.Degraded)
	require.NotEmpty(t, debug.Ads.Errors)
}

func TestAdsNeverAdvertisedIsNotDegraded(t *testing.T) {
	api := &stubAPI{
		adsMetricsBatch: func(string, []string) (map[string]marketplace.AdMetrics, error) {
			return map[string]marketplace.AdMetrics{}, nil
		},
	}
	enricher := testEnricher(api, config.AdsConfig{AdvertiserID: "ADV-1"})

	rows := pageRows("MLA1")
	debug := enricher.Apply(context.Background(), pageRequest(true, types.EnrichmentOptions{WithAds: true}), rows)

	require.Equal(t, adsSourceNone, rows[0].Ads.ResolvedThrough)
	require.Empty(t, debug.Ads.Degraded)
	require.Empty(t, debug.Ads.Errors)
}

func TestResolveAdvertiserDiscoveryAndCache(t *testing.T) {
	api := &stubAPI{
		advertisers: func() ([]marketplace.Advertiser, error) {
			return []marketplace.Advertiser{{AdvertiserID: "ADV-9", SiteID: "MLA"}}, nil
		},
	}
	enricher := testEnricher(api, config.AdsConfig{})

	id, err := enricher.resolveAdvertiser(context.Background(), "token", "MLA123", nil)
	require.NoError(t, err)
	require.Equal(t, "ADV-9", id)

	id, err = enricher.resolveAdvertiser(context.Background(), "token", "MLA123", nil)
	require.NoError(t, err)
	require.Equal(t, "ADV-9", id)
	require.Equal(t, 1, api.callCount("advertisers"), "second resolve must hit the cache")
}

func TestResolveAdvertiserSiteMapPrefix(t *testing.T) {
	api := &stubAPI{}
	enricher := testEnricher(api, config.AdsConfig{
		SiteAdvertisers: map[string]string{"MLB": "ADV-BR"},
	})

	id, err := enricher.resolveAdvertiser(context.Background(), "token", "MLB55555", nil)
	require.NoError(t, err)
	require.Equal(t, "ADV-BR", id)
	require.Equal(t, 0, api.callCount("advertisers"))
}

func TestSitePrefix(t *testing.T) {
	cases := map[string]string{
		"MLA123456": "MLA",
		"MLB1":      "MLB",
		"123":       "",
		"MCO":       "MCO",
	}
	for in, want := range cases {
		if got := sitePrefix(in); got != want {
			t.Errorf("sitePrefix(%q) = %q, want %q", in, got, want)
		}
	}
}
