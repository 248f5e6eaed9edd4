package enrich

import (
	"context"
	"errors"
	"math"

	"golang.org/x/sync/errgroup"

	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
)

const (
	adsSourceBatch  = "batch"
	adsSourceSingle = "single"
	adsSourceLegacy = "legacy"
	adsSourceNone   = "none"
)

// applyAds attaches advertising performance to every row. The batch endpoint
// covers most items in one call; items it misses fall through the single-item
// endpoint and then the legacy one. Items no endpoint knows get a neutral
// attachment so the response shape stays uniform.
func (e *Enricher) applyAds(ctx context.Context, req types.ItemsRequest, rows []*types.Row, st *sourceState) {
	batch := map[string]marketplace.AdMetrics{}

	advertiserID, err := e.resolveAdvertiser(ctx, req.Token, req.SellerID, st.trace)
	if err != nil {
		lctx := e.logg.WithField(ctx, "error", err.Error())
		e.logg.Warn(lctx, "advertiser resolution failed, falling back to per-item ads lookups")
	}
	if advertiserID != "" {
		batch = e.fetchAdsBatch(ctx, req, advertiserID, rows, st)
	}

	var group errgroup.Group
	group.SetLimit(e.tuning.Workers)
	for _, row := range rows {
		if m, ok := batch[row.ProductID]; ok {
			attachAds(row, m, adsSourceBatch)
			continue
		}
		row := row
		group.Go(func() error {
			e.adsItemFallback(ctx, req, row, st)
			return nil
		})
	}
	_ = group.Wait()
}

// fetchAdsBatch runs the advertiser-scoped metrics query in chunks. A failed
// chunk only degrades its own items to the per-item path.
func (e *Enricher) fetchAdsBatch(ctx context.Context, req types.ItemsRequest, advertiserID string, rows []*types.Row, st *sourceState) map[string]marketplace.AdMetrics {
	seen := map[string]struct{}{}
	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if _, ok := seen[row.ProductID]; ok {
			continue
		}
		seen[row.ProductID] = struct{}{}
		ids = append(ids, row.ProductID)
	}

	out := make(map[string]marketplace.AdMetrics, len(ids))
	for start := 0; start < len(ids); start += e.tuning.AdsBatchMax {
		end := start + e.tuning.AdsBatchMax
		if end > len(ids) {
			end = len(ids)
		}
		chunk, err := e.api.AdsMetricsBatch(ctx, req.Token, advertiserID, ids[start:end], e.ads.Channels, req.DateFrom, req.DateTo, st.trace)
		if err != nil {
			lctx := e.logg.WithFields(ctx, map[string]any{"error": err.Error(), "chunk_size": end - start})
			e.logg.Warn(lctx, "ads batch metrics chunk failed")
			continue
		}
		for id, m := range chunk {
			out[id] = m
		}
	}
	return out
}

// adsItemFallback works one item through the single-item endpoint, then the
// legacy endpoint, and finally attaches a neutral record.
func (e *Enricher) adsItemFallback(ctx context.Context, req types.ItemsRequest, row *types.Row, st *sourceState) {
	status, statusErr := e.api.AdsItemStatus(ctx, req.Token, row.ProductID, st.trace)
	if statusErr == nil {
		m, err := e.api.AdsItemMetrics(ctx, req.Token, row.ProductID, req.DateFrom, req.DateTo, st.trace)
		if err == nil {
			if m.CampaignStatus == "" {
				m.CampaignStatus = status.Status
			}
			attachAds(row, *m, adsSourceSingle)
			return
		}
		statusErr = err
	}

	if legacy, err := e.api.AdsItemLegacy(ctx, req.Token, row.ProductID, req.DateFrom, req.DateTo, st.trace); err == nil {
		attachAds(row, *legacy, adsSourceLegacy)
		return
	}

	row.Ads = &types.AdsAttachment{ResolvedThrough: adsSourceNone}
	if errors.Is(statusErr, marketplace.ErrNoData) {
		// Item never advertised; not a degradation.
		return
	}
	st.addDegraded(row.ProductID, statusErr)
	e.metrics.IncDegradation("ads")
}

func attachAds(row *types.Row, m marketplace.AdMetrics, through string) {
	attachment := &types.AdsAttachment{
		Clicks:          m.Clicks,
		Prints:          m.Prints,
		CostCents:       int64(math.Round(m.Cost * 100)),
		AdRevenueCents:  int64(math.Round(m.Amount * 100)),
		InCampaign:      m.CampaignStatus != "",
		HasActivity:     m.Clicks > 0 || m.Prints > 0 || m.Cost > 0 || m.Amount > 0,
		ResolvedThrough: through,
		CampaignStatus:  m.CampaignStatus,
	}
	if m.Amount > 0 {
		attachment.ACOS = m.Cost / m.Amount
	}
	row.Ads = attachment
}

// resolveAdvertiser walks the override, site map, cache and discovery chain.
func (e *Enricher) resolveAdvertiser(ctx context.Context, token, sellerID string, trace *marketplace.Trace) (string, error) {
	if e.ads.AdvertiserID != "" {
		return e.ads.AdvertiserID, nil
	}
	if id, ok := e.ads.SiteAdvertisers[sellerID]; ok {
		return id, nil
	}
	if prefix := sitePrefix(sellerID); prefix != "" {
		if id, ok := e.ads.SiteAdvertisers[prefix]; ok {
			return id, nil
		}
	}
	if id, ok := e.cache.Get(ctx, sellerID); ok {
		return id, nil
	}

	advertisers, err := e.api.Advertisers(ctx, token, trace)
	if err != nil {
		return "", err
	}
	if len(advertisers) == 0 {
		return "", nil
	}
	id := advertisers[0].AdvertiserID
	e.cache.Set(ctx, sellerID, id)
	return id, nil
}

// sitePrefix extracts the leading letters of a marketplace identifier, e.g.
// "MLA" from "MLA123456".
func sitePrefix(id string) string {
	for i, r := range id {
		if r < 'A' || r > 'Z' {
			return id[:i]
		}
	}
	return id
}
