package enrich

import (
	"context"
	"errors"

	"golang.org/x/sync/errgroup"

	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
)

// applyVisits attaches the window's page-view count to every row. Failed
// lookups report zero so the column stays comparable across the page.
func (e *Enricher) applyVisits(ctx context.Context, req types.ItemsRequest, rows []*types.Row, st *sourceState) {
	var group errgroup.Group
	group.SetLimit(e.tuning.Workers)
	for _, row := range rows {
		row := row
		group.Go(func() error {
			total := e.itemVisits(ctx, req, row.ProductID, st)
			row.Visits = &total
			return nil
		})
	}
	_ = group.Wait()
}

func (e *Enricher) itemVisits(ctx context.Context, req types.ItemsRequest, itemID string, st *sourceState) int64 {
	resp, err := e.api.ItemVisits(ctx, req.Token, itemID, req.DateFrom, req.DateTo, st.trace)
	if err != nil {
		if !errors.Is(err, marketplace.ErrNoData) {
			st.addDegraded(itemID, err)
			e.metrics.IncDegradation("visits")
			lctx := e.logg.WithFields(ctx, map[string]any{"item_id": itemID, "error": err.Error()})
			e.logg.Warn(lctx, "visits lookup degraded to zero")
		}
		return 0
	}
	if len(resp.Results) > 0 {
		var total int64
		for _, day := range resp.Results {
			total += day.Total
		}
		return total
	}
	return resp.TotalVisits
}
