package abc

import (
	"sort"

	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
)

// classify sorts rows descending by the chosen metric, assigns cumulative
// shares and tiers against the cut points, and computes each row's
// independent unit and revenue shares. Rows come back in classification
// order. A share landing exactly on a cut point stays in the better tier.
func classify(rows []types.Row, metric types.Metric, cutA, cutB float64) []types.Row {
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].MetricValue(metric) > rows[j].MetricValue(metric)
	})

	var totalMetric, totalUnits, totalRevenue int64
	for i := range rows {
		totalMetric += rows[i].MetricValue(metric)
		totalUnits += rows[i].Units
		totalRevenue += rows[i].RevenueCents
	}

	var running int64
	for i := range rows {
		row := &rows[i]

		if totalMetric > 0 {
			running += row.MetricValue(metric)
			row.CumulativeShare = float64(running) / float64(totalMetric)
		}
		switch {
		case totalMetric == 0:
			row.Tier = types.TierC
		case row.CumulativeShare <= cutA:
			row.Tier = types.TierA
		case row.CumulativeShare <= cutB:
			row.Tier = types.TierB
		default:
			row.Tier = types.TierC
		}

		if totalUnits > 0 {
			row.UnitShare = float64(row.Units) / float64(totalUnits)
		}
		if totalRevenue > 0 {
			row.RevenueShare = float64(row.RevenueCents) / float64(totalRevenue)
		}
	}
	return rows
}

// summarize folds classified rows into the per-tier dashboard cards.
func summarize(rows []types.Row, previewSize int) *types.SummaryResponse {
	cards := map[types.Tier]*types.TierCard{
		types.TierA: {Tier: types.TierA},
		types.TierB: {Tier: types.TierB},
		types.TierC: {Tier: types.TierC},
	}
	preview := map[types.Tier][]types.Row{}
	totals := types.Totals{}

	for _, row := range rows {
		card := cards[row.Tier]
		card.Items++
		card.Units += row.Units
		card.RevenueCents += row.RevenueCents

		totals.Items++
		totals.Units += row.Units
		totals.RevenueCents += row.RevenueCents

		if len(preview[row.Tier]) < previewSize {
			preview[row.Tier] = append(preview[row.Tier], row)
		}
	}

	out := &types.SummaryResponse{Totals: totals, Preview: preview}
	for _, tier := range []types.Tier{types.TierA, types.TierB, types.TierC} {
		card := cards[tier]
		if card.Units > 0 {
			card.AvgTicketCents = card.RevenueCents / card.Units
		}
		if totals.RevenueCents > 0 {
			card.RevenueShare = float64(card.RevenueCents) / float64(totals.RevenueCents)
		}
		out.Tiers = append(out.Tiers, *card)
	}
	return out
}
