package abc

import (
	"math"
	"time"

	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
)

// windowThresholds are the rolling-counter widths in days, narrowest first.
var windowThresholds = [...]int{7, 15, 30, 40, 60, 90}

// rowAccum is one in-flight aggregated row. Revenue accumulates as an exact
// currency amount and is rounded to minor units once per row at finalize.
type rowAccum struct {
	row    types.Row
	amount float64
}

// aggregator folds the transaction stream into per-grouping-key rows.
type aggregator struct {
	groupBy   types.GroupBy
	logistics types.LogisticsFilter

	// Primary window and rolling anchor, both truncated to UTC day starts.
	windowStart time.Time
	windowEnd   time.Time

	rows  map[string]*rowAccum
	order []string
}

func newAggregator(req types.ReportRequest) *aggregator {
	return &aggregator{
		groupBy:     req.GroupBy,
		logistics:   req.Logistics,
		windowStart: startOfDay(req.DateFrom),
		windowEnd:   startOfDay(req.DateTo),
		rows:        make(map[string]*rowAccum),
	}
}

func startOfDay(t time.Time) time.Time {
	utc := t.UTC()
	return time.Date(utc.Year(), utc.Month(), utc.Day(), 0, 0, 0, 0, time.UTC)
}

// fold merges one transaction into the accumulators.
func (a *aggregator) fold(order marketplace.Order) {
	switch a.logistics {
	case types.LogisticsFulfillment:
		if !order.Fulfillment() {
			return
		}
	case types.LogisticsSelfService:
		if order.Fulfillment() {
			return
		}
	}

	createdDay := startOfDay(order.DateCreated)
	inPrimary := !createdDay.Before(a.windowStart) && !createdDay.After(a.windowEnd)
	// Day offset against the requested end date. Both sides are UTC day
	// starts, so the division is exact.
	offset := int(a.windowEnd.Sub(createdDay) / (24 * time.Hour))

	for _, item := range order.OrderItems {
		if item.Quantity <= 0 {
			continue
		}

		key := item.Item.ID
		variation := ""
		if a.groupBy == types.GroupByVariation && item.Item.VariationID != "" {
			variation = item.Item.VariationID
			key = item.Item.ID + "|" + variation
		}

		acc, ok := a.rows[key]
		if !ok {
			acc = &rowAccum{row: types.Row{
				ProductID:   item.Item.ID,
				VariationID: variation,
				Title:       item.Item.Title,
			}}
			a.rows[key] = acc
			a.order = append(a.order, key)
		}
		if acc.row.Title == "" {
			acc.row.Title = item.Item.Title
		}
		if order.Fulfillment() {
			acc.row.Fulfillment = true
		}

		if inPrimary {
			acc.row.Units += item.Quantity
			acc.amount += item.UnitPrice * float64(item.Quantity)
		}

		if offset >= 0 {
			addWindows(&acc.row.Windows, offset, item.Quantity)
		}
	}
}

// addWindows increments every rolling counter whose width covers the offset.
func addWindows(w *types.RollingWindows, offset int, quantity int64) {
	counters := [...]*int64{&w.D7, &w.D15, &w.D30, &w.D40, &w.D60, &w.D90}
	for i, threshold := range windowThresholds {
		if threshold >= offset {
			*counters[i] += quantity
		}
	}
}

// finalize returns the rows in first-encounter order, rounding revenue to
// minor units exactly once per row.
func (a *aggregator) finalize() []types.Row {
	rows := make([]types.Row, 0, len(a.order))
	for _, key := range a.order {
		acc := a.rows[key]
		acc.row.RevenueCents = int64(math.Round(acc.amount * 100))
		rows = append(rows, acc.row)
	}
	return rows
}
