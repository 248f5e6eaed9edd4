package export

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/sellerpulse/sellerpulse-backend/internal/abc"
	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
)

// Progress reports one fetched page: its 1-based number, the page count
// derived from the first response, and the rows collected so far.
type Progress func(page, pages, rows int)

var csvHeader = []string{
	"product_id",
	"variation_id",
	"title",
	"tier",
	"units",
	"revenue",
	"cumulative_share",
	"unit_share",
	"revenue_share",
	"units_7d",
	"units_15d",
	"units_30d",
	"units_40d",
	"units_60d",
	"units_90d",
	"fulfillment",
	"visits",
	"discount_active",
	"discount_percent",
	"ad_clicks",
	"ad_cost",
	"ad_revenue",
	"acos",
}

// Assembler streams a full classification report to CSV by walking the items
// listing page by page, so export shares the listing's filter, sort and
// enrichment semantics instead of a parallel computation.
type Assembler struct {
	service abc.Service
}

func NewAssembler(service abc.Service) (*Assembler, error) {
	if service == nil {
		return nil, errors.New("items service is required")
	}
	return &Assembler{service: service}, nil
}

// WriteCSV collects every page of the listing, re-sorts the full set and
// writes it with a header row. The progress callback fires after each page.
func (a *Assembler) WriteCSV(ctx context.Context, req types.ItemsRequest, w io.Writer, progress Progress) error {
	req.Enrichment.Debug = false

	rows, err := a.collect(ctx, req, progress)
	if err != nil {
		return err
	}
	abc.SortRows(rows, req.Sort)

	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for i := range rows {
		if err := writer.Write(csvRecord(&rows[i])); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func (a *Assembler) collect(ctx context.Context, req types.ItemsRequest, progress Progress) ([]types.Row, error) {
	var rows []types.Row
	pages := 1
	for page := 1; page <= pages; page++ {
		req.Page = page
		resp, err := a.service.Items(ctx, req)
		if err != nil {
			return nil, fmt.Errorf("export page %d: %w", page, err)
		}
		if page == 1 {
			pages = pageCount(resp.Total, resp.Limit)
		}
		rows = append(rows, resp.Data...)
		if progress != nil {
			progress(page, pages, len(rows))
		}
		if len(resp.Data) == 0 {
			break
		}
	}
	return rows, nil
}

func pageCount(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 1
	}
	return (total + limit - 1) / limit
}

func csvRecord(row *types.Row) []string {
	record := []string{
		row.ProductID,
		row.VariationID,
		row.Title,
		string(row.Tier),
		strconv.FormatInt(row.Units, 10),
		money(row.RevenueCents),
		percent(row.CumulativeShare),
		percent(row.UnitShare),
		percent(row.RevenueShare),
		strconv.FormatInt(row.Windows.D7, 10),
		strconv.FormatInt(row.Windows.D15, 10),
		strconv.FormatInt(row.Windows.D30, 10),
		strconv.FormatInt(row.Windows.D40, 10),
		strconv.FormatInt(row.Windows.D60, 10),
		strconv.FormatInt(row.Windows.D90, 10),
		strconv.FormatBool(row.Fulfillment),
	}

	if row.Visits != nil {
		record = append(record, strconv.FormatInt(*row.Visits, 10))
	} else {
		record = append(record, "")
	}

	if row.Discount != nil {
		record = append(record, strconv.FormatBool(row.Discount.Active))
		if row.Discount.Percent != nil {
			record = append(record, percent(*row.Discount.Percent))
		} else {
			record = append(record, "")
		}
	} else {
		record = append(record, "", "")
	}

	if row.Ads != nil {
		record = append(record,
			strconv.FormatInt(row.Ads.Clicks, 10),
			money(row.Ads.CostCents),
			money(row.Ads.AdRevenueCents),
			percent(row.Ads.ACOS),
		)
	} else {
		record = append(record, "", "", "", "")
	}

	return record
}

// money renders minor units as a two-decimal major-unit amount.
func money(cents int64) string {
	return decimal.NewFromInt(cents).Div(decimal.NewFromInt(100)).StringFixed(2)
}

// percent renders a fractional share as a two-decimal percentage.
func percent(share float64) string {
	return decimal.NewFromFloat(share).Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
}
