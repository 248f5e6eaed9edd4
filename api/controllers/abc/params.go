package abc

import (
	"net/http"
	"strings"

	"github.com/sellerpulse/sellerpulse-backend/api/middleware"
	"github.com/sellerpulse/sellerpulse-backend/api/validators"
	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
	pkgerrors "github.com/sellerpulse/sellerpulse-backend/pkg/errors"
)

const (
	maxPageLimit = 50
	maxMinUnits  = 1_000_000
)

// enumParams carries the enum-shaped query parameters through struct-tag
// validation; numeric and date parameters are checked while parsing.
type enumParams struct {
	Metric    string `json:"metric" validate:"omitempty,oneof=units revenue"`
	GroupBy   string `json:"group_by" validate:"omitempty,oneof=product variation"`
	Logistics string `json:"logistics" validate:"omitempty,oneof=all fulfillment self_service"`
	Tier      string `json:"tier" validate:"omitempty,oneof=A B C"`
	Sort      string `json:"sort" validate:"omitempty,oneof=units revenue cumulative_share"`
}

// parseReportRequest assembles the classification parameters shared by the
// summary, items and export endpoints. Identity comes from the middleware
// context, everything else from the query string.
func parseReportRequest(r *http.Request) (types.ReportRequest, error) {
	query := r.URL.Query()

	req := types.ReportRequest{
		Token:    middleware.TokenFromContext(r.Context()),
		SellerID: middleware.SellerIDFromContext(r.Context()),
	}

	var err error
	if req.DateFrom, err = validators.ParseQueryDate(r, "date_from"); err != nil {
		return req, err
	}
	if req.DateTo, err = validators.ParseQueryDate(r, "date_to"); err != nil {
		return req, err
	}
	if req.DateTo.Before(req.DateFrom) {
		return req, pkgerrors.New(pkgerrors.CodeValidation, "date_to must not precede date_from")
	}

	enums := enumParams{
		Metric:    strings.TrimSpace(query.Get("metric")),
		GroupBy:   strings.TrimSpace(query.Get("group_by")),
		Logistics: strings.TrimSpace(query.Get("logistics")),
	}
	if err := validators.ValidateStruct(&enums); err != nil {
		return req, err
	}
	req.Metric = types.Metric(enums.Metric)
	req.GroupBy = types.GroupBy(enums.GroupBy)
	req.Logistics = types.LogisticsFilter(enums.Logistics)

	if req.CutA, err = validators.ParseQueryFloat(r, "cut_a", 0); err != nil {
		return req, err
	}
	if req.CutB, err = validators.ParseQueryFloat(r, "cut_b", 0); err != nil {
		return req, err
	}
	if err := validateCut(req.CutA, "cut_a"); err != nil {
		return req, err
	}
	if err := validateCut(req.CutB, "cut_b"); err != nil {
		return req, err
	}

	minUnits, err := validators.ParseQueryInt(r, "min_units", 0, 0, maxMinUnits)
	if err != nil {
		return req, err
	}
	req.MinUnits = int64(minUnits)

	return req, nil
}

func validateCut(value float64, field string) error {
	if value != 0 && (value <= 0 || value >= 1) {
		return pkgerrors.New(pkgerrors.CodeValidation, "cut point must be a fraction between 0 and 1").
			WithDetails(map[string]any{"field": field})
	}
	return nil
}

// parseItemsRequest adds the listing, paging and enrichment parameters on
// top of the shared report parameters.
func parseItemsRequest(r *http.Request) (types.ItemsRequest, error) {
	report, err := parseReportRequest(r)
	if err != nil {
		return types.ItemsRequest{}, err
	}
	req := types.ItemsRequest{ReportRequest: report}

	query := r.URL.Query()
	enums := enumParams{
		Tier: strings.TrimSpace(query.Get("tier")),
		Sort: strings.TrimSpace(query.Get("sort")),
	}
	if err := validators.ValidateStruct(&enums); err != nil {
		return req, err
	}
	req.Tier = types.Tier(enums.Tier)
	req.Sort = types.SortKey(enums.Sort)
	req.Query = strings.TrimSpace(query.Get("q"))

	if req.Page, err = validators.ParseQueryInt(r, "page", 1, 1, 1_000_000); err != nil {
		return req, err
	}
	if req.Limit, err = validators.ParseQueryInt(r, "limit", 0, 1, maxPageLimit); err != nil {
		return req, err
	}

	if req.Enrichment.WithAds, err = validators.ParseQueryBool(r, "with_ads"); err != nil {
		return req, err
	}
	if req.Enrichment.WithDiscounts, err = validators.ParseQueryBool(r, "with_discounts"); err != nil {
		return req, err
	}
	if req.Enrichment.WithVisits, err = validators.ParseQueryBool(r, "with_visits"); err != nil {
		return req, err
	}
	if req.Enrichment.Debug, err = validators.ParseQueryBool(r, "debug"); err != nil {
		return req, err
	}

	return req, nil
}
