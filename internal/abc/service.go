package abc

import (
	"context"
	"errors"
	"time"

	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
	pkgerrors "github.com/sellerpulse/sellerpulse-backend/pkg/errors"
	"github.com/sellerpulse/sellerpulse-backend/pkg/logger"
	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
)

const summaryPreviewSize = 5

// Service computes ABC classification reports from the seller's paid orders.
// Every call recomputes from a fresh pull; nothing is persisted.
type Service interface {
	Summary(ctx context.Context, req types.ReportRequest) (*types.SummaryResponse, error)
	Items(ctx context.Context, req types.ItemsRequest) (*types.ItemsResponse, error)
}

// ServiceParams wires the service dependencies.
type ServiceParams struct {
	Source        OrderSource
	Enricher      Enricher
	Logger        *logger.Logger
	OrderPageSize int
	MaxPageSize   int
}

type service struct {
	source        OrderSource
	enricher      Enricher
	logg          *logger.Logger
	orderPageSize int
	maxPageSize   int
}

func NewService(params ServiceParams) (Service, error) {
	if params.Source == nil {
		return nil, errors.New("order source is required")
	}
	if params.OrderPageSize <= 0 {
		return nil, errors.New("order page size must be positive")
	}
	return &service{
		source:        params.Source,
		enricher:      params.Enricher,
		logg:          params.Logger,
		orderPageSize: params.OrderPageSize,
		maxPageSize:   params.MaxPageSize,
	}, nil
}

func (s *service) Summary(ctx context.Context, req types.ReportRequest) (*types.SummaryResponse, error) {
	req.Normalize()
	if err := validateReport(req); err != nil {
		return nil, err
	}
	rows, err := s.buildRows(ctx, req)
	if err != nil {
		return nil, err
	}
	return summarize(rows, summaryPreviewSize), nil
}

func (s *service) Items(ctx context.Context, req types.ItemsRequest) (*types.ItemsResponse, error) {
	req.Normalize()
	if err := validateReport(req.ReportRequest); err != nil {
		return nil, err
	}
	if req.Tier != "" && !req.Tier.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tier must be A, B or C")
	}
	if req.Sort != "" && !req.Sort.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid sort key")
	}

	rows, err := s.buildRows(ctx, req.ReportRequest)
	if err != nil {
		return nil, err
	}

	result := applyQuery(rows, req, s.maxPageSize)

	var debug *types.DebugBlock
	if s.enricher != nil && req.Enrichment.Any() && len(result.rows) > 0 {
		pageRows := make([]*types.Row, len(result.rows))
		for i := range result.rows {
			pageRows[i] = &result.rows[i]
		}
		debug = s.enricher.Apply(ctx, req, pageRows)
	}

	return &types.ItemsResponse{
		Page:  result.page,
		Limit: result.limit,
		Total: result.total,
		Data:  result.rows,
		Debug: debug,
	}, nil
}

// buildRows runs the core path: paginate, aggregate, threshold, classify.
// Any failure here aborts the computation; a partial population would skew
// the tier boundaries.
func (s *service) buildRows(ctx context.Context, req types.ReportRequest) ([]types.Row, error) {
	agg := newAggregator(req)
	stream := orderStream{
		source:   s.source,
		token:    req.Token,
		sellerID: req.SellerID,
		from:     startOfDay(req.DateFrom),
		to:       startOfDay(req.DateTo),
		pageSize: s.orderPageSize,
	}

	start := time.Now()
	var orders int
	err := stream.Each(ctx, func(order marketplace.Order) error {
		orders++
		agg.fold(order)
		return nil
	})
	if err != nil {
		return nil, err
	}

	rows := agg.finalize()
	if req.MinUnits > 0 {
		kept := rows[:0]
		for _, row := range rows {
			if row.Units >= req.MinUnits {
				kept = append(kept, row)
			}
		}
		rows = kept
	}

	if s.logg != nil {
		lctx := s.logg.WithFields(ctx, map[string]any{
			"orders":      orders,
			"rows":        len(rows),
			"duration_ms": time.Since(start).Milliseconds(),
		})
		s.logg.Info(lctx, "abc.aggregation complete")
	}

	return classify(rows, req.Metric, req.CutA, req.CutB), nil
}

func validateReport(req types.ReportRequest) error {
	if req.SellerID == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "seller id is required")
	}
	if req.DateFrom.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "date_from is required")
	}
	if req.DateTo.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "date_to is required")
	}
	if req.DateTo.Before(req.DateFrom) {
		return pkgerrors.New(pkgerrors.CodeValidation, "date_to must not precede date_from")
	}
	if !req.Metric.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "metric must be units or revenue")
	}
	if !req.GroupBy.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "group_by must be product or variation")
	}
	if !req.Logistics.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid logistics filter")
	}
	return nil
}
