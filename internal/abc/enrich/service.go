package enrich

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
	"github.com/sellerpulse/sellerpulse-backend/pkg/config"
	"github.com/sellerpulse/sellerpulse-backend/pkg/logger"
	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
	"github.com/sellerpulse/sellerpulse-backend/pkg/metrics"
)

// MarketplaceAPI is the slice of the marketplace client the enrichment
// sources call.
type MarketplaceAPI interface {
	ItemPrices(ctx context.Context, token, itemID string, trace *marketplace.Trace) (*marketplace.PriceDocument, error)
	ItemVisits(ctx context.Context, token, itemID string, from, to time.Time, trace *marketplace.Trace) (*marketplace.VisitsResponse, error)
	Advertisers(ctx context.Context, token string, trace *marketplace.Trace) ([]marketplace.Advertiser, error)
	AdsMetricsBatch(ctx context.Context, token, advertiserID string, itemIDs, channels []string, from, to time.Time, trace *marketplace.Trace) (map[string]marketplace.AdMetrics, error)
	AdsItemStatus(ctx context.Context, token, itemID string, trace *marketplace.Trace) (*marketplace.AdItemStatus, error)
	AdsItemMetrics(ctx context.Context, token, itemID string, from, to time.Time, trace *marketplace.Trace) (*marketplace.AdMetrics, error)
	AdsItemLegacy(ctx context.Context, token, itemID string, from, to time.Time, trace *marketplace.Trace) (*marketplace.AdMetrics, error)
}

// Params wires the enricher dependencies.
type Params struct {
	API     MarketplaceAPI
	Cache   AdvertiserCache
	Ads     config.AdsConfig
	Tuning  config.EnrichmentConfig
	Logger  *logger.Logger
	Metrics *metrics.UpstreamMetrics
}

// Enricher annotates one page of rows with advertising, discount and visit
// data. The three sources run independently; a failure in one never touches
// the others or a row's core fields.
type Enricher struct {
	api     MarketplaceAPI
	cache   AdvertiserCache
	ads     config.AdsConfig
	tuning  config.EnrichmentConfig
	logg    *logger.Logger
	metrics *metrics.UpstreamMetrics
}

func New(params Params) (*Enricher, error) {
	if params.API == nil {
		return nil, errors.New("marketplace api is required")
	}
	if params.Cache == nil {
		return nil, errors.New("advertiser cache is required")
	}
	if params.Logger == nil {
		return nil, errors.New("logger is required")
	}
	if params.Tuning.Workers <= 0 {
		params.Tuning.Workers = 6
	}
	if params.Tuning.AdsBatchMax <= 0 {
		params.Tuning.AdsBatchMax = 100
	}
	return &Enricher{
		api:     params.API,
		cache:   params.Cache,
		ads:     params.Ads,
		tuning:  params.Tuning,
		logg:    params.Logger,
		metrics: params.Metrics,
	}, nil
}

// sourceState carries one source's diagnostics while its workers run.
type sourceState struct {
	mu       sync.Mutex
	trace    *marketplace.Trace
	degraded []string
	errs     error
}

func newSourceState(debug bool) *sourceState {
	st := &sourceState{}
	if debug {
		st.trace = marketplace.NewTrace()
	}
	return st
}

func (s *sourceState) addDegraded(itemID string, err error) {
	s.mu.Lock()
	s.degraded = append(s.degraded, itemID)
	if err != nil {
		s.errs = multierr.Append(s.errs, err)
	}
	s.mu.Unlock()
}

func (s *sourceState) block() *types.SourceDebug {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := &types.SourceDebug{
		Degraded: append([]string(nil), s.degraded...),
		Trace:    s.trace.Entries(),
	}
	for _, err := range multierr.Errors(s.errs) {
		out.Errors = append(out.Errors, err.Error())
	}
	return out
}

// Apply runs the requested sources over the page rows and returns the debug
// block when diagnostics were requested.
func (e *Enricher) Apply(ctx context.Context, req types.ItemsRequest, rows []*types.Row) *types.DebugBlock {
	opts := req.Enrichment
	if !opts.Any() || len(rows) == 0 {
		return nil
	}

	var adsState, discountState, visitsState *sourceState
	var group errgroup.Group

	if opts.WithAds {
		adsState = newSourceState(opts.Debug)
		group.Go(func() error {
			e.applyAds(ctx, req, rows, adsState)
			return nil
		})
	}
	if opts.WithDiscounts {
		discountState = newSourceState(opts.Debug)
		group.Go(func() error {
			e.applyDiscounts(ctx, req, rows, discountState)
			return nil
		})
	}
	if opts.WithVisits {
		visitsState = newSourceState(opts.Debug)
		group.Go(func() error {
			e.applyVisits(ctx, req, rows, visitsState)
			return nil
		})
	}
	_ = group.Wait()

	if !opts.Debug {
		return nil
	}
	return &types.DebugBlock{
		Ads:       adsState.block(),
		Discounts: discountState.block(),
		Visits:    visitsState.block(),
	}
}
