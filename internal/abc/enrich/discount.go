package enrich

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sellerpulse/sellerpulse-backend/internal/abc/types"
	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
)

const (
	discountSourcePromotion = "promotion"
	discountSourcePriceGap  = "price_gap"
)

// applyDiscounts fetches each row's price document and infers whether a
// discount is live right now. Every failure leaves the neutral attachment;
// only real errors are recorded as degradations.
func (e *Enricher) applyDiscounts(ctx context.Context, req types.ItemsRequest, rows []*types.Row, st *sourceState) {
	now := time.Now().UTC()

	var group errgroup.Group
	group.SetLimit(e.tuning.Workers)
	for _, row := range rows {
		row := row
		group.Go(func() error {
			doc, err := e.api.ItemPrices(ctx, req.Token, row.ProductID, st.trace)
			if err != nil {
				row.Discount = &types.DiscountAttachment{}
				if !errors.Is(err, marketplace.ErrNoData) {
					st.addDegraded(row.ProductID, err)
					e.metrics.IncDegradation("discounts")
				}
				return nil
			}
			attachment := inferDiscount(doc, now)
			row.Discount = &attachment
			return nil
		})
	}
	_ = group.Wait()
}

// inferDiscount derives the active-discount state from a price document.
// Promotional entries whose validity window contains now win; among several
// the deepest percent-off is reported. Without promotional entries, a
// standard price sitting below its own regular price is reported as a
// low-confidence gap.
func inferDiscount(doc *marketplace.PriceDocument, now time.Time) types.DiscountAttachment {
	var best *float64
	var bestSource string

	for i := range doc.Prices {
		entry := &doc.Prices[i]
		if !isPromotional(entry.Type) || !validNow(entry, now) {
			continue
		}
		percent := percentOff(entry.Amount, entry.RegularAmount)
		if percent == nil {
			continue
		}
		if best == nil || *percent > *best {
			best = percent
			bestSource = promotionSource(entry)
		}
	}
	if best != nil {
		source := bestSource
		return types.DiscountAttachment{Active: true, Percent: best, Source: &source}
	}

	for i := range doc.Prices {
		entry := &doc.Prices[i]
		if isPromotional(entry.Type) || !validNow(entry, now) {
			continue
		}
		if percent := percentOff(entry.Amount, entry.RegularAmount); percent != nil {
			source := discountSourcePriceGap
			return types.DiscountAttachment{Active: true, Percent: percent, Source: &source}
		}
	}

	return types.DiscountAttachment{}
}

func isPromotional(priceType string) bool {
	return strings.Contains(strings.ToLower(priceType), "promotion")
}

func validNow(entry *marketplace.PriceEntry, now time.Time) bool {
	if entry.Conditions.StartTime != nil && now.Before(*entry.Conditions.StartTime) {
		return false
	}
	if entry.Conditions.EndTime != nil && now.After(*entry.Conditions.EndTime) {
		return false
	}
	return true
}

// percentOff returns the fractional discount against the regular price, or
// nil when the entry carries no meaningful gap.
func percentOff(amount float64, regular *float64) *float64 {
	if regular == nil || *regular <= 0 || amount >= *regular {
		return nil
	}
	percent := 1 - amount/(*regular)
	return &percent
}

func promotionSource(entry *marketplace.PriceEntry) string {
	if entry.Metadata.PromotionType != "" {
		return entry.Metadata.PromotionType
	}
	return discountSourcePromotion
}
