package abc

import (
	"context"
	"time"

	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
)

// lookbackDays widens the fetch window behind the requested range so the
// 90-day rolling counters are complete even for short primary windows.
const lookbackDays = 89

// orderStream pages through a seller's paid orders, yielding one transaction
// at a time. Pagination is strictly sequential; a fresh stream re-pages from
// the start.
type orderStream struct {
	source   OrderSource
	token    string
	sellerID string
	from     time.Time
	to       time.Time
	pageSize int
	trace    *marketplace.Trace
}

// fetchFrom returns the widened window start: the earlier of the requested
// start and end minus 89 days.
func (s orderStream) fetchFrom() time.Time {
	lookback := s.to.AddDate(0, 0, -lookbackDays)
	if s.from.Before(lookback) {
		return s.from
	}
	return lookback
}

// Each yields every order in the widened window until exhaustion. It stops on
// an empty page or once the offset reaches the reported total.
func (s orderStream) Each(ctx context.Context, fn func(marketplace.Order) error) error {
	from := s.fetchFrom()
	to := s.to.AddDate(0, 0, 1).Add(-time.Second)

	offset := 0
	for {
		page, err := s.source.SearchOrders(ctx, s.token, marketplace.OrderQuery{
			SellerID: s.sellerID,
			From:     from,
			To:       to,
			Offset:   offset,
			Limit:    s.pageSize,
			Trace:    s.trace,
		})
		if err != nil {
			return err
		}
		if len(page.Results) == 0 {
			return nil
		}
		for _, order := range page.Results {
			if err := fn(order); err != nil {
				return err
			}
		}
		offset += s.pageSize
		if offset >= page.Paging.Total {
			return nil
		}
	}
}
