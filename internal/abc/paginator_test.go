package abc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sellerpulse/sellerpulse-backend/pkg/marketplace"
)

// fakeOrderSource serves a fixed order list page by page and records the
// queries it saw.
type fakeOrderSource struct {
	orders  []marketplace.Order
	queries []marketplace.OrderQuery
	err     error
}

func (f *fakeOrderSource) SearchOrders(_ context.Context, _ string, q marketplace.OrderQuery) (*marketplace.OrderSearchPage, error) {
	f.queries = append(f.queries, q)
	if f.err != nil {
		return nil, f.err
	}

	start := q.Offset
	end := q.Offset + q.Limit
	if start > len(f.orders) {
		start = len(f.orders)
	}
	if end > len(f.orders) {
		end = len(f.orders)
	}
	return &marketplace.OrderSearchPage{
		Paging:  marketplace.Paging{Total: len(f.orders), Offset: q.Offset, Limit: q.Limit},
		Results: f.orders[start:end],
	}, nil
}

func nOrders(n int) []marketplace.Order {
	orders := make([]marketplace.Order, n)
	for i := range orders {
		orders[i] = marketplace.Order{ID: int64(i + 1)}
	}
	return orders
}

func TestOrderStreamPagesSequentially(t *testing.T) {
	source := &fakeOrderSource{orders: nOrders(5)}
	stream := orderStream{
		source:   source,
		sellerID: "MLA123",
		from:     day(2026, 2, 1),
		to:       day(2026, 3, 1),
		pageSize: 2,
	}

	var seen []int64
	err := stream.Each(context.Background(), func(o marketplace.Order) error {
		seen = append(seen, o.ID)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(seen) != 5 {
		t.Fatalf("saw %d orders, want 5", len(seen))
	}
	if len(source.queries) != 3 {
		t.Fatalf("made %d queries, want 3", len(source.queries))
	}
	for i, q := range source.queries {
		if q.Offset != i*2 {
			t.Errorf("query %d offset = %d, want %d", i, q.Offset, i*2)
		}
	}
}

func TestOrderStreamStopsOnEmptyPage(t *testing.T) {
	source := &fakeOrderSource{orders: nil}
	stream := orderStream{source: source, from: day(2026, 2, 1), to: day(2026, 3, 1), pageSize: 50}

	err := stream.Each(context.Background(), func(marketplace.Order) error {
		t.Fatal("no orders expected")
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(source.queries) != 1 {
		t.Fatalf("made %d queries, want 1", len(source.queries))
	}
}

func TestOrderStreamWidensWindowForRollingCounters(t *testing.T) {
	source := &fakeOrderSource{}
	stream := orderStream{
		source:   source,
		from:     day(2026, 2, 20),
		to:       day(2026, 3, 1),
		pageSize: 50,
	}

	if err := stream.Each(context.Background(), func(marketplace.Order) error { return nil }); err != nil {
		t.Fatal(err)
	}

	q := source.queries[0]
	wantFrom := day(2026, 3, 1).AddDate(0, 0, -89)
	if !q.From.Equal(wantFrom) {
		t.Errorf("fetch window start = %v, want %v", q.From, wantFrom)
	}
	// The upstream filter is exclusive of the next day, so the window runs
	// to the last second of the end date.
	wantTo := day(2026, 3, 2).Add(-time.Second)
	if !q.To.Equal(wantTo) {
		t.Errorf("fetch window end = %v, want %v", q.To, wantTo)
	}
}

func TestOrderStreamKeepsEarlierExplicitStart(t *testing.T) {
	source := &fakeOrderSource{}
	stream := orderStream{
		source:   source,
		from:     day(2025, 1, 1),
		to:       day(2026, 3, 1),
		pageSize: 50,
	}

	if err := stream.Each(context.Background(), func(marketplace.Order) error { return nil }); err != nil {
		t.Fatal(err)
	}
	if !source.queries[0].From.Equal(day(2025, 1, 1)) {
		t.Errorf("explicit start predating the lookback must win, got %v", source.queries[0].From)
	}
}

func TestOrderStreamPropagatesErrors(t *testing.T) {
	wantErr := errors.New("upstream down")
	source := &fakeOrderSource{err: wantErr}
	stream := orderStream{source: source, from: day(2026, 2, 1), to: day(2026, 3, 1), pageSize: 50}

	err := stream.Each(context.Background(), func(marketplace.Order) error { return nil })
	if !errors.Is(err, wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
}
