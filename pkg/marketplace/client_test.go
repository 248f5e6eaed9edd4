package marketplace

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sellerpulse/sellerpulse-backend/pkg/config"
	pkgerrors "github.com/sellerpulse/sellerpulse-backend/pkg/errors"
)

func testClient(t *testing.T, baseURL string, attempts int) *Client {
	t.Helper()
	client, err := NewClient(config.MarketplaceConfig{
		BaseURL:        baseURL,
		Timeout:        5 * time.Second,
		OrderPageSize:  50,
		RetryAttempts:  attempts,
		RetryBaseDelay: time.Millisecond,
	}, nil, nil)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestRetriesRateLimitThenSucceeds(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"paging":{"total":1,"offset":0,"limit":50},"results":[{"id":7,"date_created":"2025-03-01T10:00:00Z","logistic_type":"fulfillment","order_items":[]}]}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, 4)
	page, err := client.SearchOrders(context.Background(), "tok", OrderQuery{
		SellerID: "s1",
		From:     time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		To:       time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
		Limit:    50,
	})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(page.Results) != 1 || page.Results[0].ID != 7 {
		t.Fatalf("unexpected page: %+v", page)
	}
	if !page.Results[0].Fulfillment() {
		t.Fatal("fulfillment logistic type should report true")
	}
}

func TestRetriesServerErrorUntilExhaustion(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, 2)
	_, err := client.SearchOrders(context.Background(), "tok", OrderQuery{SellerID: "s1", Limit: 50})
	if err == nil {
		t.Fatal("expected exhaustion error")
	}
	if calls != 3 {
		t.Fatalf("expected 1 attempt + 2 retries, got %d calls", calls)
	}

	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeUpstreamExhausted {
		t.Fatalf("expected UPSTREAM_EXHAUSTED, got %v", err)
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected status error in chain, got %v", err)
	}
}

func TestClientErrorDoesNotRetry(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"invalid date"}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, 4)
	_, err := client.SearchOrders(context.Background(), "tok", OrderQuery{SellerID: "s1", Limit: 50})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("client errors must not retry, got %d calls", calls)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestNotFoundYieldsNoDataSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, 4)
	_, err := client.ItemPrices(context.Background(), "tok", "ITEM1", nil)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}
}

func TestTraceRecordsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte("forbidden for this token"))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, 0)
	trace := NewTrace()
	_, err := client.ItemVisits(context.Background(), "tok", "ITEM1", time.Now().AddDate(0, 0, -7), time.Now(), trace)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("expected ErrNoData, got %v", err)
	}

	entries := trace.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 trace entry, got %d", len(entries))
	}
	if entries[0].Status != http.StatusForbidden || entries[0].Body != "forbidden for this token" {
		t.Fatalf("unexpected trace entry: %+v", entries[0])
	}
}

func TestAuthAndQueryPropagation(t *testing.T) {
	var gotAuth, gotStatus, gotVersion string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotStatus = r.URL.Query().Get("order.status")
		gotVersion = r.Header.Get("Api-Version")
		_, _ = w.Write([]byte(`{"paging":{"total":0,"offset":0,"limit":50},"results":[]}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, 0)
	if _, err := client.SearchOrders(context.Background(), "secret-token", OrderQuery{SellerID: "s1", Limit: 50}); err != nil {
		t.Fatalf("search orders: %v", err)
	}
	if gotAuth != "Bearer secret-token" {
		t.Fatalf("expected bearer auth, got %q", gotAuth)
	}
	if gotStatus != "paid" {
		t.Fatalf("order search must be scoped to paid orders, got %q", gotStatus)
	}
	if gotVersion != "" {
		t.Fatalf("order search must not carry the ads version header, got %q", gotVersion)
	}
}

func TestAdsBatchMapsResultsByID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Api-Version") != "2" {
			t.Errorf("batch metrics must use v2, got %q", r.Header.Get("Api-Version"))
		}
		_, _ = w.Write([]byte(`{"results":[
			{"id":"A1","clicks":10,"prints":200,"cost":3.5,"amount":42.0,"campaign":{"status":"active"}},
			{"id":"A2","clicks":0,"prints":0,"cost":0,"amount":0,"campaign":{"status":"paused"}}
		]}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, 0)
	got, err := client.AdsMetricsBatch(context.Background(), "tok", "adv-1",
		[]string{"A1", "A2", "A3"}, []string{"marketplace"},
		time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC), time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC), nil)
	if err != nil {
		t.Fatalf("batch: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 mapped items, got %d", len(got))
	}
	if got["A1"].Clicks != 10 || got["A1"].CampaignStatus != "active" {
		t.Fatalf("unexpected A1 metrics: %+v", got["A1"])
	}
	if _, ok := got["A3"]; ok {
		t.Fatal("A3 was not in the upstream result and must stay absent")
	}
}

func TestLegacyShapeNormalizes(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Api-Version") != "1" {
			t.Errorf("legacy endpoint must use v1, got %q", r.Header.Get("Api-Version"))
		}
		_, _ = w.Write([]byte(`{"clicks":4,"impressions":90,"total_cost":1.25,"total_amount":10.5,"status":"active"}`))
	}))
	defer srv.Close()

	client := testClient(t, srv.URL, 0)
	got, err := client.AdsItemLegacy(context.Background(), "tok", "A1", time.Now().AddDate(0, 0, -7), time.Now(), nil)
	if err != nil {
		t.Fatalf("legacy: %v", err)
	}
	if got.Prints != 90 || got.Cost != 1.25 || got.Amount != 10.5 {
		t.Fatalf("legacy fields not normalized: %+v", got)
	}
}
