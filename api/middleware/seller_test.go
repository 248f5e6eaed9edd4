package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestSellerAuthInjectsIdentity(t *testing.T) {
	var gotToken, gotSeller string
	handler := SellerAuth(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = TokenFromContext(r.Context())
		gotSeller = SellerIDFromContext(r.Context())
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer APP_USR-token")
	r.Header.Set("X-Seller-Id", "MLA123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if gotToken != "APP_USR-token" || gotSeller != "MLA123" {
		t.Fatalf("context missing identity: token=%q seller=%q", gotToken, gotSeller)
	}
}

func TestSellerAuthRejectsMissingToken(t *testing.T) {
	handler := SellerAuth(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("X-Seller-Id", "MLA123")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestSellerAuthRejectsMissingSellerID(t *testing.T) {
	handler := SellerAuth(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run")
	}))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer token")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestBearerTokenParsing(t *testing.T) {
	cases := map[string]string{
		"Bearer abc":  "abc",
		"bearer abc":  "abc",
		"Basic xyz":   "",
		"":            "",
		"Bearer  a b": "a b",
	}
	for header, want := range cases {
		if got := bearerToken(header); got != want {
			t.Errorf("bearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
