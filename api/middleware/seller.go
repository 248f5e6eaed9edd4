package middleware

import (
	"net/http"
	"strings"

	"github.com/sellerpulse/sellerpulse-backend/api/responses"
	pkgerrors "github.com/sellerpulse/sellerpulse-backend/pkg/errors"
	"github.com/sellerpulse/sellerpulse-backend/pkg/logger"
)

const sellerIDHeader = "X-Seller-Id"

// SellerAuth extracts the marketplace bearer token and seller identity from
// the request. Token validation is the upstream's job; the service only
// forwards it, so a missing token is the one thing rejected here.
func SellerAuth(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			token := bearerToken(r.Header.Get("Authorization"))
			if token == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "bearer token is required"))
				return
			}

			sellerID := strings.TrimSpace(r.Header.Get(sellerIDHeader))
			if sellerID == "" {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "X-Seller-Id header is required"))
				return
			}

			ctx = WithToken(ctx, token)
			ctx = WithSellerID(ctx, sellerID)
			if logg != nil {
				ctx = logg.WithSellerID(ctx, sellerID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}
