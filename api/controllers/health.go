package controllers

import (
	"net/http"

	"github.com/sellerpulse/sellerpulse-backend/api/responses"
	"github.com/sellerpulse/sellerpulse-backend/pkg/config"
	pkgerrors "github.com/sellerpulse/sellerpulse-backend/pkg/errors"
	"github.com/sellerpulse/sellerpulse-backend/pkg/logger"
	"github.com/sellerpulse/sellerpulse-backend/pkg/redis"
)

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SellerPulse-Env", cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady pings the optional dependencies. Redis is the only process
// we reach out to; the marketplace API is checked lazily per request.
func HealthReady(cfg *config.Config, logg *logger.Logger, redisClient redis.Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-SellerPulse-Env", cfg.App.Env)

		if redisClient != nil {
			if err := redisClient.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis not ready"))
				return
			}
		}

		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}
