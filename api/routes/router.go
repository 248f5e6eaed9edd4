package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sellerpulse/sellerpulse-backend/api/controllers"
	abccontrollers "github.com/sellerpulse/sellerpulse-backend/api/controllers/abc"
	"github.com/sellerpulse/sellerpulse-backend/api/middleware"
	"github.com/sellerpulse/sellerpulse-backend/internal/abc"
	"github.com/sellerpulse/sellerpulse-backend/internal/abc/export"
	"github.com/sellerpulse/sellerpulse-backend/pkg/config"
	"github.com/sellerpulse/sellerpulse-backend/pkg/logger"
	"github.com/sellerpulse/sellerpulse-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	redisClient redis.Pinger,
	registry *prometheus.Registry,
	abcService abc.Service,
	exportAssembler *export.Assembler,
) http.Handler {
	r := chi.NewRouter()

	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, redisClient))
	})

	if registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/abc", func(r chi.Router) {
		r.Use(middleware.SellerAuth(logg))
		r.Get("/summary", abccontrollers.Summary(abcService, logg))
		r.Get("/items", abccontrollers.Items(abcService, logg))
		r.Get("/export", abccontrollers.Export(exportAssembler, logg))
	})

	return r
}
