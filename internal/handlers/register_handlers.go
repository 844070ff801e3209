package handlers

import (
	"log/slog"

	portssvc "github.com/clearvest/payout_engine/internal/core/ports/services"
	"github.com/clearvest/payout_engine/internal/middleware"
	"github.com/clearvest/payout_engine/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Health and Prometheus scrape endpoints stay outside the API group.
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	setupAPIV1Routes(r, cfg, services)
}

// setupAPIV1Routes configures the /api/v1 group and delegates to specific entity route registrations
func setupAPIV1Routes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	v1 := r.Group("/api/v1", triggerRateLimiter(cfg))

	registerRevenueRoutes(v1, services.Revenue)
	registerDividendRoutes(v1, services.Dividend)
	registerQueueRoutes(v1, services.Queue)
}

// triggerRateLimiter builds the in-memory rate limit middleware for the manual
// trigger surface.
func triggerRateLimiter(cfg *config.Config) gin.HandlerFunc {
	rate, err := limiter.NewRateFromFormatted(cfg.TriggerRateLimit)
	if err != nil {
		slog.Warn("Invalid trigger rate limit, falling back to 10-M",
			slog.String("configured", cfg.TriggerRateLimit),
			slog.String("error", err.Error()),
		)
		rate, _ = limiter.NewRateFromFormatted("10-M")
	}
	return middleware.RateLimit(limiter.New(memory.NewStore(), rate))
}
