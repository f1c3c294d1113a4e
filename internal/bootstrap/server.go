package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Domenick1991/courtbooking/api"
	"github.com/Domenick1991/courtbooking/config"
	"github.com/Domenick1991/courtbooking/internal/logger"
	"github.com/Domenick1991/courtbooking/internal/metrics"
	"github.com/Domenick1991/courtbooking/internal/service/availability"
	"github.com/Domenick1991/courtbooking/internal/service/checkout"
	"github.com/Domenick1991/courtbooking/internal/service/hold"
	"github.com/Domenick1991/courtbooking/internal/service/pricing"
	"github.com/Domenick1991/courtbooking/internal/service/recurring"
	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger"
)

const openAPIPath = "/openapi.json"

// Services are the use cases the HTTP API exposes.
type Services struct {
	Availability availability.AvailabilityUseCase
	Pricing      pricing.PricingUseCase
	Holds        hold.HoldUseCase
	Checkout     checkout.CheckoutUseCase
	Recurring    recurring.RecurringUseCase
	Verifier     api.NotificationVerifier
}

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

func NewRouter(cfg *config.Config, svc Services, checks map[string]HealthCheck) *gin.Engine {
	router := gin.New()
	router.Use(Recovery(), RequestID(), Logger(), Metrics(), CORS())

	router.GET("/health", health(checks))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	if cfg.HTTP.SwaggerFile != "" {
		router.StaticFile(openAPIPath, cfg.HTTP.SwaggerFile)
		router.GET("/docs/*any", gin.WrapH(httpSwagger.Handler(httpSwagger.URL(openAPIPath))))
	}

	group := router.Group("/api")
	api.NewCourtHandler(svc.Availability).Register(group)
	api.NewDraftHandler(svc.Holds, svc.Availability, svc.Pricing).Register(group)
	api.NewCheckoutHandler(svc.Checkout, svc.Verifier).Register(group)
	api.NewReservationHandler(svc.Checkout).Register(group)
	api.NewRecurringHandler(svc.Recurring).Register(group)

	return router
}

func health(checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": result})
	}
}

// Run serves the router and blocks until ctx is canceled or the server fails.
func Run(ctx context.Context, cfg *config.Config, router http.Handler) error {
	srv := &http.Server{
		Addr:              cfg.HTTP.Address,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Get().Info("http server listening", "address", cfg.HTTP.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	}
}
