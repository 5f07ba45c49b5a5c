// Package router sets up the HTTP routing for the application.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/finance-tracker/period-engine/internal/integration/entrypoint/controller"
	"github.com/finance-tracker/period-engine/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine                *gin.Engine
	healthController      *controller.HealthController
	periodController      *controller.PeriodController
	billingController     *controller.BillingController
	recurringController   *controller.RecurringController
	transactionController *controller.TransactionController
	rateLimiter           *middleware.RateLimiter
	authMiddleware        *middleware.AuthMiddleware
	metricsGatherer       prometheus.Gatherer
}

// NewRouter creates a new router instance with all dependencies. A nil gatherer
// disables the /metrics endpoint.
func NewRouter(
	healthController *controller.HealthController,
	periodController *controller.PeriodController,
	billingController *controller.BillingController,
	recurringController *controller.RecurringController,
	transactionController *controller.TransactionController,
	rateLimiter *middleware.RateLimiter,
	authMiddleware *middleware.AuthMiddleware,
	metricsGatherer prometheus.Gatherer,
) *Router {
	return &Router{
		healthController:      healthController,
		periodController:      periodController,
		billingController:     billingController,
		recurringController:   recurringController,
		transactionController: transactionController,
		rateLimiter:           rateLimiter,
		authMiddleware:        authMiddleware,
		metricsGatherer:       metricsGatherer,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	r.engine = gin.New()
	r.engine.Use(gin.Recovery())
	if environment != "test" {
		r.engine.Use(gin.Logger())
	}

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// setupHealthRoutes configures health check and metrics endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
	if r.metricsGatherer != nil {
		r.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.metricsGatherer, promhttp.HandlerOpts{})))
	}
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	v1.Use(r.authMiddleware.Authenticate())
	if r.rateLimiter != nil {
		v1.Use(r.rateLimiter.Middleware())
	}

	periods := v1.Group("/periods")
	{
		periods.GET("", r.periodController.List)
		periods.GET("/:year/:month", r.periodController.GetStatus)
		periods.POST("/:year/:month/close", r.periodController.Close)
		periods.POST("/:year/:month/reopen", r.periodController.Reopen)
		periods.POST("/:year/:month/rollover", r.periodController.ApplyRollover)
	}

	v1.GET("/billing-window", r.billingController.ComputeWindow)
	v1.GET("/wallets/:id/billing-window", r.billingController.WalletWindow)

	recurring := v1.Group("/recurring")
	{
		recurring.POST("/templates", r.recurringController.CreateTemplate)
		recurring.GET("/templates", r.recurringController.ListTemplates)
		recurring.PATCH("/templates/:id", r.recurringController.UpdateTemplate)
		recurring.POST("/templates/:id/occurrences", r.recurringController.TriggerOccurrence)
		recurring.GET("/occurrences", r.recurringController.ListOccurrences)
	}

	transactions := v1.Group("/transactions")
	{
		transactions.POST("", r.transactionController.Create)
		transactions.PATCH("/:id", r.transactionController.Update)
		transactions.DELETE("/:id", r.transactionController.Delete)
	}

	r.engine.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})
}
