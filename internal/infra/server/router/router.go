// Package router sets up the HTTP routing for the application.
package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/menuinzicht/backend/internal/integration/entrypoint/controller"
	"github.com/menuinzicht/backend/internal/integration/entrypoint/middleware"
)

// Router holds the Gin engine and controller dependencies.
type Router struct {
	engine              *gin.Engine
	healthController    *controller.HealthController
	analyticsController *controller.AnalyticsController
	feedbackController  *controller.FeedbackController
	feedbackRateLimiter *middleware.RateLimiter
	allowedOrigins      []string
}

// NewRouter creates a new router instance with all dependencies.
func NewRouter(
	healthController *controller.HealthController,
	analyticsController *controller.AnalyticsController,
	feedbackController *controller.FeedbackController,
	feedbackRateLimiter *middleware.RateLimiter,
	allowedOrigins []string,
) *Router {
	return &Router{
		healthController:    healthController,
		analyticsController: analyticsController,
		feedbackController:  feedbackController,
		feedbackRateLimiter: feedbackRateLimiter,
		allowedOrigins:      allowedOrigins,
	}
}

// Setup configures and returns the Gin engine with all routes.
func (r *Router) Setup(environment string) *gin.Engine {
	// Set Gin mode based on environment
	if environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else if environment == "test" {
		gin.SetMode(gin.TestMode)
	}

	// Create router with default middleware (logger and recovery)
	r.engine = gin.Default()
	r.engine.Use(cors.New(r.corsConfig()))

	r.setupHealthRoutes()
	r.setupAPIRoutes()

	return r.engine
}

// corsConfig allows the dashboard origins. Content-Disposition is exposed for the export download.
func (r *Router) corsConfig() cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Disposition", "Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	if len(r.allowedOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = r.allowedOrigins
	}
	return cfg
}

// setupHealthRoutes configures health check endpoints.
func (r *Router) setupHealthRoutes() {
	r.engine.GET("/health", r.healthController.Check)
}

// setupAPIRoutes configures the main API routes.
func (r *Router) setupAPIRoutes() {
	v1 := r.engine.Group("/api/v1")
	{
		v1.GET("/health", r.healthController.Check)

		// Analytics routes (only setup if the dataset is available)
		if r.analyticsController != nil {
			analytics := v1.Group("/analytics")
			{
				analytics.GET("/coverage", r.analyticsController.GetCoverage)
				analytics.GET("/comparison", r.analyticsController.GetComparison)
				analytics.GET("/comparison/export", r.analyticsController.ExportComparison)
				analytics.GET("/weekday", r.analyticsController.GetWeekday)
				analytics.GET("/time-of-day", r.analyticsController.GetTimeOfDay)
				analytics.GET("/breakdown", r.analyticsController.GetBreakdown)
				analytics.GET("/summary", r.analyticsController.GetSummary)
				analytics.GET("/top-items", r.analyticsController.GetTopItems)
				analytics.GET("/items-sold", r.analyticsController.GetItemsSold)
			}
		}

		if r.feedbackController != nil {
			if r.feedbackRateLimiter != nil {
				v1.POST("/feedback", r.feedbackRateLimiter.Middleware(), r.feedbackController.Send)
			} else {
				v1.POST("/feedback", r.feedbackController.Send)
			}
		}
	}
}

// Engine returns the underlying Gin engine.
func (r *Router) Engine() *gin.Engine {
	return r.engine
}
