// Package dependency provides dependency injection for the application.
package dependency

import (
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/menuinzicht/backend/config"
	"github.com/menuinzicht/backend/internal/application/adapter"
	"github.com/menuinzicht/backend/internal/application/usecase/analytics"
	"github.com/menuinzicht/backend/internal/application/usecase/feedback"
	"github.com/menuinzicht/backend/internal/infra/db"
	"github.com/menuinzicht/backend/internal/infra/server/router"
	"github.com/menuinzicht/backend/internal/integration/cache"
	"github.com/menuinzicht/backend/internal/integration/email"
	"github.com/menuinzicht/backend/internal/integration/email/templates"
	"github.com/menuinzicht/backend/internal/integration/entrypoint/controller"
	"github.com/menuinzicht/backend/internal/integration/entrypoint/middleware"
	"github.com/menuinzicht/backend/internal/integration/persistence"
)

// Injector holds all application dependencies.
type Injector struct {
	Config *config.Config
	DB     *gorm.DB
	Router *router.Router

	DailyMetricRepo *persistence.DailyMetricRepository
	IntervalRepo    *persistence.IntervalRepository
	CatalogRepo     *persistence.CatalogRepository
	IntervalSeries  *analytics.IntervalSeries

	// EmailWorker is nil when feedback email delivery is not configured.
	EmailWorker *email.Worker
}

// Options carries the optional collaborators of the injector.
type Options struct {
	// Redis backs the interval cache. A nil client keeps the cache in process.
	Redis *redis.Client
	// EmailSender overrides the Resend client built from the configuration.
	EmailSender adapter.EmailSender
}

// NewInjector creates a new dependency injector with all dependencies wired.
func NewInjector(cfg *config.Config, database *gorm.DB, opts Options) (*Injector, error) {
	// Create repositories
	dailyMetricRepo := persistence.NewDailyMetricRepository(database)
	intervalRepo := persistence.NewIntervalRepository(database)
	catalogRepo := persistence.NewCatalogRepository(database)
	emailOutbox := persistence.NewEmailOutboxRepository(database)

	// Create the interval cache
	var intervalCache analytics.IntervalCache
	var cacheHealthChecker func() bool
	if opts.Redis != nil {
		intervalCache = cache.NewRedisIntervalCache(opts.Redis, cfg.Analytics.CacheTTL)
		cacheHealthChecker = db.RedisHealthCheck(opts.Redis)
	} else {
		intervalCache = cache.NewMemoryIntervalCache(cfg.Analytics.CacheTTL)
	}
	series := analytics.NewIntervalSeries(intervalRepo, intervalCache, cfg.Analytics.OpeningTime)
	intervalRepo.SetInvalidator(series)

	// Create analytics use cases
	useCases := controller.AnalyticsUseCases{
		GetCoverage:          analytics.NewGetCoverageUseCase(dailyMetricRepo),
		GetComparison:        analytics.NewGetComparisonUseCase(dailyMetricRepo),
		GetWeekdayComparison: analytics.NewGetWeekdayComparisonUseCase(dailyMetricRepo),
		GetTimeAnalysis:      analytics.NewGetTimeAnalysisUseCase(series),
		GetCategoryBreakdown: analytics.NewGetCategoryBreakdownUseCase(dailyMetricRepo, catalogRepo),
		GetPeriodSummary:     analytics.NewGetPeriodSummaryUseCase(dailyMetricRepo),
		GetTopItems:          analytics.NewGetTopItemsUseCase(dailyMetricRepo, catalogRepo),
		GetItemsSold:         analytics.NewGetItemsSoldUseCase(intervalRepo),
	}

	// Create feedback delivery
	var notifier adapter.FeedbackNotifier
	var worker *email.Worker
	sender := opts.EmailSender
	if sender == nil && cfg.Email.ResendAPIKey != "" {
		sender = email.NewResendClient(cfg.Email.ResendAPIKey, cfg.Email.FromName, cfg.Email.FromEmail)
	}
	if sender != nil && cfg.Feedback.ToEmail != "" {
		renderer, err := templates.NewRenderer()
		if err != nil {
			return nil, fmt.Errorf("failed to load email templates: %w", err)
		}
		notifier = email.NewService(emailOutbox, renderer, cfg.Feedback.ToEmail, cfg.Feedback.Location())
		worker = email.NewWorker(emailOutbox, sender, email.WorkerConfig{
			PollInterval:  cfg.Email.PollInterval,
			BatchSize:     cfg.Email.BatchSize,
			ClaimTimeout:  cfg.Email.ClaimTimeout,
			RetentionDays: cfg.Email.RetentionDays,
		})
	} else {
		slog.Warn("Feedback email delivery not configured, feedback will only be logged",
			"has_sender", sender != nil,
			"has_recipient", cfg.Feedback.ToEmail != "",
		)
	}
	sendFeedbackUseCase := feedback.NewSendFeedbackUseCase(notifier)

	// Create controllers
	healthController := controller.NewHealthController(db.GormHealthCheck(database), cacheHealthChecker)
	analyticsController := controller.NewAnalyticsController(useCases, cfg.Analytics.DefaultInterval)
	feedbackController := controller.NewFeedbackController(sendFeedbackUseCase)

	// Create middleware
	// Limiting is disabled in test environments
	var feedbackRateLimiter *middleware.RateLimiter
	if cfg.Server.Environment == "e2e" || cfg.Server.Environment == "test" {
		feedbackRateLimiter = middleware.NewRateLimiterWithConfig(0, cfg.Feedback.RateWindow)
	} else {
		feedbackRateLimiter = middleware.NewRateLimiterWithConfig(cfg.Feedback.RateLimit, cfg.Feedback.RateWindow)
	}

	// Create router
	r := router.NewRouter(
		healthController,
		analyticsController,
		feedbackController,
		feedbackRateLimiter,
		cfg.Server.AllowedOrigins,
	)

	return &Injector{
		Config:          cfg,
		DB:              database,
		Router:          r,
		DailyMetricRepo: dailyMetricRepo,
		IntervalRepo:    intervalRepo,
		CatalogRepo:     catalogRepo,
		IntervalSeries:  series,
		EmailWorker:     worker,
	}, nil
}
