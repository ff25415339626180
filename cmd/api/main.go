package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/leadpulse/leadpulse/config"
	"github.com/leadpulse/leadpulse/pkg/ai/llm"
	"github.com/leadpulse/leadpulse/pkg/api/handlers"
	custommw "github.com/leadpulse/leadpulse/pkg/api/middleware"
	"github.com/leadpulse/leadpulse/pkg/auth"
	"github.com/leadpulse/leadpulse/pkg/cache"
	"github.com/leadpulse/leadpulse/pkg/campaign"
	"github.com/leadpulse/leadpulse/pkg/database"
	"github.com/leadpulse/leadpulse/pkg/dispatch"
	"github.com/leadpulse/leadpulse/pkg/domain"
	"github.com/leadpulse/leadpulse/pkg/jobs"
	"github.com/leadpulse/leadpulse/pkg/leadstore"
	"github.com/leadpulse/leadpulse/pkg/ledger"
	"github.com/leadpulse/leadpulse/pkg/logger"
	"github.com/leadpulse/leadpulse/pkg/metrics"
	custommiddleware "github.com/leadpulse/leadpulse/pkg/middleware"
	"github.com/leadpulse/leadpulse/pkg/models"
	"github.com/leadpulse/leadpulse/pkg/personalize"
	"github.com/leadpulse/leadpulse/pkg/secrets"
	"github.com/leadpulse/leadpulse/pkg/templatestore"
	"github.com/leadpulse/leadpulse/pkg/transport"
	"github.com/leadpulse/leadpulse/pkg/userstore"
)

// attemptMetrics feeds campaign run events into Prometheus.
type attemptMetrics struct {
	m *metrics.Metrics
}

func (am attemptMetrics) AttemptRecorded(attempt models.ContactAttempt) {
	am.m.RecordAttemptSent(string(attempt.ContactType))
}

func (am attemptMetrics) ProgressUpdated(percent float64) {}

func main() {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Info("configuration loaded", "environment", cfg.APIEnvironment)

	// In AWS environments, sensitive config comes from Secrets Manager
	// instead of plain env vars.
	secretsManager, err := secrets.NewManager(secrets.AutoDetectConfig(), log)
	if err != nil {
		log.Error("failed to initialize secrets backend", "error", err)
		os.Exit(1)
	}
	secretsCtx, cancelSecrets := context.WithTimeout(context.Background(), 10*time.Second)
	secrets.Overlay(secretsCtx, secretsManager, cfg)
	cancelSecrets()

	// Sentry error tracking (optional).
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.APIEnvironment,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Warn("failed to initialize sentry", "error", err)
		} else {
			log.Info("sentry initialized", "environment", cfg.APIEnvironment)
			defer sentry.Flush(2 * time.Second)
		}
	}

	// Postgres. NewClient pings and applies the schema.
	db, err := database.NewClient(cfg.DatabaseURL, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// Redis cache (lead list cache + JWT blacklist).
	redisClient, err := cache.NewClient(cfg.RedisURL, log)
	if err != nil {
		log.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	tokenBlacklist := auth.NewTokenBlacklist(redisClient)
	prometheusMetrics := metrics.New()

	// Stores.
	leads := leadstore.NewPostgresStore(db.DB, redisClient)
	templates := templatestore.NewPostgresStore(db.DB)
	users := userstore.NewPostgresStore(db.DB)
	contactLedger := ledger.NewPostgresStore(db.DB)

	seedCtx, cancelSeed := context.WithTimeout(context.Background(), 10*time.Second)
	if err := templates.Seed(seedCtx, templatestore.DefaultTemplates()); err != nil {
		log.Warn("failed to seed default templates", "error", err)
	}
	cancelSeed()

	// Personalization: OpenAI when a key is configured, deterministic
	// placeholder substitution otherwise.
	var generator domain.TextGenerator
	switch {
	case cfg.OpenAIAPIKey != "":
		generator = llm.NewOpenAIClient(llm.Config{
			APIKey:      cfg.OpenAIAPIKey,
			Model:       cfg.OpenAIModel,
			Temperature: cfg.OpenAITemperature,
			MaxTokens:   cfg.OpenAIMaxTokens,
		}, log)
		log.Info("openai personalization enabled", "model", cfg.OpenAIModel)
	case cfg.OllamaBaseURL != "":
		generator = llm.NewOllamaClient(cfg.OllamaBaseURL, llm.Config{
			Model:       cfg.OllamaModel,
			Temperature: cfg.OpenAITemperature,
			MaxTokens:   cfg.OpenAIMaxTokens,
		}, log)
		log.Info("ollama personalization enabled", "base_url", cfg.OllamaBaseURL, "model", cfg.OllamaModel)
	default:
		log.Info("ai generation disabled, using template fallback for all messages")
	}
	personalizer := personalize.NewService(generator, log)
	personalizer.OnFallback(prometheusMetrics.RecordPersonalizationFallback)

	// Delivery transports, one per channel.
	transports := map[models.Channel]domain.Transport{
		models.ChannelEmail:    transport.NewEmailTransport(cfg.EmailFrom, cfg.EmailFromName, cfg.SendGridAPIKey, log),
		models.ChannelSMS:      transport.NewSMSTransport(cfg.SMSGatewayURL, cfg.SMSGatewayToken, cfg.SMSFromNumber, cfg.SMSRegion, log),
		models.ChannelFacebook: transport.NewFacebookTransport("", cfg.FacebookPageToken, log),
	}
	dispatcher := dispatch.NewService(transports, time.Duration(cfg.DispatchTimeoutSec)*time.Second, log)

	campaigns := campaign.NewService(
		leads, templates, contactLedger, personalizer, dispatcher,
		time.Duration(cfg.CampaignSendDelayMs)*time.Millisecond, log,
	)
	campaigns.Subscribe(attemptMetrics{m: prometheusMetrics})

	// No-response sweep.
	sweeper := jobs.NewNoResponseSweeper(leads, contactLedger, cfg.NoResponseAfterDays, log)
	cronManager := jobs.NewCronManager(sweeper, log)
	if err := cronManager.SetupJobs(cfg.NoResponseSweepSchedule); err != nil {
		log.Error("failed to setup cron jobs", "error", err)
		os.Exit(1)
	}
	cronManager.Start()
	log.Info("no-response sweep scheduled", "schedule", cfg.NoResponseSweepSchedule, "after_days", cfg.NoResponseAfterDays)

	// Handlers.
	authHandler := handlers.NewAuthHandler(users, cfg, tokenBlacklist, prometheusMetrics)
	leadHandler := handlers.NewLeadHandler(leads)
	templateHandler := handlers.NewTemplateHandler(templates)
	campaignHandler := handlers.NewCampaignHandler(
		campaigns, personalizer, leads, templates, contactLedger, cfg, prometheusMetrics)

	e := echo.New()
	e.HideBanner = true

	globalRateLimiter := custommiddleware.NewRateLimiter(cfg.RateLimitRequestsPerMinute, cfg.RateLimitBurst)
	authRateLimiter := custommiddleware.NewRateLimiter(5, 2) // brute-force guard on login

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{Repanic: true}))
	}
	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig()))
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.DefaultSecurityHeadersConfig()))
	e.Use(middleware.Gzip())
	e.Use(globalRateLimiter.RateLimitMiddleware())

	e.GET("/health", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy", "database": "down",
			})
		}
		if _, err := redisClient.Redis.Ping(ctx).Result(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]any{
				"status": "unhealthy", "cache": "down",
			})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"status": "healthy", "database": "up", "cache": "up",
		})
	})

	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := e.Group("/api/v1")

	// Public auth routes.
	authRoutes := v1.Group("/auth")
	authRoutes.POST("/login", authHandler.Login, authRateLimiter.RateLimitMiddleware())

	// Everything else requires a valid, non-revoked JWT.
	jwtMW := custommw.JWTMiddlewareWithBlacklist(cfg.JWTSecret, tokenBlacklist)
	authRoutes.POST("/logout", authHandler.Logout, jwtMW)
	authRoutes.GET("/me", authHandler.Me, jwtMW)

	protected := v1.Group("")
	protected.Use(jwtMW)
	{
		leadsGroup := protected.Group("/leads")
		{
			leadsGroup.GET("", leadHandler.List)
			leadsGroup.POST("", leadHandler.Add)
			leadsGroup.GET("/:id", leadHandler.Get)
			leadsGroup.PATCH("/:id", leadHandler.Update)
			leadsGroup.PUT("/:id", leadHandler.Update)
			leadsGroup.DELETE("/:id", leadHandler.Delete)
			leadsGroup.GET("/:id/contacts", campaignHandler.LeadContacts)
		}

		templatesGroup := protected.Group("/templates")
		{
			templatesGroup.GET("", templateHandler.List)
			templatesGroup.GET("/:id", templateHandler.Get)
		}

		campaignsGroup := protected.Group("/campaigns")
		{
			campaignsGroup.POST("/run", campaignHandler.Run)
			campaignsGroup.POST("/preview", campaignHandler.Preview)
		}

		protected.GET("/contacts/recent", campaignHandler.RecentContacts)
	}

	address := fmt.Sprintf("%s:%s", cfg.APIHost, cfg.APIPort)
	log.Info("starting api server",
		"address", address,
		"send_delay_ms", cfg.CampaignSendDelayMs,
		"rate_limit_per_minute", cfg.RateLimitRequestsPerMinute,
	)

	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Error("failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server")
	cronManager.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}
	log.Info("server stopped")
}
