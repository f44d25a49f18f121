package main

// @title PrintFast API
// @version 1.0
// @description Print-mail campaign scheduling for vendors and their admins.

// @host localhost:8080
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/jordanlanch/printfast/config"
	_ "github.com/jordanlanch/printfast/docs"
	"github.com/jordanlanch/printfast/pkg/api"
	apierrors "github.com/jordanlanch/printfast/pkg/api/errors"
	"github.com/jordanlanch/printfast/pkg/api/handlers"
	apimw "github.com/jordanlanch/printfast/pkg/api/middleware"
	"github.com/jordanlanch/printfast/pkg/api/validation"
	"github.com/jordanlanch/printfast/pkg/auth"
	"github.com/jordanlanch/printfast/pkg/cache"
	"github.com/jordanlanch/printfast/pkg/campaigns"
	"github.com/jordanlanch/printfast/pkg/database"
	"github.com/jordanlanch/printfast/pkg/email"
	"github.com/jordanlanch/printfast/pkg/integrations"
	"github.com/jordanlanch/printfast/pkg/jobs"
	"github.com/jordanlanch/printfast/pkg/logger"
	"github.com/jordanlanch/printfast/pkg/metrics"
	custommiddleware "github.com/jordanlanch/printfast/pkg/middleware"
	"github.com/jordanlanch/printfast/pkg/secrets"
	"github.com/jordanlanch/printfast/pkg/settings"
	"github.com/jordanlanch/printfast/pkg/storage"
	"github.com/jordanlanch/printfast/pkg/users"
	"github.com/jordanlanch/printfast/pkg/vendors"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Invalid configuration: %v", err)
	}
	log.Printf("🔧 Configuration loaded (environment: %s)", cfg.Environment)

	appLog := logger.NewForEnvironment(cfg.LogLevel, cfg.Environment)

	// Initialize Sentry for error tracking
	if cfg.SentryDSN != "" {
		err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			Environment:      cfg.Environment,
			TracesSampleRate: 0.2,
			AttachStacktrace: true,
		})
		if err != nil {
			log.Printf("⚠️  Failed to initialize Sentry: %v", err)
		} else {
			log.Printf("✅ Sentry initialized (environment: %s)", cfg.Environment)
			defer sentry.Flush(2 * time.Second)
		}
	} else {
		log.Printf("ℹ️  Sentry disabled (no DSN configured)")
	}

	db, err := database.NewClient(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
		ConnMaxIdleTime: 10 * time.Minute,
	}, &database.SSLConfig{Mode: cfg.DBSSLMode})
	if err != nil {
		log.Fatalf("❌ Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Redis is optional: without it there are no sessions and logout cannot revoke bearer tokens
	var redisClient *cache.Client
	if cfg.RedisURL != "" {
		redisClient, err = cache.NewClient(cfg.RedisURL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		log.Printf("⚠️  REDIS_URL not set: session transport and token revocation disabled")
	}

	prometheusMetrics := metrics.New()
	log.Printf("✅ Prometheus metrics initialized")

	store, err := newStorage(context.Background(), cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	uploader := storage.NewUploader(store)
	log.Printf("✅ Storage initialized (backend: %s)", uploader.Backend())

	sealer, err := secrets.NewSealer(cfg.SealingKey())
	if err != nil {
		log.Fatalf("❌ Failed to initialize credential sealer: %v", err)
	}

	mailer := email.NewService(cfg.EmailFrom, cfg.EmailFromName, cfg.SendGridAPIKey)

	// Services
	userService := users.NewService(db, users.Options{
		AllowAdminSignup:        cfg.AllowAdminSignup,
		AllowSendGodCredentials: cfg.AllowSendGodCredentials,
		GodUser: users.GodUser{
			Email:     cfg.GodUserEmail,
			Password:  cfg.GodUserPassword,
			FirstName: cfg.GodUserFirstName,
			LastName:  cfg.GodUserLastName,
		},
	}, mailer, prometheusMetrics, appLog)
	vendorService := vendors.NewService(db, appLog)
	campaignService := campaigns.NewService(db, uploader, campaigns.Options{
		PreserveWeekPayments: cfg.PreserveWeekPayments,
	}, prometheusMetrics, appLog)
	integrationService := integrations.NewService(db, sealer, appLog)
	settingsService := settings.NewService(db, settings.Features{
		AllowAdminSignup:        cfg.AllowAdminSignup,
		AllowSendGodCredentials: cfg.AllowSendGodCredentials,
		PreserveWeekPayments:    cfg.PreserveWeekPayments,
		ArtworkReminders:        cfg.ArtworkRemindersEnabled,
	}, settings.Runtime{
		Environment:    cfg.Environment,
		StorageBackend: uploader.Backend(),
		EmailMode:      mailer.Mode(),
		AuthTransports: cfg.AuthTransports,
	})

	// Identity transports
	var (
		sessions  *auth.SessionStore
		blacklist *auth.TokenBlacklist
		resolvers []auth.Resolver
	)
	if redisClient != nil {
		sessions = auth.NewSessionStore(redisClient, cfg.SessionMaxAge())
		blacklist = auth.NewTokenBlacklist(redisClient)
	}
	if cfg.UsesTransport("bearer") {
		resolvers = append(resolvers, &auth.BearerResolver{Secret: cfg.JWTSecret, Blacklist: blacklist})
	}
	sessionsOn := cfg.UsesTransport("session") && sessions != nil
	if sessionsOn {
		resolvers = append(resolvers, &auth.SessionResolver{Store: sessions, CookieName: cfg.SessionCookieName})
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.New()
	e.HTTPErrorHandler = apierrors.NewHandler(appLog, cfg.IsProduction()).HandleHTTPError

	authRateLimiter := custommiddleware.NewRateLimiter(20, 15*time.Minute) // login and signup
	defer authRateLimiter.Close()

	// Global middleware
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogError:     true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
				"request_id", v.RequestID,
			}
			if v.Error != nil {
				appLog.Warn("request failed", append(attrs, "error", v.Error)...)
				return nil
			}
			appLog.Info("request", attrs...)
			return nil
		},
	}))
	e.Use(middleware.Recover())

	if cfg.SentryDSN != "" {
		e.Use(sentryecho.New(sentryecho.Options{
			Repanic: true, // let Recover handle the panic after capture
		}))
	}

	e.Use(prometheusMetrics.Middleware())
	e.Use(middleware.CORSWithConfig(custommiddleware.CORSConfig(custommiddleware.ParseOrigins(cfg.CORSOrigin))))
	e.Use(middleware.Gzip())
	e.Use(middleware.Secure())
	e.Use(custommiddleware.SecurityHeaders(custommiddleware.SecurityHeadersConfig{
		Skipper: func(c echo.Context) bool {
			return strings.HasPrefix(c.Path(), "/swagger")
		},
	}))
	e.Use(middleware.BodyLimit("12M"))

	// Public endpoints
	checks := map[string]handlers.Pinger{"database": db}
	if redisClient != nil {
		checks["redis"] = redisClient
	}
	e.GET("/health", handlers.NewHealthHandler(checks).Check)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	e.GET("/swagger/*", echoSwagger.WrapHandler)
	if local, ok := store.(*storage.LocalStorage); ok {
		e.Static("/uploads", local.Dir())
	}

	api.RegisterRoutes(e, api.Handlers{
		Auth: handlers.NewAuthHandler(userService, sessions, blacklist, handlers.AuthOptions{
			JWTSecret:               cfg.JWTSecret,
			JWTExpiration:           cfg.JWTExpiration(),
			Bearer:                  cfg.UsesTransport("bearer"),
			Session:                 sessionsOn,
			CookieName:              cfg.SessionCookieName,
			SecureCookie:            cfg.IsProduction(),
			AllowAdminSignup:        cfg.AllowAdminSignup,
			AllowSendGodCredentials: cfg.AllowSendGodCredentials,
		}),
		Users:        handlers.NewUserHandler(userService),
		Vendors:      handlers.NewVendorHandler(vendorService),
		Campaigns:    handlers.NewCampaignHandler(campaignService),
		Integrations: handlers.NewIntegrationHandler(integrationService),
		Upload:       handlers.NewUploadHandler(uploader, prometheusMetrics),
		Settings:     handlers.NewSettingsHandler(settingsService),
	}, apimw.Authenticate(resolvers, userService, appLog), authRateLimiter.Middleware())

	// Background work
	cronManager := jobs.NewCronManager(appLog)
	if cfg.ArtworkRemindersEnabled {
		job := jobs.NewArtworkReminderJob(campaignService, mailer, cfg.ArtworkReminderDays, prometheusMetrics, appLog)
		if err := cronManager.AddArtworkReminders(cfg.ArtworkRemindersSchedule, job); err != nil {
			log.Fatalf("❌ Invalid ARTWORK_REMINDERS_SCHEDULE: %v", err)
		}
	}
	cronManager.Start()

	statsCtx, stopStats := context.WithCancel(context.Background())
	defer stopStats()
	go reportPoolStats(statsCtx, db, prometheusMetrics)

	address := fmt.Sprintf(":%s", cfg.Port)
	log.Printf("🚀 PrintFast API starting on %s", address)
	log.Printf("📝 Log level: %s", cfg.LogLevel)
	log.Printf("🔐 Auth transports: %s (JWT expiration: %d hours)", strings.Join(cfg.AuthTransports, ", "), cfg.JWTExpirationHours)
	log.Printf("🌍 CORS: %s", cfg.CORSOrigin)
	log.Printf("🔒 Auth endpoints: login and signup (20 per 15 min)")
	if cfg.ArtworkRemindersEnabled {
		log.Printf("⏰ Artwork reminders: %s (%d days ahead)", cfg.ArtworkRemindersSchedule, cfg.ArtworkReminderDays)
	}

	// Graceful shutdown
	go func() {
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	select {
	case <-cronManager.Stop().Done():
		log.Println("✅ Cron jobs stopped")
	case <-ctx.Done():
		log.Println("⚠️  Cron jobs still running at shutdown")
	}

	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server gracefully stopped")
}

func newStorage(ctx context.Context, cfg *config.Config) (storage.Storage, error) {
	if cfg.StorageType == "s3" {
		return storage.NewS3Storage(ctx, storage.S3Config{
			Region:          cfg.AWSRegion,
			Bucket:          cfg.S3Bucket,
			AccessKeyID:     cfg.AWSAccessKeyID,
			SecretAccessKey: cfg.AWSSecretKey,
			Endpoint:        cfg.S3Endpoint,
			PublicURL:       cfg.StoragePublicURL,
		})
	}
	publicURL := cfg.StoragePublicURL
	if publicURL == "" {
		publicURL = "http://localhost:" + cfg.Port
	}
	return storage.NewLocalStorage(cfg.StorageLocalDir, publicURL)
}

func reportPoolStats(ctx context.Context, db *database.Client, m *metrics.Metrics) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.UpdateDBConnections(db.Stats().OpenConnections)
		}
	}
}
