package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/config"
	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/handler"
	"github.com/dafibh/spendwise/spendwise-backend/internal/messaging"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/repository/postgres"
	"github.com/dafibh/spendwise/spendwise-backend/internal/repository/storage"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// @title Spendwise API
// @version 1.0
// @description Budget status and spending analytics for personal finance workspaces.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Auth0 access token as: Bearer <token>
func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	if cfg.IsProduction() {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := postgres.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	ctx := context.Background()
	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()
	log.Info().Msg("Connected to database")

	// Optional infrastructure: receipts and archives need S3, queued delivery needs AMQP
	var store storage.ObjectStore
	if cfg.S3.Enabled() {
		s3Store, err := storage.NewS3ObjectStore(ctx, cfg.S3)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to initialize S3 storage")
		}
		store = s3Store
		log.Info().Str("bucket", cfg.S3.Bucket).Msg("S3 storage enabled")
	} else {
		log.Warn().Msg("S3_BUCKET not set; receipts and backup archives are disabled")
	}

	var queue messaging.Publisher
	if cfg.AMQP.Enabled() {
		amqpClient, err := messaging.NewClient(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to AMQP broker")
		}
		defer amqpClient.Close()
		queue = amqpClient
		log.Info().Str("queue", cfg.AMQP.Queue).Msg("AMQP notification delivery enabled")
	}

	// Repositories
	userRepo := postgres.NewUserRepository(pool)
	workspaceRepo := postgres.NewWorkspaceRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	expenseRepo := postgres.NewExpenseRepository(pool)
	incomeRepo := postgres.NewIncomeRepository(pool)
	incomeSourceRepo := postgres.NewIncomeSourceRepository(pool)
	budgetRepo := postgres.NewBudgetRepository(pool)
	monthlyBudgetRepo := postgres.NewMonthlyBudgetRepository(pool)
	notificationRepo := postgres.NewNotificationRepository(pool)
	adminStatsRepo := postgres.NewAdminStatsRepository(pool)

	hub := websocket.NewHub()
	clock := domain.SystemClock{}

	// Services
	authService := service.NewAuthService(userRepo, workspaceRepo)
	categoryService := service.NewCategoryService(categoryRepo)
	incomeService := service.NewIncomeService(incomeRepo, incomeSourceRepo)
	incomeSourceService := service.NewIncomeSourceService(incomeSourceRepo)
	catalogService := service.NewCatalogService(categoryRepo, incomeSourceRepo, clock)
	budgetService := service.NewBudgetService(budgetRepo, monthlyBudgetRepo, categoryRepo, incomeRepo)
	statusService := service.NewBudgetStatusService(expenseRepo, budgetRepo, monthlyBudgetRepo, cfg.CurrencySymbol)
	trendService := service.NewTrendService(expenseRepo, clock)
	summaryService := service.NewSummaryService(expenseRepo, incomeRepo, budgetRepo, monthlyBudgetRepo)
	reportService := service.NewReportService(expenseRepo)
	exportService := service.NewExportService(expenseRepo, categoryRepo, budgetRepo, monthlyBudgetRepo, incomeRepo, store)
	receiptService := service.NewReceiptService(expenseRepo, store)
	adminService := service.NewAdminService(adminStatsRepo, userRepo, expenseRepo, budgetRepo, clock)
	adminService.SetOwnerCache(authService)

	notificationService := service.NewNotificationService(notificationRepo, workspaceRepo, queue)
	notificationService.SetEventPublisher(hub)

	expenseService := service.NewExpenseService(expenseRepo, categoryRepo, cfg.ExpenseEditWindow, clock)
	expenseService.SetEventPublisher(hub)
	expenseService.SetSpendListener(service.NewWarningNotifier(statusService, hub, queue))

	// one JWKS cache serves both the REST API and the WebSocket upgrade
	jwtValidator, err := middleware.NewAuth0Validator(cfg.Auth0Domain, cfg.Auth0Audience)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create JWT validator")
	}
	authMiddleware := middleware.NewAuthMiddlewareWithValidator(jwtValidator, authService)
	wsAuthenticator := websocket.NewTokenAuthenticator(jwtValidator, authService)

	exportLimiter := middleware.NewRateLimiter(middleware.Quota{PerMinute: cfg.ExportRateLimitPerMinute, Burst: cfg.ExportRateLimitBurst})
	defer exportLimiter.Stop()

	handlers := handler.Handlers{
		Auth:         handler.NewAuthHandler(authService),
		Category:     handler.NewCategoryHandler(categoryService),
		Expense:      handler.NewExpenseHandler(expenseService),
		Receipt:      handler.NewReceiptHandler(receiptService),
		Income:       handler.NewIncomeHandler(incomeService),
		IncomeSource: handler.NewIncomeSourceHandler(incomeSourceService),
		Budget:       handler.NewBudgetHandler(budgetService, statusService),
		Report:       handler.NewReportHandler(reportService, trendService, summaryService),
		Export:       handler.NewExportHandler(exportService),
		Notification: handler.NewNotificationHandler(notificationService),
		Admin:        handler.NewAdminHandler(adminService, notificationService),
		Catalog:      handler.NewCatalogHandler(catalogService),
		WebSocket:    handler.NewWebSocketHandler(hub, wsAuthenticator, cfg.CORSOrigins),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()

	e.Use(echomiddleware.RequestID())

	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		ExposeHeaders:    []string{echo.HeaderContentDisposition, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	e.Use(zerologMiddleware())
	e.Use(echomiddleware.Recover())
	// receipts are the largest bodies
	e.Use(echomiddleware.BodyLimit("6M"))

	handler.RegisterRoutes(e, authMiddleware, exportLimiter, handlers)

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	rooms, sessions := hub.Stats()
	log.Info().Int("workspaces", rooms).Int("sessions", sessions).Msg("Shutting down server...")
	hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware logs one line per request
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			event := log.Info()
			if res.Status >= http.StatusInternalServerError {
				event = log.Error()
			}
			event.
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Int32("workspace_id", middleware.GetWorkspaceID(c)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
