package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/epeers/portfolio-tracker/config"
	"github.com/epeers/portfolio-tracker/docs"
	"github.com/epeers/portfolio-tracker/internal/database"
	"github.com/epeers/portfolio-tracker/internal/handlers"
	"github.com/epeers/portfolio-tracker/internal/middleware"
	"github.com/epeers/portfolio-tracker/internal/polygon"
	"github.com/epeers/portfolio-tracker/internal/repository"
	"github.com/epeers/portfolio-tracker/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title Portfolio Tracker API
// @version 1.0
// @description Ingests brokerage, performance and ranking exports and serves portfolio analytics.
// @BasePath /

// appHandlers groups every handler the router mounts
type appHandlers struct {
	upload      *handlers.UploadHandler
	performance *handlers.PerformanceHandler
	portfolio   *handlers.PortfolioHandler
	history     *handlers.HistoryHandler
	market      *handlers.MarketHandler
	admin       *handlers.AdminHandler
	health      *handlers.HealthHandler
}

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.SetLevel(cfg.LogLevel)

	// Create context for initialization
	ctx := context.Background()

	if cfg.MigrateOnStart {
		if err := database.Migrate(cfg.PGURL); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
	}

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Initialize market data client
	polygonClient := polygon.NewClient(cfg.PolygonAPIKey)
	if cfg.PolygonAPIKey == "" {
		log.Warn("POLYGON_API_KEY is not set; market data endpoints will fail")
	}

	// Initialize repositories
	securityRepo := repository.NewSecurityRepository(db.Pool)
	accountRepo := repository.NewAccountRepository(db.Pool)
	snapshotRepo := repository.NewSnapshotRepository(db.Pool)
	perfRepo := repository.NewPerformanceRepository(db.Pool)
	metricsRepo := repository.NewMetricsRepository(db.Pool)
	barsRepo := repository.NewBarsRepository(db.Pool)
	rankingRepo := repository.NewRankingRepository(db.Pool)

	// Initialize services
	transparencySvc := services.NewTransparencyService(cfg.SnapshotDir)
	snapshotSvc := services.NewSnapshotService(snapshotRepo, securityRepo, accountRepo, transparencySvc)
	portfolioSvc := services.NewPortfolioService(snapshotRepo, accountRepo)
	historySvc := services.NewHistoryService(snapshotRepo)
	perfSvc := services.NewPerformanceService(perfRepo, metricsRepo)
	betaSvc := services.NewBetaService(perfRepo, metricsRepo)
	marketSvc := services.NewMarketService(polygonClient, barsRepo)
	rankingSvc := services.NewRankingService(rankingRepo)

	// Initialize handlers
	h := appHandlers{
		upload:      handlers.NewUploadHandler(snapshotSvc, rankingSvc),
		performance: handlers.NewPerformanceHandler(perfSvc),
		portfolio:   handlers.NewPortfolioHandler(portfolioSvc),
		history:     handlers.NewHistoryHandler(historySvc),
		market:      handlers.NewMarketHandler(marketSvc),
		admin:       handlers.NewAdminHandler(betaSvc, marketSvc),
		health:      handlers.NewHealthHandler(db, transparencySvc),
	}

	if cfg.LogLevel < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger(), middleware.CORS(cfg.CORSOrigins))
	registerRoutes(router, h)

	docs.SwaggerInfo.Host = ""
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Info("Server exited")
}

func registerRoutes(router *gin.Engine, h appHandlers) {
	// Health
	router.GET("/health", h.health.Health)
	router.GET("/health/db", h.health.HealthDB)

	api := router.Group("/api")

	// Uploads
	api.POST("/uploads/positions", h.upload.UploadPositions)
	api.POST("/uploads/rankings/:report_type", h.upload.UploadRanking)
	api.GET("/uploads/rankings/files", h.upload.RankingFiles)
	api.GET("/uploads/rankings/latest", h.upload.RankingLatest)

	// Portfolio and performance
	api.GET("/portfolio/summary", h.portfolio.Summary)
	api.GET("/portfolio/positions", h.portfolio.Positions)
	api.GET("/portfolio/performance", h.portfolio.Performance)
	api.GET("/portfolio/accounts", h.portfolio.Accounts)
	api.POST("/portfolio/performance/upload", h.performance.Upload)
	api.GET("/portfolio/performance/series", h.performance.Series)
	api.GET("/portfolio/performance/rollups", h.performance.Rollups)
	api.GET("/portfolio/performance/metrics", h.performance.Metrics)
	api.GET("/portfolio/equity-curve", h.performance.EquityCurve)
	api.GET("/portfolio/equity_curve", h.performance.LegacyEquityCurve)

	// History
	api.GET("/history/snapshots", h.history.Snapshots)
	api.GET("/history/positions", h.history.Positions)
	api.GET("/history/dashboard-latest", h.history.DashboardLatest)
	api.GET("/history/activity", h.history.Activity)

	// Markets
	api.GET("/markets/bars", h.market.Bars)
	api.POST("/markets/bars/daily/batch", h.market.BatchBars)

	// Transparency
	api.GET("/transparency/latest-snapshot", h.health.LatestSnapshot)

	// Jobs
	admin := router.Group("/admin")
	admin.POST("/metrics/update", h.admin.UpdateMetrics)
	admin.POST("/metrics/backfill", h.admin.BackfillMetrics)
	admin.POST("/bars/backfill", h.admin.BackfillBars)
}
