package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	"github.com/SscSPs/affiliate_commission_app/internal/core/services"
	"github.com/SscSPs/affiliate_commission_app/internal/handlers"
	"github.com/SscSPs/affiliate_commission_app/internal/middleware"
	"github.com/SscSPs/affiliate_commission_app/internal/monitoring"
	"github.com/SscSPs/affiliate_commission_app/internal/repositories/database/pgsql"
	"github.com/SscSPs/affiliate_commission_app/pkg/config"
	"github.com/SscSPs/affiliate_commission_app/pkg/database"

	portssvc "github.com/SscSPs/affiliate_commission_app/internal/core/ports/services"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// @title ACA Backend API
// @version 1.0
// @description Affiliate commission tracking backend.

// @host localhost:8080
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @security BearerAuth
func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer database.ClosePgxPool(dbPool)
	logger.Info("Database connection pool established.")

	if err := runMigrations(logger, cfg.DatabaseURL); err != nil {
		os.Exit(1)
	}

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// Global middleware (logging, recovery, metrics, CORS)
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery(), monitoring.Middleware())
	r.Use(cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	r.GET("/metrics", monitoring.Handler())

	// Rate limiter for the public recording endpoint, keyed by client IP.
	rate, err := limiter.NewRateFromFormatted(cfg.PublicRateLimit)
	if err != nil {
		logger.Error("Invalid PUBLIC_RATE_LIMIT format", slog.String("value", cfg.PublicRateLimit), slog.String("error", err.Error()))
		os.Exit(1)
	}
	publicLimiter := limiter.New(memory.NewStore(), rate)

	handlers.RegisterValidations()
	handlers.RegisterRoutes(r, cfg, buildServices(logger, cfg, dbPool), publicLimiter)

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// buildServices wires repositories into services and returns the container
// handed to route registration.
func buildServices(logger *slog.Logger, cfg *config.Config, dbPool *pgxpool.Pool) *portssvc.ServiceContainer {
	userRepo := pgsql.NewPgxUserRepository(dbPool)
	linkRepo := pgsql.NewPgxAffiliateLinkRepository(dbPool)
	txnRepo := pgsql.NewPgxTransactionRepository(dbPool)
	commissionRepo := pgsql.NewPgxCommissionRepository(dbPool)
	referralRepo := pgsql.NewPgxReferralRepository(dbPool)
	configRepo := pgsql.NewPgxCommissionConfigRepository(dbPool)

	directory := services.NewReferralDirectoryService(linkRepo, userRepo)
	notifier := monitoring.NewMetricsCommissionNotifier(services.NewLogCommissionNotifier(logger))

	return &portssvc.ServiceContainer{
		Auth:              services.NewAuthService(userRepo, cfg.JWTSecret, cfg.JWTExpiryDuration, cfg.JWTIssuer),
		User:              services.NewUserService(userRepo, linkRepo),
		ReferralDirectory: directory,
		ReferralTree:      services.NewReferralTreeService(referralRepo, commissionRepo, userRepo),
		CommissionEngine:  services.NewCommissionEngineService(txnRepo, configRepo, directory, notifier, cfg.DefaultCommissionRates, cfg.CommissionMaxLevels),
		Commission:        services.NewCommissionService(commissionRepo),
		CommissionConfig:  services.NewCommissionConfigService(configRepo),
	}
}

// runMigrations applies all pending "up" migrations from the migrations
// directory before the server starts serving traffic.
func runMigrations(logger *slog.Logger, databaseURL string) error {
	logger.Info("Running database migrations...")
	// Open a temporary standard sql.DB connection for migrations, using the
	// pgx/v5/stdlib driver to stay compatible with the main pool.
	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		logger.Error("Failed to open database connection for migrations", slog.String("error", err.Error()))
		return err
	}
	if err := migrationDB.Ping(); err != nil {
		logger.Error("Failed to ping database for migrations", slog.String("error", err.Error()))
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		logger.Error("Could not create postgres driver instance for migrations", slog.String("error", err.Error()))
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		logger.Error("Could not create migrate instance", slog.String("error", err.Error()))
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		logger.Error("Migration source error", slog.String("error", sourceErr.Error()))
		return sourceErr
	}
	if dbErr != nil {
		logger.Error("Migration database error", slog.String("error", dbErr.Error()))
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
