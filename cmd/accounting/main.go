package main

import (
	"context"
	"errors"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	database "github.com/purple-water/accounting/db"
	"github.com/purple-water/accounting/internal/auth"
	"github.com/purple-water/accounting/internal/config"
	"github.com/purple-water/accounting/internal/finance/application"
	"github.com/purple-water/accounting/internal/finance/domain"
	"github.com/purple-water/accounting/internal/finance/infrastructure"
	"github.com/purple-water/accounting/internal/finance/interfaces"
	"github.com/purple-water/accounting/internal/logging"
	"github.com/purple-water/accounting/internal/server"
	"github.com/purple-water/accounting/internal/user"
	"github.com/robfig/cron/v3"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		logger.WithError(err).Fatal("Missing configuration, update to start server")
	}

	decimal.MarshalJSONWithoutQuotes = true

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbService, err := database.NewDBService(ctx, cfg.DBConnectionString, logger)
	if err != nil {
		logger.WithError(err).Fatal("Could not initialize database")
	}
	defer dbService.Close()

	if cfg.RunMigrations {
		if err := database.RunMigrations(dbService.DB); err != nil {
			logger.WithError(err).Fatal("Could not apply migrations")
		}
		logger.Info("Database migrations applied")
	}

	var categoryRepo domain.CategoryRepository = infrastructure.NewCategoryRepository(dbService.DB)
	if cfg.RedisAddr != "" {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg.RedisAddr)
		if err != nil {
			logger.WithError(err).WithField("addr", cfg.RedisAddr).Warn("Redis unavailable, category cache disabled")
		} else {
			defer rdb.Close()
			categoryRepo = infrastructure.NewCachedCategoryRepository(categoryRepo, rdb, cfg.CategoryCacheTTL, logger)
			logger.WithField("addr", cfg.RedisAddr).Info("Category cache enabled")
		}
	}
	transactionRepo := infrastructure.NewTransactionRepository(dbService.DB)

	userRepo := user.NewUserRepository(dbService.DB)
	twoFactorRepo := auth.NewTwoFactorRepository(dbService.DB)
	sessionManager := auth.NewSessionManager()
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.AccessTokenTTL)
	authenticator := auth.Authenticator{Issuer: "Accounting"}

	userService := user.NewUserService(userRepo, logger)
	authService := auth.NewAuthService(twoFactorRepo, userService, sessionManager, jwtManager, authenticator, logger)

	categoryService := application.NewCategoryService(categoryRepo, logger)
	transactionService := application.NewTransactionService(transactionRepo, categoryService, logger)

	srv := server.NewServer(server.Handlers{
		Auth:            auth.NewHandler(authService, logger),
		User:            user.NewHandler(userService, auth.UserIDFromContext, logger),
		Transaction:     interfaces.NewDefaultTransactionHandler(transactionService, logger),
		ItemCategory:    interfaces.NewDefaultCategoryHandler(domain.ItemCategory, categoryService, logger),
		PaymentCategory: interfaces.NewDefaultCategoryHandler(domain.PaymentCategory, categoryService, logger),
	}, authService, dbService, cfg.CORSAllowedOrigin, logger)

	scheduler, err := StartScheduler(authService, dbService, logger)
	if err != nil {
		logger.WithError(err).Fatal("Scheduler didn't start, stopping the app ...")
	}

	if cfg.PprofAddr != "" {
		go func() {
			logger.WithField("addr", cfg.PprofAddr).Info("Starting pprof listener")
			if err := http.ListenAndServe(cfg.PprofAddr, nil); err != nil {
				logger.WithError(err).Warn("pprof listener stopped")
			}
		}()
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.WithField("addr", httpServer.Addr).Info("Server starting")
		serverErr <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Error("Server failed")
		}
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
	}

	<-scheduler.Stop().Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Graceful shutdown failed")
	}
	logger.Info("Server stopped")
}

// StartScheduler runs the periodic maintenance jobs: expired 2FA session
// tokens are purged every minute and database health is logged every five.
func StartScheduler(authService auth.Service, health server.HealthChecker, logger logrus.FieldLogger) (*cron.Cron, error) {
	c := cron.New()

	_, err := c.AddFunc("@every 1m", func() {
		if purged := authService.PurgeExpiredSessions(); purged > 0 {
			logger.WithField("purged", purged).Debug("Expired 2FA sessions removed")
		}
	})
	if err != nil {
		return nil, err
	}

	_, err = c.AddFunc("@every 5m", func() {
		stats := health.Health(context.Background())
		fields := logrus.Fields{}
		for k, v := range stats {
			fields[k] = v
		}
		if stats["status"] != "up" {
			logger.WithFields(fields).Error("Database health check failed")
			return
		}
		logger.WithFields(fields).Info("Database health")
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}
