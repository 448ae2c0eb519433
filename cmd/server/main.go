package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/AhilyaKokare/visitor-pass-service/internal/audit"
	"github.com/AhilyaKokare/visitor-pass-service/internal/auth"
	"github.com/AhilyaKokare/visitor-pass-service/internal/config"
	"github.com/AhilyaKokare/visitor-pass-service/internal/dashboard"
	"github.com/AhilyaKokare/visitor-pass-service/internal/database"
	"github.com/AhilyaKokare/visitor-pass-service/internal/events"
	"github.com/AhilyaKokare/visitor-pass-service/internal/expiry"
	"github.com/AhilyaKokare/visitor-pass-service/internal/pass"
	"github.com/AhilyaKokare/visitor-pass-service/internal/server"
	"github.com/AhilyaKokare/visitor-pass-service/internal/tenant"
	"github.com/AhilyaKokare/visitor-pass-service/internal/token"
	"github.com/AhilyaKokare/visitor-pass-service/internal/user"
)

func main() {
	// init logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	cfg, err := config.LoadConfig(logger)
	if err != nil {
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	// load database
	db, err := database.Init(cfg.DbConfig)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// run migrations
	if err := database.Migrate(context.Background(), db, logger); err != nil {
		logger.Fatal("failed to migrate database", zap.Error(err))
	}

	// notification events go to RabbitMQ when configured, nowhere otherwise
	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPConfig.URL != "" {
		publisher, err = events.NewAMQPPublisher(cfg.AMQPConfig, logger)
		if err != nil {
			logger.Fatal("failed to connect to message broker", zap.Error(err))
		}
	} else {
		logger.Warn("AMQP_URL not set, notification events will be dropped")
	}
	defer func() { _ = publisher.Close() }()

	// repositories
	userRepo := user.NewRepo(db, logger)
	tenantRepo := tenant.NewRepo(db, logger)
	passRepo := pass.NewRepo(db, logger)
	auditRepo := audit.NewRepo(db, logger)
	resetRepo := auth.NewResetTokenRepo(db, logger)
	dashboardRepo := dashboard.NewRepo(db, logger)

	// services
	recorder := audit.NewRecorder(auditRepo, logger)
	tokenSvc := token.NewService(logger, cfg.JWTConfig)
	tenantSvc := tenant.NewService(tenantRepo, userRepo, recorder, publisher, cfg.AppConfig.LoginURL, logger)
	userSvc := user.NewService(userRepo, recorder, publisher, tenantSvc.Name, cfg.AppConfig.LoginURL, logger)
	passSvc := pass.NewService(passRepo, userRepo, recorder, publisher, logger)
	authSvc := auth.NewService(userRepo, tokenSvc, resetRepo, recorder, publisher, tenantSvc.Name, logger)

	// handlers
	handlers := server.Handlers{
		Auth:      auth.NewHandler(authSvc, cfg.AppConfig.ResetBaseURL, logger),
		Users:     user.NewHandler(userSvc, logger),
		Tenants:   tenant.NewHandler(tenantSvc, userSvc, logger),
		Passes:    pass.NewHandler(passSvc, logger),
		Dashboard: dashboard.NewHandler(dashboardRepo, logger),
		Audit:     audit.NewHandler(auditRepo, logger),
	}

	router := server.NewRouter(cfg, tokenSvc, handlers, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.AppConfig.Port,
		Handler:      router,
		ReadTimeout:  cfg.AppConfig.ReadTimeout,
		WriteTimeout: cfg.AppConfig.WriteTimeout,
		IdleTimeout:  cfg.AppConfig.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sweeper := expiry.NewSweeper(passSvc, cfg.ExpiryConfig.SweepInterval, logger)
	go sweeper.Run(ctx)

	go func() {
		logger.Info("application started", zap.String("port", cfg.AppConfig.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}
