package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/crypto/bcrypt"

	"github.com/techgeo/backend/internal/config"
	"github.com/techgeo/backend/internal/db"
	"github.com/techgeo/backend/internal/goroutine"
	httpHandlers "github.com/techgeo/backend/internal/http/handlers"
	httpRouter "github.com/techgeo/backend/internal/http/router"
	"github.com/techgeo/backend/internal/logger"
	"github.com/techgeo/backend/internal/repository"
	"github.com/techgeo/backend/internal/service"
	"github.com/techgeo/backend/internal/ws"
)

func main() {
	// Готовим контекст для graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("main: ошибка загрузки конфигурации: %v", err)
	}

	logger.Init(cfg.LogLevel, cfg.Env)

	// Подключение к базе и миграции.
	dbConn, err := db.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("main: ошибка подключения к базе: %v", err)
	}
	defer safeClose(dbConn)

	if err := db.RunMigrations(ctx, dbConn, cfg.MigrationsPath); err != nil {
		log.Fatalf("main: ошибка миграций: %v", err)
	}

	tokenManager := service.NewTokenManager(cfg.JWTSecret, cfg.RefreshSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL)

	// Репозитории.
	userRepo := repository.NewUserRepository(dbConn)
	bidRepo := repository.NewBidRepository(dbConn)
	submissionRepo := repository.NewSubmissionRepository(dbConn)
	statsRepo := repository.NewStatsRepository(dbConn)

	// Стартовый админ: создаётся один раз, дальше вход по паролю.
	if err := bootstrapAdmin(ctx, userRepo, cfg); err != nil {
		log.Fatalf("main: не удалось создать администратора: %v", err)
	}

	// Вебсокеты.
	hub := ws.NewHub()
	goroutine.SafeGo("ws-hub", hub.Run)

	// Сервисы.
	authService := service.NewAuthService(userRepo, tokenManager)
	bidService := service.NewBidService(bidRepo, userRepo, hub)
	submissionService := service.NewSubmissionService(submissionRepo, bidRepo, hub)
	withdrawalService := service.NewWithdrawalService(userRepo, hub)
	membershipService := service.NewMembershipService(userRepo)
	statsService := service.NewStatsService(statsRepo)

	// Фоновая просрочка заявок.
	goroutine.SafeGoWithContext(ctx, "bid-expiry-sweep", func(ctx context.Context) {
		bidService.StartExpirySweep(ctx, cfg.BidSweepPeriod)
	})

	// HTTP хэндлеры.
	authHandler := httpHandlers.NewAuthHandler(authService)
	profileHandler := httpHandlers.NewProfileHandler(userRepo, statsService)
	bidHandler := httpHandlers.NewBidHandler(bidService)
	submissionHandler := httpHandlers.NewSubmissionHandler(submissionService)
	withdrawalHandler := httpHandlers.NewWithdrawalHandler(withdrawalService)
	membershipHandler := httpHandlers.NewMembershipHandler(membershipService)
	adminHandler := httpHandlers.NewAdminHandler(bidService, submissionService, withdrawalService, statsService)
	wsHandler := httpHandlers.NewWSHandler(hub, tokenManager)
	healthHandler := httpHandlers.NewHealthHandler(dbConn)

	engine := httpRouter.SetupRouter(
		cfg,
		authHandler,
		profileHandler,
		bidHandler,
		submissionHandler,
		withdrawalHandler,
		membershipHandler,
		adminHandler,
		wsHandler,
		healthHandler,
		tokenManager,
	)

	server := &http.Server{
		Addr:    ":" + cfg.HTTPPort,
		Handler: engine,
	}

	// Завершаем сервер при получении сигнала.
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("main: ошибка остановки http сервера: %v", err)
		}
	}()

	log.Printf("main: HTTP сервер запущен на порту %s", cfg.HTTPPort)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("main: сервер завершился с ошибкой: %v", err)
	}
}

// bootstrapAdmin гарантирует наличие учётки администратора.
func bootstrapAdmin(ctx context.Context, users *repository.UserRepository, cfg *config.Config) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return users.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminEmail, string(hash))
}

// safeClose закрывает соединение с базой.
func safeClose(db *sqlx.DB) {
	if err := db.Close(); err != nil {
		log.Printf("main: ошибка закрытия базы: %v", err)
	}
}
