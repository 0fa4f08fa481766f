package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/greenbasket/ledger-service/internal/app/background"
	"github.com/greenbasket/ledger-service/internal/config"
	"github.com/greenbasket/ledger-service/internal/delivery/http/handlers"
	"github.com/greenbasket/ledger-service/internal/domain"
	"github.com/greenbasket/ledger-service/internal/infrastructure/cache"
	publisher "github.com/greenbasket/ledger-service/internal/infrastructure/kafka"
	"github.com/greenbasket/ledger-service/internal/infrastructure/migrate"
	"github.com/greenbasket/ledger-service/internal/infrastructure/payout"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres"
	"github.com/greenbasket/ledger-service/internal/infrastructure/postgres/repository"
	"github.com/greenbasket/ledger-service/internal/infrastructure/redislock"
	"github.com/greenbasket/ledger-service/internal/logger"
	"github.com/greenbasket/ledger-service/internal/usecase"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("failed to load .env")
	}
	// Reading config
	cfg := config.MustLoad()

	zapLogger, err := logger.New(cfg.Env, cfg.LogConfig.LogLevel)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	mode, ok := domain.ParseMode(cfg.Payment.Mode)
	if !ok {
		zapLogger.Fatal("invalid payment mode", zap.String("mode", cfg.Payment.Mode))
	}

	// Init database
	db := postgres.MustInitDB(cfg)
	if cfg.LedgerDB.MigrationsPath != "" {
		if err := migrate.RunMigrations(db, cfg.LedgerDB.MigrationsPath); err != nil {
			zapLogger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	brokers := []string{fmt.Sprintf("%s:%s", cfg.KafkaService.Host, cfg.KafkaService.Port)}
	pub := publisher.NewDefaultKafkaPublisher(brokers)
	defer pub.Close()

	var locker domain.Locker
	redisLocker, err := redislock.NewRedisLocker(cfg.RedisService.Addr, cfg.RedisService.Password, cfg.RedisService.DB)
	if err != nil {
		// the lock is advisory; row claims keep overlapping runs safe
		zapLogger.Warn("redis unavailable, continuing without collection lock", zap.Error(err))
	} else {
		locker = redisLocker
	}

	dispatcher := payout.NewHTTPPayoutDispatcher(fmt.Sprintf("%s:%s", cfg.PayoutService.Host, cfg.PayoutService.Port))

	// Init repositories
	orderRepo := repository.NewDefaultOrderRepository(db)
	txRepo := repository.NewDefaultTransactionRepository(db)
	deliveryRepo := repository.NewDefaultDeliveryOrderRepository(db)
	courierRepo := repository.NewDefaultCourierRepository(db)
	collectionRepo := repository.NewDefaultCollectionRepository(db)
	outboxRepo := repository.NewDefaultOutboxRepository(db)

	readCache := cache.NewTTLCache(cache.RealClock(), 20*time.Second, 256)

	// Init usecases
	webhookUC, err := usecase.NewDefaultWebhookUsecase(orderRepo, courierRepo, mode, cfg.KafkaService.Topic, zapLogger)
	if err != nil {
		zapLogger.Fatal("failed to init webhook usecase", zap.Error(err))
	}
	collectionUC := usecase.NewDefaultCollectionUsecase(
		orderRepo, deliveryRepo, txRepo, collectionRepo,
		locker, dispatcher, mode, cfg.KafkaService.Topic, zapLogger)
	reconUC := usecase.NewDefaultReconciliationUsecase(txRepo, readCache, mode, zapLogger)

	// Background workers
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	tasks := background.NewBackgroundTasks(
		collectionUC, outboxRepo, pub,
		cfg.Collection.Interval, cfg.Collection.Enabled, zapLogger)
	tasks.StartAll(ctx)

	// HTTP server
	router := handlers.SetupRouter(
		handlers.NewWebhookHandler(webhookUC, zapLogger),
		handlers.NewCollectionHandler(collectionUC, zapLogger),
		handlers.NewReconciliationHandler(reconUC, zapLogger),
	)

	addr := fmt.Sprintf("%s:%s", cfg.HTTPServer.Host, cfg.HTTPServer.Port)
	zapLogger.Info("ledger service listening",
		zap.String("addr", addr), zap.String("mode", string(mode)))
	if err := router.Run(addr); err != nil {
		zapLogger.Fatal("http server stopped", zap.Error(err))
	}
}
