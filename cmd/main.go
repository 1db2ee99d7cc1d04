package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"kasir/internal/checkout"
	"kasir/internal/config"
	"kasir/internal/events"
	httpapi "kasir/internal/http"
	"kasir/internal/repository"
	"kasir/internal/service"

	_ "kasir/docs"
)

// @title Kasir API
// @version 1.0
// @description Point-of-sale backend with tiered pricing, checkout sessions and sales reports.
// @BasePath /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		logger = logger.Level(level)
	}

	var (
		products repository.ProductRepository
		types    repository.CustomerTypeRepository
		users    repository.UserRepository
		txns     repository.TransactionRepository
		tx       repository.TxManager
	)
	if cfg.MongoURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		store, err := repository.NewMongoStore(ctx, cfg.MongoURL, cfg.DBName)
		cancel()
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to mongo")
		}
		defer store.Close(context.Background())
		products = repository.NewMongoProducts(store)
		types = repository.NewMongoCustomerTypes(store)
		users = repository.NewMongoUsers(store)
		txns = repository.NewMongoTransactions(store)
		tx = repository.NewMongoTx(store)
		logger.Info().Str("db", cfg.DBName).Msg("using mongo storage")
	} else {
		store := repository.NewMemoryStore()
		products = store
		types = repository.NewMemoryCustomerTypes(store)
		users = repository.NewMemoryUsers(store)
		txns = repository.NewMemoryTransactions(store)
		tx = repository.NewMemoryTx(store)
		logger.Info().Msg("using in-memory storage")
	}

	var publisher events.Publisher = events.Nop{}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafka(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kafka.Close()
		publisher = kafka
		logger.Info().Strs("brokers", cfg.KafkaBrokers).Str("topic", cfg.KafkaTopic).
			Msg("publishing sale events to kafka")
	}

	authSvc := service.NewAuthService(users, cfg.JWTSecret, cfg.TokenDuration)
	productsSvc := service.NewProductService(products)
	typesSvc := service.NewCustomerTypeService(types)
	txnsSvc := service.NewTransactionService(products, types, txns, tx, publisher, logger)
	reportsSvc := service.NewReportService(txns, products)
	seedSvc := service.NewSeedService(types, authSvc)

	srv := httpapi.NewServer(logger, authSvc, productsSvc, typesSvc, txnsSvc, reportsSvc, seedSvc, checkout.NewManager())

	httpServer := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: srv.Engine(),
	}

	go func() {
		logger.Info().Str("addr", httpServer.Addr).Msg("http server listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("shutdown error")
	}
}
