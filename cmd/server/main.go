package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/damon-houk/expense-tracker/internal/application/service"
	"github.com/damon-houk/expense-tracker/internal/config"
	"github.com/damon-houk/expense-tracker/internal/domain/repository"
	domainservice "github.com/damon-houk/expense-tracker/internal/domain/service"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/db"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/events"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/handler"
	"github.com/damon-houk/expense-tracker/internal/infrastructure/logger"
	"github.com/dgraph-io/badger/v3"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", map[string]interface{}{"error": err.Error()})
	}

	log := logger.NewJSONLogger(os.Stdout, logger.ParseLevel(cfg.LogLevel))
	logger.SetDefaultLogger(log)

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", map[string]interface{}{"error": err.Error()})
	}

	log.Info("Starting expense tracker", map[string]interface{}{
		"port":          cfg.Port,
		"store_backend": cfg.StoreBackend,
	})

	// Setup record store
	txRepo, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatal("Failed to open record store", map[string]interface{}{
			"store_backend": cfg.StoreBackend,
			"error":         err.Error(),
		})
	}
	defer func() {
		if err := closeStore.Close(); err != nil {
			log.Error("Error closing record store", map[string]interface{}{"error": err.Error()})
		}
	}()

	// Setup event publisher
	var publisher domainservice.EventPublisher = domainservice.NoopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey, log)
		if err != nil {
			log.Warn("Failed to connect to AMQP broker, continuing without events", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			publisher = amqpPublisher
			defer amqpPublisher.Close()
			log.Info("Publishing transaction events", map[string]interface{}{
				"exchange":    cfg.AMQPExchange,
				"routing_key": cfg.AMQPRoutingKey,
			})
		}
	}

	// Initialize services and handlers
	txService := service.NewTransactionService(txRepo, publisher, log)
	txHandler := handler.NewTransactionHandler(txService, log)

	server := &http.Server{
		Addr: ":" + cfg.Port,
		Handler: handler.NewRouter(txHandler, handler.RouterConfig{
			JWTSecret:   []byte(cfg.JWTSecret),
			CORSOrigins: cfg.CORSOrigins,
			Logger:      log,
		}),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("Server listening", map[string]interface{}{"addr": server.Addr})
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("Server stopped unexpectedly", map[string]interface{}{"error": err.Error()})
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down", nil)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Graceful shutdown failed", map[string]interface{}{"error": err.Error()})
	}
}

// openStore opens the configured record store backend
func openStore(cfg *config.Config) (repository.TransactionRepository, io.Closer, error) {
	switch cfg.StoreBackend {
	case config.SQLiteBackend:
		repo, err := db.NewSQLiteTransactionRepository(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		return repo, repo, nil
	default:
		if err := os.MkdirAll(cfg.BadgerPath, 0755); err != nil {
			return nil, nil, err
		}

		badgerOpts := badger.DefaultOptions(cfg.BadgerPath)
		badgerOpts.Logger = nil // Disable Badger's default logger

		badgerDB, err := badger.Open(badgerOpts)
		if err != nil {
			return nil, nil, err
		}
		return db.NewBadgerTransactionRepository(badgerDB), badgerDB, nil
	}
}
