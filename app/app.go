// File: app/app.go
package app

import (
	"context"
	"go-bank-ledger/config"
	"go-bank-ledger/db"
	"go-bank-ledger/handler"
	"go-bank-ledger/logger"
	"go-bank-ledger/notifier"
	"go-bank-ledger/repository"
	"go-bank-ledger/router"
	"go-bank-ledger/service"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
)

func Run() {
	config.LoadConfig(".")
	logger.Init()
	logger.Log.Info("Logger initialized")
	logger.Log.Info("Configuration loaded successfully")

	minimumBalance, err := decimal.NewFromString(config.AppConfig.Bank.MinimumBalance)
	if err != nil {
		logger.Log.Fatalf("Invalid minimum balance in configuration: %v", err)
	}

	database, err := db.Connect()
	if err != nil {
		logger.Log.Fatalf("Error connecting to the database: %v", err)
	}
	defer database.Close()

	// Schema bootstrap happens exactly once, here, not as a constructor
	// side effect anywhere else.
	if err := db.Migrate(database); err != nil {
		logger.Log.Fatalf("Error migrating the database: %v", err)
	}

	redisClient, err := db.ConnectRedis()
	if err != nil {
		logger.Log.Fatalf("Error connecting to redis: %v", err)
	}
	defer redisClient.Close()

	// --- Wiring All Layers Together ---
	// Repositories own the ledger rows; services own the semantics; the
	// notifier is handed its credentials explicitly.

	accountRepo := repository.NewAccountRepository(database)
	customerRepo := repository.NewCustomerRepository(database)
	transactionRepo := repository.NewTransactionRepository(database)
	queryRepo := repository.NewQueryRepository(database)

	smtpNotifier := notifier.NewSMTPNotifier(config.AppConfig)

	customerService := service.NewCustomerService(customerRepo)
	accountService := service.NewAccountService(accountRepo, customerRepo, minimumBalance)
	transferService := service.NewTransferService(database, accountRepo, transactionRepo, redisClient, smtpNotifier, minimumBalance)
	queryService := service.NewQueryService(transactionRepo, redisClient)
	supportService := service.NewSupportService(queryRepo, smtpNotifier, config.AppConfig.SMTP.AdminEmail)

	customerHandler := handler.NewCustomerHandler(customerService)
	accountHandler := handler.NewAccountHandler(accountService)
	transactionHandler := handler.NewTransactionHandler(transferService, queryService)
	queryHandler := handler.NewQueryHandler(supportService)

	r := router.NewRouter(customerHandler, accountHandler, transactionHandler, queryHandler)

	// --- Start the Server with Graceful Shutdown ---
	port := config.AppConfig.Server.Port
	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	go func() {
		logger.Log.Infof("Server starting on port :%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Log.Warn("Shutdown signal received. Starting graceful shutdown...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatalf("Server forced to shutdown: %v", err)
	}

	logger.Log.Info("Server exited properly")
}
