package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/api-sage/ledger-service/src/internal/adapter/http/controller"
	"github.com/api-sage/ledger-service/src/internal/adapter/http/middleware"
	"github.com/api-sage/ledger-service/src/internal/adapter/http/router"
	"github.com/api-sage/ledger-service/src/internal/adapter/repository/postgres"
	"github.com/api-sage/ledger-service/src/internal/config"
	"github.com/api-sage/ledger-service/src/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := postgres.RunMigrations(ctx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		cancel()
		log.Fatalf("run migrations: %v", err)
	}

	db, err := postgres.Open(ctx, cfg.DatabaseDSN)
	cancel()
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	transactionRepo := postgres.NewTransactionRepository(db)
	uow := postgres.NewUnitOfWork(db)

	transferService := services.NewTransferService(transactionRepo, uow)
	accountService := services.NewAccountService(accountRepo)

	mux := router.New(
		controller.NewAccountController(accountService),
		controller.NewTransactionController(transferService),
	)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           middleware.Recover(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Printf("ledger service listening on %s", cfg.ListenAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("serve http: %v", err)
		}
	}()

	<-shutdownCtx.Done()

	drainCtx, drainCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer drainCancel()
	if err := server.Shutdown(drainCtx); err != nil {
		log.Printf("shutdown http server: %v", err)
	}
}
