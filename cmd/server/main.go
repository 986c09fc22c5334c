package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/api-sage/mini-bank-ledger/internal/adapter/http/controller"
	"github.com/api-sage/mini-bank-ledger/internal/adapter/http/middleware"
	"github.com/api-sage/mini-bank-ledger/internal/adapter/http/router"
	"github.com/api-sage/mini-bank-ledger/internal/adapter/notification"
	"github.com/api-sage/mini-bank-ledger/internal/adapter/repository/memory"
	"github.com/api-sage/mini-bank-ledger/internal/adapter/repository/postgres"
	"github.com/api-sage/mini-bank-ledger/internal/config"
	"github.com/api-sage/mini-bank-ledger/internal/usecase/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	startupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := postgres.RunMigrations(startupCtx, cfg.DatabaseDSN, cfg.MigrationsDir); err != nil {
		log.Fatalf("run migrations: %v", err)
	}

	db, err := postgres.Open(startupCtx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open database: %v", err)
	}
	defer db.Close()

	accountRepo := postgres.NewAccountRepository(db)
	ledgerRepo := postgres.NewLedgerRepository(db)
	otpRepo := postgres.NewOTPRepository(db)
	pendingCache := memory.NewPendingCache(cfg.OTPTTL)

	var gateway notification.Gateway = notification.NewLogGateway()
	if cfg.NotifyWebhookURL != "" {
		gateway = notification.NewWebhookGateway(cfg.NotifyWebhookURL)
	}
	composer := notification.NewComposer(cfg.BankName)

	otpService := services.NewOTPService(otpRepo, cfg.OTPTTL)
	fundsService := services.NewFundsService(accountRepo, ledgerRepo, pendingCache, otpService, gateway, composer)
	accountService := services.NewAccountService(accountRepo, ledgerRepo)

	authMiddleware := middleware.BasicAuth(cfg.ChannelID, cfg.ChannelKey)
	mux := router.New(
		controller.NewAccountController(accountService),
		controller.NewFundsController(fundsService),
		authMiddleware,
	)

	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, groupCtx := errgroup.WithContext(runCtx)

	group.Go(func() error {
		log.Printf("http server listening on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-groupCtx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
	log.Println("server stopped")
}
