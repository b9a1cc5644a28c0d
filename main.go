package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/as0628/expense-tracker-project/internal/config"
	"github.com/as0628/expense-tracker-project/internal/database"
	"github.com/as0628/expense-tracker-project/internal/logging"
	"github.com/as0628/expense-tracker-project/internal/notify"
	"github.com/as0628/expense-tracker-project/internal/payment"
	"github.com/as0628/expense-tracker-project/internal/router"
	"github.com/as0628/expense-tracker-project/internal/service"
	"github.com/as0628/expense-tracker-project/internal/storage"

	"github.com/sirupsen/logrus"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./config.yaml if present)")
	flag.Parse()

	// load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	// ensure basic directories exist
	if err := ensureDir(filepath.Dir(cfg.Database.Path)); err != nil {
		logger.WithError(err).Fatal("create data dir")
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.WithError(err).Fatal("init database")
	}

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		logger.WithError(err).Fatal("migrate database")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storage.New(ctx, cfg.Storage, cfg.Server.BaseURL, cfg.JWT.Secret)
	if err != nil {
		logger.WithError(err).Fatal("init object storage")
	}
	if gcs, ok := store.(*storage.GCS); ok {
		defer gcs.Close()
	}
	localFiles, _ := store.(*storage.Local)

	mailer := notify.NewMailer(cfg.Mail, logger)
	notifier, closeNotifier := buildNotifier(cfg, mailer, logger)
	defer closeNotifier()

	payments, err := service.NewPaymentService(db, logger, payment.NewClient(cfg.Payment), notifier, cfg.Payment)
	if err != nil {
		logger.WithError(err).Fatal("init payments")
	}

	deps := router.Deps{
		DB:            db,
		Log:           logger,
		Accounts:      service.NewAccountService(db, logger, cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.ExpireHours),
		Ledger:        service.NewLedgerService(db, logger),
		BasicReports:  service.NewReportEngine(db, logger, cfg.Report.BasicPeriods),
		PremiumReport: service.NewReportEngine(db, logger, cfg.Report.PremiumPeriods),
		Exports:       service.NewExportEngine(db, logger, store),
		Leaderboard:   service.NewLeaderboard(db, logger),
		Payments:      payments,
		Resets:        service.NewPasswordReset(db, logger, mailer, cfg.Server.BaseURL),
		LocalFiles:    localFiles,
	}

	// setup router
	r := router.SetupRouter(cfg, deps)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Address, cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.WithField("addr", addr).Info("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.WithError(err).Fatal("run server")
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("server shutdown")
	}
}

// buildNotifier publishes to RabbitMQ when amqp.url is set and mails
// directly otherwise.
func buildNotifier(cfg *config.Config, mailer notify.Mailer, logger *logrus.Logger) (service.Notifier, func()) {
	if cfg.AMQP.URL == "" {
		logger.Info("amqp disabled, payment emails are sent in-process")
		return notify.NewDirectNotifier(mailer), func() {}
	}

	broker, err := notify.NewBroker(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, logger)
	if err != nil {
		logger.WithError(err).Fatal("init amqp")
	}
	return broker, func() { _ = broker.Close() }
}

func ensureDir(dir string) error {
	if dir == "" || dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
