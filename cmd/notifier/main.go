// Command notifier consumes payment notifications from RabbitMQ and sends
// the confirmation emails.
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/as0628/expense-tracker-project/internal/config"
	"github.com/as0628/expense-tracker-project/internal/logging"
	"github.com/as0628/expense-tracker-project/internal/notify"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default: ./config.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := logging.New(cfg.Log, cfg.Server.Mode)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	if cfg.AMQP.URL == "" {
		logger.Fatal("amqp.url is required")
	}

	broker, err := notify.NewBroker(cfg.AMQP.URL, cfg.AMQP.Exchange, cfg.AMQP.Queue, logger)
	if err != nil {
		logger.WithError(err).Fatal("init amqp")
	}
	defer broker.Close()

	mailer := notify.NewMailer(cfg.Mail, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.WithField("queue", cfg.AMQP.Queue).Info("notifier started")
	err = broker.Consume(ctx, func(ctx context.Context, msg notify.PaymentSucceeded) error {
		if err := notify.Deliver(ctx, mailer, msg); err != nil {
			return err
		}
		logger.WithField("order_id", msg.OrderID).Info("payment email sent")
		return nil
	})
	if err != nil {
		logger.WithError(err).Error("consumer stopped")
	}
	logger.Info("notifier stopped")
}
