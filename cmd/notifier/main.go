package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/oksasatya/devfolio-api/config"
	"github.com/oksasatya/devfolio-api/internal/interface/worker"
	"github.com/oksasatya/devfolio-api/pkg/events"
	"github.com/oksasatya/devfolio-api/pkg/helpers"
	"github.com/oksasatya/devfolio-api/pkg/mailer"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-notifier", cfg.Env)
	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; notifier disabled (no real emails will be sent)")
		return
	}

	mg, err := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender)
	if err != nil {
		log.Fatalf("mailgun: %v", err)
	}

	if cfg.MailgunAPIBase != "" {
		mg.SetAPIBase(cfg.MailgunAPIBase)
	}

	rabbit, err := events.DialRabbit(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue)
	if err != nil {
		log.Fatalf("rabbitmq: %v", err)
	}

	deliveries, err := rabbit.Consume(16)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)

	n := worker.NewNotifier(mg, cfg.AppName, cfg.LoginURL, logger)
	logger.Infof("notifier listening on queue=%s", cfg.RabbitMQEventsQueue)
	err = n.Serve(ctx, deliveries, rabbit.NotifyClose())
	stop()
	rabbit.Close()
	if err != nil {
		logger.Errorf("notifier stopped: %v", err)
		os.Exit(1)
	}
	logger.Info("notifier exited properly")
}
