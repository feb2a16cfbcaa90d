package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mutualexchange/src/adapters/kafka/consumers"
	"mutualexchange/src/helper/env"
	"mutualexchange/src/infra/kafka"
	"mutualexchange/src/infra/mailer"
	"mutualexchange/src/infra/metrics"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting notification worker with Uber Fx...")

	app := fx.New(
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),
		fx.Provide(
			newLogger,
			newKafkaClient,
			metrics.NewMetrics,
			newMailer,
			newNotificationTaskConsumer,
		),
		fx.Invoke(startConsumer),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-sigChan:
		log.Println("Received shutdown signal")
	case <-app.Done():
		log.Println("Application stopped")
	}

	stopCtx, cancel := context.WithTimeout(context.Background(), env.GetDuration("WORKER_SHUTDOWN_TIMEOUT", 30*time.Second))
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application: %v", err)
	}
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch env.GetString("LOG_LEVEL", "info") {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h).With("service", "notification-worker")
	slog.SetDefault(logger)
	return logger
}

func newKafkaClient(lc fx.Lifecycle) (*kafka.KafkaClient, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	groupID := env.GetString("KAFKA_NOTIFICATION_CONSUMER_GROUP_ID", "notification-worker")
	batchSize := env.GetInt("KAFKA_BATCH_SIZE", 50)

	client, err := kafka.NewKafkaClient(brokers, groupID, batchSize)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client, nil
}

func newMailer(logger *slog.Logger) *mailer.LogMailer {
	return mailer.NewLogMailer(logger)
}

func newNotificationTaskConsumer(logger *slog.Logger, m *mailer.LogMailer, mt *metrics.Metrics) *consumers.NotificationTaskConsumer {
	return consumers.NewNotificationTaskConsumer(logger, m, mt)
}

// startConsumer roda o consumer num contexto próprio: o ctx do OnStart expira
// assim que o start termina.
func startConsumer(lc fx.Lifecycle, shutdowner fx.Shutdowner, logger *slog.Logger, client *kafka.KafkaClient, consumer *consumers.NotificationTaskConsumer) {
	topic := env.GetString("KAFKA_NOTIFICATION_TOPIC", "exchange.notification-tasks")
	runCtx, cancel := context.WithCancel(context.Background())

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := consumer.Start(runCtx, client, topic); err != nil && runCtx.Err() == nil {
					logger.Error("Notification task consumer stopped", "error", err)
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			return nil
		},
	})
}
