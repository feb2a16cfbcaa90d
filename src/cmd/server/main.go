package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	httpadapter "mutualexchange/src/adapters/http"
	"mutualexchange/src/helper/env"
	"mutualexchange/src/infra/kafka"
	"mutualexchange/src/infra/metrics"
	"mutualexchange/src/infra/postgres"
	"mutualexchange/src/infra/redis"
	"mutualexchange/src/repositories"
	"mutualexchange/src/services/agreement"
	"mutualexchange/src/services/events"
	"mutualexchange/src/services/exchange"
	"mutualexchange/src/services/matchmaker"
	"mutualexchange/src/services/notification"
	"mutualexchange/src/services/response"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

func main() {
	log.SetOutput(os.Stdout)
	log.Println("Starting mutual exchange API with Uber Fx...")

	app := fx.New(
		fx.WithLogger(func(logger *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: logger}
		}),

		// Infra
		fx.Provide(
			newLogger,
			newReadWriteClient,
			newRedisClient,
			newKafkaClient,
			metrics.NewMetrics,
		),

		// Repositories
		fx.Provide(
			repositories.NewExchangeRepository,
			repositories.NewAgreementRepository,
			repositories.NewResponseLinkRepository,
			repositories.NewNotificationRepository,
			repositories.NewDirectoryRepository,
		),

		// Services
		fx.Provide(
			newLiveChannel,
			newNotificationTaskPublisher,
			newDispatcher,
			newMatchmaker,
			newExchangeService,
			newAgreementService,
			newResponseLinker,
			newServer,
		),

		fx.Invoke(migrateOnStart, registerServerHooks),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	<-app.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.Stop(stopCtx); err != nil {
		log.Printf("Failed to stop application: %v", err)
	}
}

func newLogger() *slog.Logger {
	logLevel := env.GetString("LOG_LEVEL", "info")
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	h := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level})
	logger := slog.New(h).With("service", "mutual-exchange-api")
	slog.SetDefault(logger)
	return logger
}

func newReadWriteClient(lc fx.Lifecycle) (*postgres.ReadWriteClient, error) {
	client, err := postgres.NewReadWriteClient(postgres.Config{
		ReadHost:       env.GetString("DB_READ_HOST"),
		WriteHost:      env.MustGetString("DB_WRITE_HOST"),
		ReadPort:       env.GetString("DB_READ_PORT", "5432"),
		WritePort:      env.GetString("DB_WRITE_PORT", "5432"),
		DBName:         env.MustGetString("DB_NAME"),
		Username:       env.MustGetString("DB_USER"),
		Password:       env.MustGetString("DB_PASSWORD"),
		MaxConnections: env.GetInt("DB_MAX_POOL_CONNECTIONS", 25),
	})
	if err != nil {
		return nil, err
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			client.Close()
			return nil
		},
	})
	return client, nil
}

func newRedisClient(lc fx.Lifecycle) *redis.RedisClient {
	redisHosts := env.MustGetString("REDIS_HOSTS")
	redisPoolSize := env.GetInt("REDIS_POOL_SIZE", 50)
	prefix := env.GetString("REDIS_LIVE_CHANNEL_PREFIX", "notifications:")

	client := redis.NewRedisClient(redisHosts, redisPoolSize).WithPrefix(prefix)
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
	return client
}

// A API só produz no tópico de notificações, por isso não há consumer group.
func newKafkaClient(lc fx.Lifecycle) (*kafka.KafkaClient, error) {
	brokers := env.MustGetString("KAFKA_BROKERS")
	batchSize := env.GetInt("KAFKA_BATCH_SIZE", 50)

	client, err := kafka.NewKafkaClient(brokers, "", batchSize)
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

func newLiveChannel(redisClient *redis.RedisClient) *notification.RedisLiveChannel {
	return notification.NewRedisLiveChannel(redisClient)
}

func newNotificationTaskPublisher(logger *slog.Logger, kafkaClient *kafka.KafkaClient) *events.NotificationTaskPublisher {
	topic := env.GetString("KAFKA_NOTIFICATION_TOPIC", "exchange.notification-tasks")
	return events.NewNotificationTaskPublisher(logger, kafkaClient, topic)
}

func newDispatcher(
	logger *slog.Logger,
	notifications *repositories.NotificationRepository,
	exchanges *repositories.ExchangeRepository,
	agreements *repositories.AgreementRepository,
	directory *repositories.DirectoryRepository,
	live *notification.RedisLiveChannel,
	durable *events.NotificationTaskPublisher,
	m *metrics.Metrics,
) *notification.Dispatcher {
	return notification.NewDispatcher(logger, notifications, exchanges, agreements, directory, live, durable, m)
}

func newMatchmaker(logger *slog.Logger, exchanges *repositories.ExchangeRepository, m *metrics.Metrics) *matchmaker.Matchmaker {
	return matchmaker.NewMatchmaker(logger, exchanges, m)
}

func newExchangeService(
	logger *slog.Logger,
	exchanges *repositories.ExchangeRepository,
	directory *repositories.DirectoryRepository,
	mm *matchmaker.Matchmaker,
	dispatcher *notification.Dispatcher,
) *exchange.ExchangeService {
	return exchange.NewExchangeService(logger, exchanges, directory, mm, dispatcher)
}

func newAgreementService(
	logger *slog.Logger,
	exchanges *repositories.ExchangeRepository,
	agreements *repositories.AgreementRepository,
	dispatcher *notification.Dispatcher,
	m *metrics.Metrics,
) *agreement.AgreementService {
	return agreement.NewAgreementService(logger, exchanges, agreements, dispatcher, m)
}

func newResponseLinker(
	logger *slog.Logger,
	exchanges *repositories.ExchangeRepository,
	exchangeService *exchange.ExchangeService,
	links *repositories.ResponseLinkRepository,
	m *metrics.Metrics,
) *response.ResponseLinker {
	return response.NewResponseLinker(logger, exchanges, exchangeService, links, m)
}

func newServer(
	logger *slog.Logger,
	rw *postgres.ReadWriteClient,
	redisClient *redis.RedisClient,
	exchangeService *exchange.ExchangeService,
	mm *matchmaker.Matchmaker,
	agreementService *agreement.AgreementService,
	responseLinker *response.ResponseLinker,
	dispatcher *notification.Dispatcher,
) *httpadapter.Server {
	port := 8888 // default value
	if portStr := os.Getenv("SERVER_ADDR"); portStr != "" {
		if val, err := strconv.Atoi(portStr); err == nil {
			port = val
		}
	}

	return httpadapter.NewServer(logger, port, exchangeService, mm, agreementService, responseLinker, dispatcher,
		httpadapter.HealthCheck{Name: "postgres", Check: rw.HealthCheck},
		httpadapter.HealthCheck{Name: "redis", Check: redisClient.HealthCheck},
	)
}

// migrateOnStart aplica o schema quando DB_AUTO_MIGRATE=true (ambientes locais).
func migrateOnStart(lc fx.Lifecycle, rw *postgres.ReadWriteClient) {
	if !env.GetBool("DB_AUTO_MIGRATE", false) {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return postgres.Migrate(ctx, rw.GetWritePool())
		},
	})
}

// registerServerHooks registers lifecycle hooks for the HTTP server
func registerServerHooks(lc fx.Lifecycle, srv *httpadapter.Server) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				if err := srv.Start(); err != nil && err != http.ErrServerClosed {
					log.Fatalf("Server failed: %v", err)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			shutdownCtx, cancel := context.WithTimeout(ctx, env.GetDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second))
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.Printf("Server forced to shutdown: %v", err)
				return err
			}
			log.Println("Server exited gracefully")
			return nil
		},
	})
}
