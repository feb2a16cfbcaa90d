package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"mutualexchange/src/domain"
	"mutualexchange/src/infra/kafka"
	"mutualexchange/src/infra/mailer"
	"mutualexchange/src/infra/metrics"
)

type Mailer interface {
	Send(ctx context.Context, email mailer.Email) error
}

type MessageSource interface {
	Consumer(ctx context.Context, handler kafka.Handler, topic string) error
}

// NotificationTaskConsumer executa as tarefas do canal durável. A entrega é
// at-least-once: um lote com erro de envio volta inteiro.
type NotificationTaskConsumer struct {
	logger  *slog.Logger
	mailer  Mailer
	metrics *metrics.Metrics
}

func NewNotificationTaskConsumer(
	logger *slog.Logger,
	mailer Mailer,
	m *metrics.Metrics,
) *NotificationTaskConsumer {
	return &NotificationTaskConsumer{
		logger:  logger,
		mailer:  mailer,
		metrics: m,
	}
}

func (c *NotificationTaskConsumer) Start(ctx context.Context, source MessageSource, topic string) error {
	c.logger.Info("Starting notification task consumer", "topic", topic)

	handler := func(messages []kafka.Message) error {
		return c.HandleMessages(ctx, messages)
	}

	return source.Consumer(ctx, handler, topic)
}

func (c *NotificationTaskConsumer) HandleMessages(ctx context.Context, messages []kafka.Message) error {
	if len(messages) == 0 {
		return nil
	}

	c.logger.Debug("Processing notification tasks batch", "count", len(messages))

	seen := make(map[string]struct{}, len(messages))
	for _, msg := range messages {
		var task domain.NotificationTask
		if err := json.Unmarshal(msg.Value, &task); err != nil {
			// Mensagem inválida nunca vai ficar válida: descarta para não travar a partição
			c.metrics.NotificationTasks.WithLabelValues("invalid").Inc()
			c.logger.Error("Discarding unreadable notification task",
				"error", err,
				"key", msg.Key,
				"value", string(msg.Value))
			continue
		}

		if task.Email == "" || task.TaskID == "" {
			c.metrics.NotificationTasks.WithLabelValues("invalid").Inc()
			c.logger.Error("Discarding notification task without email or task id",
				"key", msg.Key,
				"task_id", task.TaskID,
				"notification_id", task.NotificationID)
			continue
		}

		if _, dup := seen[task.TaskID]; dup {
			c.metrics.NotificationTasks.WithLabelValues("duplicate").Inc()
			continue
		}
		seen[task.TaskID] = struct{}{}

		email := mailer.Email{
			To:      task.Email,
			Locale:  task.Locale,
			Subject: task.Subject,
			Body:    task.Body,
		}
		if err := c.mailer.Send(ctx, email); err != nil {
			c.metrics.NotificationTasks.WithLabelValues("error").Inc()
			c.logger.Error("Failed to send notification email",
				"error", err,
				"task_id", task.TaskID,
				"notification_id", task.NotificationID)
			return fmt.Errorf("failed to send task %s: %w", task.TaskID, err)
		}

		c.metrics.NotificationTasks.WithLabelValues("sent").Inc()
	}

	return nil
}
