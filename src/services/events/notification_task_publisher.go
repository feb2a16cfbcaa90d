package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"mutualexchange/src/domain"
	"mutualexchange/src/infra/kafka"
)

const (
	HeaderEventType     = "event_type"
	HeaderSourceService = "source_service"
	HeaderSchemaVersion = "schema_version"
	HeaderTaskID        = "task_id"
	HeaderLocale        = "locale"

	sourceService = "mutual-exchange-api"
	schemaVersion = "v1"
)

type Producer interface {
	Producer(messages []kafka.Message, topic string) error
}

// NotificationTaskPublisher é o canal durável: cada tarefa vira uma mensagem
// no tópico de notificações, consumida pelo notification-worker.
type NotificationTaskPublisher struct {
	logger   *slog.Logger
	producer Producer
	topic    string
}

func NewNotificationTaskPublisher(
	logger *slog.Logger,
	producer Producer,
	topic string,
) *NotificationTaskPublisher {
	return &NotificationTaskPublisher{
		logger:   logger,
		producer: producer,
		topic:    topic,
	}
}

// Enqueue implements the durable notification channel.
func (p *NotificationTaskPublisher) Enqueue(ctx context.Context, task domain.NotificationTask) error {
	return p.PublishTasks(ctx, []domain.NotificationTask{task})
}

// PublishTasks publishes a batch of email tasks keyed by recipient, so one
// recipient's emails keep their order inside a partition.
func (p *NotificationTaskPublisher) PublishTasks(ctx context.Context, tasks []domain.NotificationTask) error {
	if len(tasks) == 0 {
		return nil
	}

	messages := make([]kafka.Message, 0, len(tasks))
	for _, task := range tasks {
		payload, err := json.Marshal(task)
		if err != nil {
			p.logger.ErrorContext(ctx, "Failed to marshal notification task",
				"error", err,
				"task_id", task.TaskID,
				"notification_id", task.NotificationID)
			continue
		}

		messages = append(messages, kafka.Message{
			Key:     task.RecipientID,
			Value:   payload,
			Headers: p.headers(task),
		})
	}

	if err := p.producer.Producer(messages, p.topic); err != nil {
		p.logger.ErrorContext(ctx, "Failed to publish notification tasks",
			"error", err,
			"topic", p.topic,
			"tasks_count", len(messages))
		return fmt.Errorf("failed to publish notification tasks to topic %s: %w", p.topic, err)
	}

	p.logger.DebugContext(ctx, "Published notification tasks", "topic", p.topic, "tasks_count", len(messages))
	return nil
}

func (p *NotificationTaskPublisher) headers(task domain.NotificationTask) map[string]string {
	headers := map[string]string{
		HeaderEventType:     task.Event,
		HeaderSourceService: sourceService,
		HeaderSchemaVersion: schemaVersion,
		HeaderTaskID:        task.TaskID,
	}
	if task.Locale != "" {
		headers[HeaderLocale] = task.Locale
	}
	return headers
}
