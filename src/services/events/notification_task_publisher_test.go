package events_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mutualexchange/src/domain"
	"mutualexchange/src/services/events"
	"mutualexchange/src/test_artefacts/fakes"

	"github.com/google/go-cmp/cmp"
)

var _ = Describe("NotificationTaskPublisher", func() {
	var (
		ctx       context.Context
		producer  *fakes.Producer
		publisher *events.NotificationTaskPublisher
		task      domain.NotificationTask
	)

	BeforeEach(func() {
		ctx = context.Background()
		producer = &fakes.Producer{}
		publisher = events.NewNotificationTaskPublisher(slog.New(slog.DiscardHandler), producer, "exchange.notification-tasks")
		task = domain.NotificationTask{
			TaskID:         "T1",
			NotificationID: "N1",
			RecipientID:    "A",
			Email:          "a@example.com",
			Locale:         "pt",
			Event:          "match_found",
			Subject:        "Novo match encontrado",
			Body:           "Seu anúncio combina",
			EnqueuedAt:     time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC),
		}
	})

	It("publishes the task keyed by recipient", func() {
		Expect(publisher.Enqueue(ctx, task)).To(Succeed())

		Expect(producer.Topic).To(Equal("exchange.notification-tasks"))
		Expect(producer.Messages).To(HaveLen(1))
		msg := producer.Messages[0]
		Expect(msg.Key).To(Equal("A"))

		var decoded domain.NotificationTask
		Expect(json.Unmarshal(msg.Value, &decoded)).To(Succeed())
		Expect(cmp.Diff(task, decoded)).To(BeEmpty())
	})

	It("attaches the routing headers", func() {
		Expect(publisher.Enqueue(ctx, task)).To(Succeed())

		Expect(producer.Messages[0].Headers).To(Equal(map[string]string{
			events.HeaderEventType:     "match_found",
			events.HeaderSourceService: "mutual-exchange-api",
			events.HeaderSchemaVersion: "v1",
			events.HeaderTaskID:        "T1",
			events.HeaderLocale:        "pt",
		}))
	})

	It("publishes nothing for an empty batch", func() {
		Expect(publisher.PublishTasks(ctx, nil)).To(Succeed())

		Expect(producer.Messages).To(BeEmpty())
	})

	It("wraps the producer error", func() {
		producer.Err = errors.New("leader not available")

		err := publisher.Enqueue(ctx, task)

		Expect(err).To(MatchError(ContainSubstring("leader not available")))
	})
})
