package consumers_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mutualexchange/src/adapters/kafka/consumers"
	"mutualexchange/src/domain"
	"mutualexchange/src/infra/kafka"
	"mutualexchange/src/infra/metrics"
	"mutualexchange/src/test_artefacts/fakes"
)

var _ = Describe("NotificationTaskConsumer", func() {
	var (
		ctx      context.Context
		mailer   *fakes.Mailer
		consumer *consumers.NotificationTaskConsumer
	)

	BeforeEach(func() {
		ctx = context.Background()
		mailer = &fakes.Mailer{}
		consumer = consumers.NewNotificationTaskConsumer(slog.New(slog.DiscardHandler), mailer, metrics.NewMetrics())
	})

	message := func(task domain.NotificationTask) kafka.Message {
		payload, err := json.Marshal(task)
		Expect(err).NotTo(HaveOccurred())
		return kafka.Message{Key: task.RecipientID, Value: payload}
	}

	task := func(id string) domain.NotificationTask {
		return domain.NotificationTask{
			TaskID:      id,
			RecipientID: "A",
			Email:       "a@example.com",
			Locale:      "en",
			Subject:     "New match found",
			Body:        "Your post matches",
		}
	}

	It("sends one email per task", func() {
		err := consumer.HandleMessages(ctx, []kafka.Message{message(task("T1")), message(task("T2"))})

		Expect(err).NotTo(HaveOccurred())
		Expect(mailer.Sent).To(HaveLen(2))
		Expect(mailer.Sent[0].To).To(Equal("a@example.com"))
		Expect(mailer.Sent[0].Subject).To(Equal("New match found"))
	})

	It("sends a task repeated inside a batch only once", func() {
		err := consumer.HandleMessages(ctx, []kafka.Message{message(task("T1")), message(task("T1"))})

		Expect(err).NotTo(HaveOccurred())
		Expect(mailer.Sent).To(HaveLen(1))
	})

	It("discards unreadable messages without failing the batch", func() {
		invalid := task("T2")
		invalid.Email = ""

		err := consumer.HandleMessages(ctx, []kafka.Message{
			{Key: "A", Value: []byte("{not json")},
			message(invalid),
			message(task("T3")),
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(mailer.Sent).To(HaveLen(1))
	})

	It("fails the batch when the mailer fails so it is redelivered", func() {
		mailer.Err = errors.New("smtp unavailable")
		mailer.FailTimes = 1

		err := consumer.HandleMessages(ctx, []kafka.Message{message(task("T1"))})
		Expect(err).To(MatchError(ContainSubstring("smtp unavailable")))
		Expect(mailer.Sent).To(BeEmpty())

		err = consumer.HandleMessages(ctx, []kafka.Message{message(task("T1"))})
		Expect(err).NotTo(HaveOccurred())
		Expect(mailer.Sent).To(HaveLen(1))
	})
})
