package notification_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
	"mutualexchange/src/infra/metrics"
	"mutualexchange/src/services/notification"
	"mutualexchange/src/test_artefacts/fakes"
	"mutualexchange/src/test_artefacts/stubs"
)

var _ = Describe("Dispatcher", func() {
	var (
		ctx        context.Context
		store      *fakes.Store
		live       *fakes.LiveChannel
		durable    *fakes.DurableChannel
		dispatcher *notification.Dispatcher
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = fakes.NewStore()
		live = &fakes.LiveChannel{}
		durable = &fakes.DurableChannel{}
		dispatcher = notification.NewDispatcher(slog.New(slog.DiscardHandler), store, store, store, store, live, durable, metrics.NewMetrics())

		store.PutExchange(stubs.NewOfferStub().WithID("O1").WithCreator("A").Get())
		store.PutExchange(stubs.NewRequestStub().WithID("R1").WithCreator("B").Get())
		Expect(store.CreatePerson(ctx, stubs.NewPersonStub().WithID("A").Get())).To(Succeed())
		Expect(store.CreatePerson(ctx, stubs.NewPersonStub().WithID("B").WithLocale("pt-BR").WithoutEmailNotifications().Get())).To(Succeed())
	})

	Context("NotifyMatch", func() {
		It("records one unread notification per recipient even when triggered twice", func() {
			Expect(dispatcher.NotifyMatch(ctx, "O1", "R1", []string{"A", "B"})).To(Succeed())
			Expect(dispatcher.NotifyMatch(ctx, "O1", "R1", []string{"A", "B"})).To(Succeed())

			unreadA, err := dispatcher.ListUnread(ctx, "A")
			Expect(err).NotTo(HaveOccurred())
			unreadB, err := dispatcher.ListUnread(ctx, "B")
			Expect(err).NotTo(HaveOccurred())

			Expect(unreadA).To(HaveLen(1))
			Expect(unreadB).To(HaveLen(1))
			Expect(live.Messages()).To(HaveLen(2))
		})

		It("notifies again once the previous notification was read", func() {
			Expect(dispatcher.NotifyMatch(ctx, "O1", "R1", []string{"A"})).To(Succeed())
			unread, _ := dispatcher.ListUnread(ctx, "A")
			_, err := dispatcher.MarkRead(ctx, unread[0].ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(dispatcher.NotifyMatch(ctx, "O1", "R1", []string{"A"})).To(Succeed())

			unread, _ = dispatcher.ListUnread(ctx, "A")
			Expect(unread).To(HaveLen(1))
			Expect(store.Notifications()).To(HaveLen(2))
		})

		It("collapses duplicate recipients", func() {
			Expect(dispatcher.NotifyMatch(ctx, "O1", "R1", []string{"A", "A", ""})).To(Succeed())

			Expect(store.Notifications()).To(HaveLen(1))
		})

		It("only enqueues email for people who opted in", func() {
			Expect(dispatcher.NotifyMatch(ctx, "O1", "R1", []string{"A", "B"})).To(Succeed())

			tasks := durable.Tasks()
			Expect(tasks).To(HaveLen(1))
			Expect(tasks[0].RecipientID).To(Equal("A"))
			Expect(tasks[0].Subject).To(Equal("New match found"))
			Expect(tasks[0].Event).To(Equal(string(entities.EventMatchFound)))
		})

		It("renders the message in the recipient locale", func() {
			Expect(dispatcher.NotifyMatch(ctx, "O1", "R1", []string{"B"})).To(Succeed())

			unread, _ := dispatcher.ListUnread(ctx, "B")
			Expect(unread[0].Message).To(HavePrefix("Seu anúncio combina"))
		})

		It("still enqueues email when the live channel fails", func() {
			live.Err = errors.New("redis down")

			Expect(dispatcher.NotifyMatch(ctx, "O1", "R1", []string{"A"})).To(Succeed())

			Expect(durable.Tasks()).To(HaveLen(1))
			Expect(store.Notifications()).To(HaveLen(1))
		})

		It("still delivers live when the durable channel fails", func() {
			durable.Err = errors.New("kafka down")

			Expect(dispatcher.NotifyMatch(ctx, "O1", "R1", []string{"A"})).To(Succeed())

			Expect(live.Messages()).To(HaveLen(1))
		})

		It("records and delivers live when the directory is unavailable", func() {
			store.FailGetPeople = errors.New("timeout")

			Expect(dispatcher.NotifyMatch(ctx, "O1", "R1", []string{"A"})).To(Succeed())

			Expect(live.Messages()).To(HaveLen(1))
			Expect(durable.Tasks()).To(BeEmpty())
		})

		It("returns the error when the notification cannot be recorded", func() {
			store.FailInsertNotify = errors.New("insert failed")

			err := dispatcher.NotifyMatch(ctx, "O1", "R1", []string{"A"})

			Expect(err).To(MatchError(ContainSubstring("insert failed")))
			Expect(live.Messages()).To(BeEmpty())
		})
	})

	Context("agreement notifications", func() {
		var agreementID string

		BeforeEach(func() {
			a := stubs.NewAgreementStub().Between("O1", "R1").Get()
			Expect(store.CreateAgreement(ctx, a)).To(Succeed())
			agreementID = a.ID
		})

		It("notifies both creators when an agreement is created", func() {
			Expect(dispatcher.NotifyAgreementCreated(ctx, agreementID)).To(Succeed())

			notifications := store.Notifications()
			Expect(notifications).To(HaveLen(2))
			for _, n := range notifications {
				Expect(n.Event).To(Equal(entities.EventAgreementCreated))
				Expect(*n.AgreementID).To(Equal(agreementID))
			}
		})

		It("does nothing when the status did not change", func() {
			Expect(dispatcher.NotifyAgreementStatusChanged(ctx, agreementID, entities.AgreementPending)).To(Succeed())

			Expect(store.Notifications()).To(BeEmpty())
			Expect(live.Messages()).To(BeEmpty())
		})

		It("notifies the new status", func() {
			_, err := store.TransitionAgreement(ctx, agreementID, entities.AgreementRejected)
			Expect(err).NotTo(HaveOccurred())

			Expect(dispatcher.NotifyAgreementStatusChanged(ctx, agreementID, entities.AgreementPending)).To(Succeed())

			unread, _ := dispatcher.ListUnread(ctx, "A")
			Expect(unread).To(HaveLen(1))
			Expect(unread[0].Event).To(Equal(entities.EventAgreementStatusChanged))
			Expect(unread[0].Message).To(HaveSuffix("is now rejected"))
		})
	})

	Context("reading", func() {
		It("requires a recipient", func() {
			_, err := dispatcher.ListUnread(ctx, "")

			Expect(domain.IsValidation(err)).To(BeTrue())
		})

		It("keeps the first read time", func() {
			Expect(dispatcher.NotifyMatch(ctx, "O1", "R1", []string{"A"})).To(Succeed())
			unread, _ := dispatcher.ListUnread(ctx, "A")

			first, err := dispatcher.MarkRead(ctx, unread[0].ID)
			Expect(err).NotTo(HaveOccurred())
			second, err := dispatcher.MarkRead(ctx, unread[0].ID)
			Expect(err).NotTo(HaveOccurred())

			Expect(*second.ReadAt).To(Equal(*first.ReadAt))
		})

		It("returns not found for an unknown notification", func() {
			_, err := dispatcher.MarkRead(ctx, "missing")

			Expect(errors.Is(err, domain.ErrEntityNotFound)).To(BeTrue())
		})
	})
})

var _ = Describe("RedisLiveChannel", func() {
	It("publishes the message as JSON on the recipient channel", func() {
		publisher := &fakes.Publisher{}
		channel := notification.NewRedisLiveChannel(publisher)

		err := channel.Deliver(context.Background(), domain.LiveMessage{
			NotificationID: "N1",
			RecipientID:    "A",
			Event:          "match_found",
			Message:        "hello",
		})

		Expect(err).NotTo(HaveOccurred())
		Expect(publisher.Published["A"]).To(HaveLen(1))
		var decoded domain.LiveMessage
		Expect(json.Unmarshal(publisher.Published["A"][0], &decoded)).To(Succeed())
		Expect(decoded.NotificationID).To(Equal("N1"))
	})

	It("returns the publish error", func() {
		channel := notification.NewRedisLiveChannel(&fakes.Publisher{Err: errors.New("no route")})

		err := channel.Deliver(context.Background(), domain.LiveMessage{RecipientID: "A"})

		Expect(err).To(MatchError(ContainSubstring("no route")))
	})
})
