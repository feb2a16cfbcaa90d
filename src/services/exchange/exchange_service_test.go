package exchange_test

import (
	"context"
	"errors"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
	"mutualexchange/src/infra/metrics"
	"mutualexchange/src/services/exchange"
	"mutualexchange/src/services/matchmaker"
	"mutualexchange/src/services/notification"
	"mutualexchange/src/test_artefacts/fakes"
	"mutualexchange/src/test_artefacts/stubs"
)

var _ = Describe("ExchangeService", func() {
	var (
		ctx     context.Context
		store   *fakes.Store
		live    *fakes.LiveChannel
		service *exchange.ExchangeService
	)

	BeforeEach(func() {
		ctx = context.Background()
		store = fakes.NewStore()
		live = &fakes.LiveChannel{}
		logger := slog.New(slog.DiscardHandler)
		m := metrics.NewMetrics()

		dispatcher := notification.NewDispatcher(logger, store, store, store, store, live, &fakes.DurableChannel{}, m)
		service = exchange.NewExchangeService(logger, store, store, matchmaker.NewMatchmaker(logger, store, m), dispatcher)
	})

	validInput := func() exchange.CreateExchangeInput {
		return exchange.CreateExchangeInput{
			Kind:        "request",
			Name:        " Need bike fixed ",
			Description: "Rear wheel is bent",
			CreatorID:   "B",
			CategoryIDs: []string{"tools", "tools", " bikes"},
		}
	}

	Context("Create", func() {
		It("persists an open exchange with normalized fields", func() {
			ex, err := service.Create(ctx, validInput())

			Expect(err).NotTo(HaveOccurred())
			Expect(ex.Status).To(Equal(entities.StatusOpen))
			Expect(ex.Urgency).To(Equal(entities.UrgencyNormal))
			Expect(ex.Name).To(Equal("Need bike fixed"))
			Expect(ex.CategoryIDs).To(Equal([]string{"bikes", "tools"}))
			Expect(ex.Target).To(BeNil())

			stored, err := service.Get(ctx, ex.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Kind).To(Equal(entities.KindRequest))
		})

		It("builds the target from kind and id", func() {
			input := validInput()
			input.TargetKind = "event"
			input.TargetID = "E1"

			ex, err := service.Create(ctx, input)

			Expect(err).NotTo(HaveOccurred())
			Expect(ex.Target).To(Equal(&entities.Target{Kind: entities.TargetEvent, ID: "E1"}))
		})

		DescribeTable("rejects invalid input",
			func(mutate func(*exchange.CreateExchangeInput)) {
				input := validInput()
				mutate(&input)

				_, err := service.Create(ctx, input)

				Expect(domain.IsValidation(err)).To(BeTrue())
			},
			Entry("unknown kind", func(in *exchange.CreateExchangeInput) { in.Kind = "gift" }),
			Entry("no categories", func(in *exchange.CreateExchangeInput) { in.CategoryIDs = []string{" "} }),
			Entry("target id without kind", func(in *exchange.CreateExchangeInput) { in.TargetID = "E1" }),
			Entry("target kind without id", func(in *exchange.CreateExchangeInput) { in.TargetKind = "event" }),
			Entry("unknown urgency", func(in *exchange.CreateExchangeInput) { in.Urgency = "asap" }),
			Entry("blank description", func(in *exchange.CreateExchangeInput) { in.Description = " " }),
		)

		It("notifies both creators of every counterpart found", func() {
			store.PutExchange(stubs.NewOfferStub().WithID("O1").WithCreator("A").WithCategories("tools").Get())

			ex, err := service.Create(ctx, validInput())
			Expect(err).NotTo(HaveOccurred())

			notifications := store.Notifications()
			Expect(notifications).To(HaveLen(2))
			for _, n := range notifications {
				Expect(n.Event).To(Equal(entities.EventMatchFound))
				Expect(n.OfferID).To(Equal("O1"))
				Expect(n.RequestID).To(Equal(ex.ID))
			}
			Expect([]string{notifications[0].RecipientID, notifications[1].RecipientID}).To(ConsistOf("A", "B"))
		})

		It("keeps the exchange when matching fails", func() {
			store.FailFindCounterparts = errors.New("replica down")

			ex, err := service.Create(ctx, validInput())

			Expect(err).NotTo(HaveOccurred())
			_, err = service.Get(ctx, ex.ID)
			Expect(err).NotTo(HaveOccurred())
		})
	})

	Context("List", func() {
		It("filters by kind", func() {
			store.PutExchange(stubs.NewOfferStub().WithID("O1").Get())
			store.PutExchange(stubs.NewRequestStub().WithID("R1").Get())

			list, err := service.List(ctx, exchange.ListFilter{Kind: "offer"})

			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(1))
			Expect(list[0].ID).To(Equal("O1"))
		})

		It("rejects an unknown status filter", func() {
			_, err := service.List(ctx, exchange.ListFilter{Status: "archived"})

			Expect(domain.IsValidation(err)).To(BeTrue())
		})
	})

	Context("categories", func() {
		BeforeEach(func() {
			store.PutExchange(stubs.NewOfferStub().WithID("O1").WithCategories("tools").Get())
		})

		It("tags idempotently", func() {
			_, err := service.TagCategories(ctx, "O1", []string{"garden"})
			Expect(err).NotTo(HaveOccurred())

			current, err := service.TagCategories(ctx, "O1", []string{"garden", "tools"})

			Expect(err).NotTo(HaveOccurred())
			Expect(current).To(Equal([]string{"garden", "tools"}))
		})

		It("refuses to remove the last category", func() {
			_, err := service.UntagCategory(ctx, "O1", "tools")

			Expect(domain.IsValidation(err)).To(BeTrue())
		})

		It("ignores removing a category that is not tagged", func() {
			current, err := service.UntagCategory(ctx, "O1", "garden")

			Expect(err).NotTo(HaveOccurred())
			Expect(current).To(Equal([]string{"tools"}))
		})

		It("returns not found for an unknown exchange", func() {
			_, err := service.TagCategories(ctx, "missing", []string{"tools"})

			Expect(errors.Is(err, domain.ErrEntityNotFound)).To(BeTrue())
		})

		It("creates and lists categories", func() {
			_, err := service.CreateCategory(ctx, "Tools")
			Expect(err).NotTo(HaveOccurred())
			_, err = service.CreateCategory(ctx, "Garden")
			Expect(err).NotTo(HaveOccurred())

			list, err := service.ListCategories(ctx)

			Expect(err).NotTo(HaveOccurred())
			Expect(list).To(HaveLen(2))
			Expect(list[0].Name).To(Equal("Garden"))
		})

		It("refuses a duplicate category name", func() {
			_, err := service.CreateCategory(ctx, "Tools")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.CreateCategory(ctx, "Tools")

			Expect(domain.IsValidation(err)).To(BeTrue())
		})
	})
})
