package repositories_test

import (
	"context"
	"errors"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
	"mutualexchange/src/helper/env"
	"mutualexchange/src/infra/postgres"
	"mutualexchange/src/repositories"
	"mutualexchange/src/services/matchmaker"
	"mutualexchange/src/test_artefacts/comparer"
	"mutualexchange/src/test_artefacts/stubs"
	"mutualexchange/src/test_artefacts/test_seeder"

	"github.com/google/go-cmp/cmp"
	"github.com/jackc/pgx/v5/pgconn"
)

// Precisa de um postgres de teste: TEST_DB_WRITE_HOST, TEST_DB_NAME, TEST_DB_USER, TEST_DB_PASSWORD.
var _ = Describe("Postgres repositories", func() {
	var (
		readWriteClient *postgres.ReadWriteClient
		testSeeder      test_seeder.TestSeeder
		exchanges       *repositories.ExchangeRepository
		agreements      *repositories.AgreementRepository
		links           *repositories.ResponseLinkRepository
		notifications   *repositories.NotificationRepository
		ctx             context.Context
	)

	BeforeEach(func() {
		host := env.GetString("TEST_DB_WRITE_HOST")
		if host == "" {
			Skip("TEST_DB_WRITE_HOST not set")
		}
		ctx = context.Background()

		var err error
		readWriteClient, err = postgres.NewReadWriteClient(postgres.Config{
			ReadHost:       env.GetString("TEST_DB_READ_HOST"),
			WriteHost:      host,
			ReadPort:       env.GetString("TEST_DB_READ_PORT", "5432"),
			WritePort:      env.GetString("TEST_DB_WRITE_PORT", "5432"),
			DBName:         env.MustGetString("TEST_DB_NAME"),
			Username:       env.MustGetString("TEST_DB_USER"),
			Password:       env.MustGetString("TEST_DB_PASSWORD"),
			MaxConnections: env.GetInt("TEST_DB_MAX_POOL_CONNECTIONS", 5),
		})
		Expect(err).NotTo(HaveOccurred())
		Expect(postgres.Migrate(ctx, readWriteClient.GetWritePool())).To(Succeed())

		exchanges = repositories.NewExchangeRepository(readWriteClient)
		agreements = repositories.NewAgreementRepository(readWriteClient)
		links = repositories.NewResponseLinkRepository(readWriteClient)
		notifications = repositories.NewNotificationRepository(readWriteClient)
		testSeeder = test_seeder.New(readWriteClient.GetWritePool())

		testSeeder.TruncateTables(ctx)
		testSeeder.InsertCategories(ctx, "tools", "garden")
		for _, id := range []string{"A", "B", "C"} {
			testSeeder.InsertPerson(ctx, stubs.NewPersonStub().WithID(id).Get())
		}
	})

	AfterEach(func() {
		if readWriteClient != nil {
			readWriteClient.Close()
		}
	})

	seedPair := func() (*entities.Exchange, *entities.Exchange) {
		offer := stubs.NewOfferStub().WithCreator("A").WithCategories("tools").WithTarget(entities.TargetEvent, "E1").Get()
		request := stubs.NewRequestStub().WithCreator("B").WithCategories("tools", "garden").WithTarget(entities.TargetEvent, "E1").Get()
		Expect(exchanges.CreateExchange(ctx, offer)).To(Succeed())
		Expect(exchanges.CreateExchange(ctx, request)).To(Succeed())
		return offer, request
	}

	Context("ExchangeRepository", func() {
		It("reads back what it writes", func() {
			offer, _ := seedPair()

			stored, err := exchanges.GetExchange(ctx, offer.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(cmp.Diff(offer, stored, comparer.TimeWithinTolerance(time.Millisecond), comparer.CategorySet())).To(BeEmpty())
		})

		It("maps an unknown category to a validation error", func() {
			ex := stubs.NewOfferStub().WithCreator("A").WithCategories("unknown").Get()

			err := exchanges.CreateExchange(ctx, ex)

			Expect(domain.IsValidation(err)).To(BeTrue())
		})

		It("finds counterparts once even with several shared categories", func() {
			offer, request := seedPair()
			_, err := exchanges.TagCategories(ctx, offer.ID, []string{"garden"})
			Expect(err).NotTo(HaveOccurred())

			found, err := matchmaker.Collect(exchanges.FindCounterparts(ctx, request))

			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
			Expect(found[0].ID).To(Equal(offer.ID))
		})

		It("treats an empty-string stored target as no target when matching", func() {
			// ARRANGE
			offer := stubs.NewOfferStub().WithCreator("A").WithCategories("tools").Get()
			request := stubs.NewRequestStub().WithCreator("B").WithCategories("tools").Get()
			Expect(exchanges.CreateExchange(ctx, offer)).To(Succeed())
			Expect(exchanges.CreateExchange(ctx, request)).To(Succeed())
			testSeeder.InsertEmptyTarget(ctx, offer.ID)

			// ACT
			found, err := matchmaker.Collect(exchanges.FindCounterparts(ctx, request))

			// ASSERT
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
			Expect(found[0].ID).To(Equal(offer.ID))
			Expect(found[0].Target).To(BeNil())
		})

		It("flags a malformed stored target", func() {
			offer, _ := seedPair()
			testSeeder.InsertMalformedTarget(ctx, offer.ID)

			stored, err := exchanges.GetExchange(ctx, offer.ID)

			Expect(err).NotTo(HaveOccurred())
			Expect(stored.MalformedTarget).To(BeTrue())
			Expect(stored.Target).To(BeNil())
		})

		It("moves only open exchanges to matched", func() {
			offer, _ := seedPair()

			marked, err := exchanges.MarkMatchedIfOpen(ctx, offer.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(marked).To(BeTrue())

			marked, err = exchanges.MarkMatchedIfOpen(ctx, offer.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(marked).To(BeFalse())
		})
	})

	Context("AgreementRepository", func() {
		It("accepts atomically and closes both sides", func() {
			offer, request := seedPair()
			a := stubs.NewAgreementStub().Between(offer.ID, request.ID).Get()
			Expect(agreements.CreateAgreement(ctx, a)).To(Succeed())

			t, err := agreements.TransitionAgreement(ctx, a.ID, entities.AgreementAccepted)

			Expect(err).NotTo(HaveOccurred())
			Expect(t.Previous).To(Equal(entities.AgreementPending))
			Expect(t.Agreement.Status).To(Equal(entities.AgreementAccepted))
			for _, id := range []string{offer.ID, request.ID} {
				status, err := testSeeder.SelectExchangeStatus(ctx, id)
				Expect(err).NotTo(HaveOccurred())
				Expect(status).To(Equal("closed"))
			}
		})

		It("leaves everything untouched when a side is closed", func() {
			offer, request := seedPair()
			other := stubs.NewRequestStub().WithCreator("C").WithCategories("tools").WithTarget(entities.TargetEvent, "E1").Get()
			Expect(exchanges.CreateExchange(ctx, other)).To(Succeed())

			first := stubs.NewAgreementStub().Between(offer.ID, request.ID).Get()
			second := stubs.NewAgreementStub().Between(offer.ID, other.ID).Get()
			Expect(agreements.CreateAgreement(ctx, first)).To(Succeed())
			Expect(agreements.CreateAgreement(ctx, second)).To(Succeed())
			_, err := agreements.TransitionAgreement(ctx, first.ID, entities.AgreementAccepted)
			Expect(err).NotTo(HaveOccurred())

			_, err = agreements.TransitionAgreement(ctx, second.ID, entities.AgreementAccepted)

			Expect(domain.StateCodeOf(err)).To(Equal(domain.StateSideClosed))
			stored, err := agreements.GetAgreement(ctx, second.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(entities.AgreementPending))
			status, _ := testSeeder.SelectExchangeStatus(ctx, other.ID)
			Expect(status).To(Equal("open"))
		})

		It("refuses creating an agreement on a bound side", func() {
			offer, request := seedPair()
			first := stubs.NewAgreementStub().Between(offer.ID, request.ID).Get()
			Expect(agreements.CreateAgreement(ctx, first)).To(Succeed())
			_, err := agreements.TransitionAgreement(ctx, first.ID, entities.AgreementAccepted)
			Expect(err).NotTo(HaveOccurred())

			err = agreements.CreateAgreement(ctx, stubs.NewAgreementStub().Between(offer.ID, request.ID).Get())

			Expect(domain.StateCodeOf(err)).To(Equal(domain.StateSideAlreadyBound))
		})

		It("lets exactly one of two concurrent accepts sharing an offer win", func() {
			// ARRANGE
			offer, request := seedPair()
			other := stubs.NewRequestStub().WithCreator("C").WithCategories("tools").WithTarget(entities.TargetEvent, "E1").Get()
			Expect(exchanges.CreateExchange(ctx, other)).To(Succeed())

			first := stubs.NewAgreementStub().Between(offer.ID, request.ID).Get()
			second := stubs.NewAgreementStub().Between(offer.ID, other.ID).Get()
			Expect(agreements.CreateAgreement(ctx, first)).To(Succeed())
			Expect(agreements.CreateAgreement(ctx, second)).To(Succeed())

			// ACT
			ids := []string{first.ID, second.ID}
			errs := make([]error, len(ids))
			start := make(chan struct{})
			var wg sync.WaitGroup
			for i, id := range ids {
				wg.Add(1)
				go func() {
					defer GinkgoRecover()
					defer wg.Done()
					<-start
					_, errs[i] = agreements.TransitionAgreement(ctx, id, entities.AgreementAccepted)
				}()
			}
			close(start)
			wg.Wait()

			// ASSERT
			winners := 0
			loser := -1
			for i, err := range errs {
				if err == nil {
					winners++
					continue
				}
				Expect(domain.IsState(err)).To(BeTrue(), "unexpected error: %v", err)
				loser = i
			}
			Expect(winners).To(Equal(1))
			Expect(loser).NotTo(Equal(-1))

			accepted, err := testSeeder.CountAcceptedAgreements(ctx, offer.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(accepted).To(Equal(1))

			stored, err := agreements.GetAgreement(ctx, ids[loser])
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(entities.AgreementPending))

			loserRequest := []string{request.ID, other.ID}[loser]
			status, err := testSeeder.SelectExchangeStatus(ctx, loserRequest)
			Expect(err).NotTo(HaveOccurred())
			Expect(status).To(Equal("open"))
		})

		It("translates the accepted-side unique index into a state error", func() {
			// ARRANGE
			offer, request := seedPair()
			other := stubs.NewRequestStub().WithCreator("C").WithCategories("tools").WithTarget(entities.TargetEvent, "E1").Get()
			Expect(exchanges.CreateExchange(ctx, other)).To(Succeed())

			// aceita direto no banco com as pontas ainda abertas
			testSeeder.InsertAgreement(ctx, stubs.NewAgreementStub().Between(offer.ID, request.ID).WithStatus(entities.AgreementAccepted).Get())
			pending := stubs.NewAgreementStub().Between(offer.ID, other.ID).Get()
			testSeeder.InsertAgreement(ctx, pending)

			// ACT
			_, err := agreements.TransitionAgreement(ctx, pending.ID, entities.AgreementAccepted)

			// ASSERT
			Expect(domain.StateCodeOf(err)).To(Equal(domain.StateSideAlreadyBound))
			var pgErr *pgconn.PgError
			Expect(errors.As(err, &pgErr)).To(BeFalse())

			stored, err := agreements.GetAgreement(ctx, pending.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.Status).To(Equal(entities.AgreementPending))
			for _, id := range []string{offer.ID, other.ID} {
				status, err := testSeeder.SelectExchangeStatus(ctx, id)
				Expect(err).NotTo(HaveOccurred())
				Expect(status).To(Equal("open"))
			}
		})

		It("returns not found for an unknown agreement", func() {
			_, err := agreements.TransitionAgreement(ctx, "missing", entities.AgreementRejected)

			Expect(errors.Is(err, domain.ErrEntityNotFound)).To(BeTrue())
		})
	})

	Context("ResponseLinkRepository", func() {
		It("refuses a link between two offers", func() {
			offer, _ := seedPair()
			other := stubs.NewOfferStub().WithCreator("C").WithCategories("tools").Get()
			Expect(exchanges.CreateExchange(ctx, other)).To(Succeed())

			err := links.CreateResponseLink(ctx, &entities.ResponseLink{
				ID:        "L1",
				Source:    offer.Ref(),
				Response:  other.Ref(),
				CreatorID: "C",
				CreatedAt: time.Now().UTC(),
			})

			Expect(domain.IsValidation(err)).To(BeTrue())
		})
	})

	Context("NotificationRepository", func() {
		It("keeps one unread match notification per pair", func() {
			offer, request := seedPair()
			newNotification := func(id string) *entities.Notification {
				return &entities.Notification{
					ID:          id,
					RecipientID: "A",
					Event:       entities.EventMatchFound,
					OfferID:     offer.ID,
					RequestID:   request.ID,
					Message:     "match",
					CreatedAt:   time.Now().UTC(),
				}
			}

			inserted, err := notifications.InsertNotification(ctx, newNotification("N1"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeTrue())

			inserted, err = notifications.InsertNotification(ctx, newNotification("N2"))
			Expect(err).NotTo(HaveOccurred())
			Expect(inserted).To(BeFalse())

			count, err := testSeeder.CountUnreadNotifications(ctx, "A")
			Expect(err).NotTo(HaveOccurred())
			Expect(count).To(Equal(1))
		})
	})
})
