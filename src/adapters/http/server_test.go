package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	httpadapter "mutualexchange/src/adapters/http"
	"mutualexchange/src/domain/entities"
	"mutualexchange/src/infra/metrics"
	"mutualexchange/src/services/agreement"
	"mutualexchange/src/services/exchange"
	"mutualexchange/src/services/matchmaker"
	"mutualexchange/src/services/notification"
	"mutualexchange/src/services/response"
	"mutualexchange/src/test_artefacts/comparer"
	"mutualexchange/src/test_artefacts/fakes"
	"mutualexchange/src/test_artefacts/stubs"
)

var _ = Describe("Server", func() {
	var (
		store   *fakes.Store
		handler http.Handler
		healthy error
	)

	BeforeEach(func() {
		store = fakes.NewStore()
		healthy = nil
		logger := slog.New(slog.DiscardHandler)
		m := metrics.NewMetrics()

		dispatcher := notification.NewDispatcher(logger, store, store, store, store, &fakes.LiveChannel{}, &fakes.DurableChannel{}, m)
		mm := matchmaker.NewMatchmaker(logger, store, m)
		exchanges := exchange.NewExchangeService(logger, store, store, mm, dispatcher)
		agreements := agreement.NewAgreementService(logger, store, store, dispatcher, m)
		linker := response.NewResponseLinker(logger, store, exchanges, store, m)

		server := httpadapter.NewServer(logger, 0, exchanges, mm, agreements, linker, dispatcher,
			httpadapter.HealthCheck{Name: "postgres", Check: func(ctx context.Context) error { return healthy }},
		)
		handler = server.Handler()
	})

	do := func(method, path, body string) *httptest.ResponseRecorder {
		var req *http.Request
		if body == "" {
			req = httptest.NewRequest(method, path, nil)
		} else {
			req = httptest.NewRequest(method, path, strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
		}
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec
	}

	decode := func(rec *httptest.ResponseRecorder, dst any) {
		Expect(json.Unmarshal(rec.Body.Bytes(), dst)).To(Succeed())
	}

	Context("POST /v1/exchanges", func() {
		It("creates an exchange", func() {
			rec := do(http.MethodPost, "/v1/exchanges", `{
				"kind": "offer",
				"name": "Bike repair",
				"description": "I fix bikes",
				"creator_id": "A",
				"category_ids": ["tools"],
				"target_kind": "event",
				"target_id": "E1"
			}`)

			Expect(rec.Code).To(Equal(http.StatusCreated))
			var body httpadapter.ExchangeDTO
			decode(rec, &body)
			Expect(body.Kind).To(Equal("offer"))
			Expect(body.Status).To(Equal("open"))
			Expect(body.Target).To(Equal(&httpadapter.TargetDTO{Kind: "event", ID: "E1"}))
		})

		It("answers 422 with the failing field", func() {
			rec := do(http.MethodPost, "/v1/exchanges", `{"kind": "offer", "name": "x", "description": "y", "creator_id": "A", "category_ids": []}`)

			Expect(rec.Code).To(Equal(http.StatusUnprocessableEntity))
			equal, diff := comparer.EqualJSON(rec.Body.Bytes(), []byte(`{
				"kind": "validation",
				"field": "category_ids",
				"message": "The submitted data is invalid: at least one category is required"
			}`))
			Expect(equal).To(BeTrue(), diff)
		})

		It("answers 400 on unknown fields", func() {
			rec := do(http.MethodPost, "/v1/exchanges", `{"kind": "offer", "colour": "red"}`)

			Expect(rec.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Context("GET /v1/exchanges/{id}", func() {
		It("answers 404 for an unknown exchange", func() {
			rec := do(http.MethodGet, "/v1/exchanges/missing", "")

			Expect(rec.Code).To(Equal(http.StatusNotFound))
		})
	})

	Context("GET /v1/exchanges/{id}/matches", func() {
		It("lists the counterparts", func() {
			store.PutExchange(stubs.NewOfferStub().WithID("O1").WithCreator("A").WithCategories("tools").Get())
			store.PutExchange(stubs.NewRequestStub().WithID("R1").WithCreator("B").WithCategories("tools").Get())

			rec := do(http.MethodGet, "/v1/exchanges/R1/matches", "")

			Expect(rec.Code).To(Equal(http.StatusOK))
			var body httpadapter.MatchesDTO
			decode(rec, &body)
			Expect(body.ExchangeID).To(Equal("R1"))
			Expect(body.Matches).To(HaveLen(1))
			Expect(body.Matches[0].ID).To(Equal("O1"))
		})
	})

	Context("agreements", func() {
		BeforeEach(func() {
			store.PutExchange(stubs.NewOfferStub().WithID("O1").WithCreator("A").WithCategories("tools").Get())
			store.PutExchange(stubs.NewRequestStub().WithID("R1").WithCreator("B").WithCategories("tools").Get())
		})

		create := func() httpadapter.AgreementDTO {
			rec := do(http.MethodPost, "/v1/agreements", `{"offer_id": "O1", "request_id": "R1", "terms": "fix it", "value": "$20"}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))
			var body httpadapter.AgreementDTO
			decode(rec, &body)
			return body
		}

		It("creates and accepts an agreement", func() {
			a := create()
			Expect(a.Status).To(Equal("pending"))

			rec := do(http.MethodPost, "/v1/agreements/"+a.ID+"/accept", "")

			Expect(rec.Code).To(Equal(http.StatusOK))
			var body httpadapter.AgreementDTO
			decode(rec, &body)
			Expect(body.Status).To(Equal("accepted"))
		})

		It("answers 409 with the state code on a second accept", func() {
			a := create()
			Expect(do(http.MethodPost, "/v1/agreements/"+a.ID+"/accept", "").Code).To(Equal(http.StatusOK))

			rec := do(http.MethodPost, "/v1/agreements/"+a.ID+"/reject", "")

			Expect(rec.Code).To(Equal(http.StatusConflict))
			var body httpadapter.ErrorDTO
			decode(rec, &body)
			Expect(body.Kind).To(Equal("state"))
			Expect(body.Code).To(Equal("ALREADY_ACCEPTED"))
		})

		It("updates the status through PATCH", func() {
			a := create()

			rec := do(http.MethodPatch, "/v1/agreements/"+a.ID+"/status", `{"status": "rejected"}`)

			Expect(rec.Code).To(Equal(http.StatusOK))
			ex, _ := store.GetExchange(context.Background(), "O1")
			Expect(ex.Status).To(Equal(entities.StatusMatched))
		})

		It("lists agreements of an exchange", func() {
			create()

			rec := do(http.MethodGet, "/v1/exchanges/O1/agreements", "")

			Expect(rec.Code).To(Equal(http.StatusOK))
			var body []httpadapter.AgreementDTO
			decode(rec, &body)
			Expect(body).To(HaveLen(1))
		})
	})

	Context("responses", func() {
		It("answers 412 when the source is closed", func() {
			store.PutExchange(stubs.NewOfferStub().WithID("O1").WithStatus(entities.StatusClosed).Get())

			rec := do(http.MethodPost, "/v1/exchanges/O1/responses", `{"creator_id": "B"}`)

			Expect(rec.Code).To(Equal(http.StatusPreconditionFailed))
		})

		It("creates the response and lists the link", func() {
			store.PutExchange(stubs.NewOfferStub().WithID("O1").WithCreator("A").Get())

			rec := do(http.MethodPost, "/v1/exchanges/O1/responses", `{"creator_id": "B"}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec = do(http.MethodGet, "/v1/exchanges/O1/responses", "")
			var links []httpadapter.ResponseLinkDTO
			decode(rec, &links)
			Expect(links).To(HaveLen(1))
			Expect(links[0].ResponseKind).To(Equal("request"))
		})
	})

	Context("notifications", func() {
		It("lists unread notifications and marks them read", func() {
			store.PutExchange(stubs.NewOfferStub().WithID("O1").WithCreator("A").WithCategories("tools").Get())
			rec := do(http.MethodPost, "/v1/exchanges", `{"kind": "request", "name": "Need bike fixed", "description": "bent wheel", "creator_id": "B", "category_ids": ["tools"]}`)
			Expect(rec.Code).To(Equal(http.StatusCreated))

			rec = do(http.MethodGet, "/v1/people/A/notifications", "")
			var unread []httpadapter.NotificationDTO
			decode(rec, &unread)
			Expect(unread).To(HaveLen(1))
			Expect(unread[0].Event).To(Equal("match_found"))

			rec = do(http.MethodPost, "/v1/notifications/"+unread[0].ID+"/read", "")
			Expect(rec.Code).To(Equal(http.StatusOK))

			rec = do(http.MethodGet, "/v1/people/A/notifications", "")
			decode(rec, &unread)
			Expect(unread).To(BeEmpty())
		})
	})

	Context("GET /health", func() {
		It("answers 200 when every check passes", func() {
			Expect(do(http.MethodGet, "/health", "").Code).To(Equal(http.StatusOK))
		})

		It("answers 503 when a check fails", func() {
			healthy = errors.New("connection refused")

			rec := do(http.MethodGet, "/health", "")

			Expect(rec.Code).To(Equal(http.StatusServiceUnavailable))
			var body httpadapter.HealthDTO
			decode(rec, &body)
			Expect(body.Checks).To(HaveKeyWithValue("postgres", "down"))
		})
	})
})
