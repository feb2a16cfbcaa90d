package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"mutualexchange/src/infra/metrics"
	"mutualexchange/src/services/agreement"
	"mutualexchange/src/services/exchange"
	"mutualexchange/src/services/matchmaker"
	"mutualexchange/src/services/notification"
	"mutualexchange/src/services/response"
)

// HealthCheck is one dependency probe reported by GET /health.
type HealthCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server representa o servidor HTTP da API
type Server struct {
	logger           *slog.Logger
	server           *http.Server
	mux              *http.ServeMux
	port             int
	exchangeService  *exchange.ExchangeService
	matchmaker       *matchmaker.Matchmaker
	agreementService *agreement.AgreementService
	responseLinker   *response.ResponseLinker
	dispatcher       *notification.Dispatcher
	healthChecks     []HealthCheck
}

// NewServer cria uma nova instância do servidor
func NewServer(
	logger *slog.Logger,
	port int,
	exchangeService *exchange.ExchangeService,
	matchmaker *matchmaker.Matchmaker,
	agreementService *agreement.AgreementService,
	responseLinker *response.ResponseLinker,
	dispatcher *notification.Dispatcher,
	healthChecks ...HealthCheck,
) *Server {
	server := &Server{
		mux:              http.NewServeMux(),
		port:             port,
		logger:           logger,
		exchangeService:  exchangeService,
		matchmaker:       matchmaker,
		agreementService: agreementService,
		responseLinker:   responseLinker,
		dispatcher:       dispatcher,
		healthChecks:     healthChecks,
	}

	server.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      server.mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Exchanges
	server.mux.HandleFunc("POST /v1/exchanges", server.CreateExchange)
	server.mux.HandleFunc("GET /v1/exchanges", server.ListExchanges)
	server.mux.HandleFunc("GET /v1/exchanges/{id}", server.GetExchange)
	server.mux.HandleFunc("GET /v1/exchanges/{id}/matches", server.GetMatches)
	server.mux.HandleFunc("POST /v1/exchanges/{id}/categories", server.TagCategories)
	server.mux.HandleFunc("DELETE /v1/exchanges/{id}/categories/{categoryID}", server.UntagCategory)
	server.mux.HandleFunc("POST /v1/exchanges/{id}/responses", server.CreateResponse)
	server.mux.HandleFunc("GET /v1/exchanges/{id}/responses", server.ListResponses)
	server.mux.HandleFunc("GET /v1/exchanges/{id}/agreements", server.ListAgreementsForExchange)

	// Agreements
	server.mux.HandleFunc("POST /v1/agreements", server.CreateAgreement)
	server.mux.HandleFunc("GET /v1/agreements/{id}", server.GetAgreement)
	server.mux.HandleFunc("POST /v1/agreements/{id}/accept", server.AcceptAgreement)
	server.mux.HandleFunc("POST /v1/agreements/{id}/reject", server.RejectAgreement)
	server.mux.HandleFunc("PATCH /v1/agreements/{id}/status", server.UpdateAgreementStatus)

	// Categorias
	server.mux.HandleFunc("GET /v1/categories", server.ListCategories)
	server.mux.HandleFunc("POST /v1/categories", server.CreateCategory)

	// Notificações
	server.mux.HandleFunc("GET /v1/people/{id}/notifications", server.ListUnreadNotifications)
	server.mux.HandleFunc("POST /v1/notifications/{id}/read", server.MarkNotificationRead)

	server.mux.HandleFunc("GET /health", server.Health)
	server.mux.Handle("GET /metrics", metrics.Handler())

	return server
}

// Handler exposes the routes without starting a listener.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start inicia o servidor HTTP
func (s *Server) Start() error {
	s.logger.Info("Server started", "port", s.port)

	return s.server.ListenAndServe()
}

// Shutdown encerra o servidor HTTP de forma graciosa
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down server...")
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := http.StatusOK
	checks := make(map[string]string, len(s.healthChecks))
	for _, hc := range s.healthChecks {
		if err := hc.Check(ctx); err != nil {
			s.logger.WarnContext(ctx, "health check failed", "check", hc.Name, "error", err)
			checks[hc.Name] = "down"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[hc.Name] = "up"
	}

	s.writeJSON(w, status, HealthDTO{Status: http.StatusText(status), Checks: checks})
}
