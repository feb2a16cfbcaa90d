package http

import (
	"context"
	"net/http"

	"mutualexchange/src/domain/entities"
	"mutualexchange/src/services/agreement"
)

func (s *Server) CreateAgreement(w http.ResponseWriter, r *http.Request) {
	var input agreement.CreateAgreementInput
	if err := decodeBody(r, &input); err != nil {
		s.writeBadRequest(w, "Invalid request body: "+err.Error())
		return
	}

	a, err := s.agreementService.Create(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, MapAgreementToResponse(a))
}

func (s *Server) GetAgreement(w http.ResponseWriter, r *http.Request) {
	a, err := s.agreementService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, MapAgreementToResponse(a))
}

func (s *Server) AcceptAgreement(w http.ResponseWriter, r *http.Request) {
	s.transitionAgreement(w, r, s.agreementService.Accept)
}

func (s *Server) RejectAgreement(w http.ResponseWriter, r *http.Request) {
	s.transitionAgreement(w, r, s.agreementService.Reject)
}

func (s *Server) UpdateAgreementStatus(w http.ResponseWriter, r *http.Request) {
	var request UpdateStatusRequest
	if err := decodeBody(r, &request); err != nil {
		s.writeBadRequest(w, "Invalid request body: "+err.Error())
		return
	}

	s.transitionAgreement(w, r, func(ctx context.Context, id string) (*entities.Agreement, error) {
		return s.agreementService.UpdateStatus(ctx, id, request.Status)
	})
}

func (s *Server) transitionAgreement(w http.ResponseWriter, r *http.Request, apply func(ctx context.Context, id string) (*entities.Agreement, error)) {
	a, err := apply(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, MapAgreementToResponse(a))
}
