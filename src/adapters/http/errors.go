package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"mutualexchange/src/domain"
)

type ErrorDTO struct {
	Kind    string `json:"kind"`
	Code    string `json:"code,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// writeError traduz os erros tipados do domínio; o resto vira 500 genérico.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr   *domain.ValidationError
		stateErr        *domain.StateError
		preconditionErr *domain.PreconditionError
	)

	switch {
	case errors.As(err, &validationErr):
		s.writeJSON(w, http.StatusUnprocessableEntity, ErrorDTO{
			Kind:    string(validationErr.Kind()),
			Field:   validationErr.Field,
			Message: validationErr.UserMessage(),
		})
	case errors.As(err, &stateErr):
		s.writeJSON(w, http.StatusConflict, ErrorDTO{
			Kind:    string(stateErr.Kind()),
			Code:    string(stateErr.Code),
			Message: stateErr.UserMessage(),
		})
	case errors.As(err, &preconditionErr):
		s.writeJSON(w, http.StatusPreconditionFailed, ErrorDTO{
			Kind:    string(preconditionErr.Kind()),
			Message: preconditionErr.UserMessage(),
		})
	case errors.Is(err, domain.ErrEntityNotFound):
		s.writeJSON(w, http.StatusNotFound, ErrorDTO{
			Kind:    "not_found",
			Message: domain.ErrEntityNotFound.Error(),
		})
	default:
		s.logger.ErrorContext(r.Context(), "request failed", "error", err, "method", r.Method, "path", r.URL.Path)
		s.writeJSON(w, http.StatusInternalServerError, ErrorDTO{
			Kind:    "internal",
			Message: domain.ErrUnavailableServer.Error(),
		})
	}
}

func (s *Server) writeBadRequest(w http.ResponseWriter, message string) {
	s.writeJSON(w, http.StatusBadRequest, ErrorDTO{Kind: "bad_request", Message: message})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.logger.Error("Failed to write JSON response", "error", err)
	}
}

func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}
