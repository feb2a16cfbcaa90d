package http

import (
	"net/http"
)

func (s *Server) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.exchangeService.ListCategories(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, categories)
}

func (s *Server) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var request CreateCategoryRequest
	if err := decodeBody(r, &request); err != nil {
		s.writeBadRequest(w, "Invalid request body: "+err.Error())
		return
	}

	category, err := s.exchangeService.CreateCategory(r.Context(), request.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, category)
}

func (s *Server) ListUnreadNotifications(w http.ResponseWriter, r *http.Request) {
	notifications, err := s.dispatcher.ListUnread(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		out = append(out, MapNotificationToResponse(n))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) MarkNotificationRead(w http.ResponseWriter, r *http.Request) {
	n, err := s.dispatcher.MarkRead(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, MapNotificationToResponse(n))
}
