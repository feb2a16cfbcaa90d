package http

import (
	"net/http"
	"strconv"

	"mutualexchange/src/services/exchange"
)

func (s *Server) CreateExchange(w http.ResponseWriter, r *http.Request) {
	var input exchange.CreateExchangeInput
	if err := decodeBody(r, &input); err != nil {
		s.writeBadRequest(w, "Invalid request body: "+err.Error())
		return
	}

	ex, err := s.exchangeService.Create(r.Context(), input)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, MapExchangeToResponse(ex))
}

func (s *Server) GetExchange(w http.ResponseWriter, r *http.Request) {
	ex, err := s.exchangeService.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, MapExchangeToResponse(ex))
}

func (s *Server) ListExchanges(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := exchange.ListFilter{
		Kind:      query.Get("kind"),
		Status:    query.Get("status"),
		CreatorID: query.Get("creator_id"),
	}
	if limit := query.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n <= 0 {
			s.writeBadRequest(w, "Invalid limit format")
			return
		}
		filter.Limit = n
	}

	list, err := s.exchangeService.List(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]ExchangeDTO, 0, len(list))
	for _, ex := range list {
		out = append(out, MapExchangeToResponse(ex))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) GetMatches(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	result := MatchesDTO{ExchangeID: id, Matches: make([]ExchangeSummaryDTO, 0)}
	for summary, err := range s.matchmaker.Match(r.Context(), id) {
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		result.Matches = append(result.Matches, MapSummaryToResponse(summary))
	}

	s.writeJSON(w, http.StatusOK, result)
}

func (s *Server) TagCategories(w http.ResponseWriter, r *http.Request) {
	var request TagCategoriesRequest
	if err := decodeBody(r, &request); err != nil {
		s.writeBadRequest(w, "Invalid request body: "+err.Error())
		return
	}

	id := r.PathValue("id")
	current, err := s.exchangeService.TagCategories(r.Context(), id, request.CategoryIDs)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, CategoryIDsDTO{ExchangeID: id, CategoryIDs: current})
}

func (s *Server) UntagCategory(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	current, err := s.exchangeService.UntagCategory(r.Context(), id, r.PathValue("categoryID"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, CategoryIDsDTO{ExchangeID: id, CategoryIDs: current})
}

func (s *Server) CreateResponse(w http.ResponseWriter, r *http.Request) {
	var request CreateResponseRequest
	if err := decodeBody(r, &request); err != nil {
		s.writeBadRequest(w, "Invalid request body: "+err.Error())
		return
	}

	ex, err := s.responseLinker.CreateResponse(r.Context(), r.PathValue("id"), request.CreatorID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, MapExchangeToResponse(ex))
}

func (s *Server) ListResponses(w http.ResponseWriter, r *http.Request) {
	links, err := s.responseLinker.ListResponses(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]ResponseLinkDTO, 0, len(links))
	for _, l := range links {
		out = append(out, MapResponseLinkToResponse(l))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) ListAgreementsForExchange(w http.ResponseWriter, r *http.Request) {
	list, err := s.agreementService.ListForExchange(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	out := make([]AgreementDTO, 0, len(list))
	for _, a := range list {
		out = append(out, MapAgreementToResponse(a))
	}
	s.writeJSON(w, http.StatusOK, out)
}
