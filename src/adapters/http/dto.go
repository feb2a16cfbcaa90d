package http

import (
	"time"

	"mutualexchange/src/domain/entities"
)

type TargetDTO struct {
	Kind string `json:"kind"`
	ID   string `json:"id"`
}

type ExchangeDTO struct {
	ID          string     `json:"id"`
	Kind        string     `json:"kind"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      string     `json:"status"`
	Urgency     string     `json:"urgency"`
	CreatorID   string     `json:"creator_id"`
	Target      *TargetDTO `json:"target"`
	CategoryIDs []string   `json:"category_ids"`
	AddressID   *string    `json:"address_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type ExchangeSummaryDTO struct {
	ID        string     `json:"id"`
	Kind      string     `json:"kind"`
	Name      string     `json:"name"`
	Status    string     `json:"status"`
	Urgency   string     `json:"urgency"`
	CreatorID string     `json:"creator_id"`
	Target    *TargetDTO `json:"target"`
}

type MatchesDTO struct {
	ExchangeID string               `json:"exchange_id"`
	Matches    []ExchangeSummaryDTO `json:"matches"`
}

type AgreementDTO struct {
	ID        string    `json:"id"`
	OfferID   string    `json:"offer_id"`
	RequestID string    `json:"request_id"`
	Status    string    `json:"status"`
	Terms     string    `json:"terms"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type ResponseLinkDTO struct {
	ID           string    `json:"id"`
	SourceKind   string    `json:"source_kind"`
	SourceID     string    `json:"source_id"`
	ResponseKind string    `json:"response_kind"`
	ResponseID   string    `json:"response_id"`
	CreatorID    string    `json:"creator_id"`
	CreatedAt    time.Time `json:"created_at"`
}

type NotificationDTO struct {
	ID          string     `json:"id"`
	Event       string     `json:"event"`
	OfferID     string     `json:"offer_id"`
	RequestID   string     `json:"request_id"`
	AgreementID *string    `json:"agreement_id,omitempty"`
	Message     string     `json:"message"`
	ReadAt      *time.Time `json:"read_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

type HealthDTO struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Requests

type TagCategoriesRequest struct {
	CategoryIDs []string `json:"category_ids"`
}

type CreateResponseRequest struct {
	CreatorID string `json:"creator_id"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

type CreateCategoryRequest struct {
	Name string `json:"name"`
}

type CategoryIDsDTO struct {
	ExchangeID  string   `json:"exchange_id"`
	CategoryIDs []string `json:"category_ids"`
}

func mapTarget(t *entities.Target) *TargetDTO {
	if t == nil {
		return nil
	}
	return &TargetDTO{Kind: string(t.Kind), ID: t.ID}
}

func MapExchangeToResponse(ex *entities.Exchange) ExchangeDTO {
	return ExchangeDTO{
		ID:          ex.ID,
		Kind:        string(ex.Kind),
		Name:        ex.Name,
		Description: ex.Description,
		Status:      string(ex.Status),
		Urgency:     string(ex.Urgency),
		CreatorID:   ex.CreatorID,
		Target:      mapTarget(ex.Target),
		CategoryIDs: ex.CategoryIDs,
		AddressID:   ex.AddressID,
		CreatedAt:   ex.CreatedAt,
		UpdatedAt:   ex.UpdatedAt,
	}
}

func MapSummaryToResponse(s entities.ExchangeSummary) ExchangeSummaryDTO {
	return ExchangeSummaryDTO{
		ID:        s.ID,
		Kind:      string(s.Kind),
		Name:      s.Name,
		Status:    string(s.Status),
		Urgency:   string(s.Urgency),
		CreatorID: s.CreatorID,
		Target:    mapTarget(s.Target),
	}
}

func MapAgreementToResponse(a *entities.Agreement) AgreementDTO {
	return AgreementDTO{
		ID:        a.ID,
		OfferID:   a.OfferID,
		RequestID: a.RequestID,
		Status:    string(a.Status),
		Terms:     a.Terms,
		Value:     a.Value,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

func MapResponseLinkToResponse(l *entities.ResponseLink) ResponseLinkDTO {
	return ResponseLinkDTO{
		ID:           l.ID,
		SourceKind:   string(l.Source.Kind),
		SourceID:     l.Source.ID,
		ResponseKind: string(l.Response.Kind),
		ResponseID:   l.Response.ID,
		CreatorID:    l.CreatorID,
		CreatedAt:    l.CreatedAt,
	}
}

func MapNotificationToResponse(n *entities.Notification) NotificationDTO {
	return NotificationDTO{
		ID:          n.ID,
		Event:       string(n.Event),
		OfferID:     n.OfferID,
		RequestID:   n.RequestID,
		AgreementID: n.AgreementID,
		Message:     n.Message,
		ReadAt:      n.ReadAt,
		CreatedAt:   n.CreatedAt,
	}
}
