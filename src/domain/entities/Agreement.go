package entities

import (
	"fmt"
	"strings"
	"time"

	"mutualexchange/src/domain"
)

type AgreementStatus string

const (
	AgreementPending  AgreementStatus = "pending"
	AgreementAccepted AgreementStatus = "accepted"
	AgreementRejected AgreementStatus = "rejected"
)

func ParseAgreementStatus(value string) (AgreementStatus, error) {
	switch AgreementStatus(value) {
	case AgreementPending, AgreementAccepted, AgreementRejected:
		return AgreementStatus(value), nil
	}
	return "", domain.NewValidationError("status", fmt.Sprintf("unknown agreement status %q", value))
}

func (s AgreementStatus) IsTerminal() bool {
	return s == AgreementAccepted || s == AgreementRejected
}

// CanTransitionTo only allows pending -> accepted | rejected.
func (s AgreementStatus) CanTransitionTo(next AgreementStatus) bool {
	return s == AgreementPending && next.IsTerminal()
}

// Agreement binds exactly one offer and one request. Both references are
// immutable once created.
type Agreement struct {
	ID        string          `json:"id"`
	OfferID   string          `json:"offer_id"`
	RequestID string          `json:"request_id"`
	Status    AgreementStatus `json:"status"`
	Terms     string          `json:"terms"`
	Value     string          `json:"value"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// CheckTransition returns a StateError when the agreement cannot move to next.
func (a *Agreement) CheckTransition(next AgreementStatus) error {
	if a.Status.CanTransitionTo(next) {
		return nil
	}
	switch a.Status {
	case AgreementAccepted:
		return domain.NewStateError(domain.StateAlreadyAccepted, a.ID)
	case AgreementRejected:
		return domain.NewStateError(domain.StateAlreadyRejected, a.ID)
	}
	return domain.NewStateError(domain.StateIllegalTransition, a.ID).
		WithDetail(fmt.Sprintf("%s -> %s", a.Status, next))
}

// CheckSidesOpen refuses a transition when either side was already closed by
// another path.
func CheckSidesOpen(agreementID string, offer, request *Exchange) error {
	if offer.Status == StatusClosed {
		return domain.NewStateError(domain.StateSideClosed, agreementID).WithDetail("offer " + offer.ID)
	}
	if request.Status == StatusClosed {
		return domain.NewStateError(domain.StateSideClosed, agreementID).WithDetail("request " + request.ID)
	}
	return nil
}

// CheckAlignment validates the pair an agreement is about to bind.
func CheckAlignment(offer, request *Exchange) error {
	if offer == nil {
		return domain.NewValidationError("offer_id", "offer is required")
	}
	if request == nil {
		return domain.NewValidationError("request_id", "request is required")
	}
	if offer.Kind != KindOffer {
		return domain.NewValidationError("offer_id", fmt.Sprintf("%s is a %s, not an offer", offer.ID, offer.Kind))
	}
	if request.Kind != KindRequest {
		return domain.NewValidationError("request_id", fmt.Sprintf("%s is a %s, not a request", request.ID, request.Kind))
	}
	if offer.MalformedTarget || request.MalformedTarget {
		return domain.NewValidationError("target", "offer or request has a malformed target")
	}
	if !SameTarget(offer.Target, request.Target) {
		return domain.NewValidationError("target", "offer and request targets do not match")
	}
	return nil
}

// NewAgreement builds a pending agreement for an aligned pair.
func NewAgreement(id string, offer, request *Exchange, terms, value string, now time.Time) (*Agreement, error) {
	if err := CheckAlignment(offer, request); err != nil {
		return nil, err
	}
	return &Agreement{
		ID:        id,
		OfferID:   offer.ID,
		RequestID: request.ID,
		Status:    AgreementPending,
		Terms:     strings.TrimSpace(terms),
		Value:     strings.TrimSpace(value),
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// AgreementTransition is the committed outcome of a status change.
type AgreementTransition struct {
	Agreement     *Agreement
	Previous      AgreementStatus
	OfferStatus   ExchangeStatus
	RequestStatus ExchangeStatus
}

func (t *AgreementTransition) Changed() bool {
	return t.Previous != t.Agreement.Status
}
