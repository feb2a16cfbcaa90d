package entities

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"mutualexchange/src/domain"
)

// ExchangeKind discriminates the two concrete exchange variants.
type ExchangeKind string

const (
	KindOffer   ExchangeKind = "offer"
	KindRequest ExchangeKind = "request"
)

func ParseExchangeKind(value string) (ExchangeKind, error) {
	switch ExchangeKind(value) {
	case KindOffer, KindRequest:
		return ExchangeKind(value), nil
	}
	return "", domain.NewValidationError("kind", fmt.Sprintf("unknown exchange kind %q", value))
}

// Opposite returns the kind a counterpart or a response must have.
func (k ExchangeKind) Opposite() ExchangeKind {
	if k == KindOffer {
		return KindRequest
	}
	return KindOffer
}

type ExchangeStatus string

const (
	StatusOpen      ExchangeStatus = "open"
	StatusMatched   ExchangeStatus = "matched"
	StatusFulfilled ExchangeStatus = "fulfilled"
	StatusClosed    ExchangeStatus = "closed"
)

func ParseExchangeStatus(value string) (ExchangeStatus, error) {
	switch ExchangeStatus(value) {
	case StatusOpen, StatusMatched, StatusFulfilled, StatusClosed:
		return ExchangeStatus(value), nil
	}
	return "", domain.NewValidationError("status", fmt.Sprintf("unknown exchange status %q", value))
}

// Respondable reports whether a response may be created from an exchange in this status.
func (s ExchangeStatus) Respondable() bool {
	return s == StatusOpen || s == StatusMatched
}

// Urgency is informational only.
type Urgency string

const (
	UrgencyLow      Urgency = "low"
	UrgencyNormal   Urgency = "normal"
	UrgencyHigh     Urgency = "high"
	UrgencyCritical Urgency = "critical"
)

func ParseUrgency(value string) (Urgency, error) {
	switch Urgency(value) {
	case UrgencyLow, UrgencyNormal, UrgencyHigh, UrgencyCritical:
		return Urgency(value), nil
	}
	return "", domain.NewValidationError("urgency", fmt.Sprintf("unknown urgency %q", value))
}

// Exchange é a base comum de Offer e Request.
type Exchange struct {
	ID          string         `json:"id"`
	Kind        ExchangeKind   `json:"kind"`
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Status      ExchangeStatus `json:"status"`
	Urgency     Urgency        `json:"urgency"`
	CreatorID   string         `json:"creator_id"`
	Target      *Target        `json:"target,omitempty"`
	CategoryIDs []string       `json:"category_ids"`
	AddressID   *string        `json:"address_id,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`

	// MalformedTarget is set when the stored target pair was incomplete or
	// unknown. Target is nil in that case but the exchange must not be
	// treated as untargeted.
	MalformedTarget bool `json:"-"`
}

// Validate checks the invariants every persisted exchange must hold.
func (e *Exchange) Validate() error {
	if _, err := ParseExchangeKind(string(e.Kind)); err != nil {
		return err
	}
	if strings.TrimSpace(e.Name) == "" {
		return domain.NewValidationError("name", "name is required")
	}
	if strings.TrimSpace(e.Description) == "" {
		return domain.NewValidationError("description", "description is required")
	}
	if strings.TrimSpace(e.CreatorID) == "" {
		return domain.NewValidationError("creator_id", "creator is required")
	}
	if len(e.CategoryIDs) == 0 {
		return domain.NewValidationError("category_ids", "at least one category is required")
	}
	if _, err := ParseExchangeStatus(string(e.Status)); err != nil {
		return err
	}
	if _, err := ParseUrgency(string(e.Urgency)); err != nil {
		return err
	}
	if e.MalformedTarget {
		return domain.NewValidationError("target", "target type and target id must be set together")
	}
	if e.Target != nil {
		if err := e.Target.Validate(); err != nil {
			return err
		}
	}
	return nil
}

func (e *Exchange) Ref() ExchangeRef {
	return ExchangeRef{Kind: e.Kind, ID: e.ID}
}

func (e *Exchange) Summary() ExchangeSummary {
	return ExchangeSummary{
		ID:        e.ID,
		Kind:      e.Kind,
		Name:      e.Name,
		Status:    e.Status,
		Urgency:   e.Urgency,
		CreatorID: e.CreatorID,
		Target:    e.Target,
	}
}

// HasCategory reports whether the exchange is tagged with categoryID.
func (e *Exchange) HasCategory(categoryID string) bool {
	for _, id := range e.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// SharesCategory reports whether the two exchanges have at least one category in common.
func (e *Exchange) SharesCategory(other *Exchange) bool {
	for _, id := range other.CategoryIDs {
		if e.HasCategory(id) {
			return true
		}
	}
	return false
}

// ExchangeSummary is the row the matchmaker yields.
type ExchangeSummary struct {
	ID        string         `json:"id"`
	Kind      ExchangeKind   `json:"kind"`
	Name      string         `json:"name"`
	Status    ExchangeStatus `json:"status"`
	Urgency   Urgency        `json:"urgency"`
	CreatorID string         `json:"creator_id"`
	Target    *Target        `json:"target,omitempty"`
}

// ExchangeRef is a typed reference to an offer or a request.
type ExchangeRef struct {
	Kind ExchangeKind `json:"kind"`
	ID   string       `json:"id"`
}

// ExchangeFilter narrows ListExchanges. Empty fields do not filter.
type ExchangeFilter struct {
	Kind      ExchangeKind
	Status    ExchangeStatus
	CreatorID string
	Limit     int
}

// NormalizeCategoryIDs trims, drops blanks and de-duplicates; order is irrelevant for a set.
func NormalizeCategoryIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Strings(out)
	return out
}
