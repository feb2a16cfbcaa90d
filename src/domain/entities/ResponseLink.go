package entities

import (
	"time"

	"mutualexchange/src/domain"
)

// ResponseLink records that Response was created as a reply to Source.
type ResponseLink struct {
	ID        string      `json:"id"`
	Source    ExchangeRef `json:"source"`
	Response  ExchangeRef `json:"response"`
	CreatorID string      `json:"creator_id"`
	CreatedAt time.Time   `json:"created_at"`
}

func NewResponseLink(id string, source, response ExchangeRef, creatorID string, now time.Time) (*ResponseLink, error) {
	link := &ResponseLink{
		ID:        id,
		Source:    source,
		Response:  response,
		CreatorID: creatorID,
		CreatedAt: now,
	}
	if err := link.Validate(); err != nil {
		return nil, err
	}
	return link, nil
}

func (l *ResponseLink) Validate() error {
	if l.Source.ID == "" || l.Response.ID == "" {
		return domain.NewValidationError("response_link", "source and response are required")
	}
	if l.Source.Kind == l.Response.Kind {
		return domain.NewValidationError("response_link", "an "+string(l.Source.Kind)+" can only be answered with a "+string(l.Source.Kind.Opposite()))
	}
	if l.CreatorID == "" {
		return domain.NewValidationError("creator_id", "creator is required")
	}
	return nil
}
