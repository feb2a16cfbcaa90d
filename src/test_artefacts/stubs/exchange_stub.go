package stubs

import (
	"time"

	"mutualexchange/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type ExchangeStub struct {
	exchange entities.Exchange
}

func NewExchangeStub() ExchangeStub {
	now := time.Now().UTC()

	exchange := entities.Exchange{
		ID:          gofakeit.UUID(),
		Kind:        entities.KindOffer,
		Name:        gofakeit.JobTitle(),
		Description: gofakeit.Sentence(8),
		Status:      entities.StatusOpen,
		Urgency:     entities.UrgencyNormal,
		CreatorID:   gofakeit.UUID(),
		CategoryIDs: []string{"cat-" + gofakeit.Word()},
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	return ExchangeStub{exchange: exchange}
}

func NewOfferStub() ExchangeStub {
	return NewExchangeStub().WithKind(entities.KindOffer)
}

func NewRequestStub() ExchangeStub {
	return NewExchangeStub().WithKind(entities.KindRequest)
}

func (es ExchangeStub) WithID(id string) ExchangeStub {
	es.exchange.ID = id
	return es
}

func (es ExchangeStub) WithKind(kind entities.ExchangeKind) ExchangeStub {
	es.exchange.Kind = kind
	return es
}

func (es ExchangeStub) WithStatus(status entities.ExchangeStatus) ExchangeStub {
	es.exchange.Status = status
	return es
}

func (es ExchangeStub) WithCreator(creatorID string) ExchangeStub {
	es.exchange.CreatorID = creatorID
	return es
}

func (es ExchangeStub) WithCategories(ids ...string) ExchangeStub {
	es.exchange.CategoryIDs = entities.NormalizeCategoryIDs(ids)
	return es
}

func (es ExchangeStub) WithTarget(kind entities.TargetKind, id string) ExchangeStub {
	es.exchange.Target = &entities.Target{Kind: kind, ID: id}
	es.exchange.MalformedTarget = false
	return es
}

// WithMalformedTarget simula uma linha com só um dos campos de alvo preenchido.
func (es ExchangeStub) WithMalformedTarget() ExchangeStub {
	es.exchange.Target = nil
	es.exchange.MalformedTarget = true
	return es
}

func (es ExchangeStub) WithCreatedAt(at time.Time) ExchangeStub {
	es.exchange.CreatedAt = at
	es.exchange.UpdatedAt = at
	return es
}

func (es ExchangeStub) Get() *entities.Exchange {
	ex := es.exchange
	ex.CategoryIDs = append([]string(nil), es.exchange.CategoryIDs...)
	return &ex
}
