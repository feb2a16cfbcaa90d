package stubs

import (
	"fmt"
	"time"

	"mutualexchange/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type AgreementStub struct {
	agreement entities.Agreement
}

func NewAgreementStub() AgreementStub {
	now := time.Now().UTC()

	agreement := entities.Agreement{
		ID:        gofakeit.UUID(),
		OfferID:   gofakeit.UUID(),
		RequestID: gofakeit.UUID(),
		Status:    entities.AgreementPending,
		Terms:     gofakeit.Sentence(6),
		Value:     fmt.Sprintf("%.2f", gofakeit.Price(10, 500)),
		CreatedAt: now,
		UpdatedAt: now,
	}

	return AgreementStub{agreement: agreement}
}

func (as AgreementStub) Between(offerID, requestID string) AgreementStub {
	as.agreement.OfferID = offerID
	as.agreement.RequestID = requestID
	return as
}

func (as AgreementStub) WithStatus(status entities.AgreementStatus) AgreementStub {
	as.agreement.Status = status
	return as
}

func (as AgreementStub) Get() *entities.Agreement {
	a := as.agreement
	return &a
}
