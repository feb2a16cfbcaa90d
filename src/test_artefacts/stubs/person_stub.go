package stubs

import (
	"mutualexchange/src/domain/entities"

	"github.com/brianvoe/gofakeit/v6"
)

type PersonStub struct {
	person entities.Person
}

func NewPersonStub() PersonStub {
	return PersonStub{person: entities.Person{
		ID:            gofakeit.UUID(),
		Name:          gofakeit.Name(),
		Email:         gofakeit.Email(),
		Locale:        "en",
		NotifyByEmail: true,
	}}
}

func (ps PersonStub) WithID(id string) PersonStub {
	ps.person.ID = id
	return ps
}

func (ps PersonStub) WithLocale(locale string) PersonStub {
	ps.person.Locale = locale
	return ps
}

func (ps PersonStub) WithoutEmailNotifications() PersonStub {
	ps.person.NotifyByEmail = false
	return ps
}

func (ps PersonStub) Get() *entities.Person {
	p := ps.person
	return &p
}
