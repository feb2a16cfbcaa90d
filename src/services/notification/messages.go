package notification

import (
	"fmt"
	"strings"

	"mutualexchange/src/domain/entities"
)

type templates struct {
	matchSubject   string
	createdSubject string
	changedSubject string
	match          string
	created        string
	changed        string
	unknown        string
	statuses       map[entities.AgreementStatus]string
}

var byLocale = map[string]templates{
	"en": {
		matchSubject:   "New match found",
		createdSubject: "New agreement proposal",
		changedSubject: "Agreement updated",
		match:          "Your post matches: offer %q and request %q",
		created:        "An agreement was proposed between offer %q and request %q",
		changed:        "The agreement between offer %q and request %q is now %s",
		unknown:        "a post",
		statuses: map[entities.AgreementStatus]string{
			entities.AgreementPending:  "pending",
			entities.AgreementAccepted: "accepted",
			entities.AgreementRejected: "rejected",
		},
	},
	"pt": {
		matchSubject:   "Novo match encontrado",
		createdSubject: "Nova proposta de acordo",
		changedSubject: "Acordo atualizado",
		match:          "Seu anúncio combina: oferta %q e pedido %q",
		created:        "Um acordo foi proposto entre a oferta %q e o pedido %q",
		changed:        "O acordo entre a oferta %q e o pedido %q agora está %s",
		unknown:        "um anúncio",
		statuses: map[entities.AgreementStatus]string{
			entities.AgreementPending:  "pendente",
			entities.AgreementAccepted: "aceito",
			entities.AgreementRejected: "recusado",
		},
	},
}

// templatesFor resolve "pt-BR" para "pt"; locale desconhecido cai em inglês.
func templatesFor(locale string) templates {
	lang := strings.ToLower(locale)
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if t, ok := byLocale[lang]; ok {
		return t
	}
	return byLocale["en"]
}

func renderSubject(locale string, event entities.NotificationEvent) string {
	t := templatesFor(locale)
	switch event {
	case entities.EventMatchFound:
		return t.matchSubject
	case entities.EventAgreementCreated:
		return t.createdSubject
	default:
		return t.changedSubject
	}
}

func renderMessage(locale string, event entities.NotificationEvent, offer, request *entities.Exchange, status entities.AgreementStatus) string {
	t := templatesFor(locale)
	offerName, requestName := t.unknown, t.unknown
	if offer != nil {
		offerName = offer.Name
	}
	if request != nil {
		requestName = request.Name
	}

	switch event {
	case entities.EventMatchFound:
		return fmt.Sprintf(t.match, offerName, requestName)
	case entities.EventAgreementCreated:
		return fmt.Sprintf(t.created, offerName, requestName)
	default:
		return fmt.Sprintf(t.changed, offerName, requestName, t.statuses[status])
	}
}
