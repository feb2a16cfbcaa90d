package repositories

import (
	"fmt"
	"time"

	"mutualexchange/src/domain/entities"
)

type scanner interface {
	Scan(dest ...any) error
}

// Colunas lidas por scanExchange, na mesma ordem.
const exchangeColumns = `
	e.id,
	e.kind,
	e.name,
	e.description,
	e.status,
	e.urgency,
	e.creator_id,
	e.target_type,
	e.target_id,
	e.address_id,
	e.created_at,
	e.updated_at,
	ARRAY(SELECT ec.category_id FROM exchange_categories ec WHERE ec.exchange_id = e.id ORDER BY ec.category_id)`

// scanExchange é a única fronteira de parse para status/urgency/kind vindos do banco.
func scanExchange(row scanner) (*entities.Exchange, error) {
	var (
		ex                            entities.Exchange
		kind, status, urgency         string
		targetType, targetID, address *string
		categoryIDs                   []string
	)

	err := row.Scan(
		&ex.ID,
		&kind,
		&ex.Name,
		&ex.Description,
		&status,
		&urgency,
		&ex.CreatorID,
		&targetType,
		&targetID,
		&address,
		&ex.CreatedAt,
		&ex.UpdatedAt,
		&categoryIDs,
	)
	if err != nil {
		return nil, err
	}

	if ex.Kind, err = entities.ParseExchangeKind(kind); err != nil {
		return nil, fmt.Errorf("exchange %s: %w", ex.ID, err)
	}
	if ex.Status, err = entities.ParseExchangeStatus(status); err != nil {
		return nil, fmt.Errorf("exchange %s: %w", ex.ID, err)
	}
	if ex.Urgency, err = entities.ParseUrgency(urgency); err != nil {
		return nil, fmt.Errorf("exchange %s: %w", ex.ID, err)
	}

	target, ok := entities.TargetFromColumns(targetType, targetID)
	ex.Target = target
	ex.MalformedTarget = !ok
	ex.AddressID = address
	ex.CategoryIDs = categoryIDs
	if ex.CategoryIDs == nil {
		ex.CategoryIDs = []string{}
	}
	ex.CreatedAt = ex.CreatedAt.UTC()
	ex.UpdatedAt = ex.UpdatedAt.UTC()

	return &ex, nil
}

const summaryColumns = `
	e.id,
	e.kind,
	e.name,
	e.status,
	e.urgency,
	e.creator_id,
	e.target_type,
	e.target_id`

func scanSummary(row scanner) (entities.ExchangeSummary, error) {
	var (
		s                     entities.ExchangeSummary
		kind, status, urgency string
		targetType, targetID  *string
	)

	if err := row.Scan(&s.ID, &kind, &s.Name, &status, &urgency, &s.CreatorID, &targetType, &targetID); err != nil {
		return s, err
	}

	var err error
	if s.Kind, err = entities.ParseExchangeKind(kind); err != nil {
		return s, fmt.Errorf("exchange %s: %w", s.ID, err)
	}
	if s.Status, err = entities.ParseExchangeStatus(status); err != nil {
		return s, fmt.Errorf("exchange %s: %w", s.ID, err)
	}
	if s.Urgency, err = entities.ParseUrgency(urgency); err != nil {
		return s, fmt.Errorf("exchange %s: %w", s.ID, err)
	}
	s.Target, _ = entities.TargetFromColumns(targetType, targetID)

	return s, nil
}

const agreementColumns = `
	a.id,
	a.offer_id,
	a.request_id,
	a.status,
	a.terms,
	a.value,
	a.created_at,
	a.updated_at`

func scanAgreement(row scanner) (*entities.Agreement, error) {
	var (
		a      entities.Agreement
		status string
	)

	if err := row.Scan(&a.ID, &a.OfferID, &a.RequestID, &status, &a.Terms, &a.Value, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}

	var err error
	if a.Status, err = entities.ParseAgreementStatus(status); err != nil {
		return nil, fmt.Errorf("agreement %s: %w", a.ID, err)
	}
	a.CreatedAt = a.CreatedAt.UTC()
	a.UpdatedAt = a.UpdatedAt.UTC()

	return &a, nil
}

const notificationColumns = `
	n.id,
	n.recipient_id,
	n.event,
	n.offer_id,
	n.request_id,
	n.agreement_id,
	n.message,
	n.read_at,
	n.created_at`

func scanNotification(row scanner) (*entities.Notification, error) {
	var (
		n      entities.Notification
		event  string
		readAt *time.Time
	)

	if err := row.Scan(&n.ID, &n.RecipientID, &event, &n.OfferID, &n.RequestID, &n.AgreementID, &n.Message, &readAt, &n.CreatedAt); err != nil {
		return nil, err
	}

	var err error
	if n.Event, err = entities.ParseNotificationEvent(event); err != nil {
		return nil, fmt.Errorf("notification %s: %w", n.ID, err)
	}
	if readAt != nil {
		t := readAt.UTC()
		n.ReadAt = &t
	}
	n.CreatedAt = n.CreatedAt.UTC()

	return &n, nil
}
