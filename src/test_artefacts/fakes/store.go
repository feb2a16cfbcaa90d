package fakes

import (
	"context"
	"fmt"
	"iter"
	"sort"
	"sync"
	"time"

	"mutualexchange/src/domain"
	"mutualexchange/src/domain/entities"
)

// Store is an in-memory stand-in for every repository. It keeps the same
// guarantees the postgres schema gives: one accepted agreement per side,
// atomic transitions and one unread match notification per pair.
// Creator and category foreign keys are not enforced.
type Store struct {
	mu sync.Mutex

	people        map[string]entities.Person
	categories    map[string]entities.Category
	exchanges     map[string]*entities.Exchange
	agreements    map[string]*entities.Agreement
	links         []*entities.ResponseLink
	notifications []*entities.Notification

	// Falhas injetáveis
	FailMarkMatched      map[string]error
	FailResponseLink     error
	FailFindCounterparts error
	FailInsertNotify     error
	FailGetPeople        error
}

func NewStore() *Store {
	return &Store{
		people:          map[string]entities.Person{},
		categories:      map[string]entities.Category{},
		exchanges:       map[string]*entities.Exchange{},
		agreements:      map[string]*entities.Agreement{},
		FailMarkMatched: map[string]error{},
	}
}

func cloneExchange(ex *entities.Exchange) *entities.Exchange {
	c := *ex
	c.CategoryIDs = append([]string(nil), ex.CategoryIDs...)
	if ex.Target != nil {
		t := *ex.Target
		c.Target = &t
	}
	return &c
}

func cloneAgreement(a *entities.Agreement) *entities.Agreement {
	c := *a
	return &c
}

func cloneNotification(n *entities.Notification) *entities.Notification {
	c := *n
	return &c
}

// ############################################################
// ######################### EXCHANGES ########################
// ############################################################

func (s *Store) CreateExchange(ctx context.Context, ex *entities.Exchange) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exchanges[ex.ID]; ok {
		return fmt.Errorf("Store.CreateExchange - duplicate id %s", ex.ID)
	}
	s.exchanges[ex.ID] = cloneExchange(ex)
	return nil
}

// PutExchange grava a exchange como está, sem validação. Serve para montar
// estados que a API não deixaria criar.
func (s *Store) PutExchange(ex *entities.Exchange) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exchanges[ex.ID] = cloneExchange(ex)
}

func (s *Store) GetExchange(ctx context.Context, id string) (*entities.Exchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex, ok := s.exchanges[id]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return cloneExchange(ex), nil
}

func (s *Store) ListExchanges(ctx context.Context, filter entities.ExchangeFilter) ([]*entities.Exchange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*entities.Exchange, 0)
	for _, ex := range s.sortedExchanges() {
		if filter.Kind != "" && ex.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && ex.Status != filter.Status {
			continue
		}
		if filter.CreatorID != "" && ex.CreatorID != filter.CreatorID {
			continue
		}
		result = append(result, cloneExchange(ex))
	}
	if filter.Limit > 0 && len(result) > filter.Limit {
		result = result[:filter.Limit]
	}
	return result, nil
}

func (s *Store) MarkMatchedIfOpen(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailMarkMatched[id]; err != nil {
		return false, err
	}
	ex, ok := s.exchanges[id]
	if !ok || ex.Status != entities.StatusOpen {
		return false, nil
	}
	ex.Status = entities.StatusMatched
	ex.UpdatedAt = time.Now().UTC()
	return true, nil
}

func (s *Store) TagCategories(ctx context.Context, exchangeID string, categoryIDs []string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex, ok := s.exchanges[exchangeID]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	ex.CategoryIDs = entities.NormalizeCategoryIDs(append(ex.CategoryIDs, categoryIDs...))
	return append([]string(nil), ex.CategoryIDs...), nil
}

func (s *Store) UntagCategory(ctx context.Context, exchangeID string, categoryID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ex, ok := s.exchanges[exchangeID]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	if !ex.HasCategory(categoryID) {
		return append([]string(nil), ex.CategoryIDs...), nil
	}
	if len(ex.CategoryIDs) == 1 {
		return nil, domain.NewValidationError("category_ids", "an exchange must keep at least one category")
	}

	remaining := make([]string, 0, len(ex.CategoryIDs)-1)
	for _, id := range ex.CategoryIDs {
		if id != categoryID {
			remaining = append(remaining, id)
		}
	}
	ex.CategoryIDs = remaining
	return append([]string(nil), remaining...), nil
}

// FindCounterparts filtra em memória com as mesmas regras da query SQL.
func (s *Store) FindCounterparts(ctx context.Context, ex *entities.Exchange) iter.Seq2[entities.ExchangeSummary, error] {
	return func(yield func(entities.ExchangeSummary, error) bool) {
		s.mu.Lock()
		if s.FailFindCounterparts != nil {
			err := s.FailFindCounterparts
			s.mu.Unlock()
			yield(entities.ExchangeSummary{}, err)
			return
		}

		var found []entities.ExchangeSummary
		for _, c := range s.sortedExchanges() {
			if c.Kind != ex.Kind.Opposite() || c.Status != entities.StatusOpen {
				continue
			}
			if c.CreatorID == ex.CreatorID || c.MalformedTarget {
				continue
			}
			if !entities.SameTarget(c.Target, ex.Target) || !c.SharesCategory(ex) {
				continue
			}
			found = append(found, cloneExchange(c).Summary())
		}
		s.mu.Unlock()

		for _, summary := range found {
			if !yield(summary, nil) {
				return
			}
		}
	}
}

func (s *Store) sortedExchanges() []*entities.Exchange {
	list := make([]*entities.Exchange, 0, len(s.exchanges))
	for _, ex := range s.exchanges {
		list = append(list, ex)
	}
	sort.Slice(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list
}

// ############################################################
// ######################## AGREEMENTS ########################
// ############################################################

func (s *Store) CreateAgreement(ctx context.Context, a *entities.Agreement) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.exchanges[a.OfferID]; !ok {
		return domain.ErrEntityNotFound
	}
	if _, ok := s.exchanges[a.RequestID]; !ok {
		return domain.ErrEntityNotFound
	}
	for _, other := range s.agreements {
		if other.Status == entities.AgreementAccepted && (other.OfferID == a.OfferID || other.RequestID == a.RequestID) {
			return domain.NewStateError(domain.StateSideAlreadyBound, "").
				WithDetail(fmt.Sprintf("offer %s or request %s", a.OfferID, a.RequestID))
		}
	}
	s.agreements[a.ID] = cloneAgreement(a)
	return nil
}

func (s *Store) GetAgreement(ctx context.Context, id string) (*entities.Agreement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agreements[id]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	return cloneAgreement(a), nil
}

func (s *Store) ListAgreementsForExchange(ctx context.Context, exchangeID string) ([]*entities.Agreement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*entities.Agreement, 0)
	for _, a := range s.agreements {
		if a.OfferID == exchangeID || a.RequestID == exchangeID {
			result = append(result, cloneAgreement(a))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.Before(result[j].CreatedAt)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// TransitionAgreement aplica todos os passos sob o mesmo lock; um erro no meio
// não deixa nenhuma alteração.
func (s *Store) TransitionAgreement(ctx context.Context, id string, next entities.AgreementStatus) (*entities.AgreementTransition, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a, ok := s.agreements[id]
	if !ok {
		return nil, domain.ErrEntityNotFound
	}
	if err := a.CheckTransition(next); err != nil {
		return nil, err
	}

	offer, okOffer := s.exchanges[a.OfferID]
	request, okRequest := s.exchanges[a.RequestID]
	if !okOffer || !okRequest {
		return nil, domain.ErrEntityNotFound
	}
	if err := entities.CheckSidesOpen(a.ID, offer, request); err != nil {
		return nil, err
	}

	if next == entities.AgreementAccepted {
		for _, other := range s.agreements {
			if other.ID != a.ID && other.Status == entities.AgreementAccepted &&
				(other.OfferID == a.OfferID || other.RequestID == a.RequestID) {
				return nil, domain.NewStateError(domain.StateSideAlreadyBound, id)
			}
		}
	}

	now := time.Now().UTC()
	transition := &entities.AgreementTransition{
		Previous:      a.Status,
		OfferStatus:   offer.Status,
		RequestStatus: request.Status,
	}
	a.Status = next
	a.UpdatedAt = now

	if next == entities.AgreementAccepted {
		offer.Status, offer.UpdatedAt = entities.StatusClosed, now
		request.Status, request.UpdatedAt = entities.StatusClosed, now
		transition.OfferStatus = entities.StatusClosed
		transition.RequestStatus = entities.StatusClosed
	}

	transition.Agreement = cloneAgreement(a)
	return transition, nil
}

// ############################################################
// ###################### RESPONSE LINKS ######################
// ############################################################

func (s *Store) CreateResponseLink(ctx context.Context, link *entities.ResponseLink) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailResponseLink != nil {
		return s.FailResponseLink
	}
	if err := link.Validate(); err != nil {
		return err
	}
	if _, ok := s.exchanges[link.Source.ID]; !ok {
		return domain.ErrEntityNotFound
	}
	if _, ok := s.exchanges[link.Response.ID]; !ok {
		return domain.ErrEntityNotFound
	}
	c := *link
	s.links = append(s.links, &c)
	return nil
}

func (s *Store) ListResponseLinks(ctx context.Context, sourceID string) ([]*entities.ResponseLink, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*entities.ResponseLink, 0)
	for _, l := range s.links {
		if l.Source.ID == sourceID {
			c := *l
			result = append(result, &c)
		}
	}
	return result, nil
}

// ############################################################
// ###################### NOTIFICATIONS #######################
// ############################################################

func (s *Store) HasUnreadForPair(ctx context.Context, recipientID, offerID, requestID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.RecipientID == recipientID && n.Unread() && n.ReferencesPair(offerID, requestID) {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) InsertNotification(ctx context.Context, n *entities.Notification) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInsertNotify != nil {
		return false, s.FailInsertNotify
	}
	if n.Event == entities.EventMatchFound && n.Unread() {
		for _, other := range s.notifications {
			if other.Event == entities.EventMatchFound && other.Unread() &&
				other.RecipientID == n.RecipientID && other.ReferencesPair(n.OfferID, n.RequestID) {
				return false, nil
			}
		}
	}
	s.notifications = append(s.notifications, cloneNotification(n))
	return true, nil
}

func (s *Store) ListUnreadNotifications(ctx context.Context, recipientID string) ([]*entities.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*entities.Notification, 0)
	for _, n := range s.notifications {
		if n.RecipientID == recipientID && n.Unread() {
			result = append(result, cloneNotification(n))
		}
	}
	return result, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id string, at time.Time) (*entities.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.ID == id {
			if n.ReadAt == nil {
				readAt := at
				n.ReadAt = &readAt
			}
			return cloneNotification(n), nil
		}
	}
	return nil, domain.ErrEntityNotFound
}

// Notifications devolve tudo que foi gravado, lido ou não.
func (s *Store) Notifications() []*entities.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]*entities.Notification, 0, len(s.notifications))
	for _, n := range s.notifications {
		result = append(result, cloneNotification(n))
	}
	return result
}

// ############################################################
// ######################### DIRECTORY ########################
// ############################################################

func (s *Store) CreatePerson(ctx context.Context, p *entities.Person) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.people {
		if other.Email == p.Email {
			return domain.NewValidationError("email", "email already registered")
		}
	}
	s.people[p.ID] = *p
	return nil
}

func (s *Store) GetPeople(ctx context.Context, ids []string) (map[string]entities.Person, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailGetPeople != nil {
		return nil, s.FailGetPeople
	}
	result := make(map[string]entities.Person, len(ids))
	for _, id := range ids {
		if p, ok := s.people[id]; ok {
			result[id] = p
		}
	}
	return result, nil
}

func (s *Store) CreateCategory(ctx context.Context, c *entities.Category) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, other := range s.categories {
		if other.Name == c.Name {
			return domain.NewValidationError("name", "category "+c.Name+" already exists")
		}
	}
	s.categories[c.ID] = *c
	return nil
}

func (s *Store) ListCategories(ctx context.Context) ([]entities.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]entities.Category, 0, len(s.categories))
	for _, c := range s.categories {
		result = append(result, c)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result, nil
}
