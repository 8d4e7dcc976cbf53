// Package store persists authorisations and business objects. The in-memory
// flavour backs unit tests and local development; PostgreSQL is the
// production store. Both enforce the same two rules: at most one non-terminal
// authorisation per business object, and status transitions only through
// compare-and-set.
package store

import (
	"context"
	"sync"
	"time"

	"xs2gate/internal/authorization/models"
	cmsmodels "xs2gate/internal/cms/models"
	"xs2gate/pkg/domain"
	dErrors "xs2gate/pkg/domain-errors"
)

// InMemoryStore holds authorisations and business objects behind one mutex.
type InMemoryStore struct {
	mu             sync.RWMutex
	authorisations map[domain.AuthorisationID]*models.Authorisation
	objects        map[domain.BusinessObjectID]*cmsmodels.BusinessObject
	byObject       map[domain.BusinessObjectID][]domain.AuthorisationID
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{
		authorisations: make(map[domain.AuthorisationID]*models.Authorisation),
		objects:        make(map[domain.BusinessObjectID]*cmsmodels.BusinessObject),
		byObject:       make(map[domain.BusinessObjectID][]domain.AuthorisationID),
	}
}

// Create stores a new authorisation, rejecting it when the business object
// already has one in a non-terminal status.
func (s *InMemoryStore) Create(_ context.Context, auth *models.Authorisation) error {
	if auth == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "authorisation is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.authorisations[auth.ID]; exists {
		return dErrors.New(dErrors.CodeConflict, "authorisation "+auth.ID.String()+" already exists")
	}
	for _, id := range s.byObject[auth.BusinessObjectID] {
		if existing := s.authorisations[id]; existing != nil && !existing.Status.IsTerminal() {
			return dErrors.New(dErrors.CodeConflict,
				"business object "+auth.BusinessObjectID.String()+" already has an active authorisation")
		}
	}

	now := time.Now().UTC()
	stored := cloneAuthorisation(auth)
	stored.CreatedAt = now
	stored.UpdatedAt = now
	s.authorisations[stored.ID] = stored
	s.byObject[stored.BusinessObjectID] = append(s.byObject[stored.BusinessObjectID], stored.ID)

	auth.CreatedAt = stored.CreatedAt
	auth.UpdatedAt = stored.UpdatedAt
	return nil
}

func (s *InMemoryStore) FindByID(_ context.Context, id domain.AuthorisationID) (*models.Authorisation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.authorisations[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "authorisation "+id.String()+" not found")
	}
	return cloneAuthorisation(stored), nil
}

// CompareAndSetStatus applies the whole mutated record only when the
// persisted status still equals expected.
func (s *InMemoryStore) CompareAndSetStatus(_ context.Context, auth *models.Authorisation, expected domain.ScaStatus) error {
	if auth == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "authorisation is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.authorisations[auth.ID]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "authorisation "+auth.ID.String()+" not found")
	}
	if stored.Status != expected {
		return dErrors.New(dErrors.CodeConflict,
			"authorisation "+auth.ID.String()+" moved from "+expected.String()+" to "+stored.Status.String())
	}

	updated := cloneAuthorisation(auth)
	updated.CreatedAt = stored.CreatedAt
	updated.UpdatedAt = time.Now().UTC()
	s.authorisations[auth.ID] = updated

	auth.UpdatedAt = updated.UpdatedAt
	return nil
}

// PutBusinessObject seeds or replaces a business object. Used by wiring code
// and tests; TPP-facing creation of consents and payments lives outside this
// core.
func (s *InMemoryStore) PutBusinessObject(_ context.Context, obj *cmsmodels.BusinessObject) error {
	if obj == nil {
		return dErrors.New(dErrors.CodeInvalidInput, "business object is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *obj
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	stored.UpdatedAt = time.Now().UTC()
	s.objects[obj.ID] = &stored
	return nil
}

// BusinessObjects returns a view of the store implementing only the
// business-object interface, so wiring stays explicit about which role each
// dependency plays.
func (s *InMemoryStore) BusinessObjects() *InMemoryBusinessObjects {
	return &InMemoryBusinessObjects{store: s}
}

func (s *InMemoryStore) findObject(id domain.BusinessObjectID) (*cmsmodels.BusinessObject, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.objects[id]
	if !ok {
		return nil, dErrors.New(dErrors.CodeNotFound, "business object "+id.String()+" not found")
	}
	out := *stored
	return &out, nil
}

func (s *InMemoryStore) updateObjectStatus(id domain.BusinessObjectID, status cmsmodels.Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, ok := s.objects[id]
	if !ok {
		return dErrors.New(dErrors.CodeNotFound, "business object "+id.String()+" not found")
	}
	stored.Status = status
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

// InMemoryBusinessObjects adapts InMemoryStore to the business-object port.
type InMemoryBusinessObjects struct {
	store *InMemoryStore
}

func (b *InMemoryBusinessObjects) FindByID(_ context.Context, id domain.BusinessObjectID) (*cmsmodels.BusinessObject, error) {
	return b.store.findObject(id)
}

func (b *InMemoryBusinessObjects) UpdateStatus(_ context.Context, id domain.BusinessObjectID, status cmsmodels.Status) error {
	return b.store.updateObjectStatus(id, status)
}

func cloneAuthorisation(in *models.Authorisation) *models.Authorisation {
	out := *in
	if in.AvailableScaMethods != nil {
		out.AvailableScaMethods = make([]domain.AuthenticationObject, len(in.AvailableScaMethods))
		copy(out.AvailableScaMethods, in.AvailableScaMethods)
	}
	if in.ChosenScaMethod != nil {
		chosen := *in.ChosenScaMethod
		out.ChosenScaMethod = &chosen
	}
	if in.ErrorInfo != nil {
		info := *in.ErrorInfo
		if in.ErrorInfo.Texts != nil {
			info.Texts = make([]string, len(in.ErrorInfo.Texts))
			copy(info.Texts, in.ErrorInfo.Texts)
		}
		out.ErrorInfo = &info
	}
	return &out
}
