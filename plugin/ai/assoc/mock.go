package assoc

import (
	"context"
	"sync"

	"github.com/alterego-app/alterego/store"
)

// MockStore is an in-memory AssociationStore for testing.
type MockStore struct {
	mu           sync.Mutex
	nextID       int32
	associations []*store.Association
	Err          error
}

var _ AssociationStore = (*MockStore)(nil)

// NewMockStore creates an empty MockStore.
func NewMockStore() *MockStore {
	return &MockStore{nextID: 1}
}

func (s *MockStore) UpsertAssociation(_ context.Context, upsert *store.Association) (*store.Association, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	for _, a := range s.associations {
		if a.Persona == upsert.Persona && a.Left == upsert.Left && a.Right == upsert.Right {
			a.Strength = upsert.Strength
			a.Exposures = upsert.Exposures
			a.LastUsedTs = upsert.LastUsedTs
			a.LastReinforcedTs = upsert.LastReinforcedTs
			upsert.ID = a.ID
			return a, nil
		}
	}
	upsert.ID = s.nextID
	s.nextID++
	clone := *upsert
	s.associations = append(s.associations, &clone)
	return &clone, nil
}

func (s *MockStore) ListAssociations(_ context.Context, find *store.FindAssociation) ([]*store.Association, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	list := []*store.Association{}
	for _, a := range s.associations {
		if find.Persona != nil && a.Persona != *find.Persona {
			continue
		}
		clone := *a
		list = append(list, &clone)
	}
	return list, nil
}

func (s *MockStore) DeleteAssociation(_ context.Context, del *store.DeleteAssociation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	kept := s.associations[:0]
	for _, a := range s.associations {
		if del.Persona != nil && a.Persona == *del.Persona {
			continue
		}
		if del.ID != nil && a.ID == *del.ID {
			continue
		}
		kept = append(kept, a)
	}
	s.associations = kept
	return nil
}
