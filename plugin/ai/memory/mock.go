package memory

import (
	"context"
	"sync"

	"github.com/alterego-app/alterego/store"
)

// MockService is a mock implementation of Service for testing.
type MockService struct {
	mu sync.RWMutex

	// Results is returned verbatim from Search.
	Results []*store.Message

	// Calls records every (persona, query) pair searched.
	Calls []MockSearchCall
}

type MockSearchCall struct {
	Persona string
	Query   string
	Opts    *SearchOptions
}

var _ Service = (*MockService)(nil)

// NewMockService creates a MockService returning no results.
func NewMockService() *MockService {
	return &MockService{}
}

func (m *MockService) Search(_ context.Context, persona, query string, opts *SearchOptions) ([]*store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, MockSearchCall{Persona: persona, Query: query, Opts: opts})
	if m.Results == nil {
		return []*store.Message{}, nil
	}
	return m.Results, nil
}
