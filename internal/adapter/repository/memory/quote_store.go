package memory

import (
	"context"
	"sync"

	"github.com/agentpay/agentledger/internal/domain"
)

// QuoteStore keeps pending delivery quotes in process memory.
type QuoteStore struct {
	mu     sync.Mutex
	quotes map[string]*domain.DeliveryQuote
}

// NewQuoteStore creates an empty in-memory quote store.
func NewQuoteStore() *QuoteStore {
	return &QuoteStore{
		quotes: make(map[string]*domain.DeliveryQuote),
	}
}

// Put stores a pending quote keyed by id.
func (s *QuoteStore) Put(_ context.Context, quote *domain.DeliveryQuote) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes[quote.ID] = quote
	return nil
}

// Get returns the quote or domain.ErrQuoteNotFound.
func (s *QuoteStore) Get(_ context.Context, id string) (*domain.DeliveryQuote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	quote, ok := s.quotes[id]
	if !ok {
		return nil, domain.ErrQuoteNotFound
	}
	return quote, nil
}

// Delete removes a quote. Deleting an absent quote is a no-op.
func (s *QuoteStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.quotes, id)
	return nil
}
