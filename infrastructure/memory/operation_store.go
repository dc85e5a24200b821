// Package memory provides in-process implementations of application
// ports. Scan operations are short-lived and only polled by the UI, so
// an in-memory store with TTL cleanup is sufficient.
package memory

import (
	"context"
	"sync"
	"time"

	"mindgraph/application/ports"
	pkgerrors "mindgraph/pkg/errors"
)

// OperationStore provides an in-memory implementation of
// ports.OperationStore
type OperationStore struct {
	mu         sync.RWMutex
	operations map[string]storedOperation
	ttl        time.Duration
}

type storedOperation struct {
	result   *ports.OperationResult
	storedAt time.Time
}

// NewOperationStore creates a new in-memory operation store. Entries
// older than ttl are evicted by a background cleanup loop.
func NewOperationStore(ttl time.Duration) *OperationStore {
	if ttl <= 0 {
		ttl = time.Hour
	}
	store := &OperationStore{
		operations: make(map[string]storedOperation),
		ttl:        ttl,
	}

	go store.cleanupLoop()

	return store
}

// Store saves an operation result
func (s *OperationStore) Store(ctx context.Context, result *ports.OperationResult) error {
	if result == nil || result.OperationID == "" {
		return pkgerrors.NewValidation("invalid operation result")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.operations[result.OperationID] = storedOperation{result: result, storedAt: time.Now()}
	return nil
}

// Get retrieves an operation result by ID
func (s *OperationStore) Get(ctx context.Context, operationID string) (*ports.OperationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.operations[operationID]
	if !exists || time.Since(stored.storedAt) > s.ttl {
		return nil, pkgerrors.NewNotFound("operation not found: " + operationID)
	}

	return stored.result, nil
}

// Update replaces an existing operation result
func (s *OperationStore) Update(ctx context.Context, operationID string, result *ports.OperationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.operations[operationID]; !exists {
		return pkgerrors.NewNotFound("operation not found: " + operationID)
	}

	s.operations[operationID] = storedOperation{result: result, storedAt: time.Now()}
	return nil
}

func (s *OperationStore) cleanupLoop() {
	ticker := time.NewTicker(s.ttl)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		for id, stored := range s.operations {
			if time.Since(stored.storedAt) > s.ttl {
				delete(s.operations, id)
			}
		}
		s.mu.Unlock()
	}
}
