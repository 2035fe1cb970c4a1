// Package mock provides a scripted retrieval index for tests.
package mock

import (
	"context"
	"sync"

	"github.com/poiesic/concierge/index"
)

// MockIndex is a test double for index.DenseIndex and index.LexicalIndex.
type MockIndex struct {
	// SearchFunc is called by Search if set. If nil, returns the first k Hits.
	SearchFunc func(ctx context.Context, query string, k int) ([]index.Hit, error)

	// Hits is the fixed corpus returned by the default behavior.
	Hits []index.Hit

	mu        sync.Mutex
	callCount int
	lastK     int
}

var (
	_ index.DenseIndex   = (*MockIndex)(nil)
	_ index.LexicalIndex = (*MockIndex)(nil)
)

// NewMockIndex creates a mock index returning hits.
func NewMockIndex(hits ...index.Hit) *MockIndex {
	return &MockIndex{Hits: hits}
}

// Search returns the injected result or the first k fixed hits.
func (m *MockIndex) Search(ctx context.Context, query string, k int) ([]index.Hit, error) {
	m.mu.Lock()
	m.callCount++
	m.lastK = k
	m.mu.Unlock()

	if m.SearchFunc != nil {
		return m.SearchFunc(ctx, query, k)
	}
	if k < len(m.Hits) {
		return m.Hits[:k], nil
	}
	return m.Hits, nil
}

// CallCount returns the number of Search calls.
func (m *MockIndex) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}

// LastK returns the k passed to the most recent Search.
func (m *MockIndex) LastK() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastK
}
