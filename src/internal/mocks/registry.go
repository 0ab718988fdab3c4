package mocks

import (
	"context"
	"sync"
)

// MockRegistry is a mock implementation of ripe.Registry.
//
// If FetchIPv4Func is nil, Entries is returned.
type MockRegistry struct {
	// FetchIPv4Func is called by FetchIPv4 if not nil
	FetchIPv4Func func(ctx context.Context, country string) ([]string, error)

	Entries []string

	mu        sync.Mutex
	countries []string
}

// FetchIPv4 records the requested country and returns the configured entries.
func (m *MockRegistry) FetchIPv4(ctx context.Context, country string) ([]string, error) {
	m.mu.Lock()
	m.countries = append(m.countries, country)
	m.mu.Unlock()

	if m.FetchIPv4Func != nil {
		return m.FetchIPv4Func(ctx, country)
	}
	return append([]string(nil), m.Entries...), nil
}

// Countries returns the countries requested so far.
func (m *MockRegistry) Countries() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.countries...)
}
