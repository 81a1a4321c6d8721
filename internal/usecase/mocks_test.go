package usecase_test

import (
	"context"
	"sync"
)

// MockStore is an in-memory StrategyStore.
type MockStore struct {
	mu        sync.Mutex
	Data      []byte
	LoadErr   error
	SaveErr   error
	SaveCalls int
}

func (m *MockStore) Load(ctx context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return nil, m.LoadErr
	}
	return m.Data, nil
}

func (m *MockStore) Save(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.SaveCalls++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Data = append([]byte(nil), data...)
	return nil
}
