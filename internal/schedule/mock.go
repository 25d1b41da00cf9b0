package schedule

import "sync"

// MockSeasonStore is an in-memory SeasonStore for tests.
type MockSeasonStore struct {
	mu      sync.RWMutex
	windows map[string]SeasonWindow
	Err     error
}

func NewMockSeasonStore() *MockSeasonStore {
	return &MockSeasonStore{windows: make(map[string]SeasonWindow)}
}

func (m *MockSeasonStore) GetWindow(season string) (*SeasonWindow, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.Err != nil {
		return nil, m.Err
	}
	w, ok := m.windows[season]
	if !ok {
		return nil, nil
	}
	return &w, nil
}

func (m *MockSeasonStore) SaveWindow(w SeasonWindow) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.windows[w.Season] = w
	return nil
}
