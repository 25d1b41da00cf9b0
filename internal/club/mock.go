package club

import (
	"fmt"
	"sort"
	"sync"
)

// Mock is an in-memory ClubStore for testing. It is safe for concurrent use.
type Mock struct {
	mu    sync.Mutex
	clubs map[string]Club

	UpsertClubFunc func(c Club) error
}

// NewMock creates a new mock ClubStore.
func NewMock() *Mock {
	return &Mock{clubs: make(map[string]Club)}
}

func (m *Mock) UpsertClub(c Club) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpsertClubFunc != nil {
		return m.UpsertClubFunc(c)
	}
	m.clubs[c.ID] = c
	return nil
}

func (m *Mock) GetClub(id string) (*Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.clubs[id]
	if !ok {
		return nil, fmt.Errorf("club not found: %s", id)
	}
	return &c, nil
}

func (m *Mock) GetAllClubs() ([]Club, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	clubs := make([]Club, 0, len(m.clubs))
	for _, c := range m.clubs {
		clubs = append(clubs, c)
	}
	sort.Slice(clubs, func(i, j int) bool { return clubs[i].Name < clubs[j].Name })
	return clubs, nil
}

func (m *Mock) IsKnownClub(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.clubs[id]
	return ok
}
