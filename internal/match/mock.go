package match

import (
	"sort"
	"sync"
	"time"
)

// MockStore is an in-memory MatchStore for testing. It honors the same
// revision semantics as the real store and is safe for concurrent use.
type MockStore struct {
	mu      sync.Mutex
	matches map[string]*Match

	UpdateFunc func(m *Match) error
}

// NewMockStore creates a new mock match store.
func NewMockStore() *MockStore {
	return &MockStore{matches: make(map[string]*Match)}
}

func (s *MockStore) Create(m *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.KickoffAt != nil {
		for _, other := range s.matches {
			if other.ID != m.ID && other.KickoffAt != nil && other.KickoffAt.Equal(*m.KickoffAt) {
				return ErrKickoffTaken
			}
		}
	}
	m.Revision = 0
	cp := *m
	s.matches[m.ID] = &cp
	return nil
}

func (s *MockStore) Get(id string) (*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.matches[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *m
	cp.Events = append([]Event(nil), m.Events...)
	return &cp, nil
}

func (s *MockStore) List() ([]*Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Match, 0, len(s.matches))
	for _, m := range s.matches {
		cp := *m
		cp.Events = append([]Event(nil), m.Events...)
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].KickoffAt, out[j].KickoffAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.Before(*b)
		}
	})
	return out, nil
}

func (s *MockStore) ListByStage(stage Stage) ([]*Match, error) {
	all, _ := s.List()
	var out []*Match
	for _, m := range all {
		if m.Stage == stage {
			out = append(out, m)
		}
	}
	return out, nil
}

func (s *MockStore) Update(m *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.UpdateFunc != nil {
		return s.UpdateFunc(m)
	}
	stored, ok := s.matches[m.ID]
	if !ok {
		return ErrNotFound
	}
	if stored.Revision != m.Revision {
		return ErrRevisionConflict
	}
	m.Revision++
	cp := *m
	cp.Events = append([]Event(nil), m.Events...)
	s.matches[m.ID] = &cp
	return nil
}

func (s *MockStore) KickoffTaken(at time.Time, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.ID != excludeID && m.KickoffAt != nil && m.KickoffAt.Equal(at) {
			return true, nil
		}
	}
	return false, nil
}

func (s *MockStore) ClubBusyOn(clubID string, at time.Time, excludeID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.matches {
		if m.ID == excludeID || m.KickoffAt == nil {
			continue
		}
		if m.HomeClubID != clubID && m.AwayClubID != clubID {
			continue
		}
		y1, m1, d1 := m.KickoffAt.Date()
		y2, m2, d2 := at.Date()
		if y1 == y2 && m1 == m2 && d1 == d2 {
			return true, nil
		}
	}
	return false, nil
}

func (s *MockStore) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.matches = make(map[string]*Match)
	return nil
}
