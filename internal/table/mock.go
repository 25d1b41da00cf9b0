package table

import (
	"sort"
	"sync"
)

// Mock is an in-memory TableStore for tests.
type Mock struct {
	mu    sync.RWMutex
	rows  map[string]Standing
	names map[string]string
}

func NewMock() *Mock {
	return &Mock{rows: make(map[string]Standing), names: make(map[string]string)}
}

// SetClubName registers the display name used for the final tie-break.
func (m *Mock) SetClubName(clubID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names[clubID] = name
}

func (m *Mock) GetStandings(season, competition string) ([]Standing, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var standings []Standing
	for _, st := range m.rows {
		if st.Season == season && st.Competition == competition {
			st.ClubName = m.names[st.ClubID]
			standings = append(standings, st)
		}
	}
	sort.Slice(standings, func(i, j int) bool {
		a, b := standings[i], standings[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return a.ClubName < b.ClubName
	})
	return standings, nil
}

func (m *Mock) Upsert(st Standing) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows[st.Season+"|"+st.Competition+"|"+st.ClubID] = st
	return nil
}

func (m *Mock) DeleteAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = make(map[string]Standing)
	return nil
}
