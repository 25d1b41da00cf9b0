package schedule

import (
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// SeasonWindow is the recorded scheduling window for one season, one
// row per season. Once a fixture set has been cut the window is fixed,
// regardless of later configuration drift.
type SeasonWindow struct {
	Season    string    `json:"season"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}

// SeasonStore persists the season scheduling windows.
type SeasonStore interface {
	// GetWindow returns the recorded window for a season, or nil when
	// none has been recorded yet.
	GetWindow(season string) (*SeasonWindow, error)
	SaveWindow(w SeasonWindow) error
}

type seasonStore struct {
	db *sql.DB
	mu sync.RWMutex
}

func NewSeasonStore(db *sql.DB) SeasonStore {
	return &seasonStore{db: db}
}

func (s *seasonStore) GetWindow(season string) (*SeasonWindow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT season, start_date, end_date FROM league_config WHERE season = ?;`

	var w SeasonWindow
	var start, end int64
	err := s.db.QueryRow(query, season).Scan(&w.Season, &start, &end)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query season window: %w", err)
	}
	w.StartDate = time.Unix(start, 0).UTC()
	w.EndDate = time.Unix(end, 0).UTC()
	return &w, nil
}

func (s *seasonStore) SaveWindow(w SeasonWindow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	INSERT INTO league_config (season, start_date, end_date)
	VALUES (?, ?, ?)
	ON CONFLICT(season) DO UPDATE SET
		start_date = excluded.start_date,
		end_date = excluded.end_date;`

	_, err := s.db.Exec(query, w.Season, w.StartDate.Unix(), w.EndDate.Unix())
	if err != nil {
		return fmt.Errorf("failed to save season window: %w", err)
	}
	return nil
}
