package club

import (
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
)

// New creates a new ClubStore.
func New(db *sql.DB) ClubStore {
	return &store{
		db: db,
	}
}

func (s *store) UpsertClub(c Club) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		INSERT INTO clubs (id, name, short_name, venue)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			short_name = excluded.short_name,
			venue = excluded.venue;
	`, c.ID, c.Name, c.ShortName, c.Venue)
	if err != nil {
		return fmt.Errorf("failed to upsert club %s: %w", c.ID, err)
	}
	return nil
}

func (s *store) GetClub(id string) (*Club, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var c Club
	var shortName, venue sql.NullString
	err := s.db.QueryRow(`SELECT id, name, short_name, venue FROM clubs WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &shortName, &venue)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("club not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	c.ShortName = shortName.String
	c.Venue = venue.String
	return &c, nil
}

func (s *store) GetAllClubs() ([]Club, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT id, name, short_name, venue FROM clubs ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to query clubs: %w", err)
	}
	defer rows.Close()

	var clubs []Club
	for rows.Next() {
		var c Club
		var shortName, venue sql.NullString
		if err := rows.Scan(&c.ID, &c.Name, &shortName, &venue); err != nil {
			log.Error("Failed to scan club row", "error", err)
			continue
		}
		c.ShortName = shortName.String
		c.Venue = venue.String
		clubs = append(clubs, c)
	}
	return clubs, nil
}

func (s *store) IsKnownClub(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRow(`SELECT 1 FROM clubs WHERE id = ?`, id).Scan(&one)
	return err == nil
}
