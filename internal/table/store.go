package table

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
)

func NewStore(db *sql.DB) TableStore {
	return &store{db: db}
}

func (s *store) GetStandings(season, competition string) ([]Standing, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
	SELECT s.season, s.competition, s.club_id, COALESCE(c.name, ''),
	       s.played, s.won, s.drawn, s.lost,
	       s.goals_for, s.goals_against, s.goal_difference, s.points,
	       s.updated_at
	FROM standings s
	LEFT JOIN clubs c ON c.id = s.club_id
	WHERE s.season = ? AND s.competition = ?
	ORDER BY s.points DESC, s.goal_difference DESC, s.goals_for DESC, c.name ASC;`

	rows, err := s.db.Query(query, season, competition)
	if err != nil {
		return nil, fmt.Errorf("failed to query standings: %w", err)
	}
	defer rows.Close()

	var standings []Standing
	for rows.Next() {
		var st Standing
		var updated int64
		if err := rows.Scan(
			&st.Season, &st.Competition, &st.ClubID, &st.ClubName,
			&st.Played, &st.Won, &st.Drawn, &st.Lost,
			&st.GoalsFor, &st.GoalsAgainst, &st.GoalDifference, &st.Points,
			&updated,
		); err != nil {
			return nil, fmt.Errorf("failed to scan standing: %w", err)
		}
		st.UpdatedAt = time.Unix(updated, 0).UTC()
		standings = append(standings, st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating standings: %w", err)
	}
	return standings, nil
}

func (s *store) Upsert(st Standing) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
	INSERT INTO standings (
		season, competition, club_id,
		played, won, drawn, lost,
		goals_for, goals_against, goal_difference, points, updated_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(season, competition, club_id) DO UPDATE SET
		played = excluded.played,
		won = excluded.won,
		drawn = excluded.drawn,
		lost = excluded.lost,
		goals_for = excluded.goals_for,
		goals_against = excluded.goals_against,
		goal_difference = excluded.goal_difference,
		points = excluded.points,
		updated_at = excluded.updated_at;`

	_, err := s.db.Exec(query,
		st.Season, st.Competition, st.ClubID,
		st.Played, st.Won, st.Drawn, st.Lost,
		st.GoalsFor, st.GoalsAgainst, st.GoalDifference, st.Points,
		st.UpdatedAt.Unix(),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert standing for %s: %w", st.ClubID, err)
	}
	log.Debug("Upserted standing", "club", st.ClubID, "points", st.Points)
	return nil
}

func (s *store) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.db.Exec(`DELETE FROM standings;`); err != nil {
		return fmt.Errorf("failed to clear standings: %w", err)
	}
	return nil
}
