package table

import (
	"database/sql"
	"sync"
	"time"
)

// Standing is one club's row in a league table, keyed by
// (season, competition, club).
type Standing struct {
	Season         string    `json:"season"`
	Competition    string    `json:"competition"`
	ClubID         string    `json:"club_id"`
	ClubName       string    `json:"club_name"`
	Played         int       `json:"played"`
	Won            int       `json:"won"`
	Drawn          int       `json:"drawn"`
	Lost           int       `json:"lost"`
	GoalsFor       int       `json:"goals_for"`
	GoalsAgainst   int       `json:"goals_against"`
	GoalDifference int       `json:"goal_difference"`
	Points         int       `json:"points"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type store struct {
	db *sql.DB
	mu sync.RWMutex
}
