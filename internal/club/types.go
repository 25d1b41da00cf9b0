package club

import (
	"database/sql"
	"sync"
)

// Club is a competing side in the league.
type Club struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"short_name,omitempty"`
	Venue     string `json:"venue,omitempty"`
}

type store struct {
	db *sql.DB
	mu sync.RWMutex
}
