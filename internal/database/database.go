package database

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

// InitDB initializes the database and ensures the schema is up to date.
// For local-only databases, dbPath is the filename. For embedded replicas,
// dbPath is the local file and primaryUrl is the remote.
func InitDB(dbPath string, primaryUrl string, authToken string) (*sql.DB, error) {
	if primaryUrl == "" {
		log.Info("Initializing local-only SQLite database", "path", dbPath)
		db, err := sql.Open("libsql", "file:"+dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open local database: %w", err)
		}
		if err = createTables(db); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create tables for local db: %w", err)
		}
		return db, nil
	}
	log.Info("Initializing Turso database", "url", primaryUrl)
	db, err := sql.Open("libsql", primaryUrl+"?authToken="+authToken)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to open db %s: %s", primaryUrl, err)
		return nil, fmt.Errorf("failed to open db %s: %w", primaryUrl, err)
	}
	if err = createTables(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}
	return db, nil
}

func createTables(db *sql.DB) error {
	// Foreign key support is not enabled by default in SQLite
	_, err := db.Exec("PRAGMA foreign_keys = ON;")
	if err != nil {
		log.Error("Error enabling foreign keys:", "error", err)
		return err
	}

	createClubsTable := `
    CREATE TABLE IF NOT EXISTS clubs (
        id TEXT PRIMARY KEY,
        name TEXT NOT NULL UNIQUE,
        short_name TEXT,
        venue TEXT
    );`

	createMatchesTable := `
    CREATE TABLE IF NOT EXISTS matches (
        id TEXT PRIMARY KEY,
        season TEXT NOT NULL,
        competition TEXT NOT NULL,
        stage TEXT NOT NULL DEFAULT 'league',
        is_final INTEGER NOT NULL DEFAULT 0,
        home_club_id TEXT,
        away_club_id TEXT,
        kickoff_at INTEGER,
        venue TEXT,
        status TEXT NOT NULL DEFAULT 'scheduled',
        auto_simulate INTEGER NOT NULL DEFAULT 0,
        match_started_at INTEGER,
        current_minute INTEGER NOT NULL DEFAULT 0,
        match_phase TEXT,
        time_acceleration INTEGER NOT NULL DEFAULT 60,
        stoppage_time REAL NOT NULL DEFAULT 0,
        last_event_at INTEGER,
        first_half_ended_at INTEGER,
        second_half_started_at INTEGER,
        second_half_ended_at INTEGER,
        extra_time_ended_at INTEGER,
        added_time_first INTEGER NOT NULL DEFAULT 0,
        added_time_second INTEGER NOT NULL DEFAULT 0,
        half_time_break_secs INTEGER NOT NULL DEFAULT 60,
        extra_time_break_secs INTEGER NOT NULL DEFAULT 60,
        home_score INTEGER NOT NULL DEFAULT 0,
        away_score INTEGER NOT NULL DEFAULT 0,
        events_json TEXT,
        report_json TEXT,
        finished_at INTEGER,
        revision INTEGER NOT NULL DEFAULT 0,
        FOREIGN KEY (home_club_id) REFERENCES clubs(id),
        FOREIGN KEY (away_club_id) REFERENCES clubs(id)
    );`

	// Sparse uniqueness: matches without a kickoff time are exempt.
	createKickoffIndex := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_matches_kickoff_at
	ON matches(kickoff_at) WHERE kickoff_at IS NOT NULL;`

	createStandingsTable := `
	CREATE TABLE IF NOT EXISTS standings (
		season TEXT NOT NULL,
		competition TEXT NOT NULL,
		club_id TEXT NOT NULL,
		played INTEGER NOT NULL DEFAULT 0,
		won INTEGER NOT NULL DEFAULT 0,
		drawn INTEGER NOT NULL DEFAULT 0,
		lost INTEGER NOT NULL DEFAULT 0,
		goals_for INTEGER NOT NULL DEFAULT 0,
		goals_against INTEGER NOT NULL DEFAULT 0,
		goal_difference INTEGER NOT NULL DEFAULT 0,
		points INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (season, competition, club_id),
		FOREIGN KEY (club_id) REFERENCES clubs(id) ON DELETE CASCADE
	);`

	createLeagueConfigTable := `
	CREATE TABLE IF NOT EXISTS league_config (
		season TEXT PRIMARY KEY,
		start_date INTEGER NOT NULL,
		end_date INTEGER NOT NULL
	);`

	for _, stmt := range []string{
		createClubsTable,
		createMatchesTable,
		createKickoffIndex,
		createStandingsTable,
		createLeagueConfigTable,
	} {
		if _, err = db.Exec(stmt); err != nil {
			return err
		}
	}
	log.Info("Database initialized successfully")
	return nil
}
