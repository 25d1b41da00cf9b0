package match

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// New creates a new MatchStore backed by SQLite/libsql.
func New(db *sql.DB) MatchStore {
	return &store{
		db: db,
	}
}

const matchColumns = `id, season, competition, stage, is_final, home_club_id, away_club_id,
	kickoff_at, venue, status, auto_simulate, match_started_at, current_minute, match_phase,
	time_acceleration, stoppage_time, last_event_at, first_half_ended_at, second_half_started_at,
	second_half_ended_at, extra_time_ended_at, added_time_first, added_time_second,
	half_time_break_secs, extra_time_break_secs, home_score, away_score, events_json,
	report_json, finished_at, revision`

func (s *store) Create(m *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	eventsJSON, reportJSON, err := marshalBlobs(m)
	if err != nil {
		return err
	}

	m.Revision = 0
	_, err = s.db.Exec(`
		INSERT INTO matches (`+matchColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`,
		m.ID, m.Season, m.Competition, m.Stage, m.IsFinal, nullStr(m.HomeClubID), nullStr(m.AwayClubID),
		nullTime(m.KickoffAt), m.Venue, m.Status, m.AutoSimulate, nullTime(m.MatchStartedAt), m.CurrentMinute, string(m.Phase),
		m.TimeAcceleration, m.StoppageTime, nullTime(m.LastEventAt), nullTime(m.FirstHalfEndedAt), nullTime(m.SecondHalfStartedAt),
		nullTime(m.SecondHalfEndedAt), nullTime(m.ExtraTimeEndedAt), m.AddedTimeFirst, m.AddedTimeSecond,
		int(m.HalfTimeBreak.Seconds()), int(m.ExtraTimeBreak.Seconds()), m.Score.Home, m.Score.Away, eventsJSON,
		reportJSON, nullTime(m.FinishedAt), m.Revision,
	)
	if err != nil {
		if isKickoffConflict(err) {
			return ErrKickoffTaken
		}
		return fmt.Errorf("failed to create match %s: %w", m.ID, err)
	}
	return nil
}

func (s *store) Get(id string) (*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRow(`SELECT `+matchColumns+` FROM matches WHERE id = ?`, id)
	m, err := scanMatch(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

func (s *store) List() ([]*Match, error) {
	return s.query(`SELECT ` + matchColumns + ` FROM matches ORDER BY kickoff_at IS NULL, kickoff_at ASC`)
}

func (s *store) ListByStage(stage Stage) ([]*Match, error) {
	return s.query(`SELECT `+matchColumns+` FROM matches WHERE stage = ? ORDER BY kickoff_at IS NULL, kickoff_at ASC`, stage)
}

func (s *store) query(q string, args ...any) ([]*Match, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []*Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			log.Error("Failed to scan match row", "error", err)
			continue
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

// Update writes the match back at revision m.Revision and bumps it. A lost
// race surfaces as ErrRevisionConflict.
func (s *store) Update(m *Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	eventsJSON, reportJSON, err := marshalBlobs(m)
	if err != nil {
		return err
	}

	res, err := s.db.Exec(`
		UPDATE matches SET
			stage = ?, is_final = ?, home_club_id = ?, away_club_id = ?, kickoff_at = ?, venue = ?,
			status = ?, auto_simulate = ?, match_started_at = ?, current_minute = ?, match_phase = ?,
			time_acceleration = ?, stoppage_time = ?, last_event_at = ?, first_half_ended_at = ?,
			second_half_started_at = ?, second_half_ended_at = ?, extra_time_ended_at = ?,
			added_time_first = ?, added_time_second = ?, half_time_break_secs = ?, extra_time_break_secs = ?,
			home_score = ?, away_score = ?, events_json = ?, report_json = ?, finished_at = ?,
			revision = revision + 1
		WHERE id = ? AND revision = ?;
	`,
		m.Stage, m.IsFinal, nullStr(m.HomeClubID), nullStr(m.AwayClubID), nullTime(m.KickoffAt), m.Venue,
		m.Status, m.AutoSimulate, nullTime(m.MatchStartedAt), m.CurrentMinute, string(m.Phase),
		m.TimeAcceleration, m.StoppageTime, nullTime(m.LastEventAt), nullTime(m.FirstHalfEndedAt),
		nullTime(m.SecondHalfStartedAt), nullTime(m.SecondHalfEndedAt), nullTime(m.ExtraTimeEndedAt),
		m.AddedTimeFirst, m.AddedTimeSecond, int(m.HalfTimeBreak.Seconds()), int(m.ExtraTimeBreak.Seconds()),
		m.Score.Home, m.Score.Away, eventsJSON, reportJSON, nullTime(m.FinishedAt),
		m.ID, m.Revision,
	)
	if err != nil {
		if isKickoffConflict(err) {
			return ErrKickoffTaken
		}
		return fmt.Errorf("failed to update match %s: %w", m.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		var one int
		if scanErr := s.db.QueryRow(`SELECT 1 FROM matches WHERE id = ?`, m.ID).Scan(&one); scanErr == sql.ErrNoRows {
			return ErrNotFound
		}
		return ErrRevisionConflict
	}
	m.Revision++
	return nil
}

func (s *store) KickoffTaken(at time.Time, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var one int
	err := s.db.QueryRow(`SELECT 1 FROM matches WHERE kickoff_at = ? AND id != ?`, at.Unix(), excludeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check kickoff slot: %w", err)
	}
	return true, nil
}

func (s *store) ClubBusyOn(clubID string, at time.Time, excludeID string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	dayStart := time.Date(at.Year(), at.Month(), at.Day(), 0, 0, 0, 0, at.Location())
	dayEnd := dayStart.AddDate(0, 0, 1)

	var one int
	err := s.db.QueryRow(`
		SELECT 1 FROM matches
		WHERE kickoff_at >= ? AND kickoff_at < ?
		  AND (home_club_id = ? OR away_club_id = ?)
		  AND id != ?
	`, dayStart.Unix(), dayEnd.Unix(), clubID, clubID, excludeID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check club calendar: %w", err)
	}
	return true, nil
}

func (s *store) DeleteAll() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`DELETE FROM matches`)
	if err != nil {
		return fmt.Errorf("failed to delete matches: %w", err)
	}
	return nil
}

func marshalBlobs(m *Match) (string, sql.NullString, error) {
	events := m.Events
	if events == nil {
		events = []Event{}
	}
	eventsJSON, err := json.Marshal(events)
	if err != nil {
		return "", sql.NullString{}, fmt.Errorf("failed to marshal events: %w", err)
	}
	var reportJSON sql.NullString
	if m.Report != nil {
		b, err := json.Marshal(m.Report)
		if err != nil {
			return "", sql.NullString{}, fmt.Errorf("failed to marshal report: %w", err)
		}
		reportJSON = sql.NullString{String: string(b), Valid: true}
	}
	return string(eventsJSON), reportJSON, nil
}

// scanMatch is a helper to scan a single match row.
func scanMatch(scanner interface{ Scan(...any) error }) (*Match, error) {
	var m Match
	var homeClub, awayClub, phase, eventsJSON, reportJSON sql.NullString
	var kickoff, startedAt, lastEvent, firstEnd, secondStart, secondEnd, extraEnd, finishedAt sql.NullInt64
	var halfBreakSecs, extraBreakSecs int

	err := scanner.Scan(
		&m.ID, &m.Season, &m.Competition, &m.Stage, &m.IsFinal, &homeClub, &awayClub,
		&kickoff, &m.Venue, &m.Status, &m.AutoSimulate, &startedAt, &m.CurrentMinute, &phase,
		&m.TimeAcceleration, &m.StoppageTime, &lastEvent, &firstEnd, &secondStart,
		&secondEnd, &extraEnd, &m.AddedTimeFirst, &m.AddedTimeSecond,
		&halfBreakSecs, &extraBreakSecs, &m.Score.Home, &m.Score.Away, &eventsJSON,
		&reportJSON, &finishedAt, &m.Revision,
	)
	if err != nil {
		return nil, err
	}

	m.HomeClubID = homeClub.String
	m.AwayClubID = awayClub.String
	m.Phase = Phase(phase.String)
	m.KickoffAt = timePtr(kickoff)
	m.MatchStartedAt = timePtr(startedAt)
	m.LastEventAt = timePtr(lastEvent)
	m.FirstHalfEndedAt = timePtr(firstEnd)
	m.SecondHalfStartedAt = timePtr(secondStart)
	m.SecondHalfEndedAt = timePtr(secondEnd)
	m.ExtraTimeEndedAt = timePtr(extraEnd)
	m.FinishedAt = timePtr(finishedAt)
	m.HalfTimeBreak = time.Duration(halfBreakSecs) * time.Second
	m.ExtraTimeBreak = time.Duration(extraBreakSecs) * time.Second

	m.Events = []Event{}
	if eventsJSON.Valid && eventsJSON.String != "" {
		if err := json.Unmarshal([]byte(eventsJSON.String), &m.Events); err != nil {
			log.Error("Failed to unmarshal events_json", "error", err, "matchID", m.ID)
		}
	}
	if reportJSON.Valid && reportJSON.String != "" {
		var r Report
		if err := json.Unmarshal([]byte(reportJSON.String), &r); err != nil {
			log.Error("Failed to unmarshal report_json", "error", err, "matchID", m.ID)
		} else {
			m.Report = &r
		}
	}
	return &m, nil
}

func nullStr(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.Unix(), Valid: true}
}

func timePtr(v sql.NullInt64) *time.Time {
	if !v.Valid {
		return nil
	}
	t := time.Unix(v.Int64, 0)
	return &t
}

func isKickoffConflict(err error) bool {
	return err != nil && strings.Contains(err.Error(), "kickoff_at")
}
