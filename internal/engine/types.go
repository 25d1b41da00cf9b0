package engine

import (
	"errors"
	"time"

	"github.com/rylis/touchline/internal/bus"
	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/config"
	"github.com/rylis/touchline/internal/match"
	"github.com/rylis/touchline/internal/metrics"
	"github.com/rylis/touchline/internal/notifier"
	"github.com/rylis/touchline/internal/table"
)

var (
	// ErrNotSchedulable is returned when a match is missing teams, kickoff
	// or venue. The message doubles as the user-facing hint.
	ErrNotSchedulable = errors.New("match is not fully scheduled; set both teams, a kickoff time and a venue first")
	// ErrAlreadyLive is returned when starting a match twice.
	ErrAlreadyLive = errors.New("match is already live")
	// ErrAlreadyFinished is returned when acting on a finished match.
	ErrAlreadyFinished = errors.New("match is already finished")
	// ErrNotLive is returned when a live-only operation hits a match that
	// has not kicked off.
	ErrNotLive = errors.New("match is not live")
	// ErrUnknownClub is returned when a referenced club does not exist.
	ErrUnknownClub = errors.New("unknown club")
	// ErrSameClubs is returned when a match is scheduled against itself.
	ErrSameClubs = errors.New("a club cannot play itself")
	// ErrSlotUnavailable is returned when no kickoff slot is free near the
	// requested instant.
	ErrSlotUnavailable = errors.New("no kickoff slot available near the requested time")
	// ErrInvalidAcceleration is returned for an acceleration outside 1-300.
	ErrInvalidAcceleration = errors.New("time acceleration must be between 1 and 300 seconds per minute")
	// ErrInvalidMinute is returned for a manual minute outside 0-120.
	ErrInvalidMinute = errors.New("minute must be between 0 and 120")
	// ErrInvalidPhase is returned for an unknown clock phase.
	ErrInvalidPhase = errors.New("invalid match phase")
)

// Engine drives matches through their lifecycle: scheduling, the live
// clock, the event ledger and the finish sequence that feeds the league
// table and knockout bracket.
type Engine struct {
	matches  match.MatchStore
	clubs    club.ClubStore
	table    *table.Engine
	bus      bus.Bus
	notifier notifier.Notifier
	metrics  metrics.Metrics

	league config.LeagueConfig
	clock  config.ClockConfig

	// now is swappable for tests.
	now func() time.Time
}

// New creates a new Engine.
func New(matches match.MatchStore, clubs club.ClubStore, tbl *table.Engine, b bus.Bus, n notifier.Notifier, m metrics.Metrics, league config.LeagueConfig, clock config.ClockConfig) *Engine {
	return &Engine{
		matches:  matches,
		clubs:    clubs,
		table:    tbl,
		bus:      b,
		notifier: n,
		metrics:  m,
		league:   league,
		clock:    clock,
		now:      time.Now,
	}
}

// ScheduleParams carry everything a fixture needs before kickoff.
type ScheduleParams struct {
	HomeClubID string     `json:"home_club_id"`
	AwayClubID string     `json:"away_club_id"`
	KickoffAt  *time.Time `json:"kickoff_at"`
	Venue      string     `json:"venue"`
	// AutoSimulate marks the fixture to be played out instantly when it
	// is started. Nil leaves the stored flag untouched.
	AutoSimulate *bool `json:"auto_simulate"`
}
