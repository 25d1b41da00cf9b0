package match

import (
	"database/sql"
	"sync"
	"time"
)

// Status is the coarse match lifecycle.
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusLive      Status = "live"
	StatusFinished  Status = "finished"
)

// Stage is the competitive context of a match.
type Stage string

const (
	StageLeague Stage = "league"
	StageSemi   Stage = "semi"
	StageFinal  Stage = "final"
)

// Phase is the fine-grained clock state within a live match.
type Phase string

const (
	PhaseFirstHalf  Phase = "first_half"
	PhaseHalfTime   Phase = "half_time"
	PhaseSecondHalf Phase = "second_half"
	PhaseExtraTime  Phase = "extra_time"
	PhaseFullTime   Phase = "full_time"
)

// phaseRank orders phases for monotonicity checks.
var phaseRank = map[Phase]int{
	PhaseFirstHalf:  0,
	PhaseHalfTime:   1,
	PhaseSecondHalf: 2,
	PhaseExtraTime:  3,
	PhaseFullTime:   4,
}

// ValidPhase reports whether p is one of the enumerated clock phases.
func ValidPhase(p Phase) bool {
	_, ok := phaseRank[p]
	return ok
}

// Side identifies which team an event belongs to.
type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

// EventType classifies a timed match event.
type EventType string

const (
	EventGoal         EventType = "goal"
	EventYellowCard   EventType = "yellow_card"
	EventRedCard      EventType = "red_card"
	EventFoul         EventType = "foul"
	EventCorner       EventType = "corner"
	EventShot         EventType = "shot"
	EventSubstitution EventType = "substitution"
	EventInjury       EventType = "injury"
)

var validEventTypes = map[EventType]bool{
	EventGoal:         true,
	EventYellowCard:   true,
	EventRedCard:      true,
	EventFoul:         true,
	EventCorner:       true,
	EventShot:         true,
	EventSubstitution: true,
	EventInjury:       true,
}

// Event is one entry in a match's append-only ledger.
type Event struct {
	Minute      int       `json:"minute"`
	Type        EventType `json:"type"`
	Team        Side      `json:"team"`
	Player      string    `json:"player,omitempty"`
	Assist      string    `json:"assist,omitempty"`
	GoalType    string    `json:"goal_type,omitempty"`
	FieldSide   string    `json:"field_side,omitempty"`
	OnTarget    bool      `json:"on_target,omitempty"`
	Description string    `json:"description,omitempty"`
}

// Score is the cached projection of goal events per side.
type Score struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

// Match is the central entity: a fixture between two clubs, carrying the
// live-clock timing state while in play.
type Match struct {
	ID          string `json:"id"`
	Season      string `json:"season"`
	Competition string `json:"competition"`
	Stage       Stage  `json:"stage"`
	IsFinal     bool   `json:"is_final"`

	HomeClubID string     `json:"home_club_id,omitempty"`
	AwayClubID string     `json:"away_club_id,omitempty"`
	KickoffAt  *time.Time `json:"kickoff_at,omitempty"`
	Venue      string     `json:"venue,omitempty"`

	Status       Status `json:"status"`
	AutoSimulate bool   `json:"auto_simulate,omitempty"`

	// Timing state, meaningful while live or after.
	MatchStartedAt *time.Time `json:"match_started_at,omitempty"`
	CurrentMinute  int        `json:"current_minute"`
	Phase          Phase      `json:"match_phase,omitempty"`
	// TimeAcceleration is real seconds per simulated game-minute (1-300).
	TimeAcceleration int     `json:"time_acceleration"`
	StoppageTime     float64 `json:"stoppage_time_accumulated"`
	LastEventAt      *time.Time `json:"last_event_at,omitempty"`

	FirstHalfEndedAt    *time.Time `json:"first_half_ended_at,omitempty"`
	SecondHalfStartedAt *time.Time `json:"second_half_started_at,omitempty"`
	SecondHalfEndedAt   *time.Time `json:"second_half_ended_at,omitempty"`
	ExtraTimeEndedAt    *time.Time `json:"extra_time_ended_at,omitempty"`

	// Added time in game-minutes, assigned once at each half's natural end.
	AddedTimeFirst  int `json:"added_time_first,omitempty"`
	AddedTimeSecond int `json:"added_time_second,omitempty"`

	// Real-time break durations, captured from config when the match starts.
	HalfTimeBreak  time.Duration `json:"-"`
	ExtraTimeBreak time.Duration `json:"-"`

	Score  Score   `json:"score"`
	Events []Event `json:"events"`

	Report     *Report    `json:"report,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`

	// Revision guards concurrent read-modify-write cycles.
	Revision int64 `json:"revision"`
}

// IsScheduledComplete reports whether the match has everything it needs to
// kick off: both clubs, a kickoff time and a venue.
func (m *Match) IsScheduledComplete() bool {
	return m.HomeClubID != "" && m.AwayClubID != "" &&
		m.HomeClubID != m.AwayClubID &&
		m.KickoffAt != nil && m.Venue != ""
}

// IsHalfTime reports whether the clock sits in the half-time break.
func (m *Match) IsHalfTime() bool { return m.Phase == PhaseHalfTime }

// IsFullTime reports whether the clock has reached full time.
func (m *Match) IsFullTime() bool { return m.Phase == PhaseFullTime }

type store struct {
	db *sql.DB
	mu sync.RWMutex
}
