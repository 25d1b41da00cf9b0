package match

import (
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ClockOptions configure clock derivation.
type ClockOptions struct {
	// StoppageInDisplay folds accumulated stoppage credit into the displayed
	// minute, capped by the half's added time. Off by default.
	StoppageInDisplay bool
	// AddedTime supplies the added minutes stamped at each half's natural
	// end. Defaults to a random 1-4.
	AddedTime func() int
}

// Reading is a derived clock observation.
type Reading struct {
	Minute  int    `json:"minute"`
	Phase   Phase  `json:"phase"`
	Display string `json:"display"`
}

func defaultAddedTime() int {
	return rand.Intn(4) + 1
}

// gameMinutes converts real elapsed time into whole game-minutes at the
// given acceleration (real seconds per game-minute).
func gameMinutes(elapsed time.Duration, acceleration int) int {
	if acceleration < 1 {
		acceleration = 1
	}
	return int(elapsed.Seconds()) / acceleration
}

func gameDuration(minutes int, acceleration int) time.Duration {
	return time.Duration(minutes*acceleration) * time.Second
}

// Derive computes the current clock reading without mutating the match.
// This is the side-effect-free read path used by pollers.
func Derive(m Match, now time.Time, opts ClockOptions) Reading {
	r, _ := Advance(&m, now, opts)
	return r
}

// Advance derives the clock reading for m at now and applies any phase
// transitions the elapsed time implies: stamping transition timestamps
// exactly once, assigning added time at each half's natural end and keeping
// CurrentMinute monotonic. It reports whether m changed and must be
// persisted. Matches that are not live yield a zeroed reading.
func Advance(m *Match, now time.Time, opts ClockOptions) (Reading, bool) {
	if m.Status != StatusLive || m.MatchStartedAt == nil {
		return Reading{Minute: 0, Display: "0'"}, false
	}
	addedTime := opts.AddedTime
	if addedTime == nil {
		addedTime = defaultAddedTime
	}

	changed := false
	setPhase := func(p Phase) {
		if m.Phase != p {
			m.Phase = p
			changed = true
		}
	}
	stamp := func(field **time.Time, at time.Time) {
		if *field == nil {
			t := at
			*field = &t
			changed = true
		}
	}

	var reading Reading
	for done := false; !done; {
		switch m.Phase {
		case PhaseFirstHalf:
			elapsed := gameMinutes(now.Sub(*m.MatchStartedAt), m.TimeAcceleration)
			if elapsed >= 45 && m.AddedTimeFirst == 0 {
				m.AddedTimeFirst = addedTime()
				changed = true
			}
			bound := 45
			if opts.StoppageInDisplay {
				bound += minInt(int(math.Round(m.StoppageTime)), m.AddedTimeFirst)
			}
			if elapsed < bound {
				reading = Reading{Minute: minInt(elapsed, bound), Phase: PhaseFirstHalf}
				done = true
				break
			}
			stamp(&m.FirstHalfEndedAt, m.MatchStartedAt.Add(gameDuration(bound, m.TimeAcceleration)))
			setPhase(PhaseHalfTime)

		case PhaseHalfTime:
			if m.FirstHalfEndedAt == nil || now.Before(m.FirstHalfEndedAt.Add(m.HalfTimeBreak)) {
				reading = Reading{Minute: 45, Phase: PhaseHalfTime}
				done = true
				break
			}
			stamp(&m.SecondHalfStartedAt, m.FirstHalfEndedAt.Add(m.HalfTimeBreak))
			setPhase(PhaseSecondHalf)

		case PhaseSecondHalf:
			if m.SecondHalfStartedAt == nil {
				stamp(&m.SecondHalfStartedAt, now)
			}
			elapsed := gameMinutes(now.Sub(*m.SecondHalfStartedAt), m.TimeAcceleration)
			if elapsed >= 45 && m.AddedTimeSecond == 0 {
				m.AddedTimeSecond = addedTime()
				changed = true
			}
			bound := 45
			if opts.StoppageInDisplay {
				bound += minInt(int(math.Round(m.StoppageTime)), m.AddedTimeSecond)
			}
			if elapsed < bound {
				reading = Reading{Minute: 45 + minInt(elapsed, bound), Phase: PhaseSecondHalf}
				done = true
				break
			}
			stamp(&m.SecondHalfEndedAt, m.SecondHalfStartedAt.Add(gameDuration(bound, m.TimeAcceleration)))
			setPhase(PhaseExtraTime)

		case PhaseExtraTime:
			if m.SecondHalfEndedAt == nil || now.Before(m.SecondHalfEndedAt.Add(m.ExtraTimeBreak)) {
				reading = Reading{Minute: 90, Phase: PhaseExtraTime}
				done = true
				break
			}
			stamp(&m.ExtraTimeEndedAt, m.SecondHalfEndedAt.Add(m.ExtraTimeBreak))
			setPhase(PhaseFullTime)

		case PhaseFullTime:
			reading = Reading{Minute: 90, Phase: PhaseFullTime}
			done = true

		default:
			reading = Reading{Minute: m.CurrentMinute, Phase: m.Phase}
			done = true
		}
	}

	// CurrentMinute never moves backwards while live, and stays in [0,120].
	if reading.Minute > m.CurrentMinute {
		m.CurrentMinute = minInt(reading.Minute, 120)
		changed = true
	}
	reading.Minute = maxInt(reading.Minute, minInt(m.CurrentMinute, 120))
	reading.Display = displayFor(reading.Minute, reading.Phase)
	return reading, changed
}

// SetAcceleration changes the clock speed while preserving the elapsed
// game time of the current half, rebasing the half's anchor timestamp so
// derivation continues from the same minute at the new pace.
func (m *Match) SetAcceleration(accel int, now time.Time) {
	anchor := &m.MatchStartedAt
	if phaseRank[m.Phase] >= phaseRank[PhaseSecondHalf] && m.SecondHalfStartedAt != nil {
		anchor = &m.SecondHalfStartedAt
	}
	if *anchor != nil {
		elapsed := gameMinutes(now.Sub(**anchor), m.TimeAcceleration)
		t := now.Add(-gameDuration(elapsed, accel))
		*anchor = &t
	}
	m.TimeAcceleration = accel
}

// SetManualClock forces the clock to the given minute and phase, stamping
// any transition timestamps the jump implies. Stamps are idempotent, so
// jumping over an already-recorded transition leaves it untouched.
func (m *Match) SetManualClock(minute int, phase Phase, now time.Time) {
	stamp := func(field **time.Time) {
		if *field == nil {
			t := now
			*field = &t
		}
	}

	if phaseRank[phase] >= phaseRank[PhaseHalfTime] {
		stamp(&m.FirstHalfEndedAt)
	}
	if phaseRank[phase] >= phaseRank[PhaseSecondHalf] {
		stamp(&m.SecondHalfStartedAt)
	}
	if phaseRank[phase] >= phaseRank[PhaseExtraTime] {
		stamp(&m.SecondHalfEndedAt)
	}
	if phase == PhaseFullTime {
		stamp(&m.ExtraTimeEndedAt)
	}

	// Rebase the half anchor so derivation resumes from the forced minute.
	switch phase {
	case PhaseFirstHalf:
		t := now.Add(-gameDuration(minInt(minute, 45), m.TimeAcceleration))
		m.MatchStartedAt = &t
	case PhaseSecondHalf:
		t := now.Add(-gameDuration(maxInt(minute-45, 0), m.TimeAcceleration))
		m.SecondHalfStartedAt = &t
	}

	m.Phase = phase
	m.CurrentMinute = minInt(maxInt(minute, 0), 120)
}

func displayFor(minute int, phase Phase) string {
	switch phase {
	case PhaseHalfTime:
		return "HT"
	case PhaseFullTime:
		return "FT"
	case PhaseExtraTime:
		return "ET"
	}
	if minute > 90 {
		return fmt.Sprintf("90+%d'", minute-90)
	}
	if minute > 45 && phase == PhaseFirstHalf {
		return fmt.Sprintf("45+%d'", minute-45)
	}
	return fmt.Sprintf("%d'", minute)
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
