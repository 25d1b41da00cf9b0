package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rylis/touchline/internal/bus"
	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/config"
	"github.com/rylis/touchline/internal/match"
	"github.com/rylis/touchline/internal/metrics"
	"github.com/rylis/touchline/internal/notifier"
	"github.com/rylis/touchline/internal/table"
)

type fixture struct {
	engine   *Engine
	matches  *match.MockStore
	clubs    *club.Mock
	bus      *bus.Mock
	notifier *notifier.Mock
	metrics  *metrics.Mock
	table    *table.Mock
	now      time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		matches:  match.NewMockStore(),
		clubs:    club.NewMock(),
		bus:      bus.NewMock(),
		notifier: notifier.NewMock(),
		metrics:  metrics.NewMock(),
		table:    table.NewMock(),
		now:      time.Date(2026, 5, 9, 14, 0, 0, 0, time.UTC),
	}

	for _, c := range []club.Club{
		{ID: "c1", Name: "Rovers", Venue: "Rovers Park"},
		{ID: "c2", Name: "Athletic", Venue: "Athletic Ground"},
		{ID: "c3", Name: "United", Venue: "Union Field"},
		{ID: "c4", Name: "Wanderers", Venue: "The Meadow"},
	} {
		require.NoError(t, f.clubs.UpsertClub(c))
	}

	league := config.LeagueConfig{Season: "2026", Competition: "Premier Division", KickoffHour: 14}
	clock := config.ClockConfig{DefaultAcceleration: 1, HalfTimeBreak: time.Minute, ExtraTimeBreak: time.Minute}
	tbl := table.NewEngine(f.table, f.matches, f.clubs, f.bus, league.KickoffHour)
	f.engine = New(f.matches, f.clubs, tbl, f.bus, f.notifier, f.metrics, league, clock)
	f.engine.now = func() time.Time { return f.now }
	return f
}

func (f *fixture) scheduledMatch(t *testing.T, id string) *match.Match {
	t.Helper()

	kickoff := f.now
	m := &match.Match{
		ID: id, Season: "2026", Competition: "Premier Division",
		Stage: match.StageLeague, HomeClubID: "c1", AwayClubID: "c2",
		KickoffAt: &kickoff, Venue: "Rovers Park",
		Status: match.StatusScheduled,
	}
	require.NoError(t, f.matches.Create(m))
	return m
}

func TestStartMatch(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")

	m, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)

	assert.Equal(t, match.StatusLive, m.Status)
	assert.Equal(t, match.PhaseFirstHalf, m.Phase)
	require.NotNil(t, m.MatchStartedAt)
	assert.Equal(t, 1, m.TimeAcceleration)
	assert.Equal(t, 1, f.metrics.MatchesStarted())
	assert.Contains(t, f.bus.TypesSeen(), bus.EventMatchStarted)
	assert.Len(t, f.notifier.KickoffCalls, 1)
}

func TestStartMatchIncompleteSchedule(t *testing.T) {
	f := newFixture(t)
	m := &match.Match{ID: "m1", Season: "2026", Competition: "Premier Division",
		Stage: match.StageLeague, HomeClubID: "c1", Status: match.StatusScheduled}
	require.NoError(t, f.matches.Create(m))

	_, err := f.engine.StartMatch("m1", false)
	assert.ErrorIs(t, err, ErrNotSchedulable)

	// Nothing announced, nothing counted.
	assert.Equal(t, 0, f.metrics.MatchesStarted())
	assert.Empty(t, f.notifier.KickoffCalls)
}

func TestStartMatchTwice(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")

	_, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)
	_, err = f.engine.StartMatch("m1", false)
	assert.ErrorIs(t, err, ErrAlreadyLive)
}

func TestRecordEventProjectsScore(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")
	_, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)

	m, err := f.engine.RecordEvent("m1", match.Event{Type: match.EventGoal, Team: match.SideHome, Player: "Dalgaard"}, false)
	require.NoError(t, err)
	assert.Equal(t, match.Score{Home: 1, Away: 0}, m.Score)

	m, err = f.engine.RecordEvent("m1", match.Event{Type: match.EventGoal, Team: match.SideAway}, false)
	require.NoError(t, err)
	assert.Equal(t, match.Score{Home: 1, Away: 1}, m.Score)

	// Score stays a pure projection of goal events.
	goals := 0
	for _, e := range m.Events {
		if e.Type == match.EventGoal {
			goals++
		}
	}
	assert.Equal(t, m.Score.Home+m.Score.Away, goals)
	assert.Equal(t, 2, f.metrics.MatchEvents())
}

func TestRecordEventMinuteStamping(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")
	_, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)

	// At acceleration 1 the clock reads minute 10 after ten seconds.
	f.now = f.now.Add(10 * time.Second)

	m, err := f.engine.RecordEvent("m1", match.Event{Minute: -1, Type: match.EventShot, Team: match.SideHome}, false)
	require.NoError(t, err)
	assert.Equal(t, 10, m.Events[0].Minute)

	// An explicit minute zero is kept, not clock-stamped.
	m, err = f.engine.RecordEvent("m1", match.Event{Minute: 0, Type: match.EventGoal, Team: match.SideHome}, false)
	require.NoError(t, err)
	assert.Equal(t, 0, m.Events[1].Minute)
}

func TestRecordEventAutoStarts(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")

	m, err := f.engine.RecordEvent("m1", match.Event{Type: match.EventShot, Team: match.SideHome}, false)
	require.NoError(t, err)
	assert.Equal(t, match.StatusLive, m.Status)
	assert.Equal(t, 1, f.metrics.MatchesStarted())
}

func TestRecordEventAccruesStoppage(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")
	_, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)

	m, err := f.engine.RecordEvent("m1", match.Event{Type: match.EventInjury, Team: match.SideAway}, false)
	require.NoError(t, err)
	assert.InDelta(t, 1.5, m.StoppageTime, 0.001)
}

func TestRecordEventOnFinishedMatch(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")
	_, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)
	_, err = f.engine.FinishMatch("m1", false)
	require.NoError(t, err)

	_, err = f.engine.RecordEvent("m1", match.Event{Type: match.EventGoal, Team: match.SideHome}, false)
	assert.ErrorIs(t, err, ErrAlreadyFinished)
}

func TestCurrentTimePersistsTransitions(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")
	_, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)

	// At one real second per game-minute, 46 seconds crosses half time.
	f.now = f.now.Add(46 * time.Second)
	reading, m, err := f.engine.CurrentTime("m1")
	require.NoError(t, err)
	assert.Equal(t, match.PhaseHalfTime, reading.Phase)
	assert.Equal(t, "HT", reading.Display)
	require.NotNil(t, m.FirstHalfEndedAt)

	// The transition is persisted, a second read sees the same state.
	stored, err := f.matches.Get("m1")
	require.NoError(t, err)
	assert.Equal(t, match.PhaseHalfTime, stored.Phase)
}

func TestPhaseNeverMovesBackwards(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")
	_, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)

	f.now = f.now.Add(50 * time.Second)
	reading, _, err := f.engine.CurrentTime("m1")
	require.NoError(t, err)
	require.Equal(t, match.PhaseHalfTime, reading.Phase)

	// Slowing the clock down cannot rewind the phase or the minute.
	_, err = f.engine.SetTimeAcceleration("m1", 300)
	require.NoError(t, err)
	reading2, _, err := f.engine.CurrentTime("m1")
	require.NoError(t, err)
	assert.Equal(t, match.PhaseHalfTime, reading2.Phase)
	assert.GreaterOrEqual(t, reading2.Minute, reading.Minute)
}

func TestSetTimeAccelerationValidation(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")

	_, err := f.engine.SetTimeAcceleration("m1", 0)
	assert.ErrorIs(t, err, ErrInvalidAcceleration)
	_, err = f.engine.SetTimeAcceleration("m1", 301)
	assert.ErrorIs(t, err, ErrInvalidAcceleration)

	// Live-only.
	_, err = f.engine.SetTimeAcceleration("m1", 60)
	assert.ErrorIs(t, err, ErrNotLive)
}

func TestSetManualTime(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")
	_, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)

	m, err := f.engine.SetManualTime("m1", 75, match.PhaseSecondHalf)
	require.NoError(t, err)
	assert.Equal(t, 75, m.CurrentMinute)
	assert.Equal(t, match.PhaseSecondHalf, m.Phase)
	require.NotNil(t, m.FirstHalfEndedAt)
	require.NotNil(t, m.SecondHalfStartedAt)

	// The clock resumes from the forced minute.
	f.now = f.now.Add(3 * time.Second)
	reading, _, err := f.engine.CurrentTime("m1")
	require.NoError(t, err)
	assert.Equal(t, 78, reading.Minute)
}

func TestSetManualTimeValidation(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")

	_, err := f.engine.SetManualTime("m1", 130, match.PhaseSecondHalf)
	assert.ErrorIs(t, err, ErrInvalidMinute)
	_, err = f.engine.SetManualTime("m1", 30, match.Phase("overtime"))
	assert.ErrorIs(t, err, ErrInvalidPhase)
}

func TestFinishMatch(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")
	_, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)
	_, err = f.engine.RecordEvent("m1", match.Event{Type: match.EventGoal, Team: match.SideHome}, false)
	require.NoError(t, err)

	m, err := f.engine.FinishMatch("m1", false)
	require.NoError(t, err)

	assert.Equal(t, match.StatusFinished, m.Status)
	assert.Equal(t, match.PhaseFullTime, m.Phase)
	require.NotNil(t, m.FinishedAt)
	require.NotNil(t, m.Report)
	assert.Equal(t, 1, m.Report.Home.Goals)

	// The result folded into the table.
	standings, err := f.table.GetStandings("2026", "Premier Division")
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, 3, standings[0].Points)

	assert.Equal(t, 1, f.metrics.MatchesFinished())
	assert.Contains(t, f.bus.TypesSeen(), bus.EventMatchFinished)
	assert.Contains(t, f.bus.TypesSeen(), bus.EventTableUpdated)
	assert.Len(t, f.notifier.ResultCalls, 1)
}

func TestFinishScheduledMatchAsWalkover(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")

	m, err := f.engine.FinishMatch("m1", false)
	require.NoError(t, err)

	assert.Equal(t, match.StatusFinished, m.Status)
	assert.Equal(t, match.PhaseFullTime, m.Phase)
	assert.Equal(t, match.Score{}, m.Score)
	assert.Equal(t, 90, m.CurrentMinute)
	require.NotNil(t, m.Report)

	// The goalless draw folds into the table like any other result.
	standings, err := f.table.GetStandings("2026", "Premier Division")
	require.NoError(t, err)
	require.Len(t, standings, 2)
	assert.Equal(t, 1, standings[0].Points)
	assert.Equal(t, 1, standings[1].Points)

	assert.Equal(t, 1, f.metrics.MatchesStarted())
	assert.Equal(t, 1, f.metrics.MatchesFinished())
	assert.Contains(t, f.bus.TypesSeen(), bus.EventMatchStarted)
	assert.Contains(t, f.bus.TypesSeen(), bus.EventMatchFinished)
}

func TestFinishIncompleteScheduleRejected(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.matches.Create(&match.Match{
		ID: "m1", Season: "2026", Competition: "Premier Division",
		Stage: match.StageLeague, HomeClubID: "c1",
		Status: match.StatusScheduled,
	}))

	_, err := f.engine.FinishMatch("m1", false)
	assert.ErrorIs(t, err, ErrNotSchedulable)
}

func TestFinishMatchTwice(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")
	_, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)
	_, err = f.engine.FinishMatch("m1", false)
	require.NoError(t, err)

	_, err = f.engine.FinishMatch("m1", false)
	assert.ErrorIs(t, err, ErrAlreadyFinished)
	assert.Equal(t, 1, f.metrics.MatchesFinished())
}

func TestFinishMatchNotifierFailureIsNotFatal(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")
	_, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)

	f.notifier.Err = assert.AnError
	m, err := f.engine.FinishMatch("m1", false)
	require.NoError(t, err)
	assert.Equal(t, match.StatusFinished, m.Status)
}

func TestFinishFinalDeclaresChampion(t *testing.T) {
	f := newFixture(t)
	f.table.SetClubName("c1", "Rovers")
	f.table.SetClubName("c2", "Athletic")

	kickoff := f.now
	final := &match.Match{
		ID: "final", Season: "2026", Competition: "Premier Division",
		Stage: match.StageFinal, IsFinal: true,
		HomeClubID: "c1", AwayClubID: "c2",
		KickoffAt: &kickoff, Venue: "Rovers Park",
		Status: match.StatusScheduled,
	}
	require.NoError(t, f.matches.Create(final))

	_, err := f.engine.StartMatch("final", false)
	require.NoError(t, err)
	_, err = f.engine.RecordEvent("final", match.Event{Type: match.EventGoal, Team: match.SideAway}, false)
	require.NoError(t, err)

	m, err := f.engine.FinishMatch("final", false)
	require.NoError(t, err)
	assert.Equal(t, match.StatusFinished, m.Status)

	assert.Contains(t, f.bus.TypesSeen(), bus.EventFinalFinished)
	assert.Contains(t, f.bus.TypesSeen(), bus.EventLeagueChampion)
	require.Len(t, f.notifier.ChampionCalls, 1)
	assert.Equal(t, "c2", f.notifier.ChampionCalls[0].ID)
}

func TestScheduleMatchValidation(t *testing.T) {
	f := newFixture(t)
	m, err := f.engine.CreateMatch()
	require.NoError(t, err)

	kickoff := f.now.Add(24 * time.Hour)
	_, err = f.engine.ScheduleMatch(m.ID, ScheduleParams{HomeClubID: "c1", AwayClubID: "c1", KickoffAt: &kickoff})
	assert.ErrorIs(t, err, ErrSameClubs)

	_, err = f.engine.ScheduleMatch(m.ID, ScheduleParams{HomeClubID: "c1", AwayClubID: "nope", KickoffAt: &kickoff})
	assert.ErrorIs(t, err, ErrUnknownClub)
}

func TestScheduleMatchProbesOccupiedSlot(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")

	m2, err := f.engine.CreateMatch()
	require.NoError(t, err)

	// Request the instant m1 already holds; the probe lands two hours on.
	requested := f.now
	scheduled, err := f.engine.ScheduleMatch(m2.ID, ScheduleParams{
		HomeClubID: "c3", AwayClubID: "c4",
		KickoffAt: &requested, Venue: "Union Field",
	})
	require.NoError(t, err)
	require.NotNil(t, scheduled.KickoffAt)
	assert.Equal(t, requested.Add(2*time.Hour), *scheduled.KickoffAt)
}

func TestSimulateMatch(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")

	m, err := f.engine.SimulateMatch("m1", false)
	require.NoError(t, err)

	assert.Equal(t, match.StatusFinished, m.Status)
	assert.Equal(t, match.PhaseFullTime, m.Phase)
	require.NotNil(t, m.Report)
	assert.LessOrEqual(t, len(m.Events), 5)

	goals := 0
	for _, e := range m.Events {
		if e.Type == match.EventGoal {
			goals++
		}
	}
	assert.Equal(t, m.Score.Home+m.Score.Away, goals)
}

func TestAutoSimulatePlaysOutOnStart(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")

	auto := true
	_, err := f.engine.ScheduleMatch("m1", ScheduleParams{AutoSimulate: &auto})
	require.NoError(t, err)

	m, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)
	assert.Equal(t, match.StatusFinished, m.Status)
	require.NotNil(t, m.Report)
}

func TestResetLeague(t *testing.T) {
	f := newFixture(t)
	f.scheduledMatch(t, "m1")
	_, err := f.engine.StartMatch("m1", false)
	require.NoError(t, err)
	_, err = f.engine.FinishMatch("m1", false)
	require.NoError(t, err)

	require.NoError(t, f.engine.ResetLeague())

	all, err := f.matches.List()
	require.NoError(t, err)
	assert.Empty(t, all)
	standings, err := f.table.GetStandings("2026", "Premier Division")
	require.NoError(t, err)
	assert.Empty(t, standings)
}
