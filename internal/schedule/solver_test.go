package schedule_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/config"
	"github.com/rylis/touchline/internal/database"
	"github.com/rylis/touchline/internal/match"
	"github.com/rylis/touchline/internal/schedule"
)

func leagueConfig(days int) config.LeagueConfig {
	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	return config.LeagueConfig{
		Season:      "2026",
		Competition: "Premier Division",
		SeasonStart: start,
		SeasonEnd:   start.AddDate(0, 0, days-1),
		KickoffHour: 14,
	}
}

func setupScheduler(t *testing.T, clubCount, windowDays int) (*schedule.Scheduler, match.MatchStore, *schedule.MockSeasonStore, func()) {
	t.Helper()

	db, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	clubs := club.New(db)
	names := []string{"Rovers", "Athletic", "United", "Wanderers", "City", "Albion"}
	for i := 0; i < clubCount; i++ {
		require.NoError(t, clubs.UpsertClub(club.Club{
			ID:    names[i],
			Name:  names[i],
			Venue: names[i] + " Park",
		}))
	}

	matches := match.New(db)
	seasons := schedule.NewMockSeasonStore()
	return schedule.NewScheduler(matches, clubs, seasons, leagueConfig(windowDays)), matches, seasons, func() { db.Close() }
}

func TestRoundRobinCompleteness(t *testing.T) {
	ids := []string{"a", "b", "c", "d"}
	rounds := schedule.RoundRobin(ids)
	require.Len(t, rounds, 3)

	seen := make(map[string]bool)
	for _, round := range rounds {
		require.Len(t, round, 2)
		perRound := make(map[string]bool)
		for _, p := range round {
			// Unordered pairing key: each pair meets exactly once.
			key := p.Home + "-" + p.Away
			if p.Away < p.Home {
				key = p.Away + "-" + p.Home
			}
			assert.False(t, seen[key], "pairing %s repeated", key)
			seen[key] = true
			assert.False(t, perRound[p.Home] || perRound[p.Away], "club plays twice in one round")
			perRound[p.Home] = true
			perRound[p.Away] = true
		}
	}
	assert.Len(t, seen, 6)
}

func TestRoundRobinOddFieldGetsBye(t *testing.T) {
	rounds := schedule.RoundRobin([]string{"a", "b", "c"})
	require.Len(t, rounds, 3)

	appearances := make(map[string]int)
	total := 0
	for _, round := range rounds {
		// One club sits out each round.
		require.Len(t, round, 1)
		for _, p := range round {
			appearances[p.Home]++
			appearances[p.Away]++
			total++
		}
	}
	assert.Equal(t, 3, total)
	for id, n := range appearances {
		assert.Equal(t, 2, n, "club %s should play twice", id)
	}
}

func TestGenerateFixturesAssignsUniqueSlots(t *testing.T) {
	s, matches, _, teardown := setupScheduler(t, 4, 30)
	defer teardown()

	fixtures, err := s.GenerateFixtures()
	require.NoError(t, err)
	require.Len(t, fixtures, 6)

	instants := make(map[int64]bool)
	clubDays := make(map[string]bool)
	for _, m := range fixtures {
		require.NotNil(t, m.KickoffAt)
		assert.False(t, instants[m.KickoffAt.Unix()], "kickoff instant reused")
		instants[m.KickoffAt.Unix()] = true

		day := m.KickoffAt.Format("2006-01-02")
		for _, id := range []string{m.HomeClubID, m.AwayClubID} {
			key := id + "|" + day
			assert.False(t, clubDays[key], "club %s plays twice on %s", id, day)
			clubDays[key] = true
		}
		assert.Equal(t, match.StatusScheduled, m.Status)
		assert.Equal(t, match.StageLeague, m.Stage)
	}

	stored, err := matches.List()
	require.NoError(t, err)
	assert.Len(t, stored, 6)
}

func TestGenerateFixturesHomeVenue(t *testing.T) {
	s, _, _, teardown := setupScheduler(t, 2, 10)
	defer teardown()

	fixtures, err := s.GenerateFixtures()
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.Equal(t, fixtures[0].HomeClubID+" Park", fixtures[0].Venue)
}

func TestGenerateFixturesInsufficientClubs(t *testing.T) {
	s, _, _, teardown := setupScheduler(t, 1, 10)
	defer teardown()

	_, err := s.GenerateFixtures()
	assert.ErrorIs(t, err, schedule.ErrInsufficientClubs)
}

func TestGenerateFixturesCapacityError(t *testing.T) {
	// Six clubs need 15 fixtures across at least 5 match days, but the
	// window only spans 2 days.
	s, matches, _, teardown := setupScheduler(t, 6, 2)
	defer teardown()

	_, err := s.GenerateFixtures()
	require.Error(t, err)

	var capErr *schedule.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.NotEmpty(t, capErr.Assigned)
	assert.NotEmpty(t, capErr.Unplaced.Home)
	assert.Contains(t, capErr.Error(), "season window ends")

	// Nothing persisted on failure.
	stored, err := matches.List()
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestGenerateFixturesAvoidsExistingBookings(t *testing.T) {
	s, matches, _, teardown := setupScheduler(t, 2, 10)
	defer teardown()

	// Pre-book the first day's opening slot.
	occupied := time.Date(2026, 5, 1, 14, 0, 0, 0, time.UTC)
	require.NoError(t, matches.Create(&match.Match{
		ID: "pre", Season: "2026", Competition: "Premier Division",
		Stage: match.StageLeague, HomeClubID: "other-a", AwayClubID: "other-b",
		KickoffAt: &occupied, Venue: "Elsewhere", Status: match.StatusScheduled,
	}))

	fixtures, err := s.GenerateFixtures()
	require.NoError(t, err)
	require.Len(t, fixtures, 1)
	assert.False(t, fixtures[0].KickoffAt.Equal(occupied))
}

func TestGenerateFixturesRecordsSeasonWindow(t *testing.T) {
	s, _, seasons, teardown := setupScheduler(t, 2, 10)
	defer teardown()

	_, err := s.GenerateFixtures()
	require.NoError(t, err)

	w, err := seasons.GetWindow("2026")
	require.NoError(t, err)
	require.NotNil(t, w)
	assert.Equal(t, leagueConfig(10).SeasonStart, w.StartDate)
	assert.Equal(t, leagueConfig(10).SeasonEnd, w.EndDate)
}

func TestRecordedSeasonWindowOverridesConfig(t *testing.T) {
	// The configured window spans a month, but the season already has a
	// two-day window on record. Six clubs cannot fit into two days.
	s, matches, seasons, teardown := setupScheduler(t, 6, 30)
	defer teardown()

	start := time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, seasons.SaveWindow(schedule.SeasonWindow{
		Season:    "2026",
		StartDate: start,
		EndDate:   start.AddDate(0, 0, 1),
	}))

	_, err := s.GenerateFixtures()
	var capErr *schedule.CapacityError
	require.ErrorAs(t, err, &capErr)
	assert.Equal(t, start.AddDate(0, 0, 1), capErr.WindowEnd)

	stored, err := matches.List()
	require.NoError(t, err)
	assert.Empty(t, stored)
}
