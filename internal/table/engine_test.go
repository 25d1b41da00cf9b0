package table_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rylis/touchline/internal/bus"
	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/database"
	"github.com/rylis/touchline/internal/match"
	"github.com/rylis/touchline/internal/table"
)

const (
	testSeason      = "2026"
	testCompetition = "Premier Division"
)

func setupEngine(t *testing.T) (*table.Engine, match.MatchStore, club.ClubStore, *bus.Mock, func()) {
	t.Helper()

	db, err := database.InitDB(":memory:", "", "")
	require.NoError(t, err)

	clubs := club.New(db)
	matches := match.New(db)
	standings := table.NewStore(db)
	b := bus.NewMock()

	for _, c := range []club.Club{
		{ID: "c1", Name: "Rovers", Venue: "Rovers Park"},
		{ID: "c2", Name: "Athletic", Venue: "Athletic Ground"},
		{ID: "c3", Name: "United", Venue: "Union Field"},
		{ID: "c4", Name: "Wanderers", Venue: "The Meadow"},
	} {
		require.NoError(t, clubs.UpsertClub(c))
	}

	return table.NewEngine(standings, matches, clubs, b, 14), matches, clubs, b, func() { db.Close() }
}

func finishedLeagueMatch(t *testing.T, matches match.MatchStore, home, away string, hs, as int, kickoff time.Time) *match.Match {
	t.Helper()

	m := &match.Match{
		ID:          home + "-" + away,
		Season:      testSeason,
		Competition: testCompetition,
		Stage:       match.StageLeague,
		HomeClubID:  home,
		AwayClubID:  away,
		KickoffAt:   &kickoff,
		Venue:       "Somewhere",
		Status:      match.StatusFinished,
		Score:       match.Score{Home: hs, Away: as},
	}
	require.NoError(t, matches.Create(m))
	return m
}

func TestApplyResultAwardsPoints(t *testing.T) {
	eng, matches, _, b, teardown := setupEngine(t)
	defer teardown()

	kickoff := time.Date(2026, 5, 9, 14, 0, 0, 0, time.UTC)
	m := finishedLeagueMatch(t, matches, "c1", "c2", 2, 1, kickoff)

	standings, err := eng.ApplyResult(m)
	require.NoError(t, err)
	require.Len(t, standings, 2)

	assert.Equal(t, "c1", standings[0].ClubID)
	assert.Equal(t, 3, standings[0].Points)
	assert.Equal(t, 1, standings[0].Won)
	assert.Equal(t, 2, standings[0].GoalsFor)
	assert.Equal(t, 1, standings[0].GoalDifference)

	assert.Equal(t, "c2", standings[1].ClubID)
	assert.Equal(t, 0, standings[1].Points)
	assert.Equal(t, 1, standings[1].Lost)

	assert.Contains(t, b.TypesSeen(), bus.EventTableUpdated)
}

func TestApplyResultDrawSplitsPoints(t *testing.T) {
	eng, matches, _, _, teardown := setupEngine(t)
	defer teardown()

	kickoff := time.Date(2026, 5, 9, 14, 0, 0, 0, time.UTC)
	m := finishedLeagueMatch(t, matches, "c1", "c2", 1, 1, kickoff)

	standings, err := eng.ApplyResult(m)
	require.NoError(t, err)
	require.Len(t, standings, 2)
	for _, st := range standings {
		assert.Equal(t, 1, st.Points)
		assert.Equal(t, 1, st.Drawn)
		assert.Equal(t, 0, st.GoalDifference)
	}
}

func TestApplyResultRejectsUnfinished(t *testing.T) {
	eng, _, _, _, teardown := setupEngine(t)
	defer teardown()

	m := &match.Match{ID: "m1", Status: match.StatusLive, Stage: match.StageLeague}
	_, err := eng.ApplyResult(m)
	assert.Error(t, err)
}

func TestApplyResultIgnoresKnockoutMatches(t *testing.T) {
	eng, matches, _, _, teardown := setupEngine(t)
	defer teardown()

	kickoff := time.Date(2026, 5, 20, 14, 0, 0, 0, time.UTC)
	m := &match.Match{
		ID: "semi-1", Season: testSeason, Competition: testCompetition,
		Stage: match.StageSemi, HomeClubID: "c1", AwayClubID: "c4",
		KickoffAt: &kickoff, Venue: "Rovers Park",
		Status: match.StatusFinished, Score: match.Score{Home: 3, Away: 0},
	}
	require.NoError(t, matches.Create(m))

	standings, err := eng.ApplyResult(m)
	require.NoError(t, err)
	assert.Empty(t, standings)
}

func TestStandingsTieBreakChain(t *testing.T) {
	_, _, _, _, teardown := setupEngine(t)
	defer teardown()

	// Use the mock to exercise the ordering directly: equal points fall
	// through goal difference, then goals scored, then club name.
	store := table.NewMock()
	store.SetClubName("c1", "Zebras")
	store.SetClubName("c2", "Athletic")
	store.SetClubName("c3", "Rovers")
	store.SetClubName("c4", "United")

	rows := []table.Standing{
		{Season: testSeason, Competition: testCompetition, ClubID: "c1", Points: 6, GoalsFor: 5, GoalsAgainst: 2, GoalDifference: 3},
		{Season: testSeason, Competition: testCompetition, ClubID: "c2", Points: 6, GoalsFor: 5, GoalsAgainst: 2, GoalDifference: 3},
		{Season: testSeason, Competition: testCompetition, ClubID: "c3", Points: 6, GoalsFor: 8, GoalsAgainst: 5, GoalDifference: 3},
		{Season: testSeason, Competition: testCompetition, ClubID: "c4", Points: 9, GoalsFor: 3, GoalsAgainst: 3, GoalDifference: 0},
	}
	for _, st := range rows {
		require.NoError(t, store.Upsert(st))
	}

	standings, err := store.GetStandings(testSeason, testCompetition)
	require.NoError(t, err)
	require.Len(t, standings, 4)

	// c4 leads on points despite the worst goal difference. c3 wins the
	// goals-scored tie-break, then Athletic beats Zebras alphabetically.
	assert.Equal(t, "c4", standings[0].ClubID)
	assert.Equal(t, "c3", standings[1].ClubID)
	assert.Equal(t, "c2", standings[2].ClubID)
	assert.Equal(t, "c1", standings[3].ClubID)
}

// playFullLeague finishes a single round robin between the four clubs
// with scores that classify them c1 > c2 > c3 > c4.
func playFullLeague(t *testing.T, eng *table.Engine, matches match.MatchStore) {
	t.Helper()

	kickoff := time.Date(2026, 5, 9, 14, 0, 0, 0, time.UTC)
	results := []struct {
		home, away string
		hs, as     int
	}{
		{"c1", "c2", 2, 0},
		{"c3", "c4", 1, 0},
		{"c1", "c3", 3, 1},
		{"c2", "c4", 2, 1},
		{"c1", "c4", 1, 0},
		{"c2", "c3", 2, 1},
	}
	for i, r := range results {
		m := finishedLeagueMatch(t, matches, r.home, r.away, r.hs, r.as, kickoff.Add(time.Duration(i)*2*time.Hour))
		_, err := eng.ApplyResult(m)
		require.NoError(t, err)
	}
}

func TestKnockoutProgressionSeedsSemis(t *testing.T) {
	eng, matches, _, b, teardown := setupEngine(t)
	defer teardown()

	playFullLeague(t, eng, matches)

	now := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	created, err := eng.EnsureKnockoutProgression(now)
	require.NoError(t, err)
	require.Len(t, created, 2)

	// First versus fourth, second versus third.
	assert.Equal(t, "c1", created[0].HomeClubID)
	assert.Equal(t, "c4", created[0].AwayClubID)
	assert.Equal(t, "c2", created[1].HomeClubID)
	assert.Equal(t, "c3", created[1].AwayClubID)

	// Next day at the configured hour, two hours apart.
	require.NotNil(t, created[0].KickoffAt)
	require.NotNil(t, created[1].KickoffAt)
	assert.Equal(t, time.Date(2026, 5, 11, 14, 0, 0, 0, time.UTC), created[0].KickoffAt.UTC())
	assert.Equal(t, 2*time.Hour, created[1].KickoffAt.Sub(*created[0].KickoffAt))

	// Home advantage at the higher seed's ground.
	assert.Equal(t, "Rovers Park", created[0].Venue)
	assert.Contains(t, b.TypesSeen(), bus.EventSemiCreated)

	// Calling again while the semis are pending creates nothing.
	again, err := eng.EnsureKnockoutProgression(now)
	require.NoError(t, err)
	assert.Empty(t, again)
}

func TestKnockoutProgressionCreatesFinal(t *testing.T) {
	eng, matches, _, b, teardown := setupEngine(t)
	defer teardown()

	playFullLeague(t, eng, matches)

	now := time.Date(2026, 5, 10, 18, 0, 0, 0, time.UTC)
	semis, err := eng.EnsureKnockoutProgression(now)
	require.NoError(t, err)
	require.Len(t, semis, 2)

	// First semi won by the away side, second drawn so home advances.
	semis[0].Status = match.StatusFinished
	semis[0].Score = match.Score{Home: 0, Away: 2}
	require.NoError(t, matches.Update(semis[0]))
	semis[1].Status = match.StatusFinished
	semis[1].Score = match.Score{Home: 1, Away: 1}
	require.NoError(t, matches.Update(semis[1]))

	now = now.AddDate(0, 0, 1)
	created, err := eng.EnsureKnockoutProgression(now)
	require.NoError(t, err)
	require.Len(t, created, 1)

	final := created[0]
	assert.True(t, final.IsFinal)
	assert.Equal(t, match.StageFinal, final.Stage)
	assert.Equal(t, "c4", final.HomeClubID)
	assert.Equal(t, "c2", final.AwayClubID)
	assert.Contains(t, b.TypesSeen(), bus.EventFinalCreated)
}

func TestKnockoutProgressionLoneSemiDoesNotPair(t *testing.T) {
	eng, matches, _, _, teardown := setupEngine(t)
	defer teardown()

	playFullLeague(t, eng, matches)

	// A bracket holding a single finished semi cannot produce a final.
	kickoff := time.Date(2026, 5, 11, 14, 0, 0, 0, time.UTC)
	semi := &match.Match{
		ID: "semi1", Season: testSeason, Competition: testCompetition,
		Stage: match.StageSemi, HomeClubID: "c1", AwayClubID: "c4",
		KickoffAt: &kickoff, Venue: "Rovers Park",
		Status: match.StatusFinished, Score: match.Score{Home: 1, Away: 0},
	}
	require.NoError(t, matches.Create(semi))

	created, err := eng.EnsureKnockoutProgression(kickoff.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestKnockoutProgressionWaitsForLeague(t *testing.T) {
	eng, matches, _, _, teardown := setupEngine(t)
	defer teardown()

	kickoff := time.Date(2026, 5, 9, 14, 0, 0, 0, time.UTC)
	finishedLeagueMatch(t, matches, "c1", "c2", 2, 0, kickoff)
	pending := &match.Match{
		ID: "pending", Season: testSeason, Competition: testCompetition,
		Stage: match.StageLeague, HomeClubID: "c3", AwayClubID: "c4",
		Status: match.StatusScheduled,
	}
	require.NoError(t, matches.Create(pending))

	created, err := eng.EnsureKnockoutProgression(time.Now())
	require.NoError(t, err)
	assert.Empty(t, created)
}

func TestDeclareChampion(t *testing.T) {
	eng, matches, _, b, teardown := setupEngine(t)
	defer teardown()

	kickoff := time.Date(2026, 5, 22, 14, 0, 0, 0, time.UTC)
	final := &match.Match{
		ID: "final", Season: testSeason, Competition: testCompetition,
		Stage: match.StageFinal, IsFinal: true,
		HomeClubID: "c1", AwayClubID: "c2",
		KickoffAt: &kickoff, Venue: "Rovers Park",
		Status: match.StatusFinished, Score: match.Score{Home: 0, Away: 1},
	}
	require.NoError(t, matches.Create(final))

	champion, err := eng.DeclareChampion(final)
	require.NoError(t, err)
	require.NotNil(t, champion)
	assert.Equal(t, "Athletic", champion.Name)
	assert.Contains(t, b.TypesSeen(), bus.EventLeagueChampion)
}

func TestDeclareChampionDrawnFinal(t *testing.T) {
	eng, _, _, b, teardown := setupEngine(t)
	defer teardown()

	final := &match.Match{
		ID: "final", IsFinal: true, Stage: match.StageFinal,
		Status: match.StatusFinished, Score: match.Score{Home: 2, Away: 2},
	}

	champion, err := eng.DeclareChampion(final)
	require.NoError(t, err)
	assert.Nil(t, champion)
	assert.NotContains(t, b.TypesSeen(), bus.EventLeagueChampion)
}
