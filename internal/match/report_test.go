package match_test

import (
	"testing"
	"time"

	"github.com/rylis/touchline/internal/match"
	"github.com/stretchr/testify/assert"
)

func TestBuildReportFoldsLedger(t *testing.T) {
	m := liveMatch(1)
	m.Events = []match.Event{
		{Minute: 5, Type: match.EventGoal, Team: match.SideHome},
		{Minute: 20, Type: match.EventShot, Team: match.SideHome, OnTarget: true},
		{Minute: 30, Type: match.EventShot, Team: match.SideAway},
		{Minute: 40, Type: match.EventCorner, Team: match.SideHome},
		{Minute: 55, Type: match.EventFoul, Team: match.SideAway},
		{Minute: 60, Type: match.EventYellowCard, Team: match.SideAway},
		{Minute: 70, Type: match.EventRedCard, Team: match.SideAway},
		{Minute: 80, Type: match.EventSubstitution, Team: match.SideHome},
	}

	now := time.Now()
	r := match.BuildReport(m, now)

	assert.Equal(t, 1, r.Home.Goals)
	// A goal counts as a shot on target.
	assert.Equal(t, 2, r.Home.Shots)
	assert.Equal(t, 2, r.Home.ShotsOnTarget)
	assert.Equal(t, 1, r.Home.Corners)
	assert.Equal(t, 1, r.Home.Substitutions)
	assert.Equal(t, 1, r.Away.Shots)
	assert.Equal(t, 0, r.Away.ShotsOnTarget)
	assert.Equal(t, 1, r.Away.Fouls)
	assert.Equal(t, 1, r.Away.YellowCards)
	assert.Equal(t, 1, r.Away.RedCards)
	assert.Equal(t, now, r.GeneratedAt)
	assert.Equal(t, 100, r.PossessionHome+r.PossessionAway)
}

func TestPossessionBalancedMatch(t *testing.T) {
	m := liveMatch(1)
	r := match.BuildReport(m, time.Now())
	assert.Equal(t, 50, r.PossessionHome)
	assert.Equal(t, 50, r.PossessionAway)
}

func TestPossessionDominantHomeSideIsClamped(t *testing.T) {
	m := liveMatch(1)
	// Five unanswered goals plus every supporting stat: the raw adjustment
	// exceeds the cap and must clamp to 80.
	for i := 0; i < 5; i++ {
		m.Events = append(m.Events,
			match.Event{Minute: i * 10, Type: match.EventGoal, Team: match.SideHome},
			match.Event{Minute: i*10 + 1, Type: match.EventCorner, Team: match.SideHome},
			match.Event{Minute: i*10 + 2, Type: match.EventShot, Team: match.SideHome, OnTarget: true},
			match.Event{Minute: i*10 + 3, Type: match.EventFoul, Team: match.SideAway},
		)
	}

	r := match.BuildReport(m, time.Now())
	assert.Equal(t, 80, r.PossessionHome)
	assert.Equal(t, 20, r.PossessionAway)
}

func TestPossessionFoulsReducePossession(t *testing.T) {
	m := liveMatch(1)
	m.Events = []match.Event{
		{Minute: 10, Type: match.EventFoul, Team: match.SideHome},
		{Minute: 20, Type: match.EventFoul, Team: match.SideHome},
	}

	r := match.BuildReport(m, time.Now())
	assert.Equal(t, 46, r.PossessionHome)
	assert.Equal(t, 54, r.PossessionAway)
}
