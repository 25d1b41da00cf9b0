package notifier

import (
	"sync"

	"github.com/rylis/touchline/internal/club"
	"github.com/rylis/touchline/internal/match"
)

// Mock is a mock implementation of the Notifier interface for testing.
// It is safe for concurrent use.
type Mock struct {
	mu sync.Mutex

	KickoffCalls  []*match.Match
	ResultCalls   []*match.Match
	FinalCalls    []*match.Match
	ChampionCalls []*club.Club

	// Err, when set, is returned by every send.
	Err error
}

var _ Notifier = (*Mock)(nil)

// NewMock creates a new mock instance.
func NewMock() *Mock {
	return &Mock{}
}

// Reset clears all call records.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.KickoffCalls = nil
	m.ResultCalls = nil
	m.FinalCalls = nil
	m.ChampionCalls = nil
}

func (m *Mock) SendKickoffNotification(mt *match.Match, home, away *club.Club, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.KickoffCalls = append(m.KickoffCalls, mt)
	return m.Err
}

func (m *Mock) SendResultNotification(mt *match.Match, home, away *club.Club, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ResultCalls = append(m.ResultCalls, mt)
	return m.Err
}

func (m *Mock) SendFinalNotification(mt *match.Match, home, away *club.Club, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.FinalCalls = append(m.FinalCalls, mt)
	return m.Err
}

func (m *Mock) SendChampionNotification(champion *club.Club, mt *match.Match, dryRun bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ChampionCalls = append(m.ChampionCalls, champion)
	return m.Err
}
