package match

import "time"

// MatchStore persists matches. All mutating writes are revision-checked:
// Update fails with ErrRevisionConflict when the stored revision no longer
// matches the one the caller read, and the caller must re-fetch and retry.
type MatchStore interface {
	// Create inserts a new match at revision zero.
	Create(m *Match) error
	// Get retrieves a match by id.
	Get(id string) (*Match, error)
	// List returns all matches ordered by kickoff time (unscheduled last).
	List() ([]*Match, error)
	// ListByStage returns all matches of one competitive stage.
	ListByStage(stage Stage) ([]*Match, error)
	// Update writes the match back, bumping its revision.
	Update(m *Match) error
	// KickoffTaken reports whether any other match occupies the instant.
	KickoffTaken(at time.Time, excludeID string) (bool, error)
	// ClubBusyOn reports whether the club already has a fixture on the
	// calendar day containing at.
	ClubBusyOn(clubID string, at time.Time, excludeID string) (bool, error)
	// DeleteAll removes every match (league reset).
	DeleteAll() error
}
