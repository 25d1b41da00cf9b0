package club

// ClubStore persists the clubs competing in the league.
type ClubStore interface {
	// UpsertClub inserts a club or updates its details.
	UpsertClub(c Club) error
	// GetClub retrieves a single club by id.
	GetClub(id string) (*Club, error)
	// GetAllClubs returns every club, ordered by name.
	GetAllClubs() ([]Club, error)
	// IsKnownClub reports whether a club id exists.
	IsKnownClub(id string) bool
}
