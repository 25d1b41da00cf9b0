package table

// TableStore persists league standings. GetStandings returns rows
// already ordered by the classification rules: points, then goal
// difference, then goals scored, then club name.
type TableStore interface {
	GetStandings(season, competition string) ([]Standing, error)
	Upsert(st Standing) error
	DeleteAll() error
}
