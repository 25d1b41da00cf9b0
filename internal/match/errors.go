package match

import "errors"

var (
	// ErrNotFound is returned when a referenced match does not exist.
	ErrNotFound = errors.New("match not found")
	// ErrRevisionConflict is returned when a revision-checked update lost a
	// race; the caller should re-fetch and retry.
	ErrRevisionConflict = errors.New("match was modified concurrently")
	// ErrKickoffTaken is returned when another match already occupies the
	// requested kickoff instant.
	ErrKickoffTaken = errors.New("kickoff slot is already taken")
	// ErrInvalidEvent is returned for an event failing validation.
	ErrInvalidEvent = errors.New("invalid match event")
)
