package engine

import "errors"

// Sentinel errors shared across the engine and mapped to HTTP statuses at
// the boundary.
var (
	// Not found
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrMatchNotFound      = errors.New("match not found")
	ErrTeamNotFound       = errors.New("team not found")

	// Validation
	ErrInsufficientTeams = errors.New("not enough teams to build a bracket")
	ErrTooManyTeams      = errors.New("more teams than the tournament allows")
	ErrInvalidScore      = errors.New("scores must be non-negative")
	ErrWinnerRequired    = errors.New("a winner must be declared for this match")
	ErrWinnerNotInMatch  = errors.New("declared winner is not part of this match")
	ErrMatchNotReady     = errors.New("match is not ready for a result")
	ErrSameTeam          = errors.New("a team cannot play itself")
	ErrUnsupportedFormat = errors.New("unsupported bracket format")

	// State conflicts
	ErrMatchAlreadyDecided = errors.New("match result has already been recorded")
	ErrTournamentFinished  = errors.New("tournament is already completed")
	// ErrBrokenBracket flags a routing pointer to a match that does not
	// exist. This is a data-integrity violation, never silently skipped.
	ErrBrokenBracket = errors.New("bracket routing points to a missing match")
)
