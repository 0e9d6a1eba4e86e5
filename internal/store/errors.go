package store

import "errors"

var (
	// ErrTeamNotFound means a canonical name has no rating row.
	ErrTeamNotFound = errors.New("team not found")

	// ErrRosterPopulated means SeedRoster was called without reset on a
	// store that already holds ratings.
	ErrRosterPopulated = errors.New("roster already populated")

	// ErrDuplicateAdjustment means the game is already in the ledger.
	ErrDuplicateAdjustment = errors.New("adjustment already recorded for game")

	// ErrRatingConflict means a team's stored rating diverged from the
	// adjustment's before value between read and write.
	ErrRatingConflict = errors.New("rating changed since read")
)
