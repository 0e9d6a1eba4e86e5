// Package store defines the rating store contract shared by the PostgreSQL
// and in-memory backends. All rating mutation funnels through ApplyAdjustment,
// which commits the rating updates and the ledger record as one unit; reads
// are point-in-time snapshots and never block a writer.
package store

import (
	"context"

	"github.com/ncaam/ratings-engine/internal/models"
)

// Store holds current team ratings, the immutable adjustment ledger, and the
// set of already-processed game identifiers.
type Store interface {
	// GetRating returns the current rating row for a canonical team name.
	// Returns ErrTeamNotFound when the team is not on the roster.
	GetRating(ctx context.Context, canonicalName string) (*models.TeamRating, error)

	// ListRatings returns all rating rows ordered by rating descending.
	ListRatings(ctx context.Context) ([]*models.TeamRating, error)

	// SeedRoster creates rating rows from a preseason snapshot. Seeding an
	// already-populated store fails with ErrRosterPopulated unless reset is
	// set, in which case ratings and ledger are wiped first.
	SeedRoster(ctx context.Context, entries []models.RosterEntry, reset bool) error

	// HasAdjustment reports whether a game has already been processed.
	HasAdjustment(ctx context.Context, gameID string) (bool, error)

	// ApplyAdjustment atomically moves both teams' ratings to the After
	// values in adj, increments their game counters, stamps lastUpdated, and
	// appends adj to the ledger. Either all of it is visible or none of it.
	//
	// Fails with ErrDuplicateAdjustment when adj.GameID is already in the
	// ledger, ErrTeamNotFound when either team row is missing, and
	// ErrRatingConflict when a team's current rating no longer equals the
	// Before value in adj (a concurrent writer got there first).
	ApplyAdjustment(ctx context.Context, adj *models.GameAdjustment) error

	// ListAdjustments returns ledger records ordered by game date ascending,
	// then insertion order. A non-nil season filters to that season.
	ListAdjustments(ctx context.Context, season *int) ([]*models.GameAdjustment, error)
}
