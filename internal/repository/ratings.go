package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/ncaam/ratings-engine/internal/models"
	"github.com/ncaam/ratings-engine/internal/store"
)

// RatingRepository handles team rating database operations
type RatingRepository struct {
	db *Database
}

// SeedRoster creates rating rows from a preseason snapshot inside one
// transaction. A populated table is refused unless reset is set; reset wipes
// the ledger and ratings first. Partial seeds never land.
func (r *RatingRepository) SeedRoster(ctx context.Context, entries []models.RosterEntry, reset bool) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin seed transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var count int
	if err := tx.QueryRow(ctx, `SELECT COUNT(*) FROM team_ratings`).Scan(&count); err != nil {
		return fmt.Errorf("failed to count existing ratings: %w", err)
	}

	if count > 0 {
		if !reset {
			return store.ErrRosterPopulated
		}
		if _, err := tx.Exec(ctx, `DELETE FROM game_adjustments`); err != nil {
			return fmt.Errorf("failed to clear adjustment ledger: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM team_ratings`); err != nil {
			return fmt.Errorf("failed to clear ratings: %w", err)
		}
		log.Warn().Int("previous_teams", count).Msg("Roster reset: ratings and ledger wiped")
	}

	query := `
		INSERT INTO team_ratings (
			canonical_name, rating, initial_rating, games_processed, conference, last_updated
		) VALUES ($1, $2, $2, 0, $3, NOW())
	`

	for _, entry := range entries {
		rating := entry.ToTeamRating()
		if _, err := tx.Exec(ctx, query,
			rating.CanonicalName, rating.InitialRating, rating.Conference,
		); err != nil {
			return fmt.Errorf("failed to seed team %q: %w", entry.TeamName, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit roster seed: %w", err)
	}

	log.Info().Int("teams", len(entries)).Msg("Roster seeded")
	return nil
}

// GetByName retrieves a rating row by canonical team name
func (r *RatingRepository) GetByName(ctx context.Context, canonicalName string) (*models.TeamRating, error) {
	query := `
		SELECT id, canonical_name, rating, initial_rating, games_processed,
		       conference, last_updated, created_at
		FROM team_ratings
		WHERE canonical_name = $1
	`

	var rating models.TeamRating
	err := r.db.Pool.QueryRow(ctx, query, canonicalName).Scan(
		&rating.ID, &rating.CanonicalName, &rating.Rating, &rating.InitialRating,
		&rating.GamesProcessed, &rating.Conference, &rating.LastUpdated, &rating.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("%q: %w", canonicalName, store.ErrTeamNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rating: %w", err)
	}

	return &rating, nil
}

// List retrieves all rating rows, best rating first
func (r *RatingRepository) List(ctx context.Context) ([]*models.TeamRating, error) {
	query := `
		SELECT id, canonical_name, rating, initial_rating, games_processed,
		       conference, last_updated, created_at
		FROM team_ratings
		ORDER BY rating DESC, canonical_name
	`

	rows, err := r.db.Pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []*models.TeamRating
	for rows.Next() {
		var rating models.TeamRating
		err := rows.Scan(
			&rating.ID, &rating.CanonicalName, &rating.Rating, &rating.InitialRating,
			&rating.GamesProcessed, &rating.Conference, &rating.LastUpdated, &rating.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rating: %w", err)
		}
		ratings = append(ratings, &rating)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ratings: %w", err)
	}

	return ratings, nil
}

// Count returns the number of rated teams
func (r *RatingRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM team_ratings`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count ratings: %w", err)
	}
	return count, nil
}
