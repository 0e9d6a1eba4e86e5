package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog/log"

	"github.com/ncaam/ratings-engine/internal/models"
	"github.com/ncaam/ratings-engine/internal/store"
)

// uniqueViolation is the PostgreSQL error code for a unique constraint hit.
const uniqueViolation = "23505"

// AdjustmentRepository handles the adjustment ledger and the coupled rating mutations
type AdjustmentRepository struct {
	db *Database
}

// Has reports whether a game is already in the ledger
func (r *AdjustmentRepository) Has(ctx context.Context, gameID string) (bool, error) {
	var exists bool
	err := r.db.Pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM game_adjustments WHERE game_id = $1)`, gameID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check ledger for game %s: %w", gameID, err)
	}
	return exists, nil
}

// Apply commits both rating mutations and the ledger append in one
// transaction. The rating updates are conditional on the before values still
// holding, so a concurrent writer surfaces as store.ErrRatingConflict and
// nothing lands. A duplicate game id trips the ledger's unique constraint and
// maps to store.ErrDuplicateAdjustment.
func (r *AdjustmentRepository) Apply(ctx context.Context, adj *models.GameAdjustment) error {
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin adjustment transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := r.updateRating(ctx, tx, adj.HomeTeam, adj.HomeRatingBefore, adj.HomeRatingAfter); err != nil {
		return err
	}
	if err := r.updateRating(ctx, tx, adj.AwayTeam, adj.AwayRatingBefore, adj.AwayRatingAfter); err != nil {
		return err
	}

	insert := `
		INSERT INTO game_adjustments (
			game_id, season, game_date, home_team, away_team, neutral_site,
			home_rating_before, away_rating_before, projected_spread,
			closing_spread, closing_source, difference, adjustment,
			home_rating_after, away_rating_after
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at
	`

	err = tx.QueryRow(ctx, insert,
		adj.GameID, adj.Season, adj.GameDate, adj.HomeTeam, adj.AwayTeam, adj.NeutralSite,
		adj.HomeRatingBefore, adj.AwayRatingBefore, adj.ProjectedSpread,
		adj.ClosingSpread, adj.ClosingSource, adj.Difference, adj.Adjustment,
		adj.HomeRatingAfter, adj.AwayRatingAfter,
	).Scan(&adj.ID, &adj.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return fmt.Errorf("game %s: %w", adj.GameID, store.ErrDuplicateAdjustment)
		}
		return fmt.Errorf("failed to append adjustment record: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit adjustment: %w", err)
	}

	log.Debug().
		Str("game_id", adj.GameID).
		Str("home", adj.HomeTeam).
		Str("away", adj.AwayTeam).
		Float64("adjustment", adj.Adjustment).
		Msg("Adjustment committed")

	return nil
}

// updateRating is the conditional rating write: it only lands when the stored
// rating still equals the before value read by the processor.
func (r *AdjustmentRepository) updateRating(ctx context.Context, tx pgx.Tx, team string, before, after float64) error {
	result, err := tx.Exec(ctx, `
		UPDATE team_ratings
		SET rating = $1,
		    games_processed = games_processed + 1,
		    last_updated = NOW()
		WHERE canonical_name = $2
		  AND abs(rating - $3) < 1e-9
	`, after, team, before)
	if err != nil {
		return fmt.Errorf("failed to update rating for %q: %w", team, err)
	}

	if result.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM team_ratings WHERE canonical_name = $1)`, team,
		).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check team %q: %w", team, err)
		}
		if !exists {
			return fmt.Errorf("%q: %w", team, store.ErrTeamNotFound)
		}
		return fmt.Errorf("%q: %w", team, store.ErrRatingConflict)
	}

	return nil
}

// List retrieves ledger records by game date ascending, insertion order
// breaking ties. A non-nil season filters to that season.
func (r *AdjustmentRepository) List(ctx context.Context, season *int) ([]*models.GameAdjustment, error) {
	query := `
		SELECT id, game_id, season, game_date, home_team, away_team, neutral_site,
		       home_rating_before, away_rating_before, projected_spread,
		       closing_spread, closing_source, difference, adjustment,
		       home_rating_after, away_rating_after, created_at
		FROM game_adjustments
	`
	args := []interface{}{}
	if season != nil {
		query += ` WHERE season = $1`
		args = append(args, *season)
	}
	query += ` ORDER BY game_date ASC, id ASC`

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list adjustments: %w", err)
	}
	defer rows.Close()

	var adjustments []*models.GameAdjustment
	for rows.Next() {
		var adj models.GameAdjustment
		err := rows.Scan(
			&adj.ID, &adj.GameID, &adj.Season, &adj.GameDate, &adj.HomeTeam, &adj.AwayTeam, &adj.NeutralSite,
			&adj.HomeRatingBefore, &adj.AwayRatingBefore, &adj.ProjectedSpread,
			&adj.ClosingSpread, &adj.ClosingSource, &adj.Difference, &adj.Adjustment,
			&adj.HomeRatingAfter, &adj.AwayRatingAfter, &adj.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan adjustment: %w", err)
		}
		adjustments = append(adjustments, &adj)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating adjustments: %w", err)
	}

	return adjustments, nil
}

// Count returns the number of ledger records
func (r *AdjustmentRepository) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.Pool.QueryRow(ctx, `SELECT COUNT(*) FROM game_adjustments`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count adjustments: %w", err)
	}
	return count, nil
}
