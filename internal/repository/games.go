package repository

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ncaam/ratings-engine/internal/models"
)

// GameRepository handles the pending game staging table
type GameRepository struct {
	db *Database
}

// Upsert stages a game for processing, keyed by its stable game id. A restage
// of an already-processed game keeps the processed flag so the game is not
// drained twice.
func (r *GameRepository) Upsert(ctx context.Context, game *models.PendingGame) error {
	query := `
		INSERT INTO pending_games (
			game_id, season, game_date, home_team_raw, away_team_raw,
			neutral_site, closing_spread, closing_source, ingested_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW())
		ON CONFLICT (game_id) DO UPDATE SET
			season = EXCLUDED.season,
			game_date = EXCLUDED.game_date,
			home_team_raw = EXCLUDED.home_team_raw,
			away_team_raw = EXCLUDED.away_team_raw,
			neutral_site = EXCLUDED.neutral_site,
			closing_spread = EXCLUDED.closing_spread,
			closing_source = EXCLUDED.closing_source,
			updated_at = NOW()
		RETURNING id, processed, ingested_at, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		game.GameID, game.Season, game.GameDate, game.HomeTeamRaw, game.AwayTeamRaw,
		game.NeutralSite, game.ClosingSpread, game.ClosingSource,
	).Scan(&game.ID, &game.Processed, &game.IngestedAt, &game.CreatedAt, &game.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to stage game %s: %w", game.GameID, err)
	}

	return nil
}

// ListUnprocessed retrieves staged games not yet drained, oldest game date
// first with ingestion order breaking ties.
func (r *GameRepository) ListUnprocessed(ctx context.Context) ([]*models.PendingGame, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, game_id, season, game_date, home_team_raw, away_team_raw,
		       neutral_site, closing_spread, closing_source, processed,
		       ingested_at, created_at, updated_at
		FROM pending_games
		WHERE processed = FALSE
		ORDER BY game_date ASC, ingested_at ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list unprocessed games: %w", err)
	}
	defer rows.Close()

	var games []*models.PendingGame
	for rows.Next() {
		var game models.PendingGame
		err := rows.Scan(
			&game.ID, &game.GameID, &game.Season, &game.GameDate,
			&game.HomeTeamRaw, &game.AwayTeamRaw, &game.NeutralSite,
			&game.ClosingSpread, &game.ClosingSource, &game.Processed,
			&game.IngestedAt, &game.CreatedAt, &game.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pending game: %w", err)
		}
		games = append(games, &game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pending games: %w", err)
	}

	return games, nil
}

// MarkProcessed flags staged games as drained so the scheduler skips them on
// the next pass. Skipped games stay unprocessed for operator review.
func (r *GameRepository) MarkProcessed(ctx context.Context, gameIDs []string) error {
	if len(gameIDs) == 0 {
		return nil
	}

	result, err := r.db.Pool.Exec(ctx, `
		UPDATE pending_games
		SET processed = TRUE, updated_at = NOW()
		WHERE game_id = ANY($1)
	`, gameIDs)
	if err != nil {
		return fmt.Errorf("failed to mark games processed: %w", err)
	}

	log.Debug().
		Int64("marked", result.RowsAffected()).
		Int("requested", len(gameIDs)).
		Msg("Pending games marked processed")

	return nil
}

// CountUnprocessed returns the size of the backlog
func (r *GameRepository) CountUnprocessed(ctx context.Context) (int, error) {
	var count int
	err := r.db.Pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM pending_games WHERE processed = FALSE`,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unprocessed games: %w", err)
	}
	return count, nil
}
