package repository

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncaam/ratings-engine/internal/models"
)

func stagedGame(gameID string, day int) *models.PendingGame {
	return &models.PendingGame{
		GameID:        gameID,
		Season:        2026,
		GameDate:      time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC),
		HomeTeamRaw:   "Ohio State Buckeyes",
		AwayTeamRaw:   "Michigan Wolverines",
		ClosingSpread: sql.NullFloat64{Float64: -7.5, Valid: true},
		ClosingSource: string(models.SourceSharpBook),
	}
}

func TestGameRepository_UpsertAndBacklog(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	game := stagedGame("g1", 10)
	require.NoError(t, db.Games.Upsert(ctx, game))
	assert.NotZero(t, game.ID)
	assert.False(t, game.Processed)

	// Restaging the same game id updates in place
	game.ClosingSpread = sql.NullFloat64{Float64: -8.0, Valid: true}
	require.NoError(t, db.Games.Upsert(ctx, game))

	backlog, err := db.Games.ListUnprocessed(ctx)
	require.NoError(t, err)
	require.Len(t, backlog, 1)
	assert.Equal(t, -8.0, backlog[0].ClosingSpread.Float64)

	count, err := db.Games.CountUnprocessed(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestGameRepository_BacklogOrder(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	// Staged out of order; the backlog comes back game-date ascending
	require.NoError(t, db.Games.Upsert(ctx, stagedGame("g-late", 20)))
	require.NoError(t, db.Games.Upsert(ctx, stagedGame("g-early", 5)))

	backlog, err := db.Games.ListUnprocessed(ctx)
	require.NoError(t, err)
	require.Len(t, backlog, 2)
	assert.Equal(t, "g-early", backlog[0].GameID)
	assert.Equal(t, "g-late", backlog[1].GameID)
}

func TestGameRepository_MarkProcessed(t *testing.T) {
	db, ctx := setupTestDB(t)
	defer teardownTestDB(t, db)

	require.NoError(t, db.Games.Upsert(ctx, stagedGame("g1", 10)))
	require.NoError(t, db.Games.Upsert(ctx, stagedGame("g2", 11)))

	require.NoError(t, db.Games.MarkProcessed(ctx, []string{"g1"}))

	backlog, err := db.Games.ListUnprocessed(ctx)
	require.NoError(t, err)
	require.Len(t, backlog, 1)
	assert.Equal(t, "g2", backlog[0].GameID)

	// Restaging a processed game must not resurrect it in the backlog
	require.NoError(t, db.Games.Upsert(ctx, stagedGame("g1", 10)))
	backlog, err = db.Games.ListUnprocessed(ctx)
	require.NoError(t, err)
	assert.Len(t, backlog, 1)

	// Empty id list is a no-op
	require.NoError(t, db.Games.MarkProcessed(ctx, nil))
}
