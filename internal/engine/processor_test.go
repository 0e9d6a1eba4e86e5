package engine

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncaam/ratings-engine/internal/models"
	"github.com/ncaam/ratings-engine/internal/resolver"
	"github.com/ncaam/ratings-engine/internal/store"
)

func testParams() Params {
	return Params{
		HomeCourtAdvantage: 2.5,
		SpreadIncrement:    0.1,
		RatingIncrement:    0.01,
	}
}

func newTestProcessor(t *testing.T) (*Processor, *store.MemoryStore, context.Context) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemoryStore()
	err := st.SeedRoster(ctx, []models.RosterEntry{
		{TeamName: "Team A", RatingSeed: 20.0},
		{TeamName: "Team B", RatingSeed: 15.0},
		{TeamName: "Team C", RatingSeed: 10.0},
	}, false)
	require.NoError(t, err)

	proc := NewProcessor(st, resolver.NewResolver(nil), nil, testParams())
	return proc, st, ctx
}

func pendingGame(gameID string, day int, home, away string, closing *float64) *models.PendingGame {
	game := &models.PendingGame{
		GameID:        gameID,
		Season:        2026,
		GameDate:      time.Date(2026, 1, day, 19, 0, 0, 0, time.UTC),
		HomeTeamRaw:   home,
		AwayTeamRaw:   away,
		ClosingSource: string(models.SourceSharpBook),
	}
	if closing != nil {
		game.ClosingSpread = sql.NullFloat64{Float64: *closing, Valid: true}
	}
	return game
}

func spread(v float64) *float64 { return &v }

func TestProcess_EndToEnd(t *testing.T) {
	proc, st, ctx := newTestProcessor(t)

	// hca=2.5, home 20.0 vs away 15.0, closing -10.0:
	// projected -7.5, difference -2.5, adjustment -1.25.
	outcome, err := proc.Process(ctx, pendingGame("g1", 10, "Team A", "Team B", spread(-10.0)))
	require.NoError(t, err)
	require.True(t, outcome.Processed)

	adj := outcome.Adjustment
	require.NotNil(t, adj)
	assert.Equal(t, -7.5, adj.ProjectedSpread)
	assert.Equal(t, -2.5, adj.Difference)
	assert.Equal(t, -1.25, adj.Adjustment)
	assert.Equal(t, 20.0, adj.HomeRatingBefore)
	assert.Equal(t, 15.0, adj.AwayRatingBefore)
	assert.Equal(t, 21.25, adj.HomeRatingAfter)
	assert.Equal(t, 13.75, adj.AwayRatingAfter)

	home, err := st.GetRating(ctx, "Team A")
	require.NoError(t, err)
	away, err := st.GetRating(ctx, "Team B")
	require.NoError(t, err)
	assert.Equal(t, 21.25, home.Rating)
	assert.Equal(t, 13.75, away.Rating)
	assert.Equal(t, 1, home.GamesProcessed)
	assert.Equal(t, 1, away.GamesProcessed)
}

func TestProcess_ZeroSum(t *testing.T) {
	proc, _, ctx := newTestProcessor(t)

	outcome, err := proc.Process(ctx, pendingGame("g1", 10, "Team A", "Team B", spread(-4.0)))
	require.NoError(t, err)
	require.True(t, outcome.Processed)

	adj := outcome.Adjustment
	homeDelta := adj.HomeRatingAfter - adj.HomeRatingBefore
	awayDelta := adj.AwayRatingAfter - adj.AwayRatingBefore
	assert.InDelta(t, -awayDelta, homeDelta, 1e-9, "Rating changes must be zero-sum")
}

func TestProcess_Idempotent(t *testing.T) {
	proc, st, ctx := newTestProcessor(t)

	game := pendingGame("g1", 10, "Team A", "Team B", spread(-10.0))
	outcome, err := proc.Process(ctx, game)
	require.NoError(t, err)
	require.True(t, outcome.Processed)

	again, err := proc.Process(ctx, game)
	require.NoError(t, err)
	assert.False(t, again.Processed)
	assert.Equal(t, SkipAlreadyProcessed, again.Skip)

	home, err := st.GetRating(ctx, "Team A")
	require.NoError(t, err)
	assert.Equal(t, 21.25, home.Rating, "Reprocessing must not double-adjust")
	assert.Equal(t, 1, home.GamesProcessed)

	ledger, err := st.ListAdjustments(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, ledger, 1, "Exactly one ledger record per game")
}

func TestProcess_SkipUnresolvedTeam(t *testing.T) {
	proc, st, ctx := newTestProcessor(t)

	outcome, err := proc.Process(ctx, pendingGame("g1", 10, "Nowhere University", "Team B", spread(-3.0)))
	require.NoError(t, err)
	assert.False(t, outcome.Processed)
	assert.Equal(t, SkipUnresolvedHomeTeam, outcome.Skip)
	assert.Equal(t, "Nowhere University", outcome.Detail, "Skip must surface the raw name for curation")

	outcome, err = proc.Process(ctx, pendingGame("g2", 10, "Team A", "Nowhere University", spread(-3.0)))
	require.NoError(t, err)
	assert.Equal(t, SkipUnresolvedAwayTeam, outcome.Skip)

	// Nothing was mutated.
	home, err := st.GetRating(ctx, "Team A")
	require.NoError(t, err)
	assert.Equal(t, 20.0, home.Rating)
	assert.Zero(t, home.GamesProcessed)
}

func TestProcess_SkipNoClosingLine(t *testing.T) {
	proc, st, ctx := newTestProcessor(t)

	outcome, err := proc.Process(ctx, pendingGame("g1", 10, "Team A", "Team B", nil))
	require.NoError(t, err)
	assert.False(t, outcome.Processed)
	assert.Equal(t, SkipNoClosingLine, outcome.Skip)

	home, err := st.GetRating(ctx, "Team A")
	require.NoError(t, err)
	assert.Equal(t, 20.0, home.Rating, "A game is never adjusted on a missing line")
}

func TestProcess_NeutralSite(t *testing.T) {
	proc, _, ctx := newTestProcessor(t)

	game := pendingGame("g1", 10, "Team A", "Team B", spread(-5.0))
	game.NeutralSite = true
	outcome, err := proc.Process(ctx, game)
	require.NoError(t, err)
	require.True(t, outcome.Processed)

	// Neutral floor: projected -(20-15) = -5.0, market agrees, no adjustment.
	assert.Equal(t, -5.0, outcome.Adjustment.ProjectedSpread)
	assert.Zero(t, outcome.Adjustment.Adjustment)
}

func TestProcess_SameTeamBothSidesIsHardError(t *testing.T) {
	proc, _, ctx := newTestProcessor(t)

	_, err := proc.Process(ctx, pendingGame("g1", 10, "Team A", "team a", spread(-3.0)))
	assert.Error(t, err)
}

func TestProcess_ResolvesRawSpellings(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	require.NoError(t, st.SeedRoster(ctx, []models.RosterEntry{
		{TeamName: "Ohio St.", RatingSeed: 25.0},
		{TeamName: "Michigan", RatingSeed: 22.0},
	}, false))
	proc := NewProcessor(st, resolver.NewResolver(nil), nil, testParams())

	outcome, err := proc.Process(ctx, pendingGame("g1", 10, "Ohio State Buckeyes", "Michigan Wolverines", spread(-6.0)))
	require.NoError(t, err)
	require.True(t, outcome.Processed)
	assert.Equal(t, "Ohio St.", outcome.Adjustment.HomeTeam)
	assert.Equal(t, "Michigan", outcome.Adjustment.AwayTeam)
}
