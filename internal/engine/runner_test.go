package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncaam/ratings-engine/internal/models"
	"github.com/ncaam/ratings-engine/internal/store"
)

func newTestRunner(t *testing.T) (*Runner, *store.MemoryStore, context.Context) {
	t.Helper()
	proc, st, ctx := newTestProcessor(t)
	return NewRunner(proc), st, ctx
}

func TestProcessGames_RestoresChronologicalOrder(t *testing.T) {
	runner, st, ctx := newTestRunner(t)

	// Submitted out of order: the Jan 12 game arrives first.
	games := []*models.PendingGame{
		pendingGame("late", 12, "Team A", "Team C", spread(-9.0)),
		pendingGame("early", 10, "Team A", "Team B", spread(-10.0)),
	}

	report := runner.ProcessGames(ctx, games)
	assert.Equal(t, 2, report.Processed)
	assert.Equal(t, []string{"early", "late"}, report.ProcessedGameIDs,
		"Runner must process by game date, not submission order")

	// The late game's before ratings must chain off the early game's after.
	ledger, err := st.ListAdjustments(ctx, nil)
	require.NoError(t, err)
	require.Len(t, ledger, 2)
	assert.Equal(t, "early", ledger[0].GameID)
	assert.Equal(t, ledger[0].HomeRatingAfter, ledger[1].HomeRatingBefore)
}

func TestProcessGames_OrderChangesOutcome(t *testing.T) {
	// Two games share Team A. Processing them in date order yields a
	// different (correct) final rating set than reversed order would: the
	// second game's projection uses the first game's adjusted rating.
	runner, st, ctx := newTestRunner(t)

	games := []*models.PendingGame{
		pendingGame("g1", 10, "Team A", "Team B", spread(-10.0)), // A: 20.0 -> 21.25
		pendingGame("g2", 11, "Team A", "Team C", spread(-13.8)),
	}
	report := runner.ProcessGames(ctx, games)
	require.Equal(t, 2, report.Processed)

	// g2: raw gap -((21.25-10)+2.5) = -13.75 rounds to -13.8 at the spread
	// increment, market agrees, no movement. Processed in reverse order the
	// projection would have been -12.5 and the rating would keep moving.
	ledger, err := st.ListAdjustments(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 21.25, ledger[1].HomeRatingBefore)
	assert.Equal(t, -13.8, ledger[1].ProjectedSpread)
	assert.Zero(t, ledger[1].Adjustment)

	home, err := st.GetRating(ctx, "Team A")
	require.NoError(t, err)
	assert.Equal(t, 21.25, home.Rating)
}

func TestProcessGames_ResubmissionIsIdempotent(t *testing.T) {
	runner, st, ctx := newTestRunner(t)

	games := []*models.PendingGame{
		pendingGame("g1", 10, "Team A", "Team B", spread(-10.0)),
		pendingGame("g2", 11, "Team B", "Team C", spread(-2.0)),
	}

	first := runner.ProcessGames(ctx, games)
	require.Equal(t, 2, first.Processed)

	ratingsAfterFirst, err := st.ListRatings(ctx)
	require.NoError(t, err)

	second := runner.ProcessGames(ctx, games)
	assert.Zero(t, second.Processed)
	require.Len(t, second.Skipped, 2)
	for _, skip := range second.Skipped {
		assert.Equal(t, SkipAlreadyProcessed, skip.Reason)
	}

	ratingsAfterSecond, err := st.ListRatings(ctx)
	require.NoError(t, err)
	for i := range ratingsAfterFirst {
		assert.Equal(t, ratingsAfterFirst[i].Rating, ratingsAfterSecond[i].Rating,
			"Resubmission must leave final ratings identical")
	}

	ledger, err := st.ListAdjustments(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, ledger, 2, "Exactly one adjustment per game id")
}

func TestProcessGames_ContinuesPastSkips(t *testing.T) {
	runner, _, ctx := newTestRunner(t)

	games := []*models.PendingGame{
		pendingGame("g1", 10, "Unknown Team", "Team B", spread(-3.0)),
		pendingGame("g2", 11, "Team A", "Team B", nil),
		pendingGame("g3", 12, "Team A", "Team C", spread(-12.0)),
	}

	report := runner.ProcessGames(ctx, games)
	assert.Equal(t, 1, report.Processed)
	require.Len(t, report.Skipped, 2)
	assert.Equal(t, SkipUnresolvedHomeTeam, report.Skipped[0].Reason)
	assert.Equal(t, SkipNoClosingLine, report.Skipped[1].Reason)
	assert.NotEmpty(t, report.RunID)
}

func TestProcessGames_EmptyBatch(t *testing.T) {
	runner, _, ctx := newTestRunner(t)

	report := runner.ProcessGames(ctx, nil)
	assert.Zero(t, report.Processed)
	assert.Empty(t, report.Skipped)
	assert.Empty(t, report.Failed)
}

func TestProcessGames_DateTiesKeepIngestionOrder(t *testing.T) {
	runner, _, ctx := newTestRunner(t)

	games := []*models.PendingGame{
		pendingGame("first", 10, "Team A", "Team B", spread(-10.0)),
		pendingGame("second", 10, "Team A", "Team C", spread(-14.0)),
	}

	report := runner.ProcessGames(ctx, games)
	require.Equal(t, 2, report.Processed)
	assert.Equal(t, []string{"first", "second"}, report.ProcessedGameIDs)
}
