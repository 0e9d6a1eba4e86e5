package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ncaam/ratings-engine/internal/models"
)

func TestVerifyLedger_CleanAfterProcessing(t *testing.T) {
	svc, ctx := newTestService(t)

	report := svc.ProcessGames(ctx, []*models.PendingGame{
		pendingGame("g1", 10, "Team A", "Team B", spread(-10.0)),
		pendingGame("g2", 11, "Team B", "Team A", spread(3.0)),
	})
	require.Equal(t, 2, report.Processed)

	verify, err := svc.VerifyLedger(ctx)
	require.NoError(t, err)
	assert.True(t, verify.Clean())
	assert.Equal(t, 2, verify.RecordsChecked)
}

func TestVerifyLedger_EmptyLedger(t *testing.T) {
	svc, ctx := newTestService(t)

	verify, err := svc.VerifyLedger(ctx)
	require.NoError(t, err)
	assert.True(t, verify.Clean())
	assert.Zero(t, verify.RecordsChecked)
}

// corruptStore serves a ledger whose records disagree with the rating rows,
// standing in for a store whose mutation and logging were not atomic.
type corruptStore struct {
	ratings []*models.TeamRating
	ledger  []*models.GameAdjustment
}

func (c *corruptStore) GetRating(_ context.Context, name string) (*models.TeamRating, error) {
	for _, r := range c.ratings {
		if r.CanonicalName == name {
			return r, nil
		}
	}
	return nil, nil
}

func (c *corruptStore) ListRatings(context.Context) ([]*models.TeamRating, error) {
	return c.ratings, nil
}

func (c *corruptStore) SeedRoster(context.Context, []models.RosterEntry, bool) error { return nil }

func (c *corruptStore) HasAdjustment(context.Context, string) (bool, error) { return false, nil }

func (c *corruptStore) ApplyAdjustment(context.Context, *models.GameAdjustment) error { return nil }

func (c *corruptStore) ListAdjustments(context.Context, *int) ([]*models.GameAdjustment, error) {
	return c.ledger, nil
}

func TestVerifyLedger_DetectsChainBreakAndDrift(t *testing.T) {
	ctx := context.Background()
	gameDate := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	st := &corruptStore{
		ratings: []*models.TeamRating{
			// Stored rating 22.0 disagrees with the ledger's 21.25.
			{CanonicalName: "Team A", Rating: 22.0, InitialRating: 20.0},
			{CanonicalName: "Team B", Rating: 13.75, InitialRating: 15.0},
		},
		ledger: []*models.GameAdjustment{
			{
				GameID:   "g1",
				GameDate: gameDate,
				HomeTeam: "Team A",
				AwayTeam: "Team B",
				// Before claims 19.0 but the replay from initial says 20.0.
				HomeRatingBefore: 19.0,
				AwayRatingBefore: 15.0,
				Adjustment:       -1.25,
				HomeRatingAfter:  21.25,
				AwayRatingAfter:  13.75,
			},
		},
	}

	svc := NewService(st, nil, nil, nil, testParams())
	verify, err := svc.VerifyLedger(ctx)
	require.NoError(t, err)

	assert.False(t, verify.Clean())
	require.Len(t, verify.ChainBreaks, 1)
	assert.Equal(t, "g1", verify.ChainBreaks[0].GameID)
	assert.Equal(t, "Team A", verify.ChainBreaks[0].Team)
	assert.Equal(t, 20.0, verify.ChainBreaks[0].Expected)
	assert.Equal(t, 19.0, verify.ChainBreaks[0].Recorded)

	require.Len(t, verify.Drifts, 1)
	assert.Equal(t, "Team A", verify.Drifts[0].Team)
	assert.Equal(t, 21.25, verify.Drifts[0].Replayed)
	assert.Equal(t, 22.0, verify.Drifts[0].Stored)

	// The doctored before value also breaks the record's own arithmetic:
	// 19.0 + 1.25 is 20.25, not the recorded 21.25.
	require.Len(t, verify.RecordFaults, 1)
	assert.Equal(t, "Team A", verify.RecordFaults[0].Team)
	assert.Equal(t, 20.25, verify.RecordFaults[0].Expected)
	assert.Equal(t, 21.25, verify.RecordFaults[0].Recorded)
}

func TestVerifyLedger_DetectsRecordArithmeticFault(t *testing.T) {
	ctx := context.Background()
	gameDate := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	// The chain is continuous and the stored ratings match the record's after
	// values, but the home after disagrees with before minus the adjustment.
	st := &corruptStore{
		ratings: []*models.TeamRating{
			{CanonicalName: "Team A", Rating: 22.0, InitialRating: 20.0},
			{CanonicalName: "Team B", Rating: 13.75, InitialRating: 15.0},
		},
		ledger: []*models.GameAdjustment{
			{
				GameID:           "g1",
				GameDate:         gameDate,
				HomeTeam:         "Team A",
				AwayTeam:         "Team B",
				HomeRatingBefore: 20.0,
				AwayRatingBefore: 15.0,
				Adjustment:       -1.25,
				HomeRatingAfter:  22.0, // 20.0 + 1.25 = 21.25
				AwayRatingAfter:  13.75,
			},
		},
	}

	svc := NewService(st, nil, nil, nil, testParams())
	verify, err := svc.VerifyLedger(ctx)
	require.NoError(t, err)

	assert.False(t, verify.Clean())
	assert.Empty(t, verify.ChainBreaks)
	assert.Empty(t, verify.Drifts)

	require.Len(t, verify.RecordFaults, 1)
	assert.Equal(t, "g1", verify.RecordFaults[0].GameID)
	assert.Equal(t, "Team A", verify.RecordFaults[0].Team)
	assert.Equal(t, 21.25, verify.RecordFaults[0].Expected)
	assert.Equal(t, 22.0, verify.RecordFaults[0].Recorded)
}
