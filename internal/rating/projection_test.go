package rating

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProject_HomeFavoredIsNegative(t *testing.T) {
	// Stronger home team plus HCA: home favored, spread negative.
	spread := Project(20.0, 15.0, 2.5, false, DefaultSpreadIncrement)
	assert.Equal(t, -7.5, spread, "Home team should be favored by 7.5")
}

func TestProject_NeutralSiteDropsHCA(t *testing.T) {
	spread := Project(20.0, 15.0, 2.5, true, DefaultSpreadIncrement)
	assert.Equal(t, -5.0, spread, "Neutral site should exclude HCA")
}

func TestProject_RoadFavorite(t *testing.T) {
	// Away team strong enough to overcome HCA: spread positive.
	spread := Project(10.0, 18.0, 3.0, false, DefaultSpreadIncrement)
	assert.Equal(t, 5.0, spread, "Away team should be favored by 5")
}

func TestProject_RoundsToTenth(t *testing.T) {
	spread := Project(12.34, 10.0, 3.0, false, DefaultSpreadIncrement)
	assert.InDelta(t, -5.3, spread, 1e-9, "Spread should round to nearest tenth")
}

func TestProject_SignConvention(t *testing.T) {
	// For any homeRating > awayRating and hca >= 0, a non-neutral projection
	// is home-favored (negative).
	cases := []struct {
		home, away, hca float64
	}{
		{20.0, 15.0, 0},
		{20.0, 15.0, 2.5},
		{1.0, 0.5, 4.0},
		{30.0, -5.0, 3.0},
	}
	for _, tc := range cases {
		spread := Project(tc.home, tc.away, tc.hca, false, DefaultSpreadIncrement)
		assert.Negative(t, spread, "home=%v away=%v hca=%v", tc.home, tc.away, tc.hca)
	}
}

func TestAdjustment_HalfTheGap(t *testing.T) {
	difference, adjustment := Adjustment(-10.0, -7.5, DefaultRatingIncrement)
	assert.Equal(t, -2.5, difference)
	assert.Equal(t, -1.25, adjustment)
}

func TestAdjustment_RoundsToHundredth(t *testing.T) {
	_, adjustment := Adjustment(-7.0, -6.25, DefaultRatingIncrement)
	// difference = -0.75, half = -0.375, rounds to -0.38 (banker-free round half away).
	assert.InDelta(t, -0.38, adjustment, 1e-9)
}

func TestAdjustment_ZeroGap(t *testing.T) {
	difference, adjustment := Adjustment(-7.5, -7.5, DefaultRatingIncrement)
	assert.Zero(t, difference)
	assert.Zero(t, adjustment)
}

func TestRoundToIncrement(t *testing.T) {
	assert.InDelta(t, -7.5, RoundToIncrement(-7.45, 0.5), 1e-9)
	assert.InDelta(t, 3.1, RoundToIncrement(3.14, 0.1), 1e-9)
	assert.InDelta(t, 3.14, RoundToIncrement(3.14, 0), 1e-9, "Zero increment leaves value unchanged")
}
