// Package rating holds the pure spread-projection and adjustment math.
// Nothing here touches storage or does I/O.
package rating

import "math"

// Default increments. Spreads quote in tenths of a point, ratings carry two
// decimal places.
const (
	DefaultSpreadIncrement = 0.1
	DefaultRatingIncrement = 0.01
)

// Project computes the projected point spread for a matchup from two
// neutral-court ratings. Negative means the home team is favored by that many
// points. HCA is added to the home side's effective rating unless the game is
// on a neutral floor. The result is rounded to the given spread increment.
//
// Callers must resolve both teams before calling; there is no failure mode.
func Project(homeRating, awayRating, hca float64, neutralSite bool, increment float64) float64 {
	effectiveHCA := hca
	if neutralSite {
		effectiveHCA = 0
	}

	spread := -((homeRating - awayRating) + effectiveHCA)
	return RoundToIncrement(spread, increment)
}

// Adjustment derives the per-team rating nudge from the gap between the
// market's closing spread and our projection. Half the gap, rounded to the
// rating increment: the home team moves by -adjustment, the away team by
// +adjustment, keeping the rating pool zero-sum.
func Adjustment(closingSpread, projectedSpread, increment float64) (difference, adjustment float64) {
	difference = closingSpread - projectedSpread
	adjustment = RoundToIncrement(difference/2, increment)
	return difference, adjustment
}

// RoundToIncrement rounds v to the nearest multiple of increment.
// A zero or negative increment returns v unchanged.
func RoundToIncrement(v, increment float64) float64 {
	if increment <= 0 {
		return v
	}
	return math.Round(v/increment) * increment
}
