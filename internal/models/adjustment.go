package models

import (
	"time"
)

// GameAdjustment is the immutable audit record written once per processed game.
// GameID is the idempotency key: a second attempt for the same game is a no-op.
//
// Ledger invariant: HomeRatingAfter = HomeRatingBefore - Adjustment and
// AwayRatingAfter = AwayRatingBefore + Adjustment, with before/after equal to
// the store's values immediately surrounding this record.
type GameAdjustment struct {
	ID     int    `db:"id"`
	GameID string `db:"game_id"`
	Season int    `db:"season"`

	GameDate    time.Time `db:"game_date"`
	HomeTeam    string    `db:"home_team"`
	AwayTeam    string    `db:"away_team"`
	NeutralSite bool      `db:"neutral_site"`

	HomeRatingBefore float64 `db:"home_rating_before"`
	AwayRatingBefore float64 `db:"away_rating_before"`
	ProjectedSpread  float64 `db:"projected_spread"`
	ClosingSpread    float64 `db:"closing_spread"`
	ClosingSource    string  `db:"closing_source"`
	Difference       float64 `db:"difference"`
	Adjustment       float64 `db:"adjustment"`
	HomeRatingAfter  float64 `db:"home_rating_after"`
	AwayRatingAfter  float64 `db:"away_rating_after"`

	CreatedAt time.Time `db:"created_at"`
}
