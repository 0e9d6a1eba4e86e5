// Package engine applies market-driven rating adjustments. The processor
// walks one finished game through resolve → project → adjust → commit; the
// runner feeds it batches in chronological order. All mutation goes through a
// single sequential writer so a read-modify-write of two ratings never
// interleaves with another game's.
package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ncaam/ratings-engine/internal/metrics"
	"github.com/ncaam/ratings-engine/internal/models"
	"github.com/ncaam/ratings-engine/internal/rating"
	"github.com/ncaam/ratings-engine/internal/resolver"
	"github.com/ncaam/ratings-engine/internal/store"
)

// SkipReason is the machine-readable reason a game was not adjusted.
// Skips are expected data-quality events, never errors.
type SkipReason string

const (
	SkipAlreadyProcessed   SkipReason = "already-processed"
	SkipUnresolvedHomeTeam SkipReason = "unresolved-home-team"
	SkipUnresolvedAwayTeam SkipReason = "unresolved-away-team"
	SkipNoClosingLine      SkipReason = "no-closing-line"
)

// RatingCache is the optional read-side cache invalidated after each applied
// adjustment. Implemented by the redis cache; nil disables caching.
type RatingCache interface {
	Get(ctx context.Context, canonicalName string) (*models.TeamRating, bool, error)
	Set(ctx context.Context, rating *models.TeamRating) error
	Invalidate(ctx context.Context, canonicalNames ...string) error
}

// Params carries the tunable constants of the adjustment model.
type Params struct {
	HomeCourtAdvantage float64
	SpreadIncrement    float64
	RatingIncrement    float64
}

// DefaultParams returns the standard model constants.
func DefaultParams() Params {
	return Params{
		HomeCourtAdvantage: 3.0,
		SpreadIncrement:    rating.DefaultSpreadIncrement,
		RatingIncrement:    rating.DefaultRatingIncrement,
	}
}

// Outcome is the terminal state of processing one game: applied, or skipped
// with a reason. Hard errors are returned separately by Process.
type Outcome struct {
	GameID     string
	Processed  bool
	Skip       SkipReason
	Detail     string
	Adjustment *models.GameAdjustment
}

// Processor applies one game's rating adjustment at a time.
type Processor struct {
	store    store.Store
	resolver *resolver.Resolver
	cache    RatingCache
	params   Params
}

// NewProcessor creates a processor. cache may be nil.
func NewProcessor(st store.Store, res *resolver.Resolver, cache RatingCache, params Params) *Processor {
	return &Processor{
		store:    st,
		resolver: res,
		cache:    cache,
		params:   params,
	}
}

func skipped(gameID string, reason SkipReason, detail string) *Outcome {
	metrics.RecordSkip(string(reason))
	return &Outcome{GameID: gameID, Skip: reason, Detail: detail}
}

// Process runs the per-game state machine:
//
//	pending → resolved → projected → adjusted & logged
//
// or pending → skipped(already-processed | unresolved-team | no-closing-line).
// On any error before the atomic commit the store is untouched, so the caller
// can retry safely; the gameId check makes retries idempotent.
func (p *Processor) Process(ctx context.Context, game *models.PendingGame) (*Outcome, error) {
	// Idempotency gate: a game already in the ledger is a no-op.
	has, err := p.store.HasAdjustment(ctx, game.GameID)
	if err != nil {
		return nil, fmt.Errorf("failed to check ledger for game %s: %w", game.GameID, err)
	}
	if has {
		return skipped(game.GameID, SkipAlreadyProcessed, ""), nil
	}

	// Snapshot the roster. The single-writer model guarantees these ratings
	// are current for the duration of this game's processing.
	ratings, err := p.store.ListRatings(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list ratings: %w", err)
	}
	roster := make([]string, len(ratings))
	byName := make(map[string]*models.TeamRating, len(ratings))
	for i, r := range ratings {
		roster[i] = r.CanonicalName
		byName[r.CanonicalName] = r
	}

	homeMatch, err := p.resolver.Resolve(ctx, game.HomeTeamRaw, roster)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve home team for game %s: %w", game.GameID, err)
	}
	if homeMatch == nil {
		metrics.RecordResolution("")
		return skipped(game.GameID, SkipUnresolvedHomeTeam, game.HomeTeamRaw), nil
	}
	metrics.RecordResolution(homeMatch.Strategy)

	awayMatch, err := p.resolver.Resolve(ctx, game.AwayTeamRaw, roster)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve away team for game %s: %w", game.GameID, err)
	}
	if awayMatch == nil {
		metrics.RecordResolution("")
		return skipped(game.GameID, SkipUnresolvedAwayTeam, game.AwayTeamRaw), nil
	}
	metrics.RecordResolution(awayMatch.Strategy)

	if homeMatch.Canonical == awayMatch.Canonical {
		return nil, fmt.Errorf("game %s: both team names resolved to %q", game.GameID, homeMatch.Canonical)
	}

	home := byName[homeMatch.Canonical]
	away := byName[awayMatch.Canonical]

	projected := rating.Project(home.Rating, away.Rating, p.params.HomeCourtAdvantage,
		game.NeutralSite, p.params.SpreadIncrement)

	// Never adjust on a partial or estimated line.
	if !game.HasClosingLine() {
		return skipped(game.GameID, SkipNoClosingLine, ""), nil
	}
	closing := game.ClosingSpread.Float64

	difference, adjustment := rating.Adjustment(closing, projected, p.params.RatingIncrement)

	adj := &models.GameAdjustment{
		GameID:           game.GameID,
		Season:           game.Season,
		GameDate:         game.GameDate,
		HomeTeam:         homeMatch.Canonical,
		AwayTeam:         awayMatch.Canonical,
		NeutralSite:      game.NeutralSite,
		HomeRatingBefore: home.Rating,
		AwayRatingBefore: away.Rating,
		ProjectedSpread:  projected,
		ClosingSpread:    closing,
		ClosingSource:    game.ClosingSource,
		Difference:       difference,
		Adjustment:       adjustment,
		HomeRatingAfter:  home.Rating - adjustment,
		AwayRatingAfter:  away.Rating + adjustment,
	}

	if err := p.store.ApplyAdjustment(ctx, adj); err != nil {
		// A concurrent retry of the same batch may have landed first.
		if errors.Is(err, store.ErrDuplicateAdjustment) {
			return skipped(game.GameID, SkipAlreadyProcessed, ""), nil
		}
		return nil, fmt.Errorf("failed to apply adjustment for game %s: %w", game.GameID, err)
	}

	if p.cache != nil {
		if err := p.cache.Invalidate(ctx, adj.HomeTeam, adj.AwayTeam); err != nil {
			log.Warn().Err(err).Str("game_id", game.GameID).Msg("Failed to invalidate rating cache")
		}
	}

	metrics.RecordProcessed(adjustment)
	log.Info().
		Str("game_id", game.GameID).
		Str("home", adj.HomeTeam).
		Str("away", adj.AwayTeam).
		Float64("projected", projected).
		Float64("closing", closing).
		Float64("adjustment", adjustment).
		Msg("Adjustment applied")

	return &Outcome{GameID: game.GameID, Processed: true, Adjustment: adj}, nil
}
