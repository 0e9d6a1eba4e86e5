package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/ncaam/ratings-engine/internal/lines"
	"github.com/ncaam/ratings-engine/internal/metrics"
	"github.com/ncaam/ratings-engine/internal/models"
	"github.com/ncaam/ratings-engine/internal/rating"
	"github.com/ncaam/ratings-engine/internal/resolver"
	"github.com/ncaam/ratings-engine/internal/store"
)

// Service is the read/write surface the presentation and API layers consume.
// Writes funnel through the single sequential processor; reads hit the cache
// first and tolerate staleness.
type Service struct {
	store     store.Store
	resolver  *resolver.Resolver
	cache     RatingCache
	extractor *lines.Extractor
	runner    *Runner
	params    Params
}

// NewService wires the engine together. cache may be nil.
func NewService(st store.Store, res *resolver.Resolver, cache RatingCache, extractor *lines.Extractor, params Params) *Service {
	processor := NewProcessor(st, res, cache, params)
	return &Service{
		store:     st,
		resolver:  res,
		cache:     cache,
		extractor: extractor,
		runner:    NewRunner(processor),
		params:    params,
	}
}

// GetCurrentRating returns the current rating row for a canonical team name,
// read through the cache when one is configured.
func (s *Service) GetCurrentRating(ctx context.Context, canonicalName string) (*models.TeamRating, error) {
	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, canonicalName)
		if err != nil {
			log.Warn().Err(err).Str("team", canonicalName).Msg("Rating cache read failed")
		} else if ok {
			metrics.RecordCacheHit()
			return cached, nil
		} else {
			metrics.RecordCacheMiss()
		}
	}

	current, err := s.store.GetRating(ctx, canonicalName)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, current); err != nil {
			log.Warn().Err(err).Str("team", canonicalName).Msg("Rating cache write failed")
		}
	}
	return current, nil
}

// Project resolves two raw team names and returns the projected spread for a
// future matchup at current ratings. Returns store.ErrTeamNotFound when
// either name fails to resolve.
func (s *Service) Project(ctx context.Context, homeTeam, awayTeam string, neutralSite bool) (float64, error) {
	ratings, err := s.store.ListRatings(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list ratings: %w", err)
	}
	roster := make([]string, len(ratings))
	byName := make(map[string]float64, len(ratings))
	for i, r := range ratings {
		roster[i] = r.CanonicalName
		byName[r.CanonicalName] = r.Rating
	}

	homeMatch, err := s.resolver.Resolve(ctx, homeTeam, roster)
	if err != nil {
		return 0, err
	}
	if homeMatch == nil {
		return 0, fmt.Errorf("home team %q: %w", homeTeam, store.ErrTeamNotFound)
	}
	awayMatch, err := s.resolver.Resolve(ctx, awayTeam, roster)
	if err != nil {
		return 0, err
	}
	if awayMatch == nil {
		return 0, fmt.Errorf("away team %q: %w", awayTeam, store.ErrTeamNotFound)
	}

	return rating.Project(byName[homeMatch.Canonical], byName[awayMatch.Canonical],
		s.params.HomeCourtAdvantage, neutralSite, s.params.SpreadIncrement), nil
}

// ProcessGames runs one batch through the runner.
func (s *Service) ProcessGames(ctx context.Context, games []*models.PendingGame) *BatchReport {
	return s.runner.ProcessGames(ctx, games)
}

// GetAdjustmentHistory returns the ledger in date order, optionally filtered
// to one season.
func (s *Service) GetAdjustmentHistory(ctx context.Context, season *int) ([]*models.GameAdjustment, error) {
	return s.store.ListAdjustments(ctx, season)
}

// ListRatings returns all current ratings, best first.
func (s *Service) ListRatings(ctx context.Context) ([]*models.TeamRating, error) {
	return s.store.ListRatings(ctx)
}

// SeedRoster initializes the roster from a preseason snapshot. Re-seeding a
// populated store requires reset, which wipes ratings and ledger first.
func (s *Service) SeedRoster(ctx context.Context, entries []models.RosterEntry, reset bool) error {
	if err := s.store.SeedRoster(ctx, entries, reset); err != nil {
		return err
	}
	if s.cache != nil {
		names := make([]string, len(entries))
		for i, entry := range entries {
			names[i] = entry.TeamName
		}
		if err := s.cache.Invalidate(ctx, names...); err != nil {
			log.Warn().Err(err).Msg("Failed to invalidate rating cache after seed")
		}
	}
	log.Info().Int("teams", len(entries)).Bool("reset", reset).Msg("Roster seeded")
	return nil
}

// ExtractClosingLine resolves the raw home-team name and picks a closing
// spread from bookmaker quotes under the given policy. Convenience for the
// staging path; the result's nil spread means "unavailable".
func (s *Service) ExtractClosingLine(ctx context.Context, quotes []models.BookQuote, homeTeamRaw string, source models.ClosingLineSource) (models.ClosingLineResult, error) {
	ratings, err := s.store.ListRatings(ctx)
	if err != nil {
		return models.ClosingLineResult{}, fmt.Errorf("failed to list ratings: %w", err)
	}
	roster := make([]string, len(ratings))
	for i, r := range ratings {
		roster[i] = r.CanonicalName
	}

	match, err := s.resolver.Resolve(ctx, homeTeamRaw, roster)
	if err != nil {
		return models.ClosingLineResult{}, err
	}
	if match == nil {
		return models.ClosingLineResult{}, fmt.Errorf("home team %q: %w", homeTeamRaw, store.ErrTeamNotFound)
	}

	return s.extractor.Extract(quotes, match.Canonical, source)
}
