package engine

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/ncaam/ratings-engine/internal/metrics"
	"github.com/ncaam/ratings-engine/internal/models"
)

// SkippedGame records why one game in a batch was not adjusted.
type SkippedGame struct {
	GameID string     `json:"gameId"`
	Reason SkipReason `json:"reason"`
	Detail string     `json:"detail,omitempty"`
}

// FailedGame records a hard failure for one game. Unlike a skip, a failure is
// unexpected; the batch still continues past it.
type FailedGame struct {
	GameID string `json:"gameId"`
	Error  string `json:"error"`
}

// BatchReport is the aggregate result of one runner pass.
type BatchReport struct {
	RunID            string        `json:"runId"`
	Processed        int           `json:"processed"`
	ProcessedGameIDs []string      `json:"processedGameIds"`
	Skipped          []SkippedGame `json:"skipped"`
	Failed           []FailedGame  `json:"failed"`
	Duration         time.Duration `json:"duration"`
}

// Runner orders a batch of newly available games chronologically and feeds
// them one at a time into the processor. Each game's adjustment depends on
// both teams' current ratings, so processing out of date order would produce
// a different, non-reproducible final rating set. Ties keep ingestion order.
type Runner struct {
	processor *Processor
}

// NewRunner creates a runner over the given processor.
func NewRunner(processor *Processor) *Runner {
	return &Runner{processor: processor}
}

// ProcessGames runs one batch. Games are sorted by date ascending before
// processing; skips and per-game failures never abort the batch. Resubmitting
// an overlapping batch is safe: already-processed games skip.
func (r *Runner) ProcessGames(ctx context.Context, games []*models.PendingGame) *BatchReport {
	start := time.Now()
	report := &BatchReport{RunID: uuid.NewString()}

	ordered := make([]*models.PendingGame, len(games))
	copy(ordered, games)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].GameDate.Before(ordered[j].GameDate)
	})

	log.Info().
		Str("run_id", report.RunID).
		Int("games", len(ordered)).
		Msg("Batch processing started")

	for _, game := range ordered {
		if ctx.Err() != nil {
			log.Warn().Str("run_id", report.RunID).Msg("Batch interrupted by context cancellation")
			break
		}

		outcome, err := r.processor.Process(ctx, game)
		if err != nil {
			metrics.GameFailuresTotal.Inc()
			log.Error().Err(err).Str("game_id", game.GameID).Msg("Game processing failed")
			report.Failed = append(report.Failed, FailedGame{GameID: game.GameID, Error: err.Error()})
			continue
		}

		if outcome.Processed {
			report.Processed++
			report.ProcessedGameIDs = append(report.ProcessedGameIDs, outcome.GameID)
			continue
		}

		if outcome.Skip == SkipUnresolvedHomeTeam || outcome.Skip == SkipUnresolvedAwayTeam {
			log.Warn().
				Str("game_id", game.GameID).
				Str("raw_name", outcome.Detail).
				Msg("Team name unresolved; add an override to process this game")
		}
		report.Skipped = append(report.Skipped, SkippedGame{
			GameID: outcome.GameID,
			Reason: outcome.Skip,
			Detail: outcome.Detail,
		})
	}

	report.Duration = time.Since(start)
	metrics.RecordBatch(report.Duration.Seconds())

	log.Info().
		Str("run_id", report.RunID).
		Int("processed", report.Processed).
		Int("skipped", len(report.Skipped)).
		Int("failed", len(report.Failed)).
		Dur("duration", report.Duration).
		Msg("Batch processing complete")

	return report
}
