package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/ncaam/ratings-engine/internal/config"
	"github.com/ncaam/ratings-engine/internal/engine"
	"github.com/ncaam/ratings-engine/internal/repository"
)

// Scheduler manages the engine's background work:
// - Drain the staged game backlog on an interval
// - Replay and verify the adjustment ledger nightly
type Scheduler struct {
	cfg      *config.Config
	service  *engine.Service
	db       *repository.Database
	cron     *cron.Cron
	ticker   *time.Ticker
	stopChan chan struct{}
}

// NewScheduler creates a new scheduler instance
func NewScheduler(cfg *config.Config, service *engine.Service, db *repository.Database) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		service:  service,
		db:       db,
		cron:     cron.New(),
		stopChan: make(chan struct{}),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start(ctx context.Context) error {
	log.Info().Msg("Scheduler starting...")

	if s.cfg.EnableLedgerVerify {
		if _, err := s.cron.AddFunc(s.cfg.LedgerVerifyCron, func() {
			log.Info().Msg("Running nightly ledger verification...")
			if err := s.verifyLedger(ctx); err != nil {
				log.Error().Err(err).Msg("Ledger verification failed")
			}
		}); err != nil {
			return fmt.Errorf("failed to schedule ledger verification: %w", err)
		}

		s.cron.Start()
		log.Info().
			Str("schedule", s.cfg.LedgerVerifyCron).
			Msg("Nightly ledger verification scheduled")
	}

	interval := time.Duration(s.cfg.DrainInterval) * time.Second
	s.ticker = time.NewTicker(interval)
	log.Info().
		Dur("interval", interval).
		Msg("Backlog draining started")

	go s.drainLoop(ctx)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	log.Info().Msg("Stopping scheduler...")

	if s.cron != nil {
		s.cron.Stop()
	}

	if s.ticker != nil {
		s.ticker.Stop()
	}

	close(s.stopChan)
	log.Info().Msg("Scheduler stopped")
}

// drainLoop drains the staged backlog until stopped
func (s *Scheduler) drainLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Context cancelled, stopping backlog draining")
			return
		case <-s.stopChan:
			log.Info().Msg("Stop signal received, stopping backlog draining")
			return
		case <-s.ticker.C:
			if err := s.DrainOnce(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to drain game backlog")
			}
		}
	}
}

// DrainOnce runs one backlog pass: list staged games, process them in
// chronological order, and flag the ones that landed in the ledger. Skipped
// games stay staged so an operator can add overrides or lines and rerun.
func (s *Scheduler) DrainOnce(ctx context.Context) error {
	start := time.Now()

	backlog, err := s.db.Games.ListUnprocessed(ctx)
	if err != nil {
		return fmt.Errorf("failed to list staged games: %w", err)
	}

	if len(backlog) == 0 {
		log.Debug().Msg("No staged games to process")
		return nil
	}

	log.Info().Int("count", len(backlog)).Msg("Draining staged games")

	report := s.service.ProcessGames(ctx, backlog)

	// Already-processed skips are settled too: the ledger has them, so the
	// staging row has nothing left to wait for.
	settled := append([]string{}, report.ProcessedGameIDs...)
	for _, skip := range report.Skipped {
		if skip.Reason == engine.SkipAlreadyProcessed {
			settled = append(settled, skip.GameID)
		}
	}

	if err := s.db.Games.MarkProcessed(ctx, settled); err != nil {
		return fmt.Errorf("failed to flag drained games: %w", err)
	}

	log.Info().
		Str("run_id", report.RunID).
		Int("processed", report.Processed).
		Int("skipped", len(report.Skipped)).
		Int("failed", len(report.Failed)).
		Dur("duration", time.Since(start)).
		Msg("Backlog drain complete")

	return nil
}

// verifyLedger replays the ledger and logs any disagreement with the rating rows
func (s *Scheduler) verifyLedger(ctx context.Context) error {
	report, err := s.service.VerifyLedger(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify ledger: %w", err)
	}

	if report.Clean() {
		log.Info().
			Int("records", report.RecordsChecked).
			Msg("Ledger verification clean")
		return nil
	}

	for _, br := range report.ChainBreaks {
		log.Error().
			Str("game_id", br.GameID).
			Str("team", br.Team).
			Float64("expected", br.Expected).
			Float64("recorded", br.Recorded).
			Msg("Ledger chain break detected")
	}

	for _, fault := range report.RecordFaults {
		log.Error().
			Str("game_id", fault.GameID).
			Str("team", fault.Team).
			Float64("expected", fault.Expected).
			Float64("recorded", fault.Recorded).
			Msg("Ledger record arithmetic fault detected")
	}

	for _, drift := range report.Drifts {
		log.Error().
			Str("team", drift.Team).
			Float64("replayed", drift.Replayed).
			Float64("stored", drift.Stored).
			Msg("Rating drift detected")
	}

	return nil
}
