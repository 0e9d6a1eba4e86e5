// Command ratingctl is the operator CLI for the ratings engine: seeding the
// roster, staging and draining games, managing name overrides, and verifying
// the adjustment ledger. Every command validates connectivity before touching
// data and reports per-item outcomes for production safety.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/ncaam/ratings-engine/internal/config"
	"github.com/ncaam/ratings-engine/internal/engine"
	"github.com/ncaam/ratings-engine/internal/lines"
	"github.com/ncaam/ratings-engine/internal/models"
	"github.com/ncaam/ratings-engine/internal/repository"
	"github.com/ncaam/ratings-engine/internal/resolver"
	"github.com/ncaam/ratings-engine/internal/scheduler"
)

func usage() {
	fmt.Fprintf(os.Stderr, `Usage: ratingctl <command> [flags]

Commands:
  seed      -file <roster.json> [-reset]   Seed the roster from a JSON snapshot
  stage     -file <games.json>             Stage finished games for processing
  process                                  Drain the staged backlog once
  verify                                   Replay the ledger and report drift
  ratings                                  Print current ratings, best first
  history   [-season <year>]               Print the adjustment ledger
  override  add <source> <canonical>       Map a source spelling to a roster name
  override  rm <source>                    Remove an override
  override  list                           Print all overrides
`)
	os.Exit(2)
}

func main() {
	if len(os.Args) < 2 {
		usage()
	}

	ctx := context.Background()
	cfg := config.MustLoad()

	db, err := repository.NewDatabase(ctx, repository.Config{
		Host:     cfg.DatabaseHost,
		Port:     fmt.Sprintf("%d", cfg.DatabasePort),
		User:     cfg.DatabaseUser,
		Password: cfg.DatabasePassword,
		Database: cfg.DatabaseName,
		SSLMode:  cfg.DatabaseSSLMode,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	if err := db.Health(ctx); err != nil {
		log.Fatal().Err(err).Msg("Database health check failed")
	}

	svc := engine.NewService(
		db,
		resolver.NewResolver(db.Overrides),
		nil,
		lines.NewExtractor(cfg.SharpBook, cfg.ConsensusBookList()),
		engine.Params{
			HomeCourtAdvantage: cfg.HomeCourtAdvantage,
			SpreadIncrement:    cfg.SpreadIncrement,
			RatingIncrement:    cfg.RatingIncrement,
		},
	)

	switch os.Args[1] {
	case "seed":
		runSeed(ctx, svc, os.Args[2:])
	case "stage":
		runStage(ctx, db, os.Args[2:])
	case "process":
		runProcess(ctx, cfg, svc, db)
	case "verify":
		runVerify(ctx, svc)
	case "ratings":
		runRatings(ctx, svc)
	case "history":
		runHistory(ctx, svc, os.Args[2:])
	case "override":
		runOverride(ctx, db, os.Args[2:])
	default:
		usage()
	}
}

func runSeed(ctx context.Context, svc *engine.Service, args []string) {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	file := fs.String("file", "", "path to roster JSON snapshot")
	reset := fs.Bool("reset", false, "wipe the existing roster and ledger first")
	fs.Parse(args)

	if *file == "" {
		log.Fatal().Msg("seed requires -file")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read roster file")
	}

	var entries []models.RosterEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse roster file")
	}
	if len(entries) == 0 {
		log.Fatal().Msg("Roster file contains no teams")
	}

	if err := svc.SeedRoster(ctx, entries, *reset); err != nil {
		log.Fatal().Err(err).Msg("Roster seed failed")
	}
	log.Info().Int("teams", len(entries)).Msg("Roster seed complete")
}

func runStage(ctx context.Context, db *repository.Database, args []string) {
	fs := flag.NewFlagSet("stage", flag.ExitOnError)
	file := fs.String("file", "", "path to games JSON file")
	fs.Parse(args)

	if *file == "" {
		log.Fatal().Msg("stage requires -file")
	}

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read games file")
	}

	var inputs []models.GameInput
	if err := json.Unmarshal(data, &inputs); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse games file")
	}

	staged := 0
	for _, input := range inputs {
		if input.GameID == "" {
			log.Error().Str("home", input.HomeTeam).Str("away", input.AwayTeam).Msg("Game missing id. Skipping.")
			continue
		}
		game, err := input.ToPendingGame()
		if err != nil {
			log.Error().Err(err).Str("game_id", input.GameID).Msg("Invalid game input. Skipping.")
			continue
		}
		if err := db.Games.Upsert(ctx, game); err != nil {
			log.Error().Err(err).Str("game_id", input.GameID).Msg("Failed to stage game. Skipping.")
			continue
		}
		staged++
	}

	log.Info().Int("staged", staged).Int("total", len(inputs)).Msg("Game staging complete")
}

func runProcess(ctx context.Context, cfg *config.Config, svc *engine.Service, db *repository.Database) {
	sched := scheduler.NewScheduler(cfg, svc, db)
	if err := sched.DrainOnce(ctx); err != nil {
		log.Fatal().Err(err).Msg("Backlog drain failed")
	}
}

func runVerify(ctx context.Context, svc *engine.Service) {
	report, err := svc.VerifyLedger(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Ledger verification failed")
	}

	if report.Clean() {
		fmt.Printf("ledger clean: %d records verified\n", report.RecordsChecked)
		return
	}

	for _, br := range report.ChainBreaks {
		fmt.Printf("chain break: game %s team %q recorded before %.2f, replay says %.2f\n",
			br.GameID, br.Team, br.Recorded, br.Expected)
	}
	for _, fault := range report.RecordFaults {
		fmt.Printf("record fault: game %s team %q recorded after %.2f, arithmetic says %.2f\n",
			fault.GameID, fault.Team, fault.Recorded, fault.Expected)
	}
	for _, drift := range report.Drifts {
		fmt.Printf("drift: team %q stored %.2f, replay says %.2f\n",
			drift.Team, drift.Stored, drift.Replayed)
	}
	os.Exit(1)
}

func runRatings(ctx context.Context, svc *engine.Service) {
	ratings, err := svc.ListRatings(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list ratings")
	}

	for i, rating := range ratings {
		fmt.Printf("%4d  %-30s  %7.2f  (%d games)\n",
			i+1, rating.CanonicalName, rating.Rating, rating.GamesProcessed)
	}
}

func runHistory(ctx context.Context, svc *engine.Service, args []string) {
	fs := flag.NewFlagSet("history", flag.ExitOnError)
	season := fs.Int("season", 0, "filter to one season")
	fs.Parse(args)

	var filter *int
	if *season != 0 {
		filter = season
	}

	history, err := svc.GetAdjustmentHistory(ctx, filter)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to list adjustment history")
	}

	for _, adj := range history {
		fmt.Printf("%s  %s  %s vs %s  proj %+.1f close %+.1f adj %+.2f\n",
			adj.GameDate.Format("2006-01-02"), adj.GameID,
			adj.HomeTeam, adj.AwayTeam,
			adj.ProjectedSpread, adj.ClosingSpread, adj.Adjustment)
	}
}

func runOverride(ctx context.Context, db *repository.Database, args []string) {
	if len(args) < 1 {
		usage()
	}

	switch args[0] {
	case "add":
		if len(args) != 3 {
			log.Fatal().Msg("override add requires <source> <canonical>")
		}
		// Refuse overrides that point at a name missing from the roster;
		// a bad target would hard-fail every game naming this spelling.
		if _, err := db.Ratings.GetByName(ctx, args[2]); err != nil {
			log.Fatal().Err(err).Str("canonical", args[2]).Msg("Override target is not on the roster")
		}
		override, err := db.Overrides.Upsert(ctx, args[1], args[2])
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to save override")
		}
		log.Info().
			Str("source", override.SourceName).
			Str("canonical", override.CanonicalName).
			Msg("Override saved")
	case "rm":
		if len(args) != 2 {
			log.Fatal().Msg("override rm requires <source>")
		}
		deleted, err := db.Overrides.Delete(ctx, args[1])
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to delete override")
		}
		if !deleted {
			log.Warn().Str("source", args[1]).Msg("No override found")
			return
		}
		log.Info().Str("source", args[1]).Msg("Override removed")
	case "list":
		overrides, err := db.Overrides.List(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to list overrides")
		}
		for _, override := range overrides {
			fmt.Printf("%-30s -> %s\n", override.SourceName, override.CanonicalName)
		}
	default:
		usage()
	}
}
