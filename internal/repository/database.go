package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/ncaam/ratings-engine/internal/models"
)

// Database holds the database connection pool and provides access to repositories
type Database struct {
	Pool *pgxpool.Pool

	// Repositories
	Ratings     *RatingRepository
	Adjustments *AdjustmentRepository
	Overrides   *OverrideRepository
	Games       *GameRepository
}

// Config holds database configuration
type Config struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	SSLMode  string
}

// NewDatabase creates a new database connection pool and initializes repositories
func NewDatabase(ctx context.Context, cfg Config) (*Database, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Database,
		cfg.SSLMode,
	)

	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config: %w", err)
	}

	poolConfig.MaxConns = 25
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = 30 * time.Minute
	poolConfig.HealthCheckPeriod = time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Info().
		Str("host", cfg.Host).
		Str("port", cfg.Port).
		Str("database", cfg.Database).
		Msg("Successfully connected to database")

	db := &Database{
		Pool: pool,
	}

	db.Ratings = &RatingRepository{db: db}
	db.Adjustments = &AdjustmentRepository{db: db}
	db.Overrides = &OverrideRepository{db: db}
	db.Games = &GameRepository{db: db}

	return db, nil
}

// Close closes the database connection pool
func (db *Database) Close() {
	if db.Pool != nil {
		db.Pool.Close()
		log.Info().Msg("Database connection pool closed")
	}
}

// Health checks if the database is healthy
func (db *Database) Health(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := db.Pool.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}

	return nil
}

// PoolStats returns database pool statistics
func (db *Database) PoolStats() map[string]interface{} {
	stat := db.Pool.Stat()
	return map[string]interface{}{
		"total_conns":    stat.TotalConns(),
		"acquired_conns": stat.AcquiredConns(),
		"idle_conns":     stat.IdleConns(),
		"max_conns":      stat.MaxConns(),
	}
}

// The Database satisfies store.Store by delegating to its repositories, so
// the engine runs against PostgreSQL and the in-memory store interchangeably.

// GetRating implements store.Store.
func (db *Database) GetRating(ctx context.Context, canonicalName string) (*models.TeamRating, error) {
	return db.Ratings.GetByName(ctx, canonicalName)
}

// ListRatings implements store.Store.
func (db *Database) ListRatings(ctx context.Context) ([]*models.TeamRating, error) {
	return db.Ratings.List(ctx)
}

// SeedRoster implements store.Store.
func (db *Database) SeedRoster(ctx context.Context, entries []models.RosterEntry, reset bool) error {
	return db.Ratings.SeedRoster(ctx, entries, reset)
}

// HasAdjustment implements store.Store.
func (db *Database) HasAdjustment(ctx context.Context, gameID string) (bool, error) {
	return db.Adjustments.Has(ctx, gameID)
}

// ApplyAdjustment implements store.Store.
func (db *Database) ApplyAdjustment(ctx context.Context, adj *models.GameAdjustment) error {
	return db.Adjustments.Apply(ctx, adj)
}

// ListAdjustments implements store.Store.
func (db *Database) ListAdjustments(ctx context.Context, season *int) ([]*models.GameAdjustment, error) {
	return db.Adjustments.List(ctx, season)
}
