package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"

	"github.com/ncaam/ratings-engine/internal/models"
)

// OverrideRepository handles manual name override database operations.
// Lookup satisfies resolver.OverrideSource.
type OverrideRepository struct {
	db *Database
}

// Upsert creates or replaces the override for a source name. Source names are
// stored lowercased so Lookup is case-insensitive.
func (r *OverrideRepository) Upsert(ctx context.Context, sourceName, canonicalName string) (*models.NameOverride, error) {
	query := `
		INSERT INTO name_overrides (source_name, canonical_name)
		VALUES ($1, $2)
		ON CONFLICT (source_name) DO UPDATE SET
			canonical_name = EXCLUDED.canonical_name,
			updated_at = NOW()
		RETURNING id, source_name, canonical_name, created_at, updated_at
	`

	var override models.NameOverride
	err := r.db.Pool.QueryRow(ctx, query,
		strings.ToLower(strings.TrimSpace(sourceName)), canonicalName,
	).Scan(
		&override.ID, &override.SourceName, &override.CanonicalName,
		&override.CreatedAt, &override.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert override for %q: %w", sourceName, err)
	}

	log.Info().
		Str("source_name", override.SourceName).
		Str("canonical_name", override.CanonicalName).
		Msg("Name override saved")

	return &override, nil
}

// Delete removes the override for a source name. Returns false when no
// override existed.
func (r *OverrideRepository) Delete(ctx context.Context, sourceName string) (bool, error) {
	result, err := r.db.Pool.Exec(ctx,
		`DELETE FROM name_overrides WHERE source_name = $1`,
		strings.ToLower(strings.TrimSpace(sourceName)),
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete override for %q: %w", sourceName, err)
	}
	return result.RowsAffected() > 0, nil
}

// List retrieves all overrides ordered by source name
func (r *OverrideRepository) List(ctx context.Context) ([]*models.NameOverride, error) {
	rows, err := r.db.Pool.Query(ctx, `
		SELECT id, source_name, canonical_name, created_at, updated_at
		FROM name_overrides
		ORDER BY source_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list overrides: %w", err)
	}
	defer rows.Close()

	var overrides []*models.NameOverride
	for rows.Next() {
		var override models.NameOverride
		err := rows.Scan(
			&override.ID, &override.SourceName, &override.CanonicalName,
			&override.CreatedAt, &override.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan override: %w", err)
		}
		overrides = append(overrides, &override)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating overrides: %w", err)
	}

	return overrides, nil
}

// Lookup implements resolver.OverrideSource. The miss case is not an error.
func (r *OverrideRepository) Lookup(ctx context.Context, sourceName string) (string, bool, error) {
	var canonical string
	err := r.db.Pool.QueryRow(ctx,
		`SELECT canonical_name FROM name_overrides WHERE source_name = LOWER($1)`,
		strings.TrimSpace(sourceName),
	).Scan(&canonical)

	if err == pgx.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to look up override for %q: %w", sourceName, err)
	}

	return canonical, true, nil
}
