package models

import "time"

// NameOverride maps a source-specific team spelling directly to a canonical
// name. Curated by an operator, consulted read-only by the resolver, never
// generated by the engine.
type NameOverride struct {
	ID            int       `db:"id"`
	SourceName    string    `db:"source_name"`
	CanonicalName string    `db:"canonical_name"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
