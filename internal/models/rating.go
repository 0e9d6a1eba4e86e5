package models

import (
	"database/sql"
	"time"
)

// TeamRating represents a team's current power rating, keyed by canonical name.
// The rating is a neutral-court scalar; only the adjustment processor mutates it.
type TeamRating struct {
	ID             int            `db:"id"`
	CanonicalName  string         `db:"canonical_name"`
	Rating         float64        `db:"rating"`
	InitialRating  float64        `db:"initial_rating"`
	GamesProcessed int            `db:"games_processed"`
	Conference     sql.NullString `db:"conference"`
	LastUpdated    time.Time      `db:"last_updated"`
	CreatedAt      time.Time      `db:"created_at"`
}

// RosterEntry is one row of the preseason roster snapshot used to seed ratings.
type RosterEntry struct {
	TeamName   string  `json:"team"`
	RatingSeed float64 `json:"rating"`
	Conference string  `json:"conference,omitempty"`
}

// ToTeamRating converts a roster entry into a freshly seeded rating row.
func (re *RosterEntry) ToTeamRating() *TeamRating {
	rating := &TeamRating{
		CanonicalName: re.TeamName,
		Rating:        re.RatingSeed,
		InitialRating: re.RatingSeed,
	}

	if re.Conference != "" {
		rating.Conference = sql.NullString{String: re.Conference, Valid: true}
	}

	return rating
}
