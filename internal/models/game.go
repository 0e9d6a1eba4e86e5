package models

import (
	"database/sql"
	"fmt"
	"time"
)

// PendingGame is a staged finished game waiting for rating adjustment.
// Team names are raw source spellings; resolution happens at processing time.
// ClosingSpread is nullable: a game without a usable closing line is staged
// anyway and skipped with a reason until one shows up.
type PendingGame struct {
	ID          int       `db:"id"`
	GameID      string    `db:"game_id"`
	Season      int       `db:"season"`
	GameDate    time.Time `db:"game_date"`
	HomeTeamRaw string    `db:"home_team_raw"`
	AwayTeamRaw string    `db:"away_team_raw"`
	NeutralSite bool      `db:"neutral_site"`

	ClosingSpread sql.NullFloat64 `db:"closing_spread"`
	ClosingSource string          `db:"closing_source"`

	Processed  bool      `db:"processed"`
	IngestedAt time.Time `db:"ingested_at"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// GameInput is the wire shape handed in by the surrounding ingestion layer.
type GameInput struct {
	GameID        string   `json:"gameId"`
	Season        int      `json:"season"`
	Date          string   `json:"date"` // ISO 8601
	HomeTeam      string   `json:"homeTeam"`
	AwayTeam      string   `json:"awayTeam"`
	NeutralSite   bool     `json:"neutralSite"`
	ClosingSpread *float64 `json:"closingSpread,omitempty"`
	ClosingSource string   `json:"closingSource,omitempty"`
}

// ToPendingGame converts GameInput to the staged PendingGame model. A date
// that fails to parse is an error: the runner orders games by date, so a
// zero-time placeholder would silently process the game first.
func (gi *GameInput) ToPendingGame() (*PendingGame, error) {
	gameTime, err := time.Parse(time.RFC3339, gi.Date)
	if err != nil {
		return nil, fmt.Errorf("game %s: invalid date %q: %w", gi.GameID, gi.Date, err)
	}

	game := &PendingGame{
		GameID:        gi.GameID,
		Season:        gi.Season,
		GameDate:      gameTime,
		HomeTeamRaw:   gi.HomeTeam,
		AwayTeamRaw:   gi.AwayTeam,
		NeutralSite:   gi.NeutralSite,
		ClosingSource: gi.ClosingSource,
		IngestedAt:    time.Now(),
	}

	if gi.ClosingSpread != nil {
		game.ClosingSpread = sql.NullFloat64{Float64: *gi.ClosingSpread, Valid: true}
	}

	return game, nil
}

// HasClosingLine reports whether a usable closing spread is attached.
func (g *PendingGame) HasClosingLine() bool {
	return g.ClosingSpread.Valid
}
