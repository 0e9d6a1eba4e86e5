package models

// ClosingLineSource selects how a single closing spread is picked from a set
// of bookmaker quotes.
type ClosingLineSource string

const (
	// SourceSharpBook uses one designated authoritative book, no fallback.
	SourceSharpBook ClosingLineSource = "sharp-book"
	// SourceConsensusAverage averages a fixed roster of major books.
	SourceConsensusAverage ClosingLineSource = "consensus-average"
)

// BookQuote is one bookmaker's spread quote for a game, home-team perspective.
// TeamName is the spelling the book uses for the home side; the extractor only
// accepts quotes whose TeamName equals the already-resolved canonical name.
type BookQuote struct {
	Book     string  `json:"book"`
	TeamName string  `json:"teamName"`
	Spread   float64 `json:"spread"`
}

// ClosingLineResult is the ephemeral outcome of line extraction. Spread is nil
// when no usable quote exists under the requested policy; that is a normal
// outcome, not an error.
type ClosingLineResult struct {
	Spread *float64
	Source ClosingLineSource
	Books  []string
}
