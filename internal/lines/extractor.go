// Package lines selects a single closing spread from a set of bookmaker
// quotes according to a configured source policy. "No usable line" is a
// normal outcome reported through a nil spread, never an error; errors are
// reserved for misconfiguration.
package lines

import (
	"fmt"

	"github.com/ncaam/ratings-engine/internal/models"
	"github.com/ncaam/ratings-engine/internal/rating"
)

// Consensus spreads round to the nearest half point, the smallest increment
// the books quote.
const consensusIncrement = 0.5

// Extractor resolves closing spreads. SharpBook names the single
// authoritative book for the sharp-book policy; ConsensusBooks is the fixed
// roster averaged under consensus-average.
type Extractor struct {
	SharpBook      string
	ConsensusBooks []string
}

// NewExtractor creates an extractor with the given book configuration.
func NewExtractor(sharpBook string, consensusBooks []string) *Extractor {
	return &Extractor{SharpBook: sharpBook, ConsensusBooks: consensusBooks}
}

// Extract picks one closing spread from quotes under the given policy.
// homeCanonical is the already-resolved canonical home-team name; a quote is
// only usable when its TeamName equals it exactly. The extractor never does
// its own name matching.
func (e *Extractor) Extract(quotes []models.BookQuote, homeCanonical string, source models.ClosingLineSource) (models.ClosingLineResult, error) {
	result := models.ClosingLineResult{Source: source}

	switch source {
	case models.SourceSharpBook:
		// One designated book. If its market or the home outcome is absent,
		// the line is unavailable; no substitute book is ever used.
		for _, quote := range quotes {
			if quote.Book != e.SharpBook || quote.TeamName != homeCanonical {
				continue
			}
			spread := quote.Spread
			result.Spread = &spread
			result.Books = []string{quote.Book}
			return result, nil
		}
		return result, nil

	case models.SourceConsensusAverage:
		var sum float64
		for _, book := range e.ConsensusBooks {
			for _, quote := range quotes {
				if quote.Book != book || quote.TeamName != homeCanonical {
					continue
				}
				sum += quote.Spread
				result.Books = append(result.Books, quote.Book)
				break
			}
		}
		if len(result.Books) == 0 {
			return result, nil
		}
		avg := rating.RoundToIncrement(sum/float64(len(result.Books)), consensusIncrement)
		result.Spread = &avg
		return result, nil

	default:
		return result, fmt.Errorf("unknown closing line source: %q", source)
	}
}
