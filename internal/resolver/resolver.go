// Package resolver reconciles team names from independent feeds against the
// canonical rating roster. Matching is an ordered chain of deterministic
// strategies; the first one that lands wins. There is no fuzzy scoring and no
// learning: an unresolved name is surfaced for manual override curation.
package resolver

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Strategy names, in priority order.
const (
	StrategyExact           = "exact"
	StrategyCaseInsensitive = "case-insensitive"
	StrategyOverride        = "override"
	StrategyNormalized      = "normalized"
	StrategyWordSet         = "word-set"
)

// OverrideSource looks up operator-curated name overrides. Lookup is
// case-insensitive on the source name. The boolean is false when no entry
// exists; the error is reserved for infrastructure failures.
type OverrideSource interface {
	Lookup(ctx context.Context, sourceName string) (string, bool, error)
}

// StaticOverrides is an OverrideSource backed by a fixed map, keyed by
// lowercase source name. Used in tests and file-driven setups.
type StaticOverrides map[string]string

// Lookup implements OverrideSource.
func (s StaticOverrides) Lookup(_ context.Context, sourceName string) (string, bool, error) {
	canonical, ok := s[strings.ToLower(sourceName)]
	return canonical, ok, nil
}

// Match is a successful resolution, tagged with the strategy that produced it.
type Match struct {
	Canonical string
	Strategy  string
}

// Resolver matches raw team names against a roster of canonical names.
type Resolver struct {
	overrides OverrideSource
}

// NewResolver creates a resolver. overrides may be nil, in which case the
// override strategy never fires.
func NewResolver(overrides OverrideSource) *Resolver {
	return &Resolver{overrides: overrides}
}

// Resolve attempts to match rawName against roster. Returns nil when no
// strategy succeeds; that is a data-quality outcome, not an error. The error
// return is only for override-store failures.
func (r *Resolver) Resolve(ctx context.Context, rawName string, roster []string) (*Match, error) {
	if strings.TrimSpace(rawName) == "" {
		return nil, nil
	}

	// 1. Exact match.
	for _, canonical := range roster {
		if rawName == canonical {
			return &Match{Canonical: canonical, Strategy: StrategyExact}, nil
		}
	}

	// 2. Case-insensitive exact match.
	rawLower := strings.ToLower(rawName)
	for _, canonical := range roster {
		if rawLower == strings.ToLower(canonical) {
			return &Match{Canonical: canonical, Strategy: StrategyCaseInsensitive}, nil
		}
	}

	// 3. Manual override. An entry short-circuits every later heuristic, even
	// if its target is not on the roster (that case is a hard data error).
	if r.overrides != nil {
		target, ok, err := r.overrides.Lookup(ctx, rawName)
		if err != nil {
			return nil, fmt.Errorf("failed to look up override for %q: %w", rawName, err)
		}
		if ok {
			for _, canonical := range roster {
				if target == canonical {
					return &Match{Canonical: canonical, Strategy: StrategyOverride}, nil
				}
			}
			return nil, fmt.Errorf("override for %q targets %q which is not on the roster", rawName, target)
		}
	}

	// 4. Normalized match: mascot stripped, State/Saint folded.
	rawNorm := Normalize(rawName)
	if rawNorm != "" {
		for _, canonical := range roster {
			if rawNorm == Normalize(canonical) {
				return &Match{Canonical: canonical, Strategy: StrategyNormalized}, nil
			}
		}
	}

	// 5. Word-set match: significant tokens pair off bidirectionally.
	rawTokens := Tokens(rawName)
	for _, canonical := range roster {
		if wordSetMatch(rawTokens, Tokens(canonical)) {
			return &Match{Canonical: canonical, Strategy: StrategyWordSet}, nil
		}
	}

	log.Debug().Str("raw_name", rawName).Msg("Team name unresolved")
	return nil, nil
}
