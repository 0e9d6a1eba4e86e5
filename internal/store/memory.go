package store

import (
	"context"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ncaam/ratings-engine/internal/models"
)

// ratingEpsilon tolerates float drift when comparing a stored rating against
// an adjustment's before value.
const ratingEpsilon = 1e-9

// MemoryStore is an in-process Store used by tests, dry runs, and the
// replay verifier. A single mutex serializes writers; readers take copies so
// callers can never mutate shared state.
type MemoryStore struct {
	mu          sync.RWMutex
	ratings     map[string]*models.TeamRating
	adjustments []*models.GameAdjustment
	byGameID    map[string]*models.GameAdjustment
	nextID      int
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ratings:  make(map[string]*models.TeamRating),
		byGameID: make(map[string]*models.GameAdjustment),
	}
}

// GetRating returns a copy of the rating row for a canonical name.
func (m *MemoryStore) GetRating(_ context.Context, canonicalName string) (*models.TeamRating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	rating, ok := m.ratings[canonicalName]
	if !ok {
		return nil, ErrTeamNotFound
	}
	clone := *rating
	return &clone, nil
}

// ListRatings returns copies of all rating rows, best rating first.
func (m *MemoryStore) ListRatings(_ context.Context) ([]*models.TeamRating, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ratings := make([]*models.TeamRating, 0, len(m.ratings))
	for _, rating := range m.ratings {
		clone := *rating
		ratings = append(ratings, &clone)
	}
	sort.Slice(ratings, func(i, j int) bool {
		if ratings[i].Rating != ratings[j].Rating {
			return ratings[i].Rating > ratings[j].Rating
		}
		return strings.Compare(ratings[i].CanonicalName, ratings[j].CanonicalName) < 0
	})
	return ratings, nil
}

// SeedRoster populates rating rows from a snapshot. Guarded: refuses to touch
// a populated store unless reset is explicit.
func (m *MemoryStore) SeedRoster(_ context.Context, entries []models.RosterEntry, reset bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.ratings) > 0 && !reset {
		return ErrRosterPopulated
	}

	m.ratings = make(map[string]*models.TeamRating, len(entries))
	m.adjustments = nil
	m.byGameID = make(map[string]*models.GameAdjustment)

	now := time.Now()
	for i, entry := range entries {
		rating := entry.ToTeamRating()
		rating.ID = i + 1
		rating.LastUpdated = now
		rating.CreatedAt = now
		m.ratings[rating.CanonicalName] = rating
	}
	return nil
}

// HasAdjustment reports whether the game is already in the ledger.
func (m *MemoryStore) HasAdjustment(_ context.Context, gameID string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.byGameID[gameID]
	return ok, nil
}

// ApplyAdjustment applies both rating mutations and the ledger append under
// one lock. Validation happens before any mutation, so a failure leaves the
// store exactly as it was.
func (m *MemoryStore) ApplyAdjustment(_ context.Context, adj *models.GameAdjustment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.byGameID[adj.GameID]; ok {
		return ErrDuplicateAdjustment
	}

	home, ok := m.ratings[adj.HomeTeam]
	if !ok {
		return ErrTeamNotFound
	}
	away, ok := m.ratings[adj.AwayTeam]
	if !ok {
		return ErrTeamNotFound
	}

	if math.Abs(home.Rating-adj.HomeRatingBefore) > ratingEpsilon ||
		math.Abs(away.Rating-adj.AwayRatingBefore) > ratingEpsilon {
		return ErrRatingConflict
	}

	now := time.Now()
	home.Rating = adj.HomeRatingAfter
	home.GamesProcessed++
	home.LastUpdated = now
	away.Rating = adj.AwayRatingAfter
	away.GamesProcessed++
	away.LastUpdated = now

	m.nextID++
	record := *adj
	record.ID = m.nextID
	record.CreatedAt = now
	m.adjustments = append(m.adjustments, &record)
	m.byGameID[record.GameID] = &record

	return nil
}

// ListAdjustments returns ledger copies in game-date order, insertion order
// breaking ties.
func (m *MemoryStore) ListAdjustments(_ context.Context, season *int) ([]*models.GameAdjustment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	adjustments := make([]*models.GameAdjustment, 0, len(m.adjustments))
	for _, adj := range m.adjustments {
		if season != nil && adj.Season != *season {
			continue
		}
		clone := *adj
		adjustments = append(adjustments, &clone)
	}
	sort.SliceStable(adjustments, func(i, j int) bool {
		return adjustments[i].GameDate.Before(adjustments[j].GameDate)
	})
	return adjustments, nil
}
