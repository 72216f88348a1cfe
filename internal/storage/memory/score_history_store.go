package memory

import (
	"context"
	"sort"
	"sync"

	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/storage"
)

// ScoreHistoryStore implements storage.ScoreHistoryStore in memory.
type ScoreHistoryStore struct {
	mu     sync.RWMutex
	byMint map[string][]*domain.ScorePoint
}

// NewScoreHistoryStore creates a new in-memory ScoreHistoryStore.
func NewScoreHistoryStore() *ScoreHistoryStore {
	return &ScoreHistoryStore{byMint: make(map[string][]*domain.ScorePoint)}
}

// Compile-time interface check.
var _ storage.ScoreHistoryStore = (*ScoreHistoryStore)(nil)

// InsertBulk adds multiple points. Fails the entire batch on a duplicate
// (mint, evaluated_at).
func (s *ScoreHistoryStore) InsertBulk(_ context.Context, points []*domain.ScorePoint) error {
	if len(points) == 0 {
		return nil
	}
	for _, p := range points {
		if p == nil || p.Mint == "" {
			return storage.ErrInvalidInput
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Intra-batch duplicates fail before anything is stored.
	type key struct {
		mint string
		at   int64
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		k := key{p.Mint, p.EvaluatedAt}
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
		for _, existing := range s.byMint[p.Mint] {
			if existing.EvaluatedAt == p.EvaluatedAt {
				return storage.ErrDuplicateKey
			}
		}
	}

	for _, p := range points {
		cp := *p
		s.byMint[p.Mint] = append(s.byMint[p.Mint], &cp)
	}
	for mint := range s.byMint {
		list := s.byMint[mint]
		sort.Slice(list, func(i, j int) bool { return list[i].EvaluatedAt < list[j].EvaluatedAt })
	}
	return nil
}

// GetByMint retrieves all points for a mint, ordered by evaluated_at ASC.
func (s *ScoreHistoryStore) GetByMint(_ context.Context, mint string) ([]*domain.ScorePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byMint[mint]
	out := make([]*domain.ScorePoint, 0, len(list))
	for _, p := range list {
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

// GetByTimeRange retrieves points for a mint within [start, end] (inclusive).
func (s *ScoreHistoryStore) GetByTimeRange(_ context.Context, mint string, start, end int64) ([]*domain.ScorePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.ScorePoint
	for _, p := range s.byMint[mint] {
		if p.EvaluatedAt >= start && p.EvaluatedAt <= end {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}
