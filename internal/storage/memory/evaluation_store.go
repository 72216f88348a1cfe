// Package memory provides in-process implementations of the storage
// interfaces, used in tests and when no database is configured.
package memory

import (
	"context"
	"sync"

	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/storage"
)

// EvaluationStore implements storage.EvaluationStore in memory.
type EvaluationStore struct {
	mu sync.RWMutex
	// byMint keeps evaluations per mint ordered by evaluated_at ASC.
	byMint map[string][]*domain.RiskResult
}

// NewEvaluationStore creates a new in-memory EvaluationStore.
func NewEvaluationStore() *EvaluationStore {
	return &EvaluationStore{byMint: make(map[string][]*domain.RiskResult)}
}

// Compile-time interface check.
var _ storage.EvaluationStore = (*EvaluationStore)(nil)

// Insert adds a finished evaluation. Returns ErrDuplicateKey if
// (mint, evaluated_at) exists.
func (s *EvaluationStore) Insert(_ context.Context, res *domain.RiskResult) error {
	if res == nil || res.Mint == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.byMint[res.Mint]
	for _, existing := range list {
		if existing.EvaluatedAt == res.EvaluatedAt {
			return storage.ErrDuplicateKey
		}
	}

	cp := copyResult(res)
	// Insert keeping evaluated_at ASC order.
	pos := len(list)
	for i, existing := range list {
		if existing.EvaluatedAt > cp.EvaluatedAt {
			pos = i
			break
		}
	}
	list = append(list, nil)
	copy(list[pos+1:], list[pos:])
	list[pos] = cp
	s.byMint[res.Mint] = list
	return nil
}

// GetLatestByMint retrieves the most recent evaluation for a mint.
// Returns ErrNotFound if none exists.
func (s *EvaluationStore) GetLatestByMint(_ context.Context, mint string) (*domain.RiskResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byMint[mint]
	if len(list) == 0 {
		return nil, storage.ErrNotFound
	}
	return copyResult(list[len(list)-1]), nil
}

// GetByMint retrieves all evaluations for a mint, ordered by evaluated_at ASC.
func (s *EvaluationStore) GetByMint(_ context.Context, mint string) ([]*domain.RiskResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := s.byMint[mint]
	out := make([]*domain.RiskResult, 0, len(list))
	for _, res := range list {
		out = append(out, copyResult(res))
	}
	return out, nil
}

// GetByTimeRange retrieves evaluations for a mint within [start, end]
// (inclusive).
func (s *EvaluationStore) GetByTimeRange(_ context.Context, mint string, start, end int64) ([]*domain.RiskResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*domain.RiskResult
	for _, res := range s.byMint[mint] {
		if res.EvaluatedAt >= start && res.EvaluatedAt <= end {
			out = append(out, copyResult(res))
		}
	}
	return out, nil
}

// copyResult returns a defensive copy so callers cannot mutate stored state.
func copyResult(res *domain.RiskResult) *domain.RiskResult {
	cp := *res
	if res.Signals != nil {
		cp.Signals = make([]domain.Signal, len(res.Signals))
		copy(cp.Signals, res.Signals)
	}
	return &cp
}
