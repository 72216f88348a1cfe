package storage

import (
	"context"

	"solana-token-risk/internal/domain"
)

// EvaluationStore provides access to evaluation history. Records are
// append-only and keyed by (mint, evaluated_at).
type EvaluationStore interface {
	// Insert adds a finished evaluation. Returns ErrDuplicateKey if
	// (mint, evaluated_at) exists.
	Insert(ctx context.Context, res *domain.RiskResult) error

	// GetLatestByMint retrieves the most recent evaluation for a mint.
	// Returns ErrNotFound if none exists.
	GetLatestByMint(ctx context.Context, mint string) (*domain.RiskResult, error)

	// GetByMint retrieves all evaluations for a mint, ordered by
	// evaluated_at ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.RiskResult, error)

	// GetByTimeRange retrieves evaluations for a mint within [start, end]
	// (inclusive, unix seconds).
	GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.RiskResult, error)
}

// ScoreHistoryStore provides access to the score timeseries.
type ScoreHistoryStore interface {
	// InsertBulk adds multiple points. Fails the entire batch on a
	// duplicate (mint, evaluated_at).
	InsertBulk(ctx context.Context, points []*domain.ScorePoint) error

	// GetByMint retrieves all points for a mint, ordered by evaluated_at ASC.
	GetByMint(ctx context.Context, mint string) ([]*domain.ScorePoint, error)

	// GetByTimeRange retrieves points for a mint within [start, end]
	// (inclusive, unix seconds).
	GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.ScorePoint, error)
}
