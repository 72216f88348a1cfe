package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"

	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/storage"
)

// EvaluationStore implements storage.EvaluationStore using PostgreSQL.
// Signals are stored as JSONB alongside the scalar result columns.
type EvaluationStore struct {
	pool *Pool
}

// NewEvaluationStore creates a new EvaluationStore.
func NewEvaluationStore(pool *Pool) *EvaluationStore {
	return &EvaluationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.EvaluationStore = (*EvaluationStore)(nil)

const evaluationColumns = "mint, score, level, confidence, fallback, signals, evaluated_at"

// Insert adds a finished evaluation. Returns ErrDuplicateKey if
// (mint, evaluated_at) exists.
func (s *EvaluationStore) Insert(ctx context.Context, res *domain.RiskResult) error {
	if res == nil || res.Mint == "" {
		return storage.ErrInvalidInput
	}

	signals, err := json.Marshal(res.Signals)
	if err != nil {
		return fmt.Errorf("marshal signals: %w", err)
	}

	query := `
		INSERT INTO evaluations (` + evaluationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err = s.pool.Exec(ctx, query,
		res.Mint,
		res.Score,
		string(res.Level),
		string(res.Confidence),
		res.Fallback,
		signals,
		res.EvaluatedAt,
	)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert evaluation: %w", err)
	}
	return nil
}

// GetLatestByMint retrieves the most recent evaluation for a mint.
// Returns ErrNotFound if none exists.
func (s *EvaluationStore) GetLatestByMint(ctx context.Context, mint string) (*domain.RiskResult, error) {
	query := `
		SELECT ` + evaluationColumns + `
		FROM evaluations
		WHERE mint = $1
		ORDER BY evaluated_at DESC
		LIMIT 1
	`
	row := s.pool.QueryRow(ctx, query, mint)
	res, err := scanEvaluation(row)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest evaluation: %w", err)
	}
	return res, nil
}

// GetByMint retrieves all evaluations for a mint, ordered by evaluated_at ASC.
func (s *EvaluationStore) GetByMint(ctx context.Context, mint string) ([]*domain.RiskResult, error) {
	query := `
		SELECT ` + evaluationColumns + `
		FROM evaluations
		WHERE mint = $1
		ORDER BY evaluated_at ASC
	`
	rows, err := s.pool.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("get evaluations by mint: %w", err)
	}
	defer rows.Close()

	return scanEvaluations(rows)
}

// GetByTimeRange retrieves evaluations for a mint within [start, end]
// (inclusive).
func (s *EvaluationStore) GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.RiskResult, error) {
	query := `
		SELECT ` + evaluationColumns + `
		FROM evaluations
		WHERE mint = $1 AND evaluated_at >= $2 AND evaluated_at <= $3
		ORDER BY evaluated_at ASC
	`
	rows, err := s.pool.Query(ctx, query, mint, start, end)
	if err != nil {
		return nil, fmt.Errorf("get evaluations by time range: %w", err)
	}
	defer rows.Close()

	return scanEvaluations(rows)
}

// scanEvaluation scans a single row into a RiskResult.
func scanEvaluation(row pgx.Row) (*domain.RiskResult, error) {
	var res domain.RiskResult
	var level, confidence string
	var signals []byte

	err := row.Scan(
		&res.Mint,
		&res.Score,
		&level,
		&confidence,
		&res.Fallback,
		&signals,
		&res.EvaluatedAt,
	)
	if err != nil {
		return nil, err
	}

	res.Level = domain.RiskLevel(level)
	res.Confidence = domain.Confidence(confidence)
	if len(signals) > 0 {
		if err := json.Unmarshal(signals, &res.Signals); err != nil {
			return nil, fmt.Errorf("unmarshal signals: %w", err)
		}
	}
	return &res, nil
}

// scanEvaluations scans multiple rows into a slice of RiskResult.
func scanEvaluations(rows pgx.Rows) ([]*domain.RiskResult, error) {
	var out []*domain.RiskResult

	for rows.Next() {
		res, err := scanEvaluation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan evaluation row: %w", err)
		}
		out = append(out, res)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate evaluation rows: %w", err)
	}
	return out, nil
}
