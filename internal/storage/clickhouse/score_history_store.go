package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/storage"
)

// ScoreHistoryStore implements storage.ScoreHistoryStore using ClickHouse.
type ScoreHistoryStore struct {
	conn *Conn
}

// NewScoreHistoryStore creates a new ScoreHistoryStore.
func NewScoreHistoryStore(conn *Conn) *ScoreHistoryStore {
	return &ScoreHistoryStore{conn: conn}
}

// Compile-time interface check.
var _ storage.ScoreHistoryStore = (*ScoreHistoryStore)(nil)

// InsertBulk adds multiple points. Fails the entire batch on a duplicate
// (mint, evaluated_at). MergeTree does not enforce uniqueness, so duplicates
// are checked explicitly before the batch is sent.
func (s *ScoreHistoryStore) InsertBulk(ctx context.Context, points []*domain.ScorePoint) error {
	if len(points) == 0 {
		return nil
	}

	type key struct {
		mint string
		at   int64
	}
	seen := make(map[key]struct{}, len(points))
	for _, p := range points {
		if p == nil || p.Mint == "" {
			return storage.ErrInvalidInput
		}
		k := key{p.Mint, p.EvaluatedAt}
		if _, dup := seen[k]; dup {
			return storage.ErrDuplicateKey
		}
		seen[k] = struct{}{}
	}

	for _, p := range points {
		exists, err := s.exists(ctx, p.Mint, p.EvaluatedAt)
		if err != nil {
			return fmt.Errorf("check exists: %w", err)
		}
		if exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `
		INSERT INTO score_history (
			mint, score, level, confidence, fallback, evaluated_at
		)
	`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, p := range points {
		fallback := uint8(0)
		if p.Fallback {
			fallback = 1
		}
		err = batch.Append(
			p.Mint, uint8(p.Score), string(p.Level),
			string(p.Confidence), fallback, uint64(p.EvaluatedAt),
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByMint retrieves all points for a mint, ordered by evaluated_at ASC.
func (s *ScoreHistoryStore) GetByMint(ctx context.Context, mint string) ([]*domain.ScorePoint, error) {
	query := `
		SELECT mint, score, level, confidence, fallback, evaluated_at
		FROM score_history
		WHERE mint = ?
		ORDER BY evaluated_at ASC
	`
	rows, err := s.conn.Query(ctx, query, mint)
	if err != nil {
		return nil, fmt.Errorf("query by mint: %w", err)
	}
	defer rows.Close()

	return scanScorePoints(rows)
}

// GetByTimeRange retrieves points for a mint within [start, end] (inclusive).
func (s *ScoreHistoryStore) GetByTimeRange(ctx context.Context, mint string, start, end int64) ([]*domain.ScorePoint, error) {
	query := `
		SELECT mint, score, level, confidence, fallback, evaluated_at
		FROM score_history
		WHERE mint = ? AND evaluated_at >= ? AND evaluated_at <= ?
		ORDER BY evaluated_at ASC
	`
	rows, err := s.conn.Query(ctx, query, mint, uint64(start), uint64(end))
	if err != nil {
		return nil, fmt.Errorf("query by time range: %w", err)
	}
	defer rows.Close()

	return scanScorePoints(rows)
}

// exists checks if a point with the given key exists.
func (s *ScoreHistoryStore) exists(ctx context.Context, mint string, evaluatedAt int64) (bool, error) {
	query := `
		SELECT count(*) FROM score_history
		WHERE mint = ? AND evaluated_at = ?
	`
	var count uint64
	err := s.conn.QueryRow(ctx, query, mint, uint64(evaluatedAt)).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// scanScorePoints scans multiple rows.
func scanScorePoints(rows driver.Rows) ([]*domain.ScorePoint, error) {
	var points []*domain.ScorePoint

	for rows.Next() {
		var p domain.ScorePoint
		var score, fallback uint8
		var level, confidence string
		var evaluatedAt uint64

		err := rows.Scan(&p.Mint, &score, &level, &confidence, &fallback, &evaluatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan score history row: %w", err)
		}

		p.Score = int(score)
		p.Level = domain.RiskLevel(level)
		p.Confidence = domain.Confidence(confidence)
		p.Fallback = fallback == 1
		p.EvaluatedAt = int64(evaluatedAt)
		points = append(points, &p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate score history rows: %w", err)
	}
	return points, nil
}
