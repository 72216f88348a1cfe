package memory

import (
	"context"
	"errors"
	"testing"

	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/storage"
)

func point(mint string, at int64, score int) *domain.ScorePoint {
	return &domain.ScorePoint{
		Mint:        mint,
		Score:       score,
		Level:       domain.LevelLow,
		Confidence:  domain.ConfidenceMed,
		EvaluatedAt: at,
	}
}

func TestScoreHistoryStore_InsertBulkAndGet(t *testing.T) {
	store := NewScoreHistoryStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.ScorePoint{
		point("mint1", 300, 30),
		point("mint1", 100, 10),
		point("mint2", 200, 20),
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByMint(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].EvaluatedAt != 100 || got[1].EvaluatedAt != 300 {
		t.Errorf("points not ordered ASC: %v %v", got[0].EvaluatedAt, got[1].EvaluatedAt)
	}
}

func TestScoreHistoryStore_IntraBatchDuplicate(t *testing.T) {
	store := NewScoreHistoryStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.ScorePoint{
		point("mint1", 100, 10),
		point("mint1", 100, 20),
	})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Fatalf("expected ErrDuplicateKey, got %v", err)
	}

	// The whole batch fails: nothing is stored.
	got, err := store.GetByMint(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("len = %d, want 0 after failed batch", len(got))
	}
}

func TestScoreHistoryStore_DuplicateAgainstStored(t *testing.T) {
	store := NewScoreHistoryStore()
	ctx := context.Background()

	if err := store.InsertBulk(ctx, []*domain.ScorePoint{point("mint1", 100, 10)}); err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}
	err := store.InsertBulk(ctx, []*domain.ScorePoint{point("mint1", 100, 99)})
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestScoreHistoryStore_GetByTimeRange(t *testing.T) {
	store := NewScoreHistoryStore()
	ctx := context.Background()

	err := store.InsertBulk(ctx, []*domain.ScorePoint{
		point("mint1", 100, 10),
		point("mint1", 200, 20),
		point("mint1", 300, 30),
	})
	if err != nil {
		t.Fatalf("InsertBulk failed: %v", err)
	}

	got, err := store.GetByTimeRange(ctx, "mint1", 200, 300)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 (range is inclusive)", len(got))
	}
}

func TestScoreHistoryStore_EmptyBatchIsNoop(t *testing.T) {
	store := NewScoreHistoryStore()
	if err := store.InsertBulk(context.Background(), nil); err != nil {
		t.Errorf("empty batch must succeed, got %v", err)
	}
}

func TestScoreHistoryStore_InvalidInput(t *testing.T) {
	store := NewScoreHistoryStore()
	err := store.InsertBulk(context.Background(), []*domain.ScorePoint{point("", 100, 10)})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}
