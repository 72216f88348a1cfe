package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/storage"
)

func evalAt(mint string, at int64, score int) *domain.RiskResult {
	return &domain.RiskResult{
		Mint:        mint,
		Score:       score,
		Level:       domain.LevelLow,
		Confidence:  domain.ConfidenceMed,
		Signals:     []domain.Signal{{ID: domain.SignalMintAuthority, Weight: 10}},
		EvaluatedAt: at,
	}
}

func TestEvaluationStore_InsertAndGetLatest(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, evalAt("mint1", 100, 40)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	if err := store.Insert(ctx, evalAt("mint1", 200, 55)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}

	got, err := store.GetLatestByMint(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetLatestByMint failed: %v", err)
	}
	if got.EvaluatedAt != 200 || got.Score != 55 {
		t.Errorf("latest = (%d, %d), want (200, 55)", got.EvaluatedAt, got.Score)
	}
}

func TestEvaluationStore_DuplicateKey(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, evalAt("mint1", 100, 40)); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	err := store.Insert(ctx, evalAt("mint1", 100, 99))
	if !errors.Is(err, storage.ErrDuplicateKey) {
		t.Errorf("expected ErrDuplicateKey, got %v", err)
	}
}

func TestEvaluationStore_NotFound(t *testing.T) {
	store := NewEvaluationStore()

	_, err := store.GetLatestByMint(context.Background(), "missing")
	if !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestEvaluationStore_InvalidInput(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	if err := store.Insert(ctx, nil); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("nil insert: expected ErrInvalidInput, got %v", err)
	}
	if err := store.Insert(ctx, evalAt("", 100, 40)); !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("empty mint: expected ErrInvalidInput, got %v", err)
	}
}

func TestEvaluationStore_GetByMintOrdered(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	// Inserted out of order, read back ASC.
	for _, at := range []int64{300, 100, 200} {
		if err := store.Insert(ctx, evalAt("mint1", at, 10)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByMint(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	for i, want := range []int64{100, 200, 300} {
		if got[i].EvaluatedAt != want {
			t.Errorf("got[%d].EvaluatedAt = %d, want %d", i, got[i].EvaluatedAt, want)
		}
	}
}

func TestEvaluationStore_GetByTimeRange(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	for _, at := range []int64{100, 200, 300} {
		if err := store.Insert(ctx, evalAt("mint1", at, 10)); err != nil {
			t.Fatalf("Insert failed: %v", err)
		}
	}

	got, err := store.GetByTimeRange(ctx, "mint1", 100, 200)
	if err != nil {
		t.Fatalf("GetByTimeRange failed: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("len = %d, want 2 (range is inclusive)", len(got))
	}
}

func TestEvaluationStore_DefensiveCopies(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	res := evalAt("mint1", 100, 40)
	if err := store.Insert(ctx, res); err != nil {
		t.Fatalf("Insert failed: %v", err)
	}
	res.Signals[0].Weight = 999

	got, err := store.GetLatestByMint(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetLatestByMint failed: %v", err)
	}
	if got.Signals[0].Weight != 10 {
		t.Error("stored record must not share memory with the caller's value")
	}
	got.Score = -1

	again, err := store.GetLatestByMint(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetLatestByMint failed: %v", err)
	}
	if again.Score != 40 {
		t.Error("returned record must not share memory with stored state")
	}
}

func TestEvaluationStore_ConcurrentInserts(t *testing.T) {
	store := NewEvaluationStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(at int64) {
			defer wg.Done()
			_ = store.Insert(ctx, evalAt("mint1", at, 10))
		}(int64(i))
	}
	wg.Wait()

	got, err := store.GetByMint(ctx, "mint1")
	if err != nil {
		t.Fatalf("GetByMint failed: %v", err)
	}
	if len(got) != 50 {
		t.Errorf("len = %d, want 50", len(got))
	}
}
