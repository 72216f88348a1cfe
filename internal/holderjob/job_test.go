package holderjob

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"solana-token-risk/internal/cache"
	"solana-token-risk/internal/domain"
)

// scriptedPager returns a fixed sequence of pages keyed by cursor.
type scriptedPager struct {
	pages map[string]*domain.TokenAccountsPage
	calls int
	err   error
}

func (p *scriptedPager) GetTokenAccountsPage(_ context.Context, _, cursor string) (*domain.TokenAccountsPage, error) {
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	page, ok := p.pages[cursor]
	if !ok {
		return &domain.TokenAccountsPage{}, nil
	}
	return page, nil
}

func holders(prefix string, n int) []domain.HolderBalance {
	out := make([]domain.HolderBalance, n)
	for i := range out {
		out[i] = domain.HolderBalance{Address: fmt.Sprintf("%s%d", prefix, i), Amount: 10}
	}
	return out
}

func newTestRunner(t *testing.T, pager Pager, now func() time.Time) *Runner {
	t.Helper()
	opts := Options{Pager: pager}
	if now != nil {
		opts.Now = now
		opts.Counts = cache.NewWithClock[string, int](now)
	}
	r, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestStepPagesToCompletion(t *testing.T) {
	pager := &scriptedPager{pages: map[string]*domain.TokenAccountsPage{
		"":   {Accounts: holders("a", 3), NextCursor: "c1"},
		"c1": {Accounts: holders("b", 2), NextCursor: "c2"},
		"c2": {Accounts: holders("c", 1)},
	}}
	r := newTestRunner(t, pager, nil)
	ctx := context.Background()

	res, err := r.Step(ctx, "mint")
	if err != nil {
		t.Fatalf("step 1: %v", err)
	}
	if res.Status != StatusRunning || res.Pages != 1 || res.Owners != 3 {
		t.Fatalf("step 1 = %+v", res)
	}

	res, err = r.Step(ctx, "mint")
	if err != nil {
		t.Fatalf("step 2: %v", err)
	}
	if res.Status != StatusRunning || res.Pages != 2 || res.Owners != 5 {
		t.Fatalf("step 2 = %+v", res)
	}

	res, err = r.Step(ctx, "mint")
	if err != nil {
		t.Fatalf("step 3: %v", err)
	}
	if res.Status != StatusDone || res.Pages != 3 || res.Count != 6 {
		t.Fatalf("step 3 = %+v", res)
	}

	if count, ok := r.CountFor("mint"); !ok || count != 6 {
		t.Errorf("CountFor = %d, %v, want 6, true", count, ok)
	}

	// Completion deletes the state: the next step starts fresh.
	res, err = r.Step(ctx, "mint")
	if err != nil {
		t.Fatalf("step after done: %v", err)
	}
	if res.Status != StatusRunning || res.Pages != 1 || res.Owners != 3 {
		t.Errorf("step after done = %+v, want a fresh first page", res)
	}
}

func TestStepSkipsZeroBalancesAndDuplicates(t *testing.T) {
	pager := &scriptedPager{pages: map[string]*domain.TokenAccountsPage{
		"": {Accounts: []domain.HolderBalance{
			{Address: "a", Amount: 5},
			{Address: "a", Amount: 5},
			{Address: "b", Amount: 0},
			{Address: "", Amount: 5},
			{Address: "c", Amount: 1},
		}},
	}}
	r := newTestRunner(t, pager, nil)

	res, err := r.Step(context.Background(), "mint")
	if err != nil {
		t.Fatalf("step: %v", err)
	}
	if res.Status != StatusDone || res.Count != 2 {
		t.Errorf("result = %+v, want done with 2 owners", res)
	}
}

func TestStepExpiresStaleJob(t *testing.T) {
	pager := &scriptedPager{pages: map[string]*domain.TokenAccountsPage{
		"": {Accounts: holders("a", 1), NextCursor: "c1"},
	}}
	current := time.Unix(1_700_000_000, 0)
	now := func() time.Time { return current }
	r := newTestRunner(t, pager, now)
	ctx := context.Background()

	if _, err := r.Step(ctx, "mint"); err != nil {
		t.Fatalf("step: %v", err)
	}

	current = current.Add(JobTTL + time.Second)
	res, err := r.Step(ctx, "mint")
	if err != nil {
		t.Fatalf("stale step: %v", err)
	}
	if res.Status != StatusExpired {
		t.Fatalf("status = %s, want expired", res.Status)
	}

	// Expiry deletes the state and performs no fetch for that call.
	if pager.calls != 1 {
		t.Errorf("pager calls = %d, want 1", pager.calls)
	}
	res, err = r.Step(ctx, "mint")
	if err != nil {
		t.Fatalf("step after expiry: %v", err)
	}
	if res.Status != StatusRunning || res.Pages != 1 {
		t.Errorf("step after expiry = %+v, want a fresh first page", res)
	}
}

func TestStartDiscardsPriorState(t *testing.T) {
	pager := &scriptedPager{pages: map[string]*domain.TokenAccountsPage{
		"":   {Accounts: holders("a", 4), NextCursor: "c1"},
		"c1": {Accounts: holders("b", 4), NextCursor: "c2"},
	}}
	r := newTestRunner(t, pager, nil)
	ctx := context.Background()

	if _, err := r.Step(ctx, "mint"); err != nil {
		t.Fatalf("step: %v", err)
	}
	if res := r.Start("mint"); res.Status != StatusRunning {
		t.Fatalf("start = %+v", res)
	}

	res, err := r.Step(ctx, "mint")
	if err != nil {
		t.Fatalf("step after start: %v", err)
	}
	if res.Pages != 1 || res.Owners != 4 {
		t.Errorf("step after restart = %+v, want page 1 with 4 owners", res)
	}
}

func TestResetDeletesState(t *testing.T) {
	pager := &scriptedPager{pages: map[string]*domain.TokenAccountsPage{
		"": {Accounts: holders("a", 2), NextCursor: "c1"},
	}}
	r := newTestRunner(t, pager, nil)
	ctx := context.Background()

	if _, err := r.Step(ctx, "mint"); err != nil {
		t.Fatalf("step: %v", err)
	}
	r.Reset("mint")

	res, err := r.Step(ctx, "mint")
	if err != nil {
		t.Fatalf("step after reset: %v", err)
	}
	if res.Pages != 1 {
		t.Errorf("pages = %d, want fresh job", res.Pages)
	}
}

func TestStepUpstreamErrorKeepsState(t *testing.T) {
	pager := &scriptedPager{pages: map[string]*domain.TokenAccountsPage{
		"":   {Accounts: holders("a", 2), NextCursor: "c1"},
		"c1": {Accounts: holders("b", 1)},
	}}
	r := newTestRunner(t, pager, nil)
	ctx := context.Background()

	if _, err := r.Step(ctx, "mint"); err != nil {
		t.Fatalf("step: %v", err)
	}

	upstream := errors.New("boom")
	pager.err = upstream
	res, err := r.Step(ctx, "mint")
	if !errors.Is(err, upstream) {
		t.Fatalf("err = %v, want upstream error", err)
	}
	if res.Status != StatusError || res.Pages != 1 {
		t.Fatalf("error result = %+v", res)
	}

	// A retry resumes from the stored cursor.
	pager.err = nil
	res, err = r.Step(ctx, "mint")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if res.Status != StatusDone || res.Count != 3 {
		t.Errorf("retry = %+v, want done with 3 owners", res)
	}
}

func TestStepPageCeiling(t *testing.T) {
	// Every page points back to itself so the job never completes.
	pager := &scriptedPager{pages: map[string]*domain.TokenAccountsPage{
		"":     {Accounts: holders("a", 1), NextCursor: "loop"},
		"loop": {Accounts: holders("a", 1), NextCursor: "loop"},
	}}
	r := newTestRunner(t, pager, nil)
	ctx := context.Background()

	for i := 0; i < MaxPages; i++ {
		res, err := r.Step(ctx, "mint")
		if err != nil {
			t.Fatalf("step %d: %v", i+1, err)
		}
		if res.Status != StatusRunning {
			t.Fatalf("step %d status = %s", i+1, res.Status)
		}
	}

	res, err := r.Step(ctx, "mint")
	if !errors.Is(err, ErrPageLimit) {
		t.Fatalf("err = %v, want ErrPageLimit", err)
	}
	if res.Status != StatusError {
		t.Fatalf("status = %s, want error", res.Status)
	}

	// The capped job is deleted; the next step starts over.
	res, err = r.Step(ctx, "mint")
	if err != nil {
		t.Fatalf("step after cap: %v", err)
	}
	if res.Pages != 1 {
		t.Errorf("pages = %d, want fresh job", res.Pages)
	}
}

func TestCountForMissWithoutCompletedJob(t *testing.T) {
	r := newTestRunner(t, &scriptedPager{}, nil)
	if _, ok := r.CountFor("mint"); ok {
		t.Error("expected a miss before any job completed")
	}
}
