// Package holderjob counts unique token holders with a step-driven,
// cursor-based pagination job. Holder enumeration over a large mint can span
// tens of thousands of accounts; a single request cannot page through all of
// them inside its time budget, so the job performs exactly one upstream page
// per Step call and keeps its progress in a Store between calls.
package holderjob

import (
	"context"
	"errors"
	"log"
	"time"

	"solana-token-risk/internal/cache"
	"solana-token-risk/internal/domain"
)

// Job status values reported by Step.
const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusExpired = "expired"
	StatusError   = "error"
)

const (
	// JobTTL bounds how long an in-progress job may live. A step on a job
	// older than this deletes it and reports expired, so an abandoned job
	// cannot block its mint indefinitely.
	JobTTL = 10 * time.Minute
	// MaxPages is a hard ceiling on pages attempted per job.
	MaxPages = 50
)

// ErrPageLimit is returned by Step when a job hits MaxPages.
var ErrPageLimit = errors.New("holderjob: page limit reached")

// Pager fetches one page of token accounts. An empty cursor requests the
// first page.
type Pager interface {
	GetTokenAccountsPage(ctx context.Context, mint, cursor string) (*domain.TokenAccountsPage, error)
}

// Result is the outcome of one Start or Step call.
type Result struct {
	Status string `json:"status"`
	Pages  int    `json:"pages"`
	Owners int    `json:"owners"`          // distinct positive-balance owners so far
	Count  int    `json:"count,omitempty"` // final count, only when done
}

// Options configures a Runner. Pager is required; a nil Store or Counts
// falls back to fresh in-process instances.
type Options struct {
	Pager  Pager
	Store  Store
	Counts *cache.Cache[string, int]
	Logger *log.Logger
	Now    func() time.Time
}

// Runner drives holder-count jobs.
type Runner struct {
	pager  Pager
	store  Store
	counts *cache.Cache[string, int]
	logger *log.Logger
	now    func() time.Time
}

func New(opts Options) (*Runner, error) {
	if opts.Pager == nil {
		return nil, errors.New("holderjob: pager is required")
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Counts == nil {
		opts.Counts = cache.New[string, int]()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Runner{
		pager:  opts.Pager,
		store:  opts.Store,
		counts: opts.Counts,
		logger: opts.Logger,
		now:    opts.Now,
	}, nil
}

// Start creates fresh job state for mint, discarding any prior state.
func (r *Runner) Start(mint string) Result {
	now := r.now()
	r.store.Put(mint, &State{
		Owners:    make(map[string]struct{}),
		StartedAt: now,
		UpdatedAt: now,
	})
	return Result{Status: StatusRunning}
}

// Step advances the job for mint by exactly one upstream page. A Step with
// no prior state starts a fresh job first. Completion deletes the job state
// and caches the final count under a separate key for direct reuse.
func (r *Runner) Step(ctx context.Context, mint string) (Result, error) {
	now := r.now()
	st, ok := r.store.Get(mint)
	if !ok {
		r.Start(mint)
		st, _ = r.store.Get(mint)
	} else if now.Sub(st.StartedAt) > JobTTL {
		r.store.Delete(mint)
		return Result{Status: StatusExpired, Pages: st.PageCount, Owners: len(st.Owners)}, nil
	}

	if st.PageCount >= MaxPages {
		r.store.Delete(mint)
		return Result{Status: StatusError, Pages: st.PageCount, Owners: len(st.Owners)}, ErrPageLimit
	}

	page, err := r.pager.GetTokenAccountsPage(ctx, mint, st.Cursor)
	if err != nil {
		// State survives so a retry can resume from the same cursor.
		r.logger.Printf("holderjob: page fetch failed mint=%s page=%d: %v", mint, st.PageCount+1, err)
		return Result{Status: StatusError, Pages: st.PageCount, Owners: len(st.Owners)}, err
	}

	for _, acct := range page.Accounts {
		if acct.Amount == 0 || acct.Address == "" {
			continue
		}
		st.Owners[acct.Address] = struct{}{}
	}
	st.PageCount++
	st.Cursor = page.NextCursor
	st.UpdatedAt = now

	if page.NextCursor == "" || len(page.Accounts) == 0 {
		count := len(st.Owners)
		r.counts.Set(countKey(mint), count, cache.HolderCountTTL)
		r.store.Delete(mint)
		return Result{Status: StatusDone, Pages: st.PageCount, Owners: count, Count: count}, nil
	}

	r.store.Put(mint, st)
	return Result{Status: StatusRunning, Pages: st.PageCount, Owners: len(st.Owners)}, nil
}

// Reset unconditionally deletes any job state for mint.
func (r *Runner) Reset(mint string) {
	r.store.Delete(mint)
}

// CountFor returns the cached final holder count for mint, when a job for
// it completed within the count TTL.
func (r *Runner) CountFor(mint string) (int, bool) {
	return r.counts.Get(countKey(mint))
}

func countKey(mint string) string { return "holders:" + mint }
