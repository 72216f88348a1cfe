package solana

import (
	"context"
	"log"
	"sync"
	"time"
)

// DefaultWatchDuration bounds how long a mint stays watched after its last
// evaluation. Matches the score cache TTL: once the cached score expires the
// watch has nothing left to invalidate.
const DefaultWatchDuration = 2 * time.Minute

// MintWatcher subscribes to logs mentioning evaluated mints and fires a
// callback on new on-chain activity, so consumers can drop cached state that
// predates a visible change. Best effort: a lost subscription just means the
// cache entry lives out its TTL.
type MintWatcher struct {
	ws         WSClient
	onActivity func(mint string)
	duration   time.Duration
	logger     *log.Logger

	mu     sync.Mutex
	active map[string]context.CancelFunc
	closed bool
}

// NewMintWatcher creates a watcher delivering activity callbacks. logger may
// be nil.
func NewMintWatcher(ws WSClient, onActivity func(mint string), logger *log.Logger) *MintWatcher {
	return &MintWatcher{
		ws:         ws,
		onActivity: onActivity,
		duration:   DefaultWatchDuration,
		logger:     logger,
		active:     make(map[string]context.CancelFunc),
	}
}

// Watch starts watching a mint for the default duration. Watching an already
// watched mint restarts its window.
func (w *MintWatcher) Watch(ctx context.Context, mint string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	if cancel, ok := w.active[mint]; ok {
		cancel()
	}
	watchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), w.duration)
	w.active[mint] = cancel
	w.mu.Unlock()

	go w.run(watchCtx, mint)
}

func (w *MintWatcher) run(ctx context.Context, mint string) {
	defer func() {
		w.mu.Lock()
		delete(w.active, mint)
		w.mu.Unlock()
	}()

	ch, err := w.ws.SubscribeLogs(ctx, LogsFilter{Mention: mint})
	if err != nil {
		w.log("watch %s: subscribe failed: %v", mint, err)
		return
	}
	defer w.ws.Unsubscribe(context.Background(), mint)

	for {
		select {
		case <-ctx.Done():
			return
		case n, ok := <-ch:
			if !ok {
				return
			}
			if n.Err != nil {
				continue // failed transactions change nothing
			}
			w.onActivity(mint)
		}
	}
}

// Close stops all active watches.
func (w *MintWatcher) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	for mint, cancel := range w.active {
		cancel()
		delete(w.active, mint)
	}
}

func (w *MintWatcher) log(format string, args ...interface{}) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}
