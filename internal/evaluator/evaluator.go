// Package evaluator runs the full risk evaluation for a token mint: the
// synchronous fast detector path, the asynchronous deep path, signal merging,
// scoring and confidence rating.
package evaluator

import (
	"context"
	"errors"
	"log"
	"time"

	"solana-token-risk/internal/cache"
	"solana-token-risk/internal/detector"
	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/observability"
	"solana-token-risk/internal/scoring"
	"solana-token-risk/internal/solana"
)

const (
	// FallbackScore is reported when every live data path failed.
	FallbackScore = 5
	// DefaultDeepTimeout bounds the asynchronous deep detector path. On
	// timeout its outcome is treated as absent data, not a failure.
	DefaultDeepTimeout = 8 * time.Second
	// txHistoryLimit is how many earliest transactions the deep path
	// requests for the transaction-pattern detectors.
	txHistoryLimit = 100
)

// History persists finished evaluations. Optional; evaluation never depends
// on it succeeding.
type History interface {
	SaveEvaluation(ctx context.Context, res *domain.RiskResult) error
}

// Options configures an Evaluator. Ledger and Pools are required; Txs is nil
// when no enhanced-transaction credential is configured, which disables the
// transaction-pattern detectors.
type Options struct {
	Ledger      detector.Ledger
	Pools       detector.PoolIndex
	Txs         detector.TxSource
	History     History
	Premium     bool
	Scores      *cache.Cache[string, *domain.RiskResult]
	Logger      *log.Logger
	DeepTimeout time.Duration
	Now         func() time.Time
}

// Evaluator computes risk results for token mints.
type Evaluator struct {
	ledger      detector.Ledger
	pools       detector.PoolIndex
	txs         detector.TxSource
	history     History
	premium     bool
	scores      *cache.Cache[string, *domain.RiskResult]
	logger      *log.Logger
	deepTimeout time.Duration
	now         func() time.Time
}

func New(opts Options) (*Evaluator, error) {
	if opts.Ledger == nil {
		return nil, errors.New("evaluator: ledger is required")
	}
	if opts.Pools == nil {
		return nil, errors.New("evaluator: pool index is required")
	}
	if opts.Scores == nil {
		opts.Scores = cache.New[string, *domain.RiskResult]()
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.DeepTimeout <= 0 {
		opts.DeepTimeout = DefaultDeepTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	e := &Evaluator{
		ledger:      newCachedLedger(opts.Ledger),
		pools:       opts.Pools,
		history:     opts.History,
		premium:     opts.Premium,
		scores:      opts.Scores,
		logger:      opts.Logger,
		deepTimeout: opts.DeepTimeout,
		now:         opts.Now,
	}
	if opts.Txs != nil {
		e.txs = newCachedTxSource(opts.Txs)
	}
	return e, nil
}

// deepOutcome is what the asynchronous deep path reports back.
type deepOutcome struct {
	signals  []domain.Signal
	txsOK    bool
	tokenAge *time.Duration
}

// Evaluate computes the risk result for mint. An invalid address is the only
// error returned; every upstream failure degrades the result instead of
// failing the call.
func (e *Evaluator) Evaluate(ctx context.Context, mint string) (*domain.RiskResult, error) {
	if err := solana.ValidateAddress(mint); err != nil {
		return nil, err
	}

	if res, ok := e.scores.Get(mint); ok {
		observability.RecordCacheLookup("score", true)
		return res, nil
	}
	observability.RecordCacheLookup("score", false)

	start := e.now()
	anyLive := false

	// Fast path: authorities, program, dev candidate, distribution.
	info, err := e.ledger.GetMintInfo(ctx, mint)
	if err != nil {
		observability.RecordDetectorFailure("authority")
		e.logger.Printf("evaluate %s: mint info unavailable: %v", mint, err)
		info = nil
	} else {
		anyLive = true
	}

	fast := detector.DetectAuthorities(info)
	fast = append(fast, detector.DetectNonstandardProgram(info)...)

	dev, devSignals := detector.SelectDevCandidate(ctx, e.ledger, info, mint)
	fast = append(fast, devSignals...)

	var supply uint64
	if info != nil {
		supply = info.Supply
	}
	holders, err := e.ledger.GetTokenLargestAccounts(ctx, mint)
	if err != nil {
		observability.RecordDetectorFailure("distribution")
		e.logger.Printf("evaluate %s: largest accounts unavailable: %v", mint, err)
		holders = nil
	} else {
		anyLive = true
	}
	distSignals, facts := detector.DetectDistribution(ctx, e.ledger, mint, holders, supply, dev)
	fast = append(fast, distSignals...)

	// Deep path: liquidity and transaction patterns, bounded by the deep
	// timeout. The dev candidate feeds the dump detector, so the fast path
	// resolves it first.
	deepCh := make(chan deepOutcome, 1)
	go e.runDeep(ctx, mint, dev, supply, info, deepCh)

	var deep deepOutcome
	select {
	case deep = <-deepCh:
	case <-ctx.Done():
		// Caller gave up waiting; the deep outcome is absent data.
	}
	if deep.txsOK {
		anyLive = true
	}

	if !anyLive {
		return e.fallback(mint), nil
	}

	merged := scoring.Merge(fast, deep.signals)
	score := scoring.Score(merged)
	level := scoring.Level(score)
	confidence := scoring.EstimateConfidence(scoring.ConfidenceInput{
		LivePath:           true,
		TokenAge:           deep.tokenAge,
		ConcentrationKnown: facts.Top10Known,
		DevCandidateFound:  dev.Address != "",
		PremiumSource:      e.premium,
	})

	res := &domain.RiskResult{
		Mint:        mint,
		Score:       score,
		Level:       level,
		Confidence:  confidence,
		Signals:     merged,
		EvaluatedAt: e.now().Unix(),
	}

	for _, s := range merged {
		observability.RecordSignal(string(s.ID))
	}
	observability.RecordEvaluation(string(level), e.now().Sub(start).Seconds())
	observability.MarkEvaluationSuccess(res.EvaluatedAt)

	e.scores.Set(mint, res, cache.ScoreTTL)
	if e.history != nil {
		if err := e.history.SaveEvaluation(ctx, res); err != nil {
			e.logger.Printf("evaluate %s: history save failed: %v", mint, err)
		}
	}
	return res, nil
}

// runDeep executes the deep detector path and always sends exactly one
// outcome.
func (e *Evaluator) runDeep(ctx context.Context, mint string, dev domain.DevCandidate, supply uint64, info *domain.MintInfo, out chan<- deepOutcome) {
	dctx, cancel := context.WithTimeout(ctx, e.deepTimeout)
	defer cancel()

	var deep deepOutcome
	deep.signals = detector.DetectLiquidity(dctx, e.pools, e.ledger, mint)

	if e.txs != nil {
		txs, err := e.txs.GetTransactionsByAddress(dctx, mint, txHistoryLimit, true)
		switch {
		case err != nil:
			observability.RecordDetectorFailure("tx_patterns")
			e.logger.Printf("evaluate %s: tx history unavailable: %v", mint, err)
		default:
			deep.txsOK = true
			deep.signals = append(deep.signals, detector.DetectBundledLaunch(txs, mint)...)
			deep.signals = append(deep.signals, detector.DetectClusterFunding(txs, mint)...)
			var decimals uint8
			if info != nil {
				decimals = info.Decimals
			}
			deep.signals = append(deep.signals, detector.DetectDevDump(txs, mint, dev, supply, decimals)...)
			if len(txs) > 0 && txs[0].Timestamp > 0 {
				age := e.now().Sub(time.Unix(txs[0].Timestamp, 0))
				deep.tokenAge = &age
			}
		}
	}
	out <- deep
}

// fallback builds the minimal result reported when no upstream data was
// reachable. It is not cached so recovery is picked up immediately.
func (e *Evaluator) fallback(mint string) *domain.RiskResult {
	observability.RecordFallback()
	return &domain.RiskResult{
		Mint:       mint,
		Score:      FallbackScore,
		Level:      domain.LevelLow,
		Confidence: domain.ConfidenceLow,
		Fallback:   true,
		Signals: []domain.Signal{domain.NewSignal(domain.SignalFallbackMode,
			"Evaluation ran without live data; score is a placeholder", 0,
			"no upstream source reachable")},
		EvaluatedAt: e.now().Unix(),
	}
}

// InvalidateScore drops the cached score for mint. The mint watcher calls
// this when on-chain activity mentions the mint.
func (e *Evaluator) InvalidateScore(mint string) {
	e.scores.Delete(mint)
}
