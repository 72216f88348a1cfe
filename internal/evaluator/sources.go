package evaluator

import (
	"context"
	"fmt"
	"time"

	"solana-token-risk/internal/cache"
	"solana-token-risk/internal/detector"
	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/observability"
	"solana-token-risk/internal/solana"
)

// upstreamTTL bounds how long raw upstream facts are reused. Short enough
// that authority revocations and supply changes show up promptly.
const upstreamTTL = 2 * time.Minute

// cachedLedger decorates a ledger with per-call TTL caching keyed by
// (method, subject). Paginated reads (signatures, transactions) pass through
// uncached.
type cachedLedger struct {
	inner    detector.Ledger
	mintInfo *cache.Cache[string, *domain.MintInfo]
	supply   *cache.Cache[string, uint64]
	largest  *cache.Cache[string, []domain.HolderBalance]
	balance  *cache.Cache[string, uint64]
}

var _ detector.Ledger = (*cachedLedger)(nil)

func newCachedLedger(inner detector.Ledger) *cachedLedger {
	return &cachedLedger{
		inner:    inner,
		mintInfo: cache.New[string, *domain.MintInfo](),
		supply:   cache.New[string, uint64](),
		largest:  cache.New[string, []domain.HolderBalance](),
		balance:  cache.New[string, uint64](),
	}
}

func (l *cachedLedger) GetMintInfo(ctx context.Context, mint string) (*domain.MintInfo, error) {
	if info, ok := l.mintInfo.Get(mint); ok {
		observability.RecordCacheLookup("mint_info", true)
		return info, nil
	}
	observability.RecordCacheLookup("mint_info", false)

	start := time.Now()
	info, err := l.inner.GetMintInfo(ctx, mint)
	observability.RecordUpstreamCall("rpc", "getMintInfo", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	l.mintInfo.Set(mint, info, upstreamTTL)
	return info, nil
}

func (l *cachedLedger) GetTokenSupply(ctx context.Context, mint string) (uint64, error) {
	if supply, ok := l.supply.Get(mint); ok {
		observability.RecordCacheLookup("token_supply", true)
		return supply, nil
	}
	observability.RecordCacheLookup("token_supply", false)

	start := time.Now()
	supply, err := l.inner.GetTokenSupply(ctx, mint)
	observability.RecordUpstreamCall("rpc", "getTokenSupply", time.Since(start).Seconds(), err)
	if err != nil {
		return 0, err
	}
	l.supply.Set(mint, supply, upstreamTTL)
	return supply, nil
}

func (l *cachedLedger) GetTokenLargestAccounts(ctx context.Context, mint string) ([]domain.HolderBalance, error) {
	if holders, ok := l.largest.Get(mint); ok {
		observability.RecordCacheLookup("largest_accounts", true)
		return holders, nil
	}
	observability.RecordCacheLookup("largest_accounts", false)

	start := time.Now()
	holders, err := l.inner.GetTokenLargestAccounts(ctx, mint)
	observability.RecordUpstreamCall("rpc", "getTokenLargestAccounts", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	l.largest.Set(mint, holders, upstreamTTL)
	return holders, nil
}

func (l *cachedLedger) GetTokenBalanceByOwner(ctx context.Context, owner, mint string) (uint64, error) {
	key := owner + "|" + mint
	if bal, ok := l.balance.Get(key); ok {
		observability.RecordCacheLookup("owner_balance", true)
		return bal, nil
	}
	observability.RecordCacheLookup("owner_balance", false)

	start := time.Now()
	bal, err := l.inner.GetTokenBalanceByOwner(ctx, owner, mint)
	observability.RecordUpstreamCall("rpc", "getTokenAccountsByOwner", time.Since(start).Seconds(), err)
	if err != nil {
		return 0, err
	}
	l.balance.Set(key, bal, upstreamTTL)
	return bal, nil
}

func (l *cachedLedger) GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	start := time.Now()
	sigs, err := l.inner.GetSignaturesForAddress(ctx, address, opts)
	observability.RecordUpstreamCall("rpc", "getSignaturesForAddress", time.Since(start).Seconds(), err)
	return sigs, err
}

func (l *cachedLedger) GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error) {
	start := time.Now()
	tx, err := l.inner.GetTransaction(ctx, signature)
	observability.RecordUpstreamCall("rpc", "getTransaction", time.Since(start).Seconds(), err)
	return tx, err
}

// cachedTxSource decorates an enhanced-transaction source with TTL caching
// keyed by the full parameter set.
type cachedTxSource struct {
	inner detector.TxSource
	txs   *cache.Cache[string, []domain.EnhancedTransaction]
}

var _ detector.TxSource = (*cachedTxSource)(nil)

func newCachedTxSource(inner detector.TxSource) *cachedTxSource {
	return &cachedTxSource{
		inner: inner,
		txs:   cache.New[string, []domain.EnhancedTransaction](),
	}
}

func (s *cachedTxSource) GetTransactionsByAddress(ctx context.Context, address string, limit int, ascending bool) ([]domain.EnhancedTransaction, error) {
	key := fmt.Sprintf("%s|%d|%t", address, limit, ascending)
	if txs, ok := s.txs.Get(key); ok {
		observability.RecordCacheLookup("enhanced_txs", true)
		return txs, nil
	}
	observability.RecordCacheLookup("enhanced_txs", false)

	start := time.Now()
	txs, err := s.inner.GetTransactionsByAddress(ctx, address, limit, ascending)
	observability.RecordUpstreamCall("helius", "transactionsByAddress", time.Since(start).Seconds(), err)
	if err != nil {
		return nil, err
	}
	s.txs.Set(key, txs, upstreamTTL)
	return txs, nil
}
