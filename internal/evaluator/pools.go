package evaluator

import (
	"context"
	"fmt"
	"strings"

	"github.com/mr-tron/base58"

	"solana-token-risk/internal/cache"
	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/observability"
	"solana-token-risk/internal/solana"
)

// Raydium AMM v4 pool state layout offsets. The lp mint pubkey sits after
// the status/fee fields and the base/quote mints.
const (
	raydiumLPMintOffset = 464
	raydiumMinStateLen  = raydiumLPMintOffset + 32
)

// PoolDiscoverer finds a token's primary trading pool.
type PoolDiscoverer interface {
	DiscoverPrimaryPool(ctx context.Context, mint string) (*domain.Pool, error)
}

// PoolIndex combines pool discovery with on-chain LP mint resolution.
// Discovery results are cached per mint; a failed discovery is not cached so
// a token whose pool appears later is picked up promptly.
type PoolIndex struct {
	discoverer PoolDiscoverer
	ledger     solana.RPCClient
	pools      *cache.Cache[string, *domain.Pool]
}

// NewPoolIndex builds a PoolIndex over a discovery client and an RPC client.
func NewPoolIndex(discoverer PoolDiscoverer, ledger solana.RPCClient) *PoolIndex {
	return &PoolIndex{
		discoverer: discoverer,
		ledger:     ledger,
		pools:      cache.New[string, *domain.Pool](),
	}
}

// DiscoverPrimaryPool returns the token's primary pool, from cache when fresh.
func (p *PoolIndex) DiscoverPrimaryPool(ctx context.Context, mint string) (*domain.Pool, error) {
	if pool, ok := p.pools.Get(mint); ok {
		observability.RecordCacheLookup("pool_discovery", true)
		return pool, nil
	}
	observability.RecordCacheLookup("pool_discovery", false)

	pool, err := p.discoverer.DiscoverPrimaryPool(ctx, mint)
	if err != nil {
		return nil, err
	}
	p.pools.Set(mint, pool, cache.DiscoveryTTL)
	return pool, nil
}

// ResolveLPMint resolves the LP token mint for a pool. Raydium-family pools
// carry it in the on-chain pool state; bonding-curve venues have no LP token
// and resolve to "".
func (p *PoolIndex) ResolveLPMint(ctx context.Context, pool *domain.Pool) (string, error) {
	if pool == nil {
		return "", fmt.Errorf("nil pool")
	}

	family := strings.ToLower(pool.DexFamily)
	switch {
	case strings.Contains(family, "raydium"):
		return p.raydiumLPMint(ctx, pool.PoolID)
	case strings.Contains(family, "pump"):
		// pump.fun style bonding curves mint no LP token.
		return "", nil
	default:
		return "", nil
	}
}

func (p *PoolIndex) raydiumLPMint(ctx context.Context, poolID string) (string, error) {
	data, err := p.ledger.GetAccountData(ctx, poolID)
	if err != nil {
		return "", fmt.Errorf("fetch pool state %s: %w", poolID, err)
	}
	if len(data) < raydiumMinStateLen {
		return "", fmt.Errorf("pool state %s too short: %d bytes", poolID, len(data))
	}
	return base58.Encode(data[raydiumLPMintOffset : raydiumLPMintOffset+32]), nil
}
