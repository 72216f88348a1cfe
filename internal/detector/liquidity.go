package detector

import (
	"context"
	"fmt"

	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/solana"
)

// LPBurnThreshold is the fraction of LP token supply that must sit at the
// incinerator before pooled liquidity counts as burned.
const LPBurnThreshold = 0.90

// DetectLiquidity discovers the token's primary pool, resolves its LP token
// mint and measures how much of the LP supply is burned. It always emits
// exactly one liquidity-category signal so downstream consumers can tell
// "checked and safe" from "not checked": LP_BURNED (informational),
// LP_NOT_BURNED (weighted), or LP_STATUS_UNKNOWN (informational).
func DetectLiquidity(ctx context.Context, pools PoolIndex, ledger Ledger, mint string) []domain.Signal {
	unknown := func(reason string) []domain.Signal {
		return []domain.Signal{domain.NewSignal(domain.SignalLPStatusUnknown,
			"LP burn status could not be determined", 0, reason, proofToken(mint))}
	}

	pool, err := pools.DiscoverPrimaryPool(ctx, mint)
	if err != nil || pool == nil {
		return unknown("no pool discovered")
	}

	lpMint, err := pools.ResolveLPMint(ctx, pool)
	if err != nil {
		return unknown("lp mint unresolved")
	}
	if lpMint == "" {
		// Pool model without an LP token (e.g. a bonding curve): there is
		// nothing to burn, so the status is structurally unknowable.
		return unknown(fmt.Sprintf("%s pool has no lp token", pool.DexFamily))
	}
	if solana.ValidateAddress(lpMint) != nil {
		return unknown("unparseable lp mint")
	}

	lpSupply, err := ledger.GetTokenSupply(ctx, lpMint)
	if err != nil || lpSupply == 0 {
		return unknown("lp supply unavailable")
	}

	burned, err := ledger.GetTokenBalanceByOwner(ctx, solana.Incinerator, lpMint)
	if err != nil {
		return unknown("incinerator balance unavailable")
	}

	frac := float64(burned) / float64(lpSupply)
	if frac > 1 {
		return unknown("impossible burn fraction")
	}
	value := fmt.Sprintf("%.1f%% of LP burned", frac*100)

	if frac >= LPBurnThreshold {
		return []domain.Signal{domain.NewSignal(domain.SignalLPBurned,
			"LP tokens are burned: pooled liquidity cannot be withdrawn", 0, value,
			proofToken(lpMint), proofAccount(pool.PoolID))}
	}
	return []domain.Signal{domain.NewSignal(domain.SignalLPNotBurned,
		"LP tokens are not burned: pooled liquidity can be withdrawn", WeightLPNotBurned, value,
		proofToken(lpMint), proofAccount(pool.PoolID))}
}
