// Package detector holds the independent heuristics that turn upstream
// token facts into signals. Detectors never abort an evaluation: a failed
// upstream read degrades to an empty signal set (or an explicit "unknown"
// signal where consumers must distinguish unchecked from safe).
package detector

import (
	"context"
	"fmt"

	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/solana"
)

// Ledger is the token-ledger capability detectors consume.
// solana.RPCClient satisfies it.
type Ledger interface {
	GetMintInfo(ctx context.Context, mint string) (*domain.MintInfo, error)
	GetTokenSupply(ctx context.Context, mint string) (uint64, error)
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]domain.HolderBalance, error)
	GetSignaturesForAddress(ctx context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error)
	GetTransaction(ctx context.Context, signature string) (*solana.Transaction, error)
	GetTokenBalanceByOwner(ctx context.Context, owner, mint string) (uint64, error)
}

// TxSource is the enhanced-transaction capability.
type TxSource interface {
	GetTransactionsByAddress(ctx context.Context, address string, limit int, ascending bool) ([]domain.EnhancedTransaction, error)
}

// PoolIndex is the pool/liquidity discovery capability.
type PoolIndex interface {
	DiscoverPrimaryPool(ctx context.Context, mint string) (*domain.Pool, error)
	ResolveLPMint(ctx context.Context, pool *domain.Pool) (string, error)
}

// Signal weights. Each lands in its category and is clamped by the category
// cap downstream.
const (
	WeightMintAuthority      = 10.0
	WeightFreezeAuthority    = 10.0
	WeightTop10Above80       = 30.0
	WeightTop10Above60       = 20.0
	WeightTop10Above40       = 10.0
	WeightDevHoldAbove50     = 20.0
	WeightDevHoldAbove30     = 10.0
	WeightLPNotBurned        = 30.0
	WeightNonstandardProgram = 10.0
	WeightBundledLaunch      = 10.0
	WeightClusterFunding     = 10.0
	WeightDevDump            = 10.0
)

// proofToken builds an explorer reference URI for a mint.
func proofToken(mint string) string {
	return fmt.Sprintf("https://solscan.io/token/%s", mint)
}

// proofAccount builds an explorer reference URI for an account.
func proofAccount(address string) string {
	return fmt.Sprintf("https://solscan.io/account/%s", address)
}

// proofTx builds an explorer reference URI for a transaction.
func proofTx(signature string) string {
	return fmt.Sprintf("https://solscan.io/tx/%s", signature)
}
