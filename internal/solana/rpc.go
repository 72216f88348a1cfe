package solana

import (
	"context"

	"solana-token-risk/internal/domain"
)

// RPCClient defines the Solana RPC HTTP interface the engine consumes.
type RPCClient interface {
	// GetMintInfo retrieves and parses a token mint account.
	// Returns nil if the account does not exist.
	GetMintInfo(ctx context.Context, mint string) (*domain.MintInfo, error)

	// GetTokenSupply retrieves the raw total supply of a mint.
	GetTokenSupply(ctx context.Context, mint string) (uint64, error)

	// GetTokenLargestAccounts retrieves the largest token accounts for a mint,
	// ordered by amount descending.
	GetTokenLargestAccounts(ctx context.Context, mint string) ([]domain.HolderBalance, error)

	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetAccountOwner retrieves the owning program of an account.
	// Returns "" if the account does not exist.
	GetAccountOwner(ctx context.Context, address string) (string, error)

	// GetAccountData retrieves the raw data bytes of an account.
	// Returns nil if the account does not exist.
	GetAccountData(ctx context.Context, address string) ([]byte, error)

	// GetTransaction retrieves a transaction by signature.
	GetTransaction(ctx context.Context, signature string) (*Transaction, error)

	// GetTokenBalanceByOwner sums the raw balance of all token accounts the
	// owner holds for the given mint.
	GetTokenBalanceByOwner(ctx context.Context, owner, mint string) (uint64, error)
}

// Transaction represents a Solana transaction.
type Transaction struct {
	Slot      int64
	Signature string
	BlockTime int64 // Unix timestamp (seconds)
	Meta      *TransactionMeta
	Message   *TransactionMessage
}

// TransactionMeta contains transaction metadata.
type TransactionMeta struct {
	Err         interface{}
	LogMessages []string
}

// TransactionMessage contains parsed transaction message.
type TransactionMessage struct {
	AccountKeys []string
}
