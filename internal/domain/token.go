package domain

// MintInfo holds the control-account facts for a token mint.
type MintInfo struct {
	Mint            string
	MintAuthority   *string // nil when revoked
	FreezeAuthority *string // nil when revoked
	Supply          uint64  // raw units
	Decimals        uint8
	OwnerProgram    string // program that owns the mint account
}

// HolderBalance is one entry of a largest-holders listing.
type HolderBalance struct {
	Address string
	Amount  uint64 // raw units
}

// TokenAccountsPage is one page of a holder enumeration.
type TokenAccountsPage struct {
	Accounts   []HolderBalance
	NextCursor string // empty when this is the last page
}

// NativeTransfer is a lamport movement inside an enhanced transaction.
type NativeTransfer struct {
	From     string
	To       string
	Lamports uint64
}

// TokenTransfer is a token movement inside an enhanced transaction.
type TokenTransfer struct {
	From   string
	To     string
	Mint   string
	Amount float64 // UI units as reported upstream
}

// EnhancedTransaction is the logical shape supplied by the
// enhanced-transaction source, oldest-first when ordered ascending.
type EnhancedTransaction struct {
	Signature       string
	Timestamp       int64 // unix seconds
	NativeTransfers []NativeTransfer
	TokenTransfers  []TokenTransfer
}

// Pool identifies a token's primary trading pool.
type Pool struct {
	PoolID    string
	DexFamily string // e.g. "raydium", "pumpfun"
}

// DevCandidateReason records how the dev-candidate address was chosen.
type DevCandidateReason string

const (
	DevReasonMintAuthority   DevCandidateReason = "mint_authority"
	DevReasonFreezeAuthority DevCandidateReason = "freeze_authority"
	DevReasonEarliestSigner  DevCandidateReason = "earliest_signer"
	DevReasonUnknown         DevCandidateReason = "unknown"
)

// DevCandidate is the best-guess deployer address for a token.
type DevCandidate struct {
	Address string // empty when unknown
	Reason  DevCandidateReason
}
