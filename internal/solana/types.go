package solana

// Well-known program and system addresses.
const (
	// TokenProgram is the baseline SPL fungible-token program.
	TokenProgram = "TokenkegQfeZyiNwAJbNbGKPFXCWuBvf9Ss623VQ5DA"
	// Token2022Program is the extension-capable token program. Mints owned by
	// it may carry transfer hooks the engine does not analyze.
	Token2022Program = "TokenzQdBNbLqP5VEhdkAS6EPFLC1PHnBqCXEpPxuEb"
	// Incinerator is the well-known burn address: balances sent here are
	// treated as destroyed supply.
	Incinerator = "1nc1nerator11111111111111111111111111111111"
)

// SignatureInfo from getSignaturesForAddress.
type SignatureInfo struct {
	Signature string
	Slot      int64
	BlockTime *int64
	Err       interface{}
}

// SignaturesOpts defines optional pagination parameters for getSignaturesForAddress.
type SignaturesOpts struct {
	Before string // Start searching backwards from this signature
	Until  string // Search until this signature
	Limit  int    // Maximum number of signatures to return
}
