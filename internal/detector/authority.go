package detector

import "solana-token-risk/internal/domain"

// DetectAuthorities inspects mint and freeze authority presence on the mint
// account. Each present authority contributes independently; the category
// cap bounds their sum downstream.
func DetectAuthorities(info *domain.MintInfo) []domain.Signal {
	if info == nil {
		return nil
	}

	var signals []domain.Signal
	if info.MintAuthority != nil {
		signals = append(signals, domain.NewSignal(
			domain.SignalMintAuthority,
			"Mint authority is active: holder can mint new supply at will",
			WeightMintAuthority,
			*info.MintAuthority,
			proofToken(info.Mint),
			proofAccount(*info.MintAuthority),
		))
	}
	if info.FreezeAuthority != nil {
		signals = append(signals, domain.NewSignal(
			domain.SignalFreezeAuthority,
			"Freeze authority is active: holder can freeze any token account",
			WeightFreezeAuthority,
			*info.FreezeAuthority,
			proofToken(info.Mint),
			proofAccount(*info.FreezeAuthority),
		))
	}
	return signals
}
