package detector

import (
	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/solana"
)

// DetectNonstandardProgram flags mints owned by a program other than the
// baseline SPL token program. Token-2022 mints may carry transfer hooks or
// fee extensions this engine does not analyze.
func DetectNonstandardProgram(info *domain.MintInfo) []domain.Signal {
	if info == nil || info.OwnerProgram == "" || info.OwnerProgram == solana.TokenProgram {
		return nil
	}

	label := "Mint is owned by a nonstandard token program; unanalyzed transfer logic may exist"
	if info.OwnerProgram == solana.Token2022Program {
		label = "Mint uses Token-2022; extensions such as transfer hooks may exist"
	}

	return []domain.Signal{domain.NewSignal(
		domain.SignalNonstandardProgram,
		label,
		WeightNonstandardProgram,
		info.OwnerProgram,
		proofToken(info.Mint),
	)}
}
