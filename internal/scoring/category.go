// Package scoring turns detector signals into a bounded, explainable score.
package scoring

import "solana-token-risk/internal/domain"

// CategoryCap returns the fixed ceiling a category may contribute to the
// total score. Context is always zero: informational signals never score.
func CategoryCap(cat domain.RiskCategory) float64 {
	switch cat {
	case domain.CategoryPermissions:
		return 10
	case domain.CategoryDistribution:
		return 30
	case domain.CategoryLiquidity:
		return 30
	case domain.CategoryDevContract:
		return 10
	case domain.CategoryTxPatterns:
		return 20
	default:
		return 0
	}
}

// Categorize maps a signal ID to its risk category. The switch is total over
// the closed ID set; anything unrecognized is informational context, so a
// renamed or future ID can never silently score.
func Categorize(id domain.SignalID) domain.RiskCategory {
	switch id {
	case domain.SignalMintAuthority, domain.SignalFreezeAuthority:
		return domain.CategoryPermissions
	case domain.SignalTop10Above80, domain.SignalTop10Above60, domain.SignalTop10Above40,
		domain.SignalDevHoldAbove50, domain.SignalDevHoldAbove30:
		return domain.CategoryDistribution
	case domain.SignalLPBurned, domain.SignalLPNotBurned, domain.SignalLPStatusUnknown:
		return domain.CategoryLiquidity
	case domain.SignalNonstandardProgram:
		return domain.CategoryDevContract
	case domain.SignalBundledLaunch, domain.SignalClusterFunding, domain.SignalDevDump:
		return domain.CategoryTxPatterns
	case domain.SignalDevCandidate, domain.SignalHolderCount, domain.SignalFallbackMode:
		return domain.CategoryContext
	default:
		return domain.CategoryContext
	}
}
