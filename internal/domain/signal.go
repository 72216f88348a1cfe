package domain

// SignalID identifies one kind of evidence a detector can emit.
// The set is closed: scoring.Categorize switches over every ID, so adding
// an ID without a category arm falls through to CategoryContext.
type SignalID string

// Permission signals.
const (
	SignalMintAuthority   SignalID = "MINT_AUTHORITY_PRESENT"
	SignalFreezeAuthority SignalID = "FREEZE_AUTHORITY_PRESENT"
)

// Distribution signals.
const (
	SignalTop10Above80   SignalID = "TOP10_GT_80"
	SignalTop10Above60   SignalID = "TOP10_GT_60"
	SignalTop10Above40   SignalID = "TOP10_GT_40"
	SignalDevHoldAbove50 SignalID = "DEV_HOLD_GT_50"
	SignalDevHoldAbove30 SignalID = "DEV_HOLD_GT_30"
)

// Liquidity signals. The liquidity detector always emits exactly one of these
// so consumers can tell "checked and safe" from "not checked".
const (
	SignalLPBurned        SignalID = "LP_BURNED"
	SignalLPNotBurned     SignalID = "LP_NOT_BURNED"
	SignalLPStatusUnknown SignalID = "LP_STATUS_UNKNOWN"
)

// Contract signals.
const (
	SignalNonstandardProgram SignalID = "NONSTANDARD_TOKEN_PROGRAM"
)

// Transaction-pattern signals.
const (
	SignalBundledLaunch  SignalID = "BUNDLED_LAUNCH"
	SignalClusterFunding SignalID = "CLUSTER_FUNDING"
	SignalDevDump        SignalID = "DEV_DUMP"
)

// Context (informational, never scored) signals.
const (
	SignalDevCandidate SignalID = "DEV_CANDIDATE"
	SignalHolderCount  SignalID = "HOLDER_COUNT"
	SignalFallbackMode SignalID = "FALLBACK_MODE"
)

// Signal is the atomic unit of evidence produced by a detector.
type Signal struct {
	ID    SignalID `json:"id"`
	Label string   `json:"label"`
	// Weight is the non-negative contribution toward the signal's category
	// total. Zero marks an informational-only signal.
	Weight float64 `json:"weight"`
	// Value carries optional free-form evidence, e.g. a measured percentage.
	Value string `json:"value,omitempty"`
	// Proof holds reference URIs supporting the claim, deduplicated.
	Proof []string `json:"proof,omitempty"`
}

// NewSignal builds a signal with weight coerced to a finite non-negative
// number and proof URIs deduplicated, preserving first-seen order.
func NewSignal(id SignalID, label string, weight float64, value string, proof ...string) Signal {
	if weight != weight || weight < 0 { // NaN or negative
		weight = 0
	}
	var deduped []string
	seen := make(map[string]struct{}, len(proof))
	for _, p := range proof {
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		deduped = append(deduped, p)
	}
	return Signal{ID: id, Label: label, Weight: weight, Value: value, Proof: deduped}
}
