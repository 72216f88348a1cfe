package scoring

import (
	"time"

	"solana-token-risk/internal/domain"
)

// MinTokenAgeForHighConfidence is the minimum known token age before an
// evaluation can be rated high confidence. Very young tokens have too little
// history for the transaction-pattern detectors to mean much.
const MinTokenAgeForHighConfidence = 24 * time.Hour

// ConfidenceInput captures the data-completeness facts confidence is
// derived from.
type ConfidenceInput struct {
	// LivePath is false when the evaluation ran in the data-scarce fallback.
	LivePath bool
	// TokenAge is the known age of the token; nil when unknown.
	TokenAge *time.Duration
	// ConcentrationKnown is true when top-holder concentration was measured.
	ConcentrationKnown bool
	// DevCandidateFound is true when a dev candidate address was identified.
	DevCandidateFound bool
	// PremiumSource is true when a premium data-source credential is
	// configured.
	PremiumSource bool
}

// EstimateConfidence rates how trustworthy the evaluation is. It never
// influences the score; it is reported alongside it.
func EstimateConfidence(in ConfidenceInput) domain.Confidence {
	if !in.LivePath {
		return domain.ConfidenceLow
	}
	if in.TokenAge != nil && *in.TokenAge >= MinTokenAgeForHighConfidence &&
		in.ConcentrationKnown && in.DevCandidateFound && in.PremiumSource {
		return domain.ConfidenceHigh
	}
	return domain.ConfidenceMed
}
