package scoring

import (
	"testing"
	"time"

	"solana-token-risk/internal/domain"
)

func age(d time.Duration) *time.Duration { return &d }

func TestEstimateConfidence_FallbackIsLow(t *testing.T) {
	got := EstimateConfidence(ConfidenceInput{LivePath: false})
	if got != domain.ConfidenceLow {
		t.Errorf("expected LOW in fallback, got %s", got)
	}
}

func TestEstimateConfidence_LiveDefaultsToMed(t *testing.T) {
	got := EstimateConfidence(ConfidenceInput{LivePath: true})
	if got != domain.ConfidenceMed {
		t.Errorf("expected MED on live path, got %s", got)
	}
}

func TestEstimateConfidence_HighRequiresAllConditions(t *testing.T) {
	full := ConfidenceInput{
		LivePath:           true,
		TokenAge:           age(48 * time.Hour),
		ConcentrationKnown: true,
		DevCandidateFound:  true,
		PremiumSource:      true,
	}
	if got := EstimateConfidence(full); got != domain.ConfidenceHigh {
		t.Fatalf("expected HIGH with all conditions, got %s", got)
	}

	// Dropping any single condition lands back at MED.
	cases := map[string]ConfidenceInput{
		"unknown age":   {LivePath: true, ConcentrationKnown: true, DevCandidateFound: true, PremiumSource: true},
		"young token":   {LivePath: true, TokenAge: age(time.Hour), ConcentrationKnown: true, DevCandidateFound: true, PremiumSource: true},
		"no top10":      {LivePath: true, TokenAge: age(48 * time.Hour), DevCandidateFound: true, PremiumSource: true},
		"no dev":        {LivePath: true, TokenAge: age(48 * time.Hour), ConcentrationKnown: true, PremiumSource: true},
		"no credential": {LivePath: true, TokenAge: age(48 * time.Hour), ConcentrationKnown: true, DevCandidateFound: true},
	}
	for name, in := range cases {
		if got := EstimateConfidence(in); got != domain.ConfidenceMed {
			t.Errorf("%s: expected MED, got %s", name, got)
		}
	}
}

func TestEstimateConfidence_ExactAgeBoundary(t *testing.T) {
	in := ConfidenceInput{
		LivePath:           true,
		TokenAge:           age(MinTokenAgeForHighConfidence),
		ConcentrationKnown: true,
		DevCandidateFound:  true,
		PremiumSource:      true,
	}
	if got := EstimateConfidence(in); got != domain.ConfidenceHigh {
		t.Errorf("age exactly at threshold should qualify, got %s", got)
	}
}
