package scoring

import (
	"math"

	"solana-token-risk/internal/domain"
)

// Score thresholds for the risk level classification.
const (
	LevelHighThreshold   = 70
	LevelMediumThreshold = 35
)

// Verdict thresholds for the user-facing verdict. Deliberately distinct from
// the level thresholds: the two classifications serve different consumers
// and must stay independently tunable.
const (
	VerdictAvoidThreshold   = 60
	VerdictCautionThreshold = 30
)

// Verdict is the user-facing recommendation derived from the score.
type Verdict string

const (
	VerdictOK      Verdict = "ok"
	VerdictCaution Verdict = "caution"
	VerdictAvoid   Verdict = "avoid"
)

// Score sums signal weights per category, clamps each category to its cap,
// and clamps the grand total to [0, 100]. Order-independent: the sum is
// commutative and clamping happens per category after accumulation.
func Score(signals []domain.Signal) int {
	perCategory := make(map[domain.RiskCategory]float64)
	for _, s := range signals {
		w := s.Weight
		if math.IsNaN(w) || math.IsInf(w, 0) || w < 0 {
			w = 0
		}
		perCategory[Categorize(s.ID)] += w
	}

	total := 0.0
	for cat, sum := range perCategory {
		limit := CategoryCap(cat)
		if sum > limit {
			sum = limit
		}
		if sum < 0 {
			sum = 0
		}
		total += sum
	}

	if total > 100 {
		total = 100
	}
	if total < 0 {
		total = 0
	}
	return int(math.Round(total))
}

// Level derives the discrete risk level from a score.
func Level(score int) domain.RiskLevel {
	switch {
	case score >= LevelHighThreshold:
		return domain.LevelHigh
	case score >= LevelMediumThreshold:
		return domain.LevelMedium
	default:
		return domain.LevelLow
	}
}

// VerdictFor derives the user-facing verdict from a score. Kept separate
// from Level: see threshold comments above.
func VerdictFor(score int) Verdict {
	switch {
	case score >= VerdictAvoidThreshold:
		return VerdictAvoid
	case score >= VerdictCautionThreshold:
		return VerdictCaution
	default:
		return VerdictOK
	}
}
