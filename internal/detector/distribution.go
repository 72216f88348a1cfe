package detector

import (
	"context"
	"fmt"

	"solana-token-risk/internal/domain"
)

// TopHolderCount is how many of the largest accounts feed the concentration
// measurement.
const TopHolderCount = 10

// Concentration threshold bands, percent of total supply. Bands are
// mutually exclusive: only the tightest exceeded band fires.
const (
	Top10Band80 = 80.0
	Top10Band60 = 60.0
	Top10Band40 = 40.0

	DevHoldBand50 = 50.0
	DevHoldBand30 = 30.0
)

// DistributionFacts reports what the detector could actually measure, for
// the confidence estimator.
type DistributionFacts struct {
	Top10Pct     float64
	Top10Known   bool
	DevHoldPct   float64
	DevHoldKnown bool
}

// DetectDistribution measures top-holder concentration and, when a dev
// candidate is known, the share of supply the candidate's wallet owns.
// Returns the signals plus the measured facts.
func DetectDistribution(ctx context.Context, ledger Ledger, mint string, holders []domain.HolderBalance, supply uint64, dev domain.DevCandidate) ([]domain.Signal, DistributionFacts) {
	var facts DistributionFacts
	if supply == 0 || len(holders) == 0 {
		return nil, facts
	}

	var signals []domain.Signal

	topSum := uint64(0)
	for i, h := range holders {
		if i >= TopHolderCount {
			break
		}
		topSum += h.Amount
	}
	facts.Top10Pct = float64(topSum) / float64(supply) * 100
	facts.Top10Known = true
	if facts.Top10Pct > 100 {
		// Impossible percentage means the two sources disagree; discard the
		// datum rather than score garbage.
		facts.Top10Known = false
	}

	if facts.Top10Known {
		value := fmt.Sprintf("%.1f%%", facts.Top10Pct)
		switch {
		case facts.Top10Pct > Top10Band80:
			signals = append(signals, domain.NewSignal(domain.SignalTop10Above80,
				"Top 10 holders control more than 80% of supply", WeightTop10Above80, value))
		case facts.Top10Pct > Top10Band60:
			signals = append(signals, domain.NewSignal(domain.SignalTop10Above60,
				"Top 10 holders control more than 60% of supply", WeightTop10Above60, value))
		case facts.Top10Pct > Top10Band40:
			signals = append(signals, domain.NewSignal(domain.SignalTop10Above40,
				"Top 10 holders control more than 40% of supply", WeightTop10Above40, value))
		}
	}

	if dev.Address != "" {
		// The largest-accounts list carries token-account pubkeys, not owner
		// wallets, so the dev share is summed by owner instead of matched
		// against the list. A failed lookup leaves the datum unknown.
		devSum, err := ledger.GetTokenBalanceByOwner(ctx, dev.Address, mint)
		if err != nil {
			return signals, facts
		}
		facts.DevHoldPct = float64(devSum) / float64(supply) * 100
		facts.DevHoldKnown = facts.DevHoldPct <= 100

		if facts.DevHoldKnown {
			value := fmt.Sprintf("%.1f%%", facts.DevHoldPct)
			switch {
			case facts.DevHoldPct > DevHoldBand50:
				signals = append(signals, domain.NewSignal(domain.SignalDevHoldAbove50,
					"Dev candidate holds more than 50% of supply", WeightDevHoldAbove50, value,
					proofAccount(dev.Address)))
			case facts.DevHoldPct > DevHoldBand30:
				signals = append(signals, domain.NewSignal(domain.SignalDevHoldAbove30,
					"Dev candidate holds more than 30% of supply", WeightDevHoldAbove30, value,
					proofAccount(dev.Address)))
			}
		}
	}

	return signals, facts
}
