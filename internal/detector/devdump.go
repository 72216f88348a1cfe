package detector

import (
	"fmt"
	"math"

	"solana-token-risk/internal/domain"
)

// Dev-dump window and thresholds.
const (
	DevDumpWindow = 60 * 60 // seconds after launch
	// DevDumpSupplyPct flags when the dev moved at least this percent of
	// total supply out within the window.
	DevDumpSupplyPct = 1.0
	// DevDumpAbsolute is the fallback threshold in UI token units when total
	// supply is unknown.
	DevDumpAbsolute = 1_000_000.0
)

// DetectDevDump sums token outflow from the dev candidate within the
// post-launch window. No-ops cleanly when no candidate was found.
// txs must be ordered ascending by timestamp; supply is raw units with the
// given decimals, zero when unknown.
func DetectDevDump(txs []domain.EnhancedTransaction, mint string, dev domain.DevCandidate, supply uint64, decimals uint8) []domain.Signal {
	if dev.Address == "" || len(txs) == 0 {
		return nil
	}
	launch := txs[0].Timestamp
	if launch == 0 {
		return nil
	}

	outflow := 0.0
	var proofs []string
	for _, tx := range txs {
		if tx.Timestamp-launch > DevDumpWindow {
			break
		}
		for _, tt := range tx.TokenTransfers {
			if tt.Mint != mint || tt.From != dev.Address || tt.Amount <= 0 {
				continue
			}
			outflow += tt.Amount
			if len(proofs) < 5 {
				proofs = append(proofs, proofTx(tx.Signature))
			}
		}
	}
	if outflow == 0 {
		return nil
	}

	if supply > 0 {
		uiSupply := float64(supply) / math.Pow10(int(decimals))
		if uiSupply <= 0 {
			return nil
		}
		pct := outflow / uiSupply * 100
		if pct < DevDumpSupplyPct {
			return nil
		}
		return []domain.Signal{domain.NewSignal(domain.SignalDevDump,
			"Dev candidate dumped tokens shortly after launch",
			WeightDevDump,
			fmt.Sprintf("%.2f%% of supply", pct),
			proofs...)}
	}

	// Supply unavailable: fall back to an absolute quantity threshold.
	if outflow < DevDumpAbsolute {
		return nil
	}
	return []domain.Signal{domain.NewSignal(domain.SignalDevDump,
		"Dev candidate dumped tokens shortly after launch",
		WeightDevDump,
		fmt.Sprintf("%.0f tokens", outflow),
		proofs...)}
}
