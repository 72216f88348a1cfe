package detector

import (
	"fmt"

	"solana-token-risk/internal/domain"
)

// Bundled-launch windows and thresholds. Two widening windows are evaluated;
// the stricter (shorter) window takes precedence when both match. Values are
// policy, hand-tuned, not derived from first principles.
const (
	LaunchWindowShort    = 60  // seconds after first transaction
	LaunchWindowLong     = 180 // seconds after first transaction
	MinBuyersWindowShort = 6
	MinBuyersWindowLong  = 12
)

// DetectBundledLaunch flags tokens where unusually many unique addresses
// received the token within seconds of its first recorded transaction.
// txs must be ordered ascending by timestamp.
func DetectBundledLaunch(txs []domain.EnhancedTransaction, mint string) []domain.Signal {
	if len(txs) == 0 {
		return nil
	}
	launch := txs[0].Timestamp
	if launch == 0 {
		return nil
	}

	shortBuyers := make(map[string]struct{})
	longBuyers := make(map[string]struct{})
	var proofs []string

	for _, tx := range txs {
		offset := tx.Timestamp - launch
		if offset > LaunchWindowLong {
			break
		}
		for _, tt := range tx.TokenTransfers {
			if tt.Mint != mint || tt.To == "" {
				continue
			}
			longBuyers[tt.To] = struct{}{}
			if offset <= LaunchWindowShort {
				shortBuyers[tt.To] = struct{}{}
			}
			if len(proofs) < 5 {
				proofs = append(proofs, proofTx(tx.Signature))
			}
		}
	}

	switch {
	case len(shortBuyers) >= MinBuyersWindowShort:
		return []domain.Signal{domain.NewSignal(domain.SignalBundledLaunch,
			fmt.Sprintf("%d unique buyers within %ds of launch", len(shortBuyers), LaunchWindowShort),
			WeightBundledLaunch,
			fmt.Sprintf("%d buyers / %ds", len(shortBuyers), LaunchWindowShort),
			proofs...)}
	case len(longBuyers) >= MinBuyersWindowLong:
		return []domain.Signal{domain.NewSignal(domain.SignalBundledLaunch,
			fmt.Sprintf("%d unique buyers within %ds of launch", len(longBuyers), LaunchWindowLong),
			WeightBundledLaunch,
			fmt.Sprintf("%d buyers / %ds", len(longBuyers), LaunchWindowLong),
			proofs...)}
	}
	return nil
}
