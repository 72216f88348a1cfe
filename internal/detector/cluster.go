package detector

import (
	"fmt"

	"solana-token-risk/internal/domain"
)

// Cluster-funding window and threshold.
const (
	ClusterWindow    = 15 * 60 // seconds after launch
	ClusterMinBuyers = 5       // distinct early buyers funded by one wallet
)

// DetectClusterFunding looks for one wallet funding many early buyers with
// native transfers inside the post-launch window, a pattern of coordinated
// buying. txs must be ordered ascending by timestamp.
func DetectClusterFunding(txs []domain.EnhancedTransaction, mint string) []domain.Signal {
	if len(txs) == 0 {
		return nil
	}
	launch := txs[0].Timestamp
	if launch == 0 {
		return nil
	}

	// Early buyers: unique recipients of the token within the window.
	earlyBuyers := make(map[string]struct{})
	for _, tx := range txs {
		if tx.Timestamp-launch > ClusterWindow {
			break
		}
		for _, tt := range tx.TokenTransfers {
			if tt.Mint == mint && tt.To != "" {
				earlyBuyers[tt.To] = struct{}{}
			}
		}
	}
	if len(earlyBuyers) == 0 {
		return nil
	}

	// Funder → set of distinct early buyers it sent native currency to.
	funded := make(map[string]map[string]struct{})
	for _, tx := range txs {
		if tx.Timestamp-launch > ClusterWindow {
			break
		}
		for _, nt := range tx.NativeTransfers {
			if nt.From == "" || nt.Lamports == 0 {
				continue
			}
			if _, isBuyer := earlyBuyers[nt.To]; !isBuyer {
				continue
			}
			if funded[nt.From] == nil {
				funded[nt.From] = make(map[string]struct{})
			}
			funded[nt.From][nt.To] = struct{}{}
		}
	}

	var topFunder string
	topCount := 0
	for funder, buyers := range funded {
		// Deterministic winner on ties: prefer the lexicographically
		// smaller funder address.
		if len(buyers) > topCount || (len(buyers) == topCount && funder < topFunder) {
			topFunder = funder
			topCount = len(buyers)
		}
	}

	if topCount < ClusterMinBuyers {
		return nil
	}
	return []domain.Signal{domain.NewSignal(domain.SignalClusterFunding,
		fmt.Sprintf("One wallet funded %d distinct early buyers", topCount),
		WeightClusterFunding,
		topFunder,
		proofAccount(topFunder))}
}
