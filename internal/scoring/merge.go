package scoring

import "solana-token-risk/internal/domain"

// Merge combines a fast-path signal list with a deep-path list. A deep
// signal replaces a base signal with the same ID, letting slow detectors
// refine or retract conclusions reached quickly. Output order is
// deterministic: base order first, then deep-only signals in input order.
// Merge is idempotent: Merge(Merge(a, b), b) == Merge(a, b).
func Merge(base, deep []domain.Signal) []domain.Signal {
	deepByID := make(map[domain.SignalID]domain.Signal, len(deep))
	for _, s := range deep {
		deepByID[s.ID] = s
	}

	merged := make([]domain.Signal, 0, len(base)+len(deep))
	seen := make(map[domain.SignalID]struct{}, len(base)+len(deep))

	for _, s := range base {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		if d, ok := deepByID[s.ID]; ok {
			merged = append(merged, d)
		} else {
			merged = append(merged, s)
		}
	}
	for _, s := range deep {
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		merged = append(merged, s)
	}

	return merged
}
