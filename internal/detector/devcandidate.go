package detector

import (
	"context"
	"fmt"

	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/solana"
)

// earliestSignatureProbe is the signature page size used when hunting for
// the mint's first transaction; maxSignaturePages bounds the total walk so a
// very active mint cannot stall the fast path.
const (
	earliestSignatureProbe = 1000
	maxSignaturePages      = 10
)

// SelectDevCandidate picks the best-guess deployer address for a mint using
// a strict priority order: mint authority, then freeze authority, then the
// earliest transaction signer for the mint account. The returned signal is
// informational only; the candidate itself feeds the distribution and
// dev-dump detectors.
func SelectDevCandidate(ctx context.Context, ledger Ledger, info *domain.MintInfo, mint string) (domain.DevCandidate, []domain.Signal) {
	candidate := domain.DevCandidate{Reason: domain.DevReasonUnknown}

	switch {
	case info != nil && info.MintAuthority != nil:
		candidate = domain.DevCandidate{Address: *info.MintAuthority, Reason: domain.DevReasonMintAuthority}
	case info != nil && info.FreezeAuthority != nil:
		candidate = domain.DevCandidate{Address: *info.FreezeAuthority, Reason: domain.DevReasonFreezeAuthority}
	default:
		if signer := earliestSigner(ctx, ledger, mint); signer != "" {
			candidate = domain.DevCandidate{Address: signer, Reason: domain.DevReasonEarliestSigner}
		}
	}

	if candidate.Address == "" {
		return candidate, nil
	}

	signal := domain.NewSignal(
		domain.SignalDevCandidate,
		fmt.Sprintf("Dev candidate selected via %s", candidate.Reason),
		0,
		candidate.Address,
		proofAccount(candidate.Address),
	)
	return candidate, []domain.Signal{signal}
}

// earliestSigner walks the mint's signature history backwards to its oldest
// successful transaction and returns that transaction's fee payer. Returns
// "" when history is unavailable or the walk exhausts its page budget before
// reaching the start of history: a mid-history fee payer is not a deployer.
func earliestSigner(ctx context.Context, ledger Ledger, mint string) string {
	var oldest string
	before := ""
	reachedStart := false

	for page := 0; page < maxSignaturePages; page++ {
		sigs, err := ledger.GetSignaturesForAddress(ctx, mint, &solana.SignaturesOpts{
			Before: before,
			Limit:  earliestSignatureProbe,
		})
		if err != nil {
			return ""
		}
		if len(sigs) == 0 {
			reachedStart = true
			break
		}

		last := sigs[len(sigs)-1]
		oldest = last.Signature
		if len(sigs) < earliestSignatureProbe {
			reachedStart = true // short page marks the start of history
			break
		}
		before = last.Signature
	}

	if oldest == "" || !reachedStart {
		return ""
	}

	tx, err := ledger.GetTransaction(ctx, oldest)
	if err != nil || tx == nil || tx.Message == nil || len(tx.Message.AccountKeys) == 0 {
		return ""
	}
	// The first account key is the fee payer, which signed the transaction.
	return tx.Message.AccountKeys[0]
}
