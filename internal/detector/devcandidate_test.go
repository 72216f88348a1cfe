package detector

import (
	"context"
	"fmt"
	"testing"

	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/solana"
)

func TestSelectDevCandidate_MintAuthorityWins(t *testing.T) {
	info := &domain.MintInfo{
		MintAuthority:   strptr("mintAuth"),
		FreezeAuthority: strptr("freezeAuth"),
	}

	candidate, signals := SelectDevCandidate(context.Background(), &stubLedger{}, info, "mint")

	if candidate.Address != "mintAuth" || candidate.Reason != domain.DevReasonMintAuthority {
		t.Errorf("unexpected candidate: %+v", candidate)
	}
	if len(signals) != 1 || signals[0].ID != domain.SignalDevCandidate {
		t.Fatalf("expected one informational signal, got %v", signals)
	}
	if signals[0].Weight != 0 {
		t.Errorf("dev-candidate signal must be informational, weight %v", signals[0].Weight)
	}
}

func TestSelectDevCandidate_FreezeAuthorityFallback(t *testing.T) {
	info := &domain.MintInfo{FreezeAuthority: strptr("freezeAuth")}

	candidate, _ := SelectDevCandidate(context.Background(), &stubLedger{}, info, "mint")

	if candidate.Address != "freezeAuth" || candidate.Reason != domain.DevReasonFreezeAuthority {
		t.Errorf("unexpected candidate: %+v", candidate)
	}
}

func TestSelectDevCandidate_EarliestSigner(t *testing.T) {
	ledger := &stubLedger{
		signatures: [][]solana.SignatureInfo{
			{{Signature: "new"}, {Signature: "older"}, {Signature: "oldest"}},
		},
		tx: &solana.Transaction{
			Signature: "oldest",
			Message:   &solana.TransactionMessage{AccountKeys: []string{"feePayer", "program"}},
		},
	}

	candidate, _ := SelectDevCandidate(context.Background(), ledger, &domain.MintInfo{}, "mint")

	if candidate.Address != "feePayer" || candidate.Reason != domain.DevReasonEarliestSigner {
		t.Errorf("unexpected candidate: %+v", candidate)
	}
}

func TestSelectDevCandidate_HistoryBeyondPageBudget(t *testing.T) {
	// Every page comes back full, so the first transaction is never reached.
	// A mid-history fee payer must not be promoted to dev candidate.
	fullPage := make([]solana.SignatureInfo, earliestSignatureProbe)
	for i := range fullPage {
		fullPage[i] = solana.SignatureInfo{Signature: fmt.Sprintf("sig%d", i)}
	}
	pages := make([][]solana.SignatureInfo, maxSignaturePages)
	for i := range pages {
		pages[i] = fullPage
	}
	ledger := &stubLedger{
		signatures: pages,
		tx: &solana.Transaction{
			Message: &solana.TransactionMessage{AccountKeys: []string{"midHistoryPayer"}},
		},
	}

	candidate, _ := SelectDevCandidate(context.Background(), ledger, &domain.MintInfo{}, "mint")

	if candidate.Address != "" || candidate.Reason != domain.DevReasonUnknown {
		t.Errorf("expected unknown candidate for unreachable launch, got %+v", candidate)
	}
}

func TestSelectDevCandidate_Unknown(t *testing.T) {
	candidate, signals := SelectDevCandidate(context.Background(), &stubLedger{}, nil, "mint")

	if candidate.Address != "" || candidate.Reason != domain.DevReasonUnknown {
		t.Errorf("expected unknown candidate, got %+v", candidate)
	}
	if signals != nil {
		t.Errorf("expected no signal without a candidate, got %v", signals)
	}
}

func TestSelectDevCandidate_UpstreamFailureDegrades(t *testing.T) {
	ledger := &stubLedger{err: errUpstream}

	candidate, _ := SelectDevCandidate(context.Background(), ledger, nil, "mint")

	if candidate.Reason != domain.DevReasonUnknown {
		t.Errorf("upstream failure must degrade to unknown, got %+v", candidate)
	}
}
