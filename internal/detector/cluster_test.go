package detector

import (
	"fmt"
	"testing"

	"solana-token-risk/internal/domain"
)

// fundTx builds one native transfer from funder to recipient.
func fundTx(ts int64, funder, to string) domain.EnhancedTransaction {
	return domain.EnhancedTransaction{
		Signature: fmt.Sprintf("fund-%d-%s", ts, to),
		Timestamp: ts,
		NativeTransfers: []domain.NativeTransfer{
			{From: funder, To: to, Lamports: 50_000_000},
		},
	}
}

func TestDetectClusterFunding_Fires(t *testing.T) {
	launch := int64(1_700_000_000)
	txs := []domain.EnhancedTransaction{buyTx(launch, "b0")}
	for i := 0; i < ClusterMinBuyers; i++ {
		buyer := fmt.Sprintf("b%d", i)
		txs = append(txs,
			fundTx(launch+int64(i*10), "funder", buyer),
			buyTx(launch+int64(i*10+1), buyer))
	}

	signals := DetectClusterFunding(txs, testMint)

	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if signals[0].ID != domain.SignalClusterFunding {
		t.Errorf("unexpected signal %s", signals[0].ID)
	}
	if signals[0].Value != "funder" {
		t.Errorf("expected the funder address as evidence, got %q", signals[0].Value)
	}
}

func TestDetectClusterFunding_BelowThreshold(t *testing.T) {
	launch := int64(1_700_000_000)
	var txs []domain.EnhancedTransaction
	for i := 0; i < ClusterMinBuyers-1; i++ {
		buyer := fmt.Sprintf("b%d", i)
		txs = append(txs,
			buyTx(launch+int64(i), buyer),
			fundTx(launch+int64(i), "funder", buyer))
	}

	if signals := DetectClusterFunding(txs, testMint); len(signals) != 0 {
		t.Errorf("expected no signal below threshold, got %v", signals)
	}
}

func TestDetectClusterFunding_TransfersToNonBuyersIgnored(t *testing.T) {
	launch := int64(1_700_000_000)
	txs := []domain.EnhancedTransaction{buyTx(launch, "only-buyer")}
	for i := 0; i < ClusterMinBuyers*2; i++ {
		txs = append(txs, fundTx(launch+int64(i), "funder", fmt.Sprintf("bystander%d", i)))
	}

	if signals := DetectClusterFunding(txs, testMint); len(signals) != 0 {
		t.Errorf("funding wallets that never bought must not fire, got %v", signals)
	}
}

func TestDetectClusterFunding_OutsideWindowIgnored(t *testing.T) {
	launch := int64(1_700_000_000)
	txs := []domain.EnhancedTransaction{buyTx(launch, "b0")}
	late := launch + ClusterWindow + 1
	for i := 0; i < ClusterMinBuyers; i++ {
		buyer := fmt.Sprintf("b%d", i)
		txs = append(txs,
			buyTx(late+int64(i), buyer),
			fundTx(late+int64(i), "funder", buyer))
	}

	if signals := DetectClusterFunding(txs, testMint); len(signals) != 0 {
		t.Errorf("activity past the window must not fire, got %v", signals)
	}
}

func TestDetectClusterFunding_DeterministicTieBreak(t *testing.T) {
	launch := int64(1_700_000_000)
	var txs []domain.EnhancedTransaction
	for i := 0; i < ClusterMinBuyers; i++ {
		buyer := fmt.Sprintf("b%d", i)
		txs = append(txs,
			buyTx(launch+int64(i), buyer),
			fundTx(launch+int64(i), "zeta-funder", buyer),
			fundTx(launch+int64(i), "alpha-funder", buyer))
	}

	signals := DetectClusterFunding(txs, testMint)

	if len(signals) != 1 {
		t.Fatalf("expected 1 signal, got %d", len(signals))
	}
	if signals[0].Value != "alpha-funder" {
		t.Errorf("expected the lexicographically smaller funder on a tie, got %q", signals[0].Value)
	}
}

func TestDetectClusterFunding_EmptyHistory(t *testing.T) {
	if signals := DetectClusterFunding(nil, testMint); signals != nil {
		t.Errorf("expected nil for empty history, got %v", signals)
	}
}
