package detector

import (
	"context"
	"errors"

	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/solana"
)

// stubLedger implements Ledger for tests. Unset fields return zero values;
// err, when set, is returned by every method.
type stubLedger struct {
	mintInfo   *domain.MintInfo
	supplies   map[string]uint64
	largest    map[string][]domain.HolderBalance
	signatures [][]solana.SignatureInfo // consumed per call
	sigCall    int
	tx         *solana.Transaction
	balances   map[string]uint64 // key: owner|mint
	err        error
}

func (s *stubLedger) GetMintInfo(context.Context, string) (*domain.MintInfo, error) {
	return s.mintInfo, s.err
}

func (s *stubLedger) GetTokenSupply(_ context.Context, mint string) (uint64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.supplies[mint], nil
}

func (s *stubLedger) GetTokenLargestAccounts(_ context.Context, mint string) ([]domain.HolderBalance, error) {
	return s.largest[mint], s.err
}

func (s *stubLedger) GetSignaturesForAddress(context.Context, string, *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.sigCall >= len(s.signatures) {
		return nil, nil
	}
	page := s.signatures[s.sigCall]
	s.sigCall++
	return page, nil
}

func (s *stubLedger) GetTransaction(context.Context, string) (*solana.Transaction, error) {
	return s.tx, s.err
}

func (s *stubLedger) GetTokenBalanceByOwner(_ context.Context, owner, mint string) (uint64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return s.balances[owner+"|"+mint], nil
}

// stubPoolIndex implements PoolIndex for tests.
type stubPoolIndex struct {
	pool      *domain.Pool
	poolErr   error
	lpMint    string
	lpMintErr error
}

func (s *stubPoolIndex) DiscoverPrimaryPool(context.Context, string) (*domain.Pool, error) {
	return s.pool, s.poolErr
}

func (s *stubPoolIndex) ResolveLPMint(context.Context, *domain.Pool) (string, error) {
	return s.lpMint, s.lpMintErr
}

// failingBalanceLedger behaves like an empty stubLedger except that owner
// balance lookups fail.
type failingBalanceLedger struct {
	stubLedger
}

func (f *failingBalanceLedger) GetTokenBalanceByOwner(context.Context, string, string) (uint64, error) {
	return 0, errUpstream
}

var errUpstream = errors.New("upstream unavailable")

func strptr(s string) *string { return &s }
