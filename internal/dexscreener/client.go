// Package dexscreener discovers a token's primary trading pool via the
// DexScreener public API.
package dexscreener

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"solana-token-risk/internal/domain"
)

// DefaultTimeout bounds every DexScreener call.
const DefaultTimeout = 15 * time.Second

// ErrNoPool is returned when no Solana pool exists for a token.
var ErrNoPool = errors.New("no pool found for token")

// Client talks to the DexScreener latest/dex API.
type Client struct {
	baseURL string
	client  *http.Client
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithBaseURL overrides the API endpoint, used in tests.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = u }
}

// New creates a DexScreener client.
func New(opts ...Option) *Client {
	c := &Client{
		baseURL: "https://api.dexscreener.com",
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// pairsResponse is the wire shape of latest/dex/tokens.
type pairsResponse struct {
	Pairs []struct {
		ChainID     string `json:"chainId"`
		DexID       string `json:"dexId"`
		PairAddress string `json:"pairAddress"`
		Liquidity   struct {
			USD float64 `json:"usd"`
		} `json:"liquidity"`
	} `json:"pairs"`
}

// DiscoverPrimaryPool returns the Solana pool with the deepest USD liquidity
// for the given mint. Returns ErrNoPool when the token has no listed pool.
func (c *Client) DiscoverPrimaryPool(ctx context.Context, mint string) (*domain.Pool, error) {
	endpoint := fmt.Sprintf("%s/latest/dex/tokens/%s", c.baseURL, mint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dexscreener request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("dexscreener status %d: %s", resp.StatusCode, string(body))
	}

	var parsed pairsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal pairs: %w", err)
	}

	var best *domain.Pool
	bestLiq := -1.0
	for _, p := range parsed.Pairs {
		if p.ChainID != "solana" || p.PairAddress == "" {
			continue
		}
		if p.Liquidity.USD > bestLiq {
			bestLiq = p.Liquidity.USD
			best = &domain.Pool{PoolID: p.PairAddress, DexFamily: p.DexID}
		}
	}
	if best == nil {
		return nil, ErrNoPool
	}
	return best, nil
}
