// Package helius provides the enhanced-transaction and holder-enumeration
// source backed by the Helius API. All methods fail soft at the caller:
// detectors treat errors as absent data.
package helius

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"solana-token-risk/internal/domain"
)

// DefaultTimeout bounds every Helius HTTP call.
const DefaultTimeout = 30 * time.Second

// PageLimit is the number of token accounts requested per holder page.
const PageLimit = 1000

// DefaultTxLimit is the transaction page size when the caller passes no
// limit; maxTxPages bounds the backwards walk towards an address's first
// transaction so a very active address cannot stall the deep path.
const (
	DefaultTxLimit = 100
	maxTxPages     = 10
)

// ErrNoAPIKey is returned when a premium call is attempted without a key.
var ErrNoAPIKey = errors.New("helius api key not configured")

// ErrHistoryTooDeep is returned when the walk to an address's earliest
// transactions exhausts maxTxPages without reaching the start of history.
var ErrHistoryTooDeep = errors.New("transaction history deeper than page budget")

// Client talks to the Helius enhanced-transactions API and DAS RPC.
type Client struct {
	apiBase string
	rpcBase string
	apiKey  string
	client  *http.Client
}

// Option configures Client.
type Option func(*Client)

// WithHTTPClient sets a custom http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithBaseURLs overrides API endpoints, used in tests.
func WithBaseURLs(apiBase, rpcBase string) Option {
	return func(c *Client) {
		c.apiBase = apiBase
		c.rpcBase = rpcBase
	}
}

// New creates a Helius client. apiKey may be empty; calls then return
// ErrNoAPIKey and callers degrade.
func New(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiBase: "https://api.helius.xyz",
		rpcBase: "https://mainnet.helius-rpc.com",
		apiKey:  apiKey,
		client:  &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Premium reports whether a paid API credential is configured. Feeds the
// confidence estimator.
func (c *Client) Premium() bool {
	return c.apiKey != ""
}

// enhancedTx is the wire shape of one enhanced transaction.
type enhancedTx struct {
	Signature       string `json:"signature"`
	Timestamp       int64  `json:"timestamp"`
	NativeTransfers []struct {
		FromUserAccount string `json:"fromUserAccount"`
		ToUserAccount   string `json:"toUserAccount"`
		Amount          uint64 `json:"amount"`
	} `json:"nativeTransfers"`
	TokenTransfers []struct {
		FromUserAccount string  `json:"fromUserAccount"`
		ToUserAccount   string  `json:"toUserAccount"`
		Mint            string  `json:"mint"`
		TokenAmount     float64 `json:"tokenAmount"`
	} `json:"tokenTransfers"`
}

// GetTransactionsByAddress retrieves enhanced transactions for an address.
// Helius serves newest-first pages, so ascending=true pages backwards with
// the before cursor until the address's first transaction is reached, then
// returns the oldest limit transactions, oldest first. Launch-window analysis
// needs the list anchored at the actual first transaction, never at an
// arbitrary recent one; when the walk cannot reach the start of history
// within maxTxPages it returns ErrHistoryTooDeep instead of a wrong anchor.
func (c *Client) GetTransactionsByAddress(ctx context.Context, address string, limit int, ascending bool) ([]domain.EnhancedTransaction, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}
	if limit <= 0 {
		limit = DefaultTxLimit
	}

	if !ascending {
		return c.fetchTransactionsPage(ctx, address, limit, "")
	}

	var prev []domain.EnhancedTransaction
	before := ""
	for page := 0; page < maxTxPages; page++ {
		cur, err := c.fetchTransactionsPage(ctx, address, limit, before)
		if err != nil {
			return nil, err
		}
		if len(cur) < limit {
			// Reached the start of history. The oldest transactions are the
			// tail of the newest-first concatenation.
			oldest := append(prev, cur...)
			if len(oldest) > limit {
				oldest = oldest[len(oldest)-limit:]
			}
			for i, j := 0, len(oldest)-1; i < j; i, j = i+1, j-1 {
				oldest[i], oldest[j] = oldest[j], oldest[i]
			}
			return oldest, nil
		}
		prev = cur
		before = cur[len(cur)-1].Signature
	}
	return nil, ErrHistoryTooDeep
}

// fetchTransactionsPage retrieves one newest-first page, optionally anchored
// before a signature.
func (c *Client) fetchTransactionsPage(ctx context.Context, address string, limit int, before string) ([]domain.EnhancedTransaction, error) {
	q := url.Values{}
	q.Set("api-key", c.apiKey)
	q.Set("limit", strconv.Itoa(limit))
	if before != "" {
		q.Set("before", before)
	}
	endpoint := fmt.Sprintf("%s/v0/addresses/%s/transactions?%s", c.apiBase, address, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("helius request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("helius status %d: %s", resp.StatusCode, string(body))
	}

	var raw []enhancedTx
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("unmarshal transactions: %w", err)
	}

	txs := make([]domain.EnhancedTransaction, len(raw))
	for i, r := range raw {
		tx := domain.EnhancedTransaction{
			Signature: r.Signature,
			Timestamp: r.Timestamp,
		}
		for _, nt := range r.NativeTransfers {
			tx.NativeTransfers = append(tx.NativeTransfers, domain.NativeTransfer{
				From:     nt.FromUserAccount,
				To:       nt.ToUserAccount,
				Lamports: nt.Amount,
			})
		}
		for _, tt := range r.TokenTransfers {
			tx.TokenTransfers = append(tx.TokenTransfers, domain.TokenTransfer{
				From:   tt.FromUserAccount,
				To:     tt.ToUserAccount,
				Mint:   tt.Mint,
				Amount: tt.TokenAmount,
			})
		}
		txs[i] = tx
	}
	return txs, nil
}

// GetTokenAccountsPage retrieves one page of token accounts for a mint via
// the DAS getTokenAccounts method. cursor is empty for the first page; an
// empty NextCursor marks the last page.
func (c *Client) GetTokenAccountsPage(ctx context.Context, mint, cursor string) (*domain.TokenAccountsPage, error) {
	if c.apiKey == "" {
		return nil, ErrNoAPIKey
	}

	params := map[string]interface{}{
		"mint":  mint,
		"limit": PageLimit,
	}
	if cursor != "" {
		params["cursor"] = cursor
	}

	reqBody, err := json.Marshal(map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      "token-accounts",
		"method":  "getTokenAccounts",
		"params":  params,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/?api-key=%s", c.rpcBase, url.QueryEscape(c.apiKey))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(reqBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("helius request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("helius status %d: %s", resp.StatusCode, string(body))
	}

	var rpcResp struct {
		Result *struct {
			Cursor        string `json:"cursor"`
			TokenAccounts []struct {
				Owner  string `json:"owner"`
				Amount uint64 `json:"amount"`
			} `json:"token_accounts"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &rpcResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if rpcResp.Error != nil {
		return nil, fmt.Errorf("helius rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if rpcResp.Result == nil {
		return &domain.TokenAccountsPage{}, nil
	}

	page := &domain.TokenAccountsPage{NextCursor: rpcResp.Result.Cursor}
	for _, acc := range rpcResp.Result.TokenAccounts {
		page.Accounts = append(page.Accounts, domain.HolderBalance{
			Address: acc.Owner,
			Amount:  acc.Amount,
		})
	}
	return page, nil
}
