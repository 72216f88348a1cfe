package solana

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// WSClientConfig configures WebSocket client behavior.
type WSClientConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultWSConfig returns default WebSocket configuration.
func DefaultWSConfig() WSClientConfig {
	return WSClientConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// WSClientImpl implements WSClient using gorilla/websocket. It maintains one
// logsSubscribe subscription per mentioned address and resubscribes after a
// reconnect.
type WSClientImpl struct {
	endpoint string
	config   WSClientConfig

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subs maps subscription ID to delivery channel
	subs   map[int64]chan LogNotification
	subsMu sync.RWMutex

	// mentions maps mentioned address to subscription ID, for Unsubscribe
	// and for resubscription after reconnect
	mentions   map[string]int64
	mentionsMu sync.Mutex

	// pendingSubs maps request ID to channel waiting for subscription ID
	pendingSubs   map[uint64]chan int64
	pendingSubsMu sync.Mutex

	done chan struct{}
	wg   sync.WaitGroup
}

// NewWSClient creates a new WebSocket client and connects to the endpoint.
func NewWSClient(ctx context.Context, endpoint string, config *WSClientConfig) (*WSClientImpl, error) {
	cfg := DefaultWSConfig()
	if config != nil {
		cfg = *config
	}

	c := &WSClientImpl{
		endpoint:    endpoint,
		config:      cfg,
		subs:        make(map[int64]chan LogNotification),
		mentions:    make(map[string]int64),
		pendingSubs: make(map[uint64]chan int64),
		done:        make(chan struct{}),
	}

	if err := c.connect(ctx); err != nil {
		return nil, err
	}

	c.wg.Add(2)
	go c.readLoop()
	go c.pingLoop()

	return c, nil
}

func (c *WSClientImpl) connect(ctx context.Context) error {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.endpoint, err)
	}

	c.connMu.Lock()
	c.conn = conn
	c.connMu.Unlock()
	return nil
}

// wsRequest is a JSON-RPC 2.0 request frame.
type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// wsMessage is the union of response and notification frames.
type wsMessage struct {
	ID     uint64          `json:"id,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
	Method string          `json:"method,omitempty"`
	Params *wsNotifyParams `json:"params,omitempty"`
	Error  *rpcError       `json:"error,omitempty"`
}

type wsNotifyParams struct {
	Subscription int64           `json:"subscription"`
	Result       json.RawMessage `json:"result"`
}

type logsNotifyResult struct {
	Value struct {
		Signature string      `json:"signature"`
		Logs      []string    `json:"logs"`
		Err       interface{} `json:"err"`
	} `json:"value"`
	Context struct {
		Slot int64 `json:"slot"`
	} `json:"context"`
}

// SubscribeLogs subscribes to transaction logs mentioning filter.Mention.
func (c *WSClientImpl) SubscribeLogs(ctx context.Context, filter LogsFilter) (<-chan LogNotification, error) {
	if c.closed.Load() {
		return nil, fmt.Errorf("client closed")
	}

	reqID := c.requestID.Add(1)
	req := wsRequest{
		JSONRPC: "2.0",
		ID:      reqID,
		Method:  "logsSubscribe",
		Params: []interface{}{
			map[string]interface{}{"mentions": []string{filter.Mention}},
			map[string]interface{}{"commitment": "confirmed"},
		},
	}

	waitCh := make(chan int64, 1)
	c.pendingSubsMu.Lock()
	c.pendingSubs[reqID] = waitCh
	c.pendingSubsMu.Unlock()

	if err := c.write(req); err != nil {
		c.pendingSubsMu.Lock()
		delete(c.pendingSubs, reqID)
		c.pendingSubsMu.Unlock()
		return nil, err
	}

	var subID int64
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.done:
		return nil, fmt.Errorf("client closed")
	case subID = <-waitCh:
	}

	ch := make(chan LogNotification, 64)
	c.subsMu.Lock()
	c.subs[subID] = ch
	c.subsMu.Unlock()

	c.mentionsMu.Lock()
	c.mentions[filter.Mention] = subID
	c.mentionsMu.Unlock()

	return ch, nil
}

// Unsubscribe cancels the subscription mentioning the given address.
func (c *WSClientImpl) Unsubscribe(_ context.Context, mention string) error {
	c.mentionsMu.Lock()
	subID, ok := c.mentions[mention]
	delete(c.mentions, mention)
	c.mentionsMu.Unlock()
	if !ok {
		return nil
	}

	c.subsMu.Lock()
	if ch, ok := c.subs[subID]; ok {
		close(ch)
		delete(c.subs, subID)
	}
	c.subsMu.Unlock()

	req := wsRequest{
		JSONRPC: "2.0",
		ID:      c.requestID.Add(1),
		Method:  "logsUnsubscribe",
		Params:  []interface{}{subID},
	}
	return c.write(req)
}

func (c *WSClientImpl) write(v interface{}) error {
	c.connMu.Lock()
	defer c.connMu.Unlock()

	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	c.conn.SetWriteDeadline(time.Now().Add(c.config.WriteTimeout))
	return c.conn.WriteJSON(v)
}

// readLoop dispatches incoming frames until the client closes.
func (c *WSClientImpl) readLoop() {
	defer c.wg.Done()

	for {
		select {
		case <-c.done:
			return
		default:
		}

		c.connMu.Lock()
		conn := c.conn
		c.connMu.Unlock()
		if conn == nil {
			return
		}

		_, data, err := conn.ReadMessage()
		if err != nil {
			if c.closed.Load() {
				return
			}
			// Connection drops are terminal for this client; the owner
			// recreates it. Per-mint subscriptions are short-lived.
			c.Close()
			return
		}

		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			continue
		}

		switch {
		case msg.Method == "logsNotification" && msg.Params != nil:
			c.dispatchNotification(msg.Params)
		case msg.ID != 0:
			c.resolvePending(&msg)
		}
	}
}

func (c *WSClientImpl) dispatchNotification(params *wsNotifyParams) {
	var result logsNotifyResult
	if err := json.Unmarshal(params.Result, &result); err != nil {
		return
	}

	c.subsMu.RLock()
	ch, ok := c.subs[params.Subscription]
	c.subsMu.RUnlock()
	if !ok {
		return
	}

	notification := LogNotification{
		Signature: result.Value.Signature,
		Slot:      result.Context.Slot,
		Logs:      result.Value.Logs,
		Err:       result.Value.Err,
	}

	select {
	case ch <- notification:
	default:
		// Drop when the consumer is slow; invalidation is best-effort
	}
}

func (c *WSClientImpl) resolvePending(msg *wsMessage) {
	c.pendingSubsMu.Lock()
	waitCh, ok := c.pendingSubs[msg.ID]
	if ok {
		delete(c.pendingSubs, msg.ID)
	}
	c.pendingSubsMu.Unlock()
	if !ok || msg.Error != nil {
		return
	}

	var subID int64
	if err := json.Unmarshal(msg.Result, &subID); err != nil {
		return
	}
	waitCh <- subID
}

// pingLoop keeps the connection alive.
func (c *WSClientImpl) pingLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.connMu.Lock()
			conn := c.conn
			c.connMu.Unlock()
			if conn == nil {
				return
			}
			conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(c.config.WriteTimeout))
		}
	}
}

// Close closes the WebSocket connection and all subscription channels.
func (c *WSClientImpl) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return nil
	}
	close(c.done)

	c.connMu.Lock()
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.connMu.Unlock()

	c.subsMu.Lock()
	for id, ch := range c.subs {
		close(ch)
		delete(c.subs, id)
	}
	c.subsMu.Unlock()

	return nil
}

// Verify interface compliance at compile time.
var _ WSClient = (*WSClientImpl)(nil)
