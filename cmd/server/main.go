// Package main provides the token risk service:
// - HTTP API for on-demand risk evaluations (fast + deep detector paths)
// - Resumable holder-count jobs driven by the caller one page at a time
// - Optional persistence of evaluation history and the score timeseries
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"solana-token-risk/internal/dexscreener"
	"solana-token-risk/internal/domain"
	"solana-token-risk/internal/evaluator"
	"solana-token-risk/internal/helius"
	"solana-token-risk/internal/holderjob"
	"solana-token-risk/internal/observability"
	"solana-token-risk/internal/scoring"
	"solana-token-risk/internal/solana"
	"solana-token-risk/internal/storage"
	chstore "solana-token-risk/internal/storage/clickhouse"
	"solana-token-risk/internal/storage/memory"
	"solana-token-risk/internal/storage/migrations"
	pgstore "solana-token-risk/internal/storage/postgres"
)

// Server holds all components of the risk service.
type Server struct {
	// Configuration
	rpcEndpoint   string
	wsEndpoint    string
	postgresDSN   string
	clickhouseDSN string
	useMemory     bool
	premium       bool

	// Stores
	stores *allStores

	// Components
	eval    *evaluator.Evaluator
	holders *holderjob.Runner
	watcher *solana.MintWatcher
	logger  *log.Logger

	// Stats
	mu              sync.Mutex
	started         time.Time
	evaluations     int
	fallbacks       int
	lastMint        string
	lastEvaluatedAt time.Time
}

// allStores holds all storage implementations.
type allStores struct {
	evaluationStore   storage.EvaluationStore
	scoreHistoryStore storage.ScoreHistoryStore
}

func main() {
	// Load .env file if exists
	loadEnvFile()

	// Parse flags (env vars as defaults)
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("SOLANA_RPC_ENDPOINT"), "Solana RPC HTTP endpoint")
	wsEndpoint := flag.String("ws-endpoint", os.Getenv("SOLANA_WS_ENDPOINT"), "Solana WebSocket endpoint (optional, enables cache invalidation on mint activity)")
	heliusAPIKey := flag.String("helius-api-key", os.Getenv("HELIUS_API_KEY"), "Helius API key (optional, enables tx-pattern detectors and holder jobs)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	addr := flag.String("addr", ":8080", "HTTP listen address")
	deepTimeout := flag.Duration("deep-timeout", evaluator.DefaultDeepTimeout, "Deadline for the deep detector path")

	flag.Parse()

	// Setup logger
	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	// Validate required flags
	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())

	// Create stores
	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	// Create server
	server := &Server{
		rpcEndpoint:   *rpcEndpoint,
		wsEndpoint:    *wsEndpoint,
		postgresDSN:   *postgresDSN,
		clickhouseDSN: *clickhouseDSN,
		useMemory:     *useMemory,
		stores:        stores,
		logger:        logger,
		started:       time.Now(),
	}

	// Upstream clients
	rpc := solana.NewHTTPClient(*rpcEndpoint)
	pools := evaluator.NewPoolIndex(dexscreener.New(), rpc)

	var heliusClient *helius.Client
	if *heliusAPIKey != "" {
		heliusClient = helius.New(*heliusAPIKey)
		server.premium = heliusClient.Premium()
	} else {
		logger.Println("No Helius API key: tx-pattern detectors and holder jobs disabled")
	}

	// Evaluator
	evalOpts := evaluator.Options{
		Ledger:      rpc,
		Pools:       pools,
		History:     server.historySink(),
		Premium:     server.premium,
		Logger:      log.New(os.Stdout, "[evaluator] ", log.LstdFlags|log.Lshortfile),
		DeepTimeout: *deepTimeout,
	}
	if heliusClient != nil {
		evalOpts.Txs = heliusClient
	}
	server.eval, err = evaluator.New(evalOpts)
	if err != nil {
		logger.Fatalf("Failed to create evaluator: %v", err)
	}

	// Holder-count job runner (needs the Helius pagination API)
	if heliusClient != nil {
		server.holders, err = holderjob.New(holderjob.Options{
			Pager:  heliusClient,
			Logger: log.New(os.Stdout, "[holderjob] ", log.LstdFlags|log.Lshortfile),
		})
		if err != nil {
			logger.Fatalf("Failed to create holder job runner: %v", err)
		}
	}

	// Mint watcher drops cached scores when a watched mint sees on-chain
	// activity. Optional; without it cached scores just ride out their TTL.
	if *wsEndpoint != "" {
		ws, err := solana.NewWSClient(ctx, *wsEndpoint, nil)
		if err != nil {
			logger.Fatalf("Failed to create websocket client: %v", err)
		}
		defer ws.Close()

		server.watcher = solana.NewMintWatcher(ws, func(mint string) {
			server.eval.InvalidateScore(mint)
			logger.Printf("Invalidated cached score for %s after on-chain activity", mint)
		}, log.New(os.Stdout, "[watcher] ", log.LstdFlags|log.Lshortfile))
		defer server.watcher.Close()
	}

	// Channel to signal completion
	done := make(chan error, 1)

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		// Wait for second signal for immediate shutdown
		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
			// Normal shutdown completed
		}
	}()

	// Run the HTTP server
	err = server.Run(ctx, *addr)
	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Server error: %v", err)
	}

	logger.Println("Shutdown complete")
}

// createStores creates all required stores.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			evaluationStore:   memory.NewEvaluationStore(),
			scoreHistoryStore: memory.NewScoreHistoryStore(),
		}
		return stores, func() {}, nil
	}

	// PostgreSQL (evaluation history)
	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run postgres migrations: %w", err)
	}

	// ClickHouse (score timeseries)
	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("run clickhouse migrations: %w", err)
	}

	stores := &allStores{
		evaluationStore:   pgstore.NewEvaluationStore(pool),
		scoreHistoryStore: chstore.NewScoreHistoryStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}

	return stores, cleanup, nil
}

// historySink bridges finished evaluations to the persistent stores.
// Duplicate keys are fine: a cached score re-persisted after a cache miss
// races with itself only on (mint, evaluated_at).
func (s *Server) historySink() evaluator.History {
	return historyFunc(func(ctx context.Context, res *domain.RiskResult) error {
		if err := s.stores.evaluationStore.Insert(ctx, res); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("insert evaluation: %w", err)
		}
		point := &domain.ScorePoint{
			Mint:        res.Mint,
			Score:       res.Score,
			Level:       res.Level,
			Confidence:  res.Confidence,
			Fallback:    res.Fallback,
			EvaluatedAt: res.EvaluatedAt,
		}
		if err := s.stores.scoreHistoryStore.InsertBulk(ctx, []*domain.ScorePoint{point}); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return fmt.Errorf("insert score point: %w", err)
		}
		return nil
	})
}

// historyFunc adapts a function to the evaluator.History interface.
type historyFunc func(ctx context.Context, res *domain.RiskResult) error

func (f historyFunc) SaveEvaluation(ctx context.Context, res *domain.RiskResult) error {
	return f(ctx, res)
}

// Run starts the HTTP server and blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	mux := http.NewServeMux()

	// Health check
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheus metrics
	mux.Handle("/metrics", observability.Handler())

	// Status endpoint
	mux.HandleFunc("/status", s.handleStatus)

	// Risk API
	mux.HandleFunc("GET /v1/evaluate/{mint}", s.handleEvaluate)
	mux.HandleFunc("GET /v1/history/{mint}", s.handleHistory)
	mux.HandleFunc("GET /v1/scores/{mint}", s.handleScores)

	// Holder-count jobs
	mux.HandleFunc("POST /v1/holders/{mint}/start", s.handleHolderStart)
	mux.HandleFunc("POST /v1/holders/{mint}/step", s.handleHolderStep)
	mux.HandleFunc("POST /v1/holders/{mint}/reset", s.handleHolderReset)
	mux.HandleFunc("GET /v1/holders/{mint}/count", s.handleHolderCount)

	srv := &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Printf("Starting HTTP server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			s.logger.Printf("HTTP server shutdown error: %v", err)
		}
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}

// handleEvaluate runs a risk evaluation for the mint in the path.
func (s *Server) handleEvaluate(w http.ResponseWriter, r *http.Request) {
	mint := r.PathValue("mint")

	res, err := s.eval.Evaluate(r.Context(), mint)
	if err != nil {
		if errors.Is(err, solana.ErrInvalidAddress) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if s.watcher != nil {
		s.watcher.Watch(r.Context(), mint)
	}

	s.mu.Lock()
	s.evaluations++
	if res.Fallback {
		s.fallbacks++
	}
	s.lastMint = mint
	s.lastEvaluatedAt = time.Unix(res.EvaluatedAt, 0)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, evaluateResponse{
		RiskResult: res,
		Verdict:    scoring.VerdictFor(res.Score),
	})
}

// evaluateResponse adds the user-facing verdict to a risk result.
type evaluateResponse struct {
	*domain.RiskResult
	Verdict scoring.Verdict `json:"verdict"`
}

// handleHistory returns persisted evaluations for a mint, optionally
// bounded by start/end unix-second query parameters.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	mint := r.PathValue("mint")
	if err := solana.ValidateAddress(mint); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start, end, bounded, err := timeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var results []*domain.RiskResult
	if bounded {
		results, err = s.stores.evaluationStore.GetByTimeRange(r.Context(), mint, start, end)
	} else {
		results, err = s.stores.evaluationStore.GetByMint(r.Context(), mint)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, results)
}

// handleScores returns the persisted score timeseries for a mint.
func (s *Server) handleScores(w http.ResponseWriter, r *http.Request) {
	mint := r.PathValue("mint")
	if err := solana.ValidateAddress(mint); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	start, end, bounded, err := timeRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var points []*domain.ScorePoint
	if bounded {
		points, err = s.stores.scoreHistoryStore.GetByTimeRange(r.Context(), mint, start, end)
	} else {
		points, err = s.stores.scoreHistoryStore.GetByMint(r.Context(), mint)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, points)
}

func (s *Server) handleHolderStart(w http.ResponseWriter, r *http.Request) {
	mint, ok := s.holderMint(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.holders.Start(mint))
}

func (s *Server) handleHolderStep(w http.ResponseWriter, r *http.Request) {
	mint, ok := s.holderMint(w, r)
	if !ok {
		return
	}

	res, err := s.holders.Step(r.Context(), mint)
	switch res.Status {
	case holderjob.StatusRunning:
		observability.RecordHolderJobPage()
	case holderjob.StatusDone, holderjob.StatusExpired, holderjob.StatusError:
		observability.RecordHolderJobFinished(res.Status)
	}
	if err != nil && !errors.Is(err, holderjob.ErrPageLimit) {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, res)
}

func (s *Server) handleHolderReset(w http.ResponseWriter, r *http.Request) {
	mint, ok := s.holderMint(w, r)
	if !ok {
		return
	}
	s.holders.Reset(mint)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHolderCount(w http.ResponseWriter, r *http.Request) {
	mint, ok := s.holderMint(w, r)
	if !ok {
		return
	}
	count, found := s.holders.CountFor(mint)
	if !found {
		writeError(w, http.StatusNotFound, "no holder count for mint")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"count": count})
}

// holderMint validates the mint path segment and the runner's availability.
func (s *Server) holderMint(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.holders == nil {
		writeError(w, http.StatusServiceUnavailable, "holder jobs require a Helius API key")
		return "", false
	}
	mint := r.PathValue("mint")
	if err := solana.ValidateAddress(mint); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return mint, true
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status          string    `json:"status"`
	Uptime          string    `json:"uptime"`
	Premium         bool      `json:"premium"`
	HolderJobs      bool      `json:"holder_jobs"`
	WatcherEnabled  bool      `json:"watcher_enabled"`
	Evaluations     int       `json:"evaluations"`
	Fallbacks       int       `json:"fallbacks"`
	LastMint        string    `json:"last_mint,omitempty"`
	LastEvaluatedAt time.Time `json:"last_evaluated_at,omitempty"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:          "running",
		Uptime:          time.Since(s.started).String(),
		Premium:         s.premium,
		HolderJobs:      s.holders != nil,
		WatcherEnabled:  s.watcher != nil,
		Evaluations:     s.evaluations,
		Fallbacks:       s.fallbacks,
		LastMint:        s.lastMint,
		LastEvaluatedAt: s.lastEvaluatedAt,
	}

	writeJSON(w, http.StatusOK, resp)
}

// timeRange parses optional start/end unix-second query parameters.
func timeRange(r *http.Request) (start, end int64, bounded bool, err error) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")
	if startStr == "" && endStr == "" {
		return 0, 0, false, nil
	}

	start, err = parseUnix(startStr, 0)
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid start: %w", err)
	}
	end, err = parseUnix(endStr, time.Now().Unix())
	if err != nil {
		return 0, 0, false, fmt.Errorf("invalid end: %w", err)
	}
	return start, end, true, nil
}

func parseUnix(s string, fallback int64) (int64, error) {
	if s == "" {
		return fallback, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return // File doesn't exist, use system env vars
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Don't override existing env vars
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
