// =============================
// File: internal/server/server.go
// =============================

// Package server exposes the market over HTTP: trading, quotes, state,
// history, and the admin surface behind a shared-secret header.
package server

import (
	"context"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/opencurve/curved/internal/bank"
	"github.com/opencurve/curved/internal/export"
	"github.com/opencurve/curved/internal/logger"
	"github.com/opencurve/curved/internal/market"
	"github.com/opencurve/curved/internal/metrics"
	"github.com/opencurve/curved/internal/token"
)

// Config is the server's own configuration slice.
type Config struct {
	ListenAddr string
	AdminKey   string
	DevFaucet  bool
	ExportDir  string
}

// Faucet seeds native balances in dev mode.
type Faucet interface {
	Deposit(account bank.Address, amount *big.Int) error
}

// Deps are the server's collaborators. Metrics and Faucet are optional.
type Deps struct {
	Market   *market.Market
	Token    token.Ledger
	Bank     bank.Ledger
	Faucet   Faucet
	Exporter *export.TradeExporter
	Metrics  *metrics.Collector
}

// Server is the HTTP front end. Mutating requests serialize on tradeMu so
// legitimate concurrency queues instead of bouncing off the market's
// reentrancy latch.
type Server struct {
	log  *logger.Logger
	cfg  Config
	mkt  *market.Market
	tok  token.Ledger
	bnk  bank.Ledger
	fct  Faucet
	exp  *export.TradeExporter
	mtr  *metrics.Collector
	http *http.Server

	tradeMu sync.Mutex
}

// New wires the server and its routes.
func New(lg *logger.Logger, cfg Config, deps Deps) *Server {
	if lg == nil {
		lg = logger.NewNop()
	}
	s := &Server{
		log: lg.WithComponent("server"),
		cfg: cfg,
		mkt: deps.Market,
		tok: deps.Token,
		bnk: deps.Bank,
		fct: deps.Faucet,
		exp: deps.Exporter,
		mtr: deps.Metrics,
	}
	s.http = &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Routes builds the mux router. Exposed for tests.
func (s *Server) Routes() http.Handler {
	r := mux.NewRouter()

	api := r.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/buy", s.handleBuy).Methods(http.MethodPost)
	api.HandleFunc("/sell", s.handleSell).Methods(http.MethodPost)
	api.HandleFunc("/quote/buy", s.handleQuoteBuy).Methods(http.MethodGet)
	api.HandleFunc("/quote/sell", s.handleQuoteSell).Methods(http.MethodGet)
	api.HandleFunc("/market", s.handleMarket).Methods(http.MethodGet)
	api.HandleFunc("/trades", s.handleTrades).Methods(http.MethodGet)
	api.HandleFunc("/balance/{address}", s.handleBalance).Methods(http.MethodGet)
	if s.cfg.DevFaucet && s.fct != nil {
		api.HandleFunc("/fund", s.handleFund).Methods(http.MethodPost)
	}

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(s.adminAuth)
	admin.HandleFunc("/fee", s.handleSetFee).Methods(http.MethodPost)
	admin.HandleFunc("/withdraw", s.handleWithdraw).Methods(http.MethodPost)
	admin.HandleFunc("/pause", s.handlePause).Methods(http.MethodPost)
	admin.HandleFunc("/blacklist", s.handleBlacklist).Methods(http.MethodPost)
	admin.HandleFunc("/migrate", s.handleMigrate).Methods(http.MethodPost)
	admin.HandleFunc("/export", s.handleExport).Methods(http.MethodPost)

	r.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.mtr != nil {
		r.Handle("/metrics", s.mtr.Handler()).Methods(http.MethodGet)
	}
	return r
}

// Run serves until ctx is cancelled, then drains connections.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", zap.String("addr", s.cfg.ListenAddr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.http.Shutdown(shutdownCtx)
}

// adminAuth rejects admin requests without the shared secret.
func (s *Server) adminAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.cfg.AdminKey == "" || r.Header.Get("X-Admin-Key") != s.cfg.AdminKey {
			writeError(w, http.StatusUnauthorized, "bad admin key")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// refreshMetrics pushes a fresh snapshot to the gauges after a mutation.
func (s *Server) refreshMetrics() {
	if s.mtr != nil {
		s.mtr.UpdateSnapshot(s.mkt.Snapshot())
	}
}
