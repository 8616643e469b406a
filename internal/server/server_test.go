// =============================
// File: internal/server/server_test.go
// =============================
package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencurve/curved/internal/amm"
	"github.com/opencurve/curved/internal/bank"
	"github.com/opencurve/curved/internal/export"
	"github.com/opencurve/curved/internal/logger"
	"github.com/opencurve/curved/internal/market"
	"github.com/opencurve/curved/internal/metrics"
	"github.com/opencurve/curved/internal/token"
	"github.com/opencurve/curved/internal/types"
)

const adminKey = "test-admin-key"

func testParams() market.Params {
	ve, _ := types.ParseAmount("30000000000000000000")
	alloc, _ := types.ParseAmount("1073000191000000000000000000")
	target, _ := types.ParseAmount("900000000000000000")
	return market.Params{
		MarketAddress:   "market",
		TokenAddress:    "curve-token",
		NativeWrapper:   "wnative",
		Admin:           "admin",
		Treasury:        "treasury",
		VirtualEth:      ve,
		CurveAllocation: alloc,
		TokenSupply:     alloc,
		TargetEth:       target,
		FeeBps:          100,
		Pausable:        true,
		Blacklist:       true,
		Migration:       true,
	}
}

type harness struct {
	srv  *Server
	mux  http.Handler
	bnk  *bank.MemoryBank
	tok  *token.MemoryLedger
	fact *amm.Factory
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	params := testParams()
	tok := token.NewMemoryLedger(params.MarketAddress, params.MarketAddress, params.TokenSupply)
	bnk := bank.NewMemoryBank()

	fact := amm.NewFactory(zap.NewNop())
	router := amm.NewRouter(zap.NewNop(), "router", params.NativeWrapper, fact, tok, bnk)

	collector := metrics.NewCollector()
	m, err := market.New(zap.NewNop(), params, market.Deps{
		Token: tok, Bank: bnk, Router: router, Factory: fact, Sink: collector,
	})
	require.NoError(t, err)

	srv := New(logger.NewNop(), Config{
		ListenAddr: ":0",
		AdminKey:   adminKey,
		DevFaucet:  true,
		ExportDir:  t.TempDir(),
	}, Deps{
		Market:   m,
		Token:    tok,
		Bank:     bnk,
		Faucet:   bnk,
		Exporter: export.NewTradeExporter(zap.NewNop()),
		Metrics:  collector,
	})
	return &harness{srv: srv, mux: srv.Routes(), bnk: bnk, tok: tok, fact: fact}
}

func (h *harness) do(t *testing.T, method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	h.mux.ServeHTTP(rec, req)
	return rec
}

func (h *harness) fund(t *testing.T, address, amount string) {
	t.Helper()
	rec := h.do(t, http.MethodPost, "/api/v1/fund", map[string]string{
		"address": address, "amount": amount,
	}, nil)
	require.Equal(t, http.StatusNoContent, rec.Code, rec.Body.String())
}

func (h *harness) adminHeaders() map[string]string {
	return map[string]string{"X-Admin-Key": adminKey}
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestBuyEndpoint(t *testing.T) {
	h := newHarness(t)
	h.fund(t, "alice", "10000000000000000000")

	rec := h.do(t, http.MethodPost, "/api/v1/buy", buyRequest{
		Address: "alice", EthIn: "1000000000000000000",
	}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	resp := decodeBody[tradeResponse](t, rec)
	assert.Equal(t, "buy", resp.Side)
	assert.Equal(t, "10000000000000000", resp.Fee)
	assert.Equal(t, "34277837660212971926427880", resp.AmountOut)

	rec = h.do(t, http.MethodGet, "/api/v1/balance/alice", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bal := decodeBody[balanceResponse](t, rec)
	assert.Equal(t, "34277837660212971926427880", bal.Token)
	assert.Equal(t, "9000000000000000000", bal.Native)
}

func TestSellEndpoint(t *testing.T) {
	h := newHarness(t)
	h.fund(t, "alice", "10000000000000000000")

	rec := h.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Address: "alice", EthIn: "1000000000000000000"}, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	bought := decodeBody[tradeResponse](t, rec)

	rec = h.do(t, http.MethodPost, "/api/v1/sell", sellRequest{Address: "alice", TokensIn: bought.AmountOut}, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	sold := decodeBody[tradeResponse](t, rec)
	assert.Equal(t, "980100000000000000", sold.AmountOut)
}

func TestQuoteEndpoints(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/v1/quote/buy?eth_in=1000000000000000000", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	q := decodeBody[quoteResponse](t, rec)
	assert.Equal(t, "34277837660212971926427880", q.AmountOut)

	rec = h.do(t, http.MethodGet, "/api/v1/quote/sell?tokens_in=bogus", nil, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestValidationErrors(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Address: "alice", EthIn: "-1"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Address: "", EthIn: "1"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Seller with no balance.
	rec = h.do(t, http.MethodPost, "/api/v1/sell", sellRequest{Address: "bob", TokensIn: "1000000"}, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestAdminAuth(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/v1/admin/pause", toggleRequest{Caller: "admin", Enabled: true}, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/admin/pause", toggleRequest{Caller: "admin", Enabled: true},
		map[string]string{"X-Admin-Key": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// Right key but a caller the market does not recognize as admin.
	rec = h.do(t, http.MethodPost, "/api/v1/admin/pause", toggleRequest{Caller: "mallory", Enabled: true}, h.adminHeaders())
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestPauseBlocksTrading(t *testing.T) {
	h := newHarness(t)
	h.fund(t, "alice", "10000000000000000000")

	rec := h.do(t, http.MethodPost, "/api/v1/admin/pause", toggleRequest{Caller: "admin", Enabled: true}, h.adminHeaders())
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Address: "alice", EthIn: "1000000000000000000"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/admin/pause", toggleRequest{Caller: "admin", Enabled: false}, h.adminHeaders())
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = h.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Address: "alice", EthIn: "1000000000000000000"}, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestFeeAndWithdraw(t *testing.T) {
	h := newHarness(t)
	h.fund(t, "alice", "10000000000000000000")
	h.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Address: "alice", EthIn: "1000000000000000000"}, nil)

	rec := h.do(t, http.MethodPost, "/api/v1/admin/fee", feeRequest{Caller: "treasury", FeeBps: 250}, h.adminHeaders())
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/v1/admin/withdraw", withdrawRequest{
		Caller: "treasury", To: "treasury",
	}, h.adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[map[string]string](t, rec)
	assert.Equal(t, "10000000000000000", got["withdrawn"])
}

func TestMarketAndTrades(t *testing.T) {
	h := newHarness(t)
	h.fund(t, "alice", "10000000000000000000")
	h.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Address: "alice", EthIn: "1000000000000000000"}, nil)

	rec := h.do(t, http.MethodGet, "/api/v1/market", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	snap := decodeBody[market.Snapshot](t, rec)
	assert.Equal(t, "990000000000000000", snap.ActualEth)
	assert.Equal(t, uint64(1), snap.Trades)

	rec = h.do(t, http.MethodGet, "/api/v1/trades?limit=5", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	trades := decodeBody[[]market.Trade](t, rec)
	require.Len(t, trades, 1)
	assert.Equal(t, "buy", trades[0].Side)
}

func TestMigrateEndpoint(t *testing.T) {
	h := newHarness(t)
	h.fund(t, "alice", "10000000000000000000")
	h.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Address: "alice", EthIn: "1000000000000000000"}, nil)

	rec := h.do(t, http.MethodPost, "/api/v1/admin/migrate", migrateRequest{
		Caller:          "admin",
		TokenAmount:     "200000000000000000000000000",
		DeadlineSeconds: 60,
	}, h.adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[map[string]string](t, rec)
	assert.NotEmpty(t, got["pair"])
	assert.Equal(t, "990000000000000000", got["currency_amount"])

	// Trading is closed afterwards.
	rec = h.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Address: "alice", EthIn: "1000000000000000000"}, nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestExportEndpoint(t *testing.T) {
	h := newHarness(t)
	h.fund(t, "alice", "10000000000000000000")
	h.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Address: "alice", EthIn: "1000000000000000000"}, nil)

	rec := h.do(t, http.MethodPost, "/api/v1/admin/export", exportRequest{Format: "json"}, h.adminHeaders())
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	got := decodeBody[map[string]string](t, rec)
	assert.NotEmpty(t, got["file"])
}

func TestMetricsAndHealth(t *testing.T) {
	h := newHarness(t)
	h.fund(t, "alice", "10000000000000000000")
	h.do(t, http.MethodPost, "/api/v1/buy", buyRequest{Address: "alice", EthIn: "1000000000000000000"}, nil)

	rec := h.do(t, http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/metrics", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, `curved_trades_total{side="buy"} 1`)
	assert.Contains(t, body, "curved_actual_eth_wei")
}
