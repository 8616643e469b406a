// =============================
// File: internal/server/handlers.go
// =============================
package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/opencurve/curved/internal/market"
	"github.com/opencurve/curved/internal/types"
)

type buyRequest struct {
	Address string `json:"address"`
	EthIn   string `json:"eth_in"`
}

type sellRequest struct {
	Address  string `json:"address"`
	TokensIn string `json:"tokens_in"`
}

type tradeResponse struct {
	Side      string `json:"side"`
	GrossIn   string `json:"gross_in"`
	Fee       string `json:"fee"`
	AmountOut string `json:"amount_out"`
}

type quoteResponse struct {
	AmountIn  string `json:"amount_in"`
	Fee       string `json:"fee"`
	AmountOut string `json:"amount_out"`
}

type balanceResponse struct {
	Address string `json:"address"`
	Token   string `json:"token"`
	Native  string `json:"native"`
}

type fundRequest struct {
	Address string `json:"address"`
	Amount  string `json:"amount"`
}

func decode(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

func (s *Server) handleBuy(w http.ResponseWriter, r *http.Request) {
	defer s.log.TrackPerformance("buy")()

	var req buyRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "address required")
		return
	}
	ethIn, err := types.ParseAmount(req.EthIn)
	if err != nil {
		writeMarketError(w, err)
		return
	}

	s.tradeMu.Lock()
	rcpt, err := s.mkt.Buy(types.Address(req.Address), ethIn)
	s.tradeMu.Unlock()
	if err != nil {
		writeMarketError(w, err)
		return
	}
	s.refreshMetrics()

	writeJSON(w, http.StatusOK, tradeResponse{
		Side:      "buy",
		GrossIn:   rcpt.GrossIn.String(),
		Fee:       rcpt.Fee.String(),
		AmountOut: rcpt.TokensOut.String(),
	})
}

func (s *Server) handleSell(w http.ResponseWriter, r *http.Request) {
	defer s.log.TrackPerformance("sell")()

	var req sellRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "address required")
		return
	}
	tokensIn, err := types.ParseAmount(req.TokensIn)
	if err != nil {
		writeMarketError(w, err)
		return
	}

	s.tradeMu.Lock()
	rcpt, err := s.mkt.Sell(types.Address(req.Address), tokensIn)
	s.tradeMu.Unlock()
	if err != nil {
		writeMarketError(w, err)
		return
	}
	s.refreshMetrics()

	writeJSON(w, http.StatusOK, tradeResponse{
		Side:      "sell",
		GrossIn:   rcpt.TokensIn.String(),
		Fee:       rcpt.Fee.String(),
		AmountOut: rcpt.EthOut.String(),
	})
}

func (s *Server) handleQuoteBuy(w http.ResponseWriter, r *http.Request) {
	ethIn, err := types.ParseAmount(r.URL.Query().Get("eth_in"))
	if err != nil {
		writeMarketError(w, err)
		return
	}
	q, err := s.mkt.CalculateTokensBought(ethIn)
	if err != nil {
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		AmountIn:  q.AmountIn.String(),
		Fee:       q.Fee.String(),
		AmountOut: q.AmountOut.String(),
	})
}

func (s *Server) handleQuoteSell(w http.ResponseWriter, r *http.Request) {
	tokensIn, err := types.ParseAmount(r.URL.Query().Get("tokens_in"))
	if err != nil {
		writeMarketError(w, err)
		return
	}
	q, err := s.mkt.CalculateEthPayout(tokensIn)
	if err != nil {
		writeMarketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, quoteResponse{
		AmountIn:  q.AmountIn.String(),
		Fee:       q.Fee.String(),
		AmountOut: q.AmountOut.String(),
	})
}

func (s *Server) handleMarket(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.mkt.Snapshot())
}

func (s *Server) handleTrades(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, http.StatusBadRequest, "bad limit")
			return
		}
		limit = n
	}
	trades := s.mkt.RecentTrades(limit)
	if trades == nil {
		trades = []market.Trade{}
	}
	writeJSON(w, http.StatusOK, trades)
}

func (s *Server) handleBalance(w http.ResponseWriter, r *http.Request) {
	addr := types.Address(mux.Vars(r)["address"])
	if addr.IsZero() {
		writeError(w, http.StatusBadRequest, "address required")
		return
	}
	writeJSON(w, http.StatusOK, balanceResponse{
		Address: addr.String(),
		Token:   s.tok.BalanceOf(addr).String(),
		Native:  s.bnk.Balance(addr).String(),
	})
}

func (s *Server) handleFund(w http.ResponseWriter, r *http.Request) {
	var req fundRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Address == "" {
		writeError(w, http.StatusBadRequest, "address required")
		return
	}
	amount, err := types.ParseAmount(req.Amount)
	if err != nil {
		writeMarketError(w, err)
		return
	}
	if err := s.fct.Deposit(types.Address(req.Address), amount); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.log.Info("faucet deposit", zap.String("address", req.Address), zap.String("amount", amount.String()))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
