// =============================
// File: internal/server/admin.go
// =============================
package server

import (
	"math/big"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/opencurve/curved/internal/export"
	"github.com/opencurve/curved/internal/types"
)

type feeRequest struct {
	Caller string `json:"caller"`
	FeeBps uint16 `json:"fee_bps"`
}

type withdrawRequest struct {
	Caller string `json:"caller"`
	To     string `json:"to"`
	Amount string `json:"amount"` // empty withdraws the full accrual
}

type toggleRequest struct {
	Caller  string `json:"caller"`
	Enabled bool   `json:"enabled"`
}

type migrateRequest struct {
	Caller          string `json:"caller"`
	TokenAmount     string `json:"token_amount"`
	MinToken        string `json:"min_token"`
	MinCurrency     string `json:"min_currency"`
	DeadlineSeconds int64  `json:"deadline_seconds"`
}

type exportRequest struct {
	Format string `json:"format"`
	Side   string `json:"side"`
}

func (s *Server) handleSetFee(w http.ResponseWriter, r *http.Request) {
	var req feeRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.mkt.SetFeeBps(types.Address(req.Caller), req.FeeBps); err != nil {
		writeMarketError(w, err)
		return
	}
	s.refreshMetrics()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleWithdraw(w http.ResponseWriter, r *http.Request) {
	var req withdrawRequest
	if !decode(w, r, &req) {
		return
	}
	var amount *big.Int
	if req.Amount != "" {
		var err error
		if amount, err = types.ParseAmount(req.Amount); err != nil {
			writeMarketError(w, err)
			return
		}
	}

	op := s.log.WithOperation("treasury-withdraw")
	s.tradeMu.Lock()
	got, err := s.mkt.WithdrawTreasury(types.Address(req.Caller), types.Address(req.To), amount)
	s.tradeMu.Unlock()
	if err != nil {
		op.LogError("treasury withdrawal rejected", err, zap.String("to", req.To))
		writeMarketError(w, err)
		return
	}
	op.Info("treasury withdrawn",
		zap.String("to", req.To),
		zap.String("amount", got.String()))
	s.refreshMetrics()
	writeJSON(w, http.StatusOK, map[string]string{"withdrawn": got.String()})
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.mkt.SetPaused(types.Address(req.Caller), req.Enabled); err != nil {
		writeMarketError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decode(w, r, &req) {
		return
	}
	if err := s.mkt.SetBlacklisted(types.Address(req.Caller), req.Enabled); err != nil {
		writeMarketError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleMigrate(w http.ResponseWriter, r *http.Request) {
	var req migrateRequest
	if !decode(w, r, &req) {
		return
	}
	tokenAmount, err := types.ParseAmount(req.TokenAmount)
	if err != nil {
		writeMarketError(w, err)
		return
	}
	var minToken, minCurrency *big.Int
	if req.MinToken != "" {
		if minToken, err = types.ParseAmount(req.MinToken); err != nil {
			writeMarketError(w, err)
			return
		}
	}
	if req.MinCurrency != "" {
		if minCurrency, err = types.ParseAmount(req.MinCurrency); err != nil {
			writeMarketError(w, err)
			return
		}
	}
	deadline := time.Time{}
	if req.DeadlineSeconds > 0 {
		deadline = time.Now().Add(time.Duration(req.DeadlineSeconds) * time.Second)
	}

	op := s.log.WithOperation("migrate")
	s.tradeMu.Lock()
	rcpt, err := s.mkt.AddLiquidity(types.Address(req.Caller), tokenAmount, minToken, minCurrency, deadline)
	s.tradeMu.Unlock()
	if err != nil {
		op.LogError("migration rejected", err)
		writeMarketError(w, err)
		return
	}
	op.Info("migration settled",
		zap.String("pair", rcpt.Pair.String()),
		zap.String("liquidity", rcpt.Liquidity.String()))
	s.refreshMetrics()
	writeJSON(w, http.StatusOK, map[string]string{
		"pair":            rcpt.Pair.String(),
		"token_amount":    rcpt.TokenAmount.String(),
		"currency_amount": rcpt.CurrencyAmount.String(),
		"liquidity":       rcpt.Liquidity.String(),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !decode(w, r, &req) {
		return
	}
	if s.exp == nil {
		writeError(w, http.StatusNotFound, "export not configured")
		return
	}
	format := export.ExportFormat(req.Format)
	if format == "" {
		format = export.FormatCSV
	}

	op := s.log.WithOperation("export")
	path, err := s.exp.ExportTrades(s.mkt.RecentTrades(0), export.ExportOptions{
		Format:     format,
		SideFilter: req.Side,
		OutputDir:  s.cfg.ExportDir,
	})
	if err != nil {
		op.LogError("trade export failed", err, zap.String("format", string(format)))
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	op.Info("trades exported", zap.String("file", path))
	writeJSON(w, http.StatusOK, map[string]string{"file": path})
}
