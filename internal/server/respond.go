// =============================
// File: internal/server/respond.go
// =============================
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/opencurve/curved/internal/amm"
	"github.com/opencurve/curved/internal/market"
	"github.com/opencurve/curved/internal/types"
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeMarketError maps the market's error taxonomy onto HTTP statuses:
// validation failures are 400, authorization 403, state conflicts 409,
// balance shortfalls 422, anything else 500.
func writeMarketError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, market.ErrInvalidAmount),
		errors.Is(err, market.ErrZeroOutput),
		errors.Is(err, types.ErrBadAmount),
		errors.Is(err, amm.ErrInvalidAmount):
		status = http.StatusBadRequest
	case errors.Is(err, market.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, market.ErrPaused),
		errors.Is(err, market.ErrBlacklisted),
		errors.Is(err, market.ErrAlreadyMigrated),
		errors.Is(err, market.ErrTargetNotReached),
		errors.Is(err, market.ErrFeatureDisabled),
		errors.Is(err, market.ErrFeeTooHigh),
		errors.Is(err, market.ErrReentrant),
		errors.Is(err, amm.ErrExpired),
		errors.Is(err, amm.ErrSlippage):
		status = http.StatusConflict
	case errors.Is(err, market.ErrInsufficientBalance),
		errors.Is(err, market.ErrInsufficientLiquidity),
		errors.Is(err, market.ErrExceedsCirculation),
		errors.Is(err, market.ErrExceedsAccrued):
		status = http.StatusUnprocessableEntity
	}
	writeError(w, status, err.Error())
}
