// =============================
// File: internal/amm/router.go
// =============================
package amm

import (
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/opencurve/curved/internal/bank"
	"github.com/opencurve/curved/internal/token"
	"github.com/opencurve/curved/internal/types"
)

// Router stakes positions into pools. The market transfers the native
// currency for the position to the router's address before calling
// AddLiquidity; the router spends everything it was staged.
type Router struct {
	log     *zap.Logger
	addr    types.Address
	wrapper types.Address
	fact    *Factory
	tok     token.Ledger
	bnk     bank.Ledger
}

// NewRouter wires a router over the shared ledgers.
func NewRouter(logger *zap.Logger, addr, nativeWrapper types.Address, fact *Factory, tok token.Ledger, bnk bank.Ledger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		log:     logger.Named("amm.router"),
		addr:    addr,
		wrapper: nativeWrapper,
		fact:    fact,
		tok:     tok,
		bnk:     bnk,
	}
}

// Address is the router's account on the ledgers.
func (r *Router) Address() types.Address { return r.addr }

// AddLiquidity moves the staged token and native balances into the pair's
// pool and mints the position to recipient. Min-amount bounds and the
// deadline are checked before anything moves; a failed mint leaves the
// staged funds at the router for the caller to unwind.
func (r *Router) AddLiquidity(tokenAddr types.Address, tokenAmount, minToken, minCurrency *big.Int,
	recipient types.Address, deadline time.Time) (*big.Int, *big.Int, *big.Int, error) {
	if tokenAmount == nil || tokenAmount.Sign() <= 0 {
		return nil, nil, nil, ErrInvalidAmount
	}
	if !deadline.IsZero() && time.Now().After(deadline) {
		return nil, nil, nil, ErrExpired
	}

	pool, ok := r.fact.Pair(tokenAddr, r.wrapper)
	if !ok {
		return nil, nil, nil, ErrNoPair
	}

	// Spend exactly what was staged with the call.
	currencyAmount := r.bnk.Balance(r.addr)
	if currencyAmount.Sign() <= 0 {
		return nil, nil, nil, ErrInsufficientFunds
	}
	if r.tok.BalanceOf(r.addr).Cmp(tokenAmount) < 0 {
		return nil, nil, nil, ErrInsufficientFunds
	}
	if minToken != nil && tokenAmount.Cmp(minToken) < 0 {
		return nil, nil, nil, ErrSlippage
	}
	if minCurrency != nil && currencyAmount.Cmp(minCurrency) < 0 {
		return nil, nil, nil, ErrSlippage
	}

	if err := r.tok.Transfer(r.addr, pool.Address(), tokenAmount); err != nil {
		return nil, nil, nil, fmt.Errorf("move tokens to pool: %w", err)
	}
	if err := r.bnk.Transfer(r.addr, pool.Address(), currencyAmount); err != nil {
		if rerr := r.tok.Transfer(pool.Address(), r.addr, tokenAmount); rerr != nil {
			r.log.Error("token return after failed currency move also failed", zap.Error(rerr))
		}
		return nil, nil, nil, fmt.Errorf("move currency to pool: %w", err)
	}

	shares, err := pool.Mint(recipient, tokenAmount, currencyAmount)
	if err != nil {
		if rerr := r.tok.Transfer(pool.Address(), r.addr, tokenAmount); rerr != nil {
			r.log.Error("token return after failed mint also failed", zap.Error(rerr))
		}
		if rerr := r.bnk.Transfer(pool.Address(), r.addr, currencyAmount); rerr != nil {
			r.log.Error("currency return after failed mint also failed", zap.Error(rerr))
		}
		return nil, nil, nil, fmt.Errorf("mint position: %w", err)
	}

	r.log.Info("liquidity added",
		zap.String("pair", pool.Address().String()),
		zap.String("token_amount", tokenAmount.String()),
		zap.String("currency_amount", currencyAmount.String()),
		zap.String("shares", shares.String()),
		zap.String("recipient", recipient.String()))
	return new(big.Int).Set(tokenAmount), currencyAmount, shares, nil
}
