// =============================
// File: internal/amm/errors.go
// =============================
package amm

import "errors"

var (
	// ErrInvalidAmount signals a nil, zero or negative amount.
	ErrInvalidAmount = errors.New("amm: invalid amount")
	// ErrExpired signals an AddLiquidity deadline in the past.
	ErrExpired = errors.New("amm: deadline expired")
	// ErrNoPair signals that the pair was never created.
	ErrNoPair = errors.New("amm: pair does not exist")
	// ErrSlippage signals that a min-amount bound was not met.
	ErrSlippage = errors.New("amm: slippage bound violated")
	// ErrInsufficientLiquidity signals a mint below the minimum lock or a
	// swap against empty reserves.
	ErrInsufficientLiquidity = errors.New("amm: insufficient liquidity")
	// ErrInsufficientFunds signals the router holds less than it was asked
	// to supply.
	ErrInsufficientFunds = errors.New("amm: insufficient staged funds")
)
