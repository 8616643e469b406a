// =============================
// File: internal/token/token.go
// =============================

// Package token implements the fungible-token collaborator of the market:
// an address-to-balance ledger with transfer, allowance and supply queries.
// This is the self-contained ledger variant; the market is constructed as the
// ledger's operator and may move holder funds directly on the sell path.
package token

import (
	"math/big"

	"github.com/opencurve/curved/internal/types"
)

// Address aliases the shared principal identifier.
type Address = types.Address

// Ledger is the capability the market depends on for token movement. Every
// mutation reports failure through an error, never a bare boolean, so callers
// can roll back explicitly.
type Ledger interface {
	// Transfer moves amount from one holder to another.
	Transfer(from, to Address, amount *big.Int) error
	// TransferFrom moves amount on behalf of a spender previously approved
	// by the holder.
	TransferFrom(spender, from, to Address, amount *big.Int) error
	// Approve lets spender move up to amount of owner's balance.
	Approve(owner, spender Address, amount *big.Int) error
	// BalanceOf returns the holder's balance.
	BalanceOf(holder Address) *big.Int
	// TotalSupply returns the fixed issued supply.
	TotalSupply() *big.Int
}
