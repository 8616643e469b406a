// =============================
// File: internal/bank/bank.go
// =============================

// Package bank implements the native-currency side of the market's external
// transfer boundary: an address-to-balance wei ledger. A buy moves value from
// the caller to the market before the ledger commits; sells, withdrawals and
// the migration pay out of the market's balance afterwards.
package bank

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"github.com/opencurve/curved/internal/types"
)

// Address aliases the shared principal identifier.
type Address = types.Address

var (
	// ErrInsufficientFunds is returned when an account cannot cover a debit.
	ErrInsufficientFunds = errors.New("insufficient native balance")
	// ErrInvalidAmount is returned for nil or negative amounts.
	ErrInvalidAmount = errors.New("invalid native amount")
)

// Ledger is the capability the market depends on for native value movement.
type Ledger interface {
	// Transfer moves amount of native currency between accounts.
	Transfer(from, to Address, amount *big.Int) error
	// Balance returns the account's native balance.
	Balance(account Address) *big.Int
}

// MemoryBank is an in-process Ledger safe for concurrent use.
type MemoryBank struct {
	mu       sync.RWMutex
	balances map[Address]*big.Int
}

// NewMemoryBank returns an empty bank.
func NewMemoryBank() *MemoryBank {
	return &MemoryBank{balances: make(map[Address]*big.Int)}
}

// Deposit credits an account out of thin air. Used for genesis funding and
// the dev-mode faucet; the market itself never calls it.
func (b *MemoryBank) Deposit(account Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.credit(account, amount)
	return nil
}

// Transfer moves amount between accounts.
func (b *MemoryBank) Transfer(from, to Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	src := b.balances[from]
	if src == nil || src.Cmp(amount) < 0 {
		return fmt.Errorf("account %s debit %s: %w", from, amount, ErrInsufficientFunds)
	}
	src.Sub(src, amount)
	b.credit(to, amount)
	return nil
}

// Balance returns a copy of the account's balance.
func (b *MemoryBank) Balance(account Address) *big.Int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if v, ok := b.balances[account]; ok {
		return new(big.Int).Set(v)
	}
	return new(big.Int)
}

// credit adds amount to an account. Caller holds the write lock.
func (b *MemoryBank) credit(account Address, amount *big.Int) {
	dst, ok := b.balances[account]
	if !ok {
		dst = new(big.Int)
		b.balances[account] = dst
	}
	dst.Add(dst, amount)
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}
