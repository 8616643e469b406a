// =============================
// File: internal/token/ledger.go
// =============================
package token

import (
	"errors"
	"fmt"
	"math/big"
	"sync"
)

var (
	// ErrInsufficientBalance is returned when a holder cannot cover a debit.
	ErrInsufficientBalance = errors.New("insufficient token balance")
	// ErrInsufficientAllowance is returned when a spender exceeds its approval.
	ErrInsufficientAllowance = errors.New("insufficient token allowance")
	// ErrInvalidAmount is returned for nil or negative amounts.
	ErrInvalidAmount = errors.New("invalid token amount")
)

type allowanceKey struct {
	owner, spender Address
}

// MemoryLedger is an in-process Ledger. All methods are safe for concurrent
// use. The operator address bypasses allowance checks on TransferFrom; the
// market uses this to pull sold tokens back onto the curve.
type MemoryLedger struct {
	mu          sync.RWMutex
	balances    map[Address]*big.Int
	allowances  map[allowanceKey]*big.Int
	totalSupply *big.Int
	operator    Address
}

// NewMemoryLedger mints the full fixed supply to the holder address and
// registers operator as the trusted mover.
func NewMemoryLedger(holder, operator Address, supply *big.Int) *MemoryLedger {
	l := &MemoryLedger{
		balances:    make(map[Address]*big.Int),
		allowances:  make(map[allowanceKey]*big.Int),
		totalSupply: new(big.Int).Set(supply),
		operator:    operator,
	}
	l.balances[holder] = new(big.Int).Set(supply)
	return l
}

// Transfer moves amount between holders.
func (l *MemoryLedger) Transfer(from, to Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.move(from, to, amount)
}

// TransferFrom moves amount out of from's balance on behalf of spender.
// Non-operator spenders consume allowance.
func (l *MemoryLedger) TransferFrom(spender, from, to Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if spender != l.operator && spender != from {
		key := allowanceKey{owner: from, spender: spender}
		allowed := l.allowances[key]
		if allowed == nil || allowed.Cmp(amount) < 0 {
			return fmt.Errorf("spender %s moving %s from %s: %w",
				spender, amount, from, ErrInsufficientAllowance)
		}
		allowed.Sub(allowed, amount)
	}
	return l.move(from, to, amount)
}

// Approve lets spender move up to amount of owner's balance.
func (l *MemoryLedger) Approve(owner, spender Address, amount *big.Int) error {
	if err := checkAmount(amount); err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.allowances[allowanceKey{owner: owner, spender: spender}] = new(big.Int).Set(amount)
	return nil
}

// BalanceOf returns a copy of the holder's balance.
func (l *MemoryLedger) BalanceOf(holder Address) *big.Int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if b, ok := l.balances[holder]; ok {
		return new(big.Int).Set(b)
	}
	return new(big.Int)
}

// TotalSupply returns the fixed issued supply.
func (l *MemoryLedger) TotalSupply() *big.Int {
	return new(big.Int).Set(l.totalSupply)
}

// move debits from and credits to. Caller holds the write lock.
func (l *MemoryLedger) move(from, to Address, amount *big.Int) error {
	src := l.balances[from]
	if src == nil || src.Cmp(amount) < 0 {
		return fmt.Errorf("holder %s debit %s: %w", from, amount, ErrInsufficientBalance)
	}
	src.Sub(src, amount)
	dst, ok := l.balances[to]
	if !ok {
		dst = new(big.Int)
		l.balances[to] = dst
	}
	dst.Add(dst, amount)
	return nil
}

func checkAmount(amount *big.Int) error {
	if amount == nil || amount.Sign() < 0 {
		return ErrInvalidAmount
	}
	return nil
}
