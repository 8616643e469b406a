// =============================
// File: internal/amm/pool.go
// =============================

// Package amm is the external constant-product pool the market graduates
// into: a factory that registers token/wrapped-native pairs, the pools
// themselves, and a router that stages funds and mints positions.
package amm

import (
	"math/big"
	"sync"

	"github.com/opencurve/curved/internal/types"
)

// MinimumLiquidity is locked forever on the first mint so the pool can
// never be fully drained.
var MinimumLiquidity = big.NewInt(1000)

// Pool is one two-asset constant-product pool. Reserves track what the
// ledgers hold at the pool's address; positions are pool shares.
type Pool struct {
	addr    types.Address
	token   types.Address
	wrapper types.Address

	mu              sync.RWMutex
	reserveToken    *big.Int
	reserveCurrency *big.Int
	totalShares     *big.Int
	positions       map[types.Address]*big.Int
}

func newPool(addr, token, wrapper types.Address) *Pool {
	return &Pool{
		addr:            addr,
		token:           token,
		wrapper:         wrapper,
		reserveToken:    new(big.Int),
		reserveCurrency: new(big.Int),
		totalShares:     new(big.Int),
		positions:       make(map[types.Address]*big.Int),
	}
}

// Address is the pool's account on the ledgers.
func (p *Pool) Address() types.Address { return p.addr }

// Mint books a deposit of tokenAmount and currencyAmount and issues shares
// to recipient. The first mint takes the geometric mean of the deposit and
// burns MinimumLiquidity; later mints issue pro-rata on the smaller side so
// an unbalanced deposit cannot dilute existing holders.
func (p *Pool) Mint(recipient types.Address, tokenAmount, currencyAmount *big.Int) (*big.Int, error) {
	if tokenAmount == nil || tokenAmount.Sign() <= 0 || currencyAmount == nil || currencyAmount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	var shares *big.Int
	if p.totalShares.Sign() == 0 {
		shares = new(big.Int).Mul(tokenAmount, currencyAmount)
		shares.Sqrt(shares)
		shares.Sub(shares, MinimumLiquidity)
		if shares.Sign() <= 0 {
			return nil, ErrInsufficientLiquidity
		}
		// The lock is booked against the zero address.
		p.credit("", MinimumLiquidity)
	} else {
		byToken := new(big.Int).Mul(tokenAmount, p.totalShares)
		byToken.Div(byToken, p.reserveToken)
		byCurrency := new(big.Int).Mul(currencyAmount, p.totalShares)
		byCurrency.Div(byCurrency, p.reserveCurrency)
		shares = byToken
		if byCurrency.Cmp(byToken) < 0 {
			shares = byCurrency
		}
		if shares.Sign() == 0 {
			return nil, ErrInsufficientLiquidity
		}
	}

	p.reserveToken.Add(p.reserveToken, tokenAmount)
	p.reserveCurrency.Add(p.reserveCurrency, currencyAmount)
	p.credit(recipient, shares)
	return new(big.Int).Set(shares), nil
}

// credit issues shares to holder. Caller holds mu.
func (p *Pool) credit(holder types.Address, shares *big.Int) {
	cur, ok := p.positions[holder]
	if !ok {
		cur = new(big.Int)
		p.positions[holder] = cur
	}
	cur.Add(cur, shares)
	p.totalShares.Add(p.totalShares, shares)
}

// Reserves returns a consistent copy of both sides.
func (p *Pool) Reserves() (tokenReserve, currencyReserve *big.Int) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.reserveToken), new(big.Int).Set(p.reserveCurrency)
}

// SharesOf returns holder's pool shares.
func (p *Pool) SharesOf(holder types.Address) *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if cur, ok := p.positions[holder]; ok {
		return new(big.Int).Set(cur)
	}
	return new(big.Int)
}

// TotalShares returns the issued share supply, the minimum lock included.
func (p *Pool) TotalShares() *big.Int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return new(big.Int).Set(p.totalShares)
}

// GetAmountOut quotes a swap of amountIn against the pool with the standard
// 30 bps pool fee: out = (in*997*rOut) / (rIn*1000 + in*997).
func GetAmountOut(amountIn, reserveIn, reserveOut *big.Int) (*big.Int, error) {
	if amountIn == nil || amountIn.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if reserveIn.Sign() <= 0 || reserveOut.Sign() <= 0 {
		return nil, ErrInsufficientLiquidity
	}
	inWithFee := new(big.Int).Mul(amountIn, big.NewInt(997))
	num := new(big.Int).Mul(inWithFee, reserveOut)
	den := new(big.Int).Mul(reserveIn, big.NewInt(1000))
	den.Add(den, inWithFee)
	return num.Div(num, den), nil
}
