// =============================
// File: internal/amm/amm_test.go
// =============================
package amm_test

import (
	"math/big"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/opencurve/curved/internal/amm"
	"github.com/opencurve/curved/internal/bank"
	"github.com/opencurve/curved/internal/token"
	"github.com/opencurve/curved/internal/types"
)

const (
	tokenAddr   = types.Address("curve-token")
	wrapperAddr = types.Address("wnative")
	routerAddr  = types.Address("router")
	lpAddr      = types.Address("lp")
)

func wei(s string) *big.Int {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("bad integer literal: " + s)
	}
	return v
}

func TestFactoryCreatePairIdempotent(t *testing.T) {
	f := amm.NewFactory(zap.NewNop())

	a, err := f.CreatePair(tokenAddr, wrapperAddr)
	require.NoError(t, err)
	b, err := f.CreatePair(tokenAddr, wrapperAddr)
	require.NoError(t, err)
	assert.Equal(t, a, b)

	_, ok := f.Pair(tokenAddr, wrapperAddr)
	assert.True(t, ok)
	_, ok = f.Pair(wrapperAddr, tokenAddr)
	assert.False(t, ok, "pairs are ordered")
}

func TestFactoryRejectsZeroAddresses(t *testing.T) {
	f := amm.NewFactory(zap.NewNop())
	_, err := f.CreatePair("", wrapperAddr)
	assert.Error(t, err)
}

func TestPoolFirstMintLocksMinimum(t *testing.T) {
	f := amm.NewFactory(zap.NewNop())
	_, err := f.CreatePair(tokenAddr, wrapperAddr)
	require.NoError(t, err)
	pool, ok := f.Pair(tokenAddr, wrapperAddr)
	require.True(t, ok)

	tokenIn := wei("200000000000000000000000000")
	currencyIn := wei("990000000000000000")
	shares, err := pool.Mint(lpAddr, tokenIn, currencyIn)
	require.NoError(t, err)

	// sqrt(tokenIn*currencyIn) minus the permanent lock.
	assert.Equal(t, wei("14071247279470288662696"), shares)
	assert.Equal(t, shares, pool.SharesOf(lpAddr))
	assert.Equal(t, new(big.Int).Add(shares, amm.MinimumLiquidity), pool.TotalShares())

	rt, rc := pool.Reserves()
	assert.Equal(t, tokenIn, rt)
	assert.Equal(t, currencyIn, rc)
}

func TestPoolSecondMintProRata(t *testing.T) {
	f := amm.NewFactory(zap.NewNop())
	_, err := f.CreatePair(tokenAddr, wrapperAddr)
	require.NoError(t, err)
	pool, _ := f.Pair(tokenAddr, wrapperAddr)

	_, err = pool.Mint(lpAddr, wei("1000000000000000000000"), wei("1000000000000000000"))
	require.NoError(t, err)
	before := pool.TotalShares()

	// A balanced 10% top-up mints 10% of the outstanding shares.
	shares, err := pool.Mint("lp2", wei("100000000000000000000"), wei("100000000000000000"))
	require.NoError(t, err)
	want := new(big.Int).Div(before, big.NewInt(10))
	assert.Equal(t, want, shares)

	// An unbalanced deposit mints on the smaller side.
	lop, err := pool.Mint("lp3", wei("100000000000000000000"), wei("10000000000000000"))
	require.NoError(t, err)
	assert.Less(t, lop.Cmp(want), 0)
}

func TestPoolMintRejectsDust(t *testing.T) {
	f := amm.NewFactory(zap.NewNop())
	_, err := f.CreatePair(tokenAddr, wrapperAddr)
	require.NoError(t, err)
	pool, _ := f.Pair(tokenAddr, wrapperAddr)

	_, err = pool.Mint(lpAddr, big.NewInt(10), big.NewInt(10))
	assert.ErrorIs(t, err, amm.ErrInsufficientLiquidity)
	_, err = pool.Mint(lpAddr, nil, big.NewInt(10))
	assert.ErrorIs(t, err, amm.ErrInvalidAmount)
}

func TestGetAmountOut(t *testing.T) {
	out, err := amm.GetAmountOut(wei("1000000000000000000"), wei("1000000000000000000"), wei("2000000000000000000"))
	require.NoError(t, err)
	assert.Equal(t, wei("998497746619929894"), out)

	_, err = amm.GetAmountOut(big.NewInt(0), wei("1"), wei("1"))
	assert.ErrorIs(t, err, amm.ErrInvalidAmount)
	_, err = amm.GetAmountOut(wei("1"), big.NewInt(0), wei("1"))
	assert.ErrorIs(t, err, amm.ErrInsufficientLiquidity)
}

func newRouterFixture(t *testing.T) (*amm.Router, *amm.Factory, *token.MemoryLedger, *bank.MemoryBank) {
	t.Helper()
	fact := amm.NewFactory(zap.NewNop())
	tok := token.NewMemoryLedger(routerAddr, routerAddr, wei("1000000000000000000000000000"))
	bnk := bank.NewMemoryBank()
	r := amm.NewRouter(zap.NewNop(), routerAddr, wrapperAddr, fact, tok, bnk)
	return r, fact, tok, bnk
}

func TestRouterAddLiquidity(t *testing.T) {
	r, fact, tok, bnk := newRouterFixture(t)
	_, err := fact.CreatePair(tokenAddr, wrapperAddr)
	require.NoError(t, err)
	require.NoError(t, bnk.Deposit(routerAddr, wei("990000000000000000")))

	tokenIn := wei("200000000000000000000000000")
	used, currency, shares, err := r.AddLiquidity(tokenAddr, tokenIn, nil, nil, lpAddr, time.Now().Add(time.Minute))
	require.NoError(t, err)
	assert.Equal(t, tokenIn, used)
	assert.Equal(t, wei("990000000000000000"), currency)
	assert.Equal(t, wei("14071247279470288662696"), shares)

	pool, _ := fact.Pair(tokenAddr, wrapperAddr)
	assert.Equal(t, shares, pool.SharesOf(lpAddr))
	assert.Equal(t, tokenIn, tok.BalanceOf(pool.Address()))
	assert.Equal(t, currency, bnk.Balance(pool.Address()))
	assert.Zero(t, bnk.Balance(routerAddr).Sign(), "router spends everything staged")
}

func TestRouterGuards(t *testing.T) {
	r, fact, _, bnk := newRouterFixture(t)
	deadline := time.Now().Add(time.Minute)
	tokenIn := wei("1000000000000000000000")

	// No pair registered yet.
	_, _, _, err := r.AddLiquidity(tokenAddr, tokenIn, nil, nil, lpAddr, deadline)
	assert.ErrorIs(t, err, amm.ErrNoPair)

	_, err = fact.CreatePair(tokenAddr, wrapperAddr)
	require.NoError(t, err)

	// Nothing staged.
	_, _, _, err = r.AddLiquidity(tokenAddr, tokenIn, nil, nil, lpAddr, deadline)
	assert.ErrorIs(t, err, amm.ErrInsufficientFunds)

	require.NoError(t, bnk.Deposit(routerAddr, wei("1000000000000000000")))

	// Expired deadline.
	_, _, _, err = r.AddLiquidity(tokenAddr, tokenIn, nil, nil, lpAddr, time.Now().Add(-time.Second))
	assert.ErrorIs(t, err, amm.ErrExpired)

	// Slippage bound above what was staged.
	_, _, _, err = r.AddLiquidity(tokenAddr, tokenIn, nil, wei("2000000000000000000"), lpAddr, deadline)
	assert.ErrorIs(t, err, amm.ErrSlippage)
}
