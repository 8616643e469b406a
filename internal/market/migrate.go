// =============================
// File: internal/market/migrate.go
// =============================
package market

import (
	"fmt"
	"math/big"
	"time"

	"go.uber.org/zap"

	"github.com/opencurve/curved/internal/types"
)

// Router seeds a public liquidity pool at migration time. The native
// currency for the position is transferred to the router's address before
// AddLiquidity is invoked, mirroring value sent with a call.
type Router interface {
	// Address is the router's account on the ledgers.
	Address() types.Address
	// AddLiquidity supplies tokenAmount plus the router's received native
	// balance to the pair, minting the position to recipient.
	AddLiquidity(tokenAddr types.Address, tokenAmount, minToken, minCurrency *big.Int,
		recipient types.Address, deadline time.Time) (tokenUsed, currencyUsed, liquidity *big.Int, err error)
}

// Factory registers trading pairs for the public pool.
type Factory interface {
	CreatePair(tokenAddr, nativeWrapper types.Address) (types.Address, error)
}

// MigrationReceipt reports the settled migration.
type MigrationReceipt struct {
	Pair           types.Address
	TokenAmount    *big.Int
	CurrencyAmount *big.Int
	Liquidity      *big.Int
}

// AddLiquidity performs the one-time migration: once the cumulative raised
// currency meets the configured target, the market's trading balance and an
// admin-chosen token amount are handed to the external router and the pair
// is registered with the factory. Gated to exactly once; the curve stops
// trading afterwards.
func (m *Market) AddLiquidity(caller types.Address, tokenAmount, minToken, minCurrency *big.Int, deadline time.Time) (*MigrationReceipt, error) {
	if caller != m.params.Admin {
		return nil, ErrUnauthorized
	}
	if !m.params.Migration {
		return nil, ErrFeatureDisabled
	}
	if err := checkAmount(tokenAmount); err != nil {
		return nil, err
	}
	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.end()

	if m.migrated {
		return nil, ErrAlreadyMigrated
	}
	if m.actualEth.Cmp(m.params.TargetEth) < 0 {
		return nil, ErrTargetNotReached
	}

	pair, err := m.fact.CreatePair(m.params.TokenAddress, m.params.NativeWrapper)
	if err != nil {
		return nil, fmt.Errorf("create pair: %w", err)
	}

	// The whole trading balance moves; accrued fees stay withdrawable.
	currencyAmount := new(big.Int).Set(m.actualEth)

	// Effects commit before the external calls.
	m.mu.Lock()
	m.migrated = true
	m.actualEth.SetInt64(0)
	m.pair = pair
	m.mu.Unlock()

	rollback := func() {
		m.mu.Lock()
		m.migrated = false
		m.actualEth.Set(currencyAmount)
		m.pair = ""
		m.mu.Unlock()
	}

	if err := m.token.Transfer(m.params.MarketAddress, m.router.Address(), tokenAmount); err != nil {
		rollback()
		return nil, fmt.Errorf("stage %s tokens for router: %w: %w", tokenAmount, ErrTransferFailed, err)
	}
	if err := m.bank.Transfer(m.params.MarketAddress, m.router.Address(), currencyAmount); err != nil {
		rollback()
		if rerr := m.token.Transfer(m.router.Address(), m.params.MarketAddress, tokenAmount); rerr != nil {
			m.log.Error("token unstage after failed currency stage also failed", zap.Error(rerr))
		}
		return nil, fmt.Errorf("stage %s currency for router: %w: %w", currencyAmount, ErrTransferFailed, err)
	}

	tokenUsed, currencyUsed, liquidity, err := m.router.AddLiquidity(
		m.params.TokenAddress, tokenAmount, minToken, minCurrency, m.params.Admin, deadline)
	if err != nil {
		rollback()
		if rerr := m.token.Transfer(m.router.Address(), m.params.MarketAddress, tokenAmount); rerr != nil {
			m.log.Error("token unstage after failed addLiquidity also failed", zap.Error(rerr))
		}
		if rerr := m.bank.Transfer(m.router.Address(), m.params.MarketAddress, currencyAmount); rerr != nil {
			m.log.Error("currency unstage after failed addLiquidity also failed", zap.Error(rerr))
		}
		return nil, fmt.Errorf("router addLiquidity: %w", err)
	}

	m.log.Info("liquidity migrated",
		zap.String("pair", pair.String()),
		zap.String("token_amount", tokenUsed.String()),
		zap.String("currency_amount", currencyUsed.String()),
		zap.String("liquidity", liquidity.String()))
	m.emit(newEvent(EventLiquidityAdded, LiquidityAddedData{
		Pair:           pair,
		TokenAmount:    tokenUsed.String(),
		CurrencyAmount: currencyUsed.String(),
	}))

	return &MigrationReceipt{
		Pair:           pair,
		TokenAmount:    tokenUsed,
		CurrencyAmount: currencyUsed,
		Liquidity:      liquidity,
	}, nil
}
