// =============================
// File: internal/market/views.go
// =============================
package market

import (
	"math/big"

	"github.com/opencurve/curved/internal/types"
	"github.com/opencurve/curved/pkg/curve"
)

// Quote is a read-only trade preview; it never mutates state.
type Quote struct {
	AmountIn  *big.Int
	Fee       *big.Int
	AmountOut *big.Int
}

// CalculateTokensBought previews a buy of ethIn, mirroring Buy's fee split
// exactly: fee off the gross, curve quoted on the net.
func (m *Market) CalculateTokensBought(ethIn *big.Int) (*Quote, error) {
	if err := checkAmount(ethIn); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	fee := curve.Fee(ethIn, m.feeBps)
	net := new(big.Int).Sub(ethIn, fee)
	out := curve.TokensOut(m.virtualEth, m.tokensAvailable, net)
	return &Quote{AmountIn: new(big.Int).Set(ethIn), Fee: fee, AmountOut: out}, nil
}

// CalculateEthPayout previews a sell of tokensIn, mirroring Sell's fee side:
// curve quoted on the full amount, fee off the output.
func (m *Market) CalculateEthPayout(tokensIn *big.Int) (*Quote, error) {
	if err := checkAmount(tokensIn); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	gross := curve.EthOut(m.virtualEth, m.tokensAvailable, tokensIn)
	fee := curve.Fee(gross, m.feeBps)
	net := new(big.Int).Sub(gross, fee)
	return &Quote{AmountIn: new(big.Int).Set(tokensIn), Fee: fee, AmountOut: net}, nil
}

// InvariantK returns the current reserve product.
func (m *Market) InvariantK() *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return curve.K(m.virtualEth, m.tokensAvailable)
}

// SpotPrice returns the instantaneous price in wei per whole token, or the
// MaxUint256 sentinel when the curve holds no tokens.
func (m *Market) SpotPrice() *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return curve.SpotPrice(m.virtualEth, m.tokensAvailable)
}

// Snapshot is a consistent copy of the market's observable state. Amounts
// are decimal wei strings.
type Snapshot struct {
	VirtualEth      string        `json:"virtual_eth"`
	TokensAvailable string        `json:"tokens_available"`
	TotalSupply     string        `json:"total_supply"`
	SoldTokens      string        `json:"sold_tokens"`
	ActualEth       string        `json:"actual_eth"`
	TreasuryAccrued string        `json:"treasury_accrued"`
	TargetEth       string        `json:"target_eth,omitempty"`
	FeeBps          uint16        `json:"fee_bps"`
	K               string        `json:"k"`
	SpotPrice       string        `json:"spot_price"`
	Paused          bool          `json:"paused"`
	Blacklisted     bool          `json:"blacklisted"`
	Migrated        bool          `json:"migrated"`
	Pair            types.Address `json:"pair,omitempty"`
	Trades          uint64        `json:"trades"`
}

// Snapshot captures the current state under the read lock.
func (m *Market) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := Snapshot{
		VirtualEth:      m.virtualEth.String(),
		TokensAvailable: m.tokensAvailable.String(),
		TotalSupply:     m.totalSupply.String(),
		SoldTokens:      m.soldTokens.String(),
		ActualEth:       m.actualEth.String(),
		TreasuryAccrued: m.treasuryAccrued.String(),
		FeeBps:          m.feeBps,
		K:               curve.K(m.virtualEth, m.tokensAvailable).String(),
		SpotPrice:       curve.SpotPrice(m.virtualEth, m.tokensAvailable).String(),
		Paused:          m.paused,
		Blacklisted:     m.blacklisted,
		Migrated:        m.migrated,
		Pair:            m.pair,
		Trades:          m.trades.Total(),
	}
	if m.params.TargetEth != nil {
		s.TargetEth = m.params.TargetEth.String()
	}
	return s
}

// RecentTrades returns up to limit settled trades, oldest first.
func (m *Market) RecentTrades(limit int) []Trade {
	return m.trades.Recent(limit)
}

// TreasuryAccrued returns the fees collected but not yet withdrawn.
func (m *Market) TreasuryAccrued() *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.treasuryAccrued)
}

// ActualEth returns the real native balance attributable to trading.
func (m *Market) ActualEth() *big.Int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return new(big.Int).Set(m.actualEth)
}
