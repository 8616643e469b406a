// =============================
// File: internal/market/config.go
// =============================
package market

import (
	"errors"
	"math/big"

	"github.com/opencurve/curved/internal/types"
)

// DefaultFeeCeilingBps caps SetFeeBps updates unless the params say tighter.
const DefaultFeeCeilingBps = 2000

// DefaultHistorySize bounds the in-memory trade log.
const DefaultHistorySize = 512

// Params configures one market instance. The three feature flags unify the
// pausable/admin variant and the self-contained treasury variant into a
// single ledger; a flag left false removes that control surface entirely.
type Params struct {
	// MarketAddress is the market's own account on both ledgers.
	MarketAddress types.Address
	// TokenAddress identifies the traded asset (used at pair creation).
	TokenAddress types.Address
	// NativeWrapper identifies the wrapped-native asset for pair creation.
	NativeWrapper types.Address

	Admin    types.Address
	Treasury types.Address

	// VirtualEth seeds the synthetic native reserve, strictly positive.
	VirtualEth *big.Int
	// CurveAllocation seeds tokensAvailable; the reserve can never grow
	// above it.
	CurveAllocation *big.Int
	// TokenSupply is the informational total issued supply.
	TokenSupply *big.Int
	// TargetEth is the cumulative raise that arms the migration.
	TargetEth *big.Int

	FeeBps        uint16
	FeeCeilingBps uint16

	Pausable  bool
	Blacklist bool
	Migration bool

	// HistorySize bounds the trade log; 0 means DefaultHistorySize.
	HistorySize int
}

// Validate rejects parameter sets the ledger cannot operate on.
func (p *Params) Validate() error {
	switch {
	case p.MarketAddress.IsZero():
		return errors.New("market address required")
	case p.Admin.IsZero():
		return errors.New("admin address required")
	case p.Treasury.IsZero():
		return errors.New("treasury address required")
	case p.VirtualEth == nil || p.VirtualEth.Sign() <= 0:
		return errors.New("virtual eth reserve must be positive")
	case p.CurveAllocation == nil || p.CurveAllocation.Sign() <= 0:
		return errors.New("curve allocation must be positive")
	case p.TokenSupply == nil || p.TokenSupply.Cmp(p.CurveAllocation) < 0:
		return errors.New("token supply must cover the curve allocation")
	}
	if p.FeeCeilingBps == 0 {
		p.FeeCeilingBps = DefaultFeeCeilingBps
	}
	if p.FeeCeilingBps > 10000 {
		return errors.New("fee ceiling above 10000 bps")
	}
	if p.FeeBps > p.FeeCeilingBps {
		return errors.New("fee above ceiling")
	}
	if p.Migration {
		if p.TargetEth == nil || p.TargetEth.Sign() <= 0 {
			return errors.New("migration requires a positive target")
		}
		if p.TokenAddress.IsZero() || p.NativeWrapper.IsZero() {
			return errors.New("migration requires token and wrapper addresses")
		}
	}
	if p.HistorySize == 0 {
		p.HistorySize = DefaultHistorySize
	}
	return nil
}
