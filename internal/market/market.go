// =============================
// File: internal/market/market.go
// =============================

// Package market implements the constant-product bonding-curve reserve
// ledger: buy/sell pricing over virtual reserves, fee and treasury
// accounting, lifecycle controls and the one-time liquidity migration.
//
// Every mutating operation follows the same discipline: validate, commit all
// ledger effects under the write lock, then perform external transfers. A
// collaborator failure rolls the committed delta back in full, so no partial
// state ever survives. A reentrancy latch rejects nested entry into any
// guarded operation for the duration of the outer call.
package market

import (
	"fmt"
	"math/big"
	"sync"

	"go.uber.org/zap"

	"github.com/opencurve/curved/internal/bank"
	"github.com/opencurve/curved/internal/token"
	"github.com/opencurve/curved/internal/types"
	"github.com/opencurve/curved/pkg/curve"
)

// Deps are the collaborators injected into a market. Token and Bank are
// required; Router and Factory only when the migration flag is set; Sink is
// optional.
type Deps struct {
	Token   token.Ledger
	Bank    bank.Ledger
	Router  Router
	Factory Factory
	Sink    Sink
}

// Market is the singleton reserve ledger for one deployed token. All fields
// below mu are guarded by it; busy is the reentrancy latch.
type Market struct {
	log    *zap.Logger
	params Params
	token  token.Ledger
	bank   bank.Ledger
	router Router
	fact   Factory
	sink   Sink
	trades *TradeLog

	mu   sync.RWMutex
	busy bool

	virtualEth      *big.Int
	tokensAvailable *big.Int
	totalSupply     *big.Int
	soldTokens      *big.Int
	actualEth       *big.Int
	treasuryAccrued *big.Int
	feeBps          uint16

	paused      bool
	blacklisted bool
	migrated    bool
	pair        types.Address
}

// BuyReceipt reports the settled amounts of a buy.
type BuyReceipt struct {
	GrossIn   *big.Int
	Fee       *big.Int
	Net       *big.Int
	TokensOut *big.Int
}

// SellReceipt reports the settled amounts of a sell. EthOut is the net
// payout after the fee taken from the curve's gross quote.
type SellReceipt struct {
	TokensIn *big.Int
	Gross    *big.Int
	Fee      *big.Int
	EthOut   *big.Int
}

// New constructs a market from validated params and collaborators.
func New(logger *zap.Logger, params Params, deps Deps) (*Market, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("market params: %w", err)
	}
	if deps.Token == nil || deps.Bank == nil {
		return nil, fmt.Errorf("market requires token and bank ledgers")
	}
	if params.Migration && (deps.Router == nil || deps.Factory == nil) {
		return nil, fmt.Errorf("migration-enabled market requires router and factory")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Market{
		log:             logger.Named("market"),
		params:          params,
		token:           deps.Token,
		bank:            deps.Bank,
		router:          deps.Router,
		fact:            deps.Factory,
		sink:            deps.Sink,
		trades:          NewTradeLog(params.HistorySize),
		virtualEth:      new(big.Int).Set(params.VirtualEth),
		tokensAvailable: new(big.Int).Set(params.CurveAllocation),
		totalSupply:     new(big.Int).Set(params.TokenSupply),
		soldTokens:      new(big.Int),
		actualEth:       new(big.Int),
		treasuryAccrued: new(big.Int),
		feeBps:          params.FeeBps,
	}, nil
}

// begin acquires the operation latch. A nested call from collaborator code
// (the reentrancy hazard) finds busy set and is rejected outright instead of
// observing or mutating mid-operation state.
func (m *Market) begin() error {
	m.mu.Lock()
	if m.busy {
		m.mu.Unlock()
		return ErrReentrant
	}
	m.busy = true
	m.mu.Unlock()
	return nil
}

// end releases the latch on every exit path.
func (m *Market) end() {
	m.mu.Lock()
	m.busy = false
	m.mu.Unlock()
}

// gate enforces the lifecycle controls on the trade path. Caller holds the
// operation latch.
func (m *Market) gate() error {
	if m.migrated {
		return ErrAlreadyMigrated
	}
	if m.params.Pausable && m.paused {
		return ErrPaused
	}
	if m.params.Blacklist && m.blacklisted {
		return ErrBlacklisted
	}
	return nil
}

func checkAmount(v *big.Int) error {
	if v == nil || v.Sign() <= 0 || v.Cmp(curve.MaxUint256) > 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Buy trades ethIn native units for tokens. The fee is carved off the gross
// input and the curve is quoted on the net amount, so fee extraction never
// perturbs the price.
func (m *Market) Buy(buyer types.Address, ethIn *big.Int) (*BuyReceipt, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.end()

	if err := checkAmount(ethIn); err != nil {
		return nil, err
	}
	if err := m.gate(); err != nil {
		return nil, err
	}

	fee := curve.Fee(ethIn, m.feeBps)
	net := new(big.Int).Sub(ethIn, fee)

	dt := curve.TokensOut(m.virtualEth, m.tokensAvailable, net)
	if dt.Sign() == 0 {
		return nil, ErrZeroOutput
	}
	// Required explicit bound, not an emergent property of the formula.
	if dt.Cmp(m.tokensAvailable) > 0 {
		return nil, ErrInsufficientLiquidity
	}

	// Value travels with the call: collect it before any effect commits, so
	// a failed collection aborts with nothing to roll back.
	if err := m.bank.Transfer(buyer, m.params.MarketAddress, ethIn); err != nil {
		return nil, fmt.Errorf("collect %s from %s: %w: %w", ethIn, buyer, ErrTransferFailed, err)
	}

	m.mu.Lock()
	m.virtualEth.Add(m.virtualEth, net)
	m.tokensAvailable.Sub(m.tokensAvailable, dt)
	m.soldTokens.Add(m.soldTokens, dt)
	m.actualEth.Add(m.actualEth, net)
	m.treasuryAccrued.Add(m.treasuryAccrued, fee)
	m.mu.Unlock()

	if err := m.token.Transfer(m.params.MarketAddress, buyer, dt); err != nil {
		m.mu.Lock()
		m.virtualEth.Sub(m.virtualEth, net)
		m.tokensAvailable.Add(m.tokensAvailable, dt)
		m.soldTokens.Sub(m.soldTokens, dt)
		m.actualEth.Sub(m.actualEth, net)
		m.treasuryAccrued.Sub(m.treasuryAccrued, fee)
		m.mu.Unlock()
		if rerr := m.bank.Transfer(m.params.MarketAddress, buyer, ethIn); rerr != nil {
			m.log.Error("refund after failed token credit also failed",
				zap.String("buyer", buyer.String()), zap.Error(rerr))
		}
		return nil, fmt.Errorf("credit %s tokens to %s: %w: %w", dt, buyer, ErrTransferFailed, err)
	}

	m.log.Info("buy settled",
		zap.String("buyer", buyer.String()),
		zap.String("gross_in", ethIn.String()),
		zap.String("fee", fee.String()),
		zap.String("tokens_out", dt.String()))
	m.record("buy", buyer, ethIn, fee, dt)
	m.emit(newEvent(EventBought, BoughtData{
		Buyer:     buyer,
		GrossIn:   ethIn.String(),
		Fee:       fee.String(),
		TokensOut: dt.String(),
	}))

	return &BuyReceipt{GrossIn: ethIn, Fee: fee, Net: net, TokensOut: dt}, nil
}

// Sell trades tokenAmount tokens back to the curve for native currency. The
// gross amount comes from the curve, so the fee is taken from the output
// side; sold-back tokens are recycled into the reserve, not burned.
func (m *Market) Sell(seller types.Address, tokenAmount *big.Int) (*SellReceipt, error) {
	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.end()

	if err := checkAmount(tokenAmount); err != nil {
		return nil, err
	}
	if err := m.gate(); err != nil {
		return nil, err
	}
	if m.token.BalanceOf(seller).Cmp(tokenAmount) < 0 {
		return nil, ErrInsufficientBalance
	}
	// Cannot sell back more than has ever been bought net.
	if tokenAmount.Cmp(m.soldTokens) > 0 {
		return nil, ErrExceedsCirculation
	}

	returned := curve.EthOut(m.virtualEth, m.tokensAvailable, tokenAmount)
	if returned.Sign() == 0 {
		return nil, ErrZeroOutput
	}
	// Never promise more than the market actually holds for trading.
	if returned.Cmp(m.actualEth) > 0 {
		return nil, ErrInsufficientLiquidity
	}

	fee := curve.Fee(returned, m.feeBps)
	net := new(big.Int).Sub(returned, fee)

	m.mu.Lock()
	m.virtualEth.Sub(m.virtualEth, returned)
	m.tokensAvailable.Add(m.tokensAvailable, tokenAmount)
	m.soldTokens.Sub(m.soldTokens, tokenAmount)
	m.actualEth.Sub(m.actualEth, returned)
	m.treasuryAccrued.Add(m.treasuryAccrued, fee)
	m.mu.Unlock()

	rollback := func() {
		m.mu.Lock()
		m.virtualEth.Add(m.virtualEth, returned)
		m.tokensAvailable.Sub(m.tokensAvailable, tokenAmount)
		m.soldTokens.Add(m.soldTokens, tokenAmount)
		m.actualEth.Add(m.actualEth, returned)
		m.treasuryAccrued.Sub(m.treasuryAccrued, fee)
		m.mu.Unlock()
	}

	// Pull the sold tokens onto the curve; the market acts as the ledger's
	// operator here.
	if err := m.token.TransferFrom(m.params.MarketAddress, seller, m.params.MarketAddress, tokenAmount); err != nil {
		rollback()
		return nil, fmt.Errorf("pull %s tokens from %s: %w: %w", tokenAmount, seller, ErrTransferFailed, err)
	}

	if err := m.bank.Transfer(m.params.MarketAddress, seller, net); err != nil {
		rollback()
		if rerr := m.token.Transfer(m.params.MarketAddress, seller, tokenAmount); rerr != nil {
			m.log.Error("token return after failed payout also failed",
				zap.String("seller", seller.String()), zap.Error(rerr))
		}
		return nil, fmt.Errorf("pay %s to %s: %w: %w", net, seller, ErrTransferFailed, err)
	}

	m.log.Info("sell settled",
		zap.String("seller", seller.String()),
		zap.String("tokens_in", tokenAmount.String()),
		zap.String("fee", fee.String()),
		zap.String("eth_out", net.String()))
	m.record("sell", seller, tokenAmount, fee, net)
	m.emit(newEvent(EventSold, SoldData{
		Seller:   seller,
		TokensIn: tokenAmount.String(),
		Fee:      fee.String(),
		EthOut:   net.String(),
	}))

	return &SellReceipt{TokensIn: tokenAmount, Gross: returned, Fee: fee, EthOut: net}, nil
}

// SetFeeBps updates the treasury fee. Treasury principal only, ceiling
// enforced.
func (m *Market) SetFeeBps(caller types.Address, bps uint16) error {
	if caller != m.params.Treasury {
		return ErrUnauthorized
	}
	if bps > m.params.FeeCeilingBps {
		return ErrFeeTooHigh
	}
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()

	m.mu.Lock()
	m.feeBps = bps
	ev := ParamsUpdatedData{
		VirtualEth:      m.virtualEth.String(),
		TokensAvailable: m.tokensAvailable.String(),
		FeeBps:          bps,
	}
	m.mu.Unlock()

	m.log.Info("fee updated", zap.Uint16("fee_bps", bps))
	m.emit(newEvent(EventParamsUpdated, ev))
	return nil
}

// WithdrawTreasury pays out accrued fees. Treasury principal only. A nil
// amount withdraws the full accrual.
func (m *Market) WithdrawTreasury(caller, to types.Address, amount *big.Int) (*big.Int, error) {
	if caller != m.params.Treasury {
		return nil, ErrUnauthorized
	}
	if err := m.begin(); err != nil {
		return nil, err
	}
	defer m.end()

	if amount == nil {
		amount = new(big.Int).Set(m.treasuryAccrued)
	} else if amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	if amount.Cmp(m.treasuryAccrued) > 0 {
		return nil, ErrExceedsAccrued
	}
	if amount.Sign() == 0 {
		return new(big.Int), nil
	}

	m.mu.Lock()
	m.treasuryAccrued.Sub(m.treasuryAccrued, amount)
	m.mu.Unlock()

	if err := m.bank.Transfer(m.params.MarketAddress, to, amount); err != nil {
		m.mu.Lock()
		m.treasuryAccrued.Add(m.treasuryAccrued, amount)
		m.mu.Unlock()
		return nil, fmt.Errorf("treasury payout %s to %s: %w: %w", amount, to, ErrTransferFailed, err)
	}

	m.log.Info("treasury withdrawn",
		zap.String("to", to.String()),
		zap.String("amount", amount.String()))
	m.emit(newEvent(EventTreasuryWithdrawn, TreasuryWithdrawnData{To: to, Amount: amount.String()}))
	return amount, nil
}

// SetPaused toggles the trading pause. Admin only; requires the pausable
// variant. Takes effect for subsequent calls immediately.
func (m *Market) SetPaused(caller types.Address, paused bool) error {
	if caller != m.params.Admin {
		return ErrUnauthorized
	}
	if !m.params.Pausable {
		return ErrFeatureDisabled
	}
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()
	m.mu.Lock()
	m.paused = paused
	m.mu.Unlock()
	m.log.Info("pause toggled", zap.Bool("paused", paused))
	return nil
}

// SetBlacklisted toggles the market blacklist gate. Admin only; requires the
// blacklist variant.
func (m *Market) SetBlacklisted(caller types.Address, blacklisted bool) error {
	if caller != m.params.Admin {
		return ErrUnauthorized
	}
	if !m.params.Blacklist {
		return ErrFeatureDisabled
	}
	if err := m.begin(); err != nil {
		return err
	}
	defer m.end()
	m.mu.Lock()
	m.blacklisted = blacklisted
	m.mu.Unlock()
	m.log.Info("blacklist toggled", zap.Bool("blacklisted", blacklisted))
	return nil
}

func (m *Market) emit(ev Event) {
	if m.sink != nil {
		m.sink.Emit(ev)
	}
}

func (m *Market) record(side string, trader types.Address, in, fee, out *big.Int) {
	m.mu.RLock()
	spot := curve.SpotPrice(m.virtualEth, m.tokensAvailable)
	m.mu.RUnlock()
	m.trades.Append(Trade{
		Side:      side,
		Trader:    trader,
		GrossIn:   in.String(),
		Fee:       fee.String(),
		AmountOut: out.String(),
		SpotPrice: spot.String(),
	})
}
