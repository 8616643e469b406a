// =============================
// File: internal/market/events.go
// =============================
package market

import (
	"time"

	"github.com/opencurve/curved/internal/types"
)

// EventType represents the type of market event.
type EventType int

const (
	EventBought EventType = iota
	EventSold
	EventTreasuryWithdrawn
	EventParamsUpdated
	EventLiquidityAdded
)

// String returns the wire name of the event type.
func (t EventType) String() string {
	switch t {
	case EventBought:
		return "bought"
	case EventSold:
		return "sold"
	case EventTreasuryWithdrawn:
		return "treasury_withdrawn"
	case EventParamsUpdated:
		return "params_updated"
	case EventLiquidityAdded:
		return "liquidity_added"
	default:
		return "unknown"
	}
}

// Event is an emitted market record. Amounts are decimal wei strings so the
// record survives JSON encoding without precision loss.
type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// Sink consumes emitted events. Emit must not call back into the market; it
// runs inside the operation's guarded section.
type Sink interface {
	Emit(Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(Event)

// Emit implements Sink.
func (f SinkFunc) Emit(ev Event) { f(ev) }

// MultiSink fans an event out to several sinks in order.
type MultiSink []Sink

// Emit implements Sink.
func (m MultiSink) Emit(ev Event) {
	for _, s := range m {
		s.Emit(ev)
	}
}

// BoughtData records a completed buy.
type BoughtData struct {
	Buyer     types.Address `json:"buyer"`
	GrossIn   string        `json:"gross_in"`
	Fee       string        `json:"fee"`
	TokensOut string        `json:"tokens_out"`
}

// SoldData records a completed sell.
type SoldData struct {
	Seller   types.Address `json:"seller"`
	TokensIn string        `json:"tokens_in"`
	Fee      string        `json:"fee"`
	EthOut   string        `json:"eth_out"`
}

// TreasuryWithdrawnData records a treasury payout.
type TreasuryWithdrawnData struct {
	To     types.Address `json:"to"`
	Amount string        `json:"amount"`
}

// ParamsUpdatedData records a parameter change alongside current reserves.
type ParamsUpdatedData struct {
	VirtualEth      string `json:"virtual_eth"`
	TokensAvailable string `json:"tokens_available"`
	FeeBps          uint16 `json:"fee_bps"`
}

// LiquidityAddedData records the one-time migration.
type LiquidityAddedData struct {
	Pair           types.Address `json:"pair"`
	TokenAmount    string        `json:"token_amount"`
	CurrencyAmount string        `json:"currency_amount"`
}

func newEvent(t EventType, data interface{}) Event {
	return Event{Type: t, Timestamp: time.Now(), Data: data}
}
