// =============================
// File: internal/market/history.go
// =============================
package market

import (
	"sync"
	"time"

	"github.com/opencurve/curved/internal/types"
)

// Trade is one settled buy or sell, kept for the trades API and export.
type Trade struct {
	Seq       uint64        `json:"seq"`
	Side      string        `json:"side"` // "buy" or "sell"
	Trader    types.Address `json:"trader"`
	GrossIn   string        `json:"gross_in"`
	Fee       string        `json:"fee"`
	AmountOut string        `json:"amount_out"`
	SpotPrice string        `json:"spot_price"`
	Timestamp time.Time     `json:"timestamp"`
}

// TradeLog is a thread-safe ring buffer of recent trades. Old entries are
// overwritten once the buffer wraps; Seq keeps a global count so consumers
// can detect the gap.
type TradeLog struct {
	mu      sync.Mutex
	ring    []Trade
	next    int
	wrapped bool
	total   uint64
}

// NewTradeLog returns a log holding at most size trades.
func NewTradeLog(size int) *TradeLog {
	if size <= 0 {
		size = DefaultHistorySize
	}
	return &TradeLog{ring: make([]Trade, size)}
}

// Append records a trade and stamps its sequence number.
func (l *TradeLog) Append(t Trade) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if t.Timestamp.IsZero() {
		t.Timestamp = time.Now()
	}
	l.total++
	t.Seq = l.total
	l.ring[l.next] = t
	l.next = (l.next + 1) % len(l.ring)
	if l.next == 0 {
		l.wrapped = true
	}
}

// Recent returns up to limit trades, oldest first. limit <= 0 returns all
// buffered trades.
func (l *TradeLog) Recent(limit int) []Trade {
	l.mu.Lock()
	defer l.mu.Unlock()

	count := l.next
	start := 0
	if l.wrapped {
		count = len(l.ring)
		start = l.next
	}

	out := make([]Trade, 0, count)
	for i := 0; i < count; i++ {
		out = append(out, l.ring[(start+i)%len(l.ring)])
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}

// Total returns the number of trades ever appended.
func (l *TradeLog) Total() uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}
