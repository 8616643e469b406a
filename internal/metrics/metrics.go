// =============================
// File: internal/metrics/metrics.go
// =============================

// Package metrics exposes prometheus collectors fed from market events and
// snapshots. Wei amounts are reported as float64, which is fine for
// dashboards; exact accounting stays in the ledger.
package metrics

import (
	"math/big"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opencurve/curved/internal/market"
)

// Collector implements market.Sink and keeps the trading metrics current.
type Collector struct {
	registry *prometheus.Registry

	trades      *prometheus.CounterVec
	volume      *prometheus.CounterVec
	fees        prometheus.Counter
	withdrawals prometheus.Counter
	migrations  prometheus.Counter

	actualEth       prometheus.Gauge
	tokensAvailable prometheus.Gauge
	treasury        prometheus.Gauge
	spotPrice       prometheus.Gauge
	feeBps          prometheus.Gauge
}

// NewCollector builds and registers the metric set on a private registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		trades: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curved_trades_total",
			Help: "Total number of settled trades",
		}, []string{"side"}),
		volume: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "curved_volume_wei_total",
			Help: "Native volume settled, in wei",
		}, []string{"side"}),
		fees: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curved_fees_wei_total",
			Help: "Fees accrued to the treasury, in wei",
		}),
		withdrawals: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curved_treasury_withdrawals_total",
			Help: "Number of treasury withdrawals",
		}),
		migrations: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "curved_migrations_total",
			Help: "Number of completed liquidity migrations",
		}),
		actualEth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "curved_actual_eth_wei",
			Help: "Real native balance attributable to trading",
		}),
		tokensAvailable: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "curved_tokens_available",
			Help: "Token reserve left on the curve",
		}),
		treasury: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "curved_treasury_accrued_wei",
			Help: "Fees accrued but not withdrawn, in wei",
		}),
		spotPrice: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "curved_spot_price_wei",
			Help: "Instantaneous price in wei per whole token",
		}),
		feeBps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "curved_fee_bps",
			Help: "Current fee in basis points",
		}),
	}

	c.registry.MustRegister(
		c.trades, c.volume, c.fees, c.withdrawals, c.migrations,
		c.actualEth, c.tokensAvailable, c.treasury, c.spotPrice, c.feeBps,
	)
	return c
}

// Emit implements market.Sink.
func (c *Collector) Emit(ev market.Event) {
	switch data := ev.Data.(type) {
	case market.BoughtData:
		c.trades.WithLabelValues("buy").Inc()
		c.volume.WithLabelValues("buy").Add(weiFloat(data.GrossIn))
		c.fees.Add(weiFloat(data.Fee))
	case market.SoldData:
		c.trades.WithLabelValues("sell").Inc()
		c.volume.WithLabelValues("sell").Add(weiFloat(data.EthOut))
		c.fees.Add(weiFloat(data.Fee))
	case market.TreasuryWithdrawnData:
		c.withdrawals.Inc()
	case market.LiquidityAddedData:
		c.migrations.Inc()
	}
}

// UpdateSnapshot refreshes the gauges from a market snapshot.
func (c *Collector) UpdateSnapshot(s market.Snapshot) {
	c.actualEth.Set(weiFloat(s.ActualEth))
	c.tokensAvailable.Set(weiFloat(s.TokensAvailable))
	c.treasury.Set(weiFloat(s.TreasuryAccrued))
	c.spotPrice.Set(weiFloat(s.SpotPrice))
	c.feeBps.Set(float64(s.FeeBps))
}

// Handler serves the registry in the prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func weiFloat(s string) float64 {
	v, ok := new(big.Float).SetString(s)
	if !ok {
		return 0
	}
	f, _ := v.Float64()
	return f
}
