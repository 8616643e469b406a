// =============================
// File: internal/tui/model.go
// =============================
package tui

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/opencurve/curved/internal/market"
)

const refreshInterval = 2 * time.Second

type mode int

const (
	modeView mode = iota
	modeBuy
	modeSell
)

type tickMsg time.Time

type stateMsg struct {
	snap   market.Snapshot
	trades []market.Trade
}

type fetchErrMsg struct{ err error }

type tradeDoneMsg struct{ result TradeResult }

type tradeErrMsg struct{ err error }

// Model is the dashboard's bubbletea model.
type Model struct {
	client  *Client
	address string

	snap   market.Snapshot
	trades []market.Trade
	mode   mode
	input  textinput.Model

	lastTrade *TradeResult
	err       error
	width     int
}

// NewModel builds the dashboard for the given API client and trader address.
func NewModel(client *Client, address string) Model {
	input := textinput.New()
	input.Placeholder = "amount in wei"
	input.CharLimit = 80
	input.Width = 40
	return Model{
		client:  client,
		address: address,
		input:   input,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.refresh(), tick(), tea.EnterAltScreen)
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

func (m Model) refresh() tea.Cmd {
	client := m.client
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), refreshInterval)
		defer cancel()

		snap, err := client.Market(ctx)
		if err != nil {
			return fetchErrMsg{err: err}
		}
		trades, err := client.Trades(ctx, 10)
		if err != nil {
			return fetchErrMsg{err: err}
		}
		return stateMsg{snap: snap, trades: trades}
	}
}

func (m Model) submitTrade() tea.Cmd {
	client, address, amount := m.client, m.address, strings.TrimSpace(m.input.Value())
	sell := m.mode == modeSell
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		var result TradeResult
		var err error
		if sell {
			result, err = client.Sell(ctx, address, amount)
		} else {
			result, err = client.Buy(ctx, address, amount)
		}
		if err != nil {
			return tradeErrMsg{err: err}
		}
		return tradeDoneMsg{result: result}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.refresh(), tick())

	case stateMsg:
		m.snap = msg.snap
		m.trades = msg.trades
		m.err = nil
		return m, nil

	case fetchErrMsg:
		m.err = msg.err
		return m, nil

	case tradeDoneMsg:
		result := msg.result
		m.lastTrade = &result
		m.err = nil
		m.mode = modeView
		m.input.Blur()
		m.input.Reset()
		return m, m.refresh()

	case tradeErrMsg:
		m.err = msg.err
		m.mode = modeView
		m.input.Blur()
		m.input.Reset()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.mode != modeView {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.mode != modeView {
		switch msg.String() {
		case "esc":
			m.mode = modeView
			m.input.Blur()
			m.input.Reset()
			return m, nil
		case "enter":
			if strings.TrimSpace(m.input.Value()) == "" {
				return m, nil
			}
			return m, m.submitTrade()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "b":
		m.mode = modeBuy
		m.input.Placeholder = "eth in (wei)"
		m.input.Focus()
		return m, textinput.Blink
	case "s":
		m.mode = modeSell
		m.input.Placeholder = "tokens in (wei)"
		m.input.Focus()
		return m, textinput.Blink
	case "r":
		return m, m.refresh()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("curved — bonding curve market"))
	b.WriteString("\n")
	b.WriteString(m.marketPane())
	b.WriteString("\n")
	b.WriteString(m.tradesPane())
	b.WriteString("\n")

	switch {
	case m.mode == modeBuy:
		b.WriteString(buyStyle.Render(" BUY ") + m.input.View() + "\n")
	case m.mode == modeSell:
		b.WriteString(sellStyle.Render(" SELL ") + m.input.View() + "\n")
	case m.lastTrade != nil:
		lt := m.lastTrade
		style := buyStyle
		if lt.Side == "sell" {
			style = sellStyle
		}
		b.WriteString(style.Render(fmt.Sprintf(" last %s: in=%s fee=%s out=%s", lt.Side, lt.GrossIn, lt.Fee, lt.AmountOut)) + "\n")
	}

	if m.err != nil {
		b.WriteString(errStyle.Render(" " + m.err.Error()) + "\n")
	}
	b.WriteString(helpStyle.Render("b buy · s sell · r refresh · q quit"))
	return b.String()
}

func (m Model) marketPane() string {
	s := m.snap
	status := buyStyle.Render("trading")
	switch {
	case s.Migrated:
		status = warnStyle.Render("migrated → " + s.Pair.String())
	case s.Paused:
		status = warnStyle.Render("paused")
	case s.Blacklisted:
		status = errStyle.Render("blacklisted")
	}

	lines := []string{
		headerStyle.Render("MARKET") + " " + status,
		row("spot price", formatEth(s.SpotPrice)+" eth/token"),
		row("virtual eth", formatEth(s.VirtualEth)),
		row("actual eth", formatEth(s.ActualEth)),
		row("tokens left", formatUnits(s.TokensAvailable)),
		row("sold", formatUnits(s.SoldTokens)),
		row("treasury", formatEth(s.TreasuryAccrued)+fmt.Sprintf("  (fee %d bps)", s.FeeBps)),
	}
	return paneStyle.Render(strings.Join(lines, "\n"))
}

func (m Model) tradesPane() string {
	lines := []string{headerStyle.Render("RECENT TRADES")}
	if len(m.trades) == 0 {
		lines = append(lines, labelStyle.Render("no trades yet"))
	}
	for i := len(m.trades) - 1; i >= 0; i-- {
		t := m.trades[i]
		style := buyStyle
		if t.Side == "sell" {
			style = sellStyle
		}
		lines = append(lines, fmt.Sprintf("%s %s %s  in=%s out=%s",
			labelStyle.Render(fmt.Sprintf("#%d", t.Seq)),
			style.Render(strings.ToUpper(t.Side)),
			valueStyle.Render(t.Trader.String()),
			formatUnits(t.GrossIn),
			formatUnits(t.AmountOut)))
	}
	return paneStyle.Render(strings.Join(lines, "\n"))
}

func row(label, value string) string {
	return labelStyle.Render(fmt.Sprintf("%-12s", label)) + valueStyle.Render(value)
}

var weiPerEth = new(big.Float).SetFloat64(1e18)

// formatEth renders a decimal wei string as whole units with six decimals.
func formatEth(wei string) string {
	v, ok := new(big.Float).SetString(wei)
	if !ok {
		return wei
	}
	v.Quo(v, weiPerEth)
	return v.Text('f', 6)
}

// formatUnits abbreviates large token amounts for display.
func formatUnits(wei string) string {
	v, ok := new(big.Float).SetString(wei)
	if !ok {
		return wei
	}
	v.Quo(v, weiPerEth)
	f, _ := v.Float64()
	switch {
	case f >= 1e9:
		return fmt.Sprintf("%.2fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("%.2fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("%.2fK", f/1e3)
	default:
		return fmt.Sprintf("%.6f", f)
	}
}
