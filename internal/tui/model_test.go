// =============================
// File: internal/tui/model_test.go
// =============================
package tui

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencurve/curved/internal/market"
)

func TestFormatEth(t *testing.T) {
	assert.Equal(t, "1.000000", formatEth("1000000000000000000"))
	assert.Equal(t, "0.990000", formatEth("990000000000000000"))
	assert.Equal(t, "garbage", formatEth("garbage"))
}

func TestFormatUnits(t *testing.T) {
	assert.Equal(t, "1.07B", formatUnits("1073000191000000000000000000"))
	assert.Equal(t, "34.28M", formatUnits("34277837660212971926427880"))
	assert.Equal(t, "0.500000", formatUnits("500000000000000000"))
}

func TestModeTransitions(t *testing.T) {
	m := NewModel(NewClient("http://localhost:0"), "alice")

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'b'}})
	model := updated.(Model)
	assert.Equal(t, modeBuy, model.mode)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEsc})
	model = updated.(Model)
	assert.Equal(t, modeView, model.mode)

	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'s'}})
	model = updated.(Model)
	assert.Equal(t, modeSell, model.mode)
}

func TestStateMsgUpdatesView(t *testing.T) {
	m := NewModel(NewClient("http://localhost:0"), "alice")

	updated, _ := m.Update(stateMsg{
		snap: market.Snapshot{
			VirtualEth:      "30990000000000000000",
			ActualEth:       "990000000000000000",
			TokensAvailable: "1038722353339787028073572120",
			SoldTokens:      "34277837660212971926427880",
			TreasuryAccrued: "10000000000000000",
			SpotPrice:       "29837000000",
			FeeBps:          100,
		},
		trades: []market.Trade{{Seq: 1, Side: "buy", Trader: "alice",
			GrossIn: "1000000000000000000", AmountOut: "34277837660212971926427880"}},
	})
	model := updated.(Model)

	view := model.View()
	require.NotEmpty(t, view)
	assert.Contains(t, view, "MARKET")
	assert.Contains(t, view, "RECENT TRADES")
	assert.Contains(t, view, "BUY")
}
