// =============================
// File: cmd/curvetui/main.go
// =============================
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/opencurve/curved/internal/tui"
)

func main() {
	apiBase := flag.String("api", "http://localhost:8085", "curved API base URL")
	address := flag.String("address", "trader", "trading address for buys and sells")
	flag.Parse()

	client := tui.NewClient(*apiBase)
	model := tui.NewModel(client, *address)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "curvetui: %v\n", err)
		os.Exit(1)
	}
}
