package ui

import (
	"github.com/charmbracelet/lipgloss"

	"gamearr/db"
)

// One color per acquisition state, roughly "how close to playable".
var statusColors = map[string]lipgloss.Color{
	db.StatusMonitoring:   lipgloss.Color("244"), // grey
	db.StatusProcessing:   lipgloss.Color("245"),
	db.StatusCrackedScene: lipgloss.Color("13"), // magenta
	db.StatusCrackedP2P:   lipgloss.Color("5"),
	db.StatusSnatched:     lipgloss.Color("11"), // yellow
	db.StatusDownloading:  lipgloss.Color("12"), // blue
	db.StatusDownloaded:   lipgloss.Color("14"),
	db.StatusImported:     lipgloss.Color("10"), // green
	db.StatusError:        lipgloss.Color("9"),  // red
}

// Status renders a game status in its lifecycle color.
func Status(status string) string {
	color, ok := statusColors[status]
	if !ok {
		return status
	}
	return lipgloss.NewStyle().Foreground(color).Render(status)
}

// Title renders a game title emphasized.
func Title(text string) string {
	return lipgloss.NewStyle().Bold(true).Render(text)
}
