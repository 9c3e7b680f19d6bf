package moodmate

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/keshangamage/Moodmate/internal/model"
)

var (
	colorHigh   = lipgloss.Color("#f38ba8")
	colorMedium = lipgloss.Color("#fab387")
	colorLow    = lipgloss.Color("#a6e3a1")
	colorTitle  = lipgloss.Color("#74c7ec")
	colorMuted  = lipgloss.Color("#a6adc8")

	titleStyle = lipgloss.NewStyle().Foreground(colorTitle).Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	badgeStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
)

// priorityBadge renders an insight priority as a short colored tag. Colors
// are dropped automatically when output is not a terminal.
func priorityBadge(p model.Priority) string {
	color := colorLow
	switch p {
	case model.PriorityHigh:
		color = colorHigh
	case model.PriorityMedium:
		color = colorMedium
	}
	return badgeStyle.Foreground(color).Render(string(p))
}

func heading(text string) string {
	return titleStyle.Render(text)
}

func muted(text string) string {
	return mutedStyle.Render(text)
}
