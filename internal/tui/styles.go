package tui

import (
	"github.com/charmbracelet/lipgloss/v2"

	"github.com/billie-coop/switchyard/internal/queue"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	panelTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("99"))

	statsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("245"))

	pausedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214"))

	flashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("203"))

	errStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			MarginTop(1)

	inputStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(0, 1)
)

var priorityStyles = map[queue.Priority]lipgloss.Style{
	queue.PriorityCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	queue.PriorityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	queue.PriorityNormal:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	queue.PriorityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
}

func priorityBadge(p queue.Priority) string {
	style, ok := priorityStyles[p]
	if !ok {
		style = priorityStyles[queue.PriorityNormal]
	}
	return style.Render(p.String())
}
