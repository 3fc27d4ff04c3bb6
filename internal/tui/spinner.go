package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/lipgloss/v2"
)

// Braille spinner shown next to in-flight requests.
var yardDots = spinner.Spinner{
	Frames: []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"},
	FPS:    time.Second / 10,
}

func newStyledSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = yardDots
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return s
}
