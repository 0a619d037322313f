package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/mgarnier/crewplan/internal/models"
)

// Palette shared by the board and the list output.
var (
	ColorGreen  = lipgloss.Color("42")
	ColorYellow = lipgloss.Color("220")
	ColorOrange = lipgloss.Color("208")
	ColorRed    = lipgloss.Color("196")
	ColorBlue   = lipgloss.Color("39")
	ColorGray   = lipgloss.Color("245")

	HeaderStyle   = lipgloss.NewStyle().Bold(true).Foreground(ColorBlue)
	SelectedStyle = lipgloss.NewStyle().Bold(true).Background(lipgloss.Color("236"))
	DimStyle      = lipgloss.NewStyle().Foreground(ColorGray)
)

var taskStatusColors = map[models.TaskStatus]lipgloss.Color{
	models.TaskPlanned:    ColorBlue,
	models.TaskLate:       ColorOrange,
	models.TaskInProgress: ColorYellow,
	models.TaskDone:       ColorGreen,
	models.TaskExpired:    ColorRed,
	models.TaskCancelled:  ColorGray,
}

var distStatusColors = map[models.DistStatus]lipgloss.Color{
	models.DistPending:     ColorBlue,
	models.DistLate:        ColorOrange,
	models.DistInProgress:  ColorYellow,
	models.DistDone:        ColorGreen,
	models.DistRescheduled: ColorGray,
	models.DistCancelled:   ColorGray,
}

// TaskStatus renders a task status with its color.
func TaskStatus(s models.TaskStatus) string {
	c, ok := taskStatusColors[s]
	if !ok {
		return string(s)
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(s))
}

// DistStatus renders a slice status with its color.
func DistStatus(s models.DistStatus) string {
	c, ok := distStatusColors[s]
	if !ok {
		return string(s)
	}
	return lipgloss.NewStyle().Foreground(c).Render(string(s))
}
