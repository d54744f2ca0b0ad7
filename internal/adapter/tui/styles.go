package tui

import "github.com/charmbracelet/lipgloss"

var (
	colorAccent = lipgloss.Color("#7aa2f7")
	colorDim    = lipgloss.Color("#565f89")
	colorText   = lipgloss.Color("#c0caf5")
	colorError  = lipgloss.Color("#f7768e")
	colorOK     = lipgloss.Color("#9ece6a")
)

type Styles struct {
	Title       lipgloss.Style
	Item        lipgloss.Style
	SelectedRow lipgloss.Style
	Category    lipgloss.Style
	Selected    lipgloss.Style
	Price       lipgloss.Style
	Status      lipgloss.Style
	Error       lipgloss.Style
	Help        lipgloss.Style
}

var DefaultStyles = Styles{
	Title:       lipgloss.NewStyle().Bold(true).Foreground(colorAccent).MarginBottom(1),
	Item:        lipgloss.NewStyle().Foreground(colorText).PaddingLeft(2),
	SelectedRow: lipgloss.NewStyle().Bold(true).Foreground(colorAccent).PaddingLeft(2),
	Category:    lipgloss.NewStyle().Foreground(colorDim).Padding(0, 1),
	Selected:    lipgloss.NewStyle().Bold(true).Foreground(colorAccent).Underline(true).Padding(0, 1),
	Price:       lipgloss.NewStyle().Foreground(colorOK),
	Status:      lipgloss.NewStyle().Foreground(colorDim),
	Error:       lipgloss.NewStyle().Foreground(colorError),
	Help:        lipgloss.NewStyle().Foreground(colorDim).MarginTop(1),
}
