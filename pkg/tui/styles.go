package tui

import "github.com/charmbracelet/lipgloss"

var (
	accent      = lipgloss.Color("#8BC34A")
	destructive = lipgloss.Color("#e53935")
	muted       = lipgloss.Color("#6b7280")
	border      = lipgloss.Color("#2a3850")
)

// Styles holds the lipgloss styles of the browser.
type Styles struct {
	Title    lipgloss.Style
	Label    lipgloss.Style
	Control  lipgloss.Style
	Focused  lipgloss.Style
	Disabled lipgloss.Style
	Notice   lipgloss.Style
	Error    lipgloss.Style
	Help     lipgloss.Style
}

// DefaultStyles returns the default styles.
func DefaultStyles() Styles {
	return Styles{
		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			MarginBottom(1),
		Label:   lipgloss.NewStyle().Padding(0, 2),
		Control: lipgloss.NewStyle().Padding(0, 1),
		Focused: lipgloss.NewStyle().
			Padding(0, 1).
			Reverse(true),
		Disabled: lipgloss.NewStyle().
			Padding(0, 1).
			Foreground(muted).
			Faint(true),
		Notice: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(border).
			Padding(1, 4).
			Width(72).
			Align(lipgloss.Center),
		Error: lipgloss.NewStyle().
			Bold(true).
			Foreground(destructive),
		Help: lipgloss.NewStyle().
			Foreground(muted).
			MarginTop(1),
	}
}
