package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true).
			PaddingLeft(2)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241"))

	chipStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("241"))

	activeChipStyle = chipStyle.
			BorderForeground(lipgloss.Color("205")).
			Foreground(lipgloss.Color("205"))

	tabStyle = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("241"))

	activeTabStyle = tabStyle.
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Underline(true)

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("205")).
			Padding(1, 2)
)

var badgeColors = map[string]lipgloss.Color{
	"pending":   lipgloss.Color("214"),
	"confirmed": lipgloss.Color("42"),
	"cancelled": lipgloss.Color("196"),
	"completed": lipgloss.Color("63"),
}

func badge(status, label string) string {
	c, ok := badgeColors[status]
	if !ok {
		c = lipgloss.Color("241")
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true).Render("[" + label + "]")
}
