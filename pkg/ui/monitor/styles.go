package monitor

import "github.com/charmbracelet/lipgloss"

// theme groups reusable styles for monitor UI regions.
type theme struct {
	header      lipgloss.Style
	headerMeta  lipgloss.Style
	divider     lipgloss.Style
	timestamp   lipgloss.Style
	outbound    lipgloss.Style
	inbound     lipgloss.Style
	requestTag  lipgloss.Style
	responseTag lipgloss.Style
	errorTag    lipgloss.Style
	foreignTag  lipgloss.Style
	body        lipgloss.Style
	status      lipgloss.Style
	statusBusy  lipgloss.Style
	statusErr   lipgloss.Style
	hint        lipgloss.Style
	viewport    lipgloss.Style
}

// defaultTheme defines the wire-shark-at-a-distance palette of the monitor.
func defaultTheme() theme {
	return theme{
		header: lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("24")),
		headerMeta: lipgloss.NewStyle().
			Foreground(lipgloss.Color("117")),
		divider: lipgloss.NewStyle().
			Foreground(lipgloss.Color("24")),
		timestamp: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		outbound: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")),
		inbound: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("44")),
		requestTag: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("214")).
			Padding(0, 1),
		responseTag: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("16")).
			Background(lipgloss.Color("44")).
			Padding(0, 1),
		errorTag: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("231")).
			Background(lipgloss.Color("160")).
			Padding(0, 1),
		foreignTag: lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(0, 1),
		body: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		status: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")).
			Bold(true),
		statusBusy: lipgloss.NewStyle().
			Foreground(lipgloss.Color("222")).
			Bold(true),
		statusErr: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")).
			Bold(true),
		hint: lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")),
		viewport: lipgloss.NewStyle().
			Border(lipgloss.ThickBorder()).
			BorderForeground(lipgloss.Color("24")).
			Background(lipgloss.Color("233")).
			Padding(0, 1),
	}
}
