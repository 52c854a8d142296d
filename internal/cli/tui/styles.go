package tui

import "github.com/charmbracelet/lipgloss"

// Styles contains all lipgloss styles for the dashboard.
type Styles struct {
	// Header styling
	Title       lipgloss.Style
	Timer       lipgloss.Style
	Parallelism lipgloss.Style

	// Worker row styling
	WorkerRunning lipgloss.Style
	WorkerWaiting lipgloss.Style
	WorkerStopped lipgloss.Style
	WorkerName    lipgloss.Style
	WorkerNode    lipgloss.Style

	// Footer styling
	Footer    lipgloss.Style
	FooterKey lipgloss.Style

	// Status counts
	StatusComplete lipgloss.Style
	StatusFailed   lipgloss.Style
	StatusActive   lipgloss.Style

	// Log area styling
	LogTitle lipgloss.Style
	LogLine  lipgloss.Style
}

// DefaultStyles returns the default dashboard styles.
func DefaultStyles() Styles {
	return Styles{
		Title:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		Timer:       lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		Parallelism: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),

		WorkerRunning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		WorkerWaiting: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		WorkerStopped: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		WorkerName:    lipgloss.NewStyle().Bold(true),
		WorkerNode:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),

		Footer:    lipgloss.NewStyle().Foreground(lipgloss.Color("245")).MarginTop(1),
		FooterKey: lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true),

		StatusComplete: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		StatusFailed:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		StatusActive:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),

		LogTitle: lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Bold(true),
		LogLine:  lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}

// Icons used in the dashboard.
const (
	IconRunning = "●"
	IconWaiting = "⏳"
	IconStopped = "✗"
)
