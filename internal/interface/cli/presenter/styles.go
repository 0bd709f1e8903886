// Package presenter renders dashboard data for the terminal.
package presenter

import "github.com/charmbracelet/lipgloss"

// Brand colours of the Recyclify web client.
var (
	Green  = lipgloss.Color("#2E7D32")
	Lime   = lipgloss.Color("#8BC34A")
	Amber  = lipgloss.Color("#FFC107")
	Red    = lipgloss.Color("#E53935")
	Grey   = lipgloss.Color("#8A8F98")
	Border = lipgloss.Color("#DCE0E5")
)

// Styles are the text styles every view uses.
type Styles struct {
	Title   lipgloss.Style
	Heading lipgloss.Style
	Bold    lipgloss.Style
	Body    lipgloss.Style
	Muted   lipgloss.Style
	Good    lipgloss.Style
	Warn    lipgloss.Style
	Bad     lipgloss.Style
	Card    lipgloss.Style
}

// DefaultStyles returns the coloured styles.
func DefaultStyles() Styles {
	return Styles{
		Title:   lipgloss.NewStyle().Bold(true).Foreground(Green).MarginBottom(1),
		Heading: lipgloss.NewStyle().Bold(true).Foreground(Lime),
		Bold:    lipgloss.NewStyle().Bold(true),
		Body:    lipgloss.NewStyle(),
		Muted:   lipgloss.NewStyle().Foreground(Grey),
		Good:    lipgloss.NewStyle().Foreground(Green),
		Warn:    lipgloss.NewStyle().Foreground(Amber),
		Bad:     lipgloss.NewStyle().Foreground(Red).Bold(true),
		Card:    lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Border).Padding(0, 1),
	}
}

// PlainStyles renders without colour or borders, for pipes and tests.
func PlainStyles() Styles {
	plain := lipgloss.NewStyle()
	return Styles{
		Title: plain, Heading: plain, Bold: plain, Body: plain,
		Muted: plain, Good: plain, Warn: plain, Bad: plain, Card: plain,
	}
}
