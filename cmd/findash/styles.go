package main

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#4ECDC4"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFE66D"))

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#95E1D3")).
			MarginBottom(1)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	subtleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

func formatSuccess(message string) string {
	return successStyle.Render("✓ " + message)
}

func formatWarning(message string) string {
	return warningStyle.Render("⚠️ " + message)
}

func formatTitle(title string) string {
	return titleStyle.Render("📊 " + title)
}
