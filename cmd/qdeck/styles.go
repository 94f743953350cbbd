package main

import "github.com/charmbracelet/lipgloss"

// palette
const (
	blue   = lipgloss.Color("#7aa2f7")
	purple = lipgloss.Color("#bb9af7")
	green  = lipgloss.Color("#9ece6a")
	orange = lipgloss.Color("#ff9e64")
	yellow = lipgloss.Color("#e0af68")
	teal   = lipgloss.Color("#73daca")
	red    = lipgloss.Color("#f7768e")
	gray   = lipgloss.Color("#565f89")
	cyan   = lipgloss.Color("#7dcfff")
	fg     = lipgloss.Color("#c0caf5")
)

func panel(border lipgloss.Color, padding ...int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border).
		Padding(padding...)
}

func text(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	circuitStyle    = panel(blue, 1)
	qasmStyle       = panel(purple, 1)
	controlsStyle   = panel(green, 0, 1)
	menuBorderStyle = panel(orange, 0, 1)

	titleStyle        = text(orange).Bold(true)
	menuSelectedStyle = text(orange).Bold(true)
	menuNormalStyle   = text(fg)
	activeStyle       = text(yellow)
	gateStyle         = text(teal).Bold(true)
	errorStyle        = text(red)
	dimStyle          = text(gray)
	barStyle          = text(cyan)
)
