package cli

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary
	colorGreen  = lipgloss.Color("35")  // Green - supported
	colorYellow = lipgloss.Color("220") // Amber - unknown
	colorRed    = lipgloss.Color("167") // Soft red - incompatible
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	styleSupported    = lipgloss.NewStyle().Foreground(colorGreen)
	styleIncompatible = lipgloss.NewStyle().Foreground(colorRed)
	styleUnknown      = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)
)

const (
	iconSupported    = "✓"
	iconIncompatible = "✗"
	iconUnknown      = "?"
)
