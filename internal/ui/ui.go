// Package ui provides terminal output styling for zbackup.
package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

var (
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
)

func init() {
	// Respect NO_COLOR and friends even when lipgloss would otherwise
	// detect a color terminal.
	if termenv.EnvNoColor() {
		lipgloss.SetColorProfile(termenv.Ascii)
	}
}

// RenderPass styles a success marker.
func RenderPass(s string) string { return passStyle.Render(s) }

// RenderWarn styles a warning marker.
func RenderWarn(s string) string { return warnStyle.Render(s) }

// RenderFail styles a failure marker.
func RenderFail(s string) string { return failStyle.Render(s) }

// RenderAccent styles an emphasized fragment.
func RenderAccent(s string) string { return accentStyle.Render(s) }

// Highlight frames a tool invocation so it stands out in the run log.
func Highlight(line string) string {
	return accentStyle.Render(fmt.Sprintf("========== %s ==========", line))
}
