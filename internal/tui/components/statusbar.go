package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/odash/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// StatusInfo is what the status bar reports on its right side.
type StatusInfo struct {
	DataAge     string
	Refreshing  bool
	AutoRefresh bool
	FailedLanes int
	Source      string
}

// RenderStatusBar renders the bottom status bar.
func RenderStatusBar(width int, info StatusInfo) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	warn := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	left := base.Render(" [?]help  [r]efresh  [q]uit")

	var parts []string
	if info.FailedLanes > 0 {
		parts = append(parts, warn.Render(fmt.Sprintf("%d lane(s) failed", info.FailedLanes)))
	}
	switch {
	case info.Refreshing:
		parts = append(parts, accent.Render("refreshing…"))
	case info.DataAge != "":
		parts = append(parts, base.Render("Data: "+info.DataAge))
	}
	if info.AutoRefresh {
		parts = append(parts, accent.Render("auto"))
	}
	if info.Source != "" {
		parts = append(parts, base.Render(info.Source))
	}
	right := strings.Join(parts, base.Render("  ")) + base.Render(" ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}

	return left + base.Render(strings.Repeat(" ", padding)) + right
}
