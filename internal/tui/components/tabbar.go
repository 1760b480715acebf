package components

import (
	"strings"

	"github.com/theirongolddev/odash/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// Tab represents a single tab in the tab bar.
type Tab struct {
	Name   string
	Key    rune
	KeyPos int // position of the shortcut letter in the name (-1 if not in name)
}

// Tabs defines all available tabs.
var Tabs = []Tab{
	{Name: "Overview", Key: 'o', KeyPos: 0},
	{Name: "Workspaces", Key: 'w', KeyPos: 0},
	{Name: "Reply Rates", Key: 'p', KeyPos: 2},
}

// TabVisualWidth is the rendered width of a tab, including its padding and
// the "[k]" hint appended when the shortcut is not part of the name.
func TabVisualWidth(tab Tab, active bool) int {
	w := lipgloss.Width(tab.Name) + 2
	if !active && tab.KeyPos < 0 {
		w += 3
	}
	return w
}

// RenderTabBar renders the tab bar with the given active index, padded to width.
func RenderTabBar(activeIdx int, width int) string {
	t := theme.Active

	activeStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	inactiveStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Background)
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Background).Bold(true)
	sepStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background)

	var b strings.Builder
	for i, tab := range Tabs {
		switch {
		case i == activeIdx:
			b.WriteString(activeStyle.Render(" " + tab.Name + " "))
		case tab.KeyPos >= 0 && tab.KeyPos < len(tab.Name):
			b.WriteString(inactiveStyle.Render(" " + tab.Name[:tab.KeyPos]))
			b.WriteString(keyStyle.Render(string(tab.Name[tab.KeyPos])))
			b.WriteString(inactiveStyle.Render(tab.Name[tab.KeyPos+1:] + " "))
		default:
			b.WriteString(inactiveStyle.Render(" " + tab.Name + " "))
			b.WriteString(keyStyle.Render("[" + string(tab.Key) + "]"))
		}
		if i < len(Tabs)-1 {
			b.WriteString(sepStyle.Render("│"))
		}
	}

	return lipgloss.NewStyle().Background(t.Background).Width(width).Render(b.String())
}

// TabIdxByKey returns the tab index for a given key press, or -1.
func TabIdxByKey(key rune) int {
	for i, tab := range Tabs {
		if tab.Key == key {
			return i
		}
	}
	return -1
}
