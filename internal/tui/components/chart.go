package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/odash/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Sparkline renders a unicode sparkline from values.
func Sparkline(values []float64, color lipgloss.Color) string {
	if len(values) == 0 {
		return ""
	}
	t := theme.Active

	peak := values[0]
	for _, v := range values[1:] {
		if v > peak {
			peak = v
		}
	}
	if peak <= 0 {
		peak = 1
	}

	var buf strings.Builder
	buf.Grow(len(values) * 3)
	for _, v := range values {
		idx := int(v / peak * float64(len(sparkBlocks)-1))
		idx = max(0, min(idx, len(sparkBlocks)-1))
		buf.WriteRune(sparkBlocks[idx])
	}

	return lipgloss.NewStyle().Foreground(color).Background(t.Surface).Render(buf.String())
}

// HBar renders one labeled horizontal bar scaled against peak.
func HBar(label string, value, peak float64, valueLabel string, labelW, barW int, color lipgloss.Color) string {
	t := theme.Active

	n := 0
	if peak > 0 && value > 0 {
		n = int(value / peak * float64(barW))
	}
	n = max(0, min(n, barW))

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	barStyle := lipgloss.NewStyle().Foreground(color).Background(t.Surface)
	restStyle := lipgloss.NewStyle().Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)

	return labelStyle.Render(fmt.Sprintf("%-*s", labelW, truncate(label, labelW))) +
		restStyle.Render(" ") +
		barStyle.Render(strings.Repeat("█", n)) +
		restStyle.Render(strings.Repeat(" ", barW-n)) +
		restStyle.Render(" ") +
		valueStyle.Render(valueLabel)
}
