package components

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/theirongolddev/odash/internal/tui/theme"
)

func init() {
	// Force TrueColor output so ANSI codes are generated in tests
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRow(t *testing.T) {
	widths := LayoutRow(10, 3)
	if len(widths) != 3 || widths[0] != 4 || widths[1] != 3 || widths[2] != 3 {
		t.Fatalf("LayoutRow(10, 3) = %v, want [4 3 3]", widths)
	}
	if LayoutRow(10, 0) != nil {
		t.Fatal("LayoutRow with n=0 should be nil")
	}
}

func TestCardRowPadsToTallest(t *testing.T) {
	theme.SetActive("flexoki-dark")

	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "Line 1\nLine 2\nLine 3\nLine 4", 22)

	shortLines := lipgloss.Height(short)
	tallLines := lipgloss.Height(tall)
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	lines := strings.Split(CardRow([]string{tall, short}), "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no background styling", i)
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{{"Workspaces", "3", ""}, {"Campaigns", "12", "4.0 per workspace"}}, 60)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 60 {
			t.Fatalf("line %d width = %d, want 60", i, w)
		}
	}
}

func TestErrorCardShowsMessage(t *testing.T) {
	out := ErrorCard("Details", errors.New("dashapi: request failed"), 50)
	if !strings.Contains(out, "Details unavailable") || !strings.Contains(out, "request failed") {
		t.Fatalf("error card missing text:\n%s", out)
	}
}

func TestTabVisualWidth(t *testing.T) {
	if got := TabVisualWidth(Tabs[0], false); got != len("Overview")+2 {
		t.Fatalf("Overview width = %d", got)
	}
	hidden := Tab{Name: "Other", Key: 'x', KeyPos: -1}
	if got := TabVisualWidth(hidden, false); got != len("Other")+5 {
		t.Fatalf("inactive hidden-key width = %d", got)
	}
	if got := TabVisualWidth(hidden, true); got != len("Other")+2 {
		t.Fatalf("active hidden-key width = %d", got)
	}
}

func TestTabIdxByKey(t *testing.T) {
	if got := TabIdxByKey('p'); got != 2 {
		t.Fatalf("TabIdxByKey('p') = %d, want 2", got)
	}
	if got := TabIdxByKey('z'); got != -1 {
		t.Fatalf("TabIdxByKey('z') = %d, want -1", got)
	}
}

func TestSparklineAndBars(t *testing.T) {
	if Sparkline(nil, theme.Active.Blue) != "" {
		t.Fatal("empty sparkline should render nothing")
	}
	line := UtilizationBar("alpha", 0.25, "25.0", 10, 20)
	if !strings.Contains(line, "25.0%") {
		t.Fatalf("utilization bar missing label: %q", line)
	}
	if w := lipgloss.Width(HBar("gmail", 5, 10, "5.00%", 8, 10, theme.Active.Blue)); w != 8+1+10+1+5 {
		t.Fatalf("HBar width = %d", w)
	}
}

func TestColorForPct(t *testing.T) {
	th := theme.Active
	if ColorForPct(0.2) != th.Green || ColorForPct(0.85) != th.Orange || ColorForPct(1) != th.Red {
		t.Fatal("ColorForPct thresholds wrong")
	}
}
