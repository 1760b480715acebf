package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/odash/internal/cli"
	"github.com/theirongolddev/odash/internal/model"
	"github.com/theirongolddev/odash/internal/pipeline"
	"github.com/theirongolddev/odash/internal/tui/components"
	"github.com/theirongolddev/odash/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

func (a App) renderReplyRatesTab(cw int) string {
	t := theme.Active
	st := a.state

	if card, ok := a.laneView("Reply rates", st.ReplyRate, cw); ok {
		return card
	}

	stats := pipeline.FilterReplyRates(st.ReplyRates, a.opts.Filter)
	providers := pipeline.SummarizeReplyRates(stats)

	var b strings.Builder
	b.WriteString(staleNote(st.ReplyRate))

	innerW := components.CardInnerWidth(cw)
	labelW := min(28, innerW/3)
	barW := max(innerW-labelW-30, 4)

	// providers is ranked, so the first rate is the peak
	peak := 0.0
	if len(providers) > 0 {
		peak = model.Decimal(providers[0].ReplyRate).Float()
	}

	var rows []string
	for _, p := range providers {
		rate := model.Decimal(p.ReplyRate).Float()
		detail := fmt.Sprintf("%6s%%  %s/%s", p.ReplyRate, cli.FormatNumber(p.TotalReplies), cli.FormatNumber(p.TotalSent))
		rows = append(rows, components.HBar(p.ProviderCombination, rate, peak, detail, labelW, barW, t.Accent))
	}
	if len(rows) == 0 {
		rows = append(rows, "No provider data")
	}
	b.WriteString(components.ContentCard("Providers by Reply Rate", strings.Join(rows, "\n"), cw))
	b.WriteString("\n")

	headStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	cellStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var ws strings.Builder
	for i, entry := range stats.Data {
		if i > 0 {
			ws.WriteString("\n")
		}
		ws.WriteString(headStyle.Render(entry.WorkspaceName))
		for _, r := range entry.Data {
			ws.WriteString("\n")
			ws.WriteString(mutedStyle.Render(fmt.Sprintf("  %-*s", labelW, r.ProviderCombination)))
			ws.WriteString(cellStyle.Render(fmt.Sprintf("%8s  %s/%s",
				cli.FormatDecimalPercent(r.ReplyRate), cli.FormatNumber(r.TotalReplies), cli.FormatNumber(r.TotalSent))))
		}
	}
	if ws.Len() > 0 {
		b.WriteString(components.ContentCard("By Workspace", ws.String(), cw))
		b.WriteString("\n")
	}

	return b.String()
}
