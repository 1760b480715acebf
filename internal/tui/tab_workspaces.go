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

func (a App) renderWorkspacesTab(cw int) string {
	st := a.state

	if card, ok := a.laneView("Workspace details", st.Details, cw); ok {
		return card
	}

	all := pipeline.FilterDetailed(st.DetailedWorkspaces, a.opts.Filter)
	summary := pipeline.SummarizeDetailed(all)

	var b strings.Builder
	b.WriteString(staleNote(st.Details))

	if summary == nil {
		b.WriteString(components.ContentCard("Workspaces", "No workspace has stats yet", cw))
		return b.String()
	}

	b.WriteString(a.renderCapacityCard(summary, cw))
	b.WriteString("\n")

	halves := components.LayoutRow(cw, 2)
	valid := pipeline.ValidWorkspaces(all)
	for i := 0; i < len(valid); i += 2 {
		cards := []string{a.renderWorkspaceCard(valid[i], halves[0])}
		if i+1 < len(valid) {
			cards = append(cards, a.renderWorkspaceCard(valid[i+1], halves[1]))
		}
		b.WriteString(components.CardRow(cards))
		b.WriteString("\n")
	}

	if pending := len(all) - len(valid); pending > 0 {
		t := theme.Active
		style := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Background)
		b.WriteString(style.Render(fmt.Sprintf(" %d workspace(s) without stats hidden", pending)))
		b.WriteString("\n")
	}

	return b.String()
}

func (a App) renderCapacityCard(summary *model.DetailedSummary, cw int) string {
	innerW := components.CardInnerWidth(cw)
	labelW := min(24, innerW/3)
	barW := max(innerW-labelW-10, 4)

	var rows []string
	for _, ws := range summary.WorkspaceStats {
		ratio := pipeline.UtilizationRatio(ws.Capacity.Scheduled, ws.Capacity.MaxCapacity)
		rows = append(rows, components.UtilizationBar(ws.Name, ratio, ws.Capacity.Utilization, labelW, barW))
	}
	return components.ContentCard("Sending Capacity", strings.Join(rows, "\n"), cw)
}

func (a App) renderWorkspaceCard(w model.DetailedWorkspaceStats, outerW int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	warnStyle := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface)

	s := w.Stats
	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-14s", label)) + valueStyle.Render(value)
	}

	lines := []string{
		row("Emails sent", cli.FormatNumber(s.EmailsSent)),
		row("Leads", cli.FormatNumber(s.TotalLeadsContacted)),
		row("Opened", cli.FormatCountPercent(s.Opened)),
		row("Replies", cli.FormatCountPercent(s.Replies)),
		row("Bounced", cli.FormatCountPercent(s.Bounced)),
		row("Unsubscribed", cli.FormatCountPercent(s.Unsubscribed)),
		row("Interested", cli.FormatCountPercent(s.Interested)),
		row("Scheduled", fmt.Sprintf("%s / %s", cli.FormatNumber(w.TotalScheduled), cli.FormatNumber(w.TotalMaxCapacity))),
	}

	if series := pipeline.MonthlyEmailsSent(w); len(series) > 1 {
		lines = append(lines, row("Monthly sent", components.Sparkline(series, t.Blue)))
	}
	if n := len(w.BlackListedDomains); n > 0 {
		names := make([]string, 0, n)
		for _, d := range w.BlackListedDomains {
			names = append(names, d.Domain)
		}
		lines = append(lines, warnStyle.Render(fmt.Sprintf("Blacklisted: %s", strings.Join(names, ", "))))
	}

	return components.ContentCard(w.WorkspaceName, strings.Join(lines, "\n"), outerW)
}
