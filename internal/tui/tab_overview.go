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

func (a App) renderOverviewTab(cw int) string {
	t := theme.Active
	st := a.state

	if card, ok := a.laneView("Workspaces", st.Basic, cw); ok {
		return card + "\n" + a.renderLaneHealth(cw)
	}

	var b strings.Builder
	b.WriteString(staleNote(st.Basic))

	workspaces := pipeline.FilterBasic(st.Workspaces, a.opts.Filter)
	basic := pipeline.SummarizeBasic(workspaces)
	if basic == nil {
		b.WriteString(components.ContentCard("Workspaces", "No workspaces match "+a.opts.Filter, cw))
		return b.String()
	}

	perWorkspace := ""
	if basic.TotalWorkspaces > 0 {
		perWorkspace = fmt.Sprintf("%.1f per workspace", float64(basic.TotalCampaigns)/float64(basic.TotalWorkspaces))
	}

	metrics := []components.Metric{
		{Label: "Workspaces", Value: cli.FormatNumber(int64(basic.TotalWorkspaces))},
		{Label: "Campaigns", Value: cli.FormatNumber(int64(basic.TotalCampaigns)), Delta: perWorkspace},
	}

	// Totals come from the details lane, which may lag behind or fail.
	if d := pipeline.SummarizeDetailed(pipeline.FilterDetailed(st.DetailedWorkspaces, a.opts.Filter)); d != nil {
		metrics = append(metrics,
			components.Metric{Label: "Emails Sent", Value: cli.FormatCompact(d.TotalStats.EmailsSent),
				Delta: cli.FormatNumber(d.TotalStats.TotalLeadsContacted) + " leads"},
			components.Metric{Label: "Avg Reply Rate", Value: cli.FormatPercentString(d.TotalStats.AverageReplyRate),
				Delta: cli.FormatNumber(d.TotalStats.Replies) + " replies"},
			components.Metric{Label: "Interested", Value: cli.FormatNumber(d.TotalStats.Interested),
				Delta: cli.FormatNumber(d.TotalStats.Bounced) + " bounced"},
		)
	} else {
		metrics = append(metrics, components.Metric{Label: "Avg Reply Rate", Value: "-", Delta: "details pending"})
	}
	b.WriteString(components.MetricCardRow(metrics, cw))
	b.WriteString("\n")

	// Campaigns per workspace
	peak := 0
	for _, ws := range basic.WorkspaceStats {
		peak = max(peak, ws.CampaignCount)
	}
	innerW := components.CardInnerWidth(cw)
	labelW := min(24, innerW/3)
	barW := max(innerW-labelW-8, 4)

	var rows strings.Builder
	for i, ws := range basic.WorkspaceStats {
		if i > 0 {
			rows.WriteString("\n")
		}
		rows.WriteString(components.HBar(ws.Name, float64(ws.CampaignCount), float64(peak),
			fmt.Sprintf("%d", ws.CampaignCount), labelW, barW, t.Blue))
	}
	b.WriteString(components.ContentCard("Campaigns per Workspace", rows.String(), cw))
	b.WriteString("\n")
	b.WriteString(a.renderLaneHealth(cw))

	return b.String()
}

// renderLaneHealth is a compact card listing each lane's state.
func (a App) renderLaneHealth(cw int) string {
	t := theme.Active
	okStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	busyStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	errStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	mutedStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var lines []string
	for _, l := range model.Lanes {
		ls := a.state.Lane(l)
		name := mutedStyle.Render(fmt.Sprintf("%-12s", l))
		var state string
		switch {
		case ls.Loading:
			state = busyStyle.Render("loading")
		case ls.Err != nil:
			state = errStyle.Render("failed: " + ls.Err.Error())
		default:
			state = okStyle.Render(fmt.Sprintf("%d items", ls.Items))
		}
		lines = append(lines, name+mutedStyle.Render(" ")+state)
	}
	return components.ContentCard("Lanes", strings.Join(lines, "\n"), cw)
}
