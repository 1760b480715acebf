package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/odash/internal/cli"
	"github.com/theirongolddev/odash/internal/model"
	"github.com/theirongolddev/odash/internal/pipeline"
)

var detailsCmd = &cobra.Command{
	Use:     "details",
	Aliases: []string{"stats"},
	Short:   "Sending, reply and capacity stats per workspace",
	RunE:    runDetails,
}

var flagShowMonthly bool

func init() {
	detailsCmd.Flags().BoolVar(&flagShowMonthly, "monthly", false, "Show per-month sending history")
	rootCmd.AddCommand(detailsCmd)
}

func runDetails(_ *cobra.Command, _ []string) error {
	return withSession(func(s *session) error {
		res, err := loadLane(s, model.LaneDetails, s.fetchDetails)
		if err != nil {
			return err
		}

		workspaces := pipeline.FilterDetailed(res.Data, flagWorkspace)
		summary := pipeline.SummarizeDetailed(workspaces)

		if flagJSON {
			return printJSON(struct {
				laneResult[[]model.DetailedWorkspaceStats]
				Summary *model.DetailedSummary `json:"summary"`
			}{withData(res, workspaces), summary})
		}

		if summary == nil {
			fmt.Println("\n  No workspaces with stats found.")
			return nil
		}

		t := summary.TotalStats
		fmt.Println()
		fmt.Println(cli.RenderTitle("SENDING STATS"))
		fmt.Println()
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Metric", "Value"},
			Rows: [][]string{
				{"Emails Sent", cli.FormatNumber(t.EmailsSent)},
				{"Leads Contacted", cli.FormatNumber(t.TotalLeadsContacted)},
				{cli.Separator},
				{"Replies", cli.FormatNumber(t.Replies)},
				{"Interested", cli.FormatNumber(t.Interested)},
				{"Bounced", cli.FormatNumber(t.Bounced)},
				{cli.Separator},
				{"Avg Reply Rate", cli.FormatPercentString(t.AverageReplyRate)},
			},
		}))
		fmt.Println()

		rows := make([][]string, 0, len(summary.WorkspaceStats))
		for _, ws := range summary.WorkspaceStats {
			rows = append(rows, []string{
				ws.Name,
				cli.FormatNumber(ws.Stats.EmailsSent),
				cli.FormatCountPercent(ws.Stats.Replies),
				cli.FormatCountPercent(ws.Stats.Interested),
				cli.FormatCountPercent(ws.Stats.Bounced),
				cli.FormatNumber(ws.Capacity.Scheduled) + " / " + cli.FormatNumber(ws.Capacity.MaxCapacity),
				cli.FormatPercentString(ws.Capacity.Utilization) + " " +
					cli.RenderUtilizationBar(pipeline.UtilizationRatio(ws.Capacity.Scheduled, ws.Capacity.MaxCapacity), 10),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   "Workspaces",
			Headers: []string{"Workspace", "Sent", "Replies", "Interested", "Bounced", "Scheduled", "Utilization"},
			Rows:    rows,
		}))

		if flagShowMonthly {
			printMonthly(pipeline.ValidWorkspaces(workspaces))
		}

		fmt.Println(sourceNote(res.FetchedAt, res.Cached))
		fmt.Println()
		return nil
	})
}

func printMonthly(workspaces []model.DetailedWorkspaceStats) {
	for _, ws := range workspaces {
		if len(ws.MonthlyStats) == 0 {
			continue
		}
		rows := make([][]string, 0, len(ws.MonthlyStats))
		for _, m := range ws.MonthlyStats {
			rows = append(rows, []string{
				cli.FormatMonth(m.Year, m.Month),
				cli.FormatNumber(m.Stats.EmailsSent),
				cli.FormatNumber(m.Stats.UniqueReplies),
				cli.FormatNumber(m.Stats.Interested),
				cli.FormatNumber(m.Stats.Bounced),
			})
		}
		fmt.Println()
		title := ws.WorkspaceName + "  " + cli.RenderSparkline(pipeline.MonthlyEmailsSent(ws))
		if len(ws.BlackListedDomains) > 0 {
			domains := make([]string, 0, len(ws.BlackListedDomains))
			for _, d := range ws.BlackListedDomains {
				domains = append(domains, d.Domain)
			}
			title += "  " + cli.RenderWarning("blacklisted: "+strings.Join(domains, ", "))
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Title:   title,
			Headers: []string{"Month", "Sent", "Replies", "Interested", "Bounced"},
			Rows:    rows,
		}))
	}
}
