package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/odash/internal/cli"
	"github.com/theirongolddev/odash/internal/model"
	"github.com/theirongolddev/odash/internal/pipeline"
)

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Workspace and campaign counts",
	RunE:  runSummary,
}

var flagShowCampaigns bool

func init() {
	summaryCmd.Flags().BoolVar(&flagShowCampaigns, "campaigns", false, "List campaign names under each workspace")
	rootCmd.AddCommand(summaryCmd)
}

func runSummary(_ *cobra.Command, _ []string) error {
	return withSession(func(s *session) error {
		res, err := loadLane(s, model.LaneBasic, s.fetchBasic)
		if err != nil {
			return err
		}

		workspaces := pipeline.FilterBasic(res.Data, flagWorkspace)
		summary := pipeline.SummarizeBasic(workspaces)

		if flagJSON {
			return printJSON(struct {
				laneResult[[]model.BasicWorkspaceStats]
				Summary *model.BasicSummary `json:"summary"`
			}{withData(res, workspaces), summary})
		}

		if summary == nil {
			fmt.Println("\n  No workspaces found.")
			return nil
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle("WORKSPACES"))
		fmt.Println()

		rows := make([][]string, 0, len(summary.WorkspaceStats)+2)
		for _, ws := range summary.WorkspaceStats {
			rows = append(rows, []string{ws.Name, cli.FormatNumber(int64(ws.CampaignCount))})
			if flagShowCampaigns {
				for _, c := range ws.Campaigns {
					rows = append(rows, []string{"  " + c.Name, ""})
				}
			}
		}
		rows = append(rows, []string{cli.Separator})
		rows = append(rows, []string{
			fmt.Sprintf("Total (%d workspaces)", summary.TotalWorkspaces),
			cli.FormatNumber(int64(summary.TotalCampaigns)),
		})

		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Workspace", "Campaigns"},
			Rows:    rows,
		}))
		fmt.Println(sourceNote(res.FetchedAt, res.Cached))
		fmt.Println()
		return nil
	})
}
