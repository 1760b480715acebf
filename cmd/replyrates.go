package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/odash/internal/cli"
	"github.com/theirongolddev/odash/internal/model"
	"github.com/theirongolddev/odash/internal/pipeline"
)

var replyRatesCmd = &cobra.Command{
	Use:     "reply-rates",
	Aliases: []string{"providers"},
	Short:   "Reply rates by email provider combination",
	RunE:    runReplyRates,
}

var flagByWorkspace bool

func init() {
	replyRatesCmd.Flags().BoolVar(&flagByWorkspace, "by-workspace", false, "Break down each workspace's providers")
	rootCmd.AddCommand(replyRatesCmd)
}

func runReplyRates(_ *cobra.Command, _ []string) error {
	return withSession(func(s *session) error {
		res, err := loadLane(s, model.LaneReplyRates, s.fetchReplyRates)
		if err != nil {
			return err
		}

		stats := pipeline.FilterReplyRates(res.Data, flagWorkspace)
		providers := pipeline.SummarizeReplyRates(stats)

		if flagJSON {
			return printJSON(struct {
				laneResult[model.ReplyRateStats]
				Providers []model.ProviderSummary `json:"providers"`
			}{withData(res, stats), providers})
		}

		if len(providers) == 0 {
			fmt.Println("\n  No reply-rate data found.")
			return nil
		}

		fmt.Println()
		fmt.Println(cli.RenderTitle("REPLY RATES"))
		fmt.Println()

		rows := make([][]string, 0, len(providers))
		for _, p := range providers {
			rows = append(rows, []string{
				p.ProviderCombination,
				cli.FormatNumber(int64(p.Workspaces)),
				cli.FormatNumber(p.TotalSent),
				cli.FormatNumber(p.TotalReplies),
				cli.FormatPercentString(p.ReplyRate),
			})
		}
		fmt.Print(cli.RenderTable(cli.Table{
			Headers: []string{"Providers", "Workspaces", "Sent", "Replies", "Rate"},
			Rows:    rows,
		}))

		if flagByWorkspace {
			for _, entry := range stats.Data {
				if len(entry.Data) == 0 {
					continue
				}
				wsRows := make([][]string, 0, len(entry.Data))
				for _, p := range entry.Data {
					wsRows = append(wsRows, []string{
						p.ProviderCombination,
						cli.FormatNumber(p.TotalSent),
						cli.FormatNumber(p.TotalReplies),
						cli.FormatDecimalPercent(p.ReplyRate),
					})
				}
				fmt.Println()
				fmt.Print(cli.RenderTable(cli.Table{
					Title:   entry.WorkspaceName,
					Headers: []string{"Providers", "Sent", "Replies", "Rate"},
					Rows:    wsRows,
				}))
			}
		}

		fmt.Println(sourceNote(res.FetchedAt, res.Cached))
		fmt.Println()
		return nil
	})
}
