// Package pipeline derives dashboard summaries from fetched workspace data.
// Everything here is a pure function of its inputs.
package pipeline

import (
	"sort"
	"strings"

	"github.com/theirongolddev/odash/internal/model"
)

// SummarizeBasic computes the basic summary. Returns nil for an empty dataset.
func SummarizeBasic(workspaces []model.BasicWorkspaceStats) *model.BasicSummary {
	if len(workspaces) == 0 {
		return nil
	}

	summary := &model.BasicSummary{
		TotalWorkspaces: len(workspaces),
		WorkspaceStats:  make([]model.WorkspaceCampaigns, 0, len(workspaces)),
	}

	for _, w := range workspaces {
		campaigns := w.Campaigns
		if campaigns == nil {
			campaigns = []model.Campaign{}
		}
		summary.TotalCampaigns += len(campaigns)
		summary.WorkspaceStats = append(summary.WorkspaceStats, model.WorkspaceCampaigns{
			Name:          w.WorkspaceName,
			CampaignCount: len(campaigns),
			Campaigns:     campaigns,
		})
	}

	return summary
}

// ValidWorkspaces returns the detailed entries that carry a stats block.
func ValidWorkspaces(workspaces []model.DetailedWorkspaceStats) []model.DetailedWorkspaceStats {
	valid := make([]model.DetailedWorkspaceStats, 0, len(workspaces))
	for _, w := range workspaces {
		if w.Stats != nil {
			valid = append(valid, w)
		}
	}
	return valid
}

// SummarizeDetailed aggregates the valid workspaces of the details dataset.
// Returns nil when the dataset is empty or no workspace has stats.
func SummarizeDetailed(workspaces []model.DetailedWorkspaceStats) *model.DetailedSummary {
	if len(workspaces) == 0 {
		return nil
	}

	valid := ValidWorkspaces(workspaces)
	if len(valid) == 0 {
		return nil
	}

	var totals model.TotalStats
	var replyRateSum float64
	details := make([]model.WorkspaceDetail, 0, len(valid))

	for _, w := range valid {
		s := w.Stats
		totals.EmailsSent += s.EmailsSent
		totals.TotalLeadsContacted += s.TotalLeadsContacted
		totals.Replies += s.Replies.Count
		totals.Bounced += s.Bounced.Count
		totals.Interested += s.Interested.Count
		replyRateSum += s.Replies.Percentage.Float()

		details = append(details, model.WorkspaceDetail{
			Name:  w.WorkspaceName,
			Stats: *s,
			Capacity: model.Capacity{
				Scheduled:   w.TotalScheduled,
				MaxCapacity: w.TotalMaxCapacity,
				Utilization: Utilization(w.TotalScheduled, w.TotalMaxCapacity),
			},
		})
	}

	totals.AverageReplyRate = model.FormatFixed(replyRateSum/float64(len(valid)), 2)

	return &model.DetailedSummary{
		TotalStats:     totals,
		WorkspaceStats: details,
	}
}

// Utilization returns scheduled as a percentage of maxCapacity with one decimal.
// A workspace without capacity reports "0.0".
func Utilization(scheduled, maxCapacity int64) string {
	if maxCapacity <= 0 {
		return model.FormatFixed(0, 1)
	}
	return model.FormatFixed(float64(scheduled)/float64(maxCapacity)*100, 1)
}

// UtilizationRatio is Utilization as a 0-1 fraction for progress bars, clamped to [0, 1].
func UtilizationRatio(scheduled, maxCapacity int64) float64 {
	if maxCapacity <= 0 {
		return 0
	}
	r := float64(scheduled) / float64(maxCapacity)
	if r < 0 {
		return 0
	}
	if r > 1 {
		return 1
	}
	return r
}

// SummarizeReplyRates merges provider combinations across workspaces and
// ranks them by overall reply rate, highest first. Ties keep name order.
func SummarizeReplyRates(stats model.ReplyRateStats) []model.ProviderSummary {
	byProvider := make(map[string]*model.ProviderSummary)
	for _, entry := range stats.Data {
		for _, p := range entry.Data {
			ps, ok := byProvider[p.ProviderCombination]
			if !ok {
				ps = &model.ProviderSummary{ProviderCombination: p.ProviderCombination}
				byProvider[p.ProviderCombination] = ps
			}
			ps.Workspaces++
			ps.TotalReplies += p.TotalReplies
			ps.TotalSent += p.TotalSent
		}
	}

	rates := make(map[string]float64, len(byProvider))
	out := make([]model.ProviderSummary, 0, len(byProvider))
	for name, ps := range byProvider {
		var rate float64
		if ps.TotalSent > 0 {
			rate = float64(ps.TotalReplies) / float64(ps.TotalSent) * 100
		}
		rates[name] = rate
		ps.ReplyRate = model.FormatFixed(rate, 2)
		out = append(out, *ps)
	}

	sort.Slice(out, func(i, j int) bool {
		ri, rj := rates[out[i].ProviderCombination], rates[out[j].ProviderCombination]
		if ri != rj {
			return ri > rj
		}
		return out[i].ProviderCombination < out[j].ProviderCombination
	})

	return out
}

// MonthlyEmailsSent returns a workspace's emails-sent series, oldest month first.
func MonthlyEmailsSent(w model.DetailedWorkspaceStats) []float64 {
	months := make([]model.MonthlyStat, len(w.MonthlyStats))
	copy(months, w.MonthlyStats)
	sort.SliceStable(months, func(i, j int) bool {
		if months[i].Year != months[j].Year {
			return months[i].Year < months[j].Year
		}
		return months[i].Month < months[j].Month
	})

	series := make([]float64, len(months))
	for i, m := range months {
		series[i] = float64(m.Stats.EmailsSent)
	}
	return series
}

// FilterBasic keeps workspaces whose name contains substr (case-insensitive).
func FilterBasic(workspaces []model.BasicWorkspaceStats, substr string) []model.BasicWorkspaceStats {
	return filterByName(workspaces, substr, func(w model.BasicWorkspaceStats) string { return w.WorkspaceName })
}

// FilterDetailed keeps workspaces whose name contains substr (case-insensitive).
func FilterDetailed(workspaces []model.DetailedWorkspaceStats, substr string) []model.DetailedWorkspaceStats {
	return filterByName(workspaces, substr, func(w model.DetailedWorkspaceStats) string { return w.WorkspaceName })
}

// FilterReplyRates keeps reply-rate entries whose workspace name contains substr.
func FilterReplyRates(stats model.ReplyRateStats, substr string) model.ReplyRateStats {
	return model.ReplyRateStats{
		Data: filterByName(stats.Data, substr, func(e model.ProviderReplyRateEntry) string { return e.WorkspaceName }),
	}
}

func filterByName[T any](items []T, substr string, name func(T) string) []T {
	if substr == "" {
		return items
	}
	needle := strings.ToLower(substr)
	var out []T
	for _, it := range items {
		if strings.Contains(strings.ToLower(name(it)), needle) {
			out = append(out, it)
		}
	}
	return out
}
