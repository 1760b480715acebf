package pipeline

import (
	"testing"

	"github.com/theirongolddev/odash/internal/model"
)

func detailed(name string, replyPct model.Decimal, scheduled, maxCap int64) model.DetailedWorkspaceStats {
	return model.DetailedWorkspaceStats{
		WorkspaceName:    name,
		TotalScheduled:   scheduled,
		TotalMaxCapacity: maxCap,
		Stats: &model.WorkspaceStats{
			EmailsSent:          100,
			TotalLeadsContacted: 40,
			Replies:             model.CountPercent{Count: 5, Percentage: replyPct},
			Bounced:             model.CountPercent{Count: 2, Percentage: "2.00"},
			Interested:          model.CountPercent{Count: 1, Percentage: "1.00"},
		},
	}
}

func TestSummarizeBasic_Empty(t *testing.T) {
	if got := SummarizeBasic(nil); got != nil {
		t.Fatalf("SummarizeBasic(nil) = %+v, want nil", got)
	}
	if got := SummarizeBasic([]model.BasicWorkspaceStats{}); got != nil {
		t.Fatalf("SummarizeBasic(empty) = %+v, want nil", got)
	}
}

func TestSummarizeBasic_CountsCampaigns(t *testing.T) {
	ws := []model.BasicWorkspaceStats{
		{WorkspaceName: "alpha", Campaigns: []model.Campaign{{ID: 1, Name: "a1"}, {ID: 2, Name: "a2"}}},
		{WorkspaceName: "beta"}, // missing campaigns count as zero
		{WorkspaceName: "gamma", Campaigns: []model.Campaign{{ID: 3, Name: "g1"}}},
	}

	got := SummarizeBasic(ws)
	if got == nil {
		t.Fatal("SummarizeBasic returned nil for non-empty input")
	}
	if got.TotalWorkspaces != 3 {
		t.Errorf("TotalWorkspaces = %d, want 3", got.TotalWorkspaces)
	}
	if got.TotalCampaigns != 3 {
		t.Errorf("TotalCampaigns = %d, want 3", got.TotalCampaigns)
	}
	if len(got.WorkspaceStats) != 3 {
		t.Fatalf("len(WorkspaceStats) = %d, want 3", len(got.WorkspaceStats))
	}

	beta := got.WorkspaceStats[1]
	if beta.Name != "beta" || beta.CampaignCount != 0 {
		t.Errorf("beta row = %+v, want name beta with 0 campaigns", beta)
	}
	if beta.Campaigns == nil {
		t.Error("beta Campaigns is nil, want empty slice")
	}

	sum := 0
	for _, row := range got.WorkspaceStats {
		sum += row.CampaignCount
	}
	if sum != got.TotalCampaigns {
		t.Errorf("sum of CampaignCount = %d, TotalCampaigns = %d", sum, got.TotalCampaigns)
	}
}

func TestSummarizeDetailed_EmptyAndNoStats(t *testing.T) {
	if got := SummarizeDetailed(nil); got != nil {
		t.Fatalf("SummarizeDetailed(nil) = %+v, want nil", got)
	}

	noStats := []model.DetailedWorkspaceStats{
		{WorkspaceName: "pending", TotalScheduled: 10, TotalMaxCapacity: 20},
		{},
	}
	if got := SummarizeDetailed(noStats); got != nil {
		t.Fatalf("SummarizeDetailed(no stats) = %+v, want nil", got)
	}
}

func TestSummarizeDetailed_AveragesValidOnly(t *testing.T) {
	ws := []model.DetailedWorkspaceStats{
		detailed("alpha", "10.00", 50, 200),
		{WorkspaceName: "pending"},
		detailed("beta", "20.00", 10, 40),
	}

	got := SummarizeDetailed(ws)
	if got == nil {
		t.Fatal("SummarizeDetailed returned nil")
	}

	ts := got.TotalStats
	if ts.AverageReplyRate != "15.00" {
		t.Errorf("AverageReplyRate = %q, want 15.00", ts.AverageReplyRate)
	}
	if ts.EmailsSent != 200 {
		t.Errorf("EmailsSent = %d, want 200", ts.EmailsSent)
	}
	if ts.TotalLeadsContacted != 80 {
		t.Errorf("TotalLeadsContacted = %d, want 80", ts.TotalLeadsContacted)
	}
	if ts.Replies != 10 || ts.Bounced != 4 || ts.Interested != 2 {
		t.Errorf("counts = replies %d bounced %d interested %d, want 10/4/2", ts.Replies, ts.Bounced, ts.Interested)
	}

	if len(got.WorkspaceStats) != 2 {
		t.Fatalf("len(WorkspaceStats) = %d, want 2 (pending excluded)", len(got.WorkspaceStats))
	}
	alpha := got.WorkspaceStats[0]
	if alpha.Name != "alpha" {
		t.Errorf("first row = %q, want alpha", alpha.Name)
	}
	if alpha.Capacity.Utilization != "25.0" {
		t.Errorf("alpha utilization = %q, want 25.0", alpha.Capacity.Utilization)
	}
	if alpha.Capacity.Scheduled != 50 || alpha.Capacity.MaxCapacity != 200 {
		t.Errorf("alpha capacity = %+v, want 50/200", alpha.Capacity)
	}
}

func TestSummarizeDetailed_RoundsAverage(t *testing.T) {
	ws := []model.DetailedWorkspaceStats{
		detailed("a", "10.10", 0, 1),
		detailed("b", "10.20", 0, 1),
		detailed("c", "10.40", 0, 1),
	}
	got := SummarizeDetailed(ws)
	if got.TotalStats.AverageReplyRate != "10.23" {
		t.Fatalf("AverageReplyRate = %q, want 10.23", got.TotalStats.AverageReplyRate)
	}
}

func TestUtilization(t *testing.T) {
	cases := []struct {
		scheduled, max int64
		want           string
	}{
		{50, 200, "25.0"},
		{1, 3, "33.3"},
		{300, 200, "150.0"},
		{0, 0, "0.0"},
		{5, 0, "0.0"},
	}
	for _, c := range cases {
		if got := Utilization(c.scheduled, c.max); got != c.want {
			t.Errorf("Utilization(%d, %d) = %q, want %q", c.scheduled, c.max, got, c.want)
		}
	}
}

func TestUtilizationRatioClamps(t *testing.T) {
	if got := UtilizationRatio(300, 200); got != 1 {
		t.Errorf("UtilizationRatio(300, 200) = %v, want 1", got)
	}
	if got := UtilizationRatio(50, 200); got != 0.25 {
		t.Errorf("UtilizationRatio(50, 200) = %v, want 0.25", got)
	}
	if got := UtilizationRatio(5, 0); got != 0 {
		t.Errorf("UtilizationRatio(5, 0) = %v, want 0", got)
	}
}

func TestSummarizeReplyRates_MergesAndRanks(t *testing.T) {
	stats := model.ReplyRateStats{Data: []model.ProviderReplyRateEntry{
		{WorkspaceName: "alpha", Data: []model.ProviderReplyRate{
			{ProviderCombination: "gmail-gmail", TotalReplies: 5, TotalSent: 100},
			{ProviderCombination: "outlook-gmail", TotalReplies: 1, TotalSent: 100},
		}},
		{WorkspaceName: "beta", Data: []model.ProviderReplyRate{
			{ProviderCombination: "gmail-gmail", TotalReplies: 15, TotalSent: 100},
			{ProviderCombination: "smtp-other", TotalReplies: 0, TotalSent: 0},
		}},
	}}

	got := SummarizeReplyRates(stats)
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].ProviderCombination != "gmail-gmail" {
		t.Fatalf("top provider = %q, want gmail-gmail", got[0].ProviderCombination)
	}
	if got[0].ReplyRate != "10.00" || got[0].Workspaces != 2 || got[0].TotalSent != 200 {
		t.Errorf("gmail-gmail = %+v, want 10.00 over 2 workspaces and 200 sent", got[0])
	}
	if got[2].ProviderCombination != "smtp-other" || got[2].ReplyRate != "0.00" {
		t.Errorf("last = %+v, want smtp-other at 0.00", got[2])
	}
}

func TestMonthlyEmailsSent_Chronological(t *testing.T) {
	w := model.DetailedWorkspaceStats{MonthlyStats: []model.MonthlyStat{
		{Year: 2025, Month: 2, Stats: model.MonthlyCounters{EmailsSent: 30}},
		{Year: 2024, Month: 12, Stats: model.MonthlyCounters{EmailsSent: 10}},
		{Year: 2025, Month: 1, Stats: model.MonthlyCounters{EmailsSent: 20}},
	}}

	got := MonthlyEmailsSent(w)
	want := []float64{10, 20, 30}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("series[%d] = %v, want %v", i, got[i], want[i])
		}
	}
	if w.MonthlyStats[0].Month != 2 {
		t.Error("MonthlyEmailsSent reordered its input")
	}
}

func TestFilterBasic(t *testing.T) {
	ws := []model.BasicWorkspaceStats{{WorkspaceName: "Acme Sales"}, {WorkspaceName: "Globex"}}
	if got := FilterBasic(ws, ""); len(got) != 2 {
		t.Errorf("empty filter kept %d, want 2", len(got))
	}
	got := FilterBasic(ws, "acme")
	if len(got) != 1 || got[0].WorkspaceName != "Acme Sales" {
		t.Errorf("filter acme = %+v, want only Acme Sales", got)
	}
}
