// Package model defines the dashboard API payloads and the summaries derived from them.
package model

// Lane identifies one of the three independently fetched datasets.
type Lane string

const (
	LaneBasic      Lane = "basic"
	LaneDetails    Lane = "details"
	LaneReplyRates Lane = "reply-rates"
)

// Lanes lists every lane in display order.
var Lanes = []Lane{LaneBasic, LaneDetails, LaneReplyRates}

// Campaign is a single outreach campaign inside a workspace.
type Campaign struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// BasicWorkspaceStats is one entry from the basic dashboard endpoint.
type BasicWorkspaceStats struct {
	WorkspaceName string     `json:"workspaceName"`
	Campaigns     []Campaign `json:"campaigns"`
}

// MonthlyCounters holds the raw per-month counters of a workspace.
type MonthlyCounters struct {
	EmailsSent          int64 `json:"emails_sent"`
	TotalLeadsContacted int64 `json:"total_leads_contacted"`
	Opened              int64 `json:"opened"`
	UniqueReplies       int64 `json:"unique_replies"`
	Bounced             int64 `json:"bounced"`
	Unsubscribed        int64 `json:"unsubscribed"`
	Interested          int64 `json:"interested"`
}

// MonthlyStat is a workspace's counters for one calendar month.
type MonthlyStat struct {
	Year  int             `json:"year"`
	Month int             `json:"month"`
	Stats MonthlyCounters `json:"stats"`
}

// BlacklistedDomain is a sending domain flagged by a blacklist.
type BlacklistedDomain struct {
	ID     int64  `json:"id"`
	Domain string `json:"domain"`
}

// CountPercent pairs an absolute count with its share as a decimal string.
type CountPercent struct {
	Count      int64   `json:"count"`
	Percentage Decimal `json:"percentage"`
}

// WorkspaceStats is the lifetime stats block of a detailed workspace entry.
type WorkspaceStats struct {
	EmailsSent          int64        `json:"emailsSent"`
	TotalLeadsContacted int64        `json:"total_leads_contacted"`
	Opened              CountPercent `json:"opened"`
	Replies             CountPercent `json:"replies"`
	Bounced             CountPercent `json:"bounced"`
	Unsubscribed        CountPercent `json:"unsubscribed"`
	Interested          CountPercent `json:"interested"`
}

// DetailedWorkspaceStats is one entry from the details dashboard endpoint.
// Stats is nil when the server has not produced stats for the workspace yet.
type DetailedWorkspaceStats struct {
	WorkspaceName       string              `json:"workspaceName"`
	TotalScheduled      int64               `json:"totalScheduled"`
	TotalMaxCapacity    int64               `json:"totalMaxCapacity"`
	ReplyRatePercentage float64             `json:"replyRatePercentage"`
	MonthlyStats        []MonthlyStat       `json:"monthlyStats"`
	BlackListedDomains  []BlacklistedDomain `json:"blackListedDomains"`
	Stats               *WorkspaceStats     `json:"stats"`
}

// ProviderReplyRate is the reply rate of one sender/recipient provider pairing.
type ProviderReplyRate struct {
	ProviderCombination string  `json:"providerCombination"`
	TotalReplies        int64   `json:"totalReplies"`
	TotalSent           int64   `json:"totalSent"`
	ReplyRate           Decimal `json:"replyRate"`
}

// ProviderReplyRateEntry groups provider reply rates by workspace.
type ProviderReplyRateEntry struct {
	WorkspaceName string              `json:"workspaceName"`
	Data          []ProviderReplyRate `json:"data"`
}

// ReplyRateStats wraps the reply-rate dataset the way the dashboard holds it.
type ReplyRateStats struct {
	Data []ProviderReplyRateEntry `json:"data"`
}
