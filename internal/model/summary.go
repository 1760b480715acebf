package model

// BasicSummary is derived from the basic dataset.
type BasicSummary struct {
	TotalWorkspaces int                  `json:"totalWorkspaces"`
	TotalCampaigns  int                  `json:"totalCampaigns"`
	WorkspaceStats  []WorkspaceCampaigns `json:"workspaceStats"`
}

// WorkspaceCampaigns is one workspace row of a BasicSummary.
type WorkspaceCampaigns struct {
	Name          string     `json:"name"`
	CampaignCount int        `json:"campaignCount"`
	Campaigns     []Campaign `json:"campaigns"`
}

// DetailedSummary is derived from the workspaces in the details dataset
// that carry a stats block.
type DetailedSummary struct {
	TotalStats     TotalStats        `json:"totalStats"`
	WorkspaceStats []WorkspaceDetail `json:"workspaceStats"`
}

// TotalStats sums counters across valid workspaces.
// AverageReplyRate is the mean reply percentage with two decimals.
type TotalStats struct {
	EmailsSent          int64  `json:"emailsSent"`
	TotalLeadsContacted int64  `json:"total_leads_contacted"`
	Replies             int64  `json:"replies"`
	Bounced             int64  `json:"bounced"`
	Interested          int64  `json:"interested"`
	AverageReplyRate    string `json:"averageReplyRate"`
}

// WorkspaceDetail is one workspace row of a DetailedSummary.
type WorkspaceDetail struct {
	Name     string         `json:"name"`
	Stats    WorkspaceStats `json:"stats"`
	Capacity Capacity       `json:"capacity"`
}

// Capacity describes how much of a workspace's sending capacity is scheduled.
// Utilization is a percentage with one decimal.
type Capacity struct {
	Scheduled   int64  `json:"scheduled"`
	MaxCapacity int64  `json:"maxCapacity"`
	Utilization string `json:"utilization"`
}

// ProviderSummary ranks one provider combination across all workspaces.
type ProviderSummary struct {
	ProviderCombination string `json:"providerCombination"`
	Workspaces          int    `json:"workspaces"`
	TotalReplies        int64  `json:"totalReplies"`
	TotalSent           int64  `json:"totalSent"`
	ReplyRate           string `json:"replyRate"`
}
