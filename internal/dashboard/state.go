package dashboard

import (
	"time"

	"github.com/theirongolddev/odash/internal/model"
	"github.com/theirongolddev/odash/internal/pipeline"
)

// LaneState is the status of one lane at a point in time.
type LaneState struct {
	Loading   bool
	Err       error
	Items     int
	FetchedAt time.Time // zero until the first successful fetch
	Skeleton  bool
}

// State is a consistent copy of the whole store.
type State struct {
	Workspaces         []model.BasicWorkspaceStats
	DetailedWorkspaces []model.DetailedWorkspaceStats
	ReplyRates         model.ReplyRateStats

	Basic     LaneState
	Details   LaneState
	ReplyRate LaneState

	BasicStats    *model.BasicSummary
	DetailedStats *model.DetailedSummary
}

// Lane returns the status of the given lane.
func (st State) Lane(l model.Lane) LaneState {
	switch l {
	case model.LaneBasic:
		return st.Basic
	case model.LaneDetails:
		return st.Details
	default:
		return st.ReplyRate
	}
}

// Workspaces returns the current basic dataset.
func (s *Store) Workspaces() []model.BasicWorkspaceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.BasicWorkspaceStats{}, s.workspaces...)
}

// DetailedWorkspaces returns the current details dataset.
func (s *Store) DetailedWorkspaces() []model.DetailedWorkspaceStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.DetailedWorkspaceStats{}, s.detailed...)
}

// ReplyRateStats returns the current reply-rate dataset.
func (s *Store) ReplyRateStats() model.ReplyRateStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyReplyRates(s.replyRates)
}

func (s *Store) BasicLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.basicLoading
}

func (s *Store) DetailsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detailsLoading
}

func (s *Store) ReplyRateLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.replyRateLoading
}

// Error returns the last basic-lane error, nil after a successful fetch.
func (s *Store) Error() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.basicErr
}

// DetailsError returns the last details-lane error.
func (s *Store) DetailsError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detailsErr
}

// ReplyRateError returns the last reply-rate error.
func (s *Store) ReplyRateError() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.replyRateErr
}

// BasicStats derives the basic summary from the current dataset.
// Nil while the dataset is empty.
func (s *Store) BasicStats() *model.BasicSummary {
	return pipeline.SummarizeBasic(s.Workspaces())
}

// DetailedStats derives the detailed summary from the current dataset.
// Nil while no workspace carries stats.
func (s *Store) DetailedStats() *model.DetailedSummary {
	return pipeline.SummarizeDetailed(s.DetailedWorkspaces())
}

// ShowBasicSkeleton reports whether the basic view should show a placeholder.
func (s *Store) ShowBasicSkeleton() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.basicLoading || len(s.workspaces) == 0
}

// ShowDetailsSkeleton reports whether the details view should show a placeholder.
func (s *Store) ShowDetailsSkeleton() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detailsLoading || len(s.detailed) == 0
}

// ShowReplyRateSkeleton reports whether the reply-rate view should show a placeholder.
func (s *Store) ShowReplyRateSkeleton() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.replyRateLoading || len(s.replyRates.Data) == 0
}

// Snapshot copies every lane under one lock and derives both summaries.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	st := State{
		Workspaces:         append([]model.BasicWorkspaceStats{}, s.workspaces...),
		DetailedWorkspaces: append([]model.DetailedWorkspaceStats{}, s.detailed...),
		ReplyRates:         copyReplyRates(s.replyRates),
		Basic: LaneState{
			Loading:   s.basicLoading,
			Err:       s.basicErr,
			Items:     len(s.workspaces),
			FetchedAt: s.basicFetchedAt,
			Skeleton:  s.basicLoading || len(s.workspaces) == 0,
		},
		Details: LaneState{
			Loading:   s.detailsLoading,
			Err:       s.detailsErr,
			Items:     len(s.detailed),
			FetchedAt: s.detailsFetchedAt,
			Skeleton:  s.detailsLoading || len(s.detailed) == 0,
		},
		ReplyRate: LaneState{
			Loading:   s.replyRateLoading,
			Err:       s.replyRateErr,
			Items:     len(s.replyRates.Data),
			FetchedAt: s.replyRateFetchedAt,
			Skeleton:  s.replyRateLoading || len(s.replyRates.Data) == 0,
		},
	}
	s.mu.RUnlock()

	st.BasicStats = pipeline.SummarizeBasic(st.Workspaces)
	st.DetailedStats = pipeline.SummarizeDetailed(st.DetailedWorkspaces)
	return st
}

func copyReplyRates(r model.ReplyRateStats) model.ReplyRateStats {
	if r.Data == nil {
		return model.ReplyRateStats{}
	}
	return model.ReplyRateStats{Data: append([]model.ProviderReplyRateEntry{}, r.Data...)}
}
