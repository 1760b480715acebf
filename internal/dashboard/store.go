// Package dashboard holds the dashboard's fetched datasets, their loading and
// error state, and the summaries derived from them.
//
// A Store is an explicit instance owned by one view. Each of its three lanes
// (basic, details, reply-rates) is fetched independently and only ever
// touches its own value, loading flag and error slot. Observers learn about
// mutations through Subscribe.
package dashboard

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/theirongolddev/odash/internal/model"
)

// Fetcher retrieves the three datasets. dashapi.Client implements it.
type Fetcher interface {
	FetchBasic(ctx context.Context) ([]model.BasicWorkspaceStats, error)
	FetchDetails(ctx context.Context) ([]model.DetailedWorkspaceStats, error)
	FetchReplyRates(ctx context.Context) ([]model.ProviderReplyRateEntry, error)
}

type endpointer interface {
	Endpoint(lane model.Lane) string
}

// Recorder receives the outcome of every fetch. store.Cache implements it.
type Recorder interface {
	SaveSnapshot(lane model.Lane, payload any, at time.Time) error
	RecordFetch(lane model.Lane, at time.Time, dur time.Duration, fetchErr error) error
}

// Store is the observable dashboard state.
type Store struct {
	fetcher  Fetcher
	log      *zap.Logger
	recorder Recorder
	now      func() time.Time

	mu sync.RWMutex

	workspaces     []model.BasicWorkspaceStats
	basicLoading   bool
	basicErr       error
	basicFetchedAt time.Time

	detailed         []model.DetailedWorkspaceStats
	detailsLoading   bool
	detailsErr       error
	detailsFetchedAt time.Time

	replyRates         model.ReplyRateStats
	replyRateLoading   bool
	replyRateErr       error
	replyRateFetchedAt time.Time

	subs      map[int]chan Change
	nextSubID int
	closed    bool
}

// Option configures a Store.
type Option func(*Store)

// WithLogger sets the logger used for fetch failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithRecorder persists successful payloads and fetch outcomes.
func WithRecorder(r Recorder) Option {
	return func(s *Store) { s.recorder = r }
}

// WithClock overrides time.Now for change timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store in its initial state: every lane empty and loading.
func New(f Fetcher, opts ...Option) *Store {
	s := &Store{
		fetcher:          f,
		log:              zap.NewNop(),
		now:              time.Now,
		workspaces:       []model.BasicWorkspaceStats{},
		detailed:         []model.DetailedWorkspaceStats{},
		replyRates:       model.ReplyRateStats{Data: []model.ProviderReplyRateEntry{}},
		basicLoading:     true,
		detailsLoading:   true,
		replyRateLoading: true,
		subs:             make(map[int]chan Change),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchBasic refreshes the basic lane. On failure the previous workspaces are
// kept, the error is stored and returned. Loading is false once it returns.
func (s *Store) FetchBasic(ctx context.Context) ([]model.BasicWorkspaceStats, error) {
	s.mu.Lock()
	s.basicLoading = true
	s.basicErr = nil
	s.mu.Unlock()
	s.notify(model.LaneBasic, ChangeStarted)

	start := s.now()
	data, err := s.fetcher.FetchBasic(context.WithoutCancel(ctx))
	if data == nil {
		data = []model.BasicWorkspaceStats{}
	}

	s.mu.Lock()
	if err != nil {
		s.basicErr = err
	} else {
		s.workspaces = data
		s.basicFetchedAt = s.now()
	}
	s.basicLoading = false
	s.mu.Unlock()

	s.settle(model.LaneBasic, start, data, err)
	if err != nil {
		return nil, err
	}
	return append([]model.BasicWorkspaceStats{}, data...), nil
}

// FetchDetails refreshes the details lane with the same contract as FetchBasic.
func (s *Store) FetchDetails(ctx context.Context) ([]model.DetailedWorkspaceStats, error) {
	s.mu.Lock()
	s.detailsLoading = true
	s.detailsErr = nil
	s.mu.Unlock()
	s.notify(model.LaneDetails, ChangeStarted)

	start := s.now()
	data, err := s.fetcher.FetchDetails(context.WithoutCancel(ctx))
	if data == nil {
		data = []model.DetailedWorkspaceStats{}
	}

	s.mu.Lock()
	if err != nil {
		s.detailsErr = err
	} else {
		s.detailed = data
		s.detailsFetchedAt = s.now()
	}
	s.detailsLoading = false
	s.mu.Unlock()

	s.settle(model.LaneDetails, start, data, err)
	if err != nil {
		return nil, err
	}
	return append([]model.DetailedWorkspaceStats{}, data...), nil
}

// FetchReplyRates refreshes the reply-rate lane. The response data is wrapped
// as-is; a failed fetch keeps the previous value.
func (s *Store) FetchReplyRates(ctx context.Context) (model.ReplyRateStats, error) {
	s.mu.Lock()
	s.replyRateLoading = true
	s.replyRateErr = nil
	s.mu.Unlock()
	s.notify(model.LaneReplyRates, ChangeStarted)

	start := s.now()
	data, err := s.fetcher.FetchReplyRates(context.WithoutCancel(ctx))
	stats := model.ReplyRateStats{Data: data}

	s.mu.Lock()
	if err != nil {
		s.replyRateErr = err
	} else {
		s.replyRates = stats
		s.replyRateFetchedAt = s.now()
	}
	s.replyRateLoading = false
	s.mu.Unlock()

	s.settle(model.LaneReplyRates, start, stats, err)
	if err != nil {
		return model.ReplyRateStats{}, err
	}
	return copyReplyRates(stats), nil
}

// FetchAll refreshes every lane concurrently. A failing lane does not cancel
// the others; the first error is returned once all have settled.
func (s *Store) FetchAll(ctx context.Context) error {
	var g errgroup.Group
	g.Go(func() error {
		_, err := s.FetchBasic(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.FetchDetails(ctx)
		return err
	})
	g.Go(func() error {
		_, err := s.FetchReplyRates(ctx)
		return err
	})
	return g.Wait()
}

// settle logs, records and announces the outcome of a fetch.
func (s *Store) settle(lane model.Lane, start time.Time, payload any, err error) {
	at := s.now()

	if err != nil {
		fields := []zap.Field{zap.String("lane", string(lane))}
		if e, ok := s.fetcher.(endpointer); ok {
			fields = append(fields, zap.String("endpoint", e.Endpoint(lane)))
		}
		s.log.Error("dashboard fetch failed", append(fields, zap.Error(err))...)
	}

	if s.recorder != nil {
		if recErr := s.recorder.RecordFetch(lane, at, at.Sub(start), err); recErr != nil {
			s.log.Warn("recording fetch outcome failed", zap.String("lane", string(lane)), zap.Error(recErr))
		}
		if err == nil {
			if recErr := s.recorder.SaveSnapshot(lane, payload, at); recErr != nil {
				s.log.Warn("saving snapshot failed", zap.String("lane", string(lane)), zap.Error(recErr))
			}
		}
	}

	if err != nil {
		s.notify(lane, ChangeFailed)
		return
	}
	s.notify(lane, ChangeLoaded)
}
