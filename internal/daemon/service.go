// Package daemon provides the long-running dashboard poller and its HTTP API.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/theirongolddev/odash/internal/dashboard"
	"github.com/theirongolddev/odash/internal/model"
	"github.com/theirongolddev/odash/internal/pipeline"
)

// Config controls the daemon runtime behavior.
type Config struct {
	Interval     time.Duration
	Addr         string
	EventsBuffer int
	APIURL       string
}

// Snapshot is a compact dashboard state for status and event payloads.
type Snapshot struct {
	At               time.Time `json:"at"`
	Workspaces       int       `json:"workspaces"`
	Campaigns        int       `json:"campaigns"`
	EmailsSent       int64     `json:"emails_sent"`
	Replies          int64     `json:"replies"`
	Interested       int64     `json:"interested"`
	AverageReplyRate string    `json:"average_reply_rate"`
	Providers        int       `json:"providers"`
}

// Delta captures snapshot changes between polls.
type Delta struct {
	Workspaces int   `json:"workspaces"`
	Campaigns  int   `json:"campaigns"`
	EmailsSent int64 `json:"emails_sent"`
	Replies    int64 `json:"replies"`
	Interested int64 `json:"interested"`
}

func (d Delta) isZero() bool {
	return d == Delta{}
}

// LaneStatus is the externally visible state of one store lane.
type LaneStatus struct {
	Loading   bool      `json:"loading"`
	Error     string    `json:"error,omitempty"`
	Items     int       `json:"items"`
	FetchedAt time.Time `json:"fetched_at"`
}

// Event types.
const (
	EventSnapshot   = "snapshot"
	EventStatsDelta = "stats_delta"
	EventLane       = "lane"
)

// Event is emitted whenever a lane changes or the derived stats move.
type Event struct {
	ID        int64       `json:"id"`
	Type      string      `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Lane      model.Lane  `json:"lane,omitempty"`
	Change    string      `json:"change,omitempty"`
	Status    *LaneStatus `json:"status,omitempty"`
	Snapshot  *Snapshot   `json:"snapshot,omitempty"`
	Delta     *Delta      `json:"delta,omitempty"`
}

// Status is served at /v1/status.
type Status struct {
	StartedAt       time.Time                 `json:"started_at"`
	LastPollAt      time.Time                 `json:"last_poll_at"`
	PollIntervalSec int                       `json:"poll_interval_sec"`
	PollCount       int64                     `json:"poll_count"`
	APIURL          string                    `json:"api_url,omitempty"`
	Lanes           map[model.Lane]LaneStatus `json:"lanes"`
	Summary         Snapshot                  `json:"summary"`
	LastError       string                    `json:"last_error,omitempty"`
	EventCount      int                       `json:"event_count"`
	SubscriberCount int                       `json:"subscriber_count"`
}

// Service polls a dashboard store and serves its state over HTTP.
type Service struct {
	cfg   Config
	store *dashboard.Store
	log   *zap.Logger

	refresh chan struct{}

	mu          sync.RWMutex
	startedAt   time.Time
	lastPollAt  time.Time
	pollCount   int64
	lastError   string
	hasSnapshot bool
	snapshot    Snapshot
	nextEventID int64
	events      []Event

	nextSubID int
	subs      map[int]chan Event
}

// New returns a daemon service polling st.
func New(cfg Config, st *dashboard.Store, log *zap.Logger) *Service {
	if cfg.Interval < 2*time.Second {
		cfg.Interval = time.Minute
	}
	if cfg.EventsBuffer < 1 {
		cfg.EventsBuffer = 200
	}
	if cfg.Addr == "" {
		cfg.Addr = "127.0.0.1:8788"
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Service{
		cfg:       cfg,
		store:     st,
		log:       log,
		refresh:   make(chan struct{}, 1),
		startedAt: time.Now(),
		subs:      make(map[int]chan Event),
	}
}

// Run serves the HTTP API and polls until ctx is canceled.
func (s *Service) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	changes, unsubscribe := s.store.Subscribe()
	defer unsubscribe()
	go s.forward(changes)

	s.log.Info("daemon listening", zap.String("addr", s.cfg.Addr), zap.Duration("interval", s.cfg.Interval))

	// Seed an initial poll so status is useful immediately.
	s.pollOnce(ctx)

	ticker := time.NewTicker(s.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		case <-ticker.C:
			s.pollOnce(ctx)
		case <-s.refresh:
			s.pollOnce(ctx)
			ticker.Reset(s.cfg.Interval)
		case err := <-errCh:
			return fmt.Errorf("daemon http server: %w", err)
		}
	}
}

// TriggerRefresh requests an immediate poll. Reports false when one is
// already pending.
func (s *Service) TriggerRefresh() bool {
	select {
	case s.refresh <- struct{}{}:
		return true
	default:
		return false
	}
}

// forward turns store changes into lane events until the channel closes.
func (s *Service) forward(changes <-chan dashboard.Change) {
	for ch := range changes {
		st := s.store.Snapshot()
		status := laneStatus(st.Lane(ch.Lane))
		s.publish(Event{
			Type:      EventLane,
			Timestamp: ch.At,
			Lane:      ch.Lane,
			Change:    string(ch.Kind),
			Status:    &status,
		})
	}
}

func (s *Service) pollOnce(ctx context.Context) {
	err := s.store.FetchAll(ctx)
	now := time.Now()
	snap := snapshotFromState(s.store.Snapshot(), now)

	var (
		ev      Event
		publish bool
	)

	s.mu.Lock()
	prev := s.snapshot
	prevExists := s.hasSnapshot

	s.hasSnapshot = true
	s.snapshot = snap
	s.lastPollAt = now
	s.pollCount++
	s.lastError = ""
	if err != nil {
		s.lastError = err.Error()
	}

	if !prevExists {
		ev = Event{Type: EventSnapshot, Timestamp: now, Snapshot: &snap}
		publish = true
	} else if delta := diffSnapshots(prev, snap); !delta.isZero() {
		ev = Event{Type: EventStatsDelta, Timestamp: now, Snapshot: &snap, Delta: &delta}
		publish = true
	}
	s.mu.Unlock()

	if err != nil {
		s.log.Warn("daemon poll incomplete", zap.Error(err))
	}
	if publish {
		s.publish(ev)
	}
}

func snapshotFromState(st dashboard.State, at time.Time) Snapshot {
	snap := Snapshot{At: at}
	if b := st.BasicStats; b != nil {
		snap.Workspaces = b.TotalWorkspaces
		snap.Campaigns = b.TotalCampaigns
	}
	if d := st.DetailedStats; d != nil {
		snap.EmailsSent = d.TotalStats.EmailsSent
		snap.Replies = d.TotalStats.Replies
		snap.Interested = d.TotalStats.Interested
		snap.AverageReplyRate = d.TotalStats.AverageReplyRate
	}
	snap.Providers = len(pipeline.SummarizeReplyRates(st.ReplyRates))
	return snap
}

func diffSnapshots(prev, curr Snapshot) Delta {
	return Delta{
		Workspaces: curr.Workspaces - prev.Workspaces,
		Campaigns:  curr.Campaigns - prev.Campaigns,
		EmailsSent: curr.EmailsSent - prev.EmailsSent,
		Replies:    curr.Replies - prev.Replies,
		Interested: curr.Interested - prev.Interested,
	}
}

func laneStatus(ls dashboard.LaneState) LaneStatus {
	out := LaneStatus{Loading: ls.Loading, Items: ls.Items, FetchedAt: ls.FetchedAt}
	if ls.Err != nil {
		out.Error = ls.Err.Error()
	}
	return out
}

// publish assigns the next event ID, appends to the ring buffer and fans
// out to subscribers without blocking.
func (s *Service) publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextEventID++
	ev.ID = s.nextEventID
	s.events = append(s.events, ev)
	if len(s.events) > s.cfg.EventsBuffer {
		s.events = s.events[len(s.events)-s.cfg.EventsBuffer:]
	}

	for _, ch := range s.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

func (s *Service) status() Status {
	st := s.store.Snapshot()
	lanes := make(map[model.Lane]LaneStatus, len(model.Lanes))
	for _, l := range model.Lanes {
		lanes[l] = laneStatus(st.Lane(l))
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	return Status{
		StartedAt:       s.startedAt,
		LastPollAt:      s.lastPollAt,
		PollIntervalSec: int(s.cfg.Interval.Seconds()),
		PollCount:       s.pollCount,
		APIURL:          s.cfg.APIURL,
		Lanes:           lanes,
		Summary:         s.snapshot,
		LastError:       s.lastError,
		EventCount:      len(s.events),
		SubscriberCount: len(s.subs),
	}
}

func (s *Service) addSubscriber(ch chan Event) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSubID++
	id := s.nextSubID
	s.subs[id] = ch
	return id
}

func (s *Service) removeSubscriber(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, id)
}
