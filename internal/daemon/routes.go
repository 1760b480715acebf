package daemon

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/theirongolddev/odash/internal/model"
	"github.com/theirongolddev/odash/internal/pipeline"
)

// Routes returns the daemon's HTTP API.
func (s *Service) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)

	r.Route("/v1", func(v chi.Router) {
		v.Get("/status", s.handleStatus)
		v.Get("/basic", s.handleBasic)
		v.Get("/details", s.handleDetails)
		v.Get("/reply-rates", s.handleReplyRates)
		v.Get("/events", s.handleEvents)
		v.Get("/stream", s.handleStream)
		v.Post("/refresh", s.handleRefresh)
	})
	return r
}

type laneResponse[T any, S any] struct {
	Status  LaneStatus `json:"status"`
	Data    T          `json:"data"`
	Summary S          `json:"summary"`
}

func (s *Service) writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Debug("writing response failed", zap.Error(err))
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Service) handleBasic(w http.ResponseWriter, _ *http.Request) {
	st := s.store.Snapshot()
	s.writeJSON(w, http.StatusOK, laneResponse[[]model.BasicWorkspaceStats, *model.BasicSummary]{
		Status:  laneStatus(st.Basic),
		Data:    st.Workspaces,
		Summary: st.BasicStats,
	})
}

func (s *Service) handleDetails(w http.ResponseWriter, _ *http.Request) {
	st := s.store.Snapshot()
	s.writeJSON(w, http.StatusOK, laneResponse[[]model.DetailedWorkspaceStats, *model.DetailedSummary]{
		Status:  laneStatus(st.Details),
		Data:    st.DetailedWorkspaces,
		Summary: st.DetailedStats,
	})
}

func (s *Service) handleReplyRates(w http.ResponseWriter, _ *http.Request) {
	st := s.store.Snapshot()
	s.writeJSON(w, http.StatusOK, laneResponse[[]model.ProviderReplyRateEntry, []model.ProviderSummary]{
		Status:  laneStatus(st.ReplyRate),
		Data:    st.ReplyRates.Data,
		Summary: pipeline.SummarizeReplyRates(st.ReplyRates),
	})
}

func (s *Service) handleEvents(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	s.writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleRefresh(w http.ResponseWriter, _ *http.Request) {
	queued := s.TriggerRefresh()
	s.writeJSON(w, http.StatusAccepted, map[string]bool{"queued": queued})
}

func (s *Service) handleStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ch := make(chan Event, 16)
	id := s.addSubscriber(ch)
	defer s.removeSubscriber(id)

	// Send current snapshot immediately.
	snap := s.status().Summary
	writeSSE(w, Event{Type: EventSnapshot, Timestamp: time.Now(), Snapshot: &snap})
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-ch:
			writeSSE(w, ev)
			flusher.Flush()
		}
	}
}

func writeSSE(w http.ResponseWriter, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		return
	}
	if ev.ID > 0 {
		_, _ = fmt.Fprintf(w, "id: %d\n", ev.ID)
	}
	_, _ = fmt.Fprintf(w, "event: %s\n", ev.Type)
	_, _ = fmt.Fprintf(w, "data: %s\n\n", data)
}
