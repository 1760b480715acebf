package daemon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/odash/internal/dashboard"
	"github.com/theirongolddev/odash/internal/model"
)

type stubFetcher struct {
	basic      []model.BasicWorkspaceStats
	details    []model.DetailedWorkspaceStats
	detailsErr error
	rates      []model.ProviderReplyRateEntry
}

func (f *stubFetcher) FetchBasic(context.Context) ([]model.BasicWorkspaceStats, error) {
	return f.basic, nil
}

func (f *stubFetcher) FetchDetails(context.Context) ([]model.DetailedWorkspaceStats, error) {
	return f.details, f.detailsErr
}

func (f *stubFetcher) FetchReplyRates(context.Context) ([]model.ProviderReplyRateEntry, error) {
	return f.rates, nil
}

func newTestService(t *testing.T, f *stubFetcher, buffer int) *Service {
	t.Helper()
	st := dashboard.New(f)
	t.Cleanup(st.Close)
	return New(Config{Interval: 10 * time.Second, EventsBuffer: buffer}, st, nil)
}

func sampleFetcher() *stubFetcher {
	return &stubFetcher{
		basic: []model.BasicWorkspaceStats{
			{WorkspaceName: "alpha", Campaigns: []model.Campaign{{ID: 1}, {ID: 2}}},
		},
		details: []model.DetailedWorkspaceStats{{
			WorkspaceName: "alpha", TotalScheduled: 10, TotalMaxCapacity: 40,
			Stats: &model.WorkspaceStats{
				EmailsSent: 500,
				Replies:    model.CountPercent{Count: 25, Percentage: "5.00"},
			},
		}},
		rates: []model.ProviderReplyRateEntry{{
			WorkspaceName: "alpha",
			Data:          []model.ProviderReplyRate{{ProviderCombination: "gmail-gmail", TotalReplies: 5, TotalSent: 100, ReplyRate: "5.00"}},
		}},
	}
}

func TestDiffSnapshots(t *testing.T) {
	prev := Snapshot{Workspaces: 2, Campaigns: 5, EmailsSent: 1000, Replies: 40}
	curr := Snapshot{Workspaces: 3, Campaigns: 5, EmailsSent: 1250, Replies: 52}

	delta := diffSnapshots(prev, curr)
	if delta.Workspaces != 1 {
		t.Fatalf("Workspaces delta = %d, want 1", delta.Workspaces)
	}
	if delta.Campaigns != 0 {
		t.Fatalf("Campaigns delta = %d, want 0", delta.Campaigns)
	}
	if delta.EmailsSent != 250 {
		t.Fatalf("EmailsSent delta = %d, want 250", delta.EmailsSent)
	}
	if delta.Replies != 12 {
		t.Fatalf("Replies delta = %d, want 12", delta.Replies)
	}
	if delta.isZero() {
		t.Fatal("delta unexpectedly reported as zero")
	}
	if !diffSnapshots(curr, curr).isZero() {
		t.Fatal("identical snapshots should diff to zero")
	}
}

func TestPublishRingBuffer(t *testing.T) {
	s := newTestService(t, &stubFetcher{}, 2)

	s.publish(Event{Type: EventLane})
	s.publish(Event{Type: EventLane})
	s.publish(Event{Type: EventLane})

	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.events) != 2 {
		t.Fatalf("events len = %d, want 2", len(s.events))
	}
	if s.events[0].ID != 2 || s.events[1].ID != 3 {
		t.Fatalf("events ring contains IDs [%d, %d], want [2, 3]", s.events[0].ID, s.events[1].ID)
	}
}

func TestPollOnce_SnapshotThenDelta(t *testing.T) {
	f := sampleFetcher()
	s := newTestService(t, f, 10)

	s.pollOnce(context.Background())
	s.pollOnce(context.Background())

	f.basic = append(f.basic, model.BasicWorkspaceStats{WorkspaceName: "beta"})
	s.pollOnce(context.Background())

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.Len(t, s.events, 2, "unchanged poll publishes nothing")
	assert.Equal(t, EventSnapshot, s.events[0].Type)
	assert.Equal(t, 1, s.events[0].Snapshot.Workspaces)
	assert.Equal(t, EventStatsDelta, s.events[1].Type)
	assert.Equal(t, 1, s.events[1].Delta.Workspaces)
	assert.Equal(t, int64(3), s.pollCount)
	assert.Empty(t, s.lastError)
}

func TestPollOnce_RecordsLaneError(t *testing.T) {
	f := sampleFetcher()
	f.detailsErr = errors.New("details down")
	s := newTestService(t, f, 10)

	s.pollOnce(context.Background())

	st := s.status()
	assert.Equal(t, "details down", st.LastError)
	assert.Equal(t, "details down", st.Lanes[model.LaneDetails].Error)
	assert.Empty(t, st.Lanes[model.LaneBasic].Error)
	assert.Equal(t, 1, st.Lanes[model.LaneBasic].Items)
	assert.Equal(t, 1, st.Summary.Workspaces)
	assert.Equal(t, 1, st.Summary.Providers)
}

func TestForward_PublishesLaneEvents(t *testing.T) {
	st := dashboard.New(sampleFetcher())
	defer st.Close()
	s := New(Config{EventsBuffer: 10}, st, nil)

	changes, cancel := st.Subscribe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.forward(changes)
	}()

	_, err := st.FetchBasic(context.Background())
	require.NoError(t, err)
	cancel()
	<-done

	s.mu.RLock()
	defer s.mu.RUnlock()
	require.Len(t, s.events, 2)
	assert.Equal(t, model.LaneBasic, s.events[0].Lane)
	assert.Equal(t, string(dashboard.ChangeStarted), s.events[0].Change)
	assert.Equal(t, string(dashboard.ChangeLoaded), s.events[1].Change)
	assert.Equal(t, 1, s.events[1].Status.Items)
}

func TestRoutes_LaneEndpoints(t *testing.T) {
	s := newTestService(t, sampleFetcher(), 10)
	s.pollOnce(context.Background())
	h := s.Routes()

	get := func(path string) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		return rec
	}

	rec := get("/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok\n", rec.Body.String())

	var basic struct {
		Status  LaneStatus                  `json:"status"`
		Data    []model.BasicWorkspaceStats `json:"data"`
		Summary *model.BasicSummary         `json:"summary"`
	}
	rec = get("/v1/basic")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &basic))
	assert.False(t, basic.Status.Loading)
	require.NotNil(t, basic.Summary)
	assert.Equal(t, 2, basic.Summary.TotalCampaigns)

	var details struct {
		Summary *model.DetailedSummary `json:"summary"`
	}
	rec = get("/v1/details")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &details))
	require.NotNil(t, details.Summary)
	assert.Equal(t, "5.00", details.Summary.TotalStats.AverageReplyRate)
	assert.Equal(t, "25.0", details.Summary.WorkspaceStats[0].Capacity.Utilization)

	var rates struct {
		Summary []model.ProviderSummary `json:"summary"`
	}
	rec = get("/v1/reply-rates")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &rates))
	require.Len(t, rates.Summary, 1)
	assert.Equal(t, "gmail-gmail", rates.Summary[0].ProviderCombination)

	var status Status
	rec = get("/v1/status")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, int64(1), status.PollCount)
	assert.Len(t, status.Lanes, 3)

	var events []Event
	rec = get("/v1/events")
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &events))
	assert.Len(t, events, 1)
}

func TestRoutes_Refresh(t *testing.T) {
	s := newTestService(t, &stubFetcher{}, 10)
	h := s.Routes()

	post := func() map[string]bool {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/refresh", nil))
		require.Equal(t, http.StatusAccepted, rec.Code)
		var out map[string]bool
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
		return out
	}

	assert.True(t, post()["queued"])
	assert.False(t, post()["queued"], "second request coalesces with the pending one")

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/refresh", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStream_SendsInitialSnapshot(t *testing.T) {
	s := newTestService(t, sampleFetcher(), 10)
	s.pollOnce(context.Background())

	srv := httptest.NewServer(s.Routes())
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/stream", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	sc := bufio.NewScanner(resp.Body)
	var lines []string
	for sc.Scan() {
		if sc.Text() == "" {
			break
		}
		lines = append(lines, sc.Text())
	}
	require.Len(t, lines, 2)
	assert.Equal(t, "event: snapshot", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "data: "))

	var ev Event
	require.NoError(t, json.Unmarshal([]byte(strings.TrimPrefix(lines[1], "data: ")), &ev))
	require.NotNil(t, ev.Snapshot)
	assert.Equal(t, 1, ev.Snapshot.Workspaces)
}
