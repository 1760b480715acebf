package store

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/odash/internal/model"
)

func openTemp(t *testing.T) *Cache {
	t.Helper()
	c, err := Open(filepath.Join(t.TempDir(), "nested", "snapshots.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestLoadSnapshot_Missing(t *testing.T) {
	c := openTemp(t)

	var dst []model.BasicWorkspaceStats
	_, err := c.LoadSnapshot(model.LaneBasic, &dst)
	assert.ErrorIs(t, err, ErrNoSnapshot)
}

func TestSnapshot_RoundTripAndReplace(t *testing.T) {
	c := openTemp(t)
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	first := []model.BasicWorkspaceStats{{WorkspaceName: "alpha", Campaigns: []model.Campaign{{ID: 1, Name: "a"}}}}
	require.NoError(t, c.SaveSnapshot(model.LaneBasic, first, at))

	second := append(first, model.BasicWorkspaceStats{WorkspaceName: "beta"})
	require.NoError(t, c.SaveSnapshot(model.LaneBasic, second, at.Add(time.Hour)))

	var got []model.BasicWorkspaceStats
	fetchedAt, err := c.LoadSnapshot(model.LaneBasic, &got)
	require.NoError(t, err)
	assert.Equal(t, second, got)
	assert.True(t, fetchedAt.Equal(at.Add(time.Hour)), "fetchedAt = %v", fetchedAt)

	n, err := c.SnapshotCount()
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestSnapshot_ReplyRatesKeepDecimals(t *testing.T) {
	c := openTemp(t)
	stats := model.ReplyRateStats{Data: []model.ProviderReplyRateEntry{{
		WorkspaceName: "alpha",
		Data:          []model.ProviderReplyRate{{ProviderCombination: "gmail-outlook", TotalReplies: 3, TotalSent: 40, ReplyRate: "7.50"}},
	}}}
	require.NoError(t, c.SaveSnapshot(model.LaneReplyRates, stats, time.Now()))

	var got model.ReplyRateStats
	_, err := c.LoadSnapshot(model.LaneReplyRates, &got)
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}

func TestRecentFetches_NewestFirst(t *testing.T) {
	c := openTemp(t)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, c.RecordFetch(model.LaneBasic, base, 120*time.Millisecond, nil))
	require.NoError(t, c.RecordFetch(model.LaneDetails, base.Add(time.Second), 2*time.Second, errors.New("timeout")))
	require.NoError(t, c.RecordFetch(model.LaneReplyRates, base.Add(2*time.Second), 0, nil))

	recs, err := c.RecentFetches(2)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	assert.Equal(t, model.LaneReplyRates, recs[0].Lane)
	assert.True(t, recs[0].OK)

	assert.Equal(t, model.LaneDetails, recs[1].Lane)
	assert.False(t, recs[1].OK)
	assert.Equal(t, "timeout", recs[1].Error)
	assert.Equal(t, 2*time.Second, recs[1].Duration)
}

func TestItemCount(t *testing.T) {
	tests := []struct {
		name    string
		payload any
		want    int
	}{
		{"slice", []model.DetailedWorkspaceStats{{}, {}}, 2},
		{"wrapped", model.ReplyRateStats{Data: []model.ProviderReplyRateEntry{{}}}, 1},
		{"pointer", &model.ReplyRateStats{}, 0},
		{"scalar", 42, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := itemCount(tt.payload); got != tt.want {
				t.Fatalf("itemCount = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCachePath_XDG(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")
	assert.Equal(t, "/tmp/xdg-cache/odash/snapshots.db", CachePath())
}
