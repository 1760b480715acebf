package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/theirongolddev/odash/internal/config"
	"github.com/theirongolddev/odash/internal/dashboard"
	"github.com/theirongolddev/odash/internal/model"
	"github.com/theirongolddev/odash/internal/tui/components"
)

type stubFetcher struct {
	basicErr error
}

func (f stubFetcher) FetchBasic(context.Context) ([]model.BasicWorkspaceStats, error) {
	if f.basicErr != nil {
		return nil, f.basicErr
	}
	return []model.BasicWorkspaceStats{{WorkspaceName: "alpha", Campaigns: []model.Campaign{{ID: 1, Name: "spring"}}}}, nil
}

func (f stubFetcher) FetchDetails(context.Context) ([]model.DetailedWorkspaceStats, error) {
	return []model.DetailedWorkspaceStats{{
		WorkspaceName: "alpha", TotalScheduled: 30, TotalMaxCapacity: 120,
		Stats: &model.WorkspaceStats{EmailsSent: 900, Replies: model.CountPercent{Count: 9, Percentage: "1.00"}},
	}}, nil
}

func (f stubFetcher) FetchReplyRates(context.Context) ([]model.ProviderReplyRateEntry, error) {
	return []model.ProviderReplyRateEntry{{
		WorkspaceName: "alpha",
		Data:          []model.ProviderReplyRate{{ProviderCombination: "gmail-outlook", TotalReplies: 2, TotalSent: 50, ReplyRate: "4.00"}},
	}}, nil
}

func newTestApp(t *testing.T, f stubFetcher) App {
	t.Helper()
	st := dashboard.New(f)
	a := NewApp(st, Options{Source: "test"})
	t.Cleanup(func() {
		a.Close()
		st.Close()
	})
	m, _ := a.Update(tea.WindowSizeMsg{Width: 120, Height: 60})
	return m.(App)
}

func TestTabAtXMatchesTabWidths(t *testing.T) {
	for active := range components.Tabs {
		a := App{activeTab: active}
		pos := 0

		for i, tab := range components.Tabs {
			w := components.TabVisualWidth(tab, i == active)
			x := pos + w/2 // midpoint inside this tab
			if got := a.tabAtX(x); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, x, got, i)
			}
			pos += w + 1 // separator
		}
		if got := a.tabAtX(pos + 50); got != -1 {
			t.Fatalf("x past last tab -> %d, want -1", got)
		}
	}
}

func TestViewShowsSkeletonBeforeFetch(t *testing.T) {
	a := newTestApp(t, stubFetcher{})
	out := a.View()
	if !strings.Contains(out, "Loading workspaces") {
		t.Fatalf("initial view should show the skeleton card:\n%s", out)
	}
}

func TestFetchDoneRendersData(t *testing.T) {
	a := newTestApp(t, stubFetcher{})

	msg := fetchAllCmd(a.store)()
	m, _ := a.Update(msg)
	a = m.(App)

	if out := a.View(); !strings.Contains(out, "Campaigns per Workspace") || !strings.Contains(out, "alpha") {
		t.Fatalf("overview missing data:\n%s", out)
	}

	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'w'}})
	a = m.(App)
	if a.activeTab != 1 {
		t.Fatalf("activeTab = %d, want 1", a.activeTab)
	}
	if out := a.View(); !strings.Contains(out, "Sending Capacity") || !strings.Contains(out, "25.0%") {
		t.Fatalf("workspaces tab missing capacity:\n%s", out)
	}

	m, _ = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'p'}})
	a = m.(App)
	if out := a.View(); !strings.Contains(out, "gmail-outlook") {
		t.Fatalf("reply rates tab missing provider:\n%s", out)
	}
}

func TestFailedLaneShowsErrorCard(t *testing.T) {
	a := newTestApp(t, stubFetcher{basicErr: errors.New("connection refused")})

	m, _ := a.Update(fetchAllCmd(a.store)())
	a = m.(App)

	out := a.View()
	if !strings.Contains(out, "Workspaces unavailable") || !strings.Contains(out, "connection refused") {
		t.Fatalf("expected error card:\n%s", out)
	}
	if a.statusInfo().FailedLanes != 1 {
		t.Fatalf("FailedLanes = %d, want 1", a.statusInfo().FailedLanes)
	}
}

func TestRefreshKeyCoalesces(t *testing.T) {
	a := newTestApp(t, stubFetcher{})
	if _, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}); cmd != nil {
		t.Fatal("r during the initial fetch should be ignored")
	}

	m, _ := a.Update(fetchDoneMsg{at: time.Now()})
	a = m.(App)
	m, cmd := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	a = m.(App)
	if cmd == nil || !a.refreshing {
		t.Fatal("r should start a refresh")
	}
	if _, cmd = a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}}); cmd != nil {
		t.Fatal("r while refreshing should be ignored")
	}
}

func TestAutoRefreshToggle(t *testing.T) {
	var saved []bool
	st := dashboard.New(stubFetcher{})
	defer st.Close()
	a := NewApp(st, Options{OnAutoRefreshToggle: func(on bool) error {
		saved = append(saved, on)
		return nil
	}})
	defer a.Close()

	m, _ := a.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'R'}})
	if !m.(App).autoRefresh || len(saved) != 1 || !saved[0] {
		t.Fatalf("autoRefresh toggle not applied: %v", saved)
	}
}

func TestApplySetup(t *testing.T) {
	cfg, err := ApplySetup(config.DefaultConfig(), SetupValues{
		BaseURL:    "https://stats.example.com/",
		TimeoutSec: "15",
		Theme:      "tokyo-night",
	})
	if err != nil {
		t.Fatalf("ApplySetup: %v", err)
	}
	if cfg.API.BaseURL != "https://stats.example.com" || cfg.API.TimeoutSec != 15 || cfg.Appearance.Theme != "tokyo-night" {
		t.Fatalf("cfg = %+v", cfg)
	}

	if _, err := ApplySetup(config.DefaultConfig(), SetupValues{BaseURL: "not a url"}); err == nil {
		t.Fatal("want error for invalid URL")
	}
}

func TestSkipLines(t *testing.T) {
	if got := skipLines("a\nb\nc", 1); got != "b\nc" {
		t.Fatalf("skipLines = %q", got)
	}
	if got := skipLines("a\nb", 10); got != "b" {
		t.Fatalf("skipLines past end = %q", got)
	}
}
