// Package tui provides the interactive Bubble Tea dashboard for odash.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/odash/internal/cli"
	"github.com/theirongolddev/odash/internal/dashboard"
	"github.com/theirongolddev/odash/internal/model"
	"github.com/theirongolddev/odash/internal/tui/components"
	"github.com/theirongolddev/odash/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// changeMsg carries one store change into the update loop.
type changeMsg dashboard.Change

// storeClosedMsg is sent once the store subscription ends.
type storeClosedMsg struct{}

// fetchDoneMsg is sent when a FetchAll round completes.
type fetchDoneMsg struct {
	err error
	at  time.Time
}

type tickMsg time.Time

// Options configures the App.
type Options struct {
	Source          string // shown in the status bar, usually the API base URL
	Filter          string // workspace name substring
	AutoRefresh     bool
	RefreshInterval time.Duration
	// OnAutoRefreshToggle persists the auto-refresh setting. Optional.
	OnAutoRefreshToggle func(enabled bool) error
}

// App is the root Bubble Tea model.
type App struct {
	store       *dashboard.Store
	changes     <-chan dashboard.Change
	unsubscribe func()
	state       dashboard.State
	opts        Options

	// Auto-refresh state
	autoRefresh bool
	lastRefresh time.Time
	refreshing  bool
	lastErr     error

	// UI state
	width     int
	height    int
	activeTab int
	scroll    int
	showHelp  bool
	spinner   spinner.Model
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5
	tickInterval     = time.Second
)

// NewApp creates the dashboard model bound to st. The App subscribes to st
// immediately; call Close when the program exits.
func NewApp(st *dashboard.Store, opts Options) App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Minute
	}

	changes, unsubscribe := st.Subscribe()
	return App{
		store:       st,
		changes:     changes,
		unsubscribe: unsubscribe,
		state:       st.Snapshot(),
		opts:        opts,
		autoRefresh: opts.AutoRefresh,
		refreshing:  true, // Init starts the first fetch
		spinner:     sp,
	}
}

// Close ends the store subscription.
func (a App) Close() {
	if a.unsubscribe != nil {
		a.unsubscribe()
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		waitForChange(a.changes),
		fetchAllCmd(a.store),
		a.spinner.Tick,
		tickCmd(),
	)
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.MouseMsg:
		if a.showHelp {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.scrollBy(-1)
		case tea.MouseButtonWheelDown:
			a.scrollBy(1)
		case tea.MouseButtonLeft:
			if msg.Action == tea.MouseActionPress && msg.Y == 0 {
				if tab := a.tabAtX(msg.X); tab >= 0 {
					a.selectTab(tab)
				}
			}
		}
		return a, nil

	case tea.KeyMsg:
		return a.updateKey(msg)

	case changeMsg:
		a.state = a.store.Snapshot()
		return a, waitForChange(a.changes)

	case storeClosedMsg:
		return a, nil

	case fetchDoneMsg:
		a.refreshing = false
		a.lastRefresh = msg.at
		a.lastErr = msg.err
		a.state = a.store.Snapshot()
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tickMsg:
		cmds := []tea.Cmd{tickCmd()}
		if a.autoRefresh && !a.refreshing && time.Since(a.lastRefresh) >= a.opts.RefreshInterval {
			a.refreshing = true
			cmds = append(cmds, fetchAllCmd(a.store))
		}
		return a, tea.Batch(cmds...)
	}

	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "r":
		if a.refreshing {
			return a, nil
		}
		a.refreshing = true
		return a, fetchAllCmd(a.store)
	case "R":
		a.autoRefresh = !a.autoRefresh
		if a.opts.OnAutoRefreshToggle != nil {
			// best-effort; the toggle still applies to this session
			_ = a.opts.OnAutoRefreshToggle(a.autoRefresh)
		}
		return a, nil
	case "left", "h":
		a.selectTab((a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs))
	case "right", "l", "tab":
		a.selectTab((a.activeTab + 1) % len(components.Tabs))
	case "j", "down":
		a.scrollBy(1)
	case "k", "up":
		a.scrollBy(-1)
	case "g":
		a.scroll = 0
	default:
		if r := []rune(key); len(r) == 1 {
			if idx := components.TabIdxByKey(r[0]); idx >= 0 {
				a.selectTab(idx)
			}
		}
	}
	return a, nil
}

func (a *App) selectTab(idx int) {
	if idx != a.activeTab {
		a.activeTab = idx
		a.scroll = 0
	}
}

func (a *App) scrollBy(n int) {
	a.scroll += n
	if a.scroll < 0 {
		a.scroll = 0
	}
}

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf(
		"\n  Terminal too narrow (%d cols)\n\n  odash needs at least %d columns.\n",
		a.width,
		minTerminalWidth,
	)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	bindings := []struct{ key, desc string }{
		{"o w p", "Jump to tab"},
		{"← →", "Previous / Next tab"},
		{"j k", "Scroll"},
		{"r", "Refresh all lanes"},
		{"R", "Toggle auto-refresh"},
		{"?", "Toggle help"},
		{"q", "Quit"},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n\n")
	for _, bind := range bindings {
		fmt.Fprintf(&b, "%s  %s\n",
			keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
			descStyle.Render(bind.desc))
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()

	header := components.RenderTabBar(a.activeTab, w)
	statusBar := components.RenderStatusBar(w, a.statusInfo())

	contentH := max(a.height-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case 0:
		content = a.renderOverviewTab(cw)
	case 1:
		content = a.renderWorkspacesTab(cw)
	case 2:
		content = a.renderReplyRatesTab(cw)
	}

	content = padHeight(truncateHeight(skipLines(content, a.scroll), contentH), contentH)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, a.height, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) statusInfo() components.StatusInfo {
	info := components.StatusInfo{
		Refreshing:  a.refreshing,
		AutoRefresh: a.autoRefresh,
		Source:      a.opts.Source,
	}

	var newest time.Time
	for _, l := range model.Lanes {
		ls := a.state.Lane(l)
		if ls.Err != nil {
			info.FailedLanes++
		}
		if ls.FetchedAt.After(newest) {
			newest = ls.FetchedAt
		}
	}
	if !newest.IsZero() {
		info.DataAge = cli.FormatAge(newest, time.Now())
	}
	return info
}

// laneView decides how a lane is drawn: an error card when it failed with
// nothing to show, a skeleton while its placeholder flag is set, else nil
// and the caller renders the data.
func (a App) laneView(title string, ls dashboard.LaneState, cw int) (string, bool) {
	if ls.Err != nil && ls.Items == 0 {
		return components.ErrorCard(title, ls.Err, cw), true
	}
	if ls.Skeleton {
		note := "Loading " + strings.ToLower(title) + "…"
		if !ls.Loading {
			note = "No " + strings.ToLower(title) + " yet"
		}
		return components.SkeletonCard(title, a.spinner.View(), note, cw), true
	}
	return "", false
}

// staleNote is shown above lane data kept from an earlier fetch after the
// latest one failed.
func staleNote(ls dashboard.LaneState) string {
	if ls.Err == nil {
		return ""
	}
	t := theme.Active
	style := lipgloss.NewStyle().Foreground(t.Orange).Background(t.Background)
	return style.Render(" showing data from "+cli.FormatAge(ls.FetchedAt, time.Now())+": "+ls.Err.Error()) + "\n"
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// waitForChange blocks until the store reports the next change.
func waitForChange(ch <-chan dashboard.Change) tea.Cmd {
	return func() tea.Msg {
		c, ok := <-ch
		if !ok {
			return storeClosedMsg{}
		}
		return changeMsg(c)
	}
}

// fetchAllCmd refreshes every lane in the background.
func fetchAllCmd(st *dashboard.Store) tea.Cmd {
	return func() tea.Msg {
		err := st.FetchAll(context.Background())
		return fetchDoneMsg{err: err, at: time.Now()}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	lines := strings.Split(s, "\n")
	if len(lines) >= h {
		return s
	}
	return s + strings.Repeat("\n", h-len(lines))
}

// skipLines drops the first n lines, keeping at least the last one.
func skipLines(s string, n int) string {
	if n <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	if n >= len(lines) {
		n = len(lines) - 1
	}
	return strings.Join(lines[n:], "\n")
}

// tabAtX returns the tab index at the given X coordinate, or -1 if none.
// Hitboxes are derived from the same width rules used by RenderTabBar.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW

		// Separator is one column between tabs.
		if i < len(components.Tabs)-1 {
			pos++
		}
	}
	return -1
}
