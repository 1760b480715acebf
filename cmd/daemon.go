package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/odash/internal/cli"
	"github.com/theirongolddev/odash/internal/daemon"
	"github.com/theirongolddev/odash/internal/model"
	"github.com/theirongolddev/odash/internal/store"
)

// daemonRuntime is written next to the cache while a daemon runs.
type daemonRuntime struct {
	PID       int       `json:"pid"`
	Addr      string    `json:"addr"`
	APIURL    string    `json:"api_url"`
	StartedAt time.Time `json:"started_at"`
}

var (
	flagDaemonAddr         string
	flagDaemonInterval     time.Duration
	flagDaemonDetach       bool
	flagDaemonRuntimeFile  string
	flagDaemonLogFile      string
	flagDaemonEventsBuffer int
	flagDaemonChild        bool
)

var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Poll the dashboard API in the background and serve HTTP/SSE endpoints",
	RunE:  runDaemon,
}

var daemonStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show daemon process and lane status",
	RunE:  runDaemonStatus,
}

var daemonStopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the running daemon",
	RunE:  runDaemonStop,
}

var daemonRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask the running daemon to poll now",
	RunE:  runDaemonRefresh,
}

func init() {
	daemonCmd.PersistentFlags().StringVar(&flagDaemonAddr, "addr", "", "HTTP listen address (default from config)")
	daemonCmd.PersistentFlags().DurationVar(&flagDaemonInterval, "interval", 0, "Polling interval (default from config)")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonRuntimeFile, "runtime-file", filepath.Join(store.CacheDir(), "odashd.json"), "Runtime state file path")
	daemonCmd.PersistentFlags().StringVar(&flagDaemonLogFile, "log-file", filepath.Join(store.CacheDir(), "odashd.log"), "Log file path for detached mode")
	daemonCmd.PersistentFlags().IntVar(&flagDaemonEventsBuffer, "events-buffer", 0, "Max in-memory events retained (default from config)")

	daemonCmd.Flags().BoolVar(&flagDaemonDetach, "detach", false, "Run daemon as a background process")
	daemonCmd.Flags().BoolVar(&flagDaemonChild, "child", false, "Internal: mark detached child process")
	_ = daemonCmd.Flags().MarkHidden("child")

	daemonCmd.AddCommand(daemonStatusCmd, daemonStopCmd, daemonRefreshCmd)
	rootCmd.AddCommand(daemonCmd)
}

// daemonConfig merges daemon flags over the config file.
func daemonConfig() (daemon.Config, string) {
	cfg := loadConfig()
	dc := daemon.Config{
		Interval:     cfg.PollInterval(),
		Addr:         cfg.Daemon.Addr,
		EventsBuffer: cfg.Daemon.EventsBuffer,
		APIURL:       apiURL(cfg),
	}
	if flagDaemonAddr != "" {
		dc.Addr = flagDaemonAddr
	}
	if flagDaemonInterval > 0 {
		dc.Interval = flagDaemonInterval
	}
	if flagDaemonEventsBuffer > 0 {
		dc.EventsBuffer = flagDaemonEventsBuffer
	}
	return dc, logLevel(cfg)
}

func runDaemon(_ *cobra.Command, _ []string) error {
	if flagDaemonDetach && flagDaemonChild {
		return errors.New("invalid daemon launch mode")
	}
	if flagOffline {
		return errors.New("the daemon polls the live API; drop --offline")
	}
	if err := ensureDaemonNotRunning(flagDaemonRuntimeFile); err != nil {
		return err
	}
	if flagDaemonDetach {
		return startDaemonDetached()
	}
	return runDaemonForeground()
}

func startDaemonDetached() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("resolve executable: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(flagDaemonLogFile), 0o750); err != nil {
		return fmt.Errorf("create daemon log directory: %w", err)
	}
	//nolint:gosec // daemon log path is configured by the local user
	logf, err := os.OpenFile(flagDaemonLogFile, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o600)
	if err != nil {
		return fmt.Errorf("open daemon log file: %w", err)
	}
	defer func() { _ = logf.Close() }()

	args := append(withoutFlag(os.Args[1:], "--detach"), "--child")
	child := exec.Command(exe, args...) //nolint:gosec // exe/args come from current process invocation
	child.Stdout = logf
	child.Stderr = logf
	child.Env = os.Environ()
	if err := child.Start(); err != nil {
		return fmt.Errorf("start detached daemon: %w", err)
	}

	dc, _ := daemonConfig()
	fmt.Printf("  Started daemon (pid %d)\n", child.Process.Pid)
	fmt.Printf("  API: http://%s/v1/status\n", dc.Addr)
	fmt.Printf("  Log: %s\n", flagDaemonLogFile)
	return nil
}

func runDaemonForeground() error {
	dc, level := daemonConfig()

	log, err := newJSONLogger(level, "stderr")
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	s, err := newSession(loadConfig(), log)
	if err != nil {
		return err
	}
	defer s.Close()
	dc.APIURL = s.client.BaseURL()

	rt := daemonRuntime{PID: os.Getpid(), Addr: dc.Addr, APIURL: dc.APIURL, StartedAt: time.Now()}
	if err := writeRuntime(flagDaemonRuntimeFile, rt); err != nil {
		return err
	}
	defer func() { _ = os.Remove(flagDaemonRuntimeFile) }()

	svc := daemon.New(dc, s.store, log)
	log.Info("daemon starting",
		zap.String("addr", dc.Addr),
		zap.Duration("interval", dc.Interval),
		zap.String("api_url", dc.APIURL),
		zap.Bool("detached", flagDaemonChild),
	)
	if !flagDaemonChild {
		fmt.Printf("  odash daemon listening on http://%s\n", dc.Addr)
		fmt.Printf("  Polling %s every %s\n", dc.APIURL, dc.Interval)
		fmt.Println("  Stop with: odash daemon stop")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := svc.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	log.Info("daemon stopped")
	return nil
}

// daemonURL returns the base URL of the running daemon.
func daemonURL() (string, daemonRuntime, error) {
	rt, err := readRuntime(flagDaemonRuntimeFile)
	if err != nil {
		return "", rt, errors.New("daemon is not running")
	}
	if !processAlive(rt.PID) {
		return "", rt, fmt.Errorf("stale runtime file (pid %d not alive)", rt.PID)
	}
	return "http://" + rt.Addr, rt, nil
}

func runDaemonStatus(_ *cobra.Command, _ []string) error {
	base, rt, err := daemonURL()
	if err != nil {
		fmt.Printf("  Daemon: %v\n", err)
		return nil
	}

	fmt.Printf("  Daemon PID: %d\n", rt.PID)
	fmt.Printf("  Address: %s\n", base)
	fmt.Printf("  Up since: %s\n", rt.StartedAt.Local().Format(time.DateTime))

	hc := &http.Client{Timeout: 2 * time.Second}
	resp, err := hc.Get(base + "/v1/status") //nolint:noctx // short status probe
	if err != nil {
		fmt.Printf("  API status: unreachable (%v)\n", err)
		return nil
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		fmt.Printf("  API status: HTTP %d\n", resp.StatusCode)
		return nil
	}

	var st daemon.Status
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		fmt.Printf("  API status: malformed response (%v)\n", err)
		return nil
	}
	if flagJSON {
		return printJSON(st)
	}

	fmt.Printf("  Upstream: %s\n", st.APIURL)
	if st.LastPollAt.IsZero() {
		fmt.Println("  Last poll: pending")
	} else {
		fmt.Printf("  Last poll: %s (%d polls)\n", cli.FormatAge(st.LastPollAt, time.Now()), st.PollCount)
	}
	for _, lane := range model.Lanes {
		ls := st.Lanes[lane]
		var laneErr error
		if ls.Error != "" {
			laneErr = errors.New(ls.Error)
		}
		fmt.Printf("  %s\n", cli.RenderLaneStatus(string(lane), ls.Items, laneErr))
	}
	fmt.Printf("  Workspaces: %s  Campaigns: %s  Sent: %s  Avg reply: %s\n",
		cli.FormatNumber(int64(st.Summary.Workspaces)),
		cli.FormatNumber(int64(st.Summary.Campaigns)),
		cli.FormatNumber(st.Summary.EmailsSent),
		cli.FormatPercentString(st.Summary.AverageReplyRate),
	)
	fmt.Printf("  Subscribers: %d  Events buffered: %d\n", st.SubscriberCount, st.EventCount)
	if st.LastError != "" {
		fmt.Printf("  Last error: %s\n", st.LastError)
	}
	return nil
}

func runDaemonRefresh(_ *cobra.Command, _ []string) error {
	base, _, err := daemonURL()
	if err != nil {
		return err
	}

	hc := &http.Client{Timeout: 2 * time.Second}
	resp, err := hc.Post(base+"/v1/refresh", "application/json", nil) //nolint:noctx // short control call
	if err != nil {
		return fmt.Errorf("request refresh: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var out struct {
		Queued bool `json:"queued"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return fmt.Errorf("decode refresh response: %w", err)
	}
	if out.Queued {
		fmt.Println("  Refresh queued")
	} else {
		fmt.Println("  Refresh already pending")
	}
	return nil
}

func runDaemonStop(_ *cobra.Command, _ []string) error {
	rt, err := readRuntime(flagDaemonRuntimeFile)
	if err != nil {
		return errors.New("daemon is not running")
	}

	proc, err := os.FindProcess(rt.PID)
	if err != nil {
		return fmt.Errorf("find daemon process: %w", err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("signal daemon process: %w", err)
	}

	deadline := time.Now().Add(8 * time.Second)
	for time.Now().Before(deadline) {
		if !processAlive(rt.PID) {
			_ = os.Remove(flagDaemonRuntimeFile)
			fmt.Printf("  Stopped daemon (pid %d)\n", rt.PID)
			return nil
		}
		time.Sleep(150 * time.Millisecond)
	}
	return fmt.Errorf("daemon (pid %d) did not exit in time", rt.PID)
}

func withoutFlag(args []string, flag string) []string {
	out := make([]string, 0, len(args))
	for _, a := range args {
		if a == flag || strings.HasPrefix(a, flag+"=") {
			continue
		}
		out = append(out, a)
	}
	return out
}

func ensureDaemonNotRunning(path string) error {
	rt, err := readRuntime(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err == nil && processAlive(rt.PID) {
		return fmt.Errorf("daemon already running (pid %d)", rt.PID)
	}
	_ = os.Remove(path)
	return nil
}

func processAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	err = proc.Signal(syscall.Signal(0))
	return err == nil || errors.Is(err, syscall.EPERM)
}

func writeRuntime(path string, rt daemonRuntime) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("create daemon directory: %w", err)
	}
	data, err := json.MarshalIndent(rt, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o600)
}

func readRuntime(path string) (daemonRuntime, error) {
	var rt daemonRuntime
	//nolint:gosec // runtime path is configured by the local user
	data, err := os.ReadFile(path)
	if err != nil {
		return rt, err
	}
	if err := json.Unmarshal(data, &rt); err != nil {
		return rt, fmt.Errorf("parse %s: %w", path, err)
	}
	return rt, nil
}
