// Package cmd implements the odash CLI commands.
package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/theirongolddev/odash/internal/cli"
	"github.com/theirongolddev/odash/internal/config"
	"github.com/theirongolddev/odash/internal/dashapi"
	"github.com/theirongolddev/odash/internal/dashboard"
	"github.com/theirongolddev/odash/internal/model"
	"github.com/theirongolddev/odash/internal/store"
)

var (
	flagAPIURL    string
	flagOffline   bool
	flagNoCache   bool
	flagQuiet     bool
	flagJSON      bool
	flagWorkspace string
)

var rootCmd = &cobra.Command{
	Use:          "odash",
	Short:        "Outreach dashboard stats CLI",
	Long:         "Fetch and summarize workspace, campaign and reply-rate stats from the dashboard API.",
	RunE:         runSummary,
	SilenceUsage: true,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Dashboard API base URL (overrides config and ODASH_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&flagOffline, "offline", false, "Read the last cached snapshot instead of calling the API")
	rootCmd.PersistentFlags().BoolVar(&flagNoCache, "no-cache", false, "Do not read or write the snapshot cache")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print JSON instead of tables")
	rootCmd.PersistentFlags().StringVarP(&flagWorkspace, "workspace", "w", "", "Filter to workspaces (substring match)")
}

// loadConfig returns the config file values, falling back to defaults when
// the file is unreadable. Overrides are read through apiURL and logLevel so
// that saving cfg never persists them.
func loadConfig() config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "  Config error, using defaults: %v\n", err)
		cfg = config.DefaultConfig()
	}
	return cfg
}

// apiURL is the effective base URL: --api-url, then ODASH_API_URL, then the file.
func apiURL(cfg config.Config) string {
	if flagAPIURL != "" {
		return flagAPIURL
	}
	return config.GetBaseURL(cfg)
}

func logLevel(cfg config.Config) string {
	return config.GetLogLevel(cfg)
}

func parseLevel(s string) zapcore.Level {
	lvl, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return lvl
}

// newConsoleLogger writes human-readable logs to stderr.
func newConsoleLogger(level string) *zap.Logger {
	zc := zap.NewDevelopmentConfig()
	zc.Level = zap.NewAtomicLevelAt(parseLevel(level))
	zc.DisableCaller = true
	zc.DisableStacktrace = true
	zc.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.TimeOnly)
	zc.OutputPaths = []string{"stderr"}
	logger, err := zc.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// newJSONLogger writes structured logs to path ("stderr" or a file).
func newJSONLogger(level, path string) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(parseLevel(level))
	zc.OutputPaths = []string{path}
	zc.ErrorOutputPaths = []string{path}
	return zc.Build()
}

// session bundles everything a command needs to talk to the API.
type session struct {
	cfg    config.Config
	log    *zap.Logger
	client *dashapi.Client
	cache  *store.Cache
	store  *dashboard.Store
}

func newSession(cfg config.Config, log *zap.Logger) (*session, error) {
	s := &session{cfg: cfg, log: log}

	if !flagNoCache {
		cache, err := store.Open(store.CachePath())
		if err != nil {
			log.Warn("snapshot cache unavailable", zap.Error(err))
		} else {
			s.cache = cache
		}
	}
	if flagOffline {
		if s.cache == nil {
			return nil, errors.New("--offline needs the snapshot cache")
		}
		return s, nil
	}

	base := apiURL(cfg)
	s.client = dashapi.NewClient(base, dashapi.WithTimeout(cfg.Timeout()))
	if s.client == nil {
		s.Close()
		return nil, fmt.Errorf("invalid API base URL %q", base)
	}

	opts := []dashboard.Option{dashboard.WithLogger(log)}
	if s.cache != nil {
		opts = append(opts, dashboard.WithRecorder(s.cache))
	}
	s.store = dashboard.New(s.client, opts...)
	return s, nil
}

func (s *session) Close() {
	if s.store != nil {
		s.store.Close()
	}
	if s.cache != nil {
		_ = s.cache.Close()
	}
}

// withSession runs fn with a session configured for CLI output.
func withSession(fn func(s *session) error) error {
	cfg := loadConfig()
	level := logLevel(cfg)
	if flagQuiet {
		level = "error"
	}
	log := newConsoleLogger(level)
	defer func() { _ = log.Sync() }()

	s, err := newSession(cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()
	return fn(s)
}

// laneResult is one lane's data and where it came from.
type laneResult[T any] struct {
	Data      T         `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
	Cached    bool      `json:"cached"`
}

// loadLane fetches a lane live, falling back to the cached snapshot when the
// fetch fails. With --offline only the cache is read.
func loadLane[T any](s *session, lane model.Lane, fetch func(context.Context) (T, error)) (laneResult[T], error) {
	var res laneResult[T]

	if flagOffline {
		at, err := s.cache.LoadSnapshot(lane, &res.Data)
		if errors.Is(err, store.ErrNoSnapshot) {
			return res, fmt.Errorf("no cached %s snapshot; run once online first", lane)
		}
		res.FetchedAt, res.Cached = at, true
		return res, err
	}

	if !flagQuiet {
		fmt.Fprintf(os.Stderr, "  Fetching %s from %s...\n", lane, s.client.Endpoint(lane))
	}

	data, err := fetch(context.Background())
	if err == nil {
		res.Data, res.FetchedAt = data, time.Now()
		return res, nil
	}

	if s.cache == nil {
		return res, err
	}
	at, cerr := s.cache.LoadSnapshot(lane, &res.Data)
	if cerr != nil {
		return res, err
	}
	res.FetchedAt, res.Cached = at, true
	if !flagQuiet {
		fmt.Fprintln(os.Stderr, cli.RenderWarning("  Live fetch failed, showing cached snapshot"))
	}
	return res, nil
}

// sourceNote describes where printed data came from.
func sourceNote(fetchedAt time.Time, cached bool) string {
	if cached {
		return cli.RenderMuted("  Snapshot from " + cli.FormatAge(fetchedAt, time.Now()))
	}
	return cli.RenderMuted("  Live data, " + fetchedAt.Local().Format(time.DateTime))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func withData[T any](res laneResult[T], data T) laneResult[T] {
	res.Data = data
	return res
}

func (s *session) fetchBasic(ctx context.Context) ([]model.BasicWorkspaceStats, error) {
	return s.store.FetchBasic(ctx)
}

func (s *session) fetchDetails(ctx context.Context) ([]model.DetailedWorkspaceStats, error) {
	return s.store.FetchDetails(ctx)
}

func (s *session) fetchReplyRates(ctx context.Context) (model.ReplyRateStats, error) {
	return s.store.FetchReplyRates(ctx)
}
