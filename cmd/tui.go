package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/odash/internal/config"
	"github.com/theirongolddev/odash/internal/tui"
	"github.com/theirongolddev/odash/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var flagTUILogFile string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive TUI dashboard",
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagTUILogFile, "log-file", "", "Write logs to this file (logging is off by default)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	if flagOffline {
		return errors.New("the dashboard needs a live API; drop --offline")
	}

	cfg := loadConfig()
	theme.SetActive(cfg.Appearance.Theme)

	if !config.Exists() {
		var err error
		if cfg, err = runSetupForm(cfg); err != nil {
			return err
		}
	}

	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	log := zap.NewNop()
	if flagTUILogFile != "" {
		l, err := newJSONLogger(logLevel(cfg), flagTUILogFile)
		if err != nil {
			return fmt.Errorf("open log file: %w", err)
		}
		log = l
	}
	defer func() { _ = log.Sync() }()

	s, err := newSession(cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()

	app := tui.NewApp(s.store, tui.Options{
		Source:          s.client.BaseURL(),
		Filter:          flagWorkspace,
		AutoRefresh:     cfg.TUI.AutoRefresh,
		RefreshInterval: cfg.RefreshInterval(),
		OnAutoRefreshToggle: func(enabled bool) error {
			saved, err := config.Load()
			if err != nil {
				return err
			}
			saved.TUI.AutoRefresh = enabled
			return config.Save(saved)
		},
	})
	defer app.Close()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
