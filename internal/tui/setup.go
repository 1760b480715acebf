package tui

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/theirongolddev/odash/internal/config"
	"github.com/theirongolddev/odash/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// SetupValues backs the setup form fields.
type SetupValues struct {
	BaseURL     string
	TimeoutSec  string
	Theme       string
	AutoRefresh bool
}

// SetupValuesFrom seeds the form from an existing config.
func SetupValuesFrom(cfg config.Config) SetupValues {
	return SetupValues{
		BaseURL:     cfg.API.BaseURL,
		TimeoutSec:  strconv.Itoa(cfg.API.TimeoutSec),
		Theme:       cfg.Appearance.Theme,
		AutoRefresh: cfg.TUI.AutoRefresh,
	}
}

// NewSetupForm builds the first-run form. Results land in vals.
func NewSetupForm(vals *SetupValues) *huh.Form {
	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to odash").
				Description("Point odash at your dashboard API."),
			huh.NewInput().
				Title("API base URL").
				Placeholder(config.DefaultBaseURL).
				Value(&vals.BaseURL).
				Validate(validateBaseURL),
			huh.NewInput().
				Title("Request timeout (seconds)").
				Value(&vals.TimeoutSec).
				Validate(validateTimeout),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
			huh.NewConfirm().
				Title("Auto-refresh the dashboard?").
				Value(&vals.AutoRefresh),
		),
	)
}

// ApplySetup copies form values into cfg.
func ApplySetup(cfg config.Config, vals SetupValues) (config.Config, error) {
	if err := validateBaseURL(vals.BaseURL); err != nil {
		return cfg, err
	}
	if err := validateTimeout(vals.TimeoutSec); err != nil {
		return cfg, err
	}

	if u := strings.TrimSpace(vals.BaseURL); u != "" {
		cfg.API.BaseURL = strings.TrimRight(u, "/")
	}
	if s := strings.TrimSpace(vals.TimeoutSec); s != "" {
		cfg.API.TimeoutSec, _ = strconv.Atoi(s)
	}
	cfg.Appearance.Theme = theme.ByName(vals.Theme).Name
	cfg.TUI.AutoRefresh = vals.AutoRefresh
	return cfg, nil
}

// validateBaseURL accepts an empty value, meaning keep the default.
func validateBaseURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("enter an http(s) URL like %s", config.DefaultBaseURL)
	}
	return nil
}

func validateTimeout(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || n > 600 {
		return fmt.Errorf("enter a number of seconds between 1 and 600")
	}
	return nil
}
