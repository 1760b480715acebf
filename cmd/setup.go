package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/odash/internal/config"
	"github.com/theirongolddev/odash/internal/tui"
	"github.com/theirongolddev/odash/internal/tui/theme"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "First-time setup wizard",
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(_ *cobra.Command, _ []string) error {
	cfg, err := runSetupForm(loadConfig())
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Printf("  Saved to %s\n", config.Path())
	fmt.Printf("  API: %s\n", cfg.API.BaseURL)
	fmt.Println("  Run `odash setup` anytime to reconfigure.")
	fmt.Println()
	return nil
}

// runSetupForm shows the setup form seeded from cfg and saves the result.
func runSetupForm(cfg config.Config) (config.Config, error) {
	vals := tui.SetupValuesFrom(cfg)
	if err := tui.NewSetupForm(&vals).Run(); err != nil {
		return cfg, fmt.Errorf("setup: %w", err)
	}

	cfg, err := tui.ApplySetup(cfg, vals)
	if err != nil {
		return cfg, err
	}
	if err := config.Save(cfg); err != nil {
		return cfg, fmt.Errorf("saving config: %w", err)
	}
	theme.SetActive(cfg.Appearance.Theme)
	return cfg, nil
}
