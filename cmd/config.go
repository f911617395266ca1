package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/bnema/stretchres/internal/config"
	"github.com/bnema/stretchres/internal/display"
	"github.com/bnema/stretchres/internal/logger"
	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage stretchres configuration",
	Long:  `Show or initialize the stretchres configuration file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.Get()
		out := cmd.OutOrStdout()

		fmt.Fprintf(out, "Config file: %s\n\n", config.GetConfigPath())

		fmt.Fprintln(out, "[display]")
		fmt.Fprintf(out, "  backend = %s (available: %s)\n", cfg.Display.Backend, strings.Join(display.BackendNames(), ", "))
		fmt.Fprintf(out, "  max_displays = %d\n", cfg.Display.MaxDisplays)
		fmt.Fprintf(out, "  persist = %v\n", cfg.Display.Persist)
		fmt.Fprintf(out, "  revert_without_snapshot = %v\n", cfg.Display.RevertWithoutSnapshot)

		fmt.Fprintln(out, "\n[prompt]")
		fmt.Fprintf(out, "  quit_token = %s\n", cfg.Prompt.QuitToken)

		fmt.Fprintln(out, "\n[logging]")
		level := cfg.Logging.LogLevel
		if level == "" {
			level = "(LOG_LEVEL or warn)"
		}
		fmt.Fprintf(out, "  log_level = %s\n", level)

		return nil
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration file with defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath := config.GetConfigPath()
		force, _ := cmd.Flags().GetBool("force")

		if _, err := os.Stat(configPath); err == nil && !force {
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration file already exists at: %s\nUse --force to overwrite\n", configPath)
			return nil
		}

		if err := config.Save(); err != nil {
			return err
		}
		logger.Debugf("Wrote configuration to %s", configPath)

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration initialized at: %s\n", configPath)
		return nil
	},
}

func init() {
	configInitCmd.Flags().Bool("force", false, "Overwrite existing configuration")

	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
