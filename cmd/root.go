package cmd

import (
	"fmt"
	"os"

	"github.com/bnema/stretchres/internal/config"
	"github.com/bnema/stretchres/internal/logger"
	"github.com/bnema/stretchres/internal/prompt"
	"github.com/bnema/stretchres/internal/ui"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	// Version is set during build
	Version = "0.1.0-dev"

	configFile  string
	backendFlag string
	noPersist   bool
	debug       bool

	rootCmd = &cobra.Command{
		Use:   "stretchres",
		Short: "stretchres - change display resolution",
		Long: `stretchres changes the resolution of an attached display.

Run without arguments to be prompted for a display number, width and height.
If the system rejects a mode, the previous settings are restored.`,
		Args:              cobra.NoArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initRuntime,
		RunE:              runPrompt,
	}
)

// Execute runs the root command
func Execute() error {
	rootCmd.Version = Version
	return rootCmd.Execute()
}

func init() {
	rootCmd.SetVersionTemplate(`{{with .Name}}{{printf "%s " .}}{{end}}{{printf "version %s\n" .Version}}`)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $XDG_CONFIG_HOME/stretchres/stretchres.toml)")
	rootCmd.PersistentFlags().StringVar(&backendFlag, "backend", "", "Display backend: auto, windows, x11, wlr-randr")
	rootCmd.PersistentFlags().BoolVar(&noPersist, "no-persist", false, "Apply changes to the current session only")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug logging")
}

// initRuntime loads .env, the config file and the log level. Precedence for
// the level is LOG_LEVEL, then logging.log_level, then --debug.
func initRuntime(cmd *cobra.Command, args []string) error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.Debugf("Error loading .env file: %v", err)
	}

	config.SetConfigPath(configFile)
	if err := config.Init(); err != nil {
		return err
	}

	logger.SetLevel(os.Getenv("LOG_LEVEL"))
	if level := config.Get().Logging.LogLevel; level != "" {
		logger.SetLevel(level)
	}
	if debug {
		logger.SetLevel("debug")
	}
	return nil
}

func runPrompt(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	setter := newLazySetter()
	defer setter.Close()

	out := cmd.OutOrStdout()
	styles := ui.NewStyles(out)

	loop := prompt.New(setter, cmd.InOrStdin(), out,
		prompt.WithMaxDisplays(cfg.Display.MaxDisplays),
		prompt.WithQuitToken(cfg.Prompt.QuitToken),
		prompt.WithOutcomeFormatter(styles.Outcome),
	)
	if err := loop.Run(); err != nil {
		return fmt.Errorf("prompt failed: %w", err)
	}
	return nil
}
