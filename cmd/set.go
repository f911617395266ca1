package cmd

import (
	"errors"
	"fmt"

	"github.com/bnema/stretchres/internal/config"
	"github.com/bnema/stretchres/internal/display"
	"github.com/bnema/stretchres/internal/prompt"
	"github.com/bnema/stretchres/internal/ui"
	"github.com/spf13/cobra"
)

// ErrChangeFailed is returned when a display was missing or refused the mode
var ErrChangeFailed = errors.New("resolution change failed")

var setCmd = &cobra.Command{
	Use:   "set <display> <width> <height>",
	Short: "Change the resolution of one display",
	Long: `Change the resolution of one display without prompting.

The display number is 1-based. The command exits with status 1 if the display
does not exist or the system rejects the mode.`,
	Example: `  stretchres set 2 1920 1080
  stretchres set 1 1280 720 --no-persist`,
	Args: cobra.ExactArgs(3),
	RunE: runSet,
}

func init() {
	rootCmd.AddCommand(setCmd)
}

func runSet(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	number, err := prompt.ParseDisplayNumber(args[0], cfg.Display.MaxDisplays)
	if err != nil {
		return err
	}
	width, err := prompt.ParseDimension(args[1])
	if err != nil {
		return fmt.Errorf("width: %w", err)
	}
	height, err := prompt.ParseDimension(args[2])
	if err != nil {
		return fmt.Errorf("height: %w", err)
	}

	backend, err := openDisplayBackend()
	if err != nil {
		return err
	}
	defer backend.Close()

	outcome, err := display.NewSetter(backend, setterOptions()).SetResolution(number-1, width, height)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.NewStyles(cmd.OutOrStdout()).Outcome(outcome))
	if outcome.Status != display.StatusApplied {
		return fmt.Errorf("%w: display %d %s", ErrChangeFailed, outcome.Display, outcome.Status)
	}
	return nil
}
