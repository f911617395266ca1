package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/bnema/stretchres/internal/display"
	"github.com/bnema/stretchres/internal/ui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	// ErrNotInteractive is returned when pick runs without a terminal
	ErrNotInteractive = errors.New("pick requires an interactive terminal")

	isInteractive = func() bool {
		return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	}
	runWizard = ui.RunWizard
)

var pickCmd = &cobra.Command{
	Use:   "pick",
	Short: "Choose a display and resolution from a form",
	Long:  `Open an interactive form listing the detected displays, then apply the chosen resolution.`,
	Args:  cobra.NoArgs,
	RunE:  runPick,
}

func init() {
	rootCmd.AddCommand(pickCmd)
}

func runPick(cmd *cobra.Command, args []string) error {
	if !isInteractive() {
		return fmt.Errorf("%w; use 'stretchres set' instead", ErrNotInteractive)
	}

	backend, err := openDisplayBackend()
	if err != nil {
		return err
	}
	defer backend.Close()

	displays, err := display.List(backend)
	if err != nil {
		return fmt.Errorf("failed to list displays: %w", err)
	}
	if len(displays) == 0 {
		return fmt.Errorf("no displays detected")
	}

	sel, err := runWizard(displays)
	if err != nil {
		return err
	}

	outcome, err := display.NewSetter(backend, setterOptions()).SetResolution(sel.Index, sel.Width, sel.Height)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), ui.NewStyles(cmd.OutOrStdout()).Outcome(outcome))
	if outcome.Status != display.StatusApplied {
		return fmt.Errorf("%w: display %d %s", ErrChangeFailed, outcome.Display, outcome.Status)
	}
	return nil
}
