package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/bnema/stretchres/internal/display"
	"github.com/bnema/stretchres/internal/ui"
	"github.com/spf13/cobra"
)

// ListOutput is the --json document
type ListOutput struct {
	Backend  string        `json:"backend,omitempty"`
	Displays []DisplayInfo `json:"displays"`
	Error    string        `json:"error,omitempty"`
}

// DisplayInfo describes one display in the --json document
type DisplayInfo struct {
	Number      int    `json:"number"`
	Device      string `json:"device"`
	Description string `json:"description,omitempty"`
	Primary     bool   `json:"primary"`
	Attached    bool   `json:"attached"`
	Active      bool   `json:"active"`
	X           int32  `json:"x"`
	Y           int32  `json:"y"`
	Width       uint32 `json:"width"`
	Height      uint32 `json:"height"`
	Frequency   uint32 `json:"frequency,omitempty"`
	Orientation string `json:"orientation,omitempty"`
}

var (
	jsonOutput bool
	verbose    bool
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List displays and their current modes",
	Long:    `Show the displays the backend reports, numbered the way the prompt and set command expect.`,
	Args:    cobra.NoArgs,
	RunE:    runList,
}

func init() {
	listCmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	listCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show one block per display instead of a table")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()

	backend, err := openDisplayBackend()
	if err != nil {
		if jsonOutput {
			return json.NewEncoder(out).Encode(ListOutput{Displays: []DisplayInfo{}, Error: err.Error()})
		}
		return err
	}
	defer backend.Close()

	displays, err := display.List(backend)
	if err != nil {
		return fmt.Errorf("failed to list displays: %w", err)
	}

	if jsonOutput {
		doc := ListOutput{
			Backend:  backend.Name(),
			Displays: make([]DisplayInfo, len(displays)),
		}
		for i, d := range displays {
			doc.Displays[i] = toDisplayInfo(d)
		}
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	}

	if len(displays) == 0 {
		fmt.Fprintln(out, "No displays detected")
		return nil
	}

	styles := ui.NewStyles(out)
	if verbose {
		for _, d := range displays {
			fmt.Fprintln(out, styles.DisplayLine(d))
		}
	} else {
		fmt.Fprintln(out, styles.DisplayTable(displays))
	}

	if len(displays) > 1 {
		w, h := display.VirtualBounds(displays)
		if w > 0 && h > 0 {
			fmt.Fprintln(out, styles.Subtle.Render(fmt.Sprintf("Total virtual screen: %dx%d", w, h)))
		}
	}
	return nil
}

func toDisplayInfo(d display.Display) DisplayInfo {
	info := DisplayInfo{
		Number:      d.Index + 1,
		Device:      d.Name,
		Description: d.Description,
		Primary:     d.Primary(),
		Attached:    d.Attached(),
		Active:      d.HasMode,
	}
	if d.HasMode {
		info.X, info.Y = d.Mode.PositionX, d.Mode.PositionY
		info.Width, info.Height = d.Mode.Width, d.Mode.Height
		info.Frequency = d.Mode.Frequency
		if d.Mode.Fields.Has(display.FieldDisplayOrientation) {
			info.Orientation = d.Mode.Orientation.String()
		}
	}
	return info
}
