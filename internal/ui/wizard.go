package ui

import (
	"fmt"
	"strconv"

	"github.com/bnema/stretchres/internal/display"
	"github.com/bnema/stretchres/internal/prompt"
	"github.com/charmbracelet/huh"
)

// Selection is what the operator picked in the wizard
type Selection struct {
	Index  int // zero-based display ordinal
	Width  int
	Height int
}

// displayOptions labels each display with its number, description and mode
func displayOptions(displays []display.Display) []huh.Option[int] {
	options := make([]huh.Option[int], len(displays))
	for i, d := range displays {
		label := fmt.Sprintf("Display %d: %s", d.Index+1, d.Name)
		if d.Description != "" {
			label += " - " + d.Description
		}
		if d.HasMode {
			label += fmt.Sprintf(" [%s]", d.Mode)
		}
		options[i] = huh.NewOption(label, d.Index)
	}
	return options
}

func validateDimension(s string) error {
	if _, err := prompt.ParseDimension(s); err != nil {
		return fmt.Errorf("enter a positive number")
	}
	return nil
}

// RunWizard asks for a display and resolution with an interactive form
func RunWizard(displays []display.Display) (Selection, error) {
	if len(displays) == 0 {
		return Selection{}, fmt.Errorf("no displays to choose from")
	}

	index := displays[0].Index
	var width, height string
	if displays[0].HasMode {
		width = strconv.Itoa(int(displays[0].Mode.Width))
		height = strconv.Itoa(int(displays[0].Mode.Height))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title("Select Display").
				Description("Choose the display to change").
				Options(displayOptions(displays)...).
				Value(&index),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Width").
				Description("Desired width in pixels").
				Validate(validateDimension).
				Value(&width),
			huh.NewInput().
				Title("Height").
				Description("Desired height in pixels").
				Validate(validateDimension).
				Value(&height),
		),
	)

	if err := form.Run(); err != nil {
		return Selection{}, fmt.Errorf("resolution selection cancelled: %w", err)
	}

	w, err := prompt.ParseDimension(width)
	if err != nil {
		return Selection{}, err
	}
	h, err := prompt.ParseDimension(height)
	if err != nil {
		return Selection{}, err
	}
	return Selection{Index: index, Width: w, Height: h}, nil
}
