package ui

import (
	"github.com/pterm/pterm"
)

// Confirm asks a yes/no question on the terminal. The default answer is no.
func Confirm(question string) (bool, error) {
	return pterm.DefaultInteractiveConfirm.
		WithDefaultText(question).
		WithDefaultValue(false).
		Show()
}
