package style

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"
)

// Kind groups actions and states into how they are shown
type Kind string

const (
	KindDone    Kind = "done"    // a link or copy was made, or is in place
	KindPending Kind = "pending" // nothing happened yet, or dry run
	KindWarning Kind = "warning" // a conflict was left alone
	KindError   Kind = "error"   // the destination failed
	KindMuted   Kind = "muted"   // skipped or not deployed
)

// Badge returns the pterm style used for short labels of a kind
func Badge(kind Kind) *pterm.Style {
	switch kind {
	case KindDone:
		return pterm.NewStyle(pterm.FgGreen, pterm.Bold)
	case KindPending:
		return pterm.NewStyle(pterm.FgYellow)
	case KindWarning:
		return pterm.NewStyle(pterm.FgYellow, pterm.Bold)
	case KindError:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// Indicator returns the single-character marker for a kind
func Indicator(kind Kind) string {
	switch kind {
	case KindDone:
		return SuccessIndicator
	case KindWarning:
		return WarningIndicator
	case KindError:
		return ErrorIndicator
	case KindPending:
		return PendingIndicator
	default:
		return InfoIndicator
	}
}

// TextStyle returns the lipgloss style for body text of a kind
func TextStyle(kind Kind) lipgloss.Style {
	switch kind {
	case KindDone:
		return SuccessStyle
	case KindWarning:
		return WarningStyle
	case KindError:
		return ErrorStyle
	case KindPending:
		return InfoStyle
	default:
		return MutedStyle
	}
}
