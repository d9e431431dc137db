// Package ui provides a unified interface for rendering output in different formats.
// It supports terminal (rich), text (plain), and structured (json, yaml, toml) output.
package ui

import (
	"io"
	"os"

	"github.com/arthur-debert/confman/pkg/errors"
	"github.com/arthur-debert/confman/pkg/ui/data"
	"github.com/arthur-debert/confman/pkg/ui/terminal"
	"github.com/arthur-debert/confman/pkg/ui/text"
	"github.com/arthur-debert/confman/pkg/ui/view"
)

// Renderer is the common interface for all output renderers
type Renderer interface {
	// RenderRun renders the result of an engine operation
	RenderRun(run *view.Run) error

	// RenderInfo renders a configuration summary
	RenderInfo(info *view.Info) error

	// RenderError renders an error with appropriate formatting
	RenderError(err error) error

	// RenderMessage renders a simple message
	RenderMessage(msg string) error
}

// Options tunes how much the text renderers print
type Options struct {
	// Verbose lists every destination, not only those that changed or need attention
	Verbose bool
}

// NewRenderer creates a new renderer based on the specified format.
// It automatically detects terminal capabilities when format is Auto.
func NewRenderer(format Format, output io.Writer, opts Options) (Renderer, error) {
	switch format {
	case FormatAuto:
		if file, ok := output.(*os.File); ok {
			return NewRenderer(DetectFormat(file), output, opts)
		}
		return NewRenderer(FormatText, output, opts)
	case FormatTerminal:
		return terminal.New(output, opts.Verbose), nil
	case FormatText:
		return text.New(output, opts.Verbose), nil
	case FormatJSON:
		return data.New(output, data.JSON), nil
	case FormatYAML:
		return data.New(output, data.YAML), nil
	case FormatTOML:
		return data.New(output, data.TOML), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}
