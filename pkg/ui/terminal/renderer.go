// Package terminal provides rich terminal output with colors and styling
package terminal

import (
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/arthur-debert/confman/pkg/style"
	"github.com/arthur-debert/confman/pkg/ui/text"
	"github.com/arthur-debert/confman/pkg/ui/view"
)

type painter struct{}

func (painter) Title(s string) string { return style.TitleStyle.Render(s) }
func (painter) Muted(s string) string { return style.MutedStyle.Render(s) }
func (painter) Path(s string) string { return style.PathStyle.Render(s) }

func (painter) Kind(kind, s string) string {
	if kind == view.KindDone {
		// done lines stay unstyled, the marker carries the color
		return s
	}
	return style.TextStyle(style.Kind(kind)).Render(s)
}

func (painter) Marker(kind string) string {
	return style.Indicator(style.Kind(kind))
}

// Renderer provides rich terminal output
type Renderer struct {
	*text.Renderer
	output io.Writer
	width  int
}

// New creates a terminal renderer
func New(output io.Writer, verbose bool) *Renderer {
	return &Renderer{
		Renderer: text.NewPainted(output, verbose, painter{}),
		output:   output,
		width:    100,
	}
}

// RenderInfo renders the configuration summary through glamour
func (r *Renderer) RenderInfo(info *view.Info) error {
	md := info.Markdown()
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(r.width),
	)
	if err != nil {
		// Fallback to plain markdown on error
		_, werr := io.WriteString(r.output, md)
		return werr
	}
	rendered, err := renderer.Render(md)
	if err != nil {
		_, werr := io.WriteString(r.output, md)
		return werr
	}
	_, err = io.WriteString(r.output, rendered)
	return err
}

// RenderError renders an error in the error style
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintln(r.output, style.ErrorStyle.Render(fmt.Sprintf("Error: %v", err)))
	return werr
}
