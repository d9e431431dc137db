// Package text provides plain text output without any styling
package text

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/arthur-debert/confman/pkg/ui/view"
)

// Painter decorates text fragments. The plain painter leaves them alone.
type Painter interface {
	Title(s string) string
	Muted(s string) string
	Path(s string) string
	// Kind colors s the way a display kind is shown
	Kind(kind, s string) string
	// Marker returns the one-character marker of a kind
	Marker(kind string) string
}

type plain struct{}

func (plain) Title(s string) string { return s }
func (plain) Muted(s string) string { return s }
func (plain) Path(s string) string { return s }
func (plain) Kind(_, s string) string { return s }
func (plain) Marker(kind string) string {
	switch kind {
	case view.KindDone:
		return "+"
	case view.KindPending:
		return "~"
	case view.KindWarning:
		return "!"
	case view.KindError:
		return "x"
	default:
		return "-"
	}
}

// Renderer provides line-oriented output
type Renderer struct {
	output  io.Writer
	verbose bool
	paint   Painter
}

// New creates a plain text renderer
func New(output io.Writer, verbose bool) *Renderer {
	return NewPainted(output, verbose, plain{})
}

// NewPainted creates a renderer decorating its output with p
func NewPainted(output io.Writer, verbose bool, p Painter) *Renderer {
	return &Renderer{output: output, verbose: verbose, paint: p}
}

// RenderRun prints one block per module followed by a summary line
func (r *Renderer) RenderRun(run *view.Run) error {
	var b strings.Builder
	if run.DryRun {
		fmt.Fprintln(&b, r.paint.Kind(view.KindPending, "DRY RUN: no changes were made"))
		fmt.Fprintln(&b)
	}

	if run.Operation == "status" {
		r.writeStatusTable(&b, run)
	} else {
		for _, m := range run.Modules {
			r.writeModule(&b, m)
		}
	}

	if run.Error != "" {
		fmt.Fprintf(&b, "%s %s\n", r.paint.Marker(view.KindError), r.paint.Kind(view.KindError, run.Error))
	}
	fmt.Fprintln(&b, r.summary(run))

	_, err := io.WriteString(r.output, b.String())
	return err
}

func (r *Renderer) writeModule(b *strings.Builder, m view.Module) {
	fmt.Fprintf(b, "%s %s %s\n", r.paint.Marker(m.Kind), r.paint.Title(m.Name), r.paint.Muted("("+m.Source+")"))
	if m.Error != "" {
		fmt.Fprintf(b, "    %s\n", r.paint.Kind(view.KindError, m.Error))
		if m.Retryable {
			fmt.Fprintf(b, "    %s\n", r.paint.Muted("this may be temporary, run the command again"))
		}
	}
	if m.Note != "" {
		fmt.Fprintf(b, "    %s\n", r.paint.Muted(m.Note))
	}

	shown := 0
	for _, f := range m.Files {
		if !f.Notable && !r.verbose {
			continue
		}
		shown++
		line := fmt.Sprintf("    %s %-9s %s %s %s",
			r.paint.Marker(f.Kind),
			f.Action,
			r.paint.Path(f.Destination),
			r.paint.Muted("<-"),
			f.Source)
		if f.Detail != "" {
			line += " " + r.paint.Muted("("+f.Detail+")")
		}
		fmt.Fprintln(b, r.paint.Kind(f.Kind, line))
		if f.Error != "" && r.verbose {
			fmt.Fprintf(b, "        %s\n", r.paint.Muted(f.Error))
		}
	}
	if shown == 0 && len(m.Files) > 0 {
		fmt.Fprintf(b, "    %s\n", r.paint.Muted(fmt.Sprintf("%d destinations up to date", len(m.Files))))
	}
	if m.CacheRemoved {
		fmt.Fprintf(b, "    %s\n", r.paint.Muted("removed fetched source"))
	}
}

func (r *Renderer) writeStatusTable(b *strings.Builder, run *view.Run) {
	table := tablewriter.NewWriter(b)
	table.SetHeader([]string{"Module", "Destination", "State", "Source"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	rows := 0
	for _, m := range run.Modules {
		for _, f := range m.Files {
			state := f.State
			if f.Detail != "" {
				state += " (" + f.Detail + ")"
			}
			table.Append([]string{m.Name, f.Destination, r.paint.Kind(f.Kind, state), f.Source})
			rows++
		}
	}
	if rows > 0 {
		table.Render()
	}

	for _, m := range run.Modules {
		if m.Error != "" {
			fmt.Fprintf(b, "%s %s: %s\n", r.paint.Marker(view.KindError), r.paint.Title(m.Name), r.paint.Kind(view.KindError, m.Error))
		}
	}
}

func (r *Renderer) summary(run *view.Run) string {
	counts := run.Counts()
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%d %s", counts[k], k))
	}

	kind := view.KindDone
	switch run.Outcome {
	case "failed":
		kind = view.KindError
	case "succeeded with warnings":
		kind = view.KindWarning
	}

	line := fmt.Sprintf("%s %s", run.Operation, run.Outcome)
	if len(parts) > 0 {
		line += ": " + strings.Join(parts, ", ")
	}
	return r.paint.Kind(kind, line)
}

// RenderInfo prints the configuration summary as markdown source
func (r *Renderer) RenderInfo(info *view.Info) error {
	_, err := io.WriteString(r.output, info.Markdown())
	return err
}

// RenderError renders an error as plain text
func (r *Renderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.output, "Error: %v\n", err)
	return werr
}

// RenderMessage renders a simple message
func (r *Renderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.output, msg)
	return err
}
