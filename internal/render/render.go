// Package render formats API output for the terminal.
package render

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"
	"github.com/tidwall/pretty"
	"golang.org/x/term"
)

// Styles used by [Printer] when writing to a terminal.
var (
	// StyleBold marks headings and field names.
	StyleBold    = lipgloss.NewStyle().Bold(true)
	// StyleFaint is for secondary details such as IDs and timestamps.
	StyleFaint   = lipgloss.NewStyle().Faint(true)
	// StyleWarning is for recoverable errors, like a failed chat turn.
	StyleWarning = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	// StyleNumber highlights counts and scores.
	StyleNumber  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("69"))
)

// DefaultWidth is used when the output is not a terminal.
const DefaultWidth = 80

// Printer writes API output to Out. Markdown is only rendered, and JSON only
// colored, when Out is a terminal.
type Printer struct {
	Out   io.Writer
	Width int
	TTY   bool
}

// NewPrinter returns a printer for w, detecting whether it is a terminal and
// how wide it is.
func NewPrinter(w io.Writer) *Printer {
	p := &Printer{Out: w, Width: DefaultWidth}

	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		p.TTY = true
		if width, _, err := term.GetSize(int(f.Fd())); err == nil && width > 0 {
			p.Width = width
		}
	}

	return p
}

// Markdown prints s, rendered as markdown on a terminal. If rendering fails
// the text is printed as is.
func (p *Printer) Markdown(s string) error {
	if !p.TTY {
		return p.Text(s)
	}

	out, err := Markdown(s, p.Width)
	if err != nil {
		return p.Text(s)
	}

	_, err = io.WriteString(p.Out, out)
	return err
}

// Text prints s followed by a newline.
func (p *Printer) Text(s string) error {
	_, err := fmt.Fprintln(p.Out, s)
	return err
}

// JSON prints an indented copy of the JSON document raw, colored on a
// terminal.
func (p *Printer) JSON(raw []byte) error {
	out := pretty.Pretty(raw)
	if p.TTY {
		out = pretty.Color(out, nil)
	}

	_, err := p.Out.Write(out)
	return err
}

// Field prints a bold label followed by a value.
func (p *Printer) Field(label string, value any) error {
	_, err := fmt.Fprintf(p.Out, "%s %v\n", p.style(StyleBold, label+":"), value)
	return err
}

// Warn prints s in the warning style.
func (p *Printer) Warn(s string) error {
	return p.Text(p.style(StyleWarning, s))
}

// Faint prints s in the faint style.
func (p *Printer) Faint(s string) error {
	return p.Text(p.style(StyleFaint, s))
}

// Number formats n in the number style.
func (p *Printer) Number(n any) string {
	return p.style(StyleNumber, fmt.Sprint(n))
}

func (p *Printer) style(style lipgloss.Style, s string) string {
	if !p.TTY {
		return s
	}
	return style.Render(s)
}

// Markdown renders s for a terminal of the given width.
func Markdown(s string, width int) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithStylePath("dark"),
		glamour.WithWordWrap(width),
		glamour.WithPreservedNewLines(),
	)
	if err != nil {
		return "", fmt.Errorf("failed to create markdown renderer: %w", err)
	}

	out, err := r.Render(s)
	if err != nil {
		return "", fmt.Errorf("failed to render markdown: %w", err)
	}

	return out, nil
}
