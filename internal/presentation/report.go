// Package presentation renders action run reports for the terminal.
package presentation

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/muesli/termenv"

	"github.com/formworks/bindery/pkg/domain"
)

// RunReport pairs an action id with the result of executing it.
type RunReport struct {
	ID     string
	Result domain.ActionResult
}

// Markdown builds a markdown summary of a chain run. Skipped entries (zero
// results after a short-circuit) are reported as such.
func Markdown(reports []RunReport) string {
	var b strings.Builder

	b.WriteString("# Action Run\n\n")
	for _, r := range reports {
		switch {
		case r.Result.Success:
			fmt.Fprintf(&b, "## ✔ %s\n\n", r.ID)
			if r.Result.Data != nil {
				fmt.Fprintf(&b, "```\n%v\n```\n\n", r.Result.Data)
			}
		case r.Result.Error != "":
			fmt.Fprintf(&b, "## ✘ %s\n\n", r.ID)
			fmt.Fprintf(&b, "> %s\n\n", r.Result.Error)
		default:
			fmt.Fprintf(&b, "## – %s (skipped)\n\n", r.ID)
		}
	}
	return b.String()
}

// Render converts the report markdown to styled terminal output. It falls
// back to the raw markdown when the terminal renderer cannot be built.
func Render(reports []RunReport) string {
	md := Markdown(reports)

	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	if err != nil {
		return md
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// StatusLine formats a one-line colored verdict for a run.
func StatusLine(ok bool, detail string) string {
	p := termenv.ColorProfile()
	if ok {
		return termenv.String("✔ " + detail).Foreground(p.Color("#22c55e")).String()
	}
	return termenv.String("✘ " + detail).Foreground(p.Color("#ef4444")).String()
}
