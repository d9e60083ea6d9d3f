package cmd

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"golang.org/x/term"
)

// printMarkdown renders md on stdout. Markdown is styled only when stdout is
// a terminal, and printed as is otherwise or when rendering fails.
func printMarkdown(md string) {
	fmt.Print(renderMarkdown(md, term.IsTerminal(int(os.Stdout.Fd()))))
}

func renderMarkdown(md string, styled bool) string {
	if !styled {
		return md
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
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
