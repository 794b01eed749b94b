package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/maxsviluppo/Aitraffic/internal/lib/display"
	"github.com/maxsviluppo/Aitraffic/internal/lib/search"
	"github.com/maxsviluppo/Aitraffic/internal/services"
)

type outputMode int

const (
	outputTerminal outputMode = iota
	outputMarkdown
	outputJSON
)

func modeFor(markdown, asJSON bool) (outputMode, error) {
	switch {
	case markdown && asJSON:
		return 0, fmt.Errorf("--markdown and --json are mutually exclusive")
	case markdown:
		return outputMarkdown, nil
	case asJSON:
		return outputJSON, nil
	default:
		return outputTerminal, nil
	}
}

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#818cf8"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	bannerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15")).
			Background(lipgloss.Color("#dc2626")).Padding(0, 1)
)

func writeResult(w io.Writer, r *services.Result, mode outputMode) error {
	switch mode {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case outputMarkdown:
		if _, err := fmt.Fprintln(w, resultTitle(r)); err != nil {
			return err
		}
		return writeMarkdown(w, r.CleanedText)
	}

	var b strings.Builder
	b.WriteString(resultTitle(r) + "\n")
	if r.Alert {
		b.WriteString(bannerStyle.Render(display.AlertBanner) + "\n")
	}
	b.WriteString("\n" + display.Terminal(r.Nodes) + "\n")
	if len(r.Sources) > 0 {
		b.WriteString("\n" + titleStyle.Render("FONTI") + "\n")
		b.WriteString(sourceList(r.Sources))
	}
	if len(r.Points) > 0 {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("\nPunti mappa: %d", len(r.Points))) + "\n")
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func resultTitle(r *services.Result) string {
	return titleStyle.Render(fmt.Sprintf("[%s] %s", r.Timestamp, r.Query)) + " " +
		mutedStyle.Render(r.Type.Label())
}

func sourceList(sources []search.Source) string {
	var b strings.Builder
	for i, s := range sources {
		fmt.Fprintf(&b, "  %d. %s %s\n", i+1, s.Title, mutedStyle.Render(s.URI))
	}
	return b.String()
}

// writeMarkdown pretty prints raw markdown with glamour.
func writeMarkdown(w io.Writer, md string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}
