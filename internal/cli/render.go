package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxsviluppo/Aitraffic/internal/lib/display"
	"github.com/maxsviluppo/Aitraffic/internal/lib/mapview"
	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
)

// readInput reads a file, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) (string, error) {
	if path == "-" {
		b, err := io.ReadAll(cmd.InOrStdin())
		return string(b), err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func parseInput(cmd *cobra.Command, path string) (telemetry.ParsedResult, error) {
	raw, err := readInput(cmd, path)
	if err != nil {
		return telemetry.ParsedResult{}, err
	}
	parsed := telemetry.Parse(raw)
	if parsed.DirectiveErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: GEO_DATA ignored: %v\n", parsed.DirectiveErr)
	}
	return parsed, nil
}

func newRenderCmd() *cobra.Command {
	var (
		markdown bool
		asHTML   bool
	)
	cmd := &cobra.Command{
		Use:   "render <file>",
		Short: "Render a saved model response offline",
		Long:  "Parse and render a saved model response. Use - to read from stdin.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if markdown && asHTML {
				return fmt.Errorf("--markdown and --html are mutually exclusive")
			}
			parsed, err := parseInput(cmd, args[0])
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			switch {
			case markdown:
				return writeMarkdown(w, parsed.CleanedText)
			case asHTML:
				if err := display.WriteHTML(w, display.Render(parsed.CleanedText)); err != nil {
					return err
				}
				_, err := fmt.Fprintln(w)
				return err
			}

			var b strings.Builder
			if display.HasAlert(parsed.CleanedText) {
				b.WriteString(bannerStyle.Render(display.AlertBanner) + "\n\n")
			}
			b.WriteString(display.Terminal(display.Render(parsed.CleanedText)) + "\n")
			if len(parsed.Points) > 0 {
				b.WriteString(mutedStyle.Render(fmt.Sprintf("\nPunti mappa: %d", len(parsed.Points))) + "\n")
			}
			_, err = io.WriteString(w, b.String())
			return err
		},
	}
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the text as formatted markdown")
	cmd.Flags().BoolVar(&asHTML, "html", false, "print an HTML fragment")
	return cmd
}

func newKMLCmd() *cobra.Command {
	var (
		name   string
		output string
	)
	cmd := &cobra.Command{
		Use:   "kml <file>",
		Short: "Export the map points of a saved model response as KML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := parseInput(cmd, args[0])
			if err != nil {
				return err
			}
			if name == "" {
				name = "TRANSITO"
				if args[0] != "-" {
					name = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
				}
			}

			if output == "" || output == "-" {
				return mapview.WriteKML(cmd.OutOrStdout(), name, parsed.Points)
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := mapview.WriteKML(f, name, parsed.Points); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d points to %s\n", len(parsed.Points), output)
			return nil
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "document name (defaults to the file name)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (defaults to stdout)")
	return cmd
}
