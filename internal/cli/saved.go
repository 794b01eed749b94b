package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
	"github.com/maxsviluppo/Aitraffic/internal/store"
)

func newSavedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saved",
		Short: "Manage saved searches",
	}
	cmd.AddCommand(newSavedListCmd())
	cmd.AddCommand(newSavedToggleCmd())
	cmd.AddCommand(newSavedDeleteCmd())
	cmd.AddCommand(newSavedRunCmd())
	return cmd
}

func newSavedListCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List saved searches",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getApp(cmd).service(cmd.Context())
			if err != nil {
				return err
			}
			saved, err := svc.ListSaved(cmd.Context())
			if err != nil {
				return err
			}

			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(saved)
			}
			if len(saved) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nessuna ricerca salvata")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), savedTable(saved))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print as JSON")
	return cmd
}

var (
	delayStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#ef4444"))
	regularStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#10b981"))
)

func savedTable(saved []store.SavedSearch) string {
	rows := make([][]string, 0, len(saved))
	for _, s := range saved {
		status := regularStyle.Render("REGOLARE")
		if s.LastKnownDelay {
			status = delayStyle.Render("RITARDO")
		}
		rows = append(rows, []string{
			s.ID,
			s.Query,
			s.Type.Label(),
			status,
			time.UnixMilli(s.Timestamp).Local().Format("2006-01-02 15:04"),
		})
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("240"))).
		Headers("ID", "QUERY", "TIPO", "STATO", "SALVATA").
		Rows(rows...).
		String()
}

func newSavedToggleCmd() *cobra.Command {
	var typ string
	cmd := &cobra.Command{
		Use:   "toggle <query>",
		Short: "Save a search, or remove it if already saved",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getApp(cmd).service(cmd.Context())
			if err != nil {
				return err
			}
			saved, added, err := svc.ToggleSaved(cmd.Context(), strings.Join(args, " "), parseType(typ))
			if err != nil {
				return err
			}
			verb := "removed"
			if added {
				verb = "saved"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", saved.ID, verb, saved.Query)
			return nil
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", string(telemetry.ALL), "transport type: ALL|TRAIN|METRO|PLANE|SHIP|ROAD")
	return cmd
}

func newSavedDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved search",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := getApp(cmd).service(cmd.Context())
			if err != nil {
				return err
			}
			if err := svc.DeleteSaved(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\tdeleted\n", args[0])
			return nil
		},
	}
}

func newSavedRunCmd() *cobra.Command {
	var (
		loc      locationFlags
		markdown bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "run <id>",
		Short: "Run a saved search again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := modeFor(markdown, asJSON)
			if err != nil {
				return err
			}
			svc, err := getApp(cmd).service(cmd.Context())
			if err != nil {
				return err
			}
			result, err := svc.RunSaved(cmd.Context(), args[0], loc.location(cmd))
			if err != nil {
				return userError(err)
			}
			return writeResult(cmd.OutOrStdout(), result, mode)
		},
	}
	loc.register(cmd)
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the answer as formatted markdown")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}
