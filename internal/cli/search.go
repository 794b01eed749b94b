package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
	"github.com/maxsviluppo/Aitraffic/internal/services"
)

type locationFlags struct {
	lat, lng float64
	city     string
}

func (f *locationFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.lat, "lat", 0, "latitude of your position")
	cmd.Flags().Float64Var(&f.lng, "lng", 0, "longitude of your position")
	cmd.Flags().StringVar(&f.city, "city", "", "city name of your position")
}

// location returns nil unless both coordinates were given.
func (f *locationFlags) location(cmd *cobra.Command) *telemetry.Location {
	if !cmd.Flags().Changed("lat") || !cmd.Flags().Changed("lng") {
		return nil
	}
	return &telemetry.Location{Lat: f.lat, Lng: f.lng, City: f.city}
}

func parseType(s string) telemetry.TransportType {
	return telemetry.TransportType(strings.ToUpper(strings.TrimSpace(s)))
}

func newSearchCmd() *cobra.Command {
	var (
		typ      string
		loc      locationFlags
		markdown bool
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Search live transport and traffic information",
		Long: "Search live transport and traffic information. With --lat and --lng the\n" +
			"query may be omitted to search around your position.",
		RunE: func(cmd *cobra.Command, args []string) error {
			mode, err := modeFor(markdown, asJSON)
			if err != nil {
				return err
			}
			svc, err := getApp(cmd).service(cmd.Context())
			if err != nil {
				return err
			}

			result, err := svc.Search(cmd.Context(), services.Request{
				Query:    strings.Join(args, " "),
				Type:     parseType(typ),
				Location: loc.location(cmd),
			})
			if err != nil {
				return userError(err)
			}
			return writeResult(cmd.OutOrStdout(), result, mode)
		},
	}
	cmd.Flags().StringVarP(&typ, "type", "t", string(telemetry.ALL), "transport type: ALL|TRAIN|METRO|PLANE|SHIP|ROAD")
	loc.register(cmd)
	cmd.Flags().BoolVar(&markdown, "markdown", false, "print the answer as formatted markdown")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	return cmd
}
