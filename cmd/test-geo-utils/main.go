package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/maxsviluppo/Aitraffic/internal/lib/geo"
	"github.com/maxsviluppo/Aitraffic/internal/lib/mapview"
	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	geoUtils := geo.NewGeoUtils()

	switch command {
	case "point-distance":
		handlePointDistance(geoUtils)
	case "encode-polyline":
		handleEncodePolyline(geoUtils)
	case "decode-polyline":
		handleDecodePolyline(geoUtils)
	case "map-view":
		handleMapView()
	case "help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func handlePointDistance(geoUtils geo.GeoUtils) {
	fs := flag.NewFlagSet("point-distance", flag.ExitOnError)
	lat1 := fs.Float64("lat1", 0, "Latitude of first point")
	lng1 := fs.Float64("lng1", 0, "Longitude of first point")
	lat2 := fs.Float64("lat2", 0, "Latitude of second point")
	lng2 := fs.Float64("lng2", 0, "Longitude of second point")

	fs.Parse(os.Args[2:])

	if *lat1 == 0 && *lng1 == 0 && *lat2 == 0 && *lng2 == 0 {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils point-distance --lat1 45.4862 --lng1 9.2044 --lat2 45.0625 --lng2 7.6783")
		fmt.Println("  (Distance between Milano Centrale and Torino Porta Nuova)")
		os.Exit(1)
	}

	p1 := geo.Point{Latitude: *lat1, Longitude: *lng1}
	p2 := geo.Point{Latitude: *lat2, Longitude: *lng2}

	distance, err := geoUtils.PointToPoint(p1, p2)
	if err != nil {
		log.Fatalf("Error calculating distance: %v", err)
	}

	fmt.Printf("Distance between points:\n")
	fmt.Printf("  Point 1: (%.6f, %.6f)\n", p1.Latitude, p1.Longitude)
	fmt.Printf("  Point 2: (%.6f, %.6f)\n", p2.Latitude, p2.Longitude)
	fmt.Printf("  Distance: %.2f meters (%.2f km)\n", distance, distance/1000)
}

func handleEncodePolyline(geoUtils geo.GeoUtils) {
	fs := flag.NewFlagSet("encode-polyline", flag.ExitOnError)
	coords := fs.String("coords", "", "Semicolon separated lat,lng pairs")

	fs.Parse(os.Args[2:])

	if *coords == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils encode-polyline --coords \"41.9009,12.5018;40.8526,14.2727\"")
		os.Exit(1)
	}

	points, err := parseCoordinatePairs(*coords)
	if err != nil {
		log.Fatalf("Error parsing coordinates: %v", err)
	}

	fmt.Printf("Polyline encoded successfully:\n")
	fmt.Printf("  Points: %d\n", len(points))
	fmt.Printf("  Output: %s\n", geoUtils.EncodePolyline(points))
}

func handleDecodePolyline(geoUtils geo.GeoUtils) {
	fs := flag.NewFlagSet("decode-polyline", flag.ExitOnError)
	polylineStr := fs.String("polyline", "", "Encoded polyline string to decode")
	verbose := fs.Bool("verbose", false, "Show all decoded points")

	fs.Parse(os.Args[2:])

	if *polylineStr == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils decode-polyline --polyline \"_p~iF~ps|U_ulLnnqC_mqNvxq`@\"")
		fmt.Println("  test-geo-utils decode-polyline --polyline \"encoded_string\" --verbose")
		os.Exit(1)
	}

	points, err := geoUtils.DecodePolyline(*polylineStr)
	if err != nil {
		log.Fatalf("Error decoding polyline: %v", err)
	}

	fmt.Printf("Polyline decoded successfully:\n")
	fmt.Printf("  Input: %s\n", *polylineStr)
	fmt.Printf("  Points: %d\n", len(points))

	if len(points) > 0 {
		fmt.Printf("  Start: (%.6f, %.6f)\n", points[0].Latitude, points[0].Longitude)
		if len(points) > 1 {
			fmt.Printf("  End: (%.6f, %.6f)\n", points[len(points)-1].Latitude, points[len(points)-1].Longitude)
		}
	}

	if *verbose && len(points) > 0 {
		fmt.Printf("  All points:\n")
		for i, point := range points {
			fmt.Printf("    %d: (%.6f, %.6f)\n", i+1, point.Latitude, point.Longitude)
		}
	}
}

// handleMapView reads a model response and prints the map view it produces.
func handleMapView() {
	fs := flag.NewFlagSet("map-view", flag.ExitOnError)
	file := fs.String("file", "", "File holding a model response with a GEO_DATA directive")
	lat := fs.Float64("lat", 0, "User latitude")
	lng := fs.Float64("lng", 0, "User longitude")
	width := fs.Int("width", mapview.DefaultViewport.Width, "Viewport width in pixels")
	height := fs.Int("height", mapview.DefaultViewport.Height, "Viewport height in pixels")

	fs.Parse(os.Args[2:])

	if *file == "" {
		fmt.Println("Example usage:")
		fmt.Println("  test-geo-utils map-view --file answer.md --lat 41.9028 --lng 12.4964")
		os.Exit(1)
	}

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatalf("Error reading %s: %v", *file, err)
	}
	parsed := telemetry.Parse(string(raw))
	if parsed.DirectiveErr != nil {
		log.Printf("GEO_DATA ignored: %v", parsed.DirectiveErr)
	}

	var user *telemetry.Location
	if *lat != 0 || *lng != 0 {
		user = &telemetry.Location{Lat: *lat, Lng: *lng}
	}

	view := mapview.BuildFor(parsed.Points, user, mapview.Viewport{Width: *width, Height: *height})
	out, err := json.MarshalIndent(view, "", "  ")
	if err != nil {
		log.Fatalf("Error encoding view: %v", err)
	}
	fmt.Println(string(out))
}

func printUsage() {
	fmt.Printf(`test-geo-utils - Geographic utility testing tool

USAGE:
    test-geo-utils <command> [options]

COMMANDS:
    point-distance      Calculate great-circle distance between two points
    encode-polyline     Encode lat,lng pairs as a polyline string
    decode-polyline     Decode polyline string to coordinates
    map-view            Show markers, bounds and zoom for a model response
    help               Show this help message

EXAMPLES:
    # Distance between Milano Centrale and Torino Porta Nuova
    test-geo-utils point-distance --lat1 45.4862 --lng1 9.2044 --lat2 45.0625 --lng2 7.6783

    # Encode Roma Termini to Napoli Centrale
    test-geo-utils encode-polyline --coords "41.9009,12.5018;40.8526,14.2727"

    # Decode polyline to see coordinates
    test-geo-utils decode-polyline --polyline "encoded_string" --verbose

    # Fit a saved response on an 800x450 map
    test-geo-utils map-view --file answer.md

For more information, visit: https://github.com/maxsviluppo/Aitraffic
`)
}

// Helper function to parse coordinate pairs from string
func parseCoordinatePairs(coordStr string) ([]geo.Point, error) {
	if coordStr == "" {
		return nil, fmt.Errorf("empty coordinate string")
	}

	pairs := strings.Split(coordStr, ";")
	points := make([]geo.Point, 0, len(pairs))

	for _, pair := range pairs {
		coords := strings.Split(strings.TrimSpace(pair), ",")
		if len(coords) != 2 {
			return nil, fmt.Errorf("invalid coordinate pair: %s", pair)
		}

		lat, err := strconv.ParseFloat(strings.TrimSpace(coords[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude: %s", coords[0])
		}

		lng, err := strconv.ParseFloat(strings.TrimSpace(coords[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude: %s", coords[1])
		}

		points = append(points, geo.Point{Latitude: lat, Longitude: lng})
	}

	return points, nil
}
