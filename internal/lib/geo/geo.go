package geo

import (
	"errors"
	"math"
	"sort"

	"github.com/twpayne/go-polyline"

	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
)

const earthRadius = 6371000

var errInvalidCoordinates = errors.New("invalid coordinates: latitude must be [-90, 90], longitude must be [-180, 180]")

// geoUtils implements the GeoUtils interface
type geoUtils struct{}

// NewGeoUtils creates a new GeoUtils implementation
func NewGeoUtils() GeoUtils {
	return &geoUtils{}
}

// PointToPoint calculates great-circle distance between two points using Haversine formula
func (g *geoUtils) PointToPoint(p1, p2 Point) (float64, error) {
	if !IsValid(p1) || !IsValid(p2) {
		return 0, errInvalidCoordinates
	}

	if p1 == p2 {
		return 0, nil
	}

	lat1 := p1.Latitude * math.Pi / 180
	lon1 := p1.Longitude * math.Pi / 180
	lat2 := p2.Latitude * math.Pi / 180
	lon2 := p2.Longitude * math.Pi / 180

	dlat := lat2 - lat1
	dlon := lon2 - lon1

	a := math.Sin(dlat/2)*math.Sin(dlat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dlon/2)*math.Sin(dlon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadius * c, nil
}

// DistanceFromCoords calculates distance between two coordinate pairs
func (g *geoUtils) DistanceFromCoords(lat1, lon1, lat2, lon2 float64) (float64, error) {
	return g.PointToPoint(Point{Latitude: lat1, Longitude: lon1}, Point{Latitude: lat2, Longitude: lon2})
}

// EncodePolyline encodes points in order with precision 5.
func (g *geoUtils) EncodePolyline(points []Point) string {
	if len(points) == 0 {
		return ""
	}
	coords := make([][]float64, len(points))
	for i, p := range points {
		coords[i] = []float64{p.Latitude, p.Longitude}
	}
	return string(polyline.EncodeCoords(coords))
}

// DecodePolyline decodes Google polyline string to point sequence
func (g *geoUtils) DecodePolyline(encoded string) ([]Point, error) {
	if encoded == "" {
		return nil, errors.New("encoded polyline string is empty")
	}

	coords, _, err := polyline.DecodeCoords([]byte(encoded))
	if err != nil {
		return nil, errors.New("failed to decode polyline: " + err.Error())
	}

	points := make([]Point, len(coords))
	for i, coord := range coords {
		points[i] = Point{Latitude: coord[0], Longitude: coord[1]}
		if !IsValid(points[i]) {
			return nil, errors.New("decoded polyline contains invalid coordinates")
		}
	}

	return points, nil
}

// BoundsOf returns false when no point has valid coordinates.
func (g *geoUtils) BoundsOf(points []Point) (Bounds, bool) {
	var b Bounds
	found := false
	for _, p := range points {
		if !IsValid(p) {
			continue
		}
		if !found {
			b = Bounds{South: p.Latitude, North: p.Latitude, West: p.Longitude, East: p.Longitude}
			found = true
			continue
		}
		b.South = math.Min(b.South, p.Latitude)
		b.North = math.Max(b.North, p.Latitude)
		b.West = math.Min(b.West, p.Longitude)
		b.East = math.Max(b.East, p.Longitude)
	}
	return b, found
}

// FilterMapPoints drops points with invalid coordinates and those farther
// than maxDistanceMeters from center. Ties keep their original order.
func (g *geoUtils) FilterMapPoints(points []telemetry.MapPoint, center Point, maxDistanceMeters float64) ([]telemetry.MapPoint, error) {
	if !IsValid(center) {
		return nil, errors.New("invalid center point coordinates")
	}

	type ranked struct {
		point    telemetry.MapPoint
		distance float64
	}

	var kept []ranked
	for _, p := range points {
		distance, err := g.PointToPoint(center, FromMapPoint(p))
		if err != nil {
			continue
		}
		if distance <= maxDistanceMeters {
			kept = append(kept, ranked{point: p, distance: distance})
		}
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].distance < kept[j].distance })

	filtered := make([]telemetry.MapPoint, len(kept))
	for i, r := range kept {
		filtered[i] = r.point
	}
	return filtered, nil
}

// IsValid validates latitude and longitude values
func IsValid(point Point) bool {
	return point.Latitude >= -90 && point.Latitude <= 90 &&
		point.Longitude >= -180 && point.Longitude <= 180
}
