package geo

import "github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"

// Point represents a geographic coordinate
type Point struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lng"`
}

// Bounds is the smallest box holding a set of points.
type Bounds struct {
	South float64 `json:"south"`
	West  float64 `json:"west"`
	North float64 `json:"north"`
	East  float64 `json:"east"`
}

// Center returns the midpoint of the box.
func (b Bounds) Center() Point {
	return Point{Latitude: (b.South + b.North) / 2, Longitude: (b.West + b.East) / 2}
}

// GeoUtils interface defines geographic calculation utilities
type GeoUtils interface {
	// Calculate great-circle distance between two points in meters
	PointToPoint(p1, p2 Point) (float64, error)

	// Calculate distance between coordinate pairs (convenience method)
	DistanceFromCoords(lat1, lon1, lat2, lon2 float64) (float64, error)

	// Encode a point sequence as a Google polyline string
	EncodePolyline(points []Point) string

	// Decode Google polyline string to point sequence
	DecodePolyline(encoded string) ([]Point, error)

	// Smallest box containing every valid point
	BoundsOf(points []Point) (Bounds, bool)

	// Keep map points within maxDistanceMeters of center, nearest first
	FilterMapPoints(points []telemetry.MapPoint, center Point, maxDistanceMeters float64) ([]telemetry.MapPoint, error)
}

// FromMapPoint converts a directive point.
func FromMapPoint(p telemetry.MapPoint) Point {
	return Point{Latitude: p.Lat, Longitude: p.Lng}
}

// FromLocation converts a GPS location.
func FromLocation(l telemetry.Location) Point {
	return Point{Latitude: l.Lat, Longitude: l.Lng}
}
