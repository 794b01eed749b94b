package mapview

import (
	"math"

	"github.com/maxsviluppo/Aitraffic/internal/lib/geo"
	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
)

const (
	DefaultZoom    = 6
	DefaultMaxZoom = 15
	DefaultPadding = 10
	tileSize       = 256
	userColor      = "indigo"
)

// DefaultCenter is used when there is nothing to fit: Rome.
var DefaultCenter = geo.Point{Latitude: 41.9028, Longitude: 12.4964}

// Viewport is the pixel size of the map the view is fitted to.
type Viewport struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// DefaultViewport matches the dashboard map panel.
var DefaultViewport = Viewport{Width: 800, Height: 450}

// Marker is one pin on the map.
type Marker struct {
	Lat    float64                 `json:"lat"`
	Lng    float64                 `json:"lng"`
	Label  string                  `json:"label,omitempty"`
	Type   telemetry.TransportType `json:"type,omitempty"`
	Status string                  `json:"status,omitempty"`
	Color  string                  `json:"color"`
}

// View is everything a map widget needs to show a result.
type View struct {
	Center   geo.Point   `json:"center"`
	Zoom     int         `json:"zoom"`
	MaxZoom  int         `json:"max_zoom"`
	Padding  int         `json:"padding"`
	Bounds   *geo.Bounds `json:"bounds,omitempty"`
	Markers  []Marker    `json:"markers"`
	User     *Marker     `json:"user,omitempty"`
	Polyline string      `json:"polyline,omitempty"`
}

// Build lays out points for the default viewport.
func Build(points []telemetry.MapPoint, user *telemetry.Location) View {
	return BuildFor(points, user, DefaultViewport)
}

// BuildFor lays out points and the optional user position. With at least
// one point the view fits every point plus the user; otherwise it centers on
// the user, or Rome, at the default zoom.
func BuildFor(points []telemetry.MapPoint, user *telemetry.Location, vp Viewport) View {
	g := geo.NewGeoUtils()

	view := View{
		Center:  DefaultCenter,
		Zoom:    DefaultZoom,
		MaxZoom: DefaultMaxZoom,
		Padding: DefaultPadding,
		Markers: make([]Marker, 0, len(points)),
	}

	if user != nil {
		view.User = &Marker{Lat: user.Lat, Lng: user.Lng, Color: userColor}
		view.Center = geo.FromLocation(*user)
	}

	path := make([]geo.Point, 0, len(points))
	for _, p := range points {
		view.Markers = append(view.Markers, Marker{
			Lat:    p.Lat,
			Lng:    p.Lng,
			Label:  p.Label,
			Type:   p.Type,
			Status: p.Status,
			Color:  p.Type.Color(),
		})
		path = append(path, geo.FromMapPoint(p))
	}

	if len(points) == 0 {
		return view
	}

	view.Polyline = g.EncodePolyline(path)

	fit := path
	if user != nil {
		fit = append(fit, geo.FromLocation(*user))
	}
	bounds, ok := g.BoundsOf(fit)
	if !ok {
		return view
	}
	view.Bounds = &bounds
	view.Center = bounds.Center()
	view.Zoom = fitZoom(bounds, vp, view.Padding, view.MaxZoom)
	return view
}

// fitZoom returns the largest integer zoom at which bounds fits inside the
// padded viewport in Web Mercator, capped at maxZoom.
func fitZoom(b geo.Bounds, vp Viewport, padding, maxZoom int) int {
	width := float64(vp.Width - 2*padding)
	height := float64(vp.Height - 2*padding)
	if width <= 0 || height <= 0 {
		return 0
	}

	zoom := float64(maxZoom)
	if fx := (b.East - b.West) / 360; fx > 0 {
		zoom = math.Min(zoom, math.Log2(width/(tileSize*fx)))
	}
	if fy := (mercatorY(b.North) - mercatorY(b.South)) / (2 * math.Pi); fy > 0 {
		zoom = math.Min(zoom, math.Log2(height/(tileSize*fy)))
	}

	z := int(math.Floor(zoom))
	if z < 0 {
		return 0
	}
	return z
}

func mercatorY(lat float64) float64 {
	s := math.Sin(lat * math.Pi / 180)
	return 0.5 * math.Log((1+s)/(1-s))
}
