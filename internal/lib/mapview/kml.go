package mapview

import (
	"fmt"
	"image/color"
	"io"

	kml "github.com/twpayne/go-kml"

	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
)

// KML icon colors per marker color name.
var kmlColors = map[string]color.RGBA{
	"slate":   {R: 0x94, G: 0xa3, B: 0xb8, A: 0xff},
	"orange":  {R: 0xf9, G: 0x73, B: 0x16, A: 0xff},
	"emerald": {R: 0x10, G: 0xb9, B: 0x81, A: 0xff},
	"cyan":    {R: 0x06, G: 0xb6, B: 0xd4, A: 0xff},
	"indigo":  {R: 0x63, G: 0x66, B: 0xf1, A: 0xff},
	"blue":    {R: 0x3b, G: 0x82, B: 0xf6, A: 0xff},
}

// WriteKML writes points as a KML document with one shared style per
// transport type and a line through the points in order.
func WriteKML(w io.Writer, name string, points []telemetry.MapPoint) error {
	styles := map[telemetry.TransportType]*kml.SharedElement{}
	var children []kml.Element
	children = append(children, kml.Name(name))

	for _, t := range telemetry.TransportTypes {
		style := kml.SharedStyle(
			styleID(t),
			kml.IconStyle(kml.Color(kmlColors[t.Color()])),
		)
		styles[t] = style
		children = append(children, style)
	}

	placemarks := make([]kml.Element, 0, len(points))
	path := make([]kml.Coordinate, 0, len(points))
	for _, p := range points {
		style, ok := styles[p.Type]
		if !ok {
			style = styles[telemetry.ALL]
		}

		elems := []kml.Element{
			kml.Name(p.Label),
			kml.StyleURL(style.URL()),
			kml.ExtendedData(
				kml.Data("type", kml.Value(string(p.Type))),
				kml.Data("status", kml.Value(p.Status)),
			),
			kml.Point(kml.Coordinates(kml.Coordinate{Lon: p.Lng, Lat: p.Lat})),
		}
		if p.Status != "" {
			elems = append(elems, kml.Description(fmt.Sprintf("%s: %s", p.Type.Label(), p.Status)))
		}
		placemarks = append(placemarks, kml.Placemark(elems...))
		path = append(path, kml.Coordinate{Lon: p.Lng, Lat: p.Lat})
	}

	children = append(children, kml.Folder(append([]kml.Element{kml.Name("Punti")}, placemarks...)...))

	if len(path) > 1 {
		children = append(children, kml.Placemark(
			kml.Name("Percorso"),
			kml.LineString(kml.Tessellate(true), kml.Coordinates(path...)),
		))
	}

	return kml.KML(kml.Document(children...)).WriteIndent(w, "", "  ")
}

func styleID(t telemetry.TransportType) string {
	return "transport-" + string(t)
}
