package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maxsviluppo/Aitraffic/internal/lib/telemetry"
)

var (
	milanoCentrale = Point{Latitude: 45.4862, Longitude: 9.2044}
	torinoPN       = Point{Latitude: 45.0621, Longitude: 7.6787}
	romaTermini    = Point{Latitude: 41.9009, Longitude: 12.5016}
)

func TestGeoUtils_PointToPoint(t *testing.T) {
	geoUtils := NewGeoUtils()

	distance, err := geoUtils.PointToPoint(milanoCentrale, torinoPN)
	require.NoError(t, err)
	assert.InDelta(t, 128359, distance, 100, "Milano Centrale to Torino Porta Nuova is about 128km")

	distance, err = geoUtils.PointToPoint(romaTermini, romaTermini)
	require.NoError(t, err)
	assert.Equal(t, 0.0, distance)

	_, err = geoUtils.PointToPoint(milanoCentrale, Point{Latitude: 200, Longitude: -300})
	assert.Error(t, err, "Should return error for invalid coordinates")
}

func TestGeoUtils_DistanceFromCoords(t *testing.T) {
	distance, err := NewGeoUtils().DistanceFromCoords(41.9009, 12.5016, 40.8530, 14.2720)
	require.NoError(t, err)
	assert.InDelta(t, 188136, distance, 100, "Roma to Napoli is about 188km")
}

func TestGeoUtils_PolylineRoundTrip(t *testing.T) {
	geoUtils := NewGeoUtils()

	// Reference example from the encoded polyline algorithm format.
	points := []Point{
		{Latitude: 38.5, Longitude: -120.2},
		{Latitude: 40.7, Longitude: -120.95},
		{Latitude: 43.252, Longitude: -126.453},
	}
	encoded := geoUtils.EncodePolyline(points)
	assert.Equal(t, "_p~iF~ps|U_ulLnnqC_mqNvxq`@", encoded)

	decoded, err := geoUtils.DecodePolyline(encoded)
	require.NoError(t, err)
	require.Len(t, decoded, 3)
	for i := range points {
		assert.InDelta(t, points[i].Latitude, decoded[i].Latitude, 1e-5)
		assert.InDelta(t, points[i].Longitude, decoded[i].Longitude, 1e-5)
	}

	assert.Equal(t, "", geoUtils.EncodePolyline(nil))
	_, err = geoUtils.DecodePolyline("")
	assert.Error(t, err)
}

func TestGeoUtils_BoundsOf(t *testing.T) {
	geoUtils := NewGeoUtils()

	b, ok := geoUtils.BoundsOf([]Point{milanoCentrale, {Latitude: 999, Longitude: 0}, romaTermini, torinoPN})
	require.True(t, ok)
	assert.Equal(t, Bounds{South: 41.9009, West: 7.6787, North: 45.4862, East: 12.5016}, b)

	c := b.Center()
	assert.InDelta(t, 43.69355, c.Latitude, 1e-9)
	assert.InDelta(t, 10.09015, c.Longitude, 1e-9)

	_, ok = geoUtils.BoundsOf([]Point{{Latitude: -100, Longitude: 0}})
	assert.False(t, ok)
}

func TestGeoUtils_FilterMapPoints(t *testing.T) {
	geoUtils := NewGeoUtils()

	points := []telemetry.MapPoint{
		{Lat: 45.0621, Lng: 7.6787, Label: "Torino Porta Nuova", Type: telemetry.TRAIN},
		{Lat: 45.4862, Lng: 9.2044, Label: "Milano Centrale", Type: telemetry.TRAIN},
		{Lat: 91, Lng: 0, Label: "broken", Type: telemetry.ROAD},
		{Lat: 45.4642, Lng: 9.19, Label: "Duomo M1/M3", Type: telemetry.METRO},
	}

	near, err := geoUtils.FilterMapPoints(points, milanoCentrale, 5000)
	require.NoError(t, err)
	require.Len(t, near, 2)
	assert.Equal(t, "Milano Centrale", near[0].Label)
	assert.Equal(t, "Duomo M1/M3", near[1].Label)

	all, err := geoUtils.FilterMapPoints(points, milanoCentrale, 200000)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = geoUtils.FilterMapPoints(points, Point{Latitude: 100}, 1000)
	assert.Error(t, err)
}

func TestConversions(t *testing.T) {
	assert.Equal(t, milanoCentrale, FromMapPoint(telemetry.MapPoint{Lat: 45.4862, Lng: 9.2044}))
	assert.Equal(t, romaTermini, FromLocation(telemetry.Location{Lat: 41.9009, Lng: 12.5016}))
}
