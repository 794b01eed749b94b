package telemetry

// TransportType identifies a transport category. ALL is a filter value only;
// responses never carry it on a point.
type TransportType string

const (
	ALL   TransportType = "ALL"
	TRAIN TransportType = "TRAIN"
	METRO TransportType = "METRO"
	PLANE TransportType = "PLANE"
	SHIP  TransportType = "SHIP"
	ROAD  TransportType = "ROAD"
)

// TransportTypes lists every category in menu order.
var TransportTypes = []TransportType{ALL, TRAIN, ROAD, METRO, PLANE, SHIP}

var transportLabels = map[TransportType]string{
	ALL:   "TUTTI",
	TRAIN: "TRENI",
	ROAD:  "STRADA",
	METRO: "URBANI",
	PLANE: "VOLI",
	SHIP:  "NAVI",
}

var transportColors = map[TransportType]string{
	ALL:   "slate",
	TRAIN: "orange",
	ROAD:  "emerald",
	METRO: "cyan",
	PLANE: "indigo",
	SHIP:  "blue",
}

// Valid reports whether t is one of the known categories.
func (t TransportType) Valid() bool {
	_, ok := transportLabels[t]
	return ok
}

// Label returns the Italian menu label, or the raw value for unknown types.
func (t TransportType) Label() string {
	if l, ok := transportLabels[t]; ok {
		return l
	}
	return string(t)
}

// Color returns the marker color name used for the category.
func (t TransportType) Color() string {
	if c, ok := transportColors[t]; ok {
		return c
	}
	return transportColors[ALL]
}

// ParseTransportType resolves a case-sensitive type name. The empty string
// means ALL.
func ParseTransportType(s string) (TransportType, bool) {
	if s == "" {
		return ALL, true
	}
	t := TransportType(s)
	return t, t.Valid()
}

// MapPoint is one element of the GEO_DATA directive array.
type MapPoint struct {
	Lat    float64       `json:"lat"`
	Lng    float64       `json:"lng"`
	Label  string        `json:"label"`
	Type   TransportType `json:"type"`
	Status string        `json:"status,omitempty"`
}

// Location is the optional GPS position attached to a query.
type Location struct {
	Lat  float64 `json:"lat"`
	Lng  float64 `json:"lng"`
	City string  `json:"city,omitempty"`
}

// ParsedResult is the split of one model response into display text and map
// points. It is never mutated after Parse returns it.
type ParsedResult struct {
	CleanedText string     `json:"cleaned_text"`
	Points      []MapPoint `json:"points"`

	// DirectiveErr records why a matched directive was discarded.
	DirectiveErr error `json:"-"`
}
