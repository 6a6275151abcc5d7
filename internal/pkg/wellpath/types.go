package wellpath

import "gonum.org/v1/gonum/spatial/r3"

// Datum is the measured depth of the surface reference point.
const Datum = 0.0

// Measurement is one raw survey station.
type Measurement struct {
	Depth       float64 `json:"md"`
	Inclination float64 `json:"inc"`
	Azimuth     float64 `json:"azi"`
}

// Station is a measurement with its computed position. Offsets are
// cumulative from the tie-in; DLS belongs to the segment ending here.
type Station struct {
	Depth       float64 `json:"md"`
	Inclination float64 `json:"inc"`
	Azimuth     float64 `json:"azi"`
	TVD         float64 `json:"tvd"`
	North       float64 `json:"north"`
	East        float64 `json:"east"`
	DLS         float64 `json:"dls"`
}

// Point is a centerline coordinate in rendering order (east, north, tvd).
type Point struct {
	East  float64 `json:"east"`
	North float64 `json:"north"`
	TVD   float64 `json:"tvd"`
}

func (s Station) vec() r3.Vec { return r3.Vec{X: s.East, Y: s.North, Z: s.TVD} }

func pointOf(v r3.Vec) Point { return Point{East: v.X, North: v.Y, TVD: v.Z} }

// GeometryRecord is a casing, liner or open-hole section over a depth range.
type GeometryRecord struct {
	Label      string  `json:"item"`
	StartDepth float64 `json:"top_md"`
	EndDepth   float64 `json:"bottom_md"`
	Diameter   float64 `json:"diameter"`
	Color      string  `json:"color"`
}

// Descriptor is one renderable tube: a centerline plus its radius and tags.
// ShowLegend is false for repeated labels; the tube itself is still drawn.
type Descriptor struct {
	Name       string  `json:"name"`
	Label      string  `json:"label"`
	Color      string  `json:"color"`
	Diameter   float64 `json:"diameter"`
	Radius     float64 `json:"radius"`
	StartDepth float64 `json:"start_md"`
	EndDepth   float64 `json:"end_md"`
	ShowLegend bool    `json:"show_legend"`
	Points     []Point `json:"points"`
}
