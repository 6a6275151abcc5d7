package wellpath

import (
	"fmt"
	"strconv"

	"github.com/sourcegraph/conc/iter"
)

const (
	// DefaultVisualScale exaggerates radii so tubes stay visible next to
	// kilometre-long paths. Presentation only.
	DefaultVisualScale = 50.0

	// OpenHoleName labels the tube drawn when a trajectory has no geometry.
	OpenHoleName = "Open Hole"
	// OpenHoleColor is the legend color of that tube.
	OpenHoleColor = "#1f77b4"
)

// Compositor pairs geometry records with their interpolated centerlines.
type Compositor struct {
	// VisualScale multiplies the radius in feet (diameter in inches / 24).
	VisualScale float64
	// OpenHoleDiameter is used when there are no geometry records.
	OpenHoleDiameter float64
	// MaxGoroutines bounds concurrent interpolation; <= 0 means GOMAXPROCS.
	MaxGoroutines int
}

// DefaultCompositor uses a visual scale of 50 and an 8.5" open hole.
func DefaultCompositor() Compositor {
	return Compositor{VisualScale: DefaultVisualScale, OpenHoleDiameter: DefaultDiameter}
}

// Composition is the renderable result plus whatever was skipped or clamped.
type Composition struct {
	Descriptors []Descriptor `json:"descriptors"`
	Warnings    []Warning    `json:"warnings,omitempty"`
}

// Compose is DefaultCompositor().Compose.
func Compose(stations []Station, records []GeometryRecord) Composition {
	return DefaultCompositor().Compose(stations, records)
}

// Compose builds one descriptor per usable record, in input order. Records
// whose range yields fewer than two points are skipped with a warning. With
// no records a single open-hole tube covers the whole path.
func (c Compositor) Compose(stations []Station, records []GeometryRecord) Composition {
	var out Composition
	if len(stations) < 2 {
		out.Warnings = append(out.Warnings, Warning{
			Kind:    EmptyTrajectory,
			Message: fmt.Sprintf("trajectory has %d station(s), at least 2 are needed", len(stations)),
		})
		return out
	}

	if len(records) == 0 {
		d := c.openHoleDiameter()
		points := make([]Point, len(stations))
		for i, st := range stations {
			points[i] = pointOf(st.vec())
		}
		out.Descriptors = []Descriptor{{
			Name:       OpenHoleName,
			Label:      openHoleLabel(d),
			Color:      OpenHoleColor,
			Diameter:   d,
			Radius:     c.Radius(d),
			StartDepth: stations[0].Depth,
			EndDepth:   stations[len(stations)-1].Depth,
			ShowLegend: true,
			Points:     points,
		}}
		return out
	}

	mapper := iter.Mapper[GeometryRecord, Segment]{MaxGoroutines: c.MaxGoroutines}
	segments := mapper.Map(records, func(r *GeometryRecord) Segment {
		return Interpolate(stations, r.StartDepth, r.EndDepth)
	})

	legend := make(map[string]struct{}, len(records))
	for i, r := range records {
		seg := segments[i]
		if len(seg.Points) < 2 {
			out.Warnings = append(out.Warnings, Warning{
				Kind:    DegenerateSegment,
				Label:   r.Label,
				Message: fmt.Sprintf("range %g-%g yields %d point(s), skipped", r.StartDepth, r.EndDepth, len(seg.Points)),
			})
			continue
		}
		if seg.Clamped() {
			out.Warnings = append(out.Warnings, Warning{
				Kind:    PartialCoverage,
				Label:   r.Label,
				Message: fmt.Sprintf("range %g-%g drawn over %g-%g", r.StartDepth, r.EndDepth, seg.StartDepth, seg.EndDepth),
			})
		}

		label := Label(r.Label, r.Diameter)
		_, seen := legend[label]
		legend[label] = struct{}{}

		out.Descriptors = append(out.Descriptors, Descriptor{
			Name:       r.Label,
			Label:      label,
			Color:      r.Color,
			Diameter:   r.Diameter,
			Radius:     c.Radius(r.Diameter),
			StartDepth: seg.StartDepth,
			EndDepth:   seg.EndDepth,
			ShowLegend: !seen,
			Points:     seg.Points,
		})
	}
	return out
}

// Radius converts a nominal diameter in inches to a display radius.
func (c Compositor) Radius(diameter float64) float64 {
	scale := c.VisualScale
	if scale <= 0 {
		scale = DefaultVisualScale
	}
	return diameter / 2 / 12 * scale
}

func (c Compositor) openHoleDiameter() float64 {
	if c.OpenHoleDiameter > 0 {
		return c.OpenHoleDiameter
	}
	return DefaultDiameter
}

// Label is the legend text of a tube, e.g. `Casing 9-5/8" (9.625")`.
func Label(name string, diameter float64) string {
	return name + " (" + inches(diameter) + `")`
}

// openHoleLabel is the legend text of the fallback tube, e.g. `Open Hole 8.5"`.
func openHoleLabel(diameter float64) string {
	return OpenHoleName + " " + inches(diameter) + `"`
}

func inches(d float64) string { return strconv.FormatFloat(d, 'f', -1, 64) }
