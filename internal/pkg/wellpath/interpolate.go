package wellpath

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/spatial/r3"
)

// Segment is a centerline sub-path. StartDepth and EndDepth are the depths
// the points actually cover, which differ from the requested range when it
// reaches past the surveyed stations.
type Segment struct {
	Points     []Point
	StartDepth float64
	EndDepth   float64

	requestedStart float64
	requestedEnd   float64
}

// Clamped reports whether the segment covers less than was requested.
func (s Segment) Clamped() bool {
	if len(s.Points) == 0 {
		return true
	}
	return s.StartDepth > s.requestedStart || s.EndDepth < s.requestedEnd
}

// Interpolate extracts the part of the path between startDepth and endDepth.
// Stations inside the range are kept as is; the ends are linearly
// interpolated between the bracketing stations so the segment starts and
// ends exactly on the requested depths. Where no bracketing pair exists the
// segment is clamped to the available stations. stations must be sorted by
// depth, as returned by Accumulate.
func Interpolate(stations []Station, startDepth, endDepth float64) Segment {
	seg := Segment{requestedStart: startDepth, requestedEnd: endDepth}
	if len(stations) == 0 || !finite(startDepth) || !finite(endDepth) || startDepth > endDepth {
		return seg
	}

	first := sort.Search(len(stations), func(i int) bool { return stations[i].Depth >= startDepth })
	last := sort.Search(len(stations), func(i int) bool { return stations[i].Depth > endDepth })
	inside := stations[first:last]

	points := make([]Point, 0, len(inside)+2)
	depth := math.NaN()

	if len(inside) == 0 || inside[0].Depth > startDepth {
		if p, ok := pointAt(stations, startDepth); ok {
			points = append(points, p)
			depth = startDepth
			seg.StartDepth = startDepth
		}
	}
	for _, st := range inside {
		if len(points) == 0 {
			seg.StartDepth = st.Depth
		}
		points = append(points, pointOf(st.vec()))
		depth = st.Depth
	}
	if len(points) > 0 && depth < endDepth {
		if p, ok := pointAt(stations, endDepth); ok {
			points = append(points, p)
			depth = endDepth
		}
	}

	if len(points) == 0 {
		return seg
	}
	seg.Points = points
	seg.EndDepth = depth
	return seg
}

// pointAt interpolates the position at depth between the station before it
// and the next one. It fails outside the surveyed range.
func pointAt(stations []Station, depth float64) (Point, bool) {
	prev := sort.Search(len(stations), func(i int) bool { return stations[i].Depth >= depth }) - 1
	if prev < 0 || prev >= len(stations)-1 {
		return Point{}, false
	}
	lo, hi := stations[prev], stations[prev+1]

	var f float64
	if hi.Depth > lo.Depth {
		f = (depth - lo.Depth) / (hi.Depth - lo.Depth)
	}
	return pointOf(r3.Add(lo.vec(), r3.Scale(f, r3.Sub(hi.vec(), lo.vec())))), true
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
