package wellpath

import "math"

// Summary describes the extent of a computed trajectory.
type Summary struct {
	StationCount    int     `json:"station_count"`
	MaxDepth        float64 `json:"max_md"`
	MaxTVD          float64 `json:"max_tvd"`
	MaxDLS          float64 `json:"max_dls"`
	MaxDLSDepth     float64 `json:"max_dls_md"`
	ClosureDistance float64 `json:"closure_distance"`
	ClosureAzimuth  float64 `json:"closure_azimuth"`
	Bottom          Point   `json:"bottom"`
}

// Summarize reports the deepest station, the worst dogleg and the horizontal
// closure (distance and azimuth from the tie-in to the last station).
func Summarize(stations []Station) Summary {
	s := Summary{StationCount: len(stations)}
	if len(stations) == 0 {
		return s
	}
	for _, st := range stations {
		s.MaxDepth = math.Max(s.MaxDepth, st.Depth)
		s.MaxTVD = math.Max(s.MaxTVD, st.TVD)
		if st.DLS > s.MaxDLS {
			s.MaxDLS, s.MaxDLSDepth = st.DLS, st.Depth
		}
	}

	last := stations[len(stations)-1]
	s.Bottom = pointOf(last.vec())
	s.ClosureDistance = math.Hypot(last.North, last.East)
	if s.ClosureDistance > 0 {
		az := toDeg(math.Atan2(last.East, last.North))
		if az < 0 {
			az += 360
		}
		s.ClosureAzimuth = az
	}
	return s
}
