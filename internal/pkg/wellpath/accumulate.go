package wellpath

import (
	"math"
	"slices"
)

// Reference holds the geodetic corrections of a trajectory. Magnetic
// azimuths are turned into grid azimuths as
// azimuth + MagneticDeclination - GridConvergence before solving.
type Reference struct {
	MagneticDeclination float64 `json:"mag_declination"`
	GridConvergence     float64 `json:"grid_convergence"`
}

// IsZero reports whether the reference applies no correction.
func (r Reference) IsZero() bool {
	return r.MagneticDeclination == 0 && r.GridConvergence == 0
}

// GridAzimuth applies the correction to a measured azimuth, wrapped to [0, 360).
func (r Reference) GridAzimuth(azimuth float64) float64 {
	if r.IsZero() {
		return azimuth
	}
	a := math.Mod(azimuth+r.MagneticDeclination-r.GridConvergence, 360)
	if a < 0 {
		a += 360
	}
	return a
}

// Accumulator computes positioned stations from a survey. The zero value
// applies no azimuth correction.
type Accumulator struct {
	Reference Reference
}

// Accumulate is Accumulator{}.Accumulate.
func Accumulate(measurements []Measurement) ([]Station, error) {
	return Accumulator{}.Accumulate(measurements)
}

// Accumulate sorts the measurements by depth (stable, on a copy) and walks
// them in order, summing the minimum curvature increments. Stations keep
// the azimuth as measured; corrections only affect the computed offsets.
func (a Accumulator) Accumulate(measurements []Measurement) ([]Station, error) {
	if len(measurements) == 0 {
		return nil, ErrEmptySurvey
	}
	for i, m := range measurements {
		if err := validate(i, m); err != nil {
			return nil, err
		}
	}

	sorted := slices.Clone(measurements)
	slices.SortStableFunc(sorted, func(x, y Measurement) int {
		switch {
		case x.Depth < y.Depth:
			return -1
		case x.Depth > y.Depth:
			return 1
		}
		return 0
	})

	stations := make([]Station, 0, len(sorted))

	// Surveys that do not start at the datum are tied to a vertical
	// station there.
	prev := Measurement{Depth: Datum}
	var north, east, tvd float64

	for i, m := range sorted {
		st := Station{Depth: m.Depth, Inclination: m.Inclination, Azimuth: m.Azimuth}
		curr := Measurement{Depth: m.Depth, Inclination: m.Inclination, Azimuth: a.Reference.GridAzimuth(m.Azimuth)}

		if i == 0 && isTieIn(m) {
			stations = append(stations, st)
			prev = curr
			continue
		}

		inc := solve(prev, curr)
		north += inc.North
		east += inc.East
		tvd += inc.TVD

		st.North, st.East, st.TVD, st.DLS = north, east, tvd, inc.DLS
		stations = append(stations, st)
		prev = curr
	}

	return stations, nil
}

func isTieIn(m Measurement) bool { return m.Depth == Datum }
