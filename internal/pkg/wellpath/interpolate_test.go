package wellpath

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/spatial/r3"
)

const tol = 1e-9

func mustAccumulate(t *testing.T, ms []Measurement) []Station {
	t.Helper()
	stations, err := Accumulate(ms)
	if err != nil {
		t.Fatalf("accumulate: %v", err)
	}
	return stations
}

// buildSurvey returns a J-shaped well surveyed at the given depths: vertical
// to kop, then building 3 degrees per 30 units towards azimuth 60.
func buildSurvey(depths []float64, kop float64) []Measurement {
	ms := make([]Measurement, len(depths))
	for i, d := range depths {
		inc := 0.0
		if d > kop {
			inc = math.Min((d-kop)/30*3, 60)
		}
		ms[i] = Measurement{Depth: d, Inclination: inc, Azimuth: 60}
	}
	return ms
}

func samePoint(a, b Point) bool {
	return scalar.EqualWithinAbs(a.East, b.East, tol) &&
		scalar.EqualWithinAbs(a.North, b.North, tol) &&
		scalar.EqualWithinAbs(a.TVD, b.TVD, tol)
}

func stationPoint(s Station) Point { return Point{East: s.East, North: s.North, TVD: s.TVD} }

func TestInterpolate_StationsOnBoundaries(t *testing.T) {
	stations := mustAccumulate(t, buildSurvey([]float64{0, 100, 200, 300, 400}, 100))
	seg := Interpolate(stations, 100, 300)
	if len(seg.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(seg.Points))
	}
	for i, st := range stations[1:4] {
		if !samePoint(seg.Points[i], stationPoint(st)) {
			t.Errorf("point %d = %+v, want station %+v", i, seg.Points[i], st)
		}
	}
	if seg.StartDepth != 100 || seg.EndDepth != 300 || seg.Clamped() {
		t.Errorf("coverage %v-%v clamped=%v", seg.StartDepth, seg.EndDepth, seg.Clamped())
	}
}

func TestInterpolate_StraightSectionIsExact(t *testing.T) {
	// On a straight slant the minimum curvature path is a line, so the
	// interpolated end points must equal a fresh solve to those depths.
	ms := []Measurement{
		{Depth: 0},
		{Depth: 500, Inclination: 40, Azimuth: 120},
		{Depth: 900, Inclination: 40, Azimuth: 120},
		{Depth: 1300, Inclination: 40, Azimuth: 120},
	}
	stations := mustAccumulate(t, ms)

	start, end := 650.0, 1170.0
	seg := Interpolate(stations, start, end)
	if len(seg.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(seg.Points))
	}

	trueAt := func(lo Station, depth float64) Point {
		inc, err := Solve(
			Measurement{Depth: lo.Depth, Inclination: lo.Inclination, Azimuth: lo.Azimuth},
			Measurement{Depth: depth, Inclination: 40, Azimuth: 120},
		)
		if err != nil {
			t.Fatalf("solve: %v", err)
		}
		return Point{East: lo.East + inc.East, North: lo.North + inc.North, TVD: lo.TVD + inc.TVD}
	}

	if got, want := seg.Points[0], trueAt(stations[1], start); !samePoint(got, want) {
		t.Errorf("start point = %+v, want %+v", got, want)
	}
	if got, want := seg.Points[2], trueAt(stations[2], end); !samePoint(got, want) {
		t.Errorf("end point = %+v, want %+v", got, want)
	}
	if seg.StartDepth != start || seg.EndDepth != end {
		t.Errorf("coverage %v-%v, want %v-%v", seg.StartDepth, seg.EndDepth, start, end)
	}
}

func TestInterpolate_CurvedSectionWithinSagitta(t *testing.T) {
	ms := buildSurvey([]float64{0, 300, 400, 500, 600}, 300)
	stations := mustAccumulate(t, ms)

	depth := 450.0
	seg := Interpolate(stations, depth, 600)
	lo, hi := ms[2], ms[3]

	// True position on the arc at 450 with inclination interpolated along it.
	mid := Measurement{Depth: depth, Inclination: (lo.Inclination + hi.Inclination) / 2, Azimuth: 60}
	inc, err := Solve(lo, mid)
	if err != nil {
		t.Fatalf("solve: %v", err)
	}
	truth := r3.Vec{X: stations[2].East + inc.East, Y: stations[2].North + inc.North, Z: stations[2].TVD + inc.TVD}
	got := r3.Vec{X: seg.Points[0].East, Y: seg.Points[0].North, Z: seg.Points[0].TVD}

	beta := DoglegAngle(toRad(lo.Inclination), toRad(lo.Azimuth), toRad(hi.Inclination), toRad(hi.Azimuth))
	radius := (hi.Depth - lo.Depth) / beta
	sagitta := radius * (1 - math.Cos(beta/2))
	if dev := r3.Norm(r3.Sub(got, truth)); dev > sagitta*(1+1e-6) {
		t.Errorf("interpolated point is %v from the arc, more than the sagitta %v", dev, sagitta)
	}
}

func TestInterpolate_RangeBetweenTwoStations(t *testing.T) {
	stations := mustAccumulate(t, buildSurvey([]float64{0, 1000}, 2000))
	seg := Interpolate(stations, 250, 750)
	if len(seg.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(seg.Points))
	}
	if !samePoint(seg.Points[0], Point{TVD: 250}) || !samePoint(seg.Points[1], Point{TVD: 750}) {
		t.Errorf("got %+v", seg.Points)
	}
}

func TestInterpolate_ClampsPastLastStation(t *testing.T) {
	stations := mustAccumulate(t, buildSurvey([]float64{0, 100, 200}, 1000))
	seg := Interpolate(stations, 150, 500)
	if len(seg.Points) != 2 {
		t.Fatalf("expected 2 points, got %d", len(seg.Points))
	}
	if seg.EndDepth != 200 || !seg.Clamped() {
		t.Errorf("expected clamp at 200, got end=%v clamped=%v", seg.EndDepth, seg.Clamped())
	}
}

func TestInterpolate_ClampsBeforeFirstStation(t *testing.T) {
	stations := mustAccumulate(t, buildSurvey([]float64{100, 200, 300}, 1000))
	seg := Interpolate(stations, 50, 250)
	if len(seg.Points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(seg.Points))
	}
	if seg.StartDepth != 100 || seg.EndDepth != 250 || !seg.Clamped() {
		t.Errorf("coverage %v-%v clamped=%v", seg.StartDepth, seg.EndDepth, seg.Clamped())
	}
}

func TestInterpolate_Degenerate(t *testing.T) {
	stations := mustAccumulate(t, buildSurvey([]float64{0, 100, 200}, 1000))

	cases := []struct {
		name       string
		start, end float64
		points     int
	}{
		{"entirely below", 300, 400, 0},
		{"inverted", 150, 50, 0},
		{"zero length off-station", 150, 150, 1},
		{"zero length on station", 100, 100, 1},
		{"nan", math.NaN(), 100, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seg := Interpolate(stations, tc.start, tc.end)
			if len(seg.Points) != tc.points {
				t.Errorf("expected %d point(s), got %d", tc.points, len(seg.Points))
			}
		})
	}

	if seg := Interpolate(nil, 0, 100); len(seg.Points) != 0 {
		t.Errorf("no stations should give no points")
	}
}
