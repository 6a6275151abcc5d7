package wellpath

import "math"

const (
	// StraightThreshold is the dogleg angle (radians) below which a segment
	// is treated as straight and the ratio factor is exactly 1.
	StraightThreshold = 1e-4

	// CourseLength normalises dogleg severity to degrees per 30 depth units.
	CourseLength = 30.0
)

// Increment is the displacement between two adjacent stations.
type Increment struct {
	North float64
	East  float64
	TVD   float64
	DLS   float64
}

// Solve applies the minimum curvature method to two adjacent measurements.
// It fails only when a value is NaN or infinite.
func Solve(prev, curr Measurement) (Increment, error) {
	if err := validate(-1, prev); err != nil {
		return Increment{}, err
	}
	if err := validate(-1, curr); err != nil {
		return Increment{}, err
	}
	return solve(prev, curr), nil
}

func solve(prev, curr Measurement) Increment {
	i1, a1 := toRad(prev.Inclination), toRad(prev.Azimuth)
	i2, a2 := toRad(curr.Inclination), toRad(curr.Azimuth)

	beta := DoglegAngle(i1, a1, i2, a2)
	rf := RatioFactor(beta)

	half := (curr.Depth - prev.Depth) / 2
	inc := Increment{
		North: half * (math.Sin(i1)*math.Cos(a1) + math.Sin(i2)*math.Cos(a2)) * rf,
		East:  half * (math.Sin(i1)*math.Sin(a1) + math.Sin(i2)*math.Sin(a2)) * rf,
		TVD:   half * (math.Cos(i1) + math.Cos(i2)) * rf,
	}
	if dmd := curr.Depth - prev.Depth; dmd != 0 {
		inc.DLS = toDeg(beta) * CourseLength / dmd
	}
	return inc
}

// DoglegAngle returns the angle in radians between two survey directions.
// The cosine is clamped to [-1, 1] so rounding never leaves acos's domain.
func DoglegAngle(i1, a1, i2, a2 float64) float64 {
	cosBeta := math.Cos(i2-i1) - math.Sin(i1)*math.Sin(i2)*(1-math.Cos(a2-a1))
	return math.Acos(clamp(cosBeta, -1, 1))
}

// RatioFactor smooths the straight-line average onto the circular arc.
func RatioFactor(beta float64) float64 {
	if beta < StraightThreshold {
		return 1
	}
	return 2 / beta * math.Tan(beta/2)
}

func validate(index int, m Measurement) error {
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"md", m.Depth},
		{"inclination", m.Inclination},
		{"azimuth", m.Azimuth},
	} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &InputError{Index: index, Field: f.name, Value: f.v}
		}
	}
	return nil
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func toRad(deg float64) float64 { return deg * math.Pi / 180 }

func toDeg(rad float64) float64 { return rad * 180 / math.Pi }
