package wellpath

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

const (
	// DefaultDiameter replaces a diameter that cannot be parsed.
	DefaultDiameter = 8.5
	// DefaultColor is used when a record has no color.
	DefaultColor = "#808080"
)

// ScaleCorrection rewrites a parsed diameter that was entered in the wrong
// scale. It is an operator convention, not a physical rule.
type ScaleCorrection func(diameter float64) float64

// ThousandthsAbove treats values above threshold as entered without the
// decimal point ("9625" for 9.625) and divides them by 1000.
func ThousandthsAbove(threshold float64) ScaleCorrection {
	return DivideAbove(threshold, 1000)
}

// DivideAbove divides values above threshold by divisor.
func DivideAbove(threshold, divisor float64) ScaleCorrection {
	return func(d float64) float64 {
		if d > threshold {
			return d / divisor
		}
		return d
	}
}

// NoScaleCorrection keeps every parsed diameter as is.
func NoScaleCorrection(d float64) float64 { return d }

// Sanitizer normalises raw mechanical rows. A malformed diameter falls back
// to Fallback instead of failing the import.
type Sanitizer struct {
	Correct  ScaleCorrection
	Fallback float64
	Color    string
}

// DefaultSanitizer divides diameters above 100 by 1000 and falls back to 8.5".
func DefaultSanitizer() Sanitizer {
	return Sanitizer{
		Correct:  ThousandthsAbove(100),
		Fallback: DefaultDiameter,
		Color:    DefaultColor,
	}
}

// Sanitize is DefaultSanitizer().Sanitize.
func Sanitize(rawDiameter any, rawColor string) (float64, string) {
	return DefaultSanitizer().Sanitize(rawDiameter, rawColor)
}

// Sanitize parses a diameter given as a number or a string (comma or period
// decimal separator) and defaults an empty color.
func (s Sanitizer) Sanitize(rawDiameter any, rawColor string) (float64, string) {
	return s.Diameter(rawDiameter), s.color(rawColor)
}

// Diameter parses and corrects a raw diameter value.
func (s Sanitizer) Diameter(raw any) float64 {
	d, ok := parseDiameter(raw)
	if !ok {
		return s.Fallback
	}
	if s.Correct != nil {
		d = s.Correct(d)
	}
	return d
}

func (s Sanitizer) color(raw string) string {
	if c := strings.TrimSpace(raw); c != "" {
		return c
	}
	if s.Color != "" {
		return s.Color
	}
	return DefaultColor
}

func parseDiameter(raw any) (float64, bool) {
	if raw == nil {
		return 0, false
	}
	if s, ok := raw.(string); ok {
		s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
		if s == "" {
			return 0, false
		}
		raw = s
	}
	d, err := cast.ToFloat64E(raw)
	if err != nil || math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}
