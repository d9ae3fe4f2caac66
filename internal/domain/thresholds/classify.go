package thresholds

import "github.com/okian/plantcard/internal/domain/reading"

// Classification is the discrete status of a reading against a range.
type Classification string

// Classifications.
const (
	Below       Classification = "below"
	InRange     Classification = "in_range"
	Above       Classification = "above"
	Unavailable Classification = "unavailable"
)

// Classify evaluates r against rng. Bounds are inclusive; the upper bound is checked
// first, so an inverted range reports above before below.
func Classify(r reading.Reading, rng Range) Classification {
	v, ok := r.Value()
	if !ok {
		return Unavailable
	}
	if hi, ok := rng.Max.Value(); ok && v > hi {
		return Above
	}
	if lo, ok := rng.Min.Value(); ok && v < lo {
		return Below
	}
	return InRange
}

// Color returns the palette colour that denotes c.
func (p Palette) Color(c Classification) string {
	switch c {
	case Below:
		return p.Below
	case Above:
		return p.Above
	case Unavailable:
		return p.Disabled
	default:
		return p.InRange
	}
}
