// Package gradient builds the three-zone horizontal bar for a reading: a fill
// percentage plus colour stops on the same 0-100 scale, so one bar shows both where the
// reading sits and where the acceptable band lies.
package gradient

import (
	"math"
	"strconv"
	"strings"

	"github.com/okian/plantcard/internal/domain/reading"
	"github.com/okian/plantcard/internal/domain/thresholds"
)

// Scale bounds and the soft-edge half width, in percentage points.
const (
	scaleMin = 0
	scaleMax = 100
	overlap  = 1
)

// Stop is a colour at a position on the 0-100 scale.
type Stop struct {
	Position float64 `json:"position"`
	Color    string  `json:"color"`
}

// Spec describes the bar for one reading.
type Spec struct {
	Stops      []Stop `json:"stops"`
	Percent    int    `json:"percent"`
	LabelColor string `json:"label_color"`
	Disabled   bool   `json:"disabled"`
}

// Build computes the bar for r against rng using palette p.
//
// Stops are always in [0,100] and non-decreasing. An inverted range is swapped before
// positions are computed. When both bounds land on the same position the zones meet at a
// hard edge instead of a soft band.
func Build(r reading.Reading, rng thresholds.Range, p thresholds.Palette) Spec {
	v, ok := r.Value()
	if !ok {
		return Spec{
			Stops:      []Stop{{scaleMin, p.Disabled}, {scaleMax, p.Disabled}},
			Percent:    0,
			LabelColor: p.Disabled,
			Disabled:   true,
		}
	}

	minPos, maxPos := positions(rng)
	spec := Spec{
		Percent:    int(clamp(math.Round(v), scaleMin, scaleMax)),
		LabelColor: p.Color(thresholds.Classify(r, rng)),
	}

	if minPos == maxPos {
		spec.Stops = []Stop{
			{scaleMin, p.Below},
			{minPos, p.Below},
			{minPos, p.InRange},
			{minPos, p.Above},
			{scaleMax, p.Above},
		}
		return spec
	}

	a := clamp(minPos-overlap, scaleMin, scaleMax)
	b := clamp(minPos+overlap, scaleMin, scaleMax)
	c := clamp(maxPos-overlap, scaleMin, scaleMax)
	d := clamp(maxPos+overlap, scaleMin, scaleMax)
	if b > c {
		// Bands overlap on a narrow range; meet in the middle.
		mid := (minPos + maxPos) / 2
		b, c = mid, mid
	}

	spec.Stops = []Stop{
		{scaleMin, p.Below},
		{a, p.Below},
		{b, p.InRange},
		{c, p.InRange},
		{d, p.Above},
		{scaleMax, p.Above},
	}
	return spec
}

// positions maps the range onto the scale. Undefined bounds sit at the scale ends.
func positions(rng thresholds.Range) (float64, float64) {
	minPos, maxPos := float64(scaleMin), float64(scaleMax)
	if lo, ok := rng.Min.Value(); ok {
		minPos = clamp(lo, scaleMin, scaleMax)
	}
	if hi, ok := rng.Max.Value(); ok {
		maxPos = clamp(hi, scaleMin, scaleMax)
	}
	if minPos > maxPos {
		minPos, maxPos = maxPos, minPos
	}
	return minPos, maxPos
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// CSS renders the stops as a left-to-right linear-gradient value.
func (s Spec) CSS() string {
	var b strings.Builder
	b.WriteString("linear-gradient(90deg")
	for _, st := range s.Stops {
		b.WriteString(", ")
		b.WriteString(st.Color)
		b.WriteByte(' ')
		b.WriteString(strconv.FormatFloat(st.Position, 'f', -1, 64))
		b.WriteByte('%')
	}
	b.WriteByte(')')
	return b.String()
}

// ColorAt returns the colour of the stop segment containing pos and the blend factor
// toward the next stop, for renderers that sample the bar cell by cell.
func (s Spec) ColorAt(pos float64) (from, to string, t float64) {
	if len(s.Stops) == 0 {
		return "", "", 0
	}
	if pos <= s.Stops[0].Position {
		return s.Stops[0].Color, s.Stops[0].Color, 0
	}
	for i := 1; i < len(s.Stops); i++ {
		prev, next := s.Stops[i-1], s.Stops[i]
		if pos > next.Position {
			continue
		}
		span := next.Position - prev.Position
		if span <= 0 {
			return next.Color, next.Color, 0
		}
		return prev.Color, next.Color, (pos - prev.Position) / span
	}
	last := s.Stops[len(s.Stops)-1]
	return last.Color, last.Color, 0
}
