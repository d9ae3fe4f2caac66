package preview

import (
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

// neutral stands in for colours a terminal cannot show, such as theme variables with
// no fallback.
var neutral = colorful.Color{R: 0.6, G: 0.6, B: 0.6}

var hexPattern = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)

var named = map[string]string{
	"black":  "#000000",
	"white":  "#ffffff",
	"red":    "#ff0000",
	"green":  "#008000",
	"blue":   "#0000ff",
	"orange": "#ffa500",
	"yellow": "#ffff00",
	"gray":   "#808080",
	"grey":   "#808080",
}

// ParseColor resolves a CSS colour value to an RGB colour. Theme variables resolve to
// their hex fallback, e.g. "var(--error-color, #d32f2f)".
func ParseColor(css string) (colorful.Color, bool) {
	s := strings.ToLower(strings.TrimSpace(css))
	if hex, ok := named[s]; ok {
		s = hex
	}
	m := hexPattern.FindString(s)
	if m == "" {
		return neutral, false
	}
	c, err := colorful.Hex(m)
	if err != nil {
		return neutral, false
	}
	return c, true
}

// mix blends two CSS colours in Lab space.
func mix(from, to string, t float64) colorful.Color {
	a, _ := ParseColor(from)
	if t <= 0 || from == to {
		return a
	}
	b, _ := ParseColor(to)
	return a.BlendLab(b, t).Clamped()
}
