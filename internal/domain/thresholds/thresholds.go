// Package thresholds resolves acceptable ranges and palettes across configuration scopes
// and classifies readings against them.
//
// Resolution order for every bound and every colour is item > scope > default. Ranges are
// returned as configured; the gradient builder owns reordering an inverted range.
package thresholds

import (
	"strings"

	"github.com/okian/plantcard/internal/domain/reading"
)

// Range is an acceptable (minimum, maximum) pair. An unavailable bound is undefined and
// places no constraint on that side.
type Range struct {
	Min reading.Reading
	Max reading.Reading
}

// ResolveRange picks each bound independently from the item scope, falling back to the
// card scope.
func ResolveRange(itemMin, itemMax, scopeMin, scopeMax reading.Reading) Range {
	return Range{
		Min: firstAvailable(itemMin, scopeMin),
		Max: firstAvailable(itemMax, scopeMax),
	}
}

func firstAvailable(rs ...reading.Reading) reading.Reading {
	for _, r := range rs {
		if r.Available() {
			return r
		}
	}
	return reading.Unavailable()
}

// Colors is an optional set of palette overrides. Empty fields are absent.
type Colors struct {
	Below   string `json:"below,omitempty" koanf:"below"`
	InRange string `json:"in_range,omitempty" koanf:"in_range"`
	Above   string `json:"above,omitempty" koanf:"above"`
}

// Palette holds the resolved zone colours. Disabled is used when no reading is available.
type Palette struct {
	Below    string `json:"below"`
	InRange  string `json:"in_range"`
	Above    string `json:"above"`
	Disabled string `json:"disabled"`
}

// DefaultPalette is the built-in palette used when neither scope configures a colour.
var DefaultPalette = Palette{
	Below:    "var(--error-color, #d32f2f)",
	InRange:  "var(--paper-item-icon-active-color, #8bc34a)",
	Above:    "var(--accent-color, #ff9800)",
	Disabled: "var(--disabled-text-color, #bbb)",
}

// ResolvePalette picks each colour independently. The disabled colour follows a
// configured in-range colour and otherwise stays neutral.
func ResolvePalette(item, scope Colors) Palette {
	p := Palette{
		Below:    firstColor(item.Below, scope.Below, DefaultPalette.Below),
		InRange:  firstColor(item.InRange, scope.InRange, DefaultPalette.InRange),
		Above:    firstColor(item.Above, scope.Above, DefaultPalette.Above),
		Disabled: firstColor(item.InRange, scope.InRange, DefaultPalette.Disabled),
	}
	return p
}

func firstColor(cs ...string) string {
	for _, c := range cs {
		if c = strings.TrimSpace(c); c != "" {
			return c
		}
	}
	return ""
}
