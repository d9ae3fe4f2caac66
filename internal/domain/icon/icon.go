// Package icon picks the icon for a sensor item, including battery level tiers.
package icon

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/plantcard/internal/domain/reading"
)

// Tier is an icon identifier: a base name plus an optional tier suffix.
type Tier string

// Sensor types with built-in icons.
const (
	TypeMoisture     = "moisture"
	TypeTemperature  = "temperature"
	TypeIlluminance  = "illuminance"
	TypeConductivity = "conductivity"
	TypeBattery      = "battery"
	TypeHumidity     = "humidity"
	TypeDry          = "dry"
)

// Fallback is shown when a sensor type has no icon at all.
const Fallback = "mdi:circle"

// alertLevel is the highest battery level that always renders as the alert tier.
const alertLevel = 5

// Defaults maps sensor types to their built-in base icons.
var Defaults = map[string]string{
	TypeMoisture:     "mdi:water",
	TypeTemperature:  "mdi:thermometer",
	TypeIlluminance:  "mdi:white-balance-sunny",
	TypeConductivity: "mdi:emoticon-poop",
	TypeBattery:      "mdi:battery",
	TypeHumidity:     "mdi:water-percent",
	TypeDry:          "mdi:water-off",
}

// Strategy selects how a battery level is bucketed into tiers of ten.
type Strategy int

// Bucketing strategies.
const (
	// NearestTen rounds to the nearest multiple of ten, clamped to [0,100].
	NearestTen Strategy = iota
	// FlooredOffset rounds down within [10,90] and jumps to 100 from 95 upward.
	FlooredOffset
)

// ErrUnknownStrategy is returned by ParseStrategy for unrecognised names.
var ErrUnknownStrategy = errors.New("unknown icon strategy")

// String returns the configuration name of the strategy.
func (s Strategy) String() string {
	switch s {
	case FlooredOffset:
		return "floored_offset"
	default:
		return "nearest_ten"
	}
}

// ParseStrategy maps a configuration name to a Strategy. Empty selects NearestTen.
func ParseStrategy(name string) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "nearest_ten", "nearest":
		return NearestTen, nil
	case "floored_offset", "floored":
		return FlooredOffset, nil
	default:
		return NearestTen, fmt.Errorf("%w: %q", ErrUnknownStrategy, name)
	}
}

// Option configures Select.
type Option func(*selector)

type selector struct {
	strategy Strategy
}

// WithStrategy sets the bucketing strategy.
func WithStrategy(s Strategy) Option {
	return func(sel *selector) {
		sel.strategy = s
	}
}

// Select returns the battery tier for base at level r. Levels at or below five are the
// alert tier; an unavailable level returns base without a suffix.
func Select(base string, r reading.Reading, opts ...Option) Tier {
	sel := selector{strategy: NearestTen}
	for _, opt := range opts {
		opt(&sel)
	}

	v, ok := r.Value()
	if !ok {
		return Tier(base)
	}
	if v <= alertLevel {
		return Tier(base + "-alert")
	}
	return Tier(base + "-" + strconv.Itoa(sel.bucket(v)))
}

func (sel selector) bucket(v float64) int {
	switch sel.strategy {
	case FlooredOffset:
		if v >= 95 {
			return 100
		}
		return int(math.Max(10, math.Min(90, math.Floor(v/10)*10)))
	default:
		return int(math.Max(0, math.Min(100, math.Round(v/10)*10)))
	}
}

// SelectFor applies battery tiering only to battery sensors; every other type passes
// base through unchanged.
func SelectFor(sensorType, base string, r reading.Reading, opts ...Option) Tier {
	if sensorType != TypeBattery || base == "" {
		return Tier(base)
	}
	return Select(base, r, opts...)
}

// Resolve returns the base icon for sensorType: a custom mapping wins over the built-in
// table. It returns "" when neither knows the type.
func Resolve(sensorType string, custom map[string]string) string {
	if c := strings.TrimSpace(custom[sensorType]); c != "" {
		return c
	}
	return Defaults[sensorType]
}
