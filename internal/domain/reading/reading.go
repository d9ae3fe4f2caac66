// Package reading turns raw sensor state values into validated numeric readings.
package reading

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Reading is a single sensor value at evaluation time. The zero value is unavailable.
type Reading struct {
	value float64
	ok    bool
}

// Of returns an available reading for v, or Unavailable when v is not finite.
func Of(v float64) Reading {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return Reading{}
	}
	return Reading{value: v, ok: true}
}

// Unavailable returns the sentinel reading that carries no value.
func Unavailable() Reading { return Reading{} }

// Available reports whether the reading carries a finite value.
func (r Reading) Available() bool { return r.ok }

// Value returns the reading's value and whether it is available.
func (r Reading) Value() (float64, bool) { return r.value, r.ok }

// Float returns the value, or 0 for an unavailable reading.
func (r Reading) Float() float64 { return r.value }

// String renders the value in its shortest exact form, or "unavailable".
func (r Reading) String() string {
	if !r.ok {
		return "unavailable"
	}
	return strconv.FormatFloat(r.value, 'f', -1, 64)
}

// Normalize parses raw into a Reading. Missing, malformed and non-finite input yield
// Unavailable; Normalize never panics.
func Normalize(raw any) Reading {
	switch v := raw.(type) {
	case nil:
		return Reading{}
	case Reading:
		return v
	case float64:
		return Of(v)
	case float32:
		return Of(float64(v))
	case int:
		return Of(float64(v))
	case int8:
		return Of(float64(v))
	case int16:
		return Of(float64(v))
	case int32:
		return Of(float64(v))
	case int64:
		return Of(float64(v))
	case uint:
		return Of(float64(v))
	case uint8:
		return Of(float64(v))
	case uint16:
		return Of(float64(v))
	case uint32:
		return Of(float64(v))
	case uint64:
		return Of(float64(v))
	case json.Number:
		return Parse(v.String())
	case string:
		return Parse(v)
	case *string:
		if v == nil {
			return Reading{}
		}
		return Parse(*v)
	case *float64:
		if v == nil {
			return Reading{}
		}
		return Of(*v)
	default:
		return Reading{}
	}
}

// Parse reads the longest leading decimal number of s, after trimming whitespace.
// "12 %" reads as 12; "abc" and "" are unavailable.
func Parse(s string) Reading {
	s = strings.TrimSpace(s)
	n := numericPrefix(s)
	if n == 0 {
		return Reading{}
	}
	v, err := strconv.ParseFloat(s[:n], 64)
	if err != nil {
		return Reading{}
	}
	return Of(v)
}

// numericPrefix returns the length of the leading [sign]digits[.digits][e[sign]digits] run.
func numericPrefix(s string) int {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
		}
	}
	if digits == 0 {
		return 0
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		exp := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			exp++
		}
		if exp > 0 {
			i = j
		}
	}
	return i
}

func isDigit(b byte) bool { return b >= '0' && b <= '9' }
