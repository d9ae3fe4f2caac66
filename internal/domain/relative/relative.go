// Package relative formats last-changed timestamps as coarse, human-relative ages.
package relative

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDateLayout is the calendar layout used once a timestamp is a week old.
const DefaultDateLayout = "1/2/2006"

const week = 7

// layouts are tried in order when parsing a timestamp. Layouts without an offset are
// read in the formatter's location.
var layouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// DateFormatter renders an absolute date for timestamps older than a week.
type DateFormatter func(t time.Time) string

// LayoutFormatter returns a DateFormatter using layout in loc. A nil loc keeps the
// timestamp's own zone.
func LayoutFormatter(layout string, loc *time.Location) DateFormatter {
	if layout == "" {
		layout = DefaultDateLayout
	}
	return func(t time.Time) string {
		if loc != nil {
			t = t.In(loc)
		}
		return t.Format(layout)
	}
}

// Formatter buckets elapsed time into just-now, minutes, hours, days or a calendar date.
type Formatter struct {
	date DateFormatter
	loc  *time.Location
}

// Option configures a Formatter.
type Option func(*Formatter)

// WithDateFormatter replaces the calendar fallback.
func WithDateFormatter(f DateFormatter) Option {
	return func(fm *Formatter) {
		if f != nil {
			fm.date = f
		}
	}
}

// WithLocation sets the zone for timestamps that carry no offset.
func WithLocation(loc *time.Location) Option {
	return func(fm *Formatter) {
		if loc != nil {
			fm.loc = loc
		}
	}
}

// New creates a Formatter. The default calendar fallback uses DefaultDateLayout in the
// local zone, and zoneless timestamps are read as local time.
func New(opts ...Option) *Formatter {
	f := &Formatter{date: LayoutFormatter(DefaultDateLayout, time.Local), loc: time.Local}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Parse reads raw with the supported layouts, taking zoneless timestamps as local time.
func Parse(raw string) (time.Time, bool) {
	return ParseInLocation(raw, time.Local)
}

// ParseInLocation is Parse with zoneless timestamps read in loc.
func ParseInLocation(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.Local
	}
	for _, layout := range layouts {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Parse reads raw in the formatter's location.
func (f *Formatter) Parse(raw string) (time.Time, bool) {
	return ParseInLocation(raw, f.loc)
}

// Format labels raw relative to now. Unparsable input is returned unchanged.
func (f *Formatter) Format(now time.Time, raw string) string {
	t, ok := f.Parse(raw)
	if !ok {
		return raw
	}
	return f.FormatTime(now, t)
}

// FormatTime labels t relative to now. Timestamps in the future read as just now.
func (f *Formatter) FormatTime(now, t time.Time) string {
	minutes := int(now.Sub(t) / time.Minute)
	hours := minutes / 60
	days := hours / 24

	switch {
	case minutes < 1:
		return "Just now"
	case minutes < 60:
		return fmt.Sprintf("%dm ago", minutes)
	case hours < 24:
		return fmt.Sprintf("%dh ago", hours)
	case days < week:
		return fmt.Sprintf("%dd ago", days)
	default:
		return f.date(t)
	}
}
