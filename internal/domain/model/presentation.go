package model

import (
	"github.com/okian/plantcard/internal/domain/gradient"
	"github.com/okian/plantcard/internal/domain/icon"
	"github.com/okian/plantcard/internal/domain/thresholds"
)

// Presentation is everything the rendering layer needs to draw one item.
type Presentation struct {
	Entity         string                    `json:"entity"`
	Type           string                    `json:"type"`
	Name           string                    `json:"name"`
	Classification thresholds.Classification `json:"classification"`
	Range          RangeView                 `json:"range"`
	Gradient       *gradient.Spec            `json:"gradient,omitempty"`
	Icon           icon.Tier                 `json:"icon"`
	Display        string                    `json:"display,omitempty"`
	Title          string                    `json:"title"`
	Compact        bool                      `json:"compact"`
	LastUpdated    string                    `json:"last_updated,omitempty"`
}

// RangeView is the effective range in a serialisable form. Nil bounds are undefined.
type RangeView struct {
	Min *float64 `json:"min,omitempty"`
	Max *float64 `json:"max,omitempty"`
}

// NewRangeView converts an effective range.
func NewRangeView(r thresholds.Range) RangeView {
	var v RangeView
	if lo, ok := r.Min.Value(); ok {
		v.Min = &lo
	}
	if hi, ok := r.Max.Value(); ok {
		v.Max = &hi
	}
	return v
}

// CardPresentation is the evaluated card.
type CardPresentation struct {
	ID      string         `json:"id"`
	Title   string         `json:"title,omitempty"`
	Image   string         `json:"image,omitempty"`
	Items   []Presentation `json:"items"`
	Dry     bool           `json:"dry"`
	DryIcon string         `json:"dry_icon,omitempty"`
	Size    int            `json:"size"`
}
