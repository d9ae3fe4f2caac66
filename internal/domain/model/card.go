// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/plantcard/internal/domain/reading"
	"github.com/okian/plantcard/internal/domain/thresholds"
)

// Sentinel errors for card configuration.
var (
	ErrNoItems   = errors.New("please define one or more entities in the entities array")
	ErrNoCardID  = errors.New("card id must not be empty")
	ErrNoEntity  = errors.New("entity must not be empty")
	ErrDuplicate = errors.New("duplicate card id")
)

// ItemConfig is one sensor row of a card. Bounds are kept as configured text and
// normalised on use, so a non-numeric override simply falls through to the card scope.
type ItemConfig struct {
	Type         string `json:"type" koanf:"type"`
	Entity       string `json:"entity" koanf:"entity"`
	Name         string `json:"name,omitempty" koanf:"name"`
	MinMoisture  string `json:"min_moisture,omitempty" koanf:"min_moisture"`
	MaxMoisture  string `json:"max_moisture,omitempty" koanf:"max_moisture"`
	ColorInRange string `json:"color_in_range,omitempty" koanf:"color_in_range"`
	ColorBelow   string `json:"color_below,omitempty" koanf:"color_below"`
	ColorAbove   string `json:"color_above,omitempty" koanf:"color_above"`
	Compact      bool   `json:"compact,omitempty" koanf:"compact"`
}

// Bounds returns the item's own range bounds.
func (i ItemConfig) Bounds() (reading.Reading, reading.Reading) {
	return reading.Parse(i.MinMoisture), reading.Parse(i.MaxMoisture)
}

// Colors returns the item's palette overrides.
func (i ItemConfig) Colors() thresholds.Colors {
	return thresholds.Colors{Below: i.ColorBelow, InRange: i.ColorInRange, Above: i.ColorAbove}
}

// CardConfig is the scope-level configuration shared by every item of a card.
type CardConfig struct {
	ID              string            `json:"id" koanf:"id"`
	Title           string            `json:"title,omitempty" koanf:"title"`
	Image           string            `json:"image,omitempty" koanf:"image"`
	Entities        []ItemConfig      `json:"entities" koanf:"entities"`
	MinMoisture     string            `json:"min_moisture,omitempty" koanf:"min_moisture"`
	MaxMoisture     string            `json:"max_moisture,omitempty" koanf:"max_moisture"`
	ColorInRange    string            `json:"color_in_range,omitempty" koanf:"color_in_range"`
	ColorBelow      string            `json:"color_below,omitempty" koanf:"color_below"`
	ColorAbove      string            `json:"color_above,omitempty" koanf:"color_above"`
	Compact         bool              `json:"compact,omitempty" koanf:"compact"`
	ShowLastChanged bool              `json:"show_last_changed,omitempty" koanf:"show_last_changed"`
	CustomIcons     map[string]string `json:"custom_icons,omitempty" koanf:"custom_icons"`
}

// Bounds returns the card-wide range bounds.
func (c CardConfig) Bounds() (reading.Reading, reading.Reading) {
	return reading.Parse(c.MinMoisture), reading.Parse(c.MaxMoisture)
}

// Colors returns the card-wide palette overrides.
func (c CardConfig) Colors() thresholds.Colors {
	return thresholds.Colors{Below: c.ColorBelow, InRange: c.ColorInRange, Above: c.ColorAbove}
}

// Validate reports configuration-shape faults. A card must have an id and at least one
// item, and every item must reference an entity.
func (c CardConfig) Validate() error {
	if strings.TrimSpace(c.ID) == "" {
		return ErrNoCardID
	}
	if len(c.Entities) == 0 {
		return fmt.Errorf("card %q: %w", c.ID, ErrNoItems)
	}
	for i, item := range c.Entities {
		if strings.TrimSpace(item.Entity) == "" {
			return fmt.Errorf("card %q item %d: %w", c.ID, i, ErrNoEntity)
		}
	}
	return nil
}

// Size is the card's layout height in rows.
func (c CardConfig) Size() int {
	if len(c.Entities) == 0 {
		return 2
	}
	return len(c.Entities)
}
