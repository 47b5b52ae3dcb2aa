package game

import (
	"fmt"

	"github.com/pixil98/go-errors"
)

// Creature is an immutable stat template loaded from the creature catalog.
// Live creatures carry a CreatureStats snapshot created from it.
type Creature struct {
	DisplayName string         `json:"display_name"`
	Tile        int            `json:"tile"`
	Color       string         `json:"color"`
	Speed       float64        `json:"speed"`
	Pattern     string         `json:"pattern"`
	Life        int            `json:"life"`
	Armor       int            `json:"armor"`
	Resistances map[string]int `json:"resistances,omitempty"`
}

// Validate satisfies storage.ValidatingSpec.
func (c *Creature) Validate() error {
	el := errors.NewErrorList()

	if c.DisplayName == "" {
		el.Add(fmt.Errorf("display_name is required"))
	}
	if c.Tile <= 0 {
		el.Add(fmt.Errorf("tile must be a positive tile index"))
	}
	if c.Speed <= 0 {
		el.Add(fmt.Errorf("speed must be positive"))
	}
	if c.Pattern == "" {
		el.Add(fmt.Errorf("pattern is required"))
	}
	if c.Life <= 0 {
		el.Add(fmt.Errorf("life must be positive"))
	}

	return el.Err()
}

// NewStats creates the mutable combat snapshot owned by a spawned creature.
func (c *Creature) NewStats() *CreatureStats {
	return &CreatureStats{
		DisplayName: c.DisplayName,
		Speed:       c.Speed,
		Pattern:     c.Pattern,
		Life:        c.Life,
		Armor:       c.Armor,
		Resistances: c.Resistances,
	}
}

// CreatureStats is the per-mob combat state. Life decreases as the creature
// takes hits; the template it was created from is never mutated.
type CreatureStats struct {
	DisplayName string
	Speed       float64
	Pattern     string
	Life        int
	Armor       int
	Resistances map[string]int
}

// Spell is an immutable template from the spell catalog, attached to
// projectiles when they are fired.
type Spell struct {
	DisplayName string `json:"display_name"`
	Tile        int    `json:"tile"`
	Damage      int    `json:"damage"`
	Element     string `json:"element"`
}

// Validate satisfies storage.ValidatingSpec.
func (s *Spell) Validate() error {
	el := errors.NewErrorList()

	if s.DisplayName == "" {
		el.Add(fmt.Errorf("display_name is required"))
	}
	if s.Tile <= 0 {
		el.Add(fmt.Errorf("tile must be a positive tile index"))
	}
	if s.Damage <= 0 {
		el.Add(fmt.Errorf("damage must be positive"))
	}

	return el.Err()
}
