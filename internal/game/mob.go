package game

import (
	"fmt"
	"strconv"
	"time"
)

// MobType is the wire tag distinguishing what kind of entity a mob is. The
// values are part of the protocol; clients render and filter on them.
type MobType int

const (
	MobProp MobType = iota
	MobProjectile
	MobPlayer
	MobCreature
)

// Mob is one entity in a room layer: a map prop, a player avatar, a spawned
// creature, or a projectile in flight. Mobs are owned by their room; all
// mutation happens on the command processor or scheduler goroutine through
// the room's methods.
type Mob struct {
	ID    int
	Tile  int
	X, Y  int
	Scale float64
	Color string
	Type  MobType

	// Creature is the combat state for spawned creatures, nil otherwise.
	Creature *CreatureStats

	// Spell rides along on projectiles and is applied on contact.
	Spell *Spell

	// NextAI is the creature's next scheduled AI turn.
	NextAI time.Time
}

// AddLine renders the mob as the ADDM line that introduces it to a client.
func (m *Mob) AddLine(layer int) string {
	return fmt.Sprintf("ADDM,%d,%d,%d,%d,%d,%s,%s,%d\n",
		m.ID, layer, m.Tile, m.X, m.Y, FormatScale(m.Scale), m.Color, m.Type)
}

// FormatScale renders a scale factor the way clients send it: shortest
// decimal form, no trailing zeros.
func FormatScale(s float64) string {
	return strconv.FormatFloat(s, 'g', -1, 64)
}
