package game

import "sync"

// CreatureGroup is a pod of creatures wandering around a shared centroid.
// The centroid bounds their random movement so a pod stays together instead
// of diffusing across the map. Membership shrinks as creatures die or are
// deleted; groups are never removed themselves.
//
// Membership is pruned by the command processor while the scheduler's AI
// pass walks it, so the member list carries its own lock.
type CreatureGroup struct {
	CX, CY int

	mu        sync.Mutex
	creatures []*Mob
}

func NewCreatureGroup(creatures []*Mob, cx, cy int) *CreatureGroup {
	return &CreatureGroup{
		CX:        cx,
		CY:        cy,
		creatures: creatures,
	}
}

// Creatures returns a snapshot of the current members.
func (g *CreatureGroup) Creatures() []*Mob {
	g.mu.Lock()
	defer g.mu.Unlock()

	out := make([]*Mob, len(g.creatures))
	copy(out, g.creatures)
	return out
}

// Remove drops the member with the given mob id, if present.
func (g *CreatureGroup) Remove(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, m := range g.creatures {
		if m.ID == id {
			g.creatures = append(g.creatures[:i], g.creatures[i+1:]...)
			return
		}
	}
}

// Size returns the number of members left in the group.
func (g *CreatureGroup) Size() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.creatures)
}
