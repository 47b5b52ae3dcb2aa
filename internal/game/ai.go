package game

import (
	"context"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"
)

const (
	// Spawned wander pods: member count and shared centroid.
	groupSize = 7
	groupCX   = 300
	groupCY   = 350

	// aiFireChance is the probability per AI turn that a creature shoots
	// at a player before wandering.
	aiFireChance = 0.75

	// aiSpellTile is the projectile tile creatures fire.
	aiSpellTile = 3

	// wanderRadius bounds a pod member's distance from the group centroid.
	// The bound is elliptical: vertical drift counts quadruple, matching
	// the isometric perspective where the map is wider than deep.
	wanderRadius = 100
)

// aiPass runs one AI turn for the room: every pod creature whose schedule
// has elapsed may fire at a player and then wanders to a new point near the
// pod centroid. The pass runs on the scheduler goroutine; the turn schedule
// is touched nowhere else, but group membership and entity positions are
// shared with the command processor and read through their locks.
func (w *World) aiPass(ctx context.Context, room *Room) {
	now := time.Now()

	for _, g := range room.Groups() {
		for _, mob := range g.Creatures() {
			if mob.Creature == nil || mob.NextAI.After(now) {
				continue
			}

			if rand.Float64() < aiFireChance {
				if target := room.FirstPlayer(); target != nil {
					tx, ty := room.MobPosition(target)
					w.FireProjectile(room, mob, LayerMobs, aiSpellTile, tx, ty)
				}
			}

			mx, my := room.MobPosition(mob)
			x, y := wanderTarget(g, mx, my)
			w.StartMove(nil, room, mob, LayerMobs, x, y, mob.Creature.Speed, mob.Creature.Pattern)

			mob.NextAI = now.Add(time.Duration(3000+rand.IntN(2000)) * time.Millisecond)
		}
	}
}

// wanderTarget picks a random point near (mx, my) that stays within the
// pod's elliptical bound around its centroid. After five failed rolls it
// falls back to a point right next to the centroid, pulling strays home.
func wanderTarget(g *CreatureGroup, mx, my int) (int, int) {
	for range 5 {
		x := mx + 100 - rand.IntN(200)
		y := my + 100 - rand.IntN(200)

		dx := x - g.CX
		dy := y - g.CY
		if dx*dx+4*(dy*dy) <= wanderRadius*wanderRadius {
			return x, y
		}
	}

	return g.CX + 50 - rand.IntN(100), g.CY + 50 - rand.IntN(100)
}

// SpawnCreatureGroup creates a wander pod of catalog creatures scattered
// around (cx, cy), registers it with the room, and announces each member.
// First AI turns are staggered over ten seconds so the pod doesn't act in
// lockstep.
func (w *World) SpawnCreatureGroup(ctx context.Context, room *Room, creatureID string, count, cx, cy int) []*Mob {
	tmpl := w.creatures.Get(strings.ToLower(creatureID))
	if tmpl == nil {
		slog.ErrorContext(ctx, "unknown catalog creature", "creature", creatureID)
		return nil
	}

	now := time.Now()
	mobs := make([]*Mob, 0, count)
	for range count {
		x := cx + 40*(rand.IntN(5)-2)
		y := cy + 20*(rand.IntN(5)-2)

		mob := room.MakeMob(LayerMobs, tmpl.Tile, x, y, 1.0, tmpl.Color, MobCreature)
		mob.Creature = tmpl.NewStats()
		mob.NextAI = now.Add(time.Duration(rand.IntN(10000)) * time.Millisecond)
		mobs = append(mobs, mob)
	}

	room.AddGroup(NewCreatureGroup(mobs, cx, cy))

	for _, m := range mobs {
		w.Roomcast(room, m.AddLine(LayerMobs))
	}
	return mobs
}
