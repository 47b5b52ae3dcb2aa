package game

import "math"

// Action is a time-bounded effect advanced on every scheduler tick.
// Process moves the action forward by dt seconds and reports completion.
// Implementations must not publish or take room-external locks; completion
// side effects run after the action lock is released.
type Action interface {
	Process(r *Room, dt float64) bool
}

// hitRadius is how close a projectile must pass to an entity to register
// a hit. Smaller than one tick of projectile travel, so a projectile clears
// its firer before the first probe.
const hitRadius = 20

// Move walks a mob toward an absolute target position at a fixed speed in
// units per second. A Move never cancels itself; it either reaches its
// target or is superseded by a newer Move for the same mob.
type Move struct {
	mob     *Mob
	layer   int
	session *Session // nil for AI-driven moves
	pattern string

	x, y      float64 // current position, sub-unit precision
	tx, ty    float64 // target
	dirX      float64
	dirY      float64
	remaining float64
	speed     float64

	// hit is the entity a projectile move ran into, resolved after the tick.
	hit *Mob
}

// NewMove creates a move for mob toward (tx, ty), starting from the mob's
// current position in the room. The session, when present, ties the move to
// the client that initiated it so that finishing on a map transition point
// can carry that client to another room.
func NewMove(r *Room, session *Session, mob *Mob, layer, tx, ty int, speed float64, pattern string) *Move {
	mx, my := r.MobPosition(mob)

	dx := float64(tx) - float64(mx)
	dy := float64(ty) - float64(my)
	dist := math.Hypot(dx, dy)

	mv := &Move{
		mob:       mob,
		layer:     layer,
		session:   session,
		pattern:   pattern,
		x:         float64(mx),
		y:         float64(my),
		tx:        float64(tx),
		ty:        float64(ty),
		remaining: dist,
		speed:     speed,
	}
	if dist > 0 {
		mv.dirX = dx / dist
		mv.dirY = dy / dist
	}
	return mv
}

// Mob returns the entity this move is acting on.
func (m *Move) Mob() *Mob { return m.mob }

// Session returns the originating client session, or nil for AI moves.
func (m *Move) Session() *Session { return m.session }

// End returns the final position of the move.
func (m *Move) End() (int, int) { return int(m.tx), int(m.ty) }

// Process advances the mob by speed*dt units, capped at the remaining
// distance so the mob lands exactly on the target. Projectiles probe for
// nearby entities after each step; a contact completes the move and is
// resolved by the scheduler outside the action lock.
func (m *Move) Process(r *Room, dt float64) bool {
	step := m.speed * dt
	if step >= m.remaining {
		m.x = m.tx
		m.y = m.ty
		m.remaining = 0
	} else {
		m.x += m.dirX * step
		m.y += m.dirY * step
		m.remaining -= step
	}

	px := int(math.Round(m.x))
	py := int(math.Round(m.y))
	r.setMobPosition(m.mob, px, py)

	if m.mob.Type == MobProjectile {
		for _, near := range r.MobsNear(px, py, hitRadius) {
			if near.ID == m.mob.ID || near.Type == MobProjectile || near.Type == MobProp {
				continue
			}
			m.hit = near
			return true
		}
	}

	return m.remaining == 0
}
