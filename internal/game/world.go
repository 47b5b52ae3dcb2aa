package game

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pixil98/go-tinyplaces/internal/storage"
)

// Publisher provides the ability to publish messages to per-connection
// subjects. The embedded broker satisfies this in production; tests use a
// capturing fake.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// World is the single owner of all live game state: the room registry
// (lazily populated, one instance per map reference, no eviction), the
// session table, and the catalogs. The command processor and the tick
// scheduler both drive it, so all shared access goes through its methods.
type World struct {
	pub       Publisher
	creatures storage.Storer[*Creature]
	spells    storage.Storer[*Spell]
	mapsPath  string
	transits  []Transit

	mu       sync.RWMutex
	rooms    map[string]*Room
	sessions map[string]*Session
}

func NewWorld(pub Publisher, creatures storage.Storer[*Creature], spells storage.Storer[*Spell], mapsPath string, transits []Transit) *World {
	return &World{
		pub:       pub,
		creatures: creatures,
		spells:    spells,
		mapsPath:  mapsPath,
		transits:  transits,
		rooms:     map[string]*Room{},
		sessions:  map[string]*Session{},
	}
}

// Login creates a session for the connection. A repeated HELO simply
// replaces the previous session.
func (w *World) Login(connID string) *Session {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := &Session{ID: connID}
	w.sessions[connID] = s
	return s
}

// Session returns the session for a connection, or nil.
func (w *World) Session(connID string) *Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.sessions[connID]
}

// Logout removes and returns the session for a connection, or nil if the
// connection never logged in.
func (w *World) Logout(connID string) *Session {
	w.mu.Lock()
	defer w.mu.Unlock()

	s := w.sessions[connID]
	delete(w.sessions, connID)
	return s
}

// SessionCount returns the number of logged-in sessions.
func (w *World) SessionCount() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.sessions)
}

// RoomByRef returns an already-registered room, or nil.
func (w *World) RoomByRef(ref string) *Room {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.rooms[ref]
}

// LoadRoom returns the room registered under the given map reference,
// reading it from the map store on first use. fresh reports whether the
// room was just loaded. Re-loading an existing reference performs no I/O;
// there is at most one live instance per reference.
func (w *World) LoadRoom(ref string) (room *Room, fresh bool, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if r, ok := w.rooms[ref]; ok {
		return r, false, nil
	}

	r, err := ReadMapFile(MapFilePath(w.mapsPath, ref))
	if err != nil {
		return nil, false, fmt.Errorf("loading room %q: %w", ref, err)
	}

	w.rooms[ref] = r
	return r, true, nil
}

// SaveRoom writes the room attached to the given reference back to the map
// store.
func (w *World) SaveRoom(room *Room, ref string) error {
	return WriteMapFile(room, MapFilePath(w.mapsPath, ref))
}

// Rooms returns a snapshot of all registered rooms.
func (w *World) Rooms() []*Room {
	w.mu.RLock()
	defer w.mu.RUnlock()

	out := make([]*Room, 0, len(w.rooms))
	for _, r := range w.rooms {
		out = append(out, r)
	}
	return out
}

// JoinRoom attaches the session to the room behind the given map reference,
// loading it on first use. A fresh load is announced to the room (only the
// joiner is there yet); joining a live room confirms to the joiner alone.
// Either way the joiner then receives every existing entity as a synthetic
// ADDM stream.
func (w *World) JoinRoom(sess *Session, ref string) (*Room, error) {
	room, fresh, err := w.LoadRoom(ref)
	if err != nil {
		return nil, err
	}

	sess.SetRoom(room)

	line := fmt.Sprintf("LOAD,%s,%s,%s\n", room.Name, room.Backdrop, ref)
	if fresh {
		w.Roomcast(room, line)
	} else {
		w.Unicast(sess, line)
	}

	w.serveRoom(sess, room)
	return room, nil
}

// serveRoom streams every entity of the room to one session. Lines are
// collected first so no room lock is held while publishing.
func (w *World) serveRoom(sess *Session, room *Room) {
	var sb strings.Builder
	for _, layer := range []int{LayerPatches, LayerMobs, LayerClouds} {
		room.ForEachMob(layer, func(m *Mob) {
			sb.WriteString(m.AddLine(layer))
		})
	}
	if sb.Len() > 0 {
		w.Unicast(sess, sb.String())
	}
}

// StartMove supersedes any in-flight move for the mob, registers a new one,
// and announces it to the room. A nil session marks an AI-driven move.
func (w *World) StartMove(sess *Session, room *Room, mob *Mob, layer, tx, ty int, speed float64, pattern string) *Move {
	room.CancelMoves(mob.ID)

	mv := NewMove(room, sess, mob, layer, tx, ty, speed, pattern)
	room.AddAction(mv)

	w.Roomcast(room, fmt.Sprintf("MOVE,%d,%d,%d,%d,%d,%s\n",
		mob.ID, layer, tx, ty, int(speed), pattern))
	return mv
}

// ProjectileSpeed is the fixed flight speed for all projectiles, in world
// units per second.
const ProjectileSpeed = 300

// FireProjectile spawns a projectile at the firer's position, sends it
// toward (tx, ty), and announces the shot. The projectile carries the spell
// matching its tile, if the catalog has one.
func (w *World) FireProjectile(room *Room, firer *Mob, layer, tile, tx, ty int) *Mob {
	sx, sy := room.MobPosition(firer)

	proj := room.MakeMob(layer, tile, sx, sy, 1.0, "1 1 1 1", MobProjectile)
	if proj == nil {
		return nil
	}
	proj.Spell = w.spellForTile(tile)

	room.AddAction(NewMove(room, nil, proj, layer, tx, ty, ProjectileSpeed, ""))

	w.Roomcast(room, fmt.Sprintf("FIRE,%d,%d,%d,%d,%d,%d,%d,%d,%d\n",
		firer.ID, proj.ID, layer, tile, sx, sy, tx, ty, ProjectileSpeed))
	return proj
}

func (w *World) spellForTile(tile int) *Spell {
	for _, s := range w.spells.GetAll() {
		if s.Tile == tile {
			return s
		}
	}
	return nil
}

// resolveHit applies a projectile contact: damage from the projectile's
// spell against the target's creature stats, removal on death. Entities
// without creature stats (player avatars, props) block the projectile but
// take no damage.
func (w *World) resolveHit(ctx context.Context, room *Room, mv *Move) {
	spell := mv.mob.Spell
	stats := mv.hit.Creature

	if spell == nil || stats == nil {
		return
	}

	dmg := CalculateDamage(stats, spell)
	stats.Life -= dmg
	slog.InfoContext(ctx, "hit",
		"room", room.Name, "target", stats.DisplayName, "spell", spell.DisplayName, "damage", dmg)

	if stats.Life < 0 {
		w.kill(ctx, room, mv.hit)
	}
}

// kill removes a dead entity and notifies the room of its removal.
func (w *World) kill(ctx context.Context, room *Room, mob *Mob) {
	slog.InfoContext(ctx, "killed", "room", room.Name, "id", mob.ID)

	room.RemoveMob(LayerMobs, mob.ID)
	w.Roomcast(room, fmt.Sprintf("DELM,%d,%d\n", mob.ID, LayerMobs))
}
