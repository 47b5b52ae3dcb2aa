package game

import (
	"log/slog"
	"sort"
	"sync"
)

// Layer numbers are fixed by the client rendering order: ground patches
// below, mobs and avatars in the middle, cloud overlays on top.
const (
	LayerPatches = 1
	LayerMobs    = 3
	LayerClouds  = 5
)

// Room is a named map segment. It owns its entities exclusively: three layer
// partitions keyed by mob id, the list of in-flight actions, and the creature
// groups wandering the map. Rooms are created by the world registry and live
// for the process lifetime.
type Room struct {
	Name     string
	Backdrop string

	mu      sync.RWMutex
	nextID  int
	patches map[int]*Mob
	mobs    map[int]*Mob
	clouds  map[int]*Mob
	groups  []*CreatureGroup

	actMu   sync.Mutex
	actions []Action
}

func NewRoom(name, backdrop string) *Room {
	return &Room{
		Name:     name,
		Backdrop: backdrop,
		nextID:   1,
		patches:  map[int]*Mob{},
		mobs:     map[int]*Mob{},
		clouds:   map[int]*Mob{},
	}
}

// layerMap resolves a layer number to its partition. Callers must hold r.mu.
// An unknown layer is a protocol usage error: logged, nil returned.
func (r *Room) layerMap(layer int) map[int]*Mob {
	switch layer {
	case LayerPatches:
		return r.patches
	case LayerMobs:
		return r.mobs
	case LayerClouds:
		return r.clouds
	default:
		slog.Error("no such layer", "layer", layer, "room", r.Name)
		return nil
	}
}

// MakeMob creates a new entity in the given layer, assigning the next id.
func (r *Room) MakeMob(layer, tile, x, y int, scale float64, color string, t MobType) *Mob {
	r.mu.Lock()
	defer r.mu.Unlock()

	lm := r.layerMap(layer)
	if lm == nil {
		return nil
	}

	mob := &Mob{
		ID:    r.nextID,
		Tile:  tile,
		X:     x,
		Y:     y,
		Scale: scale,
		Color: color,
		Type:  t,
	}
	r.nextID++
	lm[mob.ID] = mob
	return mob
}

// MobPosition reads an entity's position. Positions are written by the
// scheduler and read by the command processor, so both sides go through
// the room lock.
func (r *Room) MobPosition(m *Mob) (int, int) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return m.X, m.Y
}

// setMobPosition moves an entity.
func (r *Room) setMobPosition(m *Mob, x, y int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m.X = x
	m.Y = y
}

// UpdateMob overwrites an existing entity in place. Returns the updated
// mob, or nil if it does not exist.
func (r *Room) UpdateMob(layer, id, tile, x, y int, scale float64, color string) *Mob {
	r.mu.Lock()
	defer r.mu.Unlock()

	lm := r.layerMap(layer)
	if lm == nil {
		return nil
	}
	m, ok := lm[id]
	if !ok {
		return nil
	}

	m.Tile = tile
	m.X = x
	m.Y = y
	m.Scale = scale
	m.Color = color
	return m
}

// MobView returns a copy of the entity's current fields, for reads that
// outlive the lock.
func (r *Room) MobView(m *Mob) Mob {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return *m
}

// Mob looks up an entity by layer and id. Returns nil if absent.
func (r *Room) Mob(layer, id int) *Mob {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lm := r.layerMap(layer)
	if lm == nil {
		return nil
	}
	return lm[id]
}

// RemoveMob deletes an entity and purges its id from every creature group.
// Returns the removed mob, or nil if it did not exist.
func (r *Room) RemoveMob(layer, id int) *Mob {
	r.mu.Lock()
	defer r.mu.Unlock()

	lm := r.layerMap(layer)
	if lm == nil {
		return nil
	}

	for _, g := range r.groups {
		g.Remove(id)
	}

	mob, ok := lm[id]
	if !ok {
		return nil
	}
	delete(lm, id)
	return mob
}

// ForEachMob calls fn for every entity in the given layer.
func (r *Room) ForEachMob(layer int, fn func(*Mob)) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.layerMap(layer) {
		fn(m)
	}
}

// MobCount returns the number of entities in a layer.
func (r *Room) MobCount(layer int) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.layerMap(layer))
}

// FirstPlayer returns a player avatar from the mob layer, or nil. Which
// player is unspecified; the AI targets whoever turns up first.
func (r *Room) FirstPlayer() *Mob {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, m := range r.mobs {
		if m.Type == MobPlayer {
			return m
		}
	}
	return nil
}

// MobsNear returns the mob-layer entities within limit units of (x, y),
// nearest first. Brute force over the layer; rooms are small.
func (r *Room) MobsNear(x, y, limit int) []*Mob {
	r.mu.RLock()
	defer r.mu.RUnlock()

	dmax := limit * limit
	var result []*Mob
	for _, m := range r.mobs {
		dx := m.X - x
		dy := m.Y - y
		if dx*dx+dy*dy <= dmax {
			result = append(result, m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		di := (result[i].X-x)*(result[i].X-x) + (result[i].Y-y)*(result[i].Y-y)
		dj := (result[j].X-x)*(result[j].X-x) + (result[j].Y-y)*(result[j].Y-y)
		return di < dj
	})
	return result
}

// AddGroup registers a creature group with the room.
func (r *Room) AddGroup(g *CreatureGroup) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.groups = append(r.groups, g)
}

// Groups returns a snapshot of the room's creature groups.
func (r *Room) Groups() []*CreatureGroup {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*CreatureGroup, len(r.groups))
	copy(out, r.groups)
	return out
}

// AddAction registers an in-flight action. The action lock is held only for
// the append, never across a broadcast.
func (r *Room) AddAction(a Action) {
	r.actMu.Lock()
	defer r.actMu.Unlock()

	r.actions = append(r.actions, a)
}

// CancelMoves drops any pending Move for the given mob id. Starting a new
// move supersedes the old one; at most one Move per mob is ever in flight.
func (r *Room) CancelMoves(id int) {
	r.actMu.Lock()
	defer r.actMu.Unlock()

	kept := r.actions[:0]
	for _, a := range r.actions {
		if mv, ok := a.(*Move); ok && mv.mob.ID == id {
			continue
		}
		kept = append(kept, a)
	}
	r.actions = kept
}

// ActionCount returns the number of in-flight actions.
func (r *Room) ActionCount() int {
	r.actMu.Lock()
	defer r.actMu.Unlock()

	return len(r.actions)
}

// MoveFor returns the in-flight Move for the given mob id, or nil.
func (r *Room) MoveFor(id int) *Move {
	r.actMu.Lock()
	defer r.actMu.Unlock()

	for _, a := range r.actions {
		if mv, ok := a.(*Move); ok && mv.mob.ID == id {
			return mv
		}
	}
	return nil
}

// advanceActions processes every action by dt seconds under the action lock
// and returns the completed ones. Removal happens separately so completion
// work (transitions, combat) runs without the lock held.
func (r *Room) advanceActions(dt float64) []Action {
	r.actMu.Lock()
	defer r.actMu.Unlock()

	var done []Action
	for _, a := range r.actions {
		if a.Process(r, dt) {
			done = append(done, a)
		}
	}
	return done
}

// removeActions drops the given completed actions from the list.
func (r *Room) removeActions(done []Action) {
	if len(done) == 0 {
		return
	}

	r.actMu.Lock()
	defer r.actMu.Unlock()

	doneSet := make(map[Action]bool, len(done))
	for _, a := range done {
		doneSet[a] = true
	}

	kept := r.actions[:0]
	for _, a := range r.actions {
		if !doneSet[a] {
			kept = append(kept, a)
		}
	}
	r.actions = kept
}
