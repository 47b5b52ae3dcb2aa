package game

import (
	"context"
	"fmt"
	"log/slog"
)

// Transit describes a map transition point: a move by a player avatar that
// finishes within the radius of (X, Y) in the named room carries the owning
// client to the target map. AI moves have no session and never transit.
type Transit struct {
	Room     string
	X, Y     int
	RadiusSq int
	Target   string
	EntryX   int
	EntryY   int

	// Spawn optionally names a catalog creature; a wandering group of them
	// is spawned in the target room on every transit.
	Spawn string
}

// DefaultTransits is the built-in transition table: the lobby exit leading
// to the wasteland, guarded by a pod of dust devils.
func DefaultTransits() []Transit {
	return []Transit{{
		Room:     "Lobby",
		X:        837,
		Y:        168,
		RadiusSq: 250,
		Target:   "wasteland_and_pond",
		EntryX:   360,
		EntryY:   480,
		Spawn:    "dust-devil",
	}}
}

// checkTransit fires the matching transition for a completed move, if any.
func (w *World) checkTransit(ctx context.Context, room *Room, mv *Move) {
	// Only a client moving its own avatar can transit; AI moves and prop
	// edits never do.
	if mv.session == nil || mv.session.Avatar() != mv.mob {
		return
	}

	ex, ey := mv.End()
	for _, t := range w.transits {
		if t.Room != room.Name {
			continue
		}
		dx := ex - t.X
		dy := ey - t.Y
		if dx*dx+dy*dy < t.RadiusSq {
			w.transit(ctx, mv.session, mv.mob, room, t)
			return
		}
	}
}

// transit moves a client to the transition's target room: the avatar leaves
// the origin, the client joins the target (loading it on first use) and gets
// a fresh avatar at the entry point, announced to the new room.
func (w *World) transit(ctx context.Context, sess *Session, avatar *Mob, from *Room, t Transit) {
	slog.InfoContext(ctx, "transit", "from", from.Name, "target", t.Target, "session", sess.ID)

	view := from.MobView(avatar)
	from.RemoveMob(LayerMobs, avatar.ID)

	room, err := w.JoinRoom(sess, t.Target)
	if err != nil {
		slog.ErrorContext(ctx, "transit failed", "target", t.Target, "error", err)
		return
	}

	next := room.MakeMob(LayerMobs, view.Tile, t.EntryX, t.EntryY, view.Scale, view.Color, MobPlayer)
	sess.SetAvatar(next)

	w.Unicast(sess, fmt.Sprintf("ADDP,%d,%d,%d,%d,%d,%s,%s\n",
		next.ID, LayerMobs, next.Tile, next.X, next.Y, FormatScale(next.Scale), next.Color))
	w.Roomcast(room, fmt.Sprintf("ADDM,%d,%d,%d,%d,%d,%s,%s,%d\n",
		next.ID, LayerMobs, next.Tile, next.X, next.Y, FormatScale(next.Scale), next.Color, MobPlayer), sess)

	if t.Spawn != "" {
		w.SpawnCreatureGroup(ctx, room, t.Spawn, groupSize, groupCX, groupCY)
	}
}
