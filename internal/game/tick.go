package game

import (
	"context"
	"time"
)

// Tick advances every room by the measured elapsed time: in-flight actions
// first, then completion effects (combat hits, map transitions), then the
// AI pass. Rooms are processed sequentially within one tick; the period is
// an upper bound, not a real-time guarantee.
//
// Tick satisfies the driver's Manager interface.
func (w *World) Tick(ctx context.Context, dt time.Duration) error {
	for _, room := range w.Rooms() {
		w.tickRoom(ctx, room, dt)
	}
	return nil
}

func (w *World) tickRoom(ctx context.Context, room *Room, dt time.Duration) {
	done := room.advanceActions(dt.Seconds())

	// Completion effects run with the action lock released: both combat
	// resolution and transitions publish to the room.
	for _, a := range done {
		mv, ok := a.(*Move)
		if !ok {
			continue
		}
		if mv.hit != nil {
			w.resolveHit(ctx, room, mv)
			continue
		}
		w.checkTransit(ctx, room, mv)
	}

	room.removeActions(done)

	w.aiPass(ctx, room)
}
