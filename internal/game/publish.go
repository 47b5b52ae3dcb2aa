package game

import "log/slog"

// Unicast sends one line to a single session. Delivery is fire and forget;
// failures are logged and abandoned.
func (w *World) Unicast(sess *Session, line string) {
	if err := w.pub.Publish(SessionSubject(sess.ID), []byte(line)); err != nil {
		slog.Warn("unicast failed", "session", sess.ID, "error", err)
	}
}

// Roomcast sends one line to every session currently attached to the room,
// optionally excluding some sessions (used when the sender already got a
// differently formatted confirmation). The session lock is released before
// any publish.
func (w *World) Roomcast(room *Room, line string, exclude ...*Session) {
	excluded := make(map[string]bool, len(exclude))
	for _, s := range exclude {
		excluded[s.ID] = true
	}

	w.mu.RLock()
	var targets []*Session
	for _, s := range w.sessions {
		if !excluded[s.ID] && s.Room() == room {
			targets = append(targets, s)
		}
	}
	w.mu.RUnlock()

	for _, s := range targets {
		if err := w.pub.Publish(SessionSubject(s.ID), []byte(line)); err != nil {
			slog.Warn("roomcast failed", "session", s.ID, "room", room.Name, "error", err)
		}
	}
}

// Broadcast sends one line to every logged-in session regardless of room.
func (w *World) Broadcast(line string) {
	w.mu.RLock()
	targets := make([]*Session, 0, len(w.sessions))
	for _, s := range w.sessions {
		targets = append(targets, s)
	}
	w.mu.RUnlock()

	for _, s := range targets {
		if err := w.pub.Publish(SessionSubject(s.ID), []byte(line)); err != nil {
			slog.Warn("broadcast failed", "session", s.ID, "error", err)
		}
	}
}
