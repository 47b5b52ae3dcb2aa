package game

import "sync"

// SessionSubject is the per-connection message subject a client's writer
// goroutine subscribes to. Everything the server sends to one client goes
// through this subject.
func SessionSubject(id string) string {
	return "client." + id
}

// Session is the server-side state of one logged-in connection: the room the
// client currently occupies and the avatar it controls. The room and avatar
// are referenced, never owned; the room's entity store owns the avatar.
//
// Sessions are touched from both the command processor and the scheduler
// (map transitions), so field access goes through locked accessors.
type Session struct {
	ID string

	mu     sync.RWMutex
	room   *Room
	avatar *Mob
}

// Room returns the room this session is currently attached to, or nil
// before the first LOAD.
func (s *Session) Room() *Room {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.room
}

func (s *Session) SetRoom(r *Room) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.room = r
}

// Avatar returns the mob this session controls, or nil before ADDP.
func (s *Session) Avatar() *Mob {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.avatar
}

func (s *Session) SetAvatar(m *Mob) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.avatar = m
}
