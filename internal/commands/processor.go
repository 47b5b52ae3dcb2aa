package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/pixil98/go-tinyplaces/internal/game"
)

// handlerFunc processes one parsed command line for one connection. Handlers
// never return errors to the sender: protocol and lookup problems are
// logged, the line is dropped, and the connection stays open.
type handlerFunc func(ctx context.Context, connID string, parts []string)

// Processor is the single consumer of the ingestion queue. Exactly one
// goroutine runs the drain loop, so handlers mutate world state without
// racing each other; only the tick scheduler runs concurrently with them.
type Processor struct {
	queue    *Queue
	world    *game.World
	handlers map[string]handlerFunc
}

func NewProcessor(queue *Queue, world *game.World) (*Processor, error) {
	p := &Processor{
		queue: queue,
		world: world,
	}

	p.handlers = map[string]handlerFunc{
		"HELO": p.login,
		"ADDP": p.addPlayer,
		"ADDM": p.addMob,
		"UPDM": p.updateMob,
		"DELM": p.deleteMob,
		"MOVE": p.move,
		"FIRE": p.fire,
		"CHAT": p.chat,
		"SAVE": p.saveRoom,
		"LOAD": p.loadRoom,
		"GAME": p.startGame,
		"GBYE": p.logout,
	}

	for kw := range p.handlers {
		if len(kw) != 4 || kw != strings.ToUpper(kw) {
			return nil, fmt.Errorf("invalid command keyword %q", kw)
		}
	}

	return p, nil
}

// Start drains the queue until the context is cancelled. It satisfies
// service.Worker.
func (p *Processor) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		p.queue.Close()
	}()

	slog.InfoContext(ctx, "command processor running")

	for {
		rec, ok := p.queue.Dequeue()
		if !ok {
			return nil
		}
		p.processRecord(ctx, rec)
	}
}

// processRecord splits a received chunk into lines and dispatches each in
// order. A connection's bytes are processed in the order they arrived.
func (p *Processor) processRecord(ctx context.Context, rec Record) {
	for _, line := range strings.Split(string(rec.Data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		p.dispatch(ctx, rec.ConnID, line)
	}
}

func (p *Processor) dispatch(ctx context.Context, connID, line string) {
	// A misbehaving handler must not take down the drain loop.
	defer func() {
		if r := recover(); r != nil {
			slog.ErrorContext(ctx, "panic in command handler", "line", line, "panic", r)
		}
	}()

	if len(line) < 4 {
		slog.WarnContext(ctx, "received unknown command", "line", line)
		return
	}

	h, ok := p.handlers[line[:4]]
	if !ok {
		slog.WarnContext(ctx, "received unknown command", "line", line)
		return
	}

	h(ctx, connID, strings.Split(line, ","))
}

// session resolves the connection's session, logging the lookup failure the
// way all protocol errors are handled.
func (p *Processor) session(ctx context.Context, connID string) *game.Session {
	sess := p.world.Session(connID)
	if sess == nil {
		slog.WarnContext(ctx, "command from connection without session", "conn", connID)
	}
	return sess
}

// sessionRoom resolves the session and the room it is attached to.
func (p *Processor) sessionRoom(ctx context.Context, connID string) (*game.Session, *game.Room) {
	sess := p.session(ctx, connID)
	if sess == nil {
		return nil, nil
	}

	room := sess.Room()
	if room == nil {
		slog.WarnContext(ctx, "command from session without room", "conn", connID)
		return sess, nil
	}
	return sess, room
}
