package listener

import (
	"context"
	"io"
	"log/slog"

	"github.com/google/uuid"
	"github.com/pixil98/go-tinyplaces/internal/commands"
	"github.com/pixil98/go-tinyplaces/internal/game"
)

// Subscriber provides the ability to subscribe to message subjects.
type Subscriber interface {
	Subscribe(subject string, handler func(data []byte)) (unsubscribe func(), err error)
}

// ConnectionManager runs one accepted connection: inbound bytes go onto the
// ingestion queue tagged with the connection id, outbound messages arrive on
// the connection's subject and are written straight to the socket. The
// manager knows nothing about the protocol; it only moves bytes.
type ConnectionManager struct {
	queue *commands.Queue
	sub   Subscriber
}

func NewConnectionManager(queue *commands.Queue, sub Subscriber) *ConnectionManager {
	return &ConnectionManager{
		queue: queue,
		sub:   sub,
	}
}

// AcceptConnection services the connection until it closes or the context is
// cancelled. Connection loss is an implicit logout: a synthetic GBYE is
// queued so the command processor cleans up the session and avatar in order
// with everything else that connection sent.
func (m *ConnectionManager) AcceptConnection(ctx context.Context, conn io.ReadWriter) {
	id := uuid.NewString()

	unsub, err := m.sub.Subscribe(game.SessionSubject(id), func(data []byte) {
		if _, err := conn.Write(data); err != nil {
			slog.Warn("writing to connection", "conn", id, "error", err)
		}
	})
	if err != nil {
		slog.ErrorContext(ctx, "subscribing connection subject", "conn", id, "error", err)
		return
	}
	defer unsub()

	slog.InfoContext(ctx, "connection established", "conn", id)

	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			m.queue.Enqueue(id, buf[:n])
		}
		if err != nil {
			break
		}
	}

	m.queue.Enqueue(id, []byte("GBYE\n"))
	slog.InfoContext(ctx, "connection closed", "conn", id)
}
