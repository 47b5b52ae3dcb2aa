package listener

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"sync"
)

// TcpListener accepts plain TCP connections, the native transport for the
// game client's line protocol.
type TcpListener struct {
	port uint16
	cm   *ConnectionManager
}

func NewTcpListener(port uint16, cm *ConnectionManager) *TcpListener {
	return &TcpListener{
		port: port,
		cm:   cm,
	}
}

func (l *TcpListener) Start(ctx context.Context) error {
	lis, err := net.Listen("tcp", fmt.Sprintf(":%d", l.port))
	if err != nil {
		return fmt.Errorf("listening on port %d: %w", l.port, err)
	}

	slog.InfoContext(ctx, "listening for tcp", "port", l.port)

	connCtx, cancelConns := context.WithCancel(context.Background())
	var wg sync.WaitGroup
	var conns sync.Map

	// Close the listener when the parent context is canceled
	go func() {
		<-ctx.Done()
		lis.Close()
	}()

	for {
		conn, err := lis.Accept()
		if err != nil {
			// Check if shutdown was requested
			select {
			case <-ctx.Done():
				cancelConns()
				conns.Range(func(key, _ any) bool {
					key.(net.Conn).Close()
					return true
				})
				wg.Wait()
				return nil
			default:
			}
			slog.ErrorContext(ctx, "accepting tcp connection", "error", err)
			continue
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			defer conn.Close()
			conns.Store(conn, struct{}{})
			defer conns.Delete(conn)

			l.cm.AcceptConnection(connCtx, conn)
		}()
	}
}
