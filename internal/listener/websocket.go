package listener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// WebsocketListener accepts websocket connections for browser clients. Each
// inbound message is one protocol chunk; outbound bytes are sent as text
// messages.
type WebsocketListener struct {
	port uint16
	cm   *ConnectionManager
}

func NewWebsocketListener(port uint16, cm *ConnectionManager) *WebsocketListener {
	return &WebsocketListener{
		port: port,
		cm:   cm,
	}
}

func (l *WebsocketListener) Start(ctx context.Context) error {
	upgrader := websocket.Upgrader{
		// The game protocol does its own session handling; any origin may connect.
		CheckOrigin: func(*http.Request) bool { return true },
	}

	connCtx, cancelConns := context.WithCancel(context.Background())
	defer cancelConns()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			slog.ErrorContext(r.Context(), "websocket upgrade", "remote", r.RemoteAddr, "error", err)
			return
		}
		defer conn.Close()

		// Drop the connection when shutdown is requested so reads unblock.
		stop := context.AfterFunc(connCtx, func() { conn.Close() })
		defer stop()

		l.cm.AcceptConnection(connCtx, &wsReadWriter{conn: conn})
	})

	svr := &http.Server{
		Addr:    fmt.Sprintf(":%d", l.port),
		Handler: mux,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = svr.Shutdown(shutdownCtx)
	}()

	slog.InfoContext(ctx, "listening for websocket", "port", l.port)

	err := svr.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// wsReadWriter adapts a websocket connection to the io.ReadWriter the
// connection manager expects.
type wsReadWriter struct {
	conn *websocket.Conn
	r    io.Reader
}

func (w *wsReadWriter) Read(p []byte) (int, error) {
	for {
		if w.r == nil {
			_, r, err := w.conn.NextReader()
			if err != nil {
				return 0, err
			}
			w.r = r
		}

		n, err := w.r.Read(p)
		if errors.Is(err, io.EOF) {
			// Message fully consumed; move on to the next one.
			w.r = nil
			if n > 0 {
				return n, nil
			}
			continue
		}
		return n, err
	}
}

func (w *wsReadWriter) Write(p []byte) (int, error) {
	if err := w.conn.WriteMessage(websocket.TextMessage, p); err != nil {
		return 0, err
	}
	return len(p), nil
}
