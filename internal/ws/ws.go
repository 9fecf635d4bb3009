// Package ws bridges the broadcast hub to terminals over websockets.
// The channel is server-to-client only past the upgrade handshake.
package ws

import (
	"net/http"
	"time"

	"cafe-pos/internal/bus"
	"cafe-pos/internal/util"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeTimeout = 10 * time.Second
	pongTimeout  = 60 * time.Second
	pingInterval = 25 * time.Second
)

// Terminals live on the café LAN; the upgrade is open to any origin.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type Server struct {
	hub    *bus.Hub
	logger *zap.Logger
}

func NewServer(hub *bus.Hub) *Server {
	return &Server{
		hub:    hub,
		logger: util.GetLogger(),
	}
}

// Handle upgrades the connection and streams hub events to it until the
// client disconnects or a write fails. Write failures drop the client
// silently; delivery is best-effort.
func (s *Server) Handle(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	sub := s.hub.Subscribe()
	util.ConnectedClients.Inc()
	s.logger.Info("Client connected", zap.String("remote", conn.RemoteAddr().String()))

	done := make(chan struct{})

	// Read loop: the client sends nothing we care about, but reading is
	// what surfaces close frames and keeps pong handling alive.
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		s.hub.Unsubscribe(sub)
		_ = conn.Close()
		util.ConnectedClients.Dec()
		s.logger.Info("Client disconnected", zap.String("remote", conn.RemoteAddr().String()))
	}()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
