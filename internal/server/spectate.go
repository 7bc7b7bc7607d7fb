package server

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/vmihailenco/msgpack/v5"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // spectating is open to any origin
	},
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

const (
	spectateInterval = 100 * time.Millisecond
	writeWait        = 10 * time.Second
	pingInterval     = 54 * time.Second
)

// handleSpectate streams msgpack-encoded room snapshots over a websocket.
// Read-only: inbound messages are discarded, the connection exists only so
// spectators can watch without polling.
func (s *Server) handleSpectate(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade", "err", err)
		return
	}
	go s.spectateWrites(conn)
	go spectateReads(conn)
}

func (s *Server) spectateWrites(conn *websocket.Conn) {
	ticker := time.NewTicker(spectateInterval)
	pinger := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		pinger.Stop()
		conn.Close()
	}()

	for {
		select {
		case <-ticker.C:
			s.room.Advance(time.Now())
			snapshot := s.room.Snapshot()
			data, err := msgpack.Marshal(snapshot)
			if err != nil {
				slog.Error("marshaling spectator snapshot", "err", err)
				return
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
				return
			}
		case <-pinger.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// spectateReads drains the connection until it closes so control frames are
// processed.
func spectateReads(conn *websocket.Conn) {
	conn.SetReadLimit(512)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			conn.Close()
			return
		}
	}
}
