package realtime

import (
	"errors"
	"net/http"
	"time"

	"caresaviour/utils"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

var errHubStopped = errors.New("realtime hub is not running")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// ServeWS upgrades the request and joins the connection to room. The caller
// has already authenticated the request; room is the caller's id.
func ServeWS(hub *Hub, w http.ResponseWriter, r *http.Request, room string) error {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	client := newClient(room)
	if !hub.join(client) {
		conn.Close()
		return errHubStopped
	}

	go writePump(conn, client)
	go readPump(hub, conn, client)
	return nil
}

// newClient queues the connected frame before the client is registered.
// Once joined, send belongs to the hub and may be closed at any time.
func newClient(room string) *Client {
	client := &Client{Room: room, send: make(chan []byte, sendBuffer)}
	if frame, err := encodeFrame(EventConnected, connectedEvent{
		Room:    room,
		Message: "WebSocket connection established",
	}); err == nil {
		client.send <- frame
	}
	return client
}

// readPump discards inbound frames; it exists to notice disconnects and pongs.
func readPump(hub *Hub, conn *websocket.Conn, client *Client) {
	defer func() {
		hub.leave(client)
		conn.Close()
	}()

	conn.SetReadLimit(4096)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				utils.GetLogger().Debug("realtime: connection closed", zap.String("room", client.Room), zap.Error(err))
			}
			return
		}
	}
}

func writePump(conn *websocket.Conn, client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		conn.Close()
	}()

	for {
		select {
		case frame, ok := <-client.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
