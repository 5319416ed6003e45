package realtime

import (
	"context"
	"sync"

	"caresaviour/utils"

	"go.uber.org/zap"
)

// Emitter delivers a named event to every connection in a room. Delivery is
// best-effort: an empty room is not an error.
type Emitter interface {
	Emit(room, event string, payload interface{}) error
}

const sendBuffer = 64

// Client is one websocket connection joined to the room of its owner.
type Client struct {
	Room string
	send chan []byte
}

// Hub keeps the rooms of connections served by this process.
type Hub struct {
	rooms      map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run owns room membership changes until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case client := <-h.register:
			h.mu.Lock()
			if h.rooms[client.Room] == nil {
				h.rooms[client.Room] = make(map[*Client]bool)
			}
			h.rooms[client.Room][client] = true
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if members, ok := h.rooms[client.Room]; ok && members[client] {
				delete(members, client)
				close(client.send)
				if len(members) == 0 {
					delete(h.rooms, client.Room)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for room, members := range h.rooms {
		for client := range members {
			close(client.send)
		}
		delete(h.rooms, room)
	}
}

// join and leave give up once Run has returned.
func (h *Hub) join(client *Client) bool {
	select {
	case h.register <- client:
		return true
	case <-h.done:
		return false
	}
}

func (h *Hub) leave(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// RoomSize reports how many local connections are joined to room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Emit encodes the frame and hands it to local connections only.
func (h *Hub) Emit(room, event string, payload interface{}) error {
	frame, err := encodeFrame(event, payload)
	if err != nil {
		return err
	}
	h.deliver(room, frame)
	return nil
}

// deliver never blocks; a connection whose buffer is full misses the frame.
func (h *Hub) deliver(room string, frame []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.rooms[room] {
		select {
		case client.send <- frame:
		default:
			utils.GetLogger().Warn("realtime: dropping frame for slow client", zap.String("room", room))
		}
	}
}
